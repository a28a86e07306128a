package api

import (
	"context"
	"encoding/json"
	"fmt"
	"ht-planning-service/internal/adapters/operation"
	"ht-planning-service/internal/adapters/repositories"
	"ht-planning-service/internal/api/dto"
	"ht-planning-service/internal/api/handlers"
	"ht-planning-service/internal/config"
	"ht-planning-service/internal/pathfinder"
	"ht-planning-service/internal/platform/db"
	"ht-planning-service/internal/ports"
	"ht-planning-service/internal/services"
	"ht-planning-service/internal/topology"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	*httptest.Server
	registry *handlers.RunRegistry
}

func newTestServer(t *testing.T, mutate func(*config.Config)) *testServer {
	t.Helper()

	conn, err := db.OpenSqlite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, repositories.InitSchema(conn))
	repo := repositories.NewSqliteOutcomeRepository(conn)

	topo := topology.DefaultTerminal()
	require.NoError(t, topo.Validate())
	pf, err := pathfinder.New(topo)
	require.NoError(t, err)

	cfg := config.Default()
	cfg.HTTP.RunsPerSecond = 0
	if mutate != nil {
		mutate(&cfg)
	}

	registry := handlers.NewRunRegistry()
	srv := httptest.NewServer(NewRouter(Deps{
		Service: &services.RunService{
			Topo:      topo,
			Router:    pf,
			Repo:      repo,
			NewEngine: func(sim config.Simulation) ports.OperationEngine { return operation.NewExecutor(sim) },
		},
		Repo:     repo,
		Registry: registry,
		Config:   cfg,
		BaseCtx:  context.Background(),
	}))
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, registry: registry}
}

func runBody(wait bool, jobs int) string {
	var b strings.Builder
	b.WriteString(`{"fleet_size": 6, "jobs": [`)
	for i := 0; i < jobs; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		kind := "DI"
		if i%2 == 1 {
			kind = "LO"
		}
		fmt.Fprintf(&b, `{"job_id": "J%02d", "job_type": %q, "qc": "QC%d", "qc_sequence": %d}`, i, kind, i%4+1, i/4)
	}
	fmt.Fprintf(&b, `], "wait": %t}`, wait)
	return b.String()
}

func decode[T any](t *testing.T, res *http.Response) T {
	t.Helper()
	defer res.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(res.Body).Decode(&v))
	return v
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, nil)

	res, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.NotEmpty(t, res.Header.Get("X-Request-ID"))
	health := decode[dto.HealthResponse](t, res)
	assert.Equal(t, dto.HealthResponse{Status: "ok", QCs: 8, Yards: 16, BufferSlots: 42}, health)

	res, err = http.Post(srv.URL+"/health", "application/json", nil)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, res.StatusCode)
}

func TestCreateRunAndReadBack(t *testing.T) {
	srv := newTestServer(t, nil)

	res, err := http.Post(srv.URL+"/runs", "application/json", strings.NewReader(runBody(true, 8)))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, res.StatusCode)
	run := decode[dto.RunResponse](t, res)
	assert.Equal(t, "complete", run.Status)
	assert.Equal(t, 8, run.Completed)
	assert.Len(t, run.Fingerprint, 16)

	res, err = http.Get(srv.URL + "/runs/" + run.RunID)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode)
	stored := decode[dto.RunResponse](t, res)
	assert.Equal(t, run.Fingerprint, stored.Fingerprint)

	res, err = http.Get(srv.URL + "/runs/" + run.RunID + "/outcomes")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode)
	out := decode[dto.ListOutcomesResponse](t, res)
	require.Len(t, out.Outcomes, 8)
	for i := 1; i < len(out.Outcomes); i++ {
		assert.LessOrEqual(t, out.Outcomes[i-1].EndTick, out.Outcomes[i].EndTick)
	}
}

func TestCreateRunAsync(t *testing.T) {
	srv := newTestServer(t, nil)

	res, err := http.Post(srv.URL+"/runs", "application/json", strings.NewReader(runBody(false, 4)))
	require.NoError(t, err)
	require.Equal(t, http.StatusAccepted, res.StatusCode)
	run := decode[dto.RunResponse](t, res)
	assert.Equal(t, "/runs/"+run.RunID, res.Header.Get("Location"))

	srv.registry.Wait()

	res, err = http.Get(srv.URL + "/runs/" + run.RunID)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "complete", decode[dto.RunResponse](t, res).Status)
}

func TestCreateRunRejects(t *testing.T) {
	srv := newTestServer(t, nil)

	tests := []struct {
		name string
		body string
		want int
	}{
		{name: "not json", body: "{", want: http.StatusBadRequest},
		{name: "unknown field", body: `{"jobz": []}`, want: http.StatusBadRequest},
		{name: "no jobs", body: `{"jobs": []}`, want: http.StatusBadRequest},
		{name: "bad job type", body: `{"jobs": [{"job_id": "J1", "job_type": "XX", "qc": "QC1"}]}`, want: http.StatusBadRequest},
		{name: "huge fleet", body: `{"fleet_size": 1099511627776, "jobs": [{"job_id": "J1", "job_type": "DI", "qc": "QC1"}]}`, want: http.StatusBadRequest},
		{name: "bad fleet", body: `{"fleet_size": -1, "jobs": [{"job_id": "J1", "job_type": "DI", "qc": "QC1"}]}`, want: http.StatusBadRequest},
		{name: "unknown qc", body: `{"wait": true, "jobs": [{"job_id": "J1", "job_type": "DI", "qc": "QC99"}]}`, want: http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := http.Post(srv.URL+"/runs", "application/json", strings.NewReader(tt.body))
			require.NoError(t, err)
			res.Body.Close()
			assert.Equal(t, tt.want, res.StatusCode)
		})
	}
}

func TestRunNotFound(t *testing.T) {
	srv := newTestServer(t, nil)

	for _, path := range []string{"/runs/nope", "/runs/nope/outcomes"} {
		res, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		res.Body.Close()
		assert.Equal(t, http.StatusNotFound, res.StatusCode, path)
	}
}

func TestCreateRunRateLimited(t *testing.T) {
	srv := newTestServer(t, func(c *config.Config) {
		c.HTTP.RunsPerSecond = 0.001
		c.HTTP.RunBurst = 1
	})

	codes := []int{}
	for i := 0; i < 2; i++ {
		res, err := http.Post(srv.URL+"/runs", "application/json", strings.NewReader(runBody(true, 2)))
		require.NoError(t, err)
		res.Body.Close()
		codes = append(codes, res.StatusCode)
	}
	assert.Equal(t, []int{http.StatusCreated, http.StatusTooManyRequests}, codes)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)

	res, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	res.Body.Close()

	res, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "ht_planner_http_requests_total")
}
