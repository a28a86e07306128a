package handlers

import (
	"encoding/json"
	"ht-planning-service/internal/api/dto"
	"ht-planning-service/internal/topology"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeBody(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		ok     bool
		status int
	}{
		{name: "single object", body: `{"fleet_size": 4}`, ok: true, status: http.StatusOK},
		{name: "trailing object", body: `{"fleet_size": 4} {}`, status: http.StatusBadRequest},
		{name: "unknown field", body: `{"fleet": 4}`, status: http.StatusBadRequest},
		{name: "too large", body: `{"jobs": [` + strings.Repeat(" ", maxBody) + `]}`, status: http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/runs", strings.NewReader(tt.body))

			var req dto.CreateRunRequest
			ok := decodeBody(w, r, &req)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestHealthReportsTerminal(t *testing.T) {
	h := &HealthHandler{Topo: topology.DefaultTerminal(), Registry: NewRunRegistry()}

	w := httptest.NewRecorder()
	h.Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var res dto.HealthResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&res))
	assert.Equal(t, "ok", res.Status)
	assert.Equal(t, 0, res.ActiveRuns)
	assert.Equal(t, 8, res.QCs)
	assert.Equal(t, 16, res.Yards)
	assert.Equal(t, 42, res.BufferSlots)
}
