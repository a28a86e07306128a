package decisionlog

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOmitsTime(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf)
	l.Info("assign", "tick", 6, "job", "J1", "truck", "HT_01")

	assert.Equal(t, "level=INFO msg=assign tick=6 job=J1 truck=HT_01\n", buf.String())
}

func TestOpenWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "decisions.log")
	l, closer, err := Open(path)
	require.NoError(t, err)

	l.Info("yard", "job", "J1", "yard", "B2")
	require.NoError(t, closer.Close())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "level=INFO msg=yard job=J1 yard=B2\n", string(b))
}
