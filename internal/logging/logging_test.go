package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_WritesJSONLinesWithSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "patientrec.log")
	logger, err := New("info", path)
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("record added", zap.String("id", "P1"))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "record added", entry["msg"])
	assert.Equal(t, "P1", entry["id"])
	assert.NotEmpty(t, entry["session"])
}

func TestNew_BadLevel(t *testing.T) {
	_, err := New("chatty", filepath.Join(t.TempDir(), "x.log"))
	assert.Error(t, err)
}

func TestNew_EmptyPathIsNop(t *testing.T) {
	logger, err := New("info", "")
	require.NoError(t, err)
	assert.NotNil(t, logger)
}
