package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAttachesBaseFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.json")

	log, err := New(Options{JSON: true, App: "farol-matcher", Version: "1.2.3", Output: path})
	require.NoError(t, err)

	log.Debug("hidden at info level")
	log.Info("scored jobs")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "scored jobs", entry["step"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "farol-matcher", entry[FieldApp])
	assert.Equal(t, "1.2.3", entry[FieldVersion])
}

func TestNewDebugWithoutBaseFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.json")

	log, err := New(Options{JSON: true, Debug: true, Output: path})
	require.NoError(t, err)

	log.Debug("visible")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(data, &entry))
	assert.Equal(t, "debug", entry["level"])
	assert.NotContains(t, entry, FieldApp)
	assert.NotContains(t, entry, FieldVersion)
}

func TestTruncateForLog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		limit int
		want  string
	}{
		{input: "vaga remota", limit: -1, want: ""},
		{input: "React", limit: 5, want: "React"},
		{input: "  Desenvolvedor Python  ", limit: 13, want: "Desenvolvedor..."},
		{input: "acessibilidade", limit: 20, want: "acessibilidade"},
		{input: "São Paulo, SP", limit: 3, want: "São..."},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, TruncateForLog(tt.input, tt.limit), "input %q limit %d", tt.input, tt.limit)
	}
}
