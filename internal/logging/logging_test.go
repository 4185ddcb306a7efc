package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_DisabledReturnsNoop(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enabled = false

	logger, err := Init(cfg)
	require.NoError(t, err)

	// Must not panic and must not create any file.
	logger.Info("ignored")
	assert.NoError(t, logger.Shutdown())
}

func TestInit_WritesJSONToFile(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Enabled = true
	cfg.Dir = dir
	cfg.Command = "test"

	logger, err := Init(cfg)
	require.NoError(t, err)

	logger.Info("hello", "user", "alice")
	require.NoError(t, logger.Shutdown())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	content, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	assert.Contains(t, string(content), "hello")
	assert.Contains(t, string(content), "alice")
}

func TestLogger_RedactsSensitiveKeys(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Enabled = true
	cfg.Dir = dir
	cfg.Command = "test"

	logger, err := Init(cfg)
	require.NoError(t, err)

	logger.Info("connecting", "session_token", "super-secret-value", "page", 1)
	require.NoError(t, logger.Shutdown())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	content, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	assert.NotContains(t, string(content), "super-secret-value")
	assert.Contains(t, string(content), "[REDACTED]")
}

func TestRedactor(t *testing.T) {
	r := newRedactor()

	tests := []struct {
		name string
		key  string
		want bool
	}{
		{"plain key", "page", false},
		{"token key", "token", true},
		{"compound token key", "session_token", true},
		{"authorization header", "authorization", true},
		{"bearer segment", "bearer-value", true},
		{"substring only is safe", "tokenizer", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.isSensitive(tt.key))
		})
	}

	pairs := r.redact([]any{"token", "abc", "page", 2})
	assert.Equal(t, []any{"token", "[REDACTED]", "page", 2}, pairs)
}

func TestRotate_RemovesOldest(t *testing.T) {
	dir := t.TempDir()
	names := []string{
		"stocktray_20240101_000000_PID1_a.log",
		"stocktray_20240102_000000_PID1_b.log",
		"stocktray_20240103_000000_PID1_c.log",
	}
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0600))
	}

	require.NoError(t, rotate(dir, 2))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
