package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestLogger_JSONOutput(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(&Config{Level: "info", Format: "json", Output: buf})

	log.Info("server started")

	entry := decode(t, buf)
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "server started", entry["message"])
	assert.NotEmpty(t, entry["time"])
}

func TestLogger_WithFields(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(&Config{Level: "info", Format: "json", Output: buf})

	log.With().Str("uid", "user-1").Int("count", 3).Logger().Info("albums listed")

	entry := decode(t, buf)
	assert.Equal(t, "user-1", entry["uid"])
	assert.Equal(t, float64(3), entry["count"])
}

func TestLogger_ErrorWith(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(&Config{Level: "error", Format: "json", Output: buf})

	log.ErrorWith("delete failed", errors.New("bucket gone"), map[string]interface{}{"key": "u/a/b.png"})

	entry := decode(t, buf)
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "bucket gone", entry["error"])
	assert.Equal(t, "u/a/b.png", entry["key"])
}

func TestLogger_Context(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(&Config{Level: "info", Format: "json", Output: buf})

	FromContext(log.WithContext(context.Background())).Info("from context")
	assert.Equal(t, "from context", decode(t, buf)["message"])

	assert.NotPanics(t, func() { FromContext(context.Background()).Info("dropped") })
	assert.True(t, FromContext(context.Background()).IsNop())
	assert.False(t, log.IsNop())
}

func TestLogger_Levels(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		logFunc func(*Logger)
		logged  bool
	}{
		{"debug level logs debug", "debug", func(l *Logger) { l.Debug("d") }, true},
		{"info level skips debug", "info", func(l *Logger) { l.Debug("d") }, false},
		{"warning alias", "warning", func(l *Logger) { l.Warn("w") }, true},
		{"error level skips info", "error", func(l *Logger) { l.Info("i") }, false},
		{"unknown falls back to info", "loud", func(l *Logger) { l.Info("i") }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			tt.logFunc(New(&Config{Level: tt.level, Format: "json", Output: buf}))
			if tt.logged {
				assert.NotEmpty(t, buf.String())
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}

func TestLogger_HTTPEventLevel(t *testing.T) {
	for status, level := range map[int]string{200: "info", 404: "warn", 503: "error"} {
		buf := &bytes.Buffer{}
		New(&Config{Level: "debug", Output: buf}).HTTPEvent(status).Int("status", status).Msg("request")
		assert.Equal(t, level, decode(t, buf)["level"])
	}
}
