package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{" error ", slog.LevelError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLevel(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseLevel("chatty")
	assert.Error(t, err)
}

func TestNewWithWriter_ErrKey(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, slog.LevelInfo)
	logger.Error("boom", "error", errors.New("bad"))
	logger.Debug("hidden")

	assert.Contains(t, buf.String(), "err=bad")
	assert.NotContains(t, buf.String(), "hidden")
}

func TestFromName(t *testing.T) {
	logger, err := FromName("off")
	require.NoError(t, err)
	assert.False(t, logger.Enabled(t.Context(), slog.LevelError))

	assert.False(t, NewNop().Enabled(t.Context(), slog.LevelError))

	_, err = FromName("loud")
	assert.Error(t, err)
}
