package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"dev":     slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"prod":    slog.LevelError,
		" error ": slog.LevelError,
		"chatty":  slog.LevelWarn,
		"":        slog.LevelWarn,
	}
	for in, want := range tests {
		require.Equal(t, want, ParseLevel(in, slog.LevelWarn), "input %q", in)
	}
}

func TestNew_JSONFormat(t *testing.T) {
	req := require.New(t)
	var buf bytes.Buffer

	log := New(&buf, slog.LevelInfo, "json")
	log.Debug("hidden")
	log.Info("Room created", "room", "room-x")

	var line map[string]any
	req.NoError(json.Unmarshal(buf.Bytes(), &line))
	req.Equal("Room created", line["msg"])
	req.Equal("room-x", line["room"])
}

func TestNew_TextFormat(t *testing.T) {
	var buf bytes.Buffer

	New(&buf, slog.LevelDebug, "text").Debug("Relaying signal", "event", "offer")

	require.Contains(t, buf.String(), `msg="Relaying signal" event=offer`)
}
