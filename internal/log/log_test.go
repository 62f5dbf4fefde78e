package log

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/typstmath/internal/pubsub"
)

func TestLog_WritesStructuredLine(t *testing.T) {
	var buf bytes.Buffer
	cleanup := InitWriter(&buf)
	defer cleanup()

	Warn(CatWalk, "shape error", "kind", "MathAttach", "span", "3..5")

	line := buf.String()
	require.Contains(t, line, "[WARN] [walk] shape error")
	require.Contains(t, line, "kind=MathAttach")
	require.Contains(t, line, "span=3..5")
	require.True(t, Enabled())
}

func TestEntry_String(t *testing.T) {
	e := Entry{
		Time:     time.Date(2026, 1, 2, 10, 45, 0, 0, time.UTC),
		Level:    LevelInfo,
		Category: CatEngine,
		Message:  "decorated",
		Fields:   []any{"nodes", 12, "orphan"},
	}
	require.Equal(t, "2026-01-02T10:45:00 [INFO] [engine] decorated nodes=12 orphan=<missing>", e.String())
}

func TestLog_MinLevelAndDisable(t *testing.T) {
	var buf bytes.Buffer
	cleanup := InitWriter(&buf)
	defer cleanup()

	SetMinLevel(LevelWarn)
	Debug(CatCache, "hit")
	Info(CatCache, "miss")
	require.Empty(t, buf.String())

	SetEnabled(false)
	Error(CatCache, "evicted")
	require.Empty(t, buf.String())
	require.False(t, Enabled())
}

func TestLog_ErrorErr(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, "error=<nil>"},
		{"error", errors.New("boom"), "error=boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			cleanup := InitWriter(&buf)
			defer cleanup()

			ErrorErr(CatAPI, "request failed", tt.err, "path", "/decorations")
			require.Contains(t, buf.String(), tt.want)
			require.Contains(t, buf.String(), "path=/decorations")
		})
	}
}

func TestLog_ListenerReceivesEntries(t *testing.T) {
	var buf bytes.Buffer
	cleanup := InitWriter(&buf)
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	listener := NewListener(ctx)
	require.NotNil(t, listener)

	Info(CatUI, "tier changed", "tier", 2)
	Error(CatWatcher, "watch failed")

	for _, want := range []struct {
		typ   pubsub.EventType
		level Level
		msg   string
	}{
		{pubsub.CreatedEvent, LevelInfo, "tier changed"},
		{pubsub.FailedEvent, LevelError, "watch failed"},
	} {
		done := make(chan Event, 1)
		go func() {
			if ev, ok := listener.Listen()().(Event); ok {
				done <- ev
			}
		}()

		select {
		case ev := <-done:
			require.Equal(t, want.typ, ev.Type)
			require.Equal(t, want.level, ev.Payload.Level)
			require.Equal(t, want.msg, ev.Payload.Message)
		case <-time.After(time.Second):
			require.Fail(t, "timeout waiting for log event")
		}
	}
}

func TestLog_CleanupStopsLogging(t *testing.T) {
	var buf bytes.Buffer
	cleanup := InitWriter(&buf)
	cleanup()

	Error(CatAPI, "after cleanup")
	require.Empty(t, buf.String())
	require.False(t, Enabled())
}

func TestInit_AppendsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")
	require.NoError(t, os.WriteFile(path, []byte("earlier\n"), 0o600))

	cleanup, err := Init(path)
	require.NoError(t, err)
	Info(CatConfig, "typstmath starting")
	cleanup()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "earlier\n")
	require.Contains(t, string(data), "[INFO] [config] typstmath starting")
}

func TestInit_BadPath(t *testing.T) {
	_, err := Init(filepath.Join(t.TempDir(), "missing", "debug.log"))
	require.Error(t, err)
}

func TestLevel_String(t *testing.T) {
	require.Equal(t, "DEBUG", LevelDebug.String())
	require.Equal(t, "ERROR", LevelError.String())
	require.Equal(t, "UNKNOWN", Level(99).String())
}
