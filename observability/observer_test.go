package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prefstore/prefstore/observability"
)

func TestLevel_SlogLevel(t *testing.T) {
	tests := []struct {
		name  string
		level observability.Level
		want  slog.Level
	}{
		{name: "debug", level: observability.LevelDebug, want: slog.LevelDebug},
		{name: "info", level: observability.LevelInfo, want: slog.LevelInfo},
		{name: "warn", level: observability.LevelWarn, want: slog.LevelWarn},
		{name: "error", level: observability.LevelError, want: slog.LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.level.SlogLevel(); got != tt.want {
				t.Errorf("Level(%d).SlogLevel() = %v, want %v", tt.level, got, tt.want)
			}
		})
	}
}

func TestSlogObserver(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	obs := observability.NewSlogObserver(logger)

	obs.OnEvent(context.Background(), observability.Event{
		Type:      "txn.commit",
		Level:     observability.LevelInfo,
		Timestamp: time.Now(),
		Store:     "settings",
		Data:      map[string]any{"generation": 3},
	})

	out := buf.String()
	if !strings.Contains(out, "txn.commit") {
		t.Errorf("log output %q missing event type", out)
	}
	if !strings.Contains(out, "store=settings") {
		t.Errorf("log output %q missing store attribute", out)
	}
	if !strings.Contains(out, "generation=3") {
		t.Errorf("log output %q missing data attribute", out)
	}
}

type recordingObserver struct {
	mu     sync.Mutex
	events []observability.Event
}

func (r *recordingObserver) OnEvent(_ context.Context, event observability.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func TestMultiObserver(t *testing.T) {
	a := &recordingObserver{}
	b := &recordingObserver{}
	multi := observability.NewMultiObserver(a, nil, b)

	multi.OnEvent(context.Background(), observability.Event{Type: "store.open", Store: "s"})

	if len(a.events) != 1 || len(b.events) != 1 {
		t.Errorf("observers recorded %d and %d events, want 1 and 1", len(a.events), len(b.events))
	}
}

func TestNoOpObserver(t *testing.T) {
	// Must not panic on any event shape.
	observability.NoOpObserver{}.OnEvent(context.Background(), observability.Event{
		Type: "store.close",
		Data: map[string]any{"k": "v"},
	})
}
