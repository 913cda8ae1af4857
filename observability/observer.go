// Package observability provides event-based instrumentation for the
// datastore. Stores emit lifecycle and transaction events; observers route
// them to logging or metrics sinks without the store knowing which.
package observability

import (
	"context"
	"log/slog"
	"time"
)

// Level is the event severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// SlogLevel maps the level to the corresponding slog.Level.
func (l Level) SlogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// EventType names the kind of event, dot-separated by subsystem
// (e.g. "store.open", "txn.commit").
type EventType string

// Event is a single observation emitted by a store.
type Event struct {
	Type      EventType
	Level     Level
	Timestamp time.Time
	Store     string // store name the event originated from
	Data      map[string]any
}

// Observer receives events. Implementations must be safe for concurrent use
// and must not block for long; events are delivered inline from the store's
// commit path.
type Observer interface {
	OnEvent(ctx context.Context, event Event)
}
