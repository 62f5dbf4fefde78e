// Package pubsub fans events out to subscribers. The log package publishes
// log lines through it and watch mode publishes render results, which the
// terminal viewer consumes as bubbletea messages.
package pubsub

import (
	"context"
	"time"
)

// EventType says what happened to the payload.
type EventType string

const (
	// CreatedEvent is a new payload: a log line, the first render of a file.
	CreatedEvent EventType = "created"
	// UpdatedEvent is a payload replacing an earlier one, such as a re-render.
	UpdatedEvent EventType = "updated"
	// DeletedEvent reports that the subject is gone, such as a removed file.
	DeletedEvent EventType = "deleted"
	// FailedEvent carries a payload describing a failed attempt.
	FailedEvent EventType = "failed"
)

// Event is a published payload with its type and publish time.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}

// Subscriber provides a subscription channel for events.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}

// Publisher allows publishing events with a typed payload.
type Publisher[T any] interface {
	Publish(eventType EventType, payload T)
}
