package broadcaster

import (
	"context"

	"github.com/goliatone/go-notification-list/pkg/interfaces/logger"
)

// Event is a notification change pushed to realtime transports. Topic is one
// of the manager topics (notification.created, ...) and Payload is usually
// the affected notification.
type Event struct {
	Topic   string
	Payload any
}

// Broadcaster pushes events to WebSocket, SSE or webhook transports.
type Broadcaster interface {
	Broadcast(ctx context.Context, event Event) error
}

// Nop drops every event. It is used when realtime is disabled.
type Nop struct{}

var _ Broadcaster = (*Nop)(nil)

func (*Nop) Broadcast(context.Context, Event) error { return nil }

// Func adapts a function to the Broadcaster interface.
type Func func(ctx context.Context, event Event) error

// Broadcast satisfies the Broadcaster interface.
func (f Func) Broadcast(ctx context.Context, event Event) error {
	if f == nil {
		return nil
	}
	return f(ctx, event)
}

// Fanout forwards events to multiple downstream broadcasters.
type Fanout struct {
	targets []Broadcaster
}

// NewFanout assembles a broadcaster that multicasts to the non-nil targets.
func NewFanout(targets ...Broadcaster) *Fanout {
	filtered := make([]Broadcaster, 0, len(targets))
	for _, target := range targets {
		if target != nil {
			filtered = append(filtered, target)
		}
	}
	return &Fanout{targets: filtered}
}

var _ Broadcaster = (*Fanout)(nil)

// Len reports the number of targets.
func (f *Fanout) Len() int {
	return len(f.targets)
}

// Broadcast delivers the event to each target, returning the first error observed.
func (f *Fanout) Broadcast(ctx context.Context, event Event) error {
	var firstErr error
	for _, target := range f.targets {
		if err := target.Broadcast(ctx, event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Logging writes each event topic to a logger at debug level.
type Logging struct {
	Logger logger.Logger
}

var _ Broadcaster = Logging{}

// Broadcast satisfies the Broadcaster interface.
func (l Logging) Broadcast(_ context.Context, event Event) error {
	if l.Logger == nil {
		return nil
	}
	l.Logger.Debug("broadcast", logger.Field{Key: "topic", Value: event.Topic})
	return nil
}
