package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-notification-list/pkg/interfaces/logger"
	"github.com/goliatone/go-notification-list/pkg/interfaces/queue"
	"github.com/goliatone/go-notification-list/pkg/retry"
)

// ScheduledUpdatePayload is the queue payload of a deferred update.
type ScheduledUpdatePayload struct {
	Event *UpdateNotification
	// Attempt counts previous runs of this update.
	Attempt int
}

// Dependencies wires the updater and the queue used for deferred updates.
type Dependencies struct {
	Updater Updater
	Queue   queue.Queue
	Logger  logger.Logger
	Clock   func() time.Time
	// Retry re-enqueues scheduled updates that fail transiently. The zero
	// policy drops them after one run.
	Retry retry.Policy
}

// Service accepts update events and applies them now or at a later time.
type Service struct {
	updater Updater
	queue   queue.Queue
	logger  logger.Logger
	now     func() time.Time
	retry   retry.Policy
}

var (
	errUpdaterRequired        = errors.New("events: updater is required")
	errServiceNotInitialised  = errors.New("events: service not initialised")
	errEventRequired          = errors.New("events: update event is required")
	errUnexpectedQueuePayload = errors.New("events: unexpected queue payload")
)

// New constructs the intake service.
func New(deps Dependencies) (*Service, error) {
	if deps.Updater == nil {
		return nil, errUpdaterRequired
	}
	if deps.Queue == nil {
		deps.Queue = &queue.Nop{}
	}
	if deps.Logger == nil {
		deps.Logger = &logger.Nop{}
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	return &Service{
		updater: deps.Updater,
		queue:   deps.Queue,
		logger:  deps.Logger,
		now:     deps.Clock,
		retry:   deps.Retry,
	}, nil
}

// Submit applies evt immediately.
func (s *Service) Submit(ctx context.Context, evt *UpdateNotification) error {
	return s.SubmitAt(ctx, evt, time.Time{})
}

// SubmitAt applies evt at runAt. Times within a second of now run
// immediately; later ones are enqueued.
func (s *Service) SubmitAt(ctx context.Context, evt *UpdateNotification, runAt time.Time) error {
	if s == nil {
		return errServiceNotInitialised
	}
	if evt == nil {
		return errEventRequired
	}
	if runAt.IsZero() || !runAt.After(s.now().Add(time.Second)) {
		return evt.Resolve(ctx, s.updater)
	}
	job := queue.Job{
		Key:     jobKey(evt, runAt),
		Payload: ScheduledUpdatePayload{Event: evt},
		RunAt:   runAt,
	}
	s.logger.Debug("events: update scheduled",
		logger.Field{Key: "key", Value: job.Key},
		logger.Field{Key: "run_at", Value: runAt},
	)
	return s.queue.Enqueue(ctx, job)
}

// ProcessScheduled runs a deferred update (invoked by queue workers).
func (s *Service) ProcessScheduled(ctx context.Context, payload ScheduledUpdatePayload) error {
	if s == nil {
		return errServiceNotInitialised
	}
	if payload.Event == nil {
		return errEventRequired
	}
	return payload.Event.Resolve(ctx, s.updater)
}

// HandleJob adapts ProcessScheduled to a queue handler. Transient failures
// are enqueued again under the same key while the retry policy allows it.
func (s *Service) HandleJob(ctx context.Context, job queue.Job) error {
	payload, ok := job.Payload.(ScheduledUpdatePayload)
	if !ok {
		return fmt.Errorf("%w: %T", errUnexpectedQueuePayload, job.Payload)
	}
	err := s.ProcessScheduled(ctx, payload)
	if err == nil {
		return nil
	}
	attempt := payload.Attempt + 1
	delay, again := s.retry.Next(attempt, err)
	s.logger.Warn("events: scheduled update failed",
		logger.Field{Key: "key", Value: job.Key},
		logger.Field{Key: "attempt", Value: attempt},
		logger.Field{Key: "retry", Value: again},
		logger.Field{Key: "error", Value: err},
	)
	if !again {
		return err
	}
	payload.Attempt = attempt
	return s.queue.Enqueue(ctx, queue.Job{
		Key:     job.Key,
		Payload: payload,
		RunAt:   s.now().Add(delay),
	})
}

func jobKey(evt *UpdateNotification, runAt time.Time) string {
	if id, ok := evt.ID.Literal(); ok {
		return fmt.Sprintf("update:%d:%d", id, runAt.Unix())
	}
	return fmt.Sprintf("update:resolved:%d", runAt.UnixNano())
}
