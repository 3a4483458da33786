// Package feed delivers authorized-email change events to subscribed
// handlers. It stands in for the document-store trigger system in
// production: delivery is asynchronous and at-least-once, so handlers must
// tolerate redelivery.
package feed

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campus-dcm/slot-booking-api/internal/models"
	"github.com/campus-dcm/slot-booking-api/pkg/jobs"
)

// EventType discriminates authorized-email lifecycle events.
type EventType string

const (
	EventCreated EventType = "authorized_email.created"
	EventDeleted EventType = "authorized_email.deleted"
)

// Event is one change-feed entry.
type Event struct {
	Type   EventType
	Record models.AuthorizedEmail
}

// Handler receives change events for authorized emails.
type Handler interface {
	OnCreate(ctx context.Context, rec models.AuthorizedEmail) error
	OnDelete(ctx context.Context, rec models.AuthorizedEmail) error
}

// Dispatcher fans change events out to a handler through a worker queue.
type Dispatcher struct {
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewDispatcher wires the handler onto a worker queue.
func NewDispatcher(handler Handler, cfg jobs.QueueConfig, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Logger == nil {
		cfg.Logger = logger
	}
	d := &Dispatcher{logger: logger}
	d.queue = jobs.NewQueue("authorized-emails", dispatch(handler), cfg)
	return d
}

// Start begins event consumption.
func (d *Dispatcher) Start(ctx context.Context) {
	d.queue.Start(ctx)
}

// Stop drains workers.
func (d *Dispatcher) Stop() {
	d.queue.Stop()
}

// Publish enqueues one event for asynchronous delivery.
func (d *Dispatcher) Publish(evt Event) error {
	return d.queue.Enqueue(jobs.Job{
		ID:      uuid.NewString(),
		Type:    string(evt.Type),
		Payload: evt,
	})
}

func dispatch(handler Handler) jobs.Handler {
	return func(ctx context.Context, job jobs.Job) error {
		evt, ok := job.Payload.(Event)
		if !ok {
			return fmt.Errorf("unexpected payload type %T", job.Payload)
		}
		switch evt.Type {
		case EventCreated:
			return handler.OnCreate(ctx, evt.Record)
		case EventDeleted:
			return handler.OnDelete(ctx, evt.Record)
		default:
			return fmt.Errorf("unknown event type %q", evt.Type)
		}
	}
}
