package feed

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-dcm/slot-booking-api/internal/models"
	"github.com/campus-dcm/slot-booking-api/pkg/jobs"
)

type recordingHandler struct {
	mu      sync.Mutex
	created []string
	deleted []string
	done    chan struct{}
}

func (h *recordingHandler) OnCreate(ctx context.Context, rec models.AuthorizedEmail) error {
	h.mu.Lock()
	h.created = append(h.created, rec.Email)
	h.mu.Unlock()
	h.done <- struct{}{}
	return nil
}

func (h *recordingHandler) OnDelete(ctx context.Context, rec models.AuthorizedEmail) error {
	h.mu.Lock()
	h.deleted = append(h.deleted, rec.Email)
	h.mu.Unlock()
	h.done <- struct{}{}
	return nil
}

func waitFor(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event delivery")
	}
}

func TestDispatcherDeliversEvents(t *testing.T) {
	handler := &recordingHandler{done: make(chan struct{}, 4)}
	d := NewDispatcher(handler, jobs.QueueConfig{Workers: 1}, nil)
	d.Start(context.Background())
	defer d.Stop()

	require.NoError(t, d.Publish(Event{Type: EventCreated, Record: models.AuthorizedEmail{Email: "a@campus.edu"}}))
	waitFor(t, handler.done)

	require.NoError(t, d.Publish(Event{Type: EventDeleted, Record: models.AuthorizedEmail{Email: "a@campus.edu"}}))
	waitFor(t, handler.done)

	handler.mu.Lock()
	defer handler.mu.Unlock()
	assert.Equal(t, []string{"a@campus.edu"}, handler.created)
	assert.Equal(t, []string{"a@campus.edu"}, handler.deleted)
}

func TestDispatcherPublishBeforeStart(t *testing.T) {
	handler := &recordingHandler{done: make(chan struct{}, 1)}
	d := NewDispatcher(handler, jobs.QueueConfig{}, nil)

	err := d.Publish(Event{Type: EventCreated, Record: models.AuthorizedEmail{Email: "a@campus.edu"}})
	assert.Error(t, err)
}
