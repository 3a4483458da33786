package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-dcm/slot-booking-api/internal/models"
	"github.com/campus-dcm/slot-booking-api/internal/repository"
	"github.com/campus-dcm/slot-booking-api/pkg/config"
	appErrors "github.com/campus-dcm/slot-booking-api/pkg/errors"
)

// bookingRepoStub holds one slot in memory and applies the same version
// discipline as the real store.
type bookingRepoStub struct {
	slot       *models.Slot
	findErr    error
	updateErr  error
	conflicts  int
	finds      int
	updates    int
	onConflict func(s *bookingRepoStub)
}

func (s *bookingRepoStub) FindByID(ctx context.Context, id string) (*models.Slot, error) {
	s.finds++
	if s.findErr != nil {
		return nil, s.findErr
	}
	if s.slot == nil || s.slot.ID != id {
		return nil, sql.ErrNoRows
	}
	copied := *s.slot
	return &copied, nil
}

func (s *bookingRepoStub) UpdateBooking(ctx context.Context, id string, version int64, state models.BookingState) error {
	s.updates++
	if s.updateErr != nil {
		return s.updateErr
	}
	if s.conflicts > 0 {
		s.conflicts--
		if s.onConflict != nil {
			s.onConflict(s)
		}
		return repository.ErrVersionConflict
	}
	if s.slot == nil || s.slot.ID != id || s.slot.Version != version {
		return repository.ErrVersionConflict
	}
	s.slot.IsBooked = state.IsBooked
	s.slot.BookedBy = state.BookedBy
	s.slot.FacultyName = state.FacultyName
	s.slot.Version++
	return nil
}

func bookableSlot() *models.Slot {
	return &models.Slot{
		ID:              "s1",
		SlotAt:          time.Date(2026, 9, 7, 9, 0, 0, 0, time.UTC),
		DurationMinutes: 60,
		IsBookable:      true,
		Version:         1,
	}
}

func newBookingService(repo bookingSlotRepository, cfg config.BookingConfig) *BookingService {
	return NewBookingService(repo, nil, nil, nil, time.UTC, cfg)
}

func TestBookingServiceBook(t *testing.T) {
	repo := &bookingRepoStub{slot: bookableSlot()}
	svc := newBookingService(repo, config.BookingConfig{})

	slot, err := svc.Book(context.Background(), "s1", models.Actor{ID: "u1", DisplayName: "Dr. Rao"})
	require.NoError(t, err)
	assert.True(t, slot.IsBooked)
	require.NotNil(t, slot.BookedBy)
	assert.Equal(t, "u1", *slot.BookedBy)
	require.NotNil(t, slot.FacultyName)
	assert.Equal(t, "Dr. Rao", *slot.FacultyName)
	assert.Equal(t, int64(2), slot.Version)
}

func TestBookingServiceBookMissingSlot(t *testing.T) {
	svc := newBookingService(&bookingRepoStub{}, config.BookingConfig{})

	_, err := svc.Book(context.Background(), "ghost", models.Actor{ID: "u1"})
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestBookingServiceBookNotBookable(t *testing.T) {
	slot := bookableSlot()
	slot.IsBookable = false
	repo := &bookingRepoStub{slot: slot}
	svc := newBookingService(repo, config.BookingConfig{})

	_, err := svc.Book(context.Background(), "s1", models.Actor{ID: "u1"})
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotBookable.Code, appErr.Code)
	assert.Zero(t, repo.updates)
}

func TestBookingServiceBookAlreadyBooked(t *testing.T) {
	owner := "u0"
	slot := bookableSlot()
	slot.IsBooked = true
	slot.BookedBy = &owner
	repo := &bookingRepoStub{slot: slot}
	svc := newBookingService(repo, config.BookingConfig{})

	_, err := svc.Book(context.Background(), "s1", models.Actor{ID: "u1"})
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrAlreadyBooked.Code, appErr.Code)
}

// Two actors race for the same slot. The loser's conditional write fails, it
// re-reads, and it must see the winner's booking rather than a store error.
func TestBookingServiceBookRaceLoserSeesWinner(t *testing.T) {
	repo := &bookingRepoStub{slot: bookableSlot(), conflicts: 1}
	winner := "u-winner"
	repo.onConflict = func(s *bookingRepoStub) {
		s.slot.IsBooked = true
		s.slot.BookedBy = &winner
		s.slot.Version++
	}
	svc := newBookingService(repo, config.BookingConfig{})

	_, err := svc.Book(context.Background(), "s1", models.Actor{ID: "u-loser"})
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrAlreadyBooked.Code, appErr.Code)
	assert.Equal(t, 2, repo.finds)
}

func TestBookingServiceBookRetriesThenWins(t *testing.T) {
	repo := &bookingRepoStub{slot: bookableSlot(), conflicts: 2}
	svc := newBookingService(repo, config.BookingConfig{MaxAttempts: 5})

	slot, err := svc.Book(context.Background(), "s1", models.Actor{ID: "u1"})
	require.NoError(t, err)
	assert.True(t, slot.IsBooked)
	assert.Equal(t, 3, repo.updates)
}

func TestBookingServiceBookContentionExhausted(t *testing.T) {
	repo := &bookingRepoStub{slot: bookableSlot(), conflicts: 10}
	svc := newBookingService(repo, config.BookingConfig{MaxAttempts: 3})

	_, err := svc.Book(context.Background(), "s1", models.Actor{ID: "u1"})
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Equal(t, 3, repo.updates)
}

func TestBookingServiceBookValidation(t *testing.T) {
	svc := newBookingService(&bookingRepoStub{}, config.BookingConfig{})

	_, err := svc.Book(context.Background(), "", models.Actor{ID: "u1"})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Book(context.Background(), "s1", models.Actor{})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestBookingServiceValidationOutcomeLabel(t *testing.T) {
	metrics := NewMetricsService()
	svc := NewBookingService(&bookingRepoStub{}, nil, metrics, nil, time.UTC, config.BookingConfig{})

	_, err := svc.Book(context.Background(), "", models.Actor{ID: "u1"})
	require.Error(t, err)
	_, err = svc.Cancel(context.Background(), "s1", models.Actor{})
	require.Error(t, err)

	// Bad input is not a missing slot.
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.bookingTotal.WithLabelValues("book", BookingOutcomeInvalid)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.bookingTotal.WithLabelValues("cancel", BookingOutcomeInvalid)))
	assert.Zero(t, testutil.ToFloat64(metrics.bookingTotal.WithLabelValues("book", BookingOutcomeNotFound)))
	assert.Zero(t, testutil.ToFloat64(metrics.bookingTotal.WithLabelValues("cancel", BookingOutcomeNotFound)))
}

func TestBookingServiceCancelByOwner(t *testing.T) {
	owner := "u1"
	name := "Dr. Rao"
	slot := bookableSlot()
	slot.IsBooked = true
	slot.BookedBy = &owner
	slot.FacultyName = &name
	repo := &bookingRepoStub{slot: slot}
	svc := newBookingService(repo, config.BookingConfig{})

	out, err := svc.Cancel(context.Background(), "s1", models.Actor{ID: "u1"})
	require.NoError(t, err)
	assert.False(t, out.IsBooked)
	assert.Nil(t, out.BookedBy)
	assert.Nil(t, out.FacultyName)
}

func TestBookingServiceCancelNotBooked(t *testing.T) {
	repo := &bookingRepoStub{slot: bookableSlot()}
	svc := newBookingService(repo, config.BookingConfig{})

	_, err := svc.Cancel(context.Background(), "s1", models.Actor{ID: "u1"})
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestBookingServiceCancelByStrangerDenied(t *testing.T) {
	owner := "u1"
	slot := bookableSlot()
	slot.IsBooked = true
	slot.BookedBy = &owner
	repo := &bookingRepoStub{slot: slot}
	svc := newBookingService(repo, config.BookingConfig{})

	_, err := svc.Cancel(context.Background(), "s1", models.Actor{ID: "u2"})
	assert.Equal(t, appErrors.ErrNotOwner.Code, appErrors.FromError(err).Code)
}

func TestBookingServiceCancelAdminUnderOwnerOnlyPolicy(t *testing.T) {
	owner := "u1"
	slot := bookableSlot()
	slot.IsBooked = true
	slot.BookedBy = &owner
	repo := &bookingRepoStub{slot: slot}
	svc := newBookingService(repo, config.BookingConfig{CancelPolicy: config.CancelPolicyOwnerOnly})

	_, err := svc.Cancel(context.Background(), "s1", models.Actor{ID: "admin", Admin: true})
	assert.Equal(t, appErrors.ErrNotOwner.Code, appErrors.FromError(err).Code)
}

func TestBookingServiceCancelAdminOverride(t *testing.T) {
	owner := "u1"
	slot := bookableSlot()
	slot.IsBooked = true
	slot.BookedBy = &owner
	repo := &bookingRepoStub{slot: slot}
	svc := newBookingService(repo, config.BookingConfig{CancelPolicy: config.CancelPolicyAdminOverride})

	out, err := svc.Cancel(context.Background(), "s1", models.Actor{ID: "admin", Admin: true})
	require.NoError(t, err)
	assert.False(t, out.IsBooked)
}

func TestBookingServiceCancelThenRebook(t *testing.T) {
	owner := "u1"
	slot := bookableSlot()
	slot.IsBooked = true
	slot.BookedBy = &owner
	repo := &bookingRepoStub{slot: slot}
	svc := newBookingService(repo, config.BookingConfig{})

	_, err := svc.Cancel(context.Background(), "s1", models.Actor{ID: "u1"})
	require.NoError(t, err)

	out, err := svc.Book(context.Background(), "s1", models.Actor{ID: "u2"})
	require.NoError(t, err)
	require.NotNil(t, out.BookedBy)
	assert.Equal(t, "u2", *out.BookedBy)
}
