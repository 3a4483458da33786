package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/campus-dcm/slot-booking-api/internal/models"
	"github.com/campus-dcm/slot-booking-api/internal/repository"
	"github.com/campus-dcm/slot-booking-api/pkg/config"
	appErrors "github.com/campus-dcm/slot-booking-api/pkg/errors"
)

type bookingSlotRepository interface {
	FindByID(ctx context.Context, id string) (*models.Slot, error)
	UpdateBooking(ctx context.Context, id string, version int64, state models.BookingState) error
}

// BookingService performs the atomic book/cancel transition on single slots.
//
// Every mutation is an optimistic read-modify-write: read the slot with its
// version, evaluate the guards against exactly that state, then write
// conditionally on the version. A lost write means another actor interleaved;
// the loop re-reads and re-evaluates so the loser of a booking race observes
// the winner's state, not a spurious store error.
type BookingService struct {
	repo    bookingSlotRepository
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger
	loc     *time.Location

	cancelPolicy string
	maxAttempts  int
	backoff      time.Duration
}

// NewBookingService constructs BookingService.
func NewBookingService(repo bookingSlotRepository, cache *CacheService, metrics *MetricsService, logger *zap.Logger, loc *time.Location, cfg config.BookingConfig) *BookingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.CancelPolicy == "" {
		cfg.CancelPolicy = config.CancelPolicyOwnerOnly
	}
	return &BookingService{
		repo:         repo,
		cache:        cache,
		metrics:      metrics,
		logger:       logger,
		loc:          loc,
		cancelPolicy: cfg.CancelPolicy,
		maxAttempts:  cfg.MaxAttempts,
		backoff:      cfg.RetryBackoff,
	}
}

// Book reserves a slot for the actor. Guards run in order against the
// freshly read state: the slot must exist, be administratively bookable, and
// not already be booked. Exactly one of N concurrent callers wins.
func (s *BookingService) Book(ctx context.Context, slotID string, actor models.Actor) (*models.Slot, error) {
	if slotID == "" || actor.ID == "" {
		s.metrics.RecordBooking("book", BookingOutcomeInvalid)
		return nil, appErrors.Clone(appErrors.ErrValidation, "slot id and actor are required")
	}

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		slot, err := s.repo.FindByID(ctx, slotID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				s.metrics.RecordBooking("book", BookingOutcomeNotFound)
				return nil, appErrors.Clone(appErrors.ErrNotFound, "slot not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to load slot")
		}

		if !slot.IsBookable {
			s.metrics.RecordBooking("book", BookingOutcomeNotBookable)
			return nil, appErrors.Clone(appErrors.ErrNotBookable, "")
		}
		if slot.IsBooked {
			s.metrics.RecordBooking("book", BookingOutcomeAlreadyBooked)
			return nil, appErrors.Clone(appErrors.ErrAlreadyBooked, "")
		}

		bookedBy := actor.ID
		displayName := actor.DisplayName
		state := models.BookingState{
			IsBooked:    true,
			BookedBy:    &bookedBy,
			FacultyName: optional(displayName),
		}

		err = s.repo.UpdateBooking(ctx, slotID, slot.Version, state)
		if err == nil {
			slot.IsBooked = true
			slot.BookedBy = state.BookedBy
			slot.FacultyName = state.FacultyName
			slot.Version++
			s.afterMutation(ctx, slot)
			s.metrics.RecordBooking("book", BookingOutcomeBooked)
			s.logger.Info("slot booked",
				zap.String("slot_id", slotID),
				zap.String("booked_by", actor.ID),
				zap.Int("attempt", attempt))
			return slot, nil
		}
		if errors.Is(err, repository.ErrVersionConflict) {
			s.metrics.RecordBookingRetry()
			s.wait(ctx, attempt)
			continue
		}
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to store booking")
	}

	s.metrics.RecordBooking("book", BookingOutcomeContended)
	return nil, appErrors.Clone(appErrors.ErrConflict, "slot is under contention, try again")
}

// Cancel releases a booking. The owner may always cancel; under the
// admin-override policy an administrator may cancel anyone's booking.
func (s *BookingService) Cancel(ctx context.Context, slotID string, actor models.Actor) (*models.Slot, error) {
	if slotID == "" || actor.ID == "" {
		s.metrics.RecordBooking("cancel", BookingOutcomeInvalid)
		return nil, appErrors.Clone(appErrors.ErrValidation, "slot id and actor are required")
	}

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		slot, err := s.repo.FindByID(ctx, slotID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				s.metrics.RecordBooking("cancel", BookingOutcomeNotFound)
				return nil, appErrors.Clone(appErrors.ErrNotFound, "slot not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to load slot")
		}

		if !slot.IsBooked {
			return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "slot is not booked")
		}
		if !s.mayCancel(slot, actor) {
			return nil, appErrors.Clone(appErrors.ErrNotOwner, "")
		}

		state := models.BookingState{IsBooked: false, BookedBy: nil, FacultyName: nil}

		err = s.repo.UpdateBooking(ctx, slotID, slot.Version, state)
		if err == nil {
			slot.IsBooked = false
			slot.BookedBy = nil
			slot.FacultyName = nil
			slot.Version++
			s.afterMutation(ctx, slot)
			s.metrics.RecordBooking("cancel", BookingOutcomeCancelled)
			s.logger.Info("booking cancelled",
				zap.String("slot_id", slotID),
				zap.String("actor", actor.ID),
				zap.Int("attempt", attempt))
			return slot, nil
		}
		if errors.Is(err, repository.ErrVersionConflict) {
			s.metrics.RecordBookingRetry()
			s.wait(ctx, attempt)
			continue
		}
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to store cancellation")
	}

	s.metrics.RecordBooking("cancel", BookingOutcomeContended)
	return nil, appErrors.Clone(appErrors.ErrConflict, "slot is under contention, try again")
}

func (s *BookingService) mayCancel(slot *models.Slot, actor models.Actor) bool {
	if slot.BookedBy != nil && *slot.BookedBy == actor.ID {
		return true
	}
	return s.cancelPolicy == config.CancelPolicyAdminOverride && actor.Admin
}

func (s *BookingService) afterMutation(ctx context.Context, slot *models.Slot) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, dayCacheKey(slot.SlotAt, s.loc))
	}
}

// wait sleeps a linearly growing backoff between retries, honoring ctx.
func (s *BookingService) wait(ctx context.Context, attempt int) {
	if s.backoff <= 0 {
		return
	}
	timer := time.NewTimer(time.Duration(attempt) * s.backoff)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
