package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campus-dcm/slot-booking-api/internal/models"
	appErrors "github.com/campus-dcm/slot-booking-api/pkg/errors"
)

type slotRepository interface {
	FindByID(ctx context.Context, id string) (*models.Slot, error)
	ListByRange(ctx context.Context, from, to time.Time) ([]models.Slot, error)
	ListByUser(ctx context.Context, userID string, from time.Time) ([]models.Slot, error)
	UpdateFields(ctx context.Context, id string, upd models.SlotUpdate) error
	Delete(ctx context.Context, id string) error
}

// SlotService serves slot queries and administrative field edits.
type SlotService struct {
	repo      slotRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	loc       *time.Location
	cacheTTL  time.Duration
}

// NewSlotService constructs SlotService.
func NewSlotService(repo slotRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger, loc *time.Location, cacheTTL time.Duration) *SlotService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}
	return &SlotService{repo: repo, cache: cache, validator: validate, logger: logger, loc: loc, cacheTTL: cacheTTL}
}

// Get returns one slot.
func (s *SlotService) Get(ctx context.Context, id string) (*models.Slot, error) {
	slot, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "slot not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to load slot")
	}
	return slot, nil
}

// ListByDate returns the day view for one calendar date, cached when the day
// cache is enabled.
func (s *SlotService) ListByDate(ctx context.Context, date time.Time) ([]models.Slot, error) {
	from := startOfDay(date, s.loc)
	to := nextDay(from, s.loc)
	key := dayCacheKey(from, s.loc)

	var cached []models.Slot
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return cached, nil
	}

	slots, err := s.repo.ListByRange(ctx, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to list slots")
	}

	if s.cache.Enabled() {
		_ = s.cache.Set(ctx, key, slots, s.cacheTTL)
	}
	return slots, nil
}

// ListByRange returns slots inside the half-open instant interval [from, to).
func (s *SlotService) ListByRange(ctx context.Context, from, to time.Time) ([]models.Slot, error) {
	if !to.After(from) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "range end must follow range start")
	}
	slots, err := s.repo.ListByRange(ctx, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to list slots")
	}
	return slots, nil
}

// ListMine returns the actor's own bookings from the given instant onward,
// soonest first.
func (s *SlotService) ListMine(ctx context.Context, userID string, from time.Time) ([]models.Slot, error) {
	if userID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "user id is required")
	}
	slots, err := s.repo.ListByUser(ctx, userID, from)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to list bookings")
	}
	return slots, nil
}

// Update applies an administrative field edit. Edits are last-writer-wins and
// never touch the booking state, so they may race with bookings harmlessly.
func (s *SlotService) Update(ctx context.Context, id string, upd models.SlotUpdate) (*models.Slot, error) {
	if err := s.validator.Struct(upd); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid slot update")
	}
	if upd.Empty() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no fields to update")
	}

	if err := s.repo.UpdateFields(ctx, id, upd); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "slot not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to update slot")
	}

	slot, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to reload slot")
	}

	s.cache.Invalidate(ctx, dayCacheKey(slot.SlotAt, s.loc))
	return slot, nil
}

// Delete removes a single slot.
func (s *SlotService) Delete(ctx context.Context, id string) error {
	slot, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "slot not found")
		}
		return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to load slot")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "slot not found")
		}
		return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to delete slot")
	}

	s.cache.Invalidate(ctx, dayCacheKey(slot.SlotAt, s.loc))
	return nil
}
