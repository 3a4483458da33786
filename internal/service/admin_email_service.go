package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campus-dcm/slot-booking-api/internal/feed"
	"github.com/campus-dcm/slot-booking-api/internal/models"
	"github.com/campus-dcm/slot-booking-api/internal/repository"
	appErrors "github.com/campus-dcm/slot-booking-api/pkg/errors"
)

type authorizedEmailRepository interface {
	Insert(ctx context.Context, rec *models.AuthorizedEmail) error
	FindByEmail(ctx context.Context, email string) (*models.AuthorizedEmail, error)
	List(ctx context.Context) ([]models.AuthorizedEmail, error)
	Delete(ctx context.Context, email string) error
}

type eventPublisher interface {
	Publish(evt feed.Event) error
}

// AdminEmailService manages the authorized-emails set and emits the change
// events that drive the claim synchronizer.
type AdminEmailService struct {
	repo      authorizedEmailRepository
	events    eventPublisher
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAdminEmailService constructs AdminEmailService.
func NewAdminEmailService(repo authorizedEmailRepository, events eventPublisher, validate *validator.Validate, logger *zap.Logger) *AdminEmailService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminEmailService{repo: repo, events: events, validator: validate, logger: logger}
}

// List returns all authorized addresses.
func (s *AdminEmailService) List(ctx context.Context) ([]models.AuthorizedEmail, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to list authorized emails")
	}
	return records, nil
}

// Add authorizes a new address and publishes the created event. Matching is
// case-sensitive exact, so the address is stored as given apart from trimming.
func (s *AdminEmailService) Add(ctx context.Context, email string) (*models.AuthorizedEmail, error) {
	email = strings.TrimSpace(email)
	if err := s.validator.Var(email, "required,email"); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid email address")
	}

	rec := &models.AuthorizedEmail{Email: email, SyncStatus: models.SyncStatusPending}
	if err := s.repo.Insert(ctx, rec); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "email is already authorized")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to store authorized email")
	}

	if err := s.events.Publish(feed.Event{Type: feed.EventCreated, Record: *rec}); err != nil {
		// The record exists; the claim stays PENDING until the next sync pass.
		s.logger.Error("failed to publish created event", zap.String("email", email), zap.Error(err))
	}

	return rec, nil
}

// Remove deletes an authorized address and publishes the deleted event,
// carrying the linked identity so retraction does not depend on re-resolving
// a possibly deleted account.
func (s *AdminEmailService) Remove(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return appErrors.Clone(appErrors.ErrValidation, "email is required")
	}

	rec, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "email is not authorized")
		}
		return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to load authorized email")
	}

	if err := s.repo.Delete(ctx, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "email is not authorized")
		}
		return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to delete authorized email")
	}

	if err := s.events.Publish(feed.Event{Type: feed.EventDeleted, Record: *rec}); err != nil {
		s.logger.Error("failed to publish deleted event", zap.String("email", email), zap.Error(err))
	}

	return nil
}
