package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/campus-dcm/slot-booking-api/internal/identity"
	"github.com/campus-dcm/slot-booking-api/internal/models"
)

type claimSyncEmailRepository interface {
	UpdateSyncStatus(ctx context.Context, email string, status models.SyncStatus, linkedUserID *string) error
}

// ClaimSyncService mirrors membership in the authorized-emails set onto the
// admin capability of the matching identity.
//
// Both handlers sit behind a trigger boundary with no rollback: outcomes are
// recorded as data on the authorized-email record and never raised to the
// caller. They are idempotent so at-least-once delivery is harmless.
type ClaimSyncService struct {
	emails  claimSyncEmailRepository
	ids     identity.Provider
	metrics *MetricsService
	logger  *zap.Logger
}

// NewClaimSyncService constructs ClaimSyncService.
func NewClaimSyncService(emails claimSyncEmailRepository, ids identity.Provider, metrics *MetricsService, logger *zap.Logger) *ClaimSyncService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClaimSyncService{emails: emails, ids: ids, metrics: metrics, logger: logger}
}

// OnCreate grants the admin capability to the account matching a newly
// authorized email. A missing account is not an error: the intent stays
// recorded as PENDING until the user signs up.
func (s *ClaimSyncService) OnCreate(ctx context.Context, rec models.AuthorizedEmail) error {
	ident, err := s.ids.ResolveEmail(ctx, rec.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.setStatus(ctx, rec.Email, models.SyncStatusPending, nil)
			s.metrics.RecordClaimSync("create", "pending")
			s.logger.Info("no account for authorized email yet", zap.String("email", rec.Email))
			return nil
		}
		s.setStatus(ctx, rec.Email, models.SyncStatusError, nil)
		s.metrics.RecordClaimSync("create", "error")
		s.logger.Error("failed to resolve authorized email", zap.String("email", rec.Email), zap.Error(err))
		return nil
	}

	if ident.Claims.HasAdmin() {
		s.metrics.RecordClaimSync("create", "noop")
		s.logger.Info("account is already an admin", zap.String("email", rec.Email), zap.String("user_id", ident.ID))
		return nil
	}

	if err := s.ids.SetClaim(ctx, ident.ID, models.AdminClaim, true); err != nil {
		s.setStatus(ctx, rec.Email, models.SyncStatusError, nil)
		s.metrics.RecordClaimSync("create", "error")
		s.logger.Error("failed to set admin claim", zap.String("email", rec.Email), zap.String("user_id", ident.ID), zap.Error(err))
		return nil
	}

	s.setStatus(ctx, rec.Email, models.SyncStatusSuccess, &ident.ID)
	s.metrics.RecordClaimSync("create", "success")
	s.logger.Info("admin claim set", zap.String("email", rec.Email), zap.String("user_id", ident.ID))
	return nil
}

// OnDelete retracts the admin capability when an authorized email is removed.
// A vanished account or an already absent claim is expected, not exceptional;
// the upstream deletion is irreversible so nothing is ever raised.
func (s *ClaimSyncService) OnDelete(ctx context.Context, rec models.AuthorizedEmail) error {
	var (
		ident *models.Identity
		err   error
	)
	if rec.LinkedUserID != nil && *rec.LinkedUserID != "" {
		ident, err = s.ids.Resolve(ctx, *rec.LinkedUserID)
	} else {
		ident, err = s.ids.ResolveEmail(ctx, rec.Email)
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.metrics.RecordClaimSync("delete", "noop")
			s.logger.Warn("no account found for removed email", zap.String("email", rec.Email))
			return nil
		}
		s.metrics.RecordClaimSync("delete", "error")
		s.logger.Error("failed to resolve removed email", zap.String("email", rec.Email), zap.Error(err))
		return nil
	}

	if !ident.Claims.HasAdmin() {
		s.metrics.RecordClaimSync("delete", "noop")
		s.logger.Info("account was not an admin", zap.String("email", rec.Email), zap.String("user_id", ident.ID))
		return nil
	}

	if err := s.ids.UnsetClaim(ctx, ident.ID, models.AdminClaim); err != nil {
		s.metrics.RecordClaimSync("delete", "error")
		s.logger.Error("failed to remove admin claim", zap.String("email", rec.Email), zap.String("user_id", ident.ID), zap.Error(err))
		return nil
	}

	s.metrics.RecordClaimSync("delete", "success")
	s.logger.Info("admin claim removed", zap.String("email", rec.Email), zap.String("user_id", ident.ID))
	return nil
}

func (s *ClaimSyncService) setStatus(ctx context.Context, email string, status models.SyncStatus, linkedUserID *string) {
	if err := s.emails.UpdateSyncStatus(ctx, email, status, linkedUserID); err != nil {
		s.logger.Warn("failed to record sync status",
			zap.String("email", email),
			zap.String("status", string(status)),
			zap.Error(err))
	}
}
