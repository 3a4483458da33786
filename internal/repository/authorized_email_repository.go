package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/campus-dcm/slot-booking-api/internal/models"
)

// ErrDuplicateEmail signals that the address is already authorized.
var ErrDuplicateEmail = errors.New("email already authorized")

// AuthorizedEmailRepository manages the authorized_emails table.
type AuthorizedEmailRepository struct {
	db *sqlx.DB
}

// NewAuthorizedEmailRepository builds repository.
func NewAuthorizedEmailRepository(db *sqlx.DB) *AuthorizedEmailRepository {
	return &AuthorizedEmailRepository{db: db}
}

// Insert stores a new authorized address keyed by the email itself.
func (r *AuthorizedEmailRepository) Insert(ctx context.Context, rec *models.AuthorizedEmail) error {
	if rec.AddedAt.IsZero() {
		rec.AddedAt = time.Now().UTC()
	}
	if rec.SyncStatus == "" {
		rec.SyncStatus = models.SyncStatusPending
	}
	const query = `
INSERT INTO authorized_emails (email, added_at, linked_user_id, sync_status)
VALUES (:email, :added_at, :linked_user_id, :sync_status)`
	if _, err := r.db.NamedExecContext(ctx, query, rec); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("insert authorized email: %w", err)
	}
	return nil
}

// FindByEmail returns one record.
func (r *AuthorizedEmailRepository) FindByEmail(ctx context.Context, email string) (*models.AuthorizedEmail, error) {
	const query = `SELECT email, added_at, linked_user_id, sync_status FROM authorized_emails WHERE email = $1`
	var rec models.AuthorizedEmail
	if err := r.db.GetContext(ctx, &rec, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find authorized email: %w", err)
	}
	return &rec, nil
}

// List returns all authorized addresses, newest first.
func (r *AuthorizedEmailRepository) List(ctx context.Context) ([]models.AuthorizedEmail, error) {
	const query = `SELECT email, added_at, linked_user_id, sync_status FROM authorized_emails ORDER BY added_at DESC`
	records := []models.AuthorizedEmail{}
	if err := r.db.SelectContext(ctx, &records, query); err != nil {
		return nil, fmt.Errorf("list authorized emails: %w", err)
	}
	return records, nil
}

// Delete removes an address.
func (r *AuthorizedEmailRepository) Delete(ctx context.Context, email string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM authorized_emails WHERE email = $1`, email)
	if err != nil {
		return fmt.Errorf("delete authorized email: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete authorized email: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateSyncStatus records the synchronizer outcome on the record. The row may
// have been deleted underneath a slow sync; that is not an error.
func (r *AuthorizedEmailRepository) UpdateSyncStatus(ctx context.Context, email string, status models.SyncStatus, linkedUserID *string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE authorized_emails SET sync_status = $1, linked_user_id = COALESCE($2, linked_user_id) WHERE email = $3`,
		status, linkedUserID, email)
	if err != nil {
		return fmt.Errorf("update sync status: %w", err)
	}
	return nil
}
