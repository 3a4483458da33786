package identity

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/campus-dcm/slot-booking-api/internal/models"
)

const identityColumns = `id, email, full_name, claims, created_at`

// SQLProvider implements Provider on top of the users table. Claims live in a
// JSONB column; set and unset operate on single keys so concurrent mutations
// of different keys never clobber each other.
type SQLProvider struct {
	db *sqlx.DB
}

// NewSQLProvider builds the provider.
func NewSQLProvider(db *sqlx.DB) *SQLProvider {
	return &SQLProvider{db: db}
}

// ResolveEmail looks an identity up by exact email match.
func (p *SQLProvider) ResolveEmail(ctx context.Context, email string) (*models.Identity, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE email = $1`, identityColumns)
	var id models.Identity
	if err := p.db.GetContext(ctx, &id, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("resolve identity by email: %w", err)
	}
	return &id, nil
}

// Resolve looks an identity up by ID.
func (p *SQLProvider) Resolve(ctx context.Context, id string) (*models.Identity, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, identityColumns)
	var ident models.Identity
	if err := p.db.GetContext(ctx, &ident, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("resolve identity: %w", err)
	}
	return &ident, nil
}

// SetClaim merges a single claim key into the identity's claim set.
func (p *SQLProvider) SetClaim(ctx context.Context, id, key string, value interface{}) error {
	patch, err := json.Marshal(map[string]interface{}{key: value})
	if err != nil {
		return fmt.Errorf("marshal claim patch: %w", err)
	}
	res, err := p.db.ExecContext(ctx,
		`UPDATE users SET claims = COALESCE(claims, '{}'::jsonb) || $1::jsonb WHERE id = $2`,
		string(patch), id)
	if err != nil {
		return fmt.Errorf("set claim: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set claim: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UnsetClaim removes a single claim key from the identity's claim set.
func (p *SQLProvider) UnsetClaim(ctx context.Context, id, key string) error {
	res, err := p.db.ExecContext(ctx,
		`UPDATE users SET claims = COALESCE(claims, '{}'::jsonb) - $1 WHERE id = $2`,
		key, id)
	if err != nil {
		return fmt.Errorf("unset claim: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("unset claim: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
