// Package identity abstracts the external identity provider the claim
// synchronizer talks to: email resolution plus a merge-semantics capability
// set per account.
package identity

import (
	"context"

	"github.com/campus-dcm/slot-booking-api/internal/models"
)

// Provider resolves identities and mutates their capability claims.
// Implementations return sql.ErrNoRows when no such identity exists.
type Provider interface {
	ResolveEmail(ctx context.Context, email string) (*models.Identity, error)
	Resolve(ctx context.Context, id string) (*models.Identity, error)
	// SetClaim merges one claim key into the identity's set, leaving every
	// other claim untouched.
	SetClaim(ctx context.Context, id, key string, value interface{}) error
	// UnsetClaim removes exactly one claim key, preserving the rest.
	UnsetClaim(ctx context.Context, id, key string) error
}
