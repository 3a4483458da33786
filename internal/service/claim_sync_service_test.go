package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-dcm/slot-booking-api/internal/models"
)

type syncStatusStub struct {
	email  string
	status models.SyncStatus
	linked *string
	err    error
}

func (s *syncStatusStub) UpdateSyncStatus(ctx context.Context, email string, status models.SyncStatus, linkedUserID *string) error {
	s.email = email
	s.status = status
	s.linked = linkedUserID
	return s.err
}

type identityProviderStub struct {
	byEmail map[string]*models.Identity
	byID    map[string]*models.Identity

	resolveErr error
	setErr     error
	unsetErr   error

	setCalls   int
	unsetCalls int
}

func (p *identityProviderStub) ResolveEmail(ctx context.Context, email string) (*models.Identity, error) {
	if p.resolveErr != nil {
		return nil, p.resolveErr
	}
	if ident, ok := p.byEmail[email]; ok {
		return ident, nil
	}
	return nil, sql.ErrNoRows
}

func (p *identityProviderStub) Resolve(ctx context.Context, id string) (*models.Identity, error) {
	if p.resolveErr != nil {
		return nil, p.resolveErr
	}
	if ident, ok := p.byID[id]; ok {
		return ident, nil
	}
	return nil, sql.ErrNoRows
}

func (p *identityProviderStub) SetClaim(ctx context.Context, id, key string, value interface{}) error {
	p.setCalls++
	if p.setErr != nil {
		return p.setErr
	}
	for _, ident := range p.byEmail {
		if ident.ID == id {
			if ident.Claims == nil {
				ident.Claims = models.ClaimSet{}
			}
			ident.Claims[key] = value
		}
	}
	return nil
}

func (p *identityProviderStub) UnsetClaim(ctx context.Context, id, key string) error {
	p.unsetCalls++
	if p.unsetErr != nil {
		return p.unsetErr
	}
	for _, ident := range p.byEmail {
		if ident.ID == id {
			delete(ident.Claims, key)
		}
	}
	return nil
}

func TestClaimSyncOnCreateGrantsAdmin(t *testing.T) {
	statuses := &syncStatusStub{}
	ids := &identityProviderStub{
		byEmail: map[string]*models.Identity{
			"dean@campus.edu": {ID: "u1", Email: "dean@campus.edu", Claims: models.ClaimSet{}},
		},
	}
	svc := NewClaimSyncService(statuses, ids, nil, nil)

	err := svc.OnCreate(context.Background(), models.AuthorizedEmail{Email: "dean@campus.edu"})
	require.NoError(t, err)
	assert.True(t, ids.byEmail["dean@campus.edu"].Claims.HasAdmin())
	assert.Equal(t, models.SyncStatusSuccess, statuses.status)
	require.NotNil(t, statuses.linked)
	assert.Equal(t, "u1", *statuses.linked)
}

func TestClaimSyncOnCreateNoAccountStaysPending(t *testing.T) {
	statuses := &syncStatusStub{}
	ids := &identityProviderStub{}
	svc := NewClaimSyncService(statuses, ids, nil, nil)

	err := svc.OnCreate(context.Background(), models.AuthorizedEmail{Email: "future@campus.edu"})
	require.NoError(t, err)
	assert.Equal(t, models.SyncStatusPending, statuses.status)
	assert.Nil(t, statuses.linked)
	assert.Zero(t, ids.setCalls)
}

func TestClaimSyncOnCreateAlreadyAdminIsNoop(t *testing.T) {
	statuses := &syncStatusStub{}
	ids := &identityProviderStub{
		byEmail: map[string]*models.Identity{
			"dean@campus.edu": {ID: "u1", Claims: models.ClaimSet{models.AdminClaim: true}},
		},
	}
	svc := NewClaimSyncService(statuses, ids, nil, nil)

	require.NoError(t, svc.OnCreate(context.Background(), models.AuthorizedEmail{Email: "dean@campus.edu"}))
	assert.Zero(t, ids.setCalls)
	assert.Empty(t, statuses.email)
}

func TestClaimSyncOnCreateProviderFailureRecordsError(t *testing.T) {
	statuses := &syncStatusStub{}
	ids := &identityProviderStub{resolveErr: errors.New("provider down")}
	svc := NewClaimSyncService(statuses, ids, nil, nil)

	// Never raised past the trigger boundary.
	require.NoError(t, svc.OnCreate(context.Background(), models.AuthorizedEmail{Email: "dean@campus.edu"}))
	assert.Equal(t, models.SyncStatusError, statuses.status)
}

func TestClaimSyncOnCreateSetClaimFailureRecordsError(t *testing.T) {
	statuses := &syncStatusStub{}
	ids := &identityProviderStub{
		byEmail: map[string]*models.Identity{
			"dean@campus.edu": {ID: "u1", Claims: models.ClaimSet{}},
		},
		setErr: errors.New("write failed"),
	}
	svc := NewClaimSyncService(statuses, ids, nil, nil)

	require.NoError(t, svc.OnCreate(context.Background(), models.AuthorizedEmail{Email: "dean@campus.edu"}))
	assert.Equal(t, models.SyncStatusError, statuses.status)
}

func TestClaimSyncOnDeleteRevokesAdmin(t *testing.T) {
	ident := &models.Identity{ID: "u1", Claims: models.ClaimSet{models.AdminClaim: true}}
	ids := &identityProviderStub{byEmail: map[string]*models.Identity{"dean@campus.edu": ident}}
	svc := NewClaimSyncService(&syncStatusStub{}, ids, nil, nil)

	require.NoError(t, svc.OnDelete(context.Background(), models.AuthorizedEmail{Email: "dean@campus.edu"}))
	assert.False(t, ident.Claims.HasAdmin())
}

func TestClaimSyncOnDeletePrefersLinkedUserID(t *testing.T) {
	ident := &models.Identity{ID: "u1", Claims: models.ClaimSet{models.AdminClaim: true}}
	ids := &identityProviderStub{
		byEmail: map[string]*models.Identity{"dean@campus.edu": ident},
		byID:    map[string]*models.Identity{"u1": ident},
	}
	svc := NewClaimSyncService(&syncStatusStub{}, ids, nil, nil)

	linked := "u1"
	rec := models.AuthorizedEmail{Email: "renamed@campus.edu", LinkedUserID: &linked}
	require.NoError(t, svc.OnDelete(context.Background(), rec))
	assert.Equal(t, 1, ids.unsetCalls)
}

func TestClaimSyncOnDeleteMissingAccountIsNoop(t *testing.T) {
	ids := &identityProviderStub{}
	svc := NewClaimSyncService(&syncStatusStub{}, ids, nil, nil)

	require.NoError(t, svc.OnDelete(context.Background(), models.AuthorizedEmail{Email: "gone@campus.edu"}))
	assert.Zero(t, ids.unsetCalls)
}

func TestClaimSyncOnDeleteNonAdminIsNoop(t *testing.T) {
	ident := &models.Identity{ID: "u1", Claims: models.ClaimSet{}}
	ids := &identityProviderStub{byEmail: map[string]*models.Identity{"dean@campus.edu": ident}}
	svc := NewClaimSyncService(&syncStatusStub{}, ids, nil, nil)

	require.NoError(t, svc.OnDelete(context.Background(), models.AuthorizedEmail{Email: "dean@campus.edu"}))
	assert.Zero(t, ids.unsetCalls)
}

func TestClaimSyncGrantThenRevokeRestoresClaims(t *testing.T) {
	ident := &models.Identity{
		ID:    "u1",
		Email: "dean@campus.edu",
		Claims: models.ClaimSet{
			"faculty":    true,
			"department": "physics",
		},
	}
	before := models.ClaimSet{}
	for key, value := range ident.Claims {
		before[key] = value
	}

	statuses := &syncStatusStub{}
	ids := &identityProviderStub{byEmail: map[string]*models.Identity{"dean@campus.edu": ident}}
	svc := NewClaimSyncService(statuses, ids, nil, nil)

	rec := models.AuthorizedEmail{Email: "dean@campus.edu"}
	require.NoError(t, svc.OnCreate(context.Background(), rec))
	require.True(t, ident.Claims.HasAdmin())
	assert.Equal(t, true, ident.Claims["faculty"])

	require.NoError(t, svc.OnDelete(context.Background(), rec))
	assert.False(t, ident.Claims.HasAdmin())
	assert.NotContains(t, ident.Claims, models.AdminClaim)
	assert.Equal(t, before, ident.Claims)
}

func TestClaimSyncIdempotentRedelivery(t *testing.T) {
	statuses := &syncStatusStub{}
	ids := &identityProviderStub{
		byEmail: map[string]*models.Identity{
			"dean@campus.edu": {ID: "u1", Claims: models.ClaimSet{}},
		},
	}
	svc := NewClaimSyncService(statuses, ids, nil, nil)

	rec := models.AuthorizedEmail{Email: "dean@campus.edu"}
	require.NoError(t, svc.OnCreate(context.Background(), rec))
	require.NoError(t, svc.OnCreate(context.Background(), rec))
	assert.Equal(t, 1, ids.setCalls)
}
