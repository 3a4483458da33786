package identity

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-dcm/slot-booking-api/internal/models"
)

func newProviderMock(t *testing.T) (*SQLProvider, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewSQLProvider(sqlx.NewDb(db, "sqlmock")), mock, func() { db.Close() }
}

func TestSQLProviderResolveEmail(t *testing.T) {
	provider, mock, cleanup := newProviderMock(t)
	defer cleanup()

	mock.ExpectQuery("SELECT (.+) FROM users WHERE email = \\$1").
		WithArgs("dean@campus.edu").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "full_name", "claims", "created_at"}).
			AddRow("u1", "dean@campus.edu", "Dean Rao", []byte(`{"admin":true}`), time.Now()))

	ident, err := provider.ResolveEmail(context.Background(), "dean@campus.edu")
	require.NoError(t, err)
	assert.Equal(t, "u1", ident.ID)
	assert.True(t, ident.Claims.HasAdmin())
}

func TestSQLProviderResolveEmailMissing(t *testing.T) {
	provider, mock, cleanup := newProviderMock(t)
	defer cleanup()

	mock.ExpectQuery("SELECT (.+) FROM users WHERE email = \\$1").
		WithArgs("ghost@campus.edu").
		WillReturnError(sql.ErrNoRows)

	_, err := provider.ResolveEmail(context.Background(), "ghost@campus.edu")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestSQLProviderSetClaim(t *testing.T) {
	provider, mock, cleanup := newProviderMock(t)
	defer cleanup()

	mock.ExpectExec("UPDATE users SET claims = COALESCE\\(claims, '\\{\\}'::jsonb\\) \\|\\| \\$1::jsonb WHERE id = \\$2").
		WithArgs(`{"admin":true}`, "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, provider.SetClaim(context.Background(), "u1", models.AdminClaim, true))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLProviderSetClaimMissingUser(t *testing.T) {
	provider, mock, cleanup := newProviderMock(t)
	defer cleanup()

	mock.ExpectExec("UPDATE users SET claims").
		WithArgs(sqlmock.AnyArg(), "gone").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, provider.SetClaim(context.Background(), "gone", models.AdminClaim, true), sql.ErrNoRows)
}

func TestSQLProviderUnsetClaim(t *testing.T) {
	provider, mock, cleanup := newProviderMock(t)
	defer cleanup()

	mock.ExpectExec("UPDATE users SET claims = COALESCE\\(claims, '\\{\\}'::jsonb\\) - \\$1 WHERE id = \\$2").
		WithArgs(models.AdminClaim, "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, provider.UnsetClaim(context.Background(), "u1", models.AdminClaim))
	assert.NoError(t, mock.ExpectationsWereMet())
}
