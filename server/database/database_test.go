package database

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stridelog/stridelog/server/store"
)

func newMockDatabase(t *testing.T) (*Database, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = mockDB.Close()
	})

	return &Database{db: sqlx.NewDb(mockDB, "sqlmock")}, mock
}

func TestGetSessionExpired(t *testing.T) {
	d, mock := newMockDatabase(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM sessions")).
		WithArgs("sess-1").
		WillReturnRows(sqlmock.NewRows([]string{"session_id", "session_user_id", "session_expires_at", "user_id", "user_email"}).
			AddRow("sess-1", "u1", time.Now().Add(-time.Minute), "u1", "ann@example.com"))

	_, err := d.GetSession(context.Background(), "sess-1")
	assert.ErrorIs(t, err, store.ErrSessionExpired)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetSessionNotFound(t *testing.T) {
	d, mock := newMockDatabase(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM sessions")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := d.GetSession(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteExpiredInvites(t *testing.T) {
	d, mock := newMockDatabase(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM invites")).
		WillReturnResult(sqlmock.NewResult(0, 3))

	rows, err := d.DeleteExpiredInvites(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateProfileRefreshesMembershipSnapshots(t *testing.T) {
	d, mock := newMockDatabase(t)

	update := store.ProfileUpdate{
		DisplayName: "Morning Miles",
		Email:       "miles@example.com",
		Phone:       "+1 555 0100",
		Role:        store.RoleMember,
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users")).
		WithArgs("u1", update.DisplayName, update.Email, update.Phone, update.Role).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// Both membership rows refresh inside the same transaction.
	mock.ExpectExec(regexp.QuoteMeta("UPDATE memberships")).
		WithArgs("u1", update.DisplayName, update.Email, update.Phone).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	require.NoError(t, d.UpdateProfile(context.Background(), "u1", update))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateProfileUnknownUserRollsBack(t *testing.T) {
	d, mock := newMockDatabase(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users")).
		WithArgs("nobody", "Ghost", "", "", "").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := d.UpdateProfile(context.Background(), "nobody", store.ProfileUpdate{DisplayName: "Ghost"})
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimInviteAlreadyConsumed(t *testing.T) {
	d, mock := newMockDatabase(t)

	consumedAt := time.Now().Add(-time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE invites")).
		WithArgs("tok-1", "bob").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM invites WHERE invite_token = $1")).
		WithArgs("tok-1").
		WillReturnRows(sqlmock.NewRows([]string{"invite_token", "invite_club_id", "invite_consumed_at", "invite_consumed_by"}).
			AddRow("tok-1", "c1", consumedAt, "alice"))
	mock.ExpectRollback()

	_, err := d.ClaimInvite(context.Background(), "tok-1", store.User{ID: "bob"})
	assert.ErrorIs(t, err, store.ErrInviteConsumed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimInviteRepeatByWinnerIsIdempotent(t *testing.T) {
	d, mock := newMockDatabase(t)

	consumedAt := time.Now().Add(-time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE invites")).
		WithArgs("tok-1", "alice").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM invites WHERE invite_token = $1")).
		WithArgs("tok-1").
		WillReturnRows(sqlmock.NewRows([]string{"invite_token", "invite_club_id", "invite_consumed_at", "invite_consumed_by"}).
			AddRow("tok-1", "c1", consumedAt, "alice"))
	mock.ExpectCommit()

	invite, err := d.ClaimInvite(context.Background(), "tok-1", store.User{ID: "alice"})
	require.NoError(t, err)
	assert.Equal(t, "c1", invite.ClubID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
