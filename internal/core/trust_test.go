package core

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestPGTrustStore_HasStandingGrant(t *testing.T) {
	for _, want := range []bool{true, false} {
		db := &mockDB{}
		s := NewPGTrustStore(db)
		ctx := context.Background()

		row := &mockRow{scanFunc: func(dest ...any) error {
			*(dest[0].(*bool)) = want
			return nil
		}}
		db.On("QueryRow", ctx, mock.AnythingOfType("string"), []any{"ckey-1", int64(9)}).Return(row)

		got, err := s.HasStandingGrant(ctx, "ckey-1", 9)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		db.AssertExpectations(t)
	}
}

func TestPGTrustStore_HasStandingGrant_DBError(t *testing.T) {
	db := &mockDB{}
	s := NewPGTrustStore(db)
	ctx := context.Background()

	row := &mockRow{scanFunc: func(dest ...any) error { return errors.New("boom") }}
	db.On("QueryRow", ctx, mock.AnythingOfType("string"), mock.Anything).Return(row)

	_, err := s.HasStandingGrant(ctx, "ckey-1", 9)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "check standing grant")
}

func TestPGTrustStore_RecordGrant_Upserts(t *testing.T) {
	db := &mockDB{}
	s := NewPGTrustStore(db)
	ctx := context.Background()

	db.On("Exec", ctx, mock.MatchedBy(func(sql string) bool {
		return strings.Contains(sql, "ON CONFLICT (consumer_key, user_id) DO UPDATE")
	}), []any{"ckey-1", int64(9)}).Return(pgconn.NewCommandTag("INSERT 0 1"), nil)

	require.NoError(t, s.RecordGrant(ctx, "ckey-1", 9))
	db.AssertExpectations(t)
}

func TestPGTrustStore_RecordGrant_DBError(t *testing.T) {
	db := &mockDB{}
	s := NewPGTrustStore(db)
	ctx := context.Background()

	db.On("Exec", ctx, mock.AnythingOfType("string"), mock.Anything).
		Return(pgconn.CommandTag{}, errors.New("read-only transaction"))

	err := s.RecordGrant(ctx, "ckey-1", 9)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "record grant")
}

func TestPGTrustStore_RevokeGrant(t *testing.T) {
	db := &mockDB{}
	s := NewPGTrustStore(db)
	ctx := context.Background()

	db.On("Exec", ctx, mock.MatchedBy(func(sql string) bool {
		return strings.Contains(sql, "DELETE FROM okapi_authorizations")
	}), []any{"ckey-1", int64(9)}).Return(pgconn.NewCommandTag("DELETE 0"), nil)

	require.NoError(t, s.RevokeGrant(ctx, "ckey-1", 9))
	db.AssertExpectations(t)
}

func TestPGTrustStore_RevokeGrant_DBError(t *testing.T) {
	db := &mockDB{}
	s := NewPGTrustStore(db)
	ctx := context.Background()

	db.On("Exec", ctx, mock.AnythingOfType("string"), mock.Anything).
		Return(pgconn.CommandTag{}, errors.New("read-only transaction"))

	err := s.RevokeGrant(ctx, "ckey-1", 9)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "revoke grant")
}
