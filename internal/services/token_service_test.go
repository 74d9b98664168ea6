package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightpilot/insightpilot-api/internal/core/apperrors"
)

func newTestTokenService(db *fakeDB) *TokenService {
	return NewTokenService(db, "test-secret", 15*time.Minute, 7*24*time.Hour)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := newTestTokenService(newFakeDB())

	token, err := svc.IssueAccessToken("user-42")
	require.NoError(t, err)

	userID, exp, err := svc.Verify(context.Background(), token, TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, "user-42", userID)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), exp, time.Minute)
}

func TestRefreshTokenRejectedAsAccess(t *testing.T) {
	svc := newTestTokenService(newFakeDB())

	token, err := svc.IssueRefreshToken("user-42")
	require.NoError(t, err)

	_, _, err = svc.Verify(context.Background(), token, TokenTypeAccess)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestRevokedTokenRejected(t *testing.T) {
	svc := newTestTokenService(newFakeDB())
	ctx := context.Background()

	token, err := svc.IssueAccessToken("user-42")
	require.NoError(t, err)
	require.NoError(t, svc.Revoke(ctx, token))

	_, _, err = svc.Verify(ctx, token, TokenTypeAccess)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestTamperedTokenRejected(t *testing.T) {
	svc := newTestTokenService(newFakeDB())
	other := NewTokenService(newFakeDB(), "different-secret", 15*time.Minute, time.Hour)

	token, err := other.IssueAccessToken("user-42")
	require.NoError(t, err)

	_, _, err = svc.Verify(context.Background(), token, TokenTypeAccess)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestExpiredTokenRejected(t *testing.T) {
	db := newFakeDB()
	svc := NewTokenService(db, "test-secret", -time.Minute, time.Hour)

	token, err := svc.IssueAccessToken("user-42")
	require.NoError(t, err)

	_, _, err = svc.Verify(context.Background(), token, TokenTypeAccess)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestRevokeGarbageIsNoOp(t *testing.T) {
	db := newFakeDB()
	svc := newTestTokenService(db)

	require.NoError(t, svc.Revoke(context.Background(), "not-a-token"))
	assert.Empty(t, db.revoked)
}
