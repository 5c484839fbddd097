package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)
	userID := uuid.New()

	signed, err := tokens.Issue(userID)
	require.NoError(t, err)

	got, err := tokens.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestVerifyRejectsForeignSignature(t *testing.T) {
	signed, err := NewTokens("one", time.Hour).Issue(uuid.New())
	require.NoError(t, err)

	_, err = NewTokens("two", time.Hour).Verify(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	tokens := NewTokens("secret", time.Minute)
	issuedAt := time.Now().Add(-time.Hour)
	tokens.now = func() time.Time { return issuedAt }

	signed, err := tokens.Issue(uuid.New())
	require.NoError(t, err)

	tokens.now = time.Now
	_, err = tokens.Verify(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	_, err := NewTokens("secret", time.Hour).Verify("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
