package jwt

import (
	"context"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifier_RoundTrip(t *testing.T) {
	v := NewVerifier("s3cret", "case-tracker")

	tok, err := v.Sign("ana", "ana@example.com", time.Hour)
	require.NoError(t, err)

	c, err := v.Verify(context.Background(), tok)
	require.NoError(t, err)
	assert.Equal(t, "ana", c.UserID)
	assert.Equal(t, "ana@example.com", c.Email)
}

func TestVerifier_Rejects(t *testing.T) {
	ctx := context.Background()
	v := NewVerifier("s3cret", "case-tracker")

	_, err := v.Verify(ctx, " ")
	assert.ErrorIs(t, err, ErrTokenEmpty)

	other, err := NewVerifier("other", "case-tracker").Sign("ana", "", time.Hour)
	require.NoError(t, err)
	_, err = v.Verify(ctx, other)
	assert.ErrorIs(t, err, gojwt.ErrTokenSignatureInvalid)

	wrongIssuer, err := NewVerifier("s3cret", "someone-else").Sign("ana", "", time.Hour)
	require.NoError(t, err)
	_, err = v.Verify(ctx, wrongIssuer)
	assert.ErrorIs(t, err, gojwt.ErrTokenInvalidIssuer)

	expired, err := v.Sign("ana", "", -time.Minute)
	require.NoError(t, err)
	_, err = v.Verify(ctx, expired)
	assert.ErrorIs(t, err, gojwt.ErrTokenExpired)

	noSubject, err := v.Sign("", "", time.Hour)
	require.NoError(t, err)
	_, err = v.Verify(ctx, noSubject)
	assert.ErrorIs(t, err, ErrMissingSubject)

	_, err = NewVerifier("", "").Verify(ctx, "x")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
