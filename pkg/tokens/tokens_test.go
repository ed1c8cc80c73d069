package tokens

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessClaims_RoundTrip(t *testing.T) {
	t.Parallel()

	secret := []byte("access-secret")
	sub := uuid.NewString()
	tok, err := SignAccess(AccessClaims{
		Role: "SELLER",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}, secret)
	require.NoError(t, err)

	claims, err := AccessClaimsFromToken(tok, secret)
	require.NoError(t, err)
	assert.Equal(t, sub, claims.Subject)
	assert.Equal(t, "SELLER", claims.Role)

	_, err = AccessClaimsFromToken(tok, []byte("other"))
	require.Error(t, err)
}

func TestAccessClaims_Expired(t *testing.T) {
	t.Parallel()

	secret := []byte("access-secret")
	tok, err := SignAccess(AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}, secret)
	require.NoError(t, err)

	_, err = AccessClaimsFromToken(tok, secret)
	assert.True(t, errors.Is(err, jwt.ErrTokenExpired))
}

func TestRefreshClaims_RoundTrip(t *testing.T) {
	t.Parallel()

	secret := []byte("refresh-secret")
	tok, err := SignRefresh(RefreshClaims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "u1",
		ID:        "jti-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}, secret)
	require.NoError(t, err)

	claims, err := RefreshClaimsFromToken(tok, secret)
	require.NoError(t, err)
	assert.Equal(t, "jti-1", claims.ID)
}
