package auth

import (
	"testing"
	"time"

	"github.com/bilgisen/ujala/internal/apperr"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	ts := NewTokenService("secret", time.Hour)

	token, exp, err := ts.Sign("u1", "a@example.com", "admin", "Asha")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := ts.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "a@example.com", claims.Email)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "Asha", claims.Name)
	assert.Equal(t, "u1", claims.Subject)
}

func TestTokenRejectsWrongSecretAndExpiry(t *testing.T) {
	ts := NewTokenService("secret", time.Hour)
	token, _, err := ts.Sign("u1", "", "admin", "")
	require.NoError(t, err)

	_, err = NewTokenService("other", time.Hour).Parse(token)
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))

	late := ts
	late.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = late.Parse(token)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
	assert.Equal(t, "Token expired", apperr.Message(err))

	_, err = ts.Parse("not.a.token")
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
}

func TestTokenRejectsOtherAlgorithms(t *testing.T) {
	ts := NewTokenService("secret", time.Hour)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{UserID: "u1"})
	s, err := tok.SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = ts.Parse(s)
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)

	ok, err := CheckPassword(hash, "hunter22")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = CheckPassword(hash, "wrong")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = CheckPassword("plain", "plain")
	assert.Error(t, err)
}
