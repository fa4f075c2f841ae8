package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func TestGenerateParse_RoundTrip(t *testing.T) {
	token, err := Generate(secret, "user-a", "stock-ledger-api", 5)
	require.NoError(t, err)

	userID, err := Parse(secret, token)
	require.NoError(t, err)
	assert.Equal(t, "user-a", userID)
}

func TestParse_Rejects(t *testing.T) {
	valid, err := Generate(secret, "user-a", "stock-ledger-api", 5)
	require.NoError(t, err)

	_, err = Parse("otro-secret", valid)
	assert.Error(t, err, "firma con otro secret")

	expired, err := Generate(secret, "user-a", "stock-ledger-api", -1)
	require.NoError(t, err)
	_, err = Parse(secret, expired)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	_, err = Parse(secret, "no-es-un-token")
	assert.Error(t, err)

	_, err = Parse("", valid)
	assert.Error(t, err, "secret vacío")
}

func TestParse_FallsBackToSubject(t *testing.T) {
	claims := jwt.RegisteredClaims{
		Subject:   "user-b",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)

	userID, err := Parse(secret, token)
	require.NoError(t, err)
	assert.Equal(t, "user-b", userID)
}

func TestGenerate_RequiresSecretAndUser(t *testing.T) {
	_, err := Generate("", "user-a", "iss", 5)
	assert.Error(t, err)
	_, err = Generate(secret, "", "iss", 5)
	assert.Error(t, err)
}
