// AngelaMos | 2026
// security_test.go

package core

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPasswordAndVerify(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))

	valid, err := VerifyPassword("correct horse battery staple", hash)
	require.NoError(t, err)
	assert.True(t, valid)

	valid, err = VerifyPassword("wrong password", hash)
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestHashPasswordUniqueSalts(t *testing.T) {
	h1, err := HashPassword("same input")
	require.NoError(t, err)

	h2, err := HashPassword("same input")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	_, err := VerifyPassword("whatever", "not-a-hash")
	assert.Error(t, err)
}

func TestVerifyPasswordTimingSafeNilHash(t *testing.T) {
	valid, rehash, err := VerifyPasswordTimingSafe("password", nil)
	require.NoError(t, err)
	assert.False(t, valid)
	assert.Empty(t, rehash)

	empty := ""
	valid, _, err = VerifyPasswordTimingSafe("password", &empty)
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestVerifyPasswordTimingSafeRealHash(t *testing.T) {
	hash, err := HashPassword("secret123")
	require.NoError(t, err)

	valid, rehash, err := VerifyPasswordTimingSafe("secret123", &hash)
	require.NoError(t, err)
	assert.True(t, valid)
	assert.Empty(t, rehash, "current params should not need rehash")

	valid, _, err = VerifyPasswordTimingSafe("nope", &hash)
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestIssueTokenAndHash(t *testing.T) {
	token, err := IssueToken()
	require.NoError(t, err)
	require.NotEmpty(t, token)

	other, err := IssueToken()
	require.NoError(t, err)
	assert.NotEqual(t, token, other)

	hash := HashToken(token)
	assert.Len(t, hash, 64)
	assert.NotEqual(t, token, hash)

	assert.True(t, CompareTokenHash(token, hash))
	assert.False(t, CompareTokenHash(other, hash))
}

func TestTokenExpiryWindows(t *testing.T) {
	now := time.Now()

	verification := TokenExpiry(TokenKindVerification)
	assert.WithinDuration(t, now.Add(24*time.Hour), verification, time.Minute)

	reset := TokenExpiry(TokenKindPasswordReset)
	assert.WithinDuration(t, now.Add(time.Hour), reset, time.Minute)

	session := TokenExpiry(TokenKindSession)
	assert.WithinDuration(t, now.Add(7*24*time.Hour), session, time.Minute)
}
