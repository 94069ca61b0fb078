package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashRoundtrip(t *testing.T) {
	hash, err := HashPassword("s3cret-password")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-password", hash)

	assert.True(t, CheckPasswordHash("s3cret-password", hash))
	assert.False(t, CheckPasswordHash("wrong-password", hash))
}

func TestTokenRoundtrip(t *testing.T) {
	secret := []byte("test-secret")

	token, err := GenerateToken("64a1f0d2e3b4c5d6e7f80912", secret)
	require.NoError(t, err)

	claims, err := ParseToken(token, secret)
	require.NoError(t, err)
	assert.Equal(t, "64a1f0d2e3b4c5d6e7f80912", claims.ID)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	token, err := GenerateToken("64a1f0d2e3b4c5d6e7f80912", []byte("right"))
	require.NoError(t, err)

	_, err = ParseToken(token, []byte("wrong"))
	assert.Error(t, err)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	_, err := ParseToken("not-a-token", []byte("secret"))
	assert.Error(t, err)
}

func TestNewVerificationToken(t *testing.T) {
	a, err := NewVerificationToken()
	require.NoError(t, err)
	b, err := NewVerificationToken()
	require.NoError(t, err)

	assert.Len(t, a, 64) // 32 bytes hex encoded
	assert.NotEqual(t, a, b)
}

func TestNewPhoneVerificationCode(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := NewPhoneVerificationCode()
		require.NoError(t, err)
		require.Len(t, code, 6)
		for _, r := range code {
			require.True(t, r >= '0' && r <= '9', "code %q contains non-digit", code)
		}
	}
}
