package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/leasedesk/internal/auth"
	"github.com/gosuda/leasedesk/internal/domain"
)

const testSecret = "test-secret-key-very-long-and-secure"

func testPrincipal() *domain.Principal {
	return &domain.Principal{ID: 42, Name: "Ada", Email: "ada@example.com", Role: domain.RoleLandlord}
}

func TestJWT_IssueAndValidateRoundTrip(t *testing.T) {
	t.Parallel()

	token, err := auth.IssueToken(testSecret, testPrincipal(), 5*time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := auth.ValidateToken(testSecret, token)
	require.NoError(t, err)
	require.NotNil(t, claims)

	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.Equal(t, "landlord", claims.Role)
	assert.Equal(t, "leasedesk", claims.Issuer)
	assert.NotNil(t, claims.ExpiresAt)
}

func TestJWT_ExpiredTokenRejected(t *testing.T) {
	t.Parallel()

	// Issue a token that has already expired (negative TTL).
	token, err := auth.IssueToken(testSecret, testPrincipal(), -1*time.Second)
	require.NoError(t, err)

	claims, err := auth.ValidateToken(testSecret, token)
	require.Error(t, err)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestJWT_InvalidSecretRejected(t *testing.T) {
	t.Parallel()

	token, err := auth.IssueToken(testSecret, testPrincipal(), 5*time.Minute)
	require.NoError(t, err)

	claims, err := auth.ValidateToken("another-secret-key-that-is-long-enough", token)
	require.Error(t, err)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestJWT_ForeignIssuerRejected(t *testing.T) {
	t.Parallel()

	claims := auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone-else",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Email: "ada@example.com",
		Role:  "admin",
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = auth.ValidateToken(testSecret, token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestJWT_MalformedTokenRejected(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty string", token: ""},
		{name: "random garbage", token: "not-a-jwt-token"},
		{name: "three dots", token: "a.b.c"},
		{name: "none algorithm", token: "eyJhbGciOiJub25lIiwidHlwIjoiSldUIn0.eyJlbWFpbCI6ImFAYi5jIn0."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			claims, err := auth.ValidateToken(testSecret, tt.token)
			require.Error(t, err)
			assert.Nil(t, claims)
			assert.ErrorIs(t, err, auth.ErrInvalidToken)
		})
	}
}

func TestPassword_HashAndVerify(t *testing.T) {
	t.Parallel()

	hash, err := auth.HashPassword("s3cret!")
	require.NoError(t, err)
	assert.Contains(t, hash, "$")

	assert.True(t, auth.VerifyPassword("s3cret!", hash))
	assert.False(t, auth.VerifyPassword("wrong", hash))
	assert.False(t, auth.VerifyPassword("s3cret!", "not-a-hash"))
	assert.False(t, auth.VerifyPassword("s3cret!", "zz$zz"))

	other, err := auth.HashPassword("s3cret!")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other, "salt must differ between hashes")
}
