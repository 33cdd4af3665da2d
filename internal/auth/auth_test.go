package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/medicart/internal/hash"
)

func TestIssuer_RoundTrip(t *testing.T) {
	iss := NewIssuer([]byte("secret"), time.Hour)

	raw, p, err := iss.Issue("admin")
	require.NoError(t, err)
	assert.Equal(t, "admin", p.Username)

	got, err := iss.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "admin", got.Username)
	assert.Equal(t, RoleAdmin, got.Role)
	assert.WithinDuration(t, p.ExpiresAt, got.ExpiresAt, time.Second)
}

func TestIssuer_RejectsExpired(t *testing.T) {
	iss := NewIssuer([]byte("secret"), time.Minute)
	iss.now = func() time.Time { return time.Now().Add(-time.Hour) }

	raw, _, err := iss.Issue("admin")
	require.NoError(t, err)

	iss.now = time.Now
	_, err = iss.Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssuer_RejectsForeignSecretAndGarbage(t *testing.T) {
	raw, _, err := NewIssuer([]byte("other"), time.Hour).Issue("admin")
	require.NoError(t, err)

	iss := NewIssuer([]byte("secret"), time.Hour)
	_, err = iss.Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = iss.Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = iss.Parse("")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssuer_RejectsWrongRole(t *testing.T) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuerName,
			Subject:   "someone",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role: "user",
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewIssuer([]byte("secret"), time.Hour).Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPrincipalContext(t *testing.T) {
	_, ok := PrincipalFrom(context.Background())
	assert.False(t, ok)

	ctx := WithPrincipal(context.Background(), Principal{Username: "admin"})
	p, ok := PrincipalFrom(ctx)
	require.True(t, ok)
	assert.Equal(t, "admin", p.Username)
}

func TestCredentials_PlainPassword(t *testing.T) {
	c, err := NewCredentials("admin", "2010445", "")
	require.NoError(t, err)

	assert.NoError(t, c.Verify("admin", "2010445"))
	assert.ErrorIs(t, c.Verify("admin", "nope"), ErrBadCredentials)
	assert.ErrorIs(t, c.Verify("root", "2010445"), ErrBadCredentials)
}

func TestCredentials_Hashed(t *testing.T) {
	h, err := hash.HashPassword("s3cret")
	require.NoError(t, err)

	c, err := NewCredentials("admin", "", h)
	require.NoError(t, err)
	assert.NoError(t, c.Verify("admin", "s3cret"))

	_, err = NewCredentials("admin", "", "not-bcrypt")
	assert.Error(t, err)

	_, err = NewCredentials("admin", "", "")
	assert.Error(t, err)
}
