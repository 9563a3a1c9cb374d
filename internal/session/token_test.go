package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssuer_IssueAndVerify(t *testing.T) {
	iss := NewIssuer("secret", time.Hour)

	token, err := iss.Issue("admin")
	require.NoError(t, err)

	claims, err := iss.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Subject)
	assert.Equal(t, "sly-barbershop", claims.Issuer)
}

func TestIssuer_RejectsWrongSecret(t *testing.T) {
	token, err := NewIssuer("other", time.Hour).Issue("admin")
	require.NoError(t, err)

	_, err = NewIssuer("secret", time.Hour).Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssuer_RejectsExpired(t *testing.T) {
	iss := NewIssuer("secret", time.Minute)
	now := time.Date(2025, 12, 1, 9, 0, 0, 0, time.UTC)
	iss.now = func() time.Time { return now }

	token, err := iss.Issue("admin")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = iss.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssuer_RejectsOtherAlgorithms(t *testing.T) {
	claims := jwt.RegisteredClaims{Issuer: "sly-barbershop", Subject: "admin"}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewIssuer("secret", time.Hour).Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssuer_MissingSecret(t *testing.T) {
	iss := NewIssuer("", time.Hour)

	_, err := iss.Issue("admin")
	assert.Error(t, err)
	_, err = iss.Verify("anything")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
