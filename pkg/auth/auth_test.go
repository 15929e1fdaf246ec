package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hashed, err := h.Hash("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", hashed)

	assert.NoError(t, h.Compare(hashed, "hunter2"))
	assert.ErrorIs(t, h.Compare(hashed, "hunter3"), ErrPasswordMismatch)
}

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour, "drink-tracker")

	token, exp, err := issuer.Issue(42, "alice")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	id, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
}

func TestTokenIssuer_Rejects(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour, "drink-tracker")
	token, _, err := issuer.Issue(1, "alice")
	require.NoError(t, err)

	other := NewTokenIssuer("other-secret", time.Hour, "drink-tracker")
	_, err = other.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := NewTokenIssuer("secret", time.Minute, "drink-tracker")
	expired.now = func() time.Time { return time.Now().Add(-time.Hour) }
	old, _, err := expired.Issue(1, "alice")
	require.NoError(t, err)
	_, err = issuer.Parse(old)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = issuer.Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
