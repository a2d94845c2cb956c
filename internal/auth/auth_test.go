package auth

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/verte-zerg/typist/internal/model"
	"github.com/verte-zerg/typist/internal/store"
)

func newAccounts(t *testing.T) *Accounts {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "typist.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = st.Close()
	})
	a := NewAccounts(st)
	a.cost = bcrypt.MinCost
	return a
}

func TestSignupAndVerify(t *testing.T) {
	ctx := context.Background()
	a := newAccounts(t)

	user, err := a.Signup(ctx, " Ada@Example.com ", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.NotEqual(t, "s3cret", user.PasswordHash)

	_, err = a.Signup(ctx, "ada@example.com", "other")
	assert.True(t, errors.Is(err, ErrEmailTaken))

	got, err := a.Verify(ctx, "ADA@example.com", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = a.Verify(ctx, "ada@example.com", "wrong")
	assert.True(t, errors.Is(err, ErrInvalidCredentials))
	assert.True(t, errors.Is(err, model.ErrUnauthorized))

	_, err = a.Verify(ctx, "nobody@example.com", "s3cret")
	assert.True(t, errors.Is(err, ErrInvalidCredentials))

	_, err = a.User(ctx, user.ID+100)
	assert.True(t, errors.Is(err, model.ErrNotFound))
}

func TestTokenRoundTrip(t *testing.T) {
	tokens, err := NewTokens("secret", 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultTokenTTL, tokens.ttl)

	signed, err := tokens.Issue(42)
	require.NoError(t, err)

	id, err := tokens.Resolve(signed)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestTokenRejections(t *testing.T) {
	tokens, err := NewTokens("secret", time.Minute)
	require.NoError(t, err)

	tokens.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := tokens.Issue(1)
	require.NoError(t, err)
	tokens.now = time.Now

	other, err := NewTokens("other-secret", time.Minute)
	require.NoError(t, err)
	forged, err := other.Issue(1)
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "1"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Minute).Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	for name, tok := range map[string]string{
		"expired":    expired,
		"forged":     forged,
		"none":       none,
		"garbage":    "not-a-token",
		"no subject": noSubject,
	} {
		_, err := tokens.Resolve(tok)
		assert.True(t, errors.Is(err, ErrInvalidToken), name)
	}

	_, err = NewTokens("", time.Minute)
	assert.Error(t, err)
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "ada@example.com", NormalizeEmail("  Ada@Example.COM "))
}
