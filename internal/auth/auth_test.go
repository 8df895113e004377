package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"easydish/internal/storage"
)

const testSecret = "super-secret-jwt-token-with-at-least-32-characters"

var alice = User{
	ID:       "0f8fad5b-d9cb-469f-a165-70867728950e",
	Email:    "alice@example.com",
	Metadata: map[string]any{"full_name": "Alice"},
}

func TestVerify(t *testing.T) {
	v := NewVerifier(testSecret)

	token, err := v.Issue(alice, time.Hour)
	require.NoError(t, err)

	u, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, u.ID)
	assert.Equal(t, alice.Email, u.Email)
	assert.Equal(t, "Alice", u.Metadata["full_name"])
}

func TestVerifyRejects(t *testing.T) {
	v := NewVerifier(testSecret)

	expired, err := v.Issue(alice, -time.Minute)
	require.NoError(t, err)

	otherKey, err := NewVerifier("another-secret").Issue(alice, time.Hour)
	require.NoError(t, err)

	noSubject, err := v.Issue(User{Email: "x@example.com"}, time.Hour)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": alice.ID}).
		SignedString([]byte(testSecret))
	require.NoError(t, err)

	noneAlg, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": alice.ID,
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := map[string]string{
		"expired":    expired,
		"other key":  otherKey,
		"no subject": noSubject,
		"no expiry":  noExpiry,
		"alg none":   noneAlg,
		"garbage":    "not.a.token",
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := v.Verify(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestSession(t *testing.T) {
	ctx := context.Background()
	v := NewVerifier(testSecret)
	kv := storage.NewMemoryKV()

	var seen []*User
	s := NewSession(v, kv, nil)
	s.Subscribe(func(u *User) { seen = append(seen, u) })
	require.Len(t, seen, 1)
	assert.Nil(t, seen[0], "subscribe delivers the current value")

	token, err := v.Issue(alice, time.Hour)
	require.NoError(t, err)

	u, err := s.SignIn(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, u.ID)
	assert.Equal(t, alice.ID, s.User().ID)

	// A fresh session on the same storage picks the user back up.
	restored := NewSession(v, kv, nil)
	u, err = restored.Restore(ctx)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, alice.ID, u.ID)

	require.NoError(t, s.SignOut(ctx))
	assert.Nil(t, s.User())
	require.Len(t, seen, 3)
	assert.Nil(t, seen[2])

	u, err = NewSession(v, kv, nil).Restore(ctx)
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestSessionDiscardsInvalidToken(t *testing.T) {
	ctx := context.Background()
	v := NewVerifier(testSecret)
	kv := storage.NewMemoryKV()

	expired, err := v.Issue(alice, -time.Minute)
	require.NoError(t, err)
	require.NoError(t, kv.Set(ctx, SessionKey, []byte(expired)))

	u, err := NewSession(v, kv, nil).Restore(ctx)
	require.NoError(t, err)
	assert.Nil(t, u)

	_, err = kv.Get(ctx, SessionKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = NewSession(v, kv, nil).SignIn(ctx, expired)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
