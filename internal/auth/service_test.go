package auth

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	repo, err := NewFileRepo(t.TempDir())
	require.NoError(t, err)
	return NewService(repo, []byte("test-secret"), zerolog.Nop())
}

func TestSignUpAndSignIn(t *testing.T) {
	s := newTestService(t)
	now := time.Now()

	u, token, exp, err := s.SignUp("ada@example.com", "correct horse", now)
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.NotEmpty(t, token)
	assert.True(t, exp.After(now))

	_, _, _, err = s.SignUp("ada@example.com", "another pass", now)
	assert.ErrorIs(t, err, ErrEmailTaken)

	got, _, _, err := s.SignIn("Ada@Example.com", "correct horse", now)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, _, _, err = s.SignIn("ada@example.com", "wrong password", now)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, _, err = s.SignIn("nobody@example.com", "whatever1", now)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignUpValidation(t *testing.T) {
	s := newTestService(t)
	now := time.Now()

	_, _, _, err := s.SignUp("not-an-email", "long enough", now)
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, _, _, err = s.SignUp("ok@example.com", "short", now)
	assert.ErrorIs(t, err, ErrWeakPassword)
}

func TestAuthenticate_BearerToken(t *testing.T) {
	s := newTestService(t)
	now := time.Now()

	u, token, _, err := s.SignUp("ada@example.com", "correct horse", now)
	require.NoError(t, err)

	r := httptest.NewRequest("GET", "/api/tasks", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	got, sess, ok := s.Authenticate(r, now)
	require.True(t, ok)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, u.ID, sess.UserID)

	r.Header.Set("Authorization", "Bearer not.a.token")
	_, _, ok = s.Authenticate(r, now)
	assert.False(t, ok)
}

func TestSignOutInvalidatesToken(t *testing.T) {
	s := newTestService(t)
	now := time.Now()

	_, token, _, err := s.SignUp("ada@example.com", "correct horse", now)
	require.NoError(t, err)

	require.NoError(t, s.SignOut(token, now))

	r := httptest.NewRequest("GET", "/api/tasks", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	_, _, ok := s.Authenticate(r, now)
	assert.False(t, ok, "signed-out token must not authenticate")

	// idempotent
	require.NoError(t, s.SignOut(token, now))
}

func TestSessionExpiry(t *testing.T) {
	s := newTestService(t)
	now := time.Now()

	_, token, exp, err := s.SignUp("ada@example.com", "correct horse", now)
	require.NoError(t, err)

	r := httptest.NewRequest("GET", "/api/tasks", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	_, _, ok := s.Authenticate(r, exp.Add(time.Minute))
	assert.False(t, ok, "expired session must not authenticate")
}
