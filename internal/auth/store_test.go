package auth

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "auth.json"))
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
		"exp": exp.Unix(),
	})
	s, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func TestSetGetRoundTrip(t *testing.T) {
	s := testStore(t)

	require.NoError(t, s.Set(Credentials{
		AccessToken: signedToken(t, time.Now().Add(time.Hour)),
		User:        &User{ID: "u1", Name: "Dana", Email: "dana@example.com"},
	}))

	creds := s.Get()
	require.NotNil(t, creds)
	assert.Equal(t, "u1", creds.User.ID)
	assert.NotEmpty(t, s.Token())
}

func TestGetEmptyStore(t *testing.T) {
	s := testStore(t)
	assert.Nil(t, s.Get())
	assert.Empty(t, s.Token())
}

func TestExpiredTokenTreatedAsAbsent(t *testing.T) {
	s := testStore(t)

	require.NoError(t, s.Set(Credentials{
		AccessToken: signedToken(t, time.Now().Add(-time.Minute)),
	}))

	assert.Nil(t, s.Get())
}

func TestClear(t *testing.T) {
	s := testStore(t)

	require.NoError(t, s.Set(Credentials{
		AccessToken: signedToken(t, time.Now().Add(time.Hour)),
	}))
	require.NoError(t, s.Clear())
	assert.Nil(t, s.Get())

	// Clearing again is not an error.
	require.NoError(t, s.Clear())
}

func TestTokenExpired(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name  string
		token string
		want  bool
	}{
		{"future exp", signedToken(t, now.Add(time.Hour)), false},
		{"past exp", signedToken(t, now.Add(-time.Hour)), true},
		{"not a jwt", "opaque-token", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TokenExpired(tt.token, now))
		})
	}
}

func TestNormalizeLastEndpoint(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "/"},
		{"/login", "/"},
		{"/login/redirect", "/"},
		{"/quiz/abc", "/quiz/abc"},
		{"/", "/"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeLastEndpoint(tt.in), "input %q", tt.in)
	}
}
