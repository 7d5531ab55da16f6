package session

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meetly-app/meetly/internal/notify"
	"github.com/meetly-app/meetly/pkg/models"
)

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

func TestFileStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	bus := notify.New()

	var authChanges int
	bus.Subscribe(notify.AuthChange, func(notify.Topic) { authChanges++ })

	s, err := OpenFileStore(dir, bus)
	require.NoError(t, err)
	assert.Empty(t, s.Token())
	assert.Nil(t, s.User())

	user := models.User{ID: "u1", Name: "Ada", Email: "ada@example.com", Role: models.RoleHost}
	require.NoError(t, s.Save("tok-1", user))
	assert.Equal(t, 1, authChanges)

	if runtime.GOOS != "windows" {
		info, err := os.Stat(filepath.Join(dir, FileName))
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	}

	reopened, err := OpenFileStore(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", reopened.Token())
	require.NotNil(t, reopened.User())
	assert.Equal(t, user.Email, reopened.User().Email)
	assert.Equal(t, models.RoleHost, reopened.User().Role)

	require.NoError(t, reopened.Clear())
	_, err = os.Stat(filepath.Join(dir, FileName))
	assert.True(t, os.IsNotExist(err))
	assert.Empty(t, reopened.Token())
}

func TestFileStoreDiscardsCorruptUser(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte(`{"token":"abc","user":"{not json"}`), 0o600))

	s, err := OpenFileStore(dir, nil)
	require.NoError(t, err)
	assert.Empty(t, s.Token())
	assert.Nil(t, s.User())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestClearWithoutFileIsNotAnError(t *testing.T) {
	s, err := OpenFileStore(t.TempDir(), nil)
	require.NoError(t, err)
	assert.NoError(t, s.Clear())
}

func TestSubscribersSeeChanges(t *testing.T) {
	s := NewMemoryStore(nil)

	var got []Change
	unsubscribe := s.Subscribe(func(c Change) { got = append(got, c) })

	require.NoError(t, s.Save("tok", models.User{ID: "u1"}))
	require.NoError(t, s.Clear())
	unsubscribe()
	require.NoError(t, s.Save("tok-2", models.User{ID: "u2"}))

	require.Len(t, got, 2)
	assert.True(t, got[0].SignedIn())
	assert.Equal(t, "u1", got[0].User.ID)
	assert.False(t, got[1].SignedIn())
}

func TestUserReturnsCopy(t *testing.T) {
	s := NewMemoryStore(nil)
	require.NoError(t, s.Save("tok", models.User{ID: "u1", Name: "Ada"}))

	u := s.User()
	u.Name = "changed"
	assert.Equal(t, "Ada", s.User().Name)
}

func TestSignedIn(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	live := signed(t, jwt.MapClaims{"id": "u1", "exp": now.Add(time.Hour).Unix()})
	stale := signed(t, jwt.MapClaims{"id": "u1", "exp": now.Add(-time.Hour).Unix()})

	tests := []struct {
		name  string
		token string
		user  bool
		want  bool
	}{
		{"live token", live, true, true},
		{"expired token", stale, true, false},
		{"opaque token", "opaque", true, true},
		{"no token", "", true, false},
		{"no user", live, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewMemoryStore(nil)
			s.token = tt.token
			if tt.user {
				s.user = &models.User{ID: "u1"}
			}
			assert.Equal(t, tt.want, SignedIn(s, now))

			_, err := Require(s, now)
			if tt.want {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrNoSession)
			}
		})
	}
}

func TestParseClaims(t *testing.T) {
	exp := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	tok := signed(t, jwt.MapClaims{"id": "u42", "role": "Admin", "exp": exp.Unix()})

	c, err := ParseClaims(tok)
	require.NoError(t, err)
	assert.Equal(t, "u42", c.Subject)
	assert.Equal(t, "Admin", c.Role)
	assert.True(t, c.ExpiresAt.Equal(exp))

	sub := signed(t, jwt.MapClaims{"sub": "s1", "id": "ignored"})
	c, err = ParseClaims(sub)
	require.NoError(t, err)
	assert.Equal(t, "s1", c.Subject)
	assert.True(t, c.ExpiresAt.IsZero())
	assert.False(t, Expired(sub, exp))

	_, err = ParseClaims("not-a-jwt")
	assert.Error(t, err)
}
