package backend

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"userdir/internal/users/models"
	"userdir/internal/users/store/file"
)

func TestCookieCodec(t *testing.T) {
	t.Run("round-trips users with awkward characters", func(t *testing.T) {
		users := models.NewSnapshot(
			models.User{ID: "1", Nickname: "alice; \"the\" great", Email: "a@x.com"},
			models.User{ID: "2", Nickname: "bob, jr", Email: "b+tag@x.com"},
		)
		value, err := EncodeCookieValue(users)
		require.NoError(t, err)

		decoded, err := DecodeCookieValue(value)
		require.NoError(t, err)
		assert.Equal(t, users.Map(), decoded.Map())
		assert.Equal(t, users.Users(), decoded.Users())
	})

	t.Run("encoded value is a valid cookie value", func(t *testing.T) {
		value, err := EncodeCookieValue(models.NewSnapshot(models.User{ID: "1", Nickname: "a b", Email: "\"q\""}))
		require.NoError(t, err)
		assert.Equal(t, CookieName+"="+value, (&http.Cookie{Name: CookieName, Value: value}).String())
		assert.NotContains(t, value, "\"")
		assert.NotContains(t, value, ";")
	})

	t.Run("accepts an unescaped JSON list verbatim", func(t *testing.T) {
		decoded, err := DecodeCookieValue(`[{"id":"1","nickname":"alice","email":"b+tag@x.com"},{"id":"2","nickname":"50%25 off","email":"c@x.com"}]`)
		require.NoError(t, err)
		assert.Equal(t, []models.User{
			{ID: "1", Nickname: "alice", Email: "b+tag@x.com"},
			{ID: "2", Nickname: "50%25 off", Email: "c@x.com"},
		}, decoded.Users())
	})

	t.Run("bad escape sequence is an error", func(t *testing.T) {
		_, err := DecodeCookieValue("%zz")
		assert.Error(t, err)
	})

	t.Run("empty value is an empty snapshot", func(t *testing.T) {
		decoded, err := DecodeCookieValue("")
		require.NoError(t, err)
		assert.Equal(t, 0, decoded.Len())
	})
}

func TestCookieBackend(t *testing.T) {
	ctx := context.Background()
	b := NewCookie(false)

	t.Run("missing cookie opens an empty store", func(t *testing.T) {
		s, err := b.Open(httptest.NewRequest(http.MethodGet, "/users", nil))
		require.NoError(t, err)
		all, err := s.All(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, all.Len())
	})

	t.Run("garbage cookie opens an empty store", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/users", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: "not-json"})
		s, err := b.Open(req)
		require.NoError(t, err)
		all, err := s.All(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, all.Len())
	})

	t.Run("persisted snapshot is readable by the next request", func(t *testing.T) {
		s, err := b.Open(httptest.NewRequest(http.MethodPost, "/users", nil))
		require.NoError(t, err)
		require.NoError(t, s.Save(ctx, &models.User{ID: "1", Nickname: "alice", Email: "a@x.com"}))

		rec := httptest.NewRecorder()
		require.NoError(t, b.Persist(ctx, rec, s))

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, CookieName, cookies[0].Name)
		assert.Equal(t, "/", cookies[0].Path)

		next := httptest.NewRequest(http.MethodGet, "/users", nil)
		next.AddCookie(cookies[0])
		reopened, err := b.Open(next)
		require.NoError(t, err)
		found, err := reopened.FindByID(ctx, "1")
		require.NoError(t, err)
		assert.Equal(t, "alice", found.Nickname)
	})
}

func TestFileBackend(t *testing.T) {
	ctx := context.Background()
	fs := file.New(filepath.Join(t.TempDir(), "users.json"))
	b := NewFile(fs)

	s, err := b.Open(httptest.NewRequest(http.MethodPost, "/users", nil))
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, &models.User{ID: "1", Nickname: "alice", Email: "a@x.com"}))

	rec := httptest.NewRecorder()
	require.NoError(t, b.Persist(ctx, rec, s))
	assert.Empty(t, rec.Result().Cookies())

	reopened, err := b.Open(httptest.NewRequest(http.MethodGet, "/users", nil))
	require.NoError(t, err)
	_, err = reopened.FindByID(ctx, "1")
	assert.NoError(t, err)
}
