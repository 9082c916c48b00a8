package session

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"userdir/internal/session/models"
	"userdir/internal/session/store"
)

func newManager() (*Manager, *store.InMemory) {
	st := store.NewInMemory()
	return NewManager(st, slog.New(slog.NewTextHandler(io.Discard, nil)), false), st
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == CookieName {
			return c
		}
	}
	t.Fatalf("expected %s cookie", CookieName)
	return nil
}

func TestMiddleware(t *testing.T) {
	ctx := context.Background()

	t.Run("starts and persists a new session", func(t *testing.T) {
		m, st := newManager()
		h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := FromContext(r.Context())
			require.NotNil(t, sess)
			sess.Authenticated = true
		}))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users", nil))

		cookie := sessionCookie(t, rec)
		saved, err := st.Get(ctx, cookie.Value)
		require.NoError(t, err)
		assert.True(t, saved.Authenticated)
	})

	t.Run("reuses the session named by the cookie", func(t *testing.T) {
		m, st := newManager()
		existing := models.New("known")
		existing.AddFlash(models.FlashSuccess, "User has been deleted")
		require.NoError(t, st.Save(ctx, existing))

		var drained map[string][]string
		h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			drained = FromContext(r.Context()).DrainFlash()
		}))

		req := httptest.NewRequest(http.MethodGet, "/users", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: "known"})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, []string{"User has been deleted"}, drained[models.FlashSuccess])
		assert.Empty(t, rec.Result().Cookies())

		saved, err := st.Get(ctx, "known")
		require.NoError(t, err)
		assert.Empty(t, saved.Flash)
	})

	t.Run("unknown cookie starts a fresh session", func(t *testing.T) {
		m, _ := newManager()
		h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		req := httptest.NewRequest(http.MethodGet, "/users", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: "stale"})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.NotEqual(t, "stale", sessionCookie(t, rec).Value)
	})

	t.Run("destroy removes the session and expires the cookie", func(t *testing.T) {
		m, st := newManager()
		existing := models.New("doomed")
		existing.Authenticated = true
		require.NoError(t, st.Save(ctx, existing))

		h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m.Destroy(w, r)
			w.WriteHeader(http.StatusFound)
		}))

		req := httptest.NewRequest(http.MethodDelete, "/logout", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: "doomed"})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Less(t, sessionCookie(t, rec).MaxAge, 0)
		_, err := st.Get(ctx, "doomed")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}
