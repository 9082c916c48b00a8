// Package session carries login state and flash messages as explicit
// per-request values. The middleware loads the session named by the
// session cookie, exposes it through the request context and saves it once
// the handler returns.
package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"userdir/internal/session/models"
	"userdir/internal/session/store"
)

// CookieName carries the session id.
const CookieName = "session_id"

type contextKey struct{}

// FromContext returns the request's session, or nil outside the middleware.
func FromContext(ctx context.Context) *models.Session {
	s, _ := ctx.Value(contextKey{}).(*models.Session)
	return s
}

// WithSession injects a session into ctx. Handler tests use it to skip the
// middleware.
func WithSession(ctx context.Context, s *models.Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// Manager binds a session store to the HTTP cookie.
type Manager struct {
	store  store.Store
	logger *slog.Logger
	secure bool
}

func NewManager(s store.Store, logger *slog.Logger, secure bool) *Manager {
	return &Manager{store: s, logger: logger, secure: secure}
}

// Middleware loads or starts the session before next runs and persists it
// afterwards. A store failure falls back to a fresh session rather than
// failing the request.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sess := m.load(r)
		if sess == nil {
			sess = models.New(uuid.NewString())
			m.setCookie(w, sess.ID, 0)
		}

		next.ServeHTTP(w, r.WithContext(WithSession(ctx, sess)))

		if sess.Destroyed() {
			if err := m.store.Delete(ctx, sess.ID); err != nil {
				m.logger.ErrorContext(ctx, "failed to delete session", "error", err)
			}
			return
		}
		if err := m.store.Save(ctx, sess); err != nil {
			m.logger.ErrorContext(ctx, "failed to save session", "error", err)
		}
	})
}

// Destroy clears the request's session and expires its cookie. Call it
// before writing the response body.
func (m *Manager) Destroy(w http.ResponseWriter, r *http.Request) {
	sess := FromContext(r.Context())
	if sess == nil {
		return
	}
	sess.Destroy()
	m.setCookie(w, sess.ID, -1)
}

func (m *Manager) load(r *http.Request) *models.Session {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	sess, err := m.store.Get(r.Context(), cookie.Value)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			m.logger.WarnContext(r.Context(), "failed to load session, starting a new one", "error", err)
		}
		return nil
	}
	return sess
}

func (m *Manager) setCookie(w http.ResponseWriter, id string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
