package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"userdir/internal/audit"
	"userdir/internal/platform/metrics"
	"userdir/internal/platform/middleware"
	"userdir/internal/session"
	sessionModels "userdir/internal/session/models"
	"userdir/internal/users/backend"
	"userdir/internal/users/models"
	"userdir/internal/users/service"
	"userdir/internal/users/store"
	"userdir/internal/users/validator"
	dErrors "userdir/pkg/domain-errors"
	"userdir/pkg/platform/httputil"
	"userdir/pkg/requestcontext"
)

const (
	usersPath = "/users"

	msgUserCreated = "User was added successfully"
	msgUserUpdated = "User has been updated"
	msgUserDeleted = "User has been deleted"
	msgNotFound    = "Page not found"
)

// AuditPublisher receives user-directory events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Handler serves the user directory. Every request opens the users store
// through the backend, runs one service call and, for mutations, persists
// the resulting snapshot before redirecting.
type Handler struct {
	backend  backend.Backend
	sessions *session.Manager
	logger   *slog.Logger
	audit    AuditPublisher
	metrics  *metrics.Metrics
	newID    func() string
}

type Option func(*Handler)

func WithAuditPublisher(p AuditPublisher) Option {
	return func(h *Handler) {
		h.audit = p
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(h *Handler) {
		h.metrics = m
	}
}

// WithIDGenerator overrides how new user ids are minted.
func WithIDGenerator(fn func() string) Option {
	return func(h *Handler) {
		h.newID = fn
	}
}

// New creates a users Handler.
func New(b backend.Backend, sessions *session.Manager, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{
		backend:  b,
		sessions: sessions,
		logger:   logger,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts the directory routes behind the session middleware.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.sessions.Middleware)

		r.Post("/login", h.handleLogin)
		r.Delete("/logout", h.handleLogout)

		r.Get("/users", h.handleList)
		r.Post("/users", h.handleCreate)
		r.Get("/users/new", h.handleNew)
		r.Get("/users/{id}", h.handleShow)
		r.Patch("/users/{id}", h.handleUpdate)
		r.Delete("/users/{id}", h.handleDelete)
		r.Get("/users/{id}/edit", h.handleEdit)
		r.Get("/users/{id}/delete", h.handleConfirmDelete)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	svc, ok := h.open(w, r)
	if !ok {
		return
	}

	all, err := svc.All(ctx)
	if err != nil {
		h.internalError(w, r, "failed to list users", err)
		return
	}

	term := r.URL.Query().Get("term")
	users := filterByNicknamePrefix(all.Users(), term)

	sess := h.session(r)
	httputil.WriteJSON(w, http.StatusOK, ListResponse{
		Term:            term,
		Users:           users,
		IsAuthenticated: sess.Authenticated,
		Flash:           sess.DrainFlash(),
	})
}

func (h *Handler) handleNew(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, FormResponse{User: models.User{}})
}

func (h *Handler) handleShow(w http.ResponseWriter, r *http.Request) {
	user, ok := h.findUser(w, r)
	if !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) handleEdit(w http.ResponseWriter, r *http.Request) {
	user, ok := h.findUser(w, r)
	if !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FormResponse{User: *user})
}

func (h *Handler) handleConfirmDelete(w http.ResponseWriter, r *http.Request) {
	user, ok := h.findUser(w, r)
	if !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FormResponse{User: *user})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	input, err := decodeUserRequest(r)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	if errs := validator.Validate(input); !errs.Valid() {
		httputil.WriteJSON(w, http.StatusUnprocessableEntity, FormResponse{
			User:   input.Apply(models.User{}),
			Errors: errs,
		})
		return
	}

	svc, st, ok := h.openStore(w, r)
	if !ok {
		return
	}
	user := input.Apply(models.User{ID: h.newID()})
	if err := svc.Save(ctx, &user); err != nil {
		h.internalError(w, r, "failed to save user", err)
		return
	}
	if !h.persist(w, r, st) {
		return
	}

	h.session(r).AddFlash(sessionModels.FlashSuccess, msgUserCreated)
	h.metrics.IncrementUsersCreated()
	h.emit(ctx, audit.Event{Action: audit.ActionUserCreated, UserID: user.ID, Nickname: user.Nickname})
	http.Redirect(w, r, usersPath, http.StatusFound)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	svc, st, ok := h.openStore(w, r)
	if !ok {
		return
	}
	user, ok := h.lookup(w, r, svc)
	if !ok {
		return
	}

	input, err := decodeUserRequest(r)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	updated := input.Apply(*user)
	if errs := validator.Validate(input); !errs.Valid() {
		httputil.WriteJSON(w, http.StatusUnprocessableEntity, FormResponse{User: updated, Errors: errs})
		return
	}

	if err := svc.Save(ctx, &updated); err != nil {
		h.internalError(w, r, "failed to update user", err)
		return
	}
	if !h.persist(w, r, st) {
		return
	}

	h.session(r).AddFlash(sessionModels.FlashSuccess, msgUserUpdated)
	h.metrics.IncrementUsersUpdated()
	h.emit(ctx, audit.Event{Action: audit.ActionUserUpdated, UserID: updated.ID, Nickname: updated.Nickname})
	http.Redirect(w, r, usersPath, http.StatusFound)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	svc, st, ok := h.openStore(w, r)
	if !ok {
		return
	}

	if err := svc.Destroy(ctx, id); err != nil {
		h.internalError(w, r, "failed to delete user", err)
		return
	}
	if !h.persist(w, r, st) {
		return
	}

	h.session(r).AddFlash(sessionModels.FlashSuccess, msgUserDeleted)
	h.metrics.IncrementUsersDeleted()
	h.emit(ctx, audit.Event{Action: audit.ActionUserDeleted, UserID: id})
	http.Redirect(w, r, usersPath, http.StatusFound)
}

// handleLogin marks the session authenticated when the nickname exists.
// There is no credential check.
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, err := decodeLoginRequest(r)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	svc, ok := h.open(w, r)
	if !ok {
		return
	}

	sess := h.session(r)
	user, err := svc.FindByNickname(ctx, req.Nickname)
	switch {
	case err == nil:
		sess.Authenticated = true
		h.metrics.IncrementLogin("success")
		h.emit(ctx, audit.Event{Action: audit.ActionLoginSucceeded, UserID: user.ID, Nickname: user.Nickname})
	case errors.Is(err, store.ErrNotFound):
		sess.AddFlash(sessionModels.FlashError, fmt.Sprintf("User %s not found", req.Nickname))
		h.metrics.IncrementLogin("not_found")
		h.emit(ctx, audit.Event{Action: audit.ActionLoginFailed, Nickname: req.Nickname})
	default:
		h.internalError(w, r, "failed to look up nickname", err)
		return
	}

	http.Redirect(w, r, usersPath, http.StatusFound)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Destroy(w, r)
	h.emit(r.Context(), audit.Event{Action: audit.ActionLogout})
	http.Redirect(w, r, usersPath, http.StatusFound)
}

func (h *Handler) open(w http.ResponseWriter, r *http.Request) (*service.Service, bool) {
	svc, _, ok := h.openStore(w, r)
	return svc, ok
}

func (h *Handler) openStore(w http.ResponseWriter, r *http.Request) (*service.Service, store.Store, bool) {
	st, err := h.backend.Open(r)
	if err != nil {
		h.internalError(w, r, "failed to open users store", err)
		return nil, nil, false
	}
	return service.New(st), st, true
}

func (h *Handler) findUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	svc, ok := h.open(w, r)
	if !ok {
		return nil, false
	}
	return h.lookup(w, r, svc)
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request, svc *service.Service) (*models.User, bool) {
	user, err := svc.Find(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, msgNotFound))
			return nil, false
		}
		h.internalError(w, r, "failed to load user", err)
		return nil, false
	}
	return user, true
}

func (h *Handler) persist(w http.ResponseWriter, r *http.Request, st store.Store) bool {
	if err := h.backend.Persist(r.Context(), w, st); err != nil {
		h.internalError(w, r, "failed to persist users", err)
		return false
	}
	return true
}

// session returns the request's session, or a throwaway one when the
// handler is invoked without the session middleware.
func (h *Handler) session(r *http.Request) *sessionModels.Session {
	if sess := session.FromContext(r.Context()); sess != nil {
		return sess
	}
	return sessionModels.New("")
}

func (h *Handler) emit(ctx context.Context, event audit.Event) {
	if h.audit == nil {
		return
	}
	event.RequestID = middleware.GetRequestID(ctx)
	event.Timestamp = requestcontext.Now(ctx)
	if err := h.audit.Emit(ctx, event); err != nil {
		h.logger.WarnContext(ctx, "failed to emit audit event",
			"action", string(event.Action),
			"request_id", event.RequestID,
			"error", err,
		)
	}
}

func (h *Handler) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	h.logger.WarnContext(ctx, "invalid users request",
		"request_id", middleware.GetRequestID(ctx),
		"error", err.Error(),
	)
	httputil.WriteError(w, err)
}

func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	ctx := r.Context()
	h.logger.ErrorContext(ctx, msg,
		"request_id", middleware.GetRequestID(ctx),
		"error", err.Error(),
	)
	httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, msg))
}

// filterByNicknamePrefix keeps users whose nickname starts with term,
// ignoring case. An empty term keeps everyone.
func filterByNicknamePrefix(users []models.User, term string) []models.User {
	if term == "" {
		return users
	}
	prefix := strings.ToLower(term)
	out := make([]models.User, 0, len(users))
	for _, u := range users {
		if strings.HasPrefix(strings.ToLower(u.Nickname), prefix) {
			out = append(out, u)
		}
	}
	return out
}
