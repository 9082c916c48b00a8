// Package backend resolves the users store for a request and writes the
// resulting snapshot back to wherever it lives between requests.
package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"userdir/internal/users/models"
	"userdir/internal/users/store"
	"userdir/internal/users/store/file"
	"userdir/internal/users/store/memory"
)

// Backend opens the store for one request and persists it afterwards.
type Backend interface {
	Open(r *http.Request) (store.Store, error)
	Persist(ctx context.Context, w http.ResponseWriter, s store.Store) error
}

// CookieName holds the users snapshot in the cookie backend.
const CookieName = "users"

// Cookie keeps the whole snapshot client-side in the users cookie.
type Cookie struct {
	secure bool
}

// NewCookie returns a cookie backend. secure marks the cookie HTTPS-only.
func NewCookie(secure bool) *Cookie {
	return &Cookie{secure: secure}
}

// Open decodes the users cookie into an in-memory store. A missing or
// undecodable cookie yields an empty store.
func (c *Cookie) Open(r *http.Request) (store.Store, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return memory.New(), nil
	}
	users, err := DecodeCookieValue(cookie.Value)
	if err != nil {
		return memory.New(), nil
	}
	return memory.FromSnapshot(users), nil
}

// Persist writes the store's current snapshot back to the users cookie.
func (c *Cookie) Persist(ctx context.Context, w http.ResponseWriter, s store.Store) error {
	users, err := s.All(ctx)
	if err != nil {
		return fmt.Errorf("read users snapshot: %w", err)
	}
	value, err := EncodeCookieValue(users)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// File shares one file-backed store across requests.
type File struct {
	store *file.Store
}

func NewFile(s *file.Store) *File {
	return &File{store: s}
}

func (f *File) Open(_ *http.Request) (store.Store, error) {
	return f.store, nil
}

// Persist is a no-op: every file store mutation already rewrote the file.
func (f *File) Persist(_ context.Context, _ http.ResponseWriter, _ store.Store) error {
	return nil
}

// EncodeUsers serializes a snapshot as a JSON list.
func EncodeUsers(users *models.Snapshot) ([]byte, error) {
	data, err := json.Marshal(users)
	if err != nil {
		return nil, fmt.Errorf("encode users: %w", err)
	}
	return data, nil
}

// DecodeUsers parses a JSON list into a snapshot.
func DecodeUsers(data []byte) (*models.Snapshot, error) {
	var users models.Snapshot
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return &users, nil
}

// EncodeCookieValue returns the JSON list percent-encoded so quotes and
// commas survive cookie transport.
func EncodeCookieValue(users *models.Snapshot) (string, error) {
	data, err := EncodeUsers(users)
	if err != nil {
		return "", err
	}
	return url.QueryEscape(string(data)), nil
}

// DecodeCookieValue reverses EncodeCookieValue. A value that already is a
// raw JSON list is parsed as-is, without unescaping.
func DecodeCookieValue(value string) (*models.Snapshot, error) {
	raw := strings.TrimSpace(value)
	if !strings.HasPrefix(raw, "[") {
		unescaped, err := url.QueryUnescape(raw)
		if err != nil {
			return nil, fmt.Errorf("unescape users cookie: %w", err)
		}
		raw = unescaped
	}
	if raw == "" {
		return models.NewSnapshot(), nil
	}
	return DecodeUsers([]byte(raw))
}
