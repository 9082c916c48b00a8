package store

import (
	"context"

	"userdir/internal/session/models"
	"userdir/pkg/platform/sentinel"
)

// ErrNotFound is returned by Get for unknown or expired sessions.
var ErrNotFound = sentinel.ErrNotFound

type Store interface {
	Get(ctx context.Context, id string) (*models.Session, error)
	Save(ctx context.Context, session *models.Session) error
	Delete(ctx context.Context, id string) error
}
