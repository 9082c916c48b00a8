package store

import (
	"context"

	"userdir/internal/users/models"
	"userdir/pkg/platform/sentinel"
)

// ErrNotFound is returned by lookups that miss.
var ErrNotFound = sentinel.ErrNotFound

// Store is the capability set every user backend provides. Backends are
// interchangeable: handlers only ever see this interface.
type Store interface {
	All(ctx context.Context) (*models.Snapshot, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByNickname(ctx context.Context, nickname string) (*models.User, error)
	Save(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error
}

// FindByID looks id up in a snapshot.
func FindByID(snap *models.Snapshot, id string) (*models.User, error) {
	u, ok := snap.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

// FindByNickname returns the first user in snap whose nickname equals nickname.
func FindByNickname(snap *models.Snapshot, nickname string) (*models.User, error) {
	u, ok := snap.FirstWhere(func(u models.User) bool { return u.Nickname == nickname })
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}
