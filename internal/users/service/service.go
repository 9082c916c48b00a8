package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store

import (
	"context"

	"userdir/internal/users/models"
)

// Store is the backend the service delegates to.
type Store interface {
	All(ctx context.Context) (*models.Snapshot, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByNickname(ctx context.Context, nickname string) (*models.User, error)
	Save(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error
}

// Service gives handlers one stable name for user operations regardless of
// which backend holds the data. It adds no behavior of its own.
type Service struct {
	store Store
}

// New wraps store.
func New(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) All(ctx context.Context) (*models.Snapshot, error) {
	return s.store.All(ctx)
}

func (s *Service) Find(ctx context.Context, id string) (*models.User, error) {
	return s.store.FindByID(ctx, id)
}

func (s *Service) FindByNickname(ctx context.Context, nickname string) (*models.User, error) {
	return s.store.FindByNickname(ctx, nickname)
}

func (s *Service) Save(ctx context.Context, user *models.User) error {
	return s.store.Save(ctx, user)
}

func (s *Service) Destroy(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}
