// Package storetest holds the behavioral suite every users store must pass.
package storetest

import (
	"context"

	"github.com/stretchr/testify/suite"

	"userdir/internal/users/models"
	"userdir/internal/users/store"
	"userdir/pkg/platform/sentinel"
)

// Factory returns a fresh, empty store for each test.
type Factory func() store.Store

// Suite checks the store contract: upsert by id, first-match nickname lookup,
// idempotent delete and not-found reporting.
type Suite struct {
	suite.Suite
	NewStore Factory

	store store.Store
	ctx   context.Context
}

func (s *Suite) SetupTest() {
	s.store = s.NewStore()
	s.ctx = context.Background()
}

func (s *Suite) save(u models.User) {
	s.Require().NoError(s.store.Save(s.ctx, &u))
}

func (s *Suite) TestEmptyStore() {
	all, err := s.store.All(s.ctx)
	s.Require().NoError(err)
	s.Equal(0, all.Len())

	_, err = s.store.FindByID(s.ctx, "missing")
	s.ErrorIs(err, sentinel.ErrNotFound)

	_, err = s.store.FindByNickname(s.ctx, "nobody")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *Suite) TestSaveThenFind() {
	alice := models.User{ID: "1", Nickname: "alice", Email: "a@x.com"}
	s.save(alice)

	found, err := s.store.FindByID(s.ctx, "1")
	s.Require().NoError(err)
	s.Equal(alice, *found)

	all, err := s.store.All(s.ctx)
	s.Require().NoError(err)
	s.Equal(map[string]models.User{"1": alice}, all.Map())
}

func (s *Suite) TestSaveOverwritesSameID() {
	s.save(models.User{ID: "1", Nickname: "alice", Email: "a@x.com"})
	s.save(models.User{ID: "1", Nickname: "bob", Email: "b@x.com"})

	found, err := s.store.FindByID(s.ctx, "1")
	s.Require().NoError(err)
	s.Equal("bob", found.Nickname)

	all, err := s.store.All(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, all.Len())
}

func (s *Suite) TestDelete() {
	s.Run("removes the user", func() {
		s.save(models.User{ID: "1", Nickname: "alice", Email: "a@x.com"})
		s.Require().NoError(s.store.Delete(s.ctx, "1"))

		_, err := s.store.FindByID(s.ctx, "1")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("absent id is a no-op", func() {
		s.save(models.User{ID: "2", Nickname: "carol", Email: "c@x.com"})
		before, err := s.store.All(s.ctx)
		s.Require().NoError(err)

		s.Require().NoError(s.store.Delete(s.ctx, "does-not-exist"))

		after, err := s.store.All(s.ctx)
		s.Require().NoError(err)
		s.Equal(before.Map(), after.Map())
	})
}

func (s *Suite) TestFindByNickname() {
	s.save(models.User{ID: "1", Nickname: "alice", Email: "first@x.com"})
	s.save(models.User{ID: "2", Nickname: "alice", Email: "second@x.com"})
	s.save(models.User{ID: "3", Nickname: "Alice", Email: "third@x.com"})

	s.Run("returns the first exact match", func() {
		found, err := s.store.FindByNickname(s.ctx, "alice")
		s.Require().NoError(err)
		s.Equal("1", found.ID)
	})

	s.Run("match is case sensitive", func() {
		found, err := s.store.FindByNickname(s.ctx, "Alice")
		s.Require().NoError(err)
		s.Equal("3", found.ID)
	})

	s.Run("prefix is not a match", func() {
		_, err := s.store.FindByNickname(s.ctx, "ali")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *Suite) TestAllKeepsInsertionOrder() {
	s.save(models.User{ID: "b", Nickname: "bravo", Email: "b@x.com"})
	s.save(models.User{ID: "a", Nickname: "alpha", Email: "a@x.com"})
	s.save(models.User{ID: "b", Nickname: "bravo2", Email: "b@x.com"})

	all, err := s.store.All(s.ctx)
	s.Require().NoError(err)
	users := all.Users()
	s.Require().Len(users, 2)
	s.Equal("b", users[0].ID)
	s.Equal("bravo2", users[0].Nickname)
	s.Equal("a", users[1].ID)
}
