package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"userdir/internal/users/models"
	"userdir/internal/users/store"
	"userdir/internal/users/store/storetest"
)

func TestInMemoryStoreContract(t *testing.T) {
	suite.Run(t, &storetest.Suite{NewStore: func() store.Store { return New() }})
}

func TestInMemorySnapshotIsolation(t *testing.T) {
	ctx := context.Background()

	t.Run("does not mutate the caller's snapshot", func(t *testing.T) {
		snap := models.NewSnapshot(models.User{ID: "1", Nickname: "alice", Email: "a@x.com"})
		s := FromSnapshot(snap)

		require.NoError(t, s.Save(ctx, &models.User{ID: "2", Nickname: "bobby", Email: "b@x.com"}))
		require.NoError(t, s.Delete(ctx, "1"))

		assert.Equal(t, 1, snap.Len())
		_, ok := snap.Get("1")
		assert.True(t, ok)
	})

	t.Run("All returns a copy", func(t *testing.T) {
		s := New(models.User{ID: "1", Nickname: "alice", Email: "a@x.com"})
		all, err := s.All(ctx)
		require.NoError(t, err)
		all.Delete("1")

		_, err = s.FindByID(ctx, "1")
		assert.NoError(t, err)
	})

	t.Run("nil snapshot builds an empty store", func(t *testing.T) {
		all, err := FromSnapshot(nil).All(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, all.Len())
	})
}
