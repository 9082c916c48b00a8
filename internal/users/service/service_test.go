package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"userdir/internal/users/models"
	"userdir/internal/users/service/mocks"
	"userdir/pkg/platform/sentinel"
)

type ServiceSuite struct {
	suite.Suite
	ctx     context.Context
	store   *mocks.MockStore
	service *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.ctx = context.Background()
	s.store = mocks.NewMockStore(ctrl)
	s.service = New(s.store)
}

// TestDelegation verifies each operation reaches the backend unchanged.
func (s *ServiceSuite) TestDelegation() {
	alice := &models.User{ID: "1", Nickname: "alice", Email: "a@x.com"}

	s.Run("all", func() {
		snap := models.NewSnapshot(*alice)
		s.store.EXPECT().All(s.ctx).Return(snap, nil)

		got, err := s.service.All(s.ctx)
		s.Require().NoError(err)
		s.Same(snap, got)
	})

	s.Run("find", func() {
		s.store.EXPECT().FindByID(s.ctx, "1").Return(alice, nil)

		got, err := s.service.Find(s.ctx, "1")
		s.Require().NoError(err)
		s.Same(alice, got)
	})

	s.Run("find by nickname", func() {
		s.store.EXPECT().FindByNickname(s.ctx, "alice").Return(alice, nil)

		got, err := s.service.FindByNickname(s.ctx, "alice")
		s.Require().NoError(err)
		s.Same(alice, got)
	})

	s.Run("save", func() {
		s.store.EXPECT().Save(s.ctx, alice).Return(nil)
		s.NoError(s.service.Save(s.ctx, alice))
	})

	s.Run("destroy", func() {
		s.store.EXPECT().Delete(s.ctx, "1").Return(nil)
		s.NoError(s.service.Destroy(s.ctx, "1"))
	})
}

// TestErrorsPropagate verifies backend errors are returned untranslated.
func (s *ServiceSuite) TestErrorsPropagate() {
	s.Run("not found", func() {
		s.store.EXPECT().FindByID(s.ctx, "missing").Return(nil, sentinel.ErrNotFound)

		_, err := s.service.Find(s.ctx, "missing")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("write failure", func() {
		writeErr := errors.New("replace users file: permission denied")
		s.store.EXPECT().Save(s.ctx, gomock.Any()).Return(writeErr)

		err := s.service.Save(s.ctx, &models.User{ID: "2"})
		s.ErrorIs(err, writeErr)
	})
}
