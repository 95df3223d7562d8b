package service

import (
	"context"
	"testing"

	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUserService(t *testing.T) {
	ctx := context.Background()
	logger := zerolog.Nop()

	t.Run("CreateDuplicateEmail", func(t *testing.T) {
		repo := new(mockRepo)
		svc := NewUserService(repo, nil, &logger)
		repo.On("CreateUser", ctx, mock.Anything).Return(database.ErrDuplicateEmail).Once()

		_, err := svc.CreateUser(ctx, &models.User{Name: "a", Email: "a@example.com"})
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("UpdatePartial", func(t *testing.T) {
		repo := new(mockRepo)
		svc := NewUserService(repo, nil, &logger)
		repo.On("GetUserByID", ctx, int64(1)).Return(&models.User{ID: 1, Name: "old", Email: "a@example.com"}, nil).Once()
		repo.On("UpdateUser", ctx, mock.MatchedBy(func(u *models.User) bool {
			return u.Name == "new" && u.Email == "a@example.com"
		})).Return(nil).Once()

		got, err := svc.UpdateUser(ctx, 1, models.UserPatch{Name: strPtr("new")})
		require.NoError(t, err)
		assert.Equal(t, "new", got.Name)
		repo.AssertExpectations(t)
	})

	t.Run("UpdateDuplicateEmail", func(t *testing.T) {
		repo := new(mockRepo)
		svc := NewUserService(repo, nil, &logger)
		repo.On("GetUserByID", ctx, int64(1)).Return(&models.User{ID: 1, Name: "a", Email: "a@example.com"}, nil).Once()
		repo.On("UpdateUser", ctx, mock.Anything).Return(database.ErrDuplicateEmail).Once()

		_, err := svc.UpdateUser(ctx, 1, models.UserPatch{Email: strPtr("b@example.com")})
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("UpdateMissing", func(t *testing.T) {
		repo := new(mockRepo)
		svc := NewUserService(repo, nil, &logger)
		repo.On("GetUserByID", ctx, int64(4)).Return(nil, database.ErrNotFound).Once()

		_, err := svc.UpdateUser(ctx, 4, models.UserPatch{Name: strPtr("x")})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("DeleteMissing", func(t *testing.T) {
		repo := new(mockRepo)
		svc := NewUserService(repo, nil, &logger)
		repo.On("DeleteUser", ctx, int64(4)).Return(nil, database.ErrNotFound).Once()

		assert.ErrorIs(t, svc.DeleteUser(ctx, 4), domain.ErrNotFound)
	})

	t.Run("DeleteDropsLedgerRows", func(t *testing.T) {
		repo := new(mockRepo)
		outbox := new(mockWorker)
		svc := NewUserService(repo, outbox, &logger)
		repo.On("DeleteUser", ctx, int64(4)).Return([]int64{3, 5}, nil).Once()
		outbox.On("EnqueueTask", ctx, models.TaskDelete, int64(3), (*models.Booking)(nil), "").Return(nil).Once()
		outbox.On("EnqueueTask", ctx, models.TaskDelete, int64(5), (*models.Booking)(nil), "").Return(nil).Once()

		require.NoError(t, svc.DeleteUser(ctx, 4))
		outbox.AssertExpectations(t)
	})

	t.Run("DeleteWithoutOutbox", func(t *testing.T) {
		repo := new(mockRepo)
		svc := NewUserService(repo, nil, &logger)
		repo.On("DeleteUser", ctx, int64(4)).Return([]int64{3}, nil).Once()

		require.NoError(t, svc.DeleteUser(ctx, 4))
		repo.AssertExpectations(t)
	})

	t.Run("GetAndList", func(t *testing.T) {
		repo := new(mockRepo)
		svc := NewUserService(repo, nil, &logger)
		repo.On("GetUserByID", ctx, int64(1)).Return(&models.User{ID: 1}, nil).Once()
		repo.On("ListUsers", ctx, (*models.Page)(nil)).Return([]*models.User{{ID: 1}, {ID: 2}}, nil).Once()

		u, err := svc.GetUser(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(1), u.ID)

		users, err := svc.ListUsers(ctx, nil)
		require.NoError(t, err)
		assert.Len(t, users, 2)
	})
}
