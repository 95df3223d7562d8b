package service

import (
	"context"
	"errors"

	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

type UserService struct {
	repo   domain.Repository
	outbox domain.SyncWorker
	logger *zerolog.Logger
}

func NewUserService(repo domain.Repository, outbox domain.SyncWorker, logger *zerolog.Logger) *UserService {
	return &UserService{repo: repo, outbox: outbox, logger: nopLogger(logger)}
}

func (s *UserService) ListUsers(ctx context.Context, page *models.Page) ([]*models.User, error) {
	return s.repo.ListUsers(ctx, page)
}

func (s *UserService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	return loadUser(ctx, s.repo, id)
}

func (s *UserService) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, database.ErrDuplicateEmail) {
			return nil, domain.Conflict("Email %s is already registered", user.Email)
		}
		return nil, err
	}
	s.logger.Info().Int64("user_id", user.ID).Msg("user created")
	return user, nil
}

func (s *UserService) UpdateUser(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error) {
	user, err := loadUser(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	if !patch.Apply(user) {
		return user, nil
	}

	err = s.repo.UpdateUser(ctx, user)
	switch {
	case errors.Is(err, database.ErrDuplicateEmail):
		return nil, domain.Conflict("Email %s is already registered", user.Email)
	case errors.Is(err, database.ErrNotFound):
		return nil, domain.NotFound("User %d not found", id)
	case err != nil:
		return nil, err
	}
	return user, nil
}

func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	bookingIDs, err := s.repo.DeleteUser(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return domain.NotFound("User %d not found", id)
	}
	if err != nil {
		return err
	}

	s.logger.Info().Int64("user_id", id).Int("bookings", len(bookingIDs)).Msg("user deleted")
	enqueueLedgerDeletes(ctx, s.outbox, s.logger, bookingIDs)
	return nil
}
