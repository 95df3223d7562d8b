package service

import (
	"context"
	"errors"

	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

func nopLogger(logger *zerolog.Logger) *zerolog.Logger {
	if logger != nil {
		return logger
	}
	nop := zerolog.Nop()
	return &nop
}

func loadUser(ctx context.Context, repo domain.UserRepository, id int64) (*models.User, error) {
	user, err := repo.GetUserByID(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, domain.NotFound("User %d not found", id)
	}
	return user, err
}

func loadItem(ctx context.Context, repo domain.ItemRepository, id int64) (*models.Item, error) {
	item, err := repo.GetItemByID(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, domain.NotFound("Item %d not found", id)
	}
	return item, err
}

func loadBooking(ctx context.Context, repo domain.BookingRepository, id int64) (*models.Booking, error) {
	booking, err := repo.GetBooking(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, domain.NotFound("Booking %d not found", id)
	}
	return booking, err
}

func loadRequest(ctx context.Context, repo domain.RequestRepository, id int64) (*models.Request, error) {
	request, err := repo.GetRequest(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, domain.NotFound("Request %d not found", id)
	}
	return request, err
}

// enqueueLedgerDeletes asks the outbox to drop the ledger rows of bookings
// that a cascade removed from the store.
func enqueueLedgerDeletes(ctx context.Context, outbox domain.SyncWorker, logger *zerolog.Logger, bookingIDs []int64) {
	if outbox == nil {
		return
	}
	for _, id := range bookingIDs {
		if err := outbox.EnqueueTask(ctx, models.TaskDelete, id, nil, ""); err != nil {
			logger.Error().Err(err).Int64("booking_id", id).Str("task", models.TaskDelete).Msg("outbox enqueue error")
		}
	}
}
