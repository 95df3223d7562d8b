package service

import (
	"context"
	"errors"
	"time"

	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/metrics"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

const maxApproveAttempts = 3

// BookingService owns the booking lifecycle: creation, owner approval and the
// per-role listings.
type BookingService struct {
	repo     domain.Repository
	eventBus domain.EventPublisher
	outbox   domain.SyncWorker
	logger   *zerolog.Logger
	now      func() time.Time
}

func NewBookingService(repo domain.Repository, eventBus domain.EventPublisher, outbox domain.SyncWorker, logger *zerolog.Logger) *BookingService {
	return &BookingService{
		repo:     repo,
		eventBus: eventBus,
		outbox:   outbox,
		logger:   nopLogger(logger),
		now:      time.Now,
	}
}

func (s *BookingService) CreateBooking(ctx context.Context, userID int64, booking *models.Booking) (*models.Booking, error) {
	item, err := loadItem(ctx, s.repo, booking.ItemID)
	if err != nil {
		return nil, err
	}
	if _, err := loadUser(ctx, s.repo, userID); err != nil {
		return nil, err
	}
	if item.OwnerID == userID {
		return nil, domain.NotFound("Item %d cannot be booked by its owner", item.ID)
	}
	if !item.Available {
		return nil, domain.BadRequest("Item %d is not available for booking", item.ID)
	}
	if !booking.Start.Before(booking.End) {
		return nil, domain.BadRequest("Booking start must be before end")
	}

	booking.BookerID = userID
	booking.Status = models.StatusWaiting
	if err := s.repo.CreateBooking(ctx, booking); err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("booking_id", booking.ID).
		Int64("item_id", booking.ItemID).
		Int64("booker_id", userID).
		Msg("booking created")

	metrics.IncBookingTransition(string(booking.Status))
	s.publishEvent(events.EventBookingCreated, booking, events.ChangedByBooker, userID)
	s.enqueueSync(ctx, booking, models.TaskUpsert)
	return booking, nil
}

// ApproveBooking lets the item owner approve or reject a booking. The status
// change is a versioned update; when another writer gets there first the
// booking is reloaded and every check runs again.
func (s *BookingService) ApproveBooking(ctx context.Context, userID, bookingID int64, approved bool) (*models.Booking, error) {
	for attempt := 1; ; attempt++ {
		booking, err := loadBooking(ctx, s.repo, bookingID)
		if err != nil {
			return nil, err
		}
		if booking.OwnerID != userID {
			return nil, domain.NotFound("Booking %d cannot be changed by user %d", bookingID, userID)
		}

		switch booking.Status {
		case models.StatusApproved:
			return nil, domain.BadRequest("Booking %d is already approved", bookingID)
		case models.StatusCanceled:
			return nil, domain.BadRequest("Booking %d is canceled", bookingID)
		case models.StatusRejected:
			if !approved {
				return booking, nil
			}
		}

		next := models.StatusRejected
		if approved {
			next = models.StatusApproved
		}

		err = s.repo.UpdateBookingStatusWithVersion(ctx, booking.ID, booking.Version, next)
		switch {
		case errors.Is(err, database.ErrConcurrentModification):
			s.logger.Debug().Int64("booking_id", bookingID).Int("attempt", attempt).Msg("booking changed concurrently, reloading")
			if attempt >= maxApproveAttempts {
				return nil, domain.Conflict("Booking %d is being modified concurrently", bookingID)
			}
			continue
		case errors.Is(err, database.ErrNotFound):
			return nil, domain.NotFound("Booking %d not found", bookingID)
		case err != nil:
			return nil, err
		}

		booking.Status = next
		booking.Version++

		s.logger.Info().
			Int64("booking_id", booking.ID).
			Int64("owner_id", userID).
			Str("status", string(next)).
			Msg("booking status changed")

		metrics.IncBookingTransition(string(next))
		eventType := events.EventBookingRejected
		if approved {
			eventType = events.EventBookingApproved
		}
		s.publishEvent(eventType, booking, events.ChangedByOwner, userID)
		s.enqueueSync(ctx, booking, models.TaskUpdateStatus)
		return booking, nil
	}
}

// GetBooking returns a booking to its booker or to the owner of the item.
func (s *BookingService) GetBooking(ctx context.Context, userID, bookingID int64) (*models.Booking, error) {
	booking, err := loadBooking(ctx, s.repo, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.BookerID != userID && booking.OwnerID != userID {
		return nil, domain.NotFound("Booking %d not found for user %d", bookingID, userID)
	}
	return booking, nil
}

func (s *BookingService) ListUserBookings(ctx context.Context, userID int64, state models.BookingState, page *models.Page) ([]*models.Booking, error) {
	return s.listBookings(ctx, models.RoleBooker, userID, state, page)
}

func (s *BookingService) ListOwnerBookings(ctx context.Context, userID int64, state models.BookingState, page *models.Page) ([]*models.Booking, error) {
	return s.listBookings(ctx, models.RoleOwner, userID, state, page)
}

func (s *BookingService) listBookings(ctx context.Context, role models.BookingRole, userID int64, state models.BookingState, page *models.Page) ([]*models.Booking, error) {
	if _, err := loadUser(ctx, s.repo, userID); err != nil {
		return nil, err
	}

	bookings, err := s.repo.ListBookings(ctx, models.BookingQuery{
		Role:   role,
		UserID: userID,
		State:  state,
		Now:    s.now(),
		Page:   page,
	})
	var stateErr *models.UnknownStateError
	if errors.As(err, &stateErr) {
		return nil, domain.InvalidArgument("%s", stateErr.Error())
	}
	return bookings, err
}

func (s *BookingService) publishEvent(eventType string, booking *models.Booking, changedBy string, changedByID int64) {
	if s.eventBus == nil {
		return
	}

	payload := events.NewBookingEventPayload(booking, changedBy, changedByID)
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("booking_id", booking.ID).Msg("publish event error")
	}
}

func (s *BookingService) enqueueSync(ctx context.Context, booking *models.Booking, taskType string) {
	if s.outbox == nil {
		return
	}

	var status string
	if taskType == models.TaskUpdateStatus {
		status = string(booking.Status)
	}

	snapshot := *booking
	if err := s.outbox.EnqueueTask(ctx, taskType, booking.ID, &snapshot, status); err != nil {
		s.logger.Error().Err(err).Int64("booking_id", booking.ID).Str("task", taskType).Msg("outbox enqueue error")
	}
}
