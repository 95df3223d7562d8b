package service

import (
	"context"
	"time"

	"shareit/internal/models"

	"github.com/stretchr/testify/mock"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) CreateUser(ctx context.Context, u *models.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *mockRepo) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockRepo) UpdateUser(ctx context.Context, u *models.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *mockRepo) DeleteUser(ctx context.Context, id int64) ([]int64, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *mockRepo) ListUsers(ctx context.Context, page *models.Page) ([]*models.User, error) {
	args := m.Called(ctx, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *mockRepo) CreateItem(ctx context.Context, it *models.Item) error {
	return m.Called(ctx, it).Error(0)
}

func (m *mockRepo) GetItemByID(ctx context.Context, id int64) (*models.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Item), args.Error(1)
}

func (m *mockRepo) UpdateItem(ctx context.Context, it *models.Item) error {
	return m.Called(ctx, it).Error(0)
}

func (m *mockRepo) DeleteItem(ctx context.Context, ownerID, id int64) ([]int64, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *mockRepo) ListItemsByOwner(ctx context.Context, ownerID int64, page *models.Page) ([]*models.Item, error) {
	args := m.Called(ctx, ownerID, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Item), args.Error(1)
}

func (m *mockRepo) SearchItems(ctx context.Context, text string, page *models.Page) ([]*models.Item, error) {
	args := m.Called(ctx, text, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Item), args.Error(1)
}

func (m *mockRepo) ListItemsByRequests(ctx context.Context, ids []int64) (map[int64][]models.Item, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64][]models.Item), args.Error(1)
}

func (m *mockRepo) CreateBooking(ctx context.Context, b *models.Booking) error {
	return m.Called(ctx, b).Error(0)
}

func (m *mockRepo) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *mockRepo) UpdateBookingStatusWithVersion(ctx context.Context, id, version int64, status models.BookingStatus) error {
	return m.Called(ctx, id, version, status).Error(0)
}

func (m *mockRepo) ListBookings(ctx context.Context, q models.BookingQuery) ([]*models.Booking, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}

func (m *mockRepo) GetLastBooking(ctx context.Context, itemID, excludeBookerID int64, now time.Time) (*models.BookingRef, error) {
	args := m.Called(ctx, itemID, excludeBookerID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BookingRef), args.Error(1)
}

func (m *mockRepo) GetNextBooking(ctx context.Context, itemID, excludeBookerID int64, now time.Time) (*models.BookingRef, error) {
	args := m.Called(ctx, itemID, excludeBookerID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BookingRef), args.Error(1)
}

func (m *mockRepo) HasFinishedApprovedBooking(ctx context.Context, bookerID, itemID int64, now time.Time) (bool, error) {
	args := m.Called(ctx, bookerID, itemID, now)
	return args.Bool(0), args.Error(1)
}

func (m *mockRepo) CreateComment(ctx context.Context, c *models.Comment) error {
	return m.Called(ctx, c).Error(0)
}

func (m *mockRepo) ListCommentsByItem(ctx context.Context, itemID int64) ([]models.Comment, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Comment), args.Error(1)
}

func (m *mockRepo) CreateRequest(ctx context.Context, r *models.Request) error {
	return m.Called(ctx, r).Error(0)
}

func (m *mockRepo) GetRequest(ctx context.Context, id int64) (*models.Request, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Request), args.Error(1)
}

func (m *mockRepo) ListRequestsByRequester(ctx context.Context, userID int64, page *models.Page) ([]*models.Request, error) {
	args := m.Called(ctx, userID, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Request), args.Error(1)
}

func (m *mockRepo) ListRequestsExcludingRequester(ctx context.Context, userID int64, page *models.Page) ([]*models.Request, error) {
	args := m.Called(ctx, userID, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Request), args.Error(1)
}

type mockEventBus struct {
	mock.Mock
}

func (m *mockEventBus) PublishJSON(eventType string, payload interface{}) error {
	return m.Called(eventType, payload).Error(0)
}

type mockWorker struct {
	mock.Mock
}

func (m *mockWorker) EnqueueTask(ctx context.Context, taskType string, bookingID int64, b *models.Booking, status string) error {
	return m.Called(ctx, taskType, bookingID, b, status).Error(0)
}
