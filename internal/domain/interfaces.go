package domain

import (
	"context"
	"time"

	"shareit/internal/models"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	// DeleteUser returns the ids of the bookings removed along with the user.
	DeleteUser(ctx context.Context, id int64) ([]int64, error)
	ListUsers(ctx context.Context, page *models.Page) ([]*models.User, error)
}

type ItemRepository interface {
	CreateItem(ctx context.Context, item *models.Item) error
	GetItemByID(ctx context.Context, id int64) (*models.Item, error)
	UpdateItem(ctx context.Context, item *models.Item) error
	// DeleteItem returns the ids of the bookings removed along with the item.
	DeleteItem(ctx context.Context, ownerID, id int64) ([]int64, error)
	ListItemsByOwner(ctx context.Context, ownerID int64, page *models.Page) ([]*models.Item, error)
	SearchItems(ctx context.Context, text string, page *models.Page) ([]*models.Item, error)
	ListItemsByRequests(ctx context.Context, requestIDs []int64) (map[int64][]models.Item, error)
}

type BookingRepository interface {
	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	UpdateBookingStatusWithVersion(ctx context.Context, id, version int64, status models.BookingStatus) error
	ListBookings(ctx context.Context, q models.BookingQuery) ([]*models.Booking, error)
	GetLastBooking(ctx context.Context, itemID, excludeBookerID int64, now time.Time) (*models.BookingRef, error)
	GetNextBooking(ctx context.Context, itemID, excludeBookerID int64, now time.Time) (*models.BookingRef, error)
	HasFinishedApprovedBooking(ctx context.Context, bookerID, itemID int64, now time.Time) (bool, error)
}

type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	ListCommentsByItem(ctx context.Context, itemID int64) ([]models.Comment, error)
}

type RequestRepository interface {
	CreateRequest(ctx context.Context, request *models.Request) error
	GetRequest(ctx context.Context, id int64) (*models.Request, error)
	ListRequestsByRequester(ctx context.Context, userID int64, page *models.Page) ([]*models.Request, error)
	ListRequestsExcludingRequester(ctx context.Context, userID int64, page *models.Page) ([]*models.Request, error)
}

// Repository is the full entity store surface used by the services.
type Repository interface {
	UserRepository
	ItemRepository
	BookingRepository
	CommentRepository
	RequestRepository
}

// RateLimitRepository counts hits per key in fixed windows.
type RateLimitRepository interface {
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

type SyncWorker interface {
	EnqueueTask(ctx context.Context, taskType string, bookingID int64, booking *models.Booking, status string) error
}

type BookingService interface {
	CreateBooking(ctx context.Context, userID int64, booking *models.Booking) (*models.Booking, error)
	ApproveBooking(ctx context.Context, userID, bookingID int64, approved bool) (*models.Booking, error)
	GetBooking(ctx context.Context, userID, bookingID int64) (*models.Booking, error)
	ListUserBookings(ctx context.Context, userID int64, state models.BookingState, page *models.Page) ([]*models.Booking, error)
	ListOwnerBookings(ctx context.Context, userID int64, state models.BookingState, page *models.Page) ([]*models.Booking, error)
}

type ItemService interface {
	ListOwnerItems(ctx context.Context, userID int64, page *models.Page) ([]*models.ItemDetails, error)
	GetItem(ctx context.Context, userID, itemID int64) (*models.ItemDetails, error)
	CreateItem(ctx context.Context, userID int64, item *models.Item) (*models.Item, error)
	UpdateItem(ctx context.Context, userID, itemID int64, patch models.ItemPatch) (*models.Item, error)
	DeleteItem(ctx context.Context, userID, itemID int64) error
	SearchItems(ctx context.Context, text string, page *models.Page) ([]*models.Item, error)
	AddComment(ctx context.Context, userID, itemID int64, text string) (*models.Comment, error)
}

type UserService interface {
	ListUsers(ctx context.Context, page *models.Page) ([]*models.User, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	UpdateUser(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

type RequestService interface {
	CreateRequest(ctx context.Context, userID int64, description string) (*models.Request, error)
	GetRequest(ctx context.Context, userID, requestID int64) (*models.Request, error)
	ListOwnRequests(ctx context.Context, userID int64, page *models.Page) ([]*models.Request, error)
	ListOtherRequests(ctx context.Context, userID int64, page *models.Page) ([]*models.Request, error)
}
