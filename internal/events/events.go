package events

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"shareit/internal/models"
)

const (
	EventBookingCreated  = "booking_created"
	EventBookingApproved = "booking_approved"
	EventBookingRejected = "booking_rejected"
)

// BookingEvents lists every booking event type, for subscribers that want all of them.
var BookingEvents = []string{EventBookingCreated, EventBookingApproved, EventBookingRejected}

// Who changed a booking.
const (
	ChangedByBooker = "booker"
	ChangedByOwner  = "owner"
)

// BookingEventPayload is the booking snapshot carried by booking events.
type BookingEventPayload struct {
	BookingID   int64                `json:"booking_id"`
	ItemID      int64                `json:"item_id"`
	ItemName    string               `json:"item_name"`
	OwnerID     int64                `json:"owner_id"`
	BookerID    int64                `json:"booker_id"`
	BookerName  string               `json:"booker_name"`
	Status      models.BookingStatus `json:"status"`
	Start       time.Time            `json:"start"`
	End         time.Time            `json:"end"`
	ChangedBy   string               `json:"changed_by,omitempty"`
	ChangedByID int64                `json:"changed_by_id,omitempty"`
}

func NewBookingEventPayload(b *models.Booking, changedBy string, changedByID int64) BookingEventPayload {
	return BookingEventPayload{
		BookingID:   b.ID,
		ItemID:      b.ItemID,
		ItemName:    b.ItemName,
		OwnerID:     b.OwnerID,
		BookerID:    b.BookerID,
		BookerName:  b.BookerName,
		Status:      b.Status,
		Start:       b.Start,
		End:         b.End,
		ChangedBy:   changedBy,
		ChangedByID: changedByID,
	}
}

// Booking rebuilds the booking fields the payload carries.
func (p BookingEventPayload) Booking() *models.Booking {
	return &models.Booking{
		ID:         p.BookingID,
		ItemID:     p.ItemID,
		ItemName:   p.ItemName,
		OwnerID:    p.OwnerID,
		BookerID:   p.BookerID,
		BookerName: p.BookerName,
		Status:     p.Status,
		Start:      p.Start,
		End:        p.End,
	}
}

type Event struct {
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// Decode unmarshals the payload into v.
func (e *Event) Decode(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

type EventHandler func(event *Event) error

// EventBus is an in-process pub/sub. Handlers run synchronously on the
// publishing goroutine, in subscription order.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
}

func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish delivers the event to every subscriber, even if some fail, and
// returns their errors joined.
func (b *EventBus) Publish(event *Event) error {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	var errs []error
	for _, handler := range handlers {
		if err := handler(event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return b.Publish(&Event{Type: eventType, Payload: raw, CreatedAt: time.Now()})
}
