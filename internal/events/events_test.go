package events

import (
	"errors"
	"testing"
	"time"

	"shareit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBus(t *testing.T) {
	bus := NewEventBus()

	var received *Event
	calls := 0
	bus.Subscribe(EventBookingCreated, func(event *Event) error {
		received = event
		calls++
		return nil
	})

	require.NoError(t, bus.PublishJSON(EventBookingCreated, map[string]string{"foo": "bar"}))
	require.NoError(t, bus.PublishJSON(EventBookingApproved, map[string]string{"ignored": "yes"}))

	assert.Equal(t, 1, calls)
	require.NotNil(t, received)
	assert.Equal(t, EventBookingCreated, received.Type)
	assert.False(t, received.CreatedAt.IsZero())

	var decoded map[string]string
	require.NoError(t, received.Decode(&decoded))
	assert.Equal(t, "bar", decoded["foo"])
}

func TestEventBus_HandlerErrorsAreJoined(t *testing.T) {
	bus := NewEventBus()
	errFirst := errors.New("first")
	second := false

	bus.Subscribe(EventBookingRejected, func(_ *Event) error { return errFirst })
	bus.Subscribe(EventBookingRejected, func(_ *Event) error { second = true; return nil })

	err := bus.PublishJSON(EventBookingRejected, struct{}{})
	assert.ErrorIs(t, err, errFirst)
	assert.True(t, second, "later handlers still run")
}

func TestEventBus_NilAndBadPayload(t *testing.T) {
	var nilBus *EventBus
	assert.NoError(t, nilBus.PublishJSON(EventBookingCreated, struct{}{}))

	bus := NewEventBus()
	assert.Error(t, bus.PublishJSON(EventBookingCreated, make(chan int)))
}

func TestBookingEventPayload_RoundTrip(t *testing.T) {
	start := time.Date(2030, 1, 2, 10, 0, 0, 0, time.UTC)
	b := &models.Booking{
		ID: 7, ItemID: 3, ItemName: "Drill", OwnerID: 1, BookerID: 2, BookerName: "bob",
		Status: models.StatusApproved, Start: start, End: start.Add(time.Hour),
	}

	bus := NewEventBus()
	var got BookingEventPayload
	bus.Subscribe(EventBookingApproved, func(e *Event) error { return e.Decode(&got) })
	require.NoError(t, bus.PublishJSON(EventBookingApproved, NewBookingEventPayload(b, ChangedByOwner, 1)))

	assert.Equal(t, ChangedByOwner, got.ChangedBy)
	assert.Equal(t, int64(1), got.ChangedByID)
	rebuilt := got.Booking()
	assert.Equal(t, b.ID, rebuilt.ID)
	assert.Equal(t, b.BookerName, rebuilt.BookerName)
	assert.Equal(t, models.StatusApproved, rebuilt.Status)
	assert.True(t, rebuilt.Start.Equal(start))
}
