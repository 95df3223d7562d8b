package models

import (
	"fmt"
	"time"
)

type BookingStatus string

const (
	StatusWaiting  BookingStatus = "WAITING"
	StatusApproved BookingStatus = "APPROVED"
	StatusRejected BookingStatus = "REJECTED"
	StatusCanceled BookingStatus = "CANCELED"
)

type Booking struct {
	ID         int64         `json:"id"`
	Start      time.Time     `json:"start"`
	End        time.Time     `json:"end"`
	ItemID     int64         `json:"itemId"`
	ItemName   string        `json:"itemName"`
	OwnerID    int64         `json:"ownerId"`
	BookerID   int64         `json:"bookerId"`
	BookerName string        `json:"bookerName"`
	Status     BookingStatus `json:"status"`
	Version    int64         `json:"version"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// BookingState is the bucket a booking list is filtered by.
type BookingState string

const (
	StateAll      BookingState = "ALL"
	StateWaiting  BookingState = "WAITING"
	StateApproved BookingState = "APPROVED"
	StateRejected BookingState = "REJECTED"
	StateCurrent  BookingState = "CURRENT"
	StatePast     BookingState = "PAST"
	StateFuture   BookingState = "FUTURE"
)

// UnknownStateError is returned by ParseBookingState for values outside the
// enumerated set.
type UnknownStateError struct {
	Value string
}

func (e *UnknownStateError) Error() string {
	return fmt.Sprintf("Unknown state: %s", e.Value)
}

// ParseBookingState matches raw exactly (case-sensitive). An empty value means ALL.
// APPROVED belongs to the accepted set and filters by status like WAITING
// and REJECTED.
func ParseBookingState(raw string) (BookingState, error) {
	if raw == "" {
		return StateAll, nil
	}
	switch s := BookingState(raw); s {
	case StateAll, StateWaiting, StateApproved, StateRejected, StateCurrent, StatePast, StateFuture:
		return s, nil
	}
	return "", &UnknownStateError{Value: raw}
}

// ClassifyBooking returns the temporal bucket of b relative to now: PAST,
// CURRENT or FUTURE. Boundary instants (start or end equal to now) belong to
// no bucket and yield an empty state, matching the strict comparisons of the
// list queries.
func ClassifyBooking(b *Booking, now time.Time) BookingState {
	switch {
	case b.Start.Before(now) && b.End.Before(now):
		return StatePast
	case b.Start.After(now) && b.End.After(now):
		return StateFuture
	case b.Start.Before(now) && b.End.After(now):
		return StateCurrent
	}
	return ""
}

// BookingRole selects which side of a booking a list query is made from.
type BookingRole int

const (
	RoleBooker BookingRole = iota
	RoleOwner
)

func (r BookingRole) String() string {
	if r == RoleOwner {
		return "owner"
	}
	return "booker"
}

// BookingQuery is a fully parsed booking list request. Now is captured once
// by the caller and reused for every temporal comparison of the query.
type BookingQuery struct {
	Role   BookingRole
	UserID int64
	State  BookingState
	Now    time.Time
	Page   *Page
}
