package models

import "time"

type Item struct {
	ID          int64     `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Description string    `json:"description" yaml:"description"`
	Available   bool      `json:"available" yaml:"available"`
	OwnerID     int64     `json:"ownerId" yaml:"owner_id"`
	RequestID   *int64    `json:"requestId" yaml:"request_id"`
	CreatedAt   time.Time `json:"-" yaml:"-"`
	UpdatedAt   time.Time `json:"-" yaml:"-"`
}

// ItemPatch carries a partial item update; nil fields are left unchanged.
type ItemPatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Available   *bool   `json:"available"`
}

func (p ItemPatch) Apply(it *Item) bool {
	changed := false
	if p.Name != nil && *p.Name != it.Name {
		it.Name = *p.Name
		changed = true
	}
	if p.Description != nil && *p.Description != it.Description {
		it.Description = *p.Description
		changed = true
	}
	if p.Available != nil && *p.Available != it.Available {
		it.Available = *p.Available
		changed = true
	}
	return changed
}

// BookingRef is the short booking view attached to an item.
type BookingRef struct {
	ID       int64 `json:"id"`
	BookerID int64 `json:"bookerId"`
}

// ItemDetails is an item together with its nearest bookings and comments.
type ItemDetails struct {
	Item
	LastBooking *BookingRef `json:"lastBooking"`
	NextBooking *BookingRef `json:"nextBooking"`
	Comments    []Comment   `json:"comments"`
}
