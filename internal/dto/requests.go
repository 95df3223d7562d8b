package dto

import (
	"errors"
	"time"

	"shareit/internal/models"
)

type UserCreate struct {
	Name  string `json:"name" validate:"required,notblank,max=50"`
	Email string `json:"email" validate:"required,email,max=150"`
}

func (r UserCreate) Model() *models.User {
	return &models.User{Name: r.Name, Email: r.Email}
}

type UserPatch struct {
	Name  *string `json:"name" validate:"omitempty,notblank,max=50"`
	Email *string `json:"email" validate:"omitempty,email,max=150"`
}

func (r UserPatch) Model() models.UserPatch {
	return models.UserPatch{Name: r.Name, Email: r.Email}
}

type ItemCreate struct {
	Name        string `json:"name" validate:"required,notblank"`
	Description string `json:"description" validate:"required,notblank"`
	Available   *bool  `json:"available" validate:"required"`
	RequestID   *int64 `json:"requestId" validate:"omitempty,gt=0"`
}

func (r ItemCreate) Model() *models.Item {
	it := &models.Item{
		Name:        r.Name,
		Description: r.Description,
		RequestID:   r.RequestID,
	}
	if r.Available != nil {
		it.Available = *r.Available
	}
	return it
}

type ItemPatch struct {
	Name        *string `json:"name" validate:"omitempty,notblank"`
	Description *string `json:"description" validate:"omitempty,notblank"`
	Available   *bool   `json:"available"`
}

func (r ItemPatch) Model() models.ItemPatch {
	return models.ItemPatch{Name: r.Name, Description: r.Description, Available: r.Available}
}

type BookingCreate struct {
	ItemID int64      `json:"itemId" validate:"required,gt=0"`
	Start  *LocalTime `json:"start" validate:"required"`
	End    *LocalTime `json:"end" validate:"required"`
}

func (r BookingCreate) Model() *models.Booking {
	b := &models.Booking{ItemID: r.ItemID}
	if r.Start != nil {
		b.Start = r.Start.Time
	}
	if r.End != nil {
		b.End = r.End.Time
	}
	return b
}

var (
	ErrStartInPast    = errors.New("start must not be in the past")
	ErrEndInPast      = errors.New("end must be in the future")
	ErrEndBeforeStart = errors.New("end must be after start")
)

// CheckWindow applies the gateway's temporal rules to an already validated
// booking: start not in the past, end in the future and after start.
func (r BookingCreate) CheckWindow(now time.Time) error {
	switch {
	case r.Start.Before(now):
		return ErrStartInPast
	case !r.End.After(now):
		return ErrEndInPast
	case !r.End.After(r.Start.Time):
		return ErrEndBeforeStart
	}
	return nil
}

type RequestCreate struct {
	Description string `json:"description" validate:"required,notblank,max=255"`
}

type CommentCreate struct {
	Text string `json:"text" validate:"required,notblank"`
}
