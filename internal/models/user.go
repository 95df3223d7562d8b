package models

import "time"

const (
	MaxUserNameLength  = 50
	MaxUserEmailLength = 150
)

type User struct {
	ID        int64     `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Email     string    `json:"email" yaml:"email"`
	CreatedAt time.Time `json:"-" yaml:"-"`
	UpdatedAt time.Time `json:"-" yaml:"-"`
}

// UserPatch carries a partial update; nil fields are left unchanged.
type UserPatch struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

// Apply copies non-nil patch fields onto u and reports whether anything changed.
func (p UserPatch) Apply(u *User) bool {
	changed := false
	if p.Name != nil && *p.Name != u.Name {
		u.Name = *p.Name
		changed = true
	}
	if p.Email != nil && *p.Email != u.Email {
		u.Email = *p.Email
		changed = true
	}
	return changed
}
