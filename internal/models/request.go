package models

import "time"

const MaxRequestDescriptionLength = 255

// Request is a user's description of an item they would like someone to list.
// Items is derived at read time from items.request_id and is never stored.
type Request struct {
	ID          int64     `json:"id"`
	Description string    `json:"description"`
	RequesterID int64     `json:"requesterId"`
	Created     time.Time `json:"created"`
	Items       []Item    `json:"items"`
}
