package dto

import "shareit/internal/models"

type ErrorResponse struct {
	Error        string `json:"error"`
	ErrorMessage string `json:"errorMessage"`
}

type UserResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{ID: u.ID, Name: u.Name, Email: u.Email}
}

func NewUserResponses(users []*models.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, NewUserResponse(u))
	}
	return out
}

type ItemResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Available   bool   `json:"available"`
	OwnerID     int64  `json:"ownerId"`
	RequestID   *int64 `json:"requestId"`
}

func NewItemResponse(it *models.Item) ItemResponse {
	return ItemResponse{
		ID:          it.ID,
		Name:        it.Name,
		Description: it.Description,
		Available:   it.Available,
		OwnerID:     it.OwnerID,
		RequestID:   it.RequestID,
	}
}

func NewItemResponses(items []*models.Item) []ItemResponse {
	out := make([]ItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, NewItemResponse(it))
	}
	return out
}

type BookingShort struct {
	ID       int64 `json:"id"`
	BookerID int64 `json:"bookerId"`
}

func newBookingShort(ref *models.BookingRef) *BookingShort {
	if ref == nil {
		return nil
	}
	return &BookingShort{ID: ref.ID, BookerID: ref.BookerID}
}

type CommentResponse struct {
	ID         int64     `json:"id"`
	Text       string    `json:"text"`
	AuthorName string    `json:"authorName"`
	Created    LocalTime `json:"created"`
}

func NewCommentResponse(c *models.Comment) CommentResponse {
	return CommentResponse{ID: c.ID, Text: c.Text, AuthorName: c.AuthorName, Created: NewLocalTime(c.Created)}
}

type ItemDetailsResponse struct {
	ItemResponse
	LastBooking *BookingShort     `json:"lastBooking"`
	NextBooking *BookingShort     `json:"nextBooking"`
	Comments    []CommentResponse `json:"comments"`
}

func NewItemDetailsResponse(d *models.ItemDetails) ItemDetailsResponse {
	comments := make([]CommentResponse, 0, len(d.Comments))
	for i := range d.Comments {
		comments = append(comments, NewCommentResponse(&d.Comments[i]))
	}
	return ItemDetailsResponse{
		ItemResponse: NewItemResponse(&d.Item),
		LastBooking:  newBookingShort(d.LastBooking),
		NextBooking:  newBookingShort(d.NextBooking),
		Comments:     comments,
	}
}

func NewItemDetailsResponses(details []*models.ItemDetails) []ItemDetailsResponse {
	out := make([]ItemDetailsResponse, 0, len(details))
	for _, d := range details {
		out = append(out, NewItemDetailsResponse(d))
	}
	return out
}

type Ref struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type BookingResponse struct {
	ID     int64                `json:"id"`
	Start  LocalTime            `json:"start"`
	End    LocalTime            `json:"end"`
	Status models.BookingStatus `json:"status"`
	Booker Ref                  `json:"booker"`
	Item   Ref                  `json:"item"`
}

func NewBookingResponse(b *models.Booking) BookingResponse {
	return BookingResponse{
		ID:     b.ID,
		Start:  NewLocalTime(b.Start),
		End:    NewLocalTime(b.End),
		Status: b.Status,
		Booker: Ref{ID: b.BookerID, Name: b.BookerName},
		Item:   Ref{ID: b.ItemID, Name: b.ItemName},
	}
}

func NewBookingResponses(bookings []*models.Booking) []BookingResponse {
	out := make([]BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, NewBookingResponse(b))
	}
	return out
}

type RequestResponse struct {
	ID          int64          `json:"id"`
	Description string         `json:"description"`
	Created     LocalTime      `json:"created"`
	Items       []ItemResponse `json:"items"`
}

func NewRequestResponse(r *models.Request) RequestResponse {
	items := make([]ItemResponse, 0, len(r.Items))
	for i := range r.Items {
		items = append(items, NewItemResponse(&r.Items[i]))
	}
	return RequestResponse{
		ID:          r.ID,
		Description: r.Description,
		Created:     NewLocalTime(r.Created),
		Items:       items,
	}
}

func NewRequestResponses(requests []*models.Request) []RequestResponse {
	out := make([]RequestResponse, 0, len(requests))
	for _, r := range requests {
		out = append(out, NewRequestResponse(r))
	}
	return out
}
