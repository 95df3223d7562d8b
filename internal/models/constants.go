package models

const (
	// HeaderUserID carries the id of the calling user on every API request.
	HeaderUserID = "X-Sharer-User-Id"

	// TimeLayout is the wire format of booking and request timestamps.
	TimeLayout = "2006-01-02T15:04:05"
)

const (
	SyncStatusPending   = "pending"
	SyncStatusRetry     = "retry"
	SyncStatusCompleted = "completed"
	SyncStatusFailed    = "failed"
)

// Outbox task types.
const (
	TaskUpsert       = "upsert"
	TaskUpdateStatus = "update_status"
	TaskDelete       = "delete"
	TaskNotify       = "notify"
)
