package model

import "time"

// Notification is a free-text message shown to a user, created as a
// side effect of booking and cancellation events.  Creation is
// best-effort: a failed insert is logged and never aborts the primary
// operation.
type Notification struct {
	ID        uint64    // notifications.id
	UserID    uint64    // notifications.user_id
	Content   string    // notifications.content
	IsRead    bool      // notifications.is_read
	CreatedAt time.Time // notifications.created_at
}
