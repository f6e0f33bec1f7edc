package models

import "time"

// Notification is a per-user message produced by system events.
type Notification struct {
	ID        string     `db:"id" json:"id"`
	UserID    string     `db:"user_id" json:"user_id"`
	Kind      string     `db:"kind" json:"kind"`
	Title     string     `db:"title" json:"title"`
	Body      string     `db:"body" json:"body"`
	ReadAt    *time.Time `db:"read_at" json:"read_at,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

// Notification kinds emitted by the API.
const (
	NotificationKindSchedule   = "SCHEDULE"
	NotificationKindAssignment = "ASSIGNMENT"
	NotificationKindPayment    = "PAYMENT"
	NotificationKindBroadcast  = "BROADCAST"
)
