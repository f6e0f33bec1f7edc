package models

import "time"

// Event is one concrete calendar occurrence. It may be produced by the
// schedule expander or created manually; once created its lifecycle is
// independent of the rule it came from.
type Event struct {
	ID                   string    `db:"id" json:"id"`
	GroupID              string    `db:"group_id" json:"group_id"`
	TeacherID            string    `db:"teacher_id" json:"teacher_id"`
	Title                string    `db:"title" json:"title"`
	StartsAt             time.Time `db:"starts_at" json:"starts_at"`
	EndsAt               time.Time `db:"ends_at" json:"ends_at"`
	Location             *string   `db:"location" json:"location,omitempty"`
	IsAttendanceRequired bool      `db:"is_attendance_required" json:"is_attendance_required"`
	IsActive             bool      `db:"is_active" json:"is_active"`
	RuleID               *string   `db:"rule_id" json:"rule_id,omitempty"`
	CreatedBy            string    `db:"created_by" json:"created_by"`
	CreatedAt            time.Time `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time `db:"updated_at" json:"updated_at"`
}

// EventFilter narrows down calendar listings.
type EventFilter struct {
	GroupID   string
	TeacherID string
	From      *time.Time
	To        *time.Time
	Page      int
	PageSize  int
}
