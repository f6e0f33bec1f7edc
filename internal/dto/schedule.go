package dto

import (
	"time"

	"github.com/neetrino-com/neetrino-academy-sub005/internal/models"
)

// GenerateScheduleRequest asks the expander to materialise a group's weekly
// rules over a date window. Dates are ISO "YYYY-MM-DD".
type GenerateScheduleRequest struct {
	StartDate            string  `json:"startDate" validate:"required"`
	EndDate              string  `json:"endDate" validate:"required"`
	Title                string  `json:"title,omitempty"`
	Location             *string `json:"location,omitempty"`
	IsAttendanceRequired bool    `json:"isAttendanceRequired,omitempty"`
}

// ScheduleConflict reports a candidate that was rejected, together with the
// existing events it collided with.
type ScheduleConflict struct {
	RuleID       string         `json:"rule_id"`
	TeacherID    string         `json:"teacher_id"`
	Location     *string        `json:"location,omitempty"`
	StartsAt     time.Time      `json:"starts_at"`
	EndsAt       time.Time      `json:"ends_at"`
	CollidedWith []models.Event `json:"collided_with"`
}

// GenerateScheduleResponse summarises an expansion run. Conflicts are a
// normal outcome, not an error; counts let callers tell "nothing requested"
// from "everything conflicted" from partial success.
type GenerateScheduleResponse struct {
	Success       bool               `json:"success"`
	Created       int                `json:"created"`
	ConflictCount int                `json:"conflict_count"`
	Conflicts     []ScheduleConflict `json:"conflicts"`
	CreatedEvents []models.Event     `json:"created_events"`
}

// CreateScheduleRuleRequest declares a weekly slot for a group.
type CreateScheduleRuleRequest struct {
	DayOfWeek int     `json:"dayOfWeek" validate:"min=0,max=6"`
	StartTime string  `json:"startTime" validate:"required"`
	EndTime   string  `json:"endTime" validate:"required"`
	TeacherID *string `json:"teacherId,omitempty"`
}

// CreateEventRequest creates a manual calendar event.
type CreateEventRequest struct {
	GroupID              string    `json:"groupId" validate:"required"`
	TeacherID            string    `json:"teacherId" validate:"required"`
	Title                string    `json:"title" validate:"required"`
	StartsAt             time.Time `json:"startsAt" validate:"required"`
	EndsAt               time.Time `json:"endsAt" validate:"required"`
	Location             *string   `json:"location,omitempty"`
	IsAttendanceRequired bool      `json:"isAttendanceRequired,omitempty"`
}

// UpdateEventRequest edits a calendar event.
type UpdateEventRequest struct {
	Title                *string    `json:"title,omitempty"`
	StartsAt             *time.Time `json:"startsAt,omitempty"`
	EndsAt               *time.Time `json:"endsAt,omitempty"`
	Location             *string    `json:"location,omitempty"`
	TeacherID            *string    `json:"teacherId,omitempty"`
	IsAttendanceRequired *bool      `json:"isAttendanceRequired,omitempty"`
	IsActive             *bool      `json:"isActive,omitempty"`
}
