package models

import "time"

// ScheduleRule is one weekly-recurring slot belonging to a group. DayOfWeek
// follows time.Weekday numbering (0 = Sunday .. 6 = Saturday); StartTime and
// EndTime are wall-clock values in "HH:MM" form.
type ScheduleRule struct {
	ID        string    `db:"id" json:"id"`
	GroupID   string    `db:"group_id" json:"group_id"`
	DayOfWeek int       `db:"day_of_week" json:"day_of_week"`
	StartTime string    `db:"start_time" json:"start_time"`
	EndTime   string    `db:"end_time" json:"end_time"`
	TeacherID *string   `db:"teacher_id" json:"teacher_id,omitempty"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
