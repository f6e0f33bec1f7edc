package models

import "time"

// Group is a cohort of students following a course together.
type Group struct {
	ID        string     `db:"id" json:"id"`
	Name      string     `db:"name" json:"name"`
	CourseID  *string    `db:"course_id" json:"course_id,omitempty"`
	TeacherID *string    `db:"teacher_id" json:"teacher_id,omitempty"`
	StartDate *time.Time `db:"start_date" json:"start_date,omitempty"`
	EndDate   *time.Time `db:"end_date" json:"end_date,omitempty"`
	Active    bool       `db:"active" json:"active"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// GroupMember links a student to a group.
type GroupMember struct {
	GroupID  string    `db:"group_id" json:"group_id"`
	UserID   string    `db:"user_id" json:"user_id"`
	JoinedAt time.Time `db:"joined_at" json:"joined_at"`
}

// GroupFilter narrows down group listings.
type GroupFilter struct {
	CourseID  string
	TeacherID string
	Active    *bool
	Page      int
	PageSize  int
}
