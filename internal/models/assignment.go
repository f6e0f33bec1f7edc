package models

import "time"

// Assignment is graded work issued to a group.
type Assignment struct {
	ID          string     `db:"id" json:"id"`
	GroupID     string     `db:"group_id" json:"group_id"`
	LessonID    *string    `db:"lesson_id" json:"lesson_id,omitempty"`
	Title       string     `db:"title" json:"title"`
	Description string     `db:"description" json:"description"`
	DueAt       *time.Time `db:"due_at" json:"due_at,omitempty"`
	CreatedBy   string     `db:"created_by" json:"created_by"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// AssignmentSubmission is a student's answer to an assignment.
type AssignmentSubmission struct {
	ID           string     `db:"id" json:"id"`
	AssignmentID string     `db:"assignment_id" json:"assignment_id"`
	StudentID    string     `db:"student_id" json:"student_id"`
	Content      string     `db:"content" json:"content"`
	Grade        *int       `db:"grade" json:"grade,omitempty"`
	Feedback     *string    `db:"feedback" json:"feedback,omitempty"`
	GradedBy     *string    `db:"graded_by" json:"graded_by,omitempty"`
	GradedAt     *time.Time `db:"graded_at" json:"graded_at,omitempty"`
	SubmittedAt  time.Time  `db:"submitted_at" json:"submitted_at"`
}
