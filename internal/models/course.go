package models

import "time"

// Course is a published unit of teaching owned by a teacher.
type Course struct {
	ID          string    `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	TeacherID   string    `db:"teacher_id" json:"teacher_id"`
	PriceCents  int64     `db:"price_cents" json:"price_cents"`
	Published   bool      `db:"published" json:"published"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// CourseModule is an ordered section within a course.
type CourseModule struct {
	ID        string    `db:"id" json:"id"`
	CourseID  string    `db:"course_id" json:"course_id"`
	Title     string    `db:"title" json:"title"`
	Position  int       `db:"position" json:"position"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Lesson is a single teaching unit inside a course module.
type Lesson struct {
	ID        string    `db:"id" json:"id"`
	ModuleID  string    `db:"module_id" json:"module_id"`
	Title     string    `db:"title" json:"title"`
	Content   string    `db:"content" json:"content"`
	Position  int       `db:"position" json:"position"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// CourseFilter narrows down course listings.
type CourseFilter struct {
	TeacherID string
	Published *bool
	Search    string
	Page      int
	PageSize  int
}
