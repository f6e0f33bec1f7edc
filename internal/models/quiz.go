package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// Quiz is a scored questionnaire attached to a lesson.
type Quiz struct {
	ID        string         `db:"id" json:"id"`
	LessonID  string         `db:"lesson_id" json:"lesson_id"`
	Title     string         `db:"title" json:"title"`
	Questions types.JSONText `db:"questions" json:"questions"`
	CreatedBy string         `db:"created_by" json:"created_by"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}

// QuizQuestion is the shape stored inside Quiz.Questions.
type QuizQuestion struct {
	ID      string   `json:"id"`
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
	Answer  int      `json:"answer"`
}

// QuizSubmission records a student's answers and score.
type QuizSubmission struct {
	ID          string         `db:"id" json:"id"`
	QuizID      string         `db:"quiz_id" json:"quiz_id"`
	StudentID   string         `db:"student_id" json:"student_id"`
	Answers     types.JSONText `db:"answers" json:"answers"`
	Score       int            `db:"score" json:"score"`
	MaxScore    int            `db:"max_score" json:"max_score"`
	SubmittedAt time.Time      `db:"submitted_at" json:"submitted_at"`
}
