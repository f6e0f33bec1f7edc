package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/neetrino-com/neetrino-academy-sub005/internal/models"
)

// AssessmentRepository provides persistence for quizzes, assignments and
// their submissions.
type AssessmentRepository struct {
	db *sqlx.DB
}

// NewAssessmentRepository creates a new assessment repository.
func NewAssessmentRepository(db *sqlx.DB) *AssessmentRepository {
	return &AssessmentRepository{db: db}
}

// CreateQuiz stores a quiz with its question payload.
func (r *AssessmentRepository) CreateQuiz(ctx context.Context, quiz *models.Quiz) error {
	if quiz.ID == "" {
		quiz.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if quiz.CreatedAt.IsZero() {
		quiz.CreatedAt = now
	}
	quiz.UpdatedAt = now

	const query = `INSERT INTO quizzes (id, lesson_id, title, questions, created_by, created_at, updated_at)
VALUES (:id, :lesson_id, :title, :questions, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, quiz); err != nil {
		return fmt.Errorf("create quiz: %w", err)
	}
	return nil
}

// FindQuizByID loads a quiz.
func (r *AssessmentRepository) FindQuizByID(ctx context.Context, id string) (*models.Quiz, error) {
	const query = `SELECT id, lesson_id, title, questions, created_by, created_at, updated_at FROM quizzes WHERE id = $1`
	var quiz models.Quiz
	if err := r.db.GetContext(ctx, &quiz, query, id); err != nil {
		return nil, err
	}
	return &quiz, nil
}

// FindQuizSubmission loads a student's submission for a quiz, if any.
func (r *AssessmentRepository) FindQuizSubmission(ctx context.Context, quizID, studentID string) (*models.QuizSubmission, error) {
	const query = `SELECT id, quiz_id, student_id, answers, score, max_score, submitted_at
FROM quiz_submissions WHERE quiz_id = $1 AND student_id = $2`
	var submission models.QuizSubmission
	if err := r.db.GetContext(ctx, &submission, query, quizID, studentID); err != nil {
		return nil, err
	}
	return &submission, nil
}

// CreateQuizSubmission stores a scored submission.
func (r *AssessmentRepository) CreateQuizSubmission(ctx context.Context, submission *models.QuizSubmission) error {
	if submission.ID == "" {
		submission.ID = uuid.NewString()
	}
	if submission.SubmittedAt.IsZero() {
		submission.SubmittedAt = time.Now().UTC()
	}
	const query = `INSERT INTO quiz_submissions (id, quiz_id, student_id, answers, score, max_score, submitted_at)
VALUES (:id, :quiz_id, :student_id, :answers, :score, :max_score, :submitted_at)`
	if _, err := r.db.NamedExecContext(ctx, query, submission); err != nil {
		return fmt.Errorf("create quiz submission: %w", err)
	}
	return nil
}

// CreateAssignment stores an assignment.
func (r *AssessmentRepository) CreateAssignment(ctx context.Context, assignment *models.Assignment) error {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if assignment.CreatedAt.IsZero() {
		assignment.CreatedAt = now
	}
	assignment.UpdatedAt = now

	const query = `INSERT INTO assignments (id, group_id, lesson_id, title, description, due_at, created_by, created_at, updated_at)
VALUES (:id, :group_id, :lesson_id, :title, :description, :due_at, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, assignment); err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}
	return nil
}

// FindAssignmentByID loads an assignment.
func (r *AssessmentRepository) FindAssignmentByID(ctx context.Context, id string) (*models.Assignment, error) {
	const query = `SELECT id, group_id, lesson_id, title, description, due_at, created_by, created_at, updated_at
FROM assignments WHERE id = $1`
	var assignment models.Assignment
	if err := r.db.GetContext(ctx, &assignment, query, id); err != nil {
		return nil, err
	}
	return &assignment, nil
}

// ListAssignmentsByGroup returns assignments for a group, newest first.
func (r *AssessmentRepository) ListAssignmentsByGroup(ctx context.Context, groupID string) ([]models.Assignment, error) {
	const query = `SELECT id, group_id, lesson_id, title, description, due_at, created_by, created_at, updated_at
FROM assignments WHERE group_id = $1 ORDER BY created_at DESC`
	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, query, groupID); err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return assignments, nil
}

// CreateAssignmentSubmission stores a student submission.
func (r *AssessmentRepository) CreateAssignmentSubmission(ctx context.Context, submission *models.AssignmentSubmission) error {
	if submission.ID == "" {
		submission.ID = uuid.NewString()
	}
	if submission.SubmittedAt.IsZero() {
		submission.SubmittedAt = time.Now().UTC()
	}
	const query = `INSERT INTO assignment_submissions (id, assignment_id, student_id, content, submitted_at)
VALUES (:id, :assignment_id, :student_id, :content, :submitted_at)`
	if _, err := r.db.NamedExecContext(ctx, query, submission); err != nil {
		return fmt.Errorf("create assignment submission: %w", err)
	}
	return nil
}

// FindAssignmentSubmission loads a student's submission for an assignment.
func (r *AssessmentRepository) FindAssignmentSubmission(ctx context.Context, assignmentID, studentID string) (*models.AssignmentSubmission, error) {
	const query = `SELECT id, assignment_id, student_id, content, grade, feedback, graded_by, graded_at, submitted_at
FROM assignment_submissions WHERE assignment_id = $1 AND student_id = $2`
	var submission models.AssignmentSubmission
	if err := r.db.GetContext(ctx, &submission, query, assignmentID, studentID); err != nil {
		return nil, err
	}
	return &submission, nil
}

// FindSubmissionByID loads a submission by id.
func (r *AssessmentRepository) FindSubmissionByID(ctx context.Context, id string) (*models.AssignmentSubmission, error) {
	const query = `SELECT id, assignment_id, student_id, content, grade, feedback, graded_by, graded_at, submitted_at
FROM assignment_submissions WHERE id = $1`
	var submission models.AssignmentSubmission
	if err := r.db.GetContext(ctx, &submission, query, id); err != nil {
		return nil, err
	}
	return &submission, nil
}

// GradeSubmission records a grade and feedback on a submission.
func (r *AssessmentRepository) GradeSubmission(ctx context.Context, id string, grade int, feedback *string, gradedBy string) error {
	const query = `UPDATE assignment_submissions SET grade = $2, feedback = $3, graded_by = $4, graded_at = $5 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, grade, feedback, gradedBy, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("grade submission: %w", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return fmt.Errorf("submission %s not found", id)
	}
	return nil
}
