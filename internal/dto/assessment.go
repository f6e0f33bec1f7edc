package dto

import "time"

// CreateQuizRequest declares a quiz with its questions.
type CreateQuizRequest struct {
	LessonID  string              `json:"lessonId" validate:"required"`
	Title     string              `json:"title" validate:"required"`
	Questions []QuizQuestionInput `json:"questions" validate:"required,min=1,dive"`
}

// QuizQuestionInput is one question in a quiz payload.
type QuizQuestionInput struct {
	Prompt  string   `json:"prompt" validate:"required"`
	Options []string `json:"options" validate:"required,min=2"`
	Answer  int      `json:"answer" validate:"min=0"`
}

// SubmitQuizRequest carries a student's selected option per question, keyed
// by question id.
type SubmitQuizRequest struct {
	Answers map[string]int `json:"answers" validate:"required,min=1"`
}

// QuizResult reports a scored submission.
type QuizResult struct {
	SubmissionID string `json:"submission_id"`
	Score        int    `json:"score"`
	MaxScore     int    `json:"max_score"`
}

// CreateAssignmentRequest issues an assignment to a group.
type CreateAssignmentRequest struct {
	GroupID     string     `json:"groupId" validate:"required"`
	LessonID    *string    `json:"lessonId,omitempty"`
	Title       string     `json:"title" validate:"required"`
	Description string     `json:"description,omitempty"`
	DueAt       *time.Time `json:"dueAt,omitempty"`
}

// SubmitAssignmentRequest carries a student submission.
type SubmitAssignmentRequest struct {
	Content string `json:"content" validate:"required"`
}

// GradeAssignmentRequest records a grade for a submission.
type GradeAssignmentRequest struct {
	SubmissionID string  `json:"submissionId" validate:"required"`
	Grade        int     `json:"grade" validate:"min=0,max=100"`
	Feedback     *string `json:"feedback,omitempty"`
}
