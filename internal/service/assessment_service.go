package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/neetrino-com/neetrino-academy-sub005/internal/dto"
	"github.com/neetrino-com/neetrino-academy-sub005/internal/models"
	appErrors "github.com/neetrino-com/neetrino-academy-sub005/pkg/errors"
)

type assessmentRepository interface {
	CreateQuiz(ctx context.Context, quiz *models.Quiz) error
	FindQuizByID(ctx context.Context, id string) (*models.Quiz, error)
	FindQuizSubmission(ctx context.Context, quizID, studentID string) (*models.QuizSubmission, error)
	CreateQuizSubmission(ctx context.Context, submission *models.QuizSubmission) error
	CreateAssignment(ctx context.Context, assignment *models.Assignment) error
	FindAssignmentByID(ctx context.Context, id string) (*models.Assignment, error)
	ListAssignmentsByGroup(ctx context.Context, groupID string) ([]models.Assignment, error)
	CreateAssignmentSubmission(ctx context.Context, submission *models.AssignmentSubmission) error
	FindAssignmentSubmission(ctx context.Context, assignmentID, studentID string) (*models.AssignmentSubmission, error)
	FindSubmissionByID(ctx context.Context, id string) (*models.AssignmentSubmission, error)
	GradeSubmission(ctx context.Context, id string, grade int, feedback *string, gradedBy string) error
}

type membershipChecker interface {
	IsMember(ctx context.Context, groupID, userID string) (bool, error)
}

// AssessmentService covers quizzes and assignments: authoring, student
// submissions and grading.
type AssessmentService struct {
	repo      assessmentRepository
	members   membershipChecker
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAssessmentService constructs an AssessmentService.
func NewAssessmentService(repo assessmentRepository, members membershipChecker, validate *validator.Validate, logger *zap.Logger) *AssessmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AssessmentService{repo: repo, members: members, validator: validate, logger: logger}
}

// CreateQuiz stores a quiz; questions are serialised as a JSONB payload with
// generated per-question ids.
func (s *AssessmentService) CreateQuiz(ctx context.Context, req dto.CreateQuizRequest, createdBy string) (*models.Quiz, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid quiz payload")
	}

	questions := make([]models.QuizQuestion, 0, len(req.Questions))
	for _, q := range req.Questions {
		if q.Answer >= len(q.Options) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "answer index is out of range for its options")
		}
		questions = append(questions, models.QuizQuestion{
			ID:      uuid.NewString(),
			Prompt:  q.Prompt,
			Options: q.Options,
			Answer:  q.Answer,
		})
	}
	payload, err := json.Marshal(questions)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode questions")
	}

	quiz := models.Quiz{
		LessonID:  req.LessonID,
		Title:     req.Title,
		Questions: payload,
		CreatedBy: createdBy,
	}
	if err := s.repo.CreateQuiz(ctx, &quiz); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create quiz")
	}
	return &quiz, nil
}

// GetQuiz loads a quiz. Answer keys are stripped for students.
func (s *AssessmentService) GetQuiz(ctx context.Context, id string, role models.UserRole) (*models.Quiz, error) {
	quiz, err := s.repo.FindQuizByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "quiz not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load quiz")
	}

	if role == models.RoleStudent {
		var questions []models.QuizQuestion
		if err := json.Unmarshal(quiz.Questions, &questions); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decode questions")
		}
		for i := range questions {
			questions[i].Answer = -1
		}
		redacted, err := json.Marshal(questions)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode questions")
		}
		quiz.Questions = redacted
	}
	return quiz, nil
}

// SubmitQuiz scores a student's answers against the stored key. A student may
// submit each quiz once.
func (s *AssessmentService) SubmitQuiz(ctx context.Context, quizID, studentID string, req dto.SubmitQuizRequest) (*dto.QuizResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid submission payload")
	}

	quiz, err := s.repo.FindQuizByID(ctx, quizID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "quiz not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load quiz")
	}

	if _, err := s.repo.FindQuizSubmission(ctx, quizID, studentID); err == nil {
		return nil, appErrors.Clone(appErrors.ErrAlreadySubmitted, "quiz already submitted")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check submission")
	}

	var questions []models.QuizQuestion
	if err := json.Unmarshal(quiz.Questions, &questions); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decode questions")
	}

	score := 0
	for _, q := range questions {
		if answer, ok := req.Answers[q.ID]; ok && answer == q.Answer {
			score++
		}
	}

	answers, err := json.Marshal(req.Answers)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode answers")
	}

	submission := models.QuizSubmission{
		QuizID:    quizID,
		StudentID: studentID,
		Answers:   answers,
		Score:     score,
		MaxScore:  len(questions),
	}
	if err := s.repo.CreateQuizSubmission(ctx, &submission); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store submission")
	}

	s.logger.Info("quiz submitted",
		zap.String("quiz_id", quizID), zap.String("student_id", studentID),
		zap.Int("score", score), zap.Int("max_score", len(questions)))

	return &dto.QuizResult{SubmissionID: submission.ID, Score: score, MaxScore: len(questions)}, nil
}

// CreateAssignment issues graded work to a group.
func (s *AssessmentService) CreateAssignment(ctx context.Context, req dto.CreateAssignmentRequest, createdBy string) (*models.Assignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}

	assignment := models.Assignment{
		GroupID:     req.GroupID,
		LessonID:    req.LessonID,
		Title:       req.Title,
		Description: req.Description,
		DueAt:       req.DueAt,
		CreatedBy:   createdBy,
	}
	if err := s.repo.CreateAssignment(ctx, &assignment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create assignment")
	}
	return &assignment, nil
}

// ListAssignments returns a group's assignments.
func (s *AssessmentService) ListAssignments(ctx context.Context, groupID string) ([]models.Assignment, error) {
	assignments, err := s.repo.ListAssignmentsByGroup(ctx, groupID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	return assignments, nil
}

// SubmitAssignment stores a student submission. The student must belong to
// the assignment's group and may submit once.
func (s *AssessmentService) SubmitAssignment(ctx context.Context, assignmentID, studentID string, req dto.SubmitAssignmentRequest) (*models.AssignmentSubmission, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid submission payload")
	}

	assignment, err := s.repo.FindAssignmentByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}

	member, err := s.members.IsMember(ctx, assignment.GroupID, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check membership")
	}
	if !member {
		return nil, appErrors.Clone(appErrors.ErrNotGroupMember, "student is not in the assignment's group")
	}

	if _, err := s.repo.FindAssignmentSubmission(ctx, assignmentID, studentID); err == nil {
		return nil, appErrors.Clone(appErrors.ErrAlreadySubmitted, "assignment already submitted")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check submission")
	}

	submission := models.AssignmentSubmission{
		AssignmentID: assignmentID,
		StudentID:    studentID,
		Content:      req.Content,
	}
	if err := s.repo.CreateAssignmentSubmission(ctx, &submission); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store submission")
	}
	return &submission, nil
}

// GradeAssignment records a grade and optional feedback on a submission.
func (s *AssessmentService) GradeAssignment(ctx context.Context, req dto.GradeAssignmentRequest, gradedBy string) (*models.AssignmentSubmission, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grading payload")
	}

	if _, err := s.repo.FindSubmissionByID(ctx, req.SubmissionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "submission not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load submission")
	}

	if err := s.repo.GradeSubmission(ctx, req.SubmissionID, req.Grade, req.Feedback, gradedBy); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to grade submission")
	}

	graded, err := s.repo.FindSubmissionByID(ctx, req.SubmissionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload submission")
	}
	return graded, nil
}
