package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/neetrino-com/neetrino-academy-sub005/internal/dto"
	"github.com/neetrino-com/neetrino-academy-sub005/internal/service"
	appErrors "github.com/neetrino-com/neetrino-academy-sub005/pkg/errors"
	"github.com/neetrino-com/neetrino-academy-sub005/pkg/response"
)

// AssessmentHandler exposes quizzes, assignments and grading.
type AssessmentHandler struct {
	service *service.AssessmentService
}

// NewAssessmentHandler creates a new handler.
func NewAssessmentHandler(svc *service.AssessmentService) *AssessmentHandler {
	return &AssessmentHandler{service: svc}
}

// CreateQuiz godoc
// @Summary Create quiz
// @Tags Assessment
// @Accept json
// @Produce json
// @Param payload body dto.CreateQuizRequest true "Quiz payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /quizzes [post]
func (h *AssessmentHandler) CreateQuiz(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.CreateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid quiz payload"))
		return
	}

	quiz, err := h.service.CreateQuiz(c.Request.Context(), req, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, quiz)
}

// GetQuiz godoc
// @Summary Get quiz
// @Description Students receive the quiz without answer keys
// @Tags Assessment
// @Produce json
// @Param id path string true "Quiz id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /quizzes/{id} [get]
func (h *AssessmentHandler) GetQuiz(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	quiz, err := h.service.GetQuiz(c.Request.Context(), c.Param("id"), claims.Role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, quiz, nil)
}

// SubmitQuiz godoc
// @Summary Submit quiz answers
// @Tags Assessment
// @Accept json
// @Produce json
// @Param id path string true "Quiz id"
// @Param payload body dto.SubmitQuizRequest true "Answers keyed by question id"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /quizzes/{id}/submit [post]
func (h *AssessmentHandler) SubmitQuiz(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.SubmitQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid submission payload"))
		return
	}

	result, err := h.service.SubmitQuiz(c.Request.Context(), c.Param("id"), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// CreateAssignment godoc
// @Summary Create assignment
// @Tags Assessment
// @Accept json
// @Produce json
// @Param payload body dto.CreateAssignmentRequest true "Assignment payload"
// @Success 201 {object} response.Envelope
// @Router /assignments [post]
func (h *AssessmentHandler) CreateAssignment(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid assignment payload"))
		return
	}

	assignment, err := h.service.CreateAssignment(c.Request.Context(), req, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, assignment)
}

// ListAssignments godoc
// @Summary List a group's assignments
// @Tags Assessment
// @Produce json
// @Param group_id query string true "Group id"
// @Success 200 {object} response.Envelope
// @Router /assignments [get]
func (h *AssessmentHandler) ListAssignments(c *gin.Context) {
	groupID := c.Query("group_id")
	if groupID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "group_id is required"))
		return
	}

	assignments, err := h.service.ListAssignments(c.Request.Context(), groupID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignments, nil)
}

// SubmitAssignment godoc
// @Summary Submit assignment work
// @Tags Assessment
// @Accept json
// @Produce json
// @Param id path string true "Assignment id"
// @Param payload body dto.SubmitAssignmentRequest true "Submission payload"
// @Success 201 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /assignments/{id}/submit [post]
func (h *AssessmentHandler) SubmitAssignment(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.SubmitAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid submission payload"))
		return
	}

	submission, err := h.service.SubmitAssignment(c.Request.Context(), c.Param("id"), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, submission)
}

// GradeAssignment godoc
// @Summary Grade an assignment submission
// @Tags Assessment
// @Accept json
// @Produce json
// @Param id path string true "Assignment id"
// @Param payload body dto.GradeAssignmentRequest true "Grading payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /assignments/{id}/grade [post]
func (h *AssessmentHandler) GradeAssignment(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.GradeAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid grading payload"))
		return
	}

	submission, err := h.service.GradeAssignment(c.Request.Context(), req, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, submission, nil)
}
