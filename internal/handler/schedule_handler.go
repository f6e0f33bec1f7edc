package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/neetrino-com/neetrino-academy-sub005/internal/dto"
	"github.com/neetrino-com/neetrino-academy-sub005/internal/models"
	"github.com/neetrino-com/neetrino-academy-sub005/internal/service"
	appErrors "github.com/neetrino-com/neetrino-academy-sub005/pkg/errors"
	"github.com/neetrino-com/neetrino-academy-sub005/pkg/response"
)

// ScheduleHandler exposes schedule rules, expansion and the calendar.
type ScheduleHandler struct {
	service *service.ScheduleService
	metrics *service.MetricsService
}

// NewScheduleHandler creates a new handler.
func NewScheduleHandler(svc *service.ScheduleService, metrics *service.MetricsService) *ScheduleHandler {
	return &ScheduleHandler{service: svc, metrics: metrics}
}

// Generate godoc
// @Summary Generate events from a group's weekly rules
// @Description Expand active schedule rules over a date window; conflicting candidates are reported, not created
// @Tags Schedule
// @Accept json
// @Produce json
// @Param id path string true "Group id"
// @Param payload body dto.GenerateScheduleRequest true "Date window"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/groups/{id}/schedule/generate [post]
func (h *ScheduleHandler) Generate(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.GenerateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generation payload"))
		return
	}

	result, err := h.service.Expand(c.Request.Context(), c.Param("id"), req, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.ObserveScheduleExpansion(result.Created, result.ConflictCount)

	response.JSON(c, http.StatusOK, result, nil)
}

// CreateRule godoc
// @Summary Declare a weekly schedule rule
// @Tags Schedule
// @Accept json
// @Produce json
// @Param id path string true "Group id"
// @Param payload body dto.CreateScheduleRuleRequest true "Rule payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/groups/{id}/schedule/rules [post]
func (h *ScheduleHandler) CreateRule(c *gin.Context) {
	var req dto.CreateScheduleRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid rule payload"))
		return
	}

	rule, err := h.service.CreateRule(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, rule)
}

// ListRules godoc
// @Summary List a group's schedule rules
// @Tags Schedule
// @Produce json
// @Param id path string true "Group id"
// @Success 200 {object} response.Envelope
// @Router /admin/groups/{id}/schedule/rules [get]
func (h *ScheduleHandler) ListRules(c *gin.Context) {
	rules, err := h.service.ListRules(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rules, nil)
}

// DeactivateRule godoc
// @Summary Deactivate a schedule rule
// @Tags Schedule
// @Produce json
// @Param id path string true "Group id"
// @Param ruleId path string true "Rule id"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/groups/{id}/schedule/rules/{ruleId} [delete]
func (h *ScheduleHandler) DeactivateRule(c *gin.Context) {
	if err := h.service.DeactivateRule(c.Request.Context(), c.Param("ruleId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Calendar godoc
// @Summary List calendar events
// @Tags Schedule
// @Produce json
// @Param from query string false "Window start (YYYY-MM-DD)"
// @Param to query string false "Window end (YYYY-MM-DD)"
// @Param group_id query string false "Filter by group"
// @Param teacher_id query string false "Filter by teacher"
// @Success 200 {object} response.Envelope
// @Router /calendar [get]
func (h *ScheduleHandler) Calendar(c *gin.Context) {
	filter := models.EventFilter{
		GroupID:   c.Query("group_id"),
		TeacherID: c.Query("teacher_id"),
		Page:      intQuery(c, "page", 1),
		PageSize:  intQuery(c, "page_size", 50),
	}
	if raw := c.Query("from"); raw != "" {
		from, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "from must be YYYY-MM-DD"))
			return
		}
		filter.From = &from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "to must be YYYY-MM-DD"))
			return
		}
		end := to.AddDate(0, 0, 1)
		filter.To = &end
	}

	events, total, err := h.service.ListEvents(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, events, &models.Pagination{
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalCount: total,
	})
}

// CreateEvent godoc
// @Summary Create a manual calendar event
// @Tags Schedule
// @Accept json
// @Produce json
// @Param payload body dto.CreateEventRequest true "Event payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/events [post]
func (h *ScheduleHandler) CreateEvent(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid event payload"))
		return
	}

	event, err := h.service.CreateEvent(c.Request.Context(), req, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, event)
}

// UpdateEvent godoc
// @Summary Update a calendar event
// @Tags Schedule
// @Accept json
// @Produce json
// @Param id path string true "Event id"
// @Param payload body dto.UpdateEventRequest true "Event payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/events/{id} [put]
func (h *ScheduleHandler) UpdateEvent(c *gin.Context) {
	var req dto.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid event payload"))
		return
	}

	event, err := h.service.UpdateEvent(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, event, nil)
}

// DeleteEvent godoc
// @Summary Delete a calendar event
// @Tags Schedule
// @Produce json
// @Param id path string true "Event id"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/events/{id} [delete]
func (h *ScheduleHandler) DeleteEvent(c *gin.Context) {
	if err := h.service.DeleteEvent(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
