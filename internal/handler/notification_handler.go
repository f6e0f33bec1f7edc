package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/neetrino-com/neetrino-academy-sub005/internal/dto"
	"github.com/neetrino-com/neetrino-academy-sub005/internal/models"
	"github.com/neetrino-com/neetrino-academy-sub005/internal/service"
	appErrors "github.com/neetrino-com/neetrino-academy-sub005/pkg/errors"
	"github.com/neetrino-com/neetrino-academy-sub005/pkg/response"
)

// NotificationHandler exposes per-user notifications.
type NotificationHandler struct {
	service *service.NotificationService
}

// NewNotificationHandler creates a new handler.
func NewNotificationHandler(svc *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: svc}
}

// List godoc
// @Summary List my notifications
// @Tags Notifications
// @Produce json
// @Param page query int false "Page"
// @Success 200 {object} response.Envelope
// @Router /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	page := intQuery(c, "page", 1)
	pageSize := intQuery(c, "page_size", 20)
	notifications, total, err := h.service.List(c.Request.Context(), claims.UserID, page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}

	unread, err := h.service.CountUnread(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, notifications, &models.Pagination{
		Page:       page,
		PageSize:   pageSize,
		TotalCount: total,
	}, map[string]interface{}{"unread": unread})
}

// MarkRead godoc
// @Summary Mark a notification as read
// @Tags Notifications
// @Produce json
// @Param id path string true "Notification id"
// @Success 204 {object} response.Envelope
// @Router /notifications/{id}/read [post]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.MarkRead(c.Request.Context(), c.Param("id"), claims.UserID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Broadcast godoc
// @Summary Broadcast a notification to a group
// @Tags Notifications
// @Accept json
// @Produce json
// @Param payload body dto.BroadcastNotificationRequest true "Broadcast payload"
// @Success 202 {object} response.Envelope
// @Router /notifications/broadcast [post]
func (h *NotificationHandler) Broadcast(c *gin.Context) {
	var req dto.BroadcastNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid broadcast payload"))
		return
	}

	if err := h.service.Broadcast(req); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, gin.H{"status": "queued"}, nil)
}
