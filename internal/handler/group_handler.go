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

// GroupHandler exposes group management and chat.
type GroupHandler struct {
	groups *service.GroupService
	chat   *service.ChatService
}

// NewGroupHandler creates a new handler.
func NewGroupHandler(groups *service.GroupService, chat *service.ChatService) *GroupHandler {
	return &GroupHandler{groups: groups, chat: chat}
}

// List godoc
// @Summary List groups
// @Tags Groups
// @Produce json
// @Param course_id query string false "Filter by course"
// @Param teacher_id query string false "Filter by teacher"
// @Success 200 {object} response.Envelope
// @Router /groups [get]
func (h *GroupHandler) List(c *gin.Context) {
	filter := models.GroupFilter{
		CourseID:  c.Query("course_id"),
		TeacherID: c.Query("teacher_id"),
		Page:      intQuery(c, "page", 1),
		PageSize:  intQuery(c, "page_size", 20),
	}

	groups, total, err := h.groups.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, groups, &models.Pagination{
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalCount: total,
	})
}

// Get godoc
// @Summary Get group
// @Tags Groups
// @Produce json
// @Param id path string true "Group id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /groups/{id} [get]
func (h *GroupHandler) Get(c *gin.Context) {
	group, err := h.groups.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, group, nil)
}

// Create godoc
// @Summary Create group
// @Tags Groups
// @Accept json
// @Produce json
// @Param payload body dto.CreateGroupRequest true "Group payload"
// @Success 201 {object} response.Envelope
// @Router /admin/groups [post]
func (h *GroupHandler) Create(c *gin.Context) {
	var req dto.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid group payload"))
		return
	}

	group, err := h.groups.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, group)
}

// Update godoc
// @Summary Update group
// @Tags Groups
// @Accept json
// @Produce json
// @Param id path string true "Group id"
// @Param payload body dto.UpdateGroupRequest true "Group payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/groups/{id} [put]
func (h *GroupHandler) Update(c *gin.Context) {
	var req dto.UpdateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid group payload"))
		return
	}

	group, err := h.groups.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, group, nil)
}

// Delete godoc
// @Summary Deactivate group
// @Description Deactivates the group; its events and history stay in place
// @Tags Groups
// @Produce json
// @Param id path string true "Group id"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/groups/{id} [delete]
func (h *GroupHandler) Delete(c *gin.Context) {
	if err := h.groups.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// AddMember godoc
// @Summary Enroll a student into a group
// @Tags Groups
// @Accept json
// @Produce json
// @Param id path string true "Group id"
// @Param payload body dto.AddGroupMemberRequest true "Member payload"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/groups/{id}/members [post]
func (h *GroupHandler) AddMember(c *gin.Context) {
	var req dto.AddGroupMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid member payload"))
		return
	}

	if err := h.groups.AddMember(c.Request.Context(), c.Param("id"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// RemoveMember godoc
// @Summary Remove a student from a group
// @Tags Groups
// @Produce json
// @Param id path string true "Group id"
// @Param userId path string true "User id"
// @Success 204 {object} response.Envelope
// @Router /admin/groups/{id}/members/{userId} [delete]
func (h *GroupHandler) RemoveMember(c *gin.Context) {
	if err := h.groups.RemoveMember(c.Request.Context(), c.Param("id"), c.Param("userId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListMembers godoc
// @Summary List group members
// @Tags Groups
// @Produce json
// @Param id path string true "Group id"
// @Success 200 {object} response.Envelope
// @Router /groups/{id}/members [get]
func (h *GroupHandler) ListMembers(c *gin.Context) {
	ids, err := h.groups.ListMembers(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ids, nil)
}

// PostChat godoc
// @Summary Post a chat message
// @Tags Chat
// @Accept json
// @Produce json
// @Param id path string true "Group id"
// @Param payload body dto.PostChatMessageRequest true "Message payload"
// @Success 201 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /groups/{id}/chat [post]
func (h *GroupHandler) PostChat(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.PostChatMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid message payload"))
		return
	}

	message, err := h.chat.Post(c.Request.Context(), c.Param("id"), claims.UserID, claims.Role, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, message)
}

// ListChat godoc
// @Summary List chat messages
// @Tags Chat
// @Produce json
// @Param id path string true "Group id"
// @Param page query int false "Page"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /groups/{id}/chat [get]
func (h *GroupHandler) ListChat(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	page := intQuery(c, "page", 1)
	pageSize := intQuery(c, "page_size", 50)
	messages, total, err := h.chat.List(c.Request.Context(), c.Param("id"), claims.UserID, claims.Role, page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, messages, &models.Pagination{
		Page:       page,
		PageSize:   pageSize,
		TotalCount: total,
	})
}
