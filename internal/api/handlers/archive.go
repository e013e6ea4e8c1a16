package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hostdesk/livechat-service/internal/api/dto"
	"github.com/hostdesk/livechat-service/internal/api/middleware"
	domainerrors "github.com/hostdesk/livechat-service/internal/domain/errors"
	"github.com/hostdesk/livechat-service/internal/domain/models"
	"github.com/hostdesk/livechat-service/internal/services/archive"
)

// ArchiveHandler handles the chat history admin endpoints.
type ArchiveHandler struct {
	archive archive.Service
}

// NewArchiveHandler creates a new ArchiveHandler.
func NewArchiveHandler(archiveService archive.Service) *ArchiveHandler {
	return &ArchiveHandler{
		archive: archiveService,
	}
}

// ListChats handles GET /admin/chats
// @Summary Search archived chats
// @Description Lists archived chats, newest first, filtered by a substring of chat id, agent name or message content and by status
// @Tags Admin
// @Produce json
// @Param q query string false "Search text"
// @Param status query string false "Archive status" Enums(completed, closed_by_user)
// @Success 200 {object} dto.ListChatsResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/livechat/admin/chats [get]
func (h *ArchiveHandler) ListChats(c *gin.Context) {
	var query dto.ListChatsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		middleware.HandleError(c, domainerrors.NewValidationError("invalid query parameters", err.Error()))
		return
	}

	chats := h.archive.List(archive.Filter{
		Query:  query.Query,
		Status: models.ArchiveStatus(query.Status),
	})
	if chats == nil {
		chats = []models.ArchivedSession{}
	}

	c.JSON(http.StatusOK, dto.ListChatsResponse{
		Chats: chats,
		Total: len(chats),
	})
}

// GetChat handles GET /admin/chats/{chatId}
// @Summary Get an archived chat
// @Tags Admin
// @Produce json
// @Param chatId path string true "Chat ID"
// @Success 200 {object} models.ArchivedSession
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/livechat/admin/chats/{chatId} [get]
func (h *ArchiveHandler) GetChat(c *gin.Context) {
	session, err := h.archive.Get(c.Param("chatId"))
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// DeleteChat handles DELETE /admin/chats/{chatId}
// @Summary Delete an archived chat
// @Tags Admin
// @Param chatId path string true "Chat ID"
// @Success 204 "Deleted"
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/livechat/admin/chats/{chatId} [delete]
func (h *ArchiveHandler) DeleteChat(c *gin.Context) {
	if err := h.archive.Delete(c.Request.Context(), c.Param("chatId")); err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// DeleteAllChats handles DELETE /admin/chats
// @Summary Delete all archived chats
// @Tags Admin
// @Produce json
// @Success 200 {object} dto.DeleteChatsResponse
// @Failure 401 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/livechat/admin/chats [delete]
func (h *ArchiveHandler) DeleteAllChats(c *gin.Context) {
	deleted := h.archive.DeleteAll(c.Request.Context())
	c.JSON(http.StatusOK, dto.DeleteChatsResponse{Deleted: deleted})
}

// ExportChats handles GET /admin/chats/export
// @Summary Export the chat archive
// @Description Downloads every archived chat as a JSON file
// @Tags Admin
// @Produce json
// @Success 200 {array} models.ArchivedSession
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/livechat/admin/chats/export [get]
func (h *ArchiveHandler) ExportChats(c *gin.Context) {
	data, err := h.archive.Export()
	if err != nil {
		middleware.HandleError(c, domainerrors.NewInternalError("failed to export chats", err))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", h.archive.ExportFilename()))
	c.Data(http.StatusOK, "application/json", data)
}
