package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hostdesk/livechat-service/internal/api/dto"
	"github.com/hostdesk/livechat-service/internal/api/middleware"
	domainerrors "github.com/hostdesk/livechat-service/internal/domain/errors"
	"github.com/hostdesk/livechat-service/internal/services/settings"
)

// SettingsHandler handles the chat settings endpoints.
type SettingsHandler struct {
	settings settings.Service
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(settingsService settings.Service) *SettingsHandler {
	return &SettingsHandler{
		settings: settingsService,
	}
}

// GetPublicSettings handles GET /settings/public
// @Summary Get widget settings
// @Description Returns the chat timings and whether a completion key is configured
// @Tags Settings
// @Produce json
// @Success 200 {object} dto.SettingsResponse
// @Router /api/v1/livechat/settings/public [get]
func (h *SettingsHandler) GetPublicSettings(c *gin.Context) {
	public := h.settings.Public()
	c.JSON(http.StatusOK, dto.SettingsResponse{
		Settings:          public.Settings,
		AIAgentConfigured: public.AIAgentConfigured,
	})
}

// GetSettings handles GET /admin/settings
// @Summary Get chat settings
// @Description Returns the chat settings. The API key is never returned.
// @Tags Admin
// @Produce json
// @Success 200 {object} dto.SettingsResponse
// @Failure 401 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/livechat/admin/settings [get]
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, dto.SettingsResponse{
		Settings:          h.settings.Get(),
		AIAgentConfigured: h.settings.HasAPIKey(),
	})
}

// UpdateSettings handles PUT /admin/settings
// @Summary Update chat settings
// @Description Applies a partial settings change. New timings apply to timers scheduled afterwards.
// @Tags Admin
// @Accept json
// @Produce json
// @Param request body dto.UpdateSettingsRequest true "Settings change"
// @Success 200 {object} dto.SettingsResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/livechat/admin/settings [put]
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	var req dto.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleError(c, domainerrors.NewValidationError("invalid request body", err.Error()))
		return
	}

	updated, err := h.settings.Update(c.Request.Context(), &settings.Update{
		ChatEnabled:      req.ChatEnabled,
		QueueAssignTime:  req.QueueAssignTime,
		TypingStartDelay: req.TypingStartDelay,
		ReplyTimePerWord: req.ReplyTimePerWord,
		FollowUpTimeout:  req.FollowUpTimeout,
		EndChatTimeout:   req.EndChatTimeout,
		APIKey:           req.APIKey,
	})
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SettingsResponse{
		Settings:          updated,
		AIAgentConfigured: h.settings.HasAPIKey(),
	})
}
