package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hostdesk/livechat-service/internal/api/dto"
	"github.com/hostdesk/livechat-service/internal/api/middleware"
	domainerrors "github.com/hostdesk/livechat-service/internal/domain/errors"
	"github.com/hostdesk/livechat-service/internal/services/completion"
	"github.com/hostdesk/livechat-service/internal/services/responder"
	"github.com/hostdesk/livechat-service/internal/services/settings"
)

// validateTimeout bounds a key validation round trip.
const validateTimeout = 10 * time.Second

// AIAgentHandler handles the completion backend admin endpoints.
type AIAgentHandler struct {
	completer completion.Completer
	settings  settings.Service
	resolver  responder.Resolver
}

// NewAIAgentHandler creates a new AIAgentHandler. A nil completer makes
// validation report the backend as unavailable.
func NewAIAgentHandler(completer completion.Completer, settingsService settings.Service, resolver responder.Resolver) *AIAgentHandler {
	return &AIAgentHandler{
		completer: completer,
		settings:  settingsService,
		resolver:  resolver,
	}
}

// ValidateKey handles POST /admin/ai-agent/validate
// @Summary Validate a completion API key
// @Description Checks the submitted key, or the stored one when none is submitted, against the completion backend
// @Tags Admin
// @Accept json
// @Produce json
// @Param request body dto.ValidateKeyRequest false "Key to validate"
// @Success 200 {object} dto.ValidateKeyResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/livechat/admin/ai-agent/validate [post]
func (h *AIAgentHandler) ValidateKey(c *gin.Context) {
	var req dto.ValidateKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		middleware.HandleError(c, domainerrors.NewValidationError("invalid request body", err.Error()))
		return
	}

	apiKey := strings.TrimSpace(req.APIKey)
	if apiKey == "" {
		apiKey = h.settings.APIKey()
	}
	if apiKey == "" {
		middleware.HandleError(c, domainerrors.NewValidationError(completion.ErrMissingAPIKey.Error(), ""))
		return
	}
	if h.completer == nil {
		middleware.HandleError(c, domainerrors.NewServiceUnavailableError("completion backend", nil))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), validateTimeout)
	defer cancel()

	result, err := h.completer.Validate(ctx, apiKey)
	if err != nil {
		logger := middleware.GetRequestLogger(c)
		logger.Warn().Err(err).Msg("API key validation failed")
		middleware.HandleError(c, domainerrors.NewServiceUnavailableError("completion backend", err))
		return
	}

	c.JSON(http.StatusOK, dto.ValidateKeyResponse{
		Valid:   result.Valid,
		Message: result.Message,
	})
}

// ListErrors handles GET /admin/ai-agent/errors
// @Summary List completion failures
// @Description Returns the most recent remote completion failures, newest first
// @Tags Admin
// @Produce json
// @Success 200 {object} dto.CompletionErrorsResponse
// @Failure 401 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/livechat/admin/ai-agent/errors [get]
func (h *AIAgentHandler) ListErrors(c *gin.Context) {
	entries := h.resolver.Errors()

	out := make([]dto.CompletionErrorResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.CompletionErrorResponse{
			Timestamp: e.Timestamp,
			ChatID:    e.ChatID,
			Message:   e.Message,
			Error:     e.Error,
		})
	}

	c.JSON(http.StatusOK, dto.CompletionErrorsResponse{
		Errors: out,
		Total:  len(out),
	})
}
