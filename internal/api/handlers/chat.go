package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hostdesk/livechat-service/internal/api/dto"
	"github.com/hostdesk/livechat-service/internal/api/middleware"
	"github.com/hostdesk/livechat-service/internal/api/sse"
	domainerrors "github.com/hostdesk/livechat-service/internal/domain/errors"
	"github.com/hostdesk/livechat-service/internal/domain/models"
	"github.com/hostdesk/livechat-service/internal/pkg/observability"
	"github.com/hostdesk/livechat-service/internal/services/chat"
)

// DefaultKeepAlive is the interval between SSE keep-alive comments.
const DefaultKeepAlive = 15 * time.Second

// ChatHandler handles the widget-facing chat endpoints.
type ChatHandler struct {
	registry  *chat.Registry
	keepAlive time.Duration
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(registry *chat.Registry, keepAlive time.Duration) *ChatHandler {
	if keepAlive <= 0 {
		keepAlive = DefaultKeepAlive
	}
	return &ChatHandler{
		registry:  registry,
		keepAlive: keepAlive,
	}
}

// SubmitMessage handles POST /widgets/{widgetId}/messages
// @Summary Send a chat message
// @Description Appends a visitor message. The first message starts a session; agent replies arrive on the event stream.
// @Tags Chat
// @Accept json
// @Produce json
// @Param widgetId path string true "Widget instance ID"
// @Param request body dto.SubmitMessageRequest true "Message"
// @Success 202 {object} dto.SubmitMessageResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 429 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /api/v1/livechat/widgets/{widgetId}/messages [post]
func (h *ChatHandler) SubmitMessage(c *gin.Context) {
	var req dto.SubmitMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleError(c, domainerrors.NewValidationError("invalid request body", err.Error()))
		return
	}

	ctrl, msg, err := h.registry.Submit(c.Param("widgetId"), req.Content, req.UserName)
	if err != nil {
		chatID := ""
		if ctrl != nil {
			chatID = ctrl.Snapshot().ChatID
		}
		middleware.HandleError(c, chatError(err, chatID))
		return
	}

	session := ctrl.Snapshot()
	c.JSON(http.StatusAccepted, dto.SubmitMessageResponse{
		ChatID:  session.ChatID,
		Status:  session.Status,
		Message: msg,
	})
}

// GetSession handles GET /widgets/{widgetId}/session
// @Summary Get the chat session
// @Description Returns the current session of a widget instance, or an idle one
// @Tags Chat
// @Produce json
// @Param widgetId path string true "Widget instance ID"
// @Success 200 {object} dto.SessionResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/livechat/widgets/{widgetId}/session [get]
func (h *ChatHandler) GetSession(c *gin.Context) {
	widgetID := c.Param("widgetId")
	if !chat.ValidWidgetID(widgetID) {
		middleware.HandleError(c, chatError(chat.ErrInvalidWidgetID, ""))
		return
	}

	c.JSON(http.StatusOK, h.sessionResponse(widgetID))
}

// CloseChat handles POST /widgets/{widgetId}/close
// @Summary Close the chat
// @Description Ends the conversation; a connected session is archived as closed by the user
// @Tags Chat
// @Produce json
// @Param widgetId path string true "Widget instance ID"
// @Success 200 {object} dto.CloseChatResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/livechat/widgets/{widgetId}/close [post]
func (h *ChatHandler) CloseChat(c *gin.Context) {
	widgetID := c.Param("widgetId")
	if !chat.ValidWidgetID(widgetID) {
		middleware.HandleError(c, chatError(chat.ErrInvalidWidgetID, ""))
		return
	}

	ctrl, ok := h.registry.Lookup(widgetID)
	if !ok {
		c.JSON(http.StatusOK, dto.CloseChatResponse{})
		return
	}

	archived, err := ctrl.Close(c.Request.Context())
	if err != nil {
		middleware.HandleError(c, domainerrors.NewInternalError("failed to archive chat", err))
		return
	}

	c.JSON(http.StatusOK, dto.CloseChatResponse{Archived: archived})
}

// ResetChat handles POST /widgets/{widgetId}/reset
// @Summary Reset the chat
// @Description Discards the current session without archiving it
// @Tags Chat
// @Produce json
// @Param widgetId path string true "Widget instance ID"
// @Success 200 {object} dto.SessionResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/livechat/widgets/{widgetId}/reset [post]
func (h *ChatHandler) ResetChat(c *gin.Context) {
	widgetID := c.Param("widgetId")
	if !chat.ValidWidgetID(widgetID) {
		middleware.HandleError(c, chatError(chat.ErrInvalidWidgetID, ""))
		return
	}

	if ctrl, ok := h.registry.Lookup(widgetID); ok {
		ctrl.Reset()
	}

	c.JSON(http.StatusOK, h.sessionResponse(widgetID))
}

// StreamEvents handles GET /widgets/{widgetId}/events
// @Summary Stream chat events
// @Description Server-Sent Events with messages, status changes, typing and session updates. The first event is a session snapshot.
// @Tags Chat
// @Produce text/event-stream
// @Param widgetId path string true "Widget instance ID"
// @Success 200 {string} string "SSE stream"
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/livechat/widgets/{widgetId}/events [get]
func (h *ChatHandler) StreamEvents(c *gin.Context) {
	ctrl, events, unsubscribe, err := h.registry.Subscribe(c.Param("widgetId"))
	if err != nil {
		middleware.HandleError(c, chatError(err, ""))
		return
	}
	defer unsubscribe()

	writer, err := sse.NewWriter(c.Writer)
	if err != nil {
		middleware.HandleError(c, domainerrors.NewInternalError("streaming not supported", err))
		return
	}
	observability.SubscriberConnected()
	defer observability.SubscriberDisconnected()

	logger := middleware.GetRequestLogger(c)
	var seq int64
	write := func(event string, data interface{}) bool {
		seq++
		if err := writer.WriteJSONWithID(event, strconv.FormatInt(seq, 10), data); err != nil {
			logger.Debug().Err(err).Msg("event stream closed")
			return false
		}
		return true
	}

	if !write(string(chat.EventSession), h.sessionResponse(ctrl.WidgetID())) {
		return
	}

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			if !write(string(e.Type), e) {
				return
			}
		case <-ticker.C:
			if err := writer.WriteComment("keep-alive"); err != nil {
				return
			}
		}
	}
}

func (h *ChatHandler) sessionResponse(widgetID string) dto.SessionResponse {
	ctrl, ok := h.registry.Lookup(widgetID)
	if !ok {
		return dto.SessionResponse{
			WidgetID: widgetID,
			Session:  models.ChatSession{Status: models.SessionIdle, Messages: []models.Message{}},
		}
	}
	return dto.SessionResponse{
		WidgetID: widgetID,
		Typing:   ctrl.Typing(),
		Session:  ctrl.Snapshot(),
	}
}

// chatError maps engine errors to domain errors.
func chatError(err error, chatID string) error {
	switch {
	case errors.Is(err, chat.ErrEmptyMessage), errors.Is(err, chat.ErrMessageTooLong):
		return domainerrors.NewValidationError("invalid message", err.Error())
	case errors.Is(err, chat.ErrInvalidWidgetID):
		return domainerrors.NewValidationError("invalid widget id", err.Error())
	case errors.Is(err, chat.ErrSessionEnded):
		return domainerrors.NewSessionEndedError(chatID)
	case errors.Is(err, chat.ErrChatDisabled):
		return domainerrors.NewChatDisabledError()
	case errors.Is(err, chat.ErrTooManyWidgets):
		return domainerrors.NewServiceUnavailableError("live chat", err)
	default:
		return domainerrors.NewInternalError("chat operation failed", err)
	}
}
