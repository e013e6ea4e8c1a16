package testutil

import (
	"time"

	"github.com/hostdesk/livechat-service/internal/domain/models"
)

// Test constants
const (
	TestWidgetID   = "widget-test-1"
	TestChatID     = "CHAT-TEST0001"
	TestAdminToken = "admin-test-token"
)

// NewTestArchivedSession creates an archived session with a short transcript.
func NewTestArchivedSession(chatID string, status models.ArchiveStatus) models.ArchivedSession {
	at := time.Date(2026, 4, 1, 9, 5, 0, 0, time.UTC)
	return models.ArchivedSession{
		ChatID:    chatID,
		Agent:     &models.AgentProfile{ID: "sarah", Name: "Sarah"},
		StartedAt: at.Add(-5 * time.Minute),
		EndedAt:   at,
		Status:    status,
		Messages: []models.Message{
			{ID: 1, Kind: models.KindUser, Content: "How much is the business plan?", Timestamp: at.Add(-5 * time.Minute), Status: models.StatusRead},
			{ID: 2, Kind: models.KindAgent, Content: "The business plan starts at 9.99 per month.", Timestamp: at.Add(-4 * time.Minute), Status: models.StatusRead},
		},
		ArchivedAt: at,
	}
}
