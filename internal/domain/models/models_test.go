package models_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostdesk/livechat-service/internal/domain/models"
)

func TestMessageStatus_Next(t *testing.T) {
	next, ok := models.StatusSent.Next()
	require.True(t, ok)
	assert.Equal(t, models.StatusDelivered, next)

	next, ok = models.StatusDelivered.Next()
	require.True(t, ok)
	assert.Equal(t, models.StatusRead, next)

	_, ok = models.StatusRead.Next()
	assert.False(t, ok)

	_, ok = models.MessageStatus("").Next()
	assert.False(t, ok)
}

func TestMessageKind_HasStatus(t *testing.T) {
	assert.True(t, models.KindUser.HasStatus())
	assert.True(t, models.KindAgent.HasStatus())
	assert.False(t, models.KindSystem.HasStatus())
}

func TestChatSession_CloneIsIndependent(t *testing.T) {
	ended := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	session := &models.ChatSession{
		ChatID:  "CHAT-1",
		Status:  models.SessionConnected,
		EndedAt: &ended,
		Messages: []models.Message{
			{ID: 1, Kind: models.KindUser, Content: "hi", Status: models.StatusSent},
		},
	}

	clone := session.Clone()
	clone.Messages[0].Status = models.StatusRead
	*clone.EndedAt = ended.Add(time.Hour)

	assert.Equal(t, models.StatusSent, session.Messages[0].Status)
	assert.Equal(t, ended, *session.EndedAt)
}

func TestChatSession_CloneNil(t *testing.T) {
	var session *models.ChatSession
	assert.Nil(t, session.Clone())
}

func TestSettings_Validate(t *testing.T) {
	s := models.DefaultSettings()
	assert.NoError(t, s.Validate())

	s.FollowUpTimeout = -1
	err := s.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "followUpTimeout")

	s = models.DefaultSettings()
	s.QueueAssignTime = models.MaxTimingMillis + 1
	assert.Error(t, s.Validate())
}

func TestSettings_Durations(t *testing.T) {
	s := models.DefaultSettings()
	assert.Equal(t, 3*time.Second, s.QueueAssign())
	assert.Equal(t, time.Second, s.TypingStart())
	assert.Equal(t, 150*time.Millisecond, s.ReplyPerWord())
	assert.Equal(t, time.Minute, s.FollowUp())
	assert.Equal(t, 30*time.Second, s.EndChat())
}

func TestNewArchivedSession_UsesEndedAtOrNow(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	agent := &models.AgentProfile{ID: "a1", Name: "Sarah"}
	session := &models.ChatSession{
		ChatID:   "CHAT-9",
		Agent:    agent,
		Messages: []models.Message{{ID: 1, Kind: models.KindUser, Content: "hello"}},
	}

	archived := models.NewArchivedSession(session, models.ArchiveClosedByUser, now)
	assert.Equal(t, now, archived.EndedAt)
	assert.Equal(t, now, archived.ArchivedAt)
	assert.Equal(t, models.ArchiveClosedByUser, archived.Status)

	session.Messages[0].Content = "changed"
	assert.Equal(t, "hello", archived.Messages[0].Content)
	assert.NotSame(t, agent, archived.Agent)
}

func TestArchivedSession_Matches(t *testing.T) {
	archived := models.ArchivedSession{
		ChatID: "CHAT-ABC123",
		Agent:  &models.AgentProfile{Name: "Sarah", LocalizedName: "Sára"},
		Messages: []models.Message{
			{Content: "How much is the business plan?"},
		},
	}

	assert.True(t, archived.Matches(""))
	assert.True(t, archived.Matches("abc1"))
	assert.True(t, archived.Matches("sarah"))
	assert.True(t, archived.Matches("sára"))
	assert.True(t, archived.Matches("BUSINESS"))
	assert.False(t, archived.Matches("refund"))
}

func TestArchiveStatus_IsValid(t *testing.T) {
	assert.True(t, models.ArchiveCompleted.IsValid())
	assert.True(t, models.ArchiveClosedByUser.IsValid())
	assert.False(t, models.ArchiveStatus("open").IsValid())
}
