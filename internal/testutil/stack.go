package testutil

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hostdesk/livechat-service/internal/domain/models"
	"github.com/hostdesk/livechat-service/internal/pkg/clock"
	"github.com/hostdesk/livechat-service/internal/services/agents"
	"github.com/hostdesk/livechat-service/internal/services/archive"
	"github.com/hostdesk/livechat-service/internal/services/chat"
	"github.com/hostdesk/livechat-service/internal/services/completion"
	"github.com/hostdesk/livechat-service/internal/services/responder"
	"github.com/hostdesk/livechat-service/internal/services/settings"
)

// Start is the manual clock origin used by Stack.
var Start = time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

// StackOptions tunes NewStack.
type StackOptions struct {
	Completer completion.Completer
	APIKey    string
	Settings  *models.Settings
}

// Stack is an in-memory chat engine driven by a manual clock with
// synchronous dispatch.
type Stack struct {
	Clock    *clock.Manual
	Settings settings.Service
	Archive  archive.Service
	Resolver responder.Resolver
	Registry *chat.Registry
}

// NewStack wires the settings, archive, responder and chat services over
// memory repositories.
func NewStack(t *testing.T, opts StackOptions) *Stack {
	t.Helper()

	defaults := models.DefaultSettings()
	if opts.Settings != nil {
		defaults = *opts.Settings
	}

	clk := clock.NewManual(Start)
	settingsSvc, err := settings.NewService(&settings.Config{
		Repository:    settings.NewMemoryRepository(),
		Defaults:      defaults,
		DefaultAPIKey: opts.APIKey,
	})
	require.NoError(t, err)

	archiveSvc, err := archive.NewService(&archive.Config{
		Repository: archive.NewMemoryRepository(),
		Clock:      clk,
	})
	require.NoError(t, err)

	resolver, err := responder.NewResolver(&responder.Config{
		Completer: opts.Completer,
		Keys:      settingsSvc,
		Rand:      rand.New(rand.NewSource(7)),
		Clock:     clk,
	})
	require.NoError(t, err)

	registry, err := chat.NewRegistry(&chat.RegistryConfig{
		Controller: chat.Config{
			Settings:         settingsSvc,
			Agents:           agents.DefaultPool(),
			Resolver:         resolver,
			Archiver:         archiveSvc,
			Clock:            clk,
			Rand:             rand.New(rand.NewSource(1)),
			Dispatch:         func(f func()) { f() },
			SubscriberBuffer: 1024,
		},
	})
	require.NoError(t, err)
	t.Cleanup(registry.Shutdown)

	return &Stack{
		Clock:    clk,
		Settings: settingsSvc,
		Archive:  archiveSvc,
		Resolver: resolver,
		Registry: registry,
	}
}

// Connect starts a session on widgetID and runs the clock until the agent
// is assigned and has answered.
func (s *Stack) Connect(t *testing.T, widgetID string) *chat.Controller {
	t.Helper()

	ctrl, _, err := s.Registry.Submit(widgetID, "hi", "Jana")
	require.NoError(t, err)

	s.Clock.Advance(20 * time.Second)
	require.Equal(t, models.SessionConnected, ctrl.Snapshot().Status)
	return ctrl
}
