package chat_test

import (
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostdesk/livechat-service/internal/domain/models"
	"github.com/hostdesk/livechat-service/internal/pkg/clock"
	"github.com/hostdesk/livechat-service/internal/services/agents"
	"github.com/hostdesk/livechat-service/internal/services/archive"
	"github.com/hostdesk/livechat-service/internal/services/chat"
	"github.com/hostdesk/livechat-service/internal/services/responder"
	"github.com/hostdesk/livechat-service/internal/services/settings"
)

func newRegistry(t *testing.T, maxWidgets int) (*chat.Registry, *clock.Manual) {
	t.Helper()

	clk := clock.NewManual(start)
	settingsSvc, err := settings.NewService(&settings.Config{
		Repository: settings.NewMemoryRepository(),
		Defaults:   models.DefaultSettings(),
	})
	require.NoError(t, err)
	archiveSvc, err := archive.NewService(&archive.Config{Repository: archive.NewMemoryRepository(), Clock: clk})
	require.NoError(t, err)
	resolver, err := responder.NewResolver(&responder.Config{Keys: settingsSvc, Clock: clk})
	require.NoError(t, err)

	registry, err := chat.NewRegistry(&chat.RegistryConfig{
		Controller: chat.Config{
			Settings: settingsSvc,
			Agents:   agents.DefaultPool(),
			Resolver: resolver,
			Archiver: archiveSvc,
			Clock:    clk,
			Rand:     rand.New(rand.NewSource(3)),
			Dispatch: func(f func()) { f() },
		},
		MaxWidgets: maxWidgets,
	})
	require.NoError(t, err)
	return registry, clk
}

func TestNewRegistry_Validation(t *testing.T) {
	_, err := chat.NewRegistry(nil)
	assert.EqualError(t, err, "config is required")

	_, err = chat.NewRegistry(&chat.RegistryConfig{})
	assert.Error(t, err)
}

func TestRegistry_GetCreatesOncePerWidget(t *testing.T) {
	registry, _ := newRegistry(t, 0)

	first, err := registry.Get("site-a")
	require.NoError(t, err)
	again, err := registry.Get("site-a")
	require.NoError(t, err)
	other, err := registry.Get("site-b")
	require.NoError(t, err)

	assert.Same(t, first, again)
	assert.NotSame(t, first, other)
	assert.Equal(t, "site-a", first.WidgetID())
	assert.Equal(t, 2, registry.Len())
}

func TestRegistry_WidgetsAreIsolated(t *testing.T) {
	registry, clk := newRegistry(t, 0)
	a, err := registry.Get("site-a")
	require.NoError(t, err)
	b, err := registry.Get("site-b")
	require.NoError(t, err)

	_, err = a.Submit("hi", "")
	require.NoError(t, err)
	clk.Advance(5 * time.Second)
	b.Reset()

	assert.Equal(t, models.SessionConnected, a.Snapshot().Status)
	assert.Equal(t, models.SessionIdle, b.Snapshot().Status)
}

func TestRegistry_Lookup(t *testing.T) {
	registry, _ := newRegistry(t, 0)

	_, ok := registry.Lookup("site-a")
	assert.False(t, ok)
	assert.Equal(t, 0, registry.Len())

	created, err := registry.Get("site-a")
	require.NoError(t, err)
	found, ok := registry.Lookup("site-a")
	require.True(t, ok)
	assert.Same(t, created, found)
}

func TestRegistry_RejectsInvalidIDs(t *testing.T) {
	registry, _ := newRegistry(t, 0)

	for _, id := range []string{"", "has space", "slash/id", strings.Repeat("x", 65)} {
		_, err := registry.Get(id)
		assert.ErrorIs(t, err, chat.ErrInvalidWidgetID, id)
	}
	assert.Equal(t, 0, registry.Len())
}

func TestRegistry_MaxWidgets(t *testing.T) {
	registry, _ := newRegistry(t, 1)

	_, _, err := registry.Submit("site-a", "hi", "")
	require.NoError(t, err)
	_, err = registry.Get("site-b")

	assert.ErrorIs(t, err, chat.ErrTooManyWidgets)
	assert.Equal(t, 1, registry.Len())
}

func TestRegistry_ReleasesIdleWidgetsWhenFull(t *testing.T) {
	// Arrange
	registry, clk := newRegistry(t, 2)
	a, _, err := registry.Submit("site-a", "hi", "")
	require.NoError(t, err)
	b, _, err := registry.Submit("site-b", "hi", "")
	require.NoError(t, err)
	clk.Advance(5 * time.Second)
	a.Reset()
	b.Reset()

	// Act
	fresh, err := registry.Get("fresh-visitor")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "fresh-visitor", fresh.WidgetID())
	assert.Equal(t, 1, registry.Len())
	_, ok := registry.Lookup("site-a")
	assert.False(t, ok)
}

func TestRegistry_KeepsBusyWidgetsWhenFull(t *testing.T) {
	registry, _ := newRegistry(t, 2)
	busy, _, err := registry.Submit("site-a", "hi", "")
	require.NoError(t, err)
	_, err = registry.Get("site-b")
	require.NoError(t, err)

	_, err = registry.Get("site-c")
	require.NoError(t, err)

	found, ok := registry.Lookup("site-a")
	require.True(t, ok)
	assert.Same(t, busy, found)
	_, ok = registry.Lookup("site-b")
	assert.False(t, ok)
	assert.Equal(t, 2, registry.Len())
}

func TestRegistry_OpenStreamKeepsWidget(t *testing.T) {
	// Arrange
	registry, _ := newRegistry(t, 1)
	_, _, unsubscribe, err := registry.Subscribe("site-a")
	require.NoError(t, err)

	// Act & Assert
	_, err = registry.Get("site-b")
	assert.ErrorIs(t, err, chat.ErrTooManyWidgets)

	unsubscribe()
	_, err = registry.Get("site-b")
	assert.NoError(t, err)
}

func TestRegistry_ReleasedControllerRejectsWork(t *testing.T) {
	// Arrange
	registry, _ := newRegistry(t, 1)
	released, err := registry.Get("site-a")
	require.NoError(t, err)
	_, err = registry.Get("site-b")
	require.NoError(t, err)

	// Act
	_, err = released.Submit("hi", "")

	// Assert
	assert.ErrorIs(t, err, chat.ErrRetired)

	ctrl, msg, err := registry.Submit("site-a", "hi", "")
	require.NoError(t, err)
	assert.NotSame(t, released, ctrl)
	assert.Equal(t, "hi", msg.Content)
	assert.Equal(t, models.SessionQueued, ctrl.Snapshot().Status)
}

func TestRegistry_ShutdownResetsSessions(t *testing.T) {
	registry, clk := newRegistry(t, 0)
	c, err := registry.Get("site-a")
	require.NoError(t, err)
	_, err = c.Submit("hi", "")
	require.NoError(t, err)

	registry.Shutdown()
	clk.Advance(time.Hour)

	assert.Equal(t, models.SessionIdle, c.Snapshot().Status)
	assert.Equal(t, 0, clk.Pending())
}

func TestValidWidgetID(t *testing.T) {
	assert.True(t, chat.ValidWidgetID("hostdesk.main-widget_01"))
	assert.False(t, chat.ValidWidgetID("ünïcode"))
}
