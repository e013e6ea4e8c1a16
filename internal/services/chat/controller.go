// Package chat implements the live-support conversation engine: one session
// state machine per widget instance, driven by user input and timers.
package chat

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hostdesk/livechat-service/internal/domain/models"
	"github.com/hostdesk/livechat-service/internal/pkg/clock"
	"github.com/hostdesk/livechat-service/internal/pkg/logging"
	"github.com/hostdesk/livechat-service/internal/pkg/observability"
	"github.com/hostdesk/livechat-service/internal/services/agents"
	"github.com/hostdesk/livechat-service/internal/services/responder"
)

var (
	ErrEmptyMessage   = errors.New("message must not be empty")
	ErrMessageTooLong = fmt.Errorf("message must not exceed %d characters", MaxMessageLength)
	ErrSessionEnded   = errors.New("chat session has ended")
	ErrChatDisabled   = errors.New("live chat is disabled")
	ErrRetired        = errors.New("widget instance was released")
)

const (
	// MaxMessageLength is counted in runes.
	MaxMessageLength = 2000
	// GreetingDelay separates the connected notice from the agent greeting.
	GreetingDelay = time.Second
)

// SettingsSource provides the timings in effect.
type SettingsSource interface {
	Get() models.Settings
}

// Archiver stores finished sessions.
type Archiver interface {
	Archive(ctx context.Context, session *models.ChatSession, status models.ArchiveStatus) (models.ArchivedSession, error)
}

// Config holds the configuration for a controller.
type Config struct {
	WidgetID string
	Settings SettingsSource
	Agents   *agents.Pool
	Resolver responder.Resolver
	Archiver Archiver
	Clock    clock.Clock
	// Rand picks agents. Defaults to a time-seeded source.
	Rand *rand.Rand
	// Dispatch runs resolver calls and archiving off the controller lock.
	// Defaults to a new goroutine per task.
	Dispatch func(func())
	// NewChatID defaults to "CHAT-" plus eight uppercase hex characters.
	NewChatID        func() string
	SubscriberBuffer int
}

func (cfg *Config) validate() error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	if cfg.Settings == nil {
		return fmt.Errorf("settings source is required")
	}
	if cfg.Agents == nil {
		return fmt.Errorf("agent pool is required")
	}
	if cfg.Resolver == nil {
		return fmt.Errorf("resolver is required")
	}
	if cfg.Archiver == nil {
		return fmt.Errorf("archiver is required")
	}
	return nil
}

type queuedReply struct {
	text   string
	delay  time.Duration
	typing time.Duration
}

// Controller owns the chat session of one widget instance. All state changes
// happen under mu; resolver calls and archiving run after it is released.
type Controller struct {
	widgetID  string
	settings  SettingsSource
	agents    *agents.Pool
	resolver  responder.Resolver
	archiver  Archiver
	clock     clock.Clock
	dispatch  func(func())
	newChatID func() string
	events    *Broadcaster
	timers    *Timers
	logger    zerolog.Logger

	mu        sync.Mutex
	rand      *rand.Rand
	status    models.SessionStatus
	chatID    string
	startedAt time.Time
	endedAt   *time.Time
	agent     *models.AgentProfile
	userName  string
	store     *MessageStore
	waiting   []models.Message
	replies   []queuedReply
	typing    bool
	inflight  int
	retired   bool
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewController creates an idle controller.
func NewController(cfg *Config) (*Controller, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}
	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	dispatch := cfg.Dispatch
	if dispatch == nil {
		dispatch = func(f func()) { go f() }
	}
	newChatID := cfg.NewChatID
	if newChatID == nil {
		newChatID = NewChatID
	}

	return &Controller{
		widgetID:  cfg.WidgetID,
		settings:  cfg.Settings,
		agents:    cfg.Agents,
		resolver:  cfg.Resolver,
		archiver:  cfg.Archiver,
		clock:     clk,
		dispatch:  dispatch,
		newChatID: newChatID,
		events:    NewBroadcaster(cfg.SubscriberBuffer),
		timers:    NewTimers(clk),
		logger:    logging.Component("chat").With().Str("widget_id", cfg.WidgetID).Logger(),
		rand:      rng,
		status:    models.SessionIdle,
		store:     NewMessageStore(),
	}, nil
}

// NewChatID returns a fresh chat id such as "CHAT-1A2B3C4D".
func NewChatID() string {
	return "CHAT-" + strings.ToUpper(uuid.NewString()[:8])
}

// WidgetID returns the widget instance this controller serves.
func (c *Controller) WidgetID() string {
	return c.widgetID
}

// Subscribe returns a stream of events and its cancel function.
func (c *Controller) Subscribe() (<-chan Event, func()) {
	return c.events.Subscribe()
}

// subscribe is Subscribe for registry-owned controllers. It fails once the
// controller has been retired.
func (c *Controller) subscribe() (<-chan Event, func(), error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.retired {
		return nil, nil, ErrRetired
	}
	events, cancel := c.events.Subscribe()
	return events, cancel, nil
}

// retireIfIdle marks the controller retired when it has no session, no
// subscribers and no pending timers. A retired controller rejects new work.
func (c *Controller) retireIfIdle() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status != models.SessionIdle || c.inflight > 0 {
		return false
	}
	if c.events.Subscribers() > 0 || c.timers.Pending() > 0 {
		return false
	}
	c.retired = true
	return true
}

// Subscribers returns the number of active event subscribers.
func (c *Controller) Subscribers() int {
	return c.events.Subscribers()
}

// Snapshot returns a copy of the current session.
func (c *Controller) Snapshot() models.ChatSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	return *c.snapshotLocked()
}

// Typing reports whether the agent is currently typing.
func (c *Controller) Typing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.typing
}

// PendingTimers returns the number of timers waiting to fire.
func (c *Controller) PendingTimers() int {
	return c.timers.Pending()
}

// Submit appends a user message and advances the session. Blank messages and
// messages to an ended session are rejected without any state change.
func (c *Controller) Submit(content, userName string) (models.Message, error) {
	text := strings.TrimSpace(content)
	if text == "" {
		return models.Message{}, ErrEmptyMessage
	}
	if utf8.RuneCountInString(text) > MaxMessageLength {
		return models.Message{}, ErrMessageTooLong
	}

	c.mu.Lock()
	if c.retired {
		c.mu.Unlock()
		return models.Message{}, ErrRetired
	}
	var (
		msg   models.Message
		tasks []func()
	)
	switch c.status {
	case models.SessionEnded:
		c.mu.Unlock()
		return models.Message{}, ErrSessionEnded

	case models.SessionIdle:
		settings := c.settings.Get()
		if !settings.ChatEnabled {
			c.mu.Unlock()
			return models.Message{}, ErrChatDisabled
		}
		c.startLocked(userName)
		msg = c.appendLocked(models.KindUser, text)
		c.waiting = append(c.waiting, msg)
		c.appendLocked(models.KindSystem, QueuedText)
		c.publishSessionLocked()
		c.scheduleLocked(TimerAssign, settings.QueueAssign(), c.onAssign)

	case models.SessionQueued:
		msg = c.appendLocked(models.KindUser, text)
		c.waiting = append(c.waiting, msg)

	case models.SessionConnected:
		msg = c.appendLocked(models.KindUser, text)
		c.timers.Cancel(TimerEndChat)
		c.scheduleLocked(TimerFollowUp, c.settings.Get().FollowUp(), c.onFollowUp)
		tasks = append(tasks, c.resolveLocked([]models.Message{msg}))
	}
	c.mu.Unlock()

	c.run(tasks)
	return msg, nil
}

// Close ends the conversation at the visitor's request. A connected session
// with messages is archived as closed by the user. The controller is always
// idle afterwards and no pending timer fires.
func (c *Controller) Close(ctx context.Context) (*models.ArchivedSession, error) {
	c.mu.Lock()
	var snapshot *models.ChatSession
	if c.status == models.SessionConnected && c.store.Len() > 0 {
		snapshot = c.snapshotLocked()
	}
	c.resetLocked()
	c.mu.Unlock()

	if snapshot == nil {
		return nil, nil
	}

	c.logger.Info().Str("chat_id", snapshot.ChatID).Msg("Chat closed by user")
	archived, err := c.archive(ctx, snapshot, models.ArchiveClosedByUser)
	if err != nil {
		return nil, err
	}
	return &archived, nil
}

// Reset discards the session without archiving it.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
}

func (c *Controller) startLocked(userName string) {
	c.ctx, c.cancel = context.WithCancel(context.Background())
	c.chatID = c.newChatID()
	c.status = models.SessionQueued
	c.startedAt = c.clock.Now()
	c.endedAt = nil
	c.agent = nil
	c.userName = strings.TrimSpace(userName)

	observability.RecordSessionStarted()
	c.logger.Info().Str("chat_id", c.chatID).Msg("Chat session started")
}

func (c *Controller) resetLocked() {
	prevChatID := c.chatID
	wasIdle := c.status == models.SessionIdle && c.store.Len() == 0

	c.timers.CancelAll()
	if c.cancel != nil {
		c.cancel()
	}
	c.ctx, c.cancel = nil, nil

	c.status = models.SessionIdle
	c.chatID = ""
	c.startedAt = time.Time{}
	c.endedAt = nil
	c.agent = nil
	c.userName = ""
	c.store.Clear()
	c.waiting = nil
	c.replies = nil
	c.typing = false
	c.inflight = 0

	if !wasIdle {
		c.events.Publish(Event{
			Type:      EventReset,
			WidgetID:  c.widgetID,
			ChatID:    prevChatID,
			Status:    models.SessionIdle,
			Timestamp: c.clock.Now(),
		})
	}
}

func (c *Controller) onAssign() []func() {
	if c.status != models.SessionQueued {
		return nil
	}

	agent := c.agents.PickRandom(c.rand)
	c.agent = &agent
	c.status = models.SessionConnected
	c.appendLocked(models.KindSystem, ConnectedText(agent))
	c.publishSessionLocked()
	c.logger.Info().Str("chat_id", c.chatID).Str("agent_id", agent.ID).Msg("Agent assigned")

	c.enqueueReplyLocked(queuedReply{text: GreetingText(agent), delay: GreetingDelay})
	c.scheduleLocked(TimerFollowUp, c.settings.Get().FollowUp(), c.onFollowUp)

	waiting := c.waiting
	c.waiting = nil
	if len(waiting) == 0 {
		return nil
	}
	return []func(){c.resolveLocked(waiting)}
}

func (c *Controller) onFollowUp() []func() {
	if c.status != models.SessionConnected {
		return nil
	}
	if c.replyingLocked() {
		// deliverReplyLocked re-arms the follow-up.
		return nil
	}

	c.appendLocked(models.KindAgent, FollowUpText)
	c.scheduleLocked(TimerEndChat, c.settings.Get().EndChat(), c.onEndChat)
	return nil
}

func (c *Controller) onEndChat() []func() {
	if c.status != models.SessionConnected {
		return nil
	}
	if c.replyingLocked() {
		return nil
	}

	c.appendLocked(models.KindAgent, ClosingText)
	c.appendLocked(models.KindSystem, EndedText)

	now := c.clock.Now()
	c.status = models.SessionEnded
	c.endedAt = &now
	c.timers.Cancel(TimerAssign)
	c.timers.Cancel(TimerTyping)
	c.timers.Cancel(TimerFollowUp)
	if c.cancel != nil {
		c.cancel()
	}
	c.publishSessionLocked()
	c.logger.Info().Str("chat_id", c.chatID).Msg("Chat ended after inactivity")

	snapshot := c.snapshotLocked()
	return []func(){func() {
		_, _ = c.archive(context.Background(), snapshot, models.ArchiveCompleted)
	}}
}

// resolveLocked prepares a task that answers msgs in order. The task drops
// its results once the session generation has moved on.
func (c *Controller) resolveLocked(msgs []models.Message) func() {
	gen := c.timers.Generation()
	ctx := c.ctx
	agent := *c.agent

	reqs := make([]*responder.Request, 0, len(msgs))
	for _, m := range msgs {
		reqs = append(reqs, &responder.Request{
			ChatID:  c.chatID,
			History: c.store.Before(m.ID),
			Message: m.Content,
			Agent:   agent,
		})
	}
	c.inflight++

	return func() {
		for i, req := range reqs {
			reply := c.resolver.Resolve(ctx, req)
			if !c.acceptReply(gen, reply, i == len(reqs)-1) {
				return
			}
		}
	}
}

func (c *Controller) acceptReply(gen uint64, reply responder.Reply, last bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.timers.Generation() != gen || c.status != models.SessionConnected {
		return false
	}
	if last {
		c.inflight--
	}

	settings := c.settings.Get()
	c.enqueueReplyLocked(queuedReply{
		text:   reply.Text,
		delay:  settings.TypingStart(),
		typing: responder.TypingDuration(reply.Text, settings.ReplyPerWord()),
	})
	return true
}

// enqueueReplyLocked queues an agent reply. Replies are shown one at a time
// through the single typing timer.
func (c *Controller) enqueueReplyLocked(r queuedReply) {
	c.replies = append(c.replies, r)
	if len(c.replies) == 1 {
		c.startReplyLocked()
	}
}

func (c *Controller) startReplyLocked() {
	r := c.replies[0]
	c.scheduleLocked(TimerTyping, r.delay, func() []func() {
		if c.status != models.SessionConnected {
			return nil
		}
		if r.typing <= 0 {
			c.deliverReplyLocked()
			return nil
		}
		c.setTypingLocked(true)
		c.scheduleLocked(TimerTyping, r.typing, func() []func() {
			if c.status == models.SessionConnected {
				c.deliverReplyLocked()
			}
			return nil
		})
		return nil
	})
}

func (c *Controller) deliverReplyLocked() {
	r := c.replies[0]
	c.replies = c.replies[1:]

	c.setTypingLocked(false)
	c.appendLocked(models.KindAgent, r.text)
	c.timers.Cancel(TimerEndChat)
	c.scheduleLocked(TimerFollowUp, c.settings.Get().FollowUp(), c.onFollowUp)

	if len(c.replies) > 0 {
		c.startReplyLocked()
	}
}

func (c *Controller) replyingLocked() bool {
	return c.inflight > 0 || len(c.replies) > 0
}

func (c *Controller) setTypingLocked(typing bool) {
	if c.typing == typing {
		return
	}
	c.typing = typing
	c.publishLocked(Event{Type: EventTyping, Typing: &typing, Agent: c.agentCopyLocked()})
}

func (c *Controller) appendLocked(kind models.MessageKind, content string) models.Message {
	msg := c.store.Append(kind, content, c.clock.Now())
	published := msg
	c.publishLocked(Event{Type: EventMessage, Message: &published})

	if kind.HasStatus() {
		c.scheduleStatusLocked(msg)
	}
	return msg
}

// scheduleStatusLocked chains the delivered and read transitions of msg.
func (c *Controller) scheduleStatusLocked(msg models.Message) {
	delivered, read := statusDelays(msg.Kind)
	id := msg.ID

	c.scheduleForLocked(TimerStatus, id, delivered, func() []func() {
		c.advanceStatusLocked(id)
		c.scheduleForLocked(TimerStatus, id, read-delivered, func() []func() {
			c.advanceStatusLocked(id)
			return nil
		})
		return nil
	})
}

func (c *Controller) advanceStatusLocked(id int64) {
	msg, ok := c.store.Advance(id)
	if !ok {
		return
	}
	c.publishLocked(Event{Type: EventStatus, Message: &msg})
}

func (c *Controller) scheduleLocked(kind TimerKind, d time.Duration, fn func() []func()) {
	c.scheduleForLocked(kind, 0, d, fn)
}

func (c *Controller) scheduleForLocked(kind TimerKind, ref int64, d time.Duration, fn func() []func()) {
	c.timers.ScheduleFor(kind, ref, d, c.guard(c.timers.Generation(), fn))
}

// guard runs fn under the controller lock unless the session generation
// changed since scheduling, then dispatches the tasks fn returned.
func (c *Controller) guard(gen uint64, fn func() []func()) func() {
	return func() {
		c.mu.Lock()
		if c.timers.Generation() != gen {
			c.mu.Unlock()
			return
		}
		tasks := fn()
		c.mu.Unlock()

		c.run(tasks)
	}
}

func (c *Controller) run(tasks []func()) {
	for _, task := range tasks {
		c.dispatch(task)
	}
}

func (c *Controller) archive(ctx context.Context, snapshot *models.ChatSession, status models.ArchiveStatus) (models.ArchivedSession, error) {
	archived, err := c.archiver.Archive(ctx, snapshot, status)
	if err != nil {
		c.logger.Error().Err(err).Str("chat_id", snapshot.ChatID).Msg("Failed to archive chat session")
		return models.ArchivedSession{}, fmt.Errorf("failed to archive chat session: %w", err)
	}

	c.events.Publish(Event{
		Type:          EventArchived,
		WidgetID:      c.widgetID,
		ChatID:        archived.ChatID,
		Status:        snapshot.Status,
		ArchiveStatus: status,
		Timestamp:     c.clock.Now(),
	})
	return archived, nil
}

func (c *Controller) publishSessionLocked() {
	c.publishLocked(Event{Type: EventSession, Agent: c.agentCopyLocked()})
}

func (c *Controller) publishLocked(e Event) {
	e.WidgetID = c.widgetID
	e.ChatID = c.chatID
	e.Status = c.status
	e.Timestamp = c.clock.Now()
	c.events.Publish(e)
}

func (c *Controller) agentCopyLocked() *models.AgentProfile {
	if c.agent == nil {
		return nil
	}
	agent := *c.agent
	return &agent
}

func (c *Controller) snapshotLocked() *models.ChatSession {
	session := &models.ChatSession{
		ChatID:    c.chatID,
		Status:    c.status,
		StartedAt: c.startedAt,
		Agent:     c.agentCopyLocked(),
		UserName:  c.userName,
		Messages:  c.store.All(),
	}
	if c.endedAt != nil {
		endedAt := *c.endedAt
		session.EndedAt = &endedAt
	}
	return session
}
