package chat_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hostdesk/livechat-service/internal/pkg/clock"
	"github.com/hostdesk/livechat-service/internal/services/chat"
)

// leakyClock never stops timers, so callbacks race with cancellation.
type leakyClock struct {
	fns []func()
}

type leakyTimer struct{}

func (leakyTimer) Stop() bool { return false }

func (c *leakyClock) Now() time.Time { return start }

func (c *leakyClock) AfterFunc(_ time.Duration, f func()) clock.Timer {
	c.fns = append(c.fns, f)
	return leakyTimer{}
}

func TestTimers_ScheduleReplacesSameKind(t *testing.T) {
	clk := clock.NewManual(start)
	timers := chat.NewTimers(clk)
	var fired []string

	timers.Schedule(chat.TimerFollowUp, time.Second, func() { fired = append(fired, "first") })
	timers.Schedule(chat.TimerFollowUp, 2*time.Second, func() { fired = append(fired, "second") })
	assert.Equal(t, 1, timers.Pending())

	clk.Advance(time.Minute)

	assert.Equal(t, []string{"second"}, fired)
	assert.Equal(t, 0, timers.Pending())
}

func TestTimers_KindsAreIndependent(t *testing.T) {
	clk := clock.NewManual(start)
	timers := chat.NewTimers(clk)
	count := 0

	timers.Schedule(chat.TimerAssign, time.Second, func() { count++ })
	timers.Schedule(chat.TimerTyping, time.Second, func() { count++ })
	timers.ScheduleFor(chat.TimerStatus, 1, time.Second, func() { count++ })
	timers.ScheduleFor(chat.TimerStatus, 2, time.Second, func() { count++ })
	assert.True(t, timers.IsPending(chat.TimerAssign))
	assert.False(t, timers.IsPending(chat.TimerEndChat))

	clk.Advance(time.Second)

	assert.Equal(t, 4, count)
}

func TestTimers_Cancel(t *testing.T) {
	clk := clock.NewManual(start)
	timers := chat.NewTimers(clk)
	fired := false

	timers.Schedule(chat.TimerEndChat, time.Second, func() { fired = true })
	timers.Cancel(chat.TimerEndChat)
	timers.Cancel(chat.TimerEndChat)
	clk.Advance(time.Minute)

	assert.False(t, fired)
	assert.Equal(t, 0, clk.Pending())
}

func TestTimers_CancelAllBumpsGeneration(t *testing.T) {
	clk := clock.NewManual(start)
	timers := chat.NewTimers(clk)
	gen := timers.Generation()

	timers.Schedule(chat.TimerAssign, time.Second, func() { t.Fatal("cancelled timer fired") })
	timers.ScheduleFor(chat.TimerStatus, 7, time.Second, func() { t.Fatal("cancelled timer fired") })
	timers.CancelAll()
	clk.Advance(time.Minute)

	assert.Equal(t, gen+1, timers.Generation())
	assert.Equal(t, 0, timers.Pending())
}

func TestTimers_StaleCallbackIsIgnored(t *testing.T) {
	clk := &leakyClock{}
	timers := chat.NewTimers(clk)
	fired := 0

	timers.Schedule(chat.TimerAssign, time.Second, func() { fired++ })
	timers.CancelAll()
	timers.Schedule(chat.TimerAssign, time.Second, func() { fired += 10 })
	timers.Schedule(chat.TimerAssign, time.Second, func() { fired += 100 })

	for _, fn := range clk.fns {
		fn()
	}

	assert.Equal(t, 100, fired)
}
