package clock_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hostdesk/livechat-service/internal/pkg/clock"
)

var start = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func TestManual_FiresInDueOrder(t *testing.T) {
	c := clock.NewManual(start)
	var fired []string

	c.AfterFunc(2*time.Second, func() { fired = append(fired, "b") })
	c.AfterFunc(time.Second, func() { fired = append(fired, "a") })
	c.AfterFunc(2*time.Second, func() { fired = append(fired, "c") })

	c.Advance(1500 * time.Millisecond)
	assert.Equal(t, []string{"a"}, fired)
	assert.Equal(t, start.Add(1500*time.Millisecond), c.Now())

	c.Advance(time.Second)
	assert.Equal(t, []string{"a", "b", "c"}, fired)
	assert.Equal(t, 0, c.Pending())
}

func TestManual_CallbackSeesDueTime(t *testing.T) {
	c := clock.NewManual(start)
	var at time.Time

	c.AfterFunc(time.Second, func() { at = c.Now() })
	c.Advance(10 * time.Second)

	assert.Equal(t, start.Add(time.Second), at)
	assert.Equal(t, start.Add(10*time.Second), c.Now())
}

func TestManual_ChainedTimersFireWithinOneAdvance(t *testing.T) {
	c := clock.NewManual(start)
	count := 0

	var tick func()
	tick = func() {
		count++
		if count < 3 {
			c.AfterFunc(time.Second, tick)
		}
	}
	c.AfterFunc(time.Second, tick)

	c.Advance(5 * time.Second)
	assert.Equal(t, 3, count)
}

func TestManual_Stop(t *testing.T) {
	c := clock.NewManual(start)
	fired := false

	timer := c.AfterFunc(time.Second, func() { fired = true })
	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop())

	c.Advance(time.Minute)
	assert.False(t, fired)
}

func TestManual_StopAfterFire(t *testing.T) {
	c := clock.NewManual(start)
	timer := c.AfterFunc(0, func() {})

	c.Advance(0)
	assert.False(t, timer.Stop())
}

func TestReal_AfterFunc(t *testing.T) {
	done := make(chan struct{})
	clock.New().AfterFunc(time.Millisecond, func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timer did not fire")
	}
}
