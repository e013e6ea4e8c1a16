package responder_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hostdesk/livechat-service/internal/services/responder"
)

func TestTypingDuration(t *testing.T) {
	perWord := 150 * time.Millisecond

	assert.Equal(t, time.Duration(0), responder.TypingDuration("", perWord))
	assert.Equal(t, 450*time.Millisecond, responder.TypingDuration("one two  three", perWord))
	assert.Equal(t, time.Duration(0), responder.TypingDuration("words", 0))
}

func TestTypingDuration_CappedAtFifteenSeconds(t *testing.T) {
	long := strings.Repeat("word ", 1000)

	for _, perWord := range []time.Duration{150 * time.Millisecond, time.Second, time.Hour} {
		got := responder.TypingDuration(long, perWord)
		assert.LessOrEqual(t, got, responder.MaxTypingDuration)
		assert.Equal(t, 15*time.Second, got)
	}

	assert.Equal(t, 15*time.Second, responder.TypingDuration(strings.Repeat("w ", 100), 150*time.Millisecond))
}
