package responder

import (
	"strings"
	"time"
)

// MaxTypingDuration caps how long the agent appears to type a reply.
const MaxTypingDuration = 15 * time.Second

// TypingDuration returns words(text) * perWord, capped at MaxTypingDuration.
func TypingDuration(text string, perWord time.Duration) time.Duration {
	if perWord <= 0 {
		return 0
	}

	words := int64(len(strings.Fields(text)))
	if words == 0 {
		return 0
	}
	if words > int64(MaxTypingDuration/perWord) {
		return MaxTypingDuration
	}

	d := time.Duration(words) * perWord
	if d > MaxTypingDuration {
		return MaxTypingDuration
	}
	return d
}
