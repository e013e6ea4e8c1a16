package models

import (
	"fmt"
	"time"
)

// Settings holds the chat timing configuration. All durations are milliseconds
// so the JSON shape matches what the admin UI edits.
type Settings struct {
	ChatEnabled      bool  `json:"chatEnabled"`
	QueueAssignTime  int64 `json:"queueAssignTime"`
	TypingStartDelay int64 `json:"typingStartDelay"`
	ReplyTimePerWord int64 `json:"replyTimePerWord"`
	FollowUpTimeout  int64 `json:"followUpTimeout"`
	EndChatTimeout   int64 `json:"endChatTimeout"`
}

// DefaultSettings returns the timings used when nothing has been saved yet.
func DefaultSettings() Settings {
	return Settings{
		ChatEnabled:      true,
		QueueAssignTime:  3000,
		TypingStartDelay: 1000,
		ReplyTimePerWord: 150,
		FollowUpTimeout:  60000,
		EndChatTimeout:   30000,
	}
}

// QueueAssign returns the queue-to-agent assignment delay.
func (s Settings) QueueAssign() time.Duration { return millis(s.QueueAssignTime) }

// TypingStart returns the delay before the agent starts typing.
func (s Settings) TypingStart() time.Duration { return millis(s.TypingStartDelay) }

// ReplyPerWord returns the typing time spent per reply word.
func (s Settings) ReplyPerWord() time.Duration { return millis(s.ReplyTimePerWord) }

// FollowUp returns the idle time before the "anything else?" prompt.
func (s Settings) FollowUp() time.Duration { return millis(s.FollowUpTimeout) }

// EndChat returns the idle time after the follow-up prompt before the chat ends.
func (s Settings) EndChat() time.Duration { return millis(s.EndChatTimeout) }

// Validate checks that every timing is within range.
func (s Settings) Validate() error {
	fields := []struct {
		name  string
		value int64
	}{
		{"queueAssignTime", s.QueueAssignTime},
		{"typingStartDelay", s.TypingStartDelay},
		{"replyTimePerWord", s.ReplyTimePerWord},
		{"followUpTimeout", s.FollowUpTimeout},
		{"endChatTimeout", s.EndChatTimeout},
	}
	for _, f := range fields {
		if f.value < 0 {
			return fmt.Errorf("%s must not be negative", f.name)
		}
		if f.value > MaxTimingMillis {
			return fmt.Errorf("%s must not exceed %d ms", f.name, MaxTimingMillis)
		}
	}
	return nil
}

// MaxTimingMillis bounds every configurable timing to one hour.
const MaxTimingMillis = int64(time.Hour / time.Millisecond)

func millis(v int64) time.Duration {
	return time.Duration(v) * time.Millisecond
}
