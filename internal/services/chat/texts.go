package chat

import (
	"fmt"

	"github.com/hostdesk/livechat-service/internal/domain/models"
)

const (
	QueuedText   = "You are in the queue. An agent will be with you shortly."
	FollowUpText = "Is there anything else I can help you with?"
	ClosingText  = "Thank you for contacting us. Have a great day!"
	EndedText    = "Chat ended"
)

// ConnectedText announces the assigned agent.
func ConnectedText(agent models.AgentProfile) string {
	return fmt.Sprintf("You are now connected with %s", agent.Name)
}

// GreetingText is the agent's first message.
func GreetingText(agent models.AgentProfile) string {
	return fmt.Sprintf("Hi, I'm %s. How can I help you today?", agent.Name)
}
