// Package agents provides the roster of support agent personas.
package agents

import (
	"fmt"

	"github.com/hostdesk/livechat-service/internal/domain/models"
)

// Intn is the random source used for agent selection.
// *math/rand.Rand satisfies it.
type Intn interface {
	Intn(n int) int
}

// Pool is an immutable roster of agent profiles.
type Pool struct {
	roster []models.AgentProfile
}

// DefaultRoster is the built-in set of support personas.
var DefaultRoster = []models.AgentProfile{
	{ID: "agent-sarah", Name: "Sarah", LocalizedName: "Sára", AvatarRef: "avatars/sarah.png", Gender: models.GenderFemale},
	{ID: "agent-tomas", Name: "Thomas", LocalizedName: "Tomáš", AvatarRef: "avatars/tomas.png", Gender: models.GenderMale},
	{ID: "agent-lucie", Name: "Lucy", LocalizedName: "Lucie", AvatarRef: "avatars/lucie.png", Gender: models.GenderFemale},
	{ID: "agent-martin", Name: "Martin", LocalizedName: "Martin", AvatarRef: "avatars/martin.png", Gender: models.GenderMale},
	{ID: "agent-eva", Name: "Eva", LocalizedName: "Eva", AvatarRef: "avatars/eva.png", Gender: models.GenderFemale},
	{ID: "agent-jakub", Name: "James", LocalizedName: "Jakub", AvatarRef: "avatars/jakub.png", Gender: models.GenderMale},
}

// NewPool creates a pool over a copy of roster.
func NewPool(roster []models.AgentProfile) (*Pool, error) {
	if len(roster) == 0 {
		return nil, fmt.Errorf("agent roster is empty")
	}

	seen := make(map[string]struct{}, len(roster))
	for _, a := range roster {
		if a.ID == "" || a.Name == "" {
			return nil, fmt.Errorf("agent id and name are required")
		}
		if _, dup := seen[a.ID]; dup {
			return nil, fmt.Errorf("duplicate agent id: %s", a.ID)
		}
		seen[a.ID] = struct{}{}
	}

	return &Pool{roster: append([]models.AgentProfile(nil), roster...)}, nil
}

// DefaultPool returns a pool over DefaultRoster.
func DefaultPool() *Pool {
	return &Pool{roster: append([]models.AgentProfile(nil), DefaultRoster...)}
}

// PickRandom returns a uniformly chosen agent. Consecutive picks may repeat.
func (p *Pool) PickRandom(rng Intn) models.AgentProfile {
	return p.roster[rng.Intn(len(p.roster))]
}

// Get returns the agent with the given id.
func (p *Pool) Get(id string) (models.AgentProfile, bool) {
	for _, a := range p.roster {
		if a.ID == id {
			return a, true
		}
	}
	return models.AgentProfile{}, false
}

// All returns a copy of the roster.
func (p *Pool) All() []models.AgentProfile {
	return append([]models.AgentProfile(nil), p.roster...)
}

// Len returns the roster size.
func (p *Pool) Len() int {
	return len(p.roster)
}
