package agents_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostdesk/livechat-service/internal/domain/models"
	"github.com/hostdesk/livechat-service/internal/services/agents"
)

type fixedIntn struct{ values []int }

func (f *fixedIntn) Intn(n int) int {
	v := f.values[0] % n
	f.values = f.values[1:]
	return v
}

func TestPickRandom_UsesInjectedSource(t *testing.T) {
	pool := agents.DefaultPool()
	rng := &fixedIntn{values: []int{2, 2, 0}}

	first := pool.PickRandom(rng)
	second := pool.PickRandom(rng)
	third := pool.PickRandom(rng)

	assert.Equal(t, agents.DefaultRoster[2], first)
	assert.Equal(t, first, second, "consecutive sessions may get the same agent")
	assert.Equal(t, agents.DefaultRoster[0], third)
}

func TestPickRandom_CoversRoster(t *testing.T) {
	pool := agents.DefaultPool()
	rng := rand.New(rand.NewSource(7))
	seen := map[string]int{}

	for i := 0; i < 600; i++ {
		seen[pool.PickRandom(rng).ID]++
	}

	assert.Len(t, seen, pool.Len())
	for id, n := range seen {
		assert.Greater(t, n, 50, "agent %s picked too rarely", id)
	}
}

func TestNewPool_Validation(t *testing.T) {
	_, err := agents.NewPool(nil)
	assert.Error(t, err)

	_, err = agents.NewPool([]models.AgentProfile{{ID: "a"}})
	assert.Error(t, err)

	_, err = agents.NewPool([]models.AgentProfile{{ID: "a", Name: "A"}, {ID: "a", Name: "B"}})
	assert.ErrorContains(t, err, "duplicate agent id")

	pool, err := agents.NewPool([]models.AgentProfile{{ID: "a", Name: "A"}})
	require.NoError(t, err)
	assert.Equal(t, 1, pool.Len())
}

func TestPool_GetAndAllReturnCopies(t *testing.T) {
	pool := agents.DefaultPool()

	a, ok := pool.Get("agent-sarah")
	require.True(t, ok)
	assert.Equal(t, "Sarah", a.Name)

	_, ok = pool.Get("nobody")
	assert.False(t, ok)

	all := pool.All()
	all[0].Name = "changed"
	again, _ := pool.Get("agent-sarah")
	assert.Equal(t, "Sarah", again.Name)
}
