package simulate

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratePlayersShape(t *testing.T) {
	players := GeneratePlayers(rand.New(rand.NewSource(42)))
	require.Len(t, players, RosterSize)

	you := players[0]
	assert.True(t, you.IsYou)
	assert.Equal(t, "you", you.ID)
	assert.Equal(t, 2847, you.Rating)
	assert.Equal(t, 156, you.Wins)
	assert.Equal(t, 89, you.Losses)

	for _, p := range players[1:] {
		assert.False(t, p.IsYou)
		assert.GreaterOrEqual(t, p.Rating, 2500)
		assert.Less(t, p.Rating, 3300)
		assert.GreaterOrEqual(t, p.Wins, 50)
		assert.GreaterOrEqual(t, p.Losses, 30)
		assert.GreaterOrEqual(t, p.WinRate, 0.0)
		assert.LessOrEqual(t, p.WinRate, 100.0)
		assert.GreaterOrEqual(t, p.KD, 0.8)
		assert.LessOrEqual(t, p.KD, 2.3)
		assert.Contains(t, ranks, p.Rank)
		assert.NotEmpty(t, p.Name)
	}
}

func TestGeneratePlayersDeterministicWithSameSeed(t *testing.T) {
	a := GeneratePlayers(rand.New(rand.NewSource(7)))
	b := GeneratePlayers(rand.New(rand.NewSource(7)))
	assert.Equal(t, a, b)
}

func TestIconNames(t *testing.T) {
	assert.Equal(t, "Search", IconName(IconSearch))
	assert.Equal(t, "Scale", IconName(IconScale))
	assert.Equal(t, "Server", IconName(IconServer))
	assert.Equal(t, "CheckCircle", IconName(IconCheckCircle))
	assert.Equal(t, "Search", IconName(Icon(99)))
}
