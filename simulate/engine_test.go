package simulate

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	steps := make([]Step, len(Steps))
	copy(steps, Steps)
	for i := range steps {
		steps[i].Duration = 50 * time.Millisecond
	}
	return Config{
		Steps:          steps,
		Servers:        Servers,
		TickInterval:   5 * time.Millisecond,
		RevealInterval: 4 * time.Millisecond,
		RevealAdvance:  10 * time.Millisecond,
		EffectDelay:    10 * time.Millisecond,
		TeamSize:       5,
		Rand:           rand.New(rand.NewSource(1)),
	}
}

func waitFor(t *testing.T, e *Engine, timeout time.Duration, cond func(State) bool) State {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		s := e.Snapshot()
		if cond(s) {
			return s
		}
		time.Sleep(time.Millisecond)
	}
	s := e.Snapshot()
	require.True(t, cond(s), "condition not reached before timeout, state: %+v", s)
	return s
}

func TestOpenGeneratesRoster(t *testing.T) {
	e := NewEngine(testConfig())
	e.Open()
	defer e.Close()

	s := e.Snapshot()
	require.Len(t, s.Players, RosterSize)

	youCount := 0
	for _, p := range s.Players {
		if p.IsYou {
			youCount++
		}
	}
	assert.Equal(t, 1, youCount)
	assert.True(t, s.Players[0].IsYou)
	assert.True(t, s.IsSearching)
	assert.Equal(t, 0, s.CurrentStep)
}

func TestRevealIsMonotonicAndAdvances(t *testing.T) {
	e := NewEngine(testConfig())
	e.Open()
	defer e.Close()

	last := 0
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		s := e.Snapshot()
		assert.GreaterOrEqual(t, s.FoundPlayers, last, "foundPlayers went backwards")
		assert.LessOrEqual(t, s.FoundPlayers, RosterSize)
		last = s.FoundPlayers
		if s.CurrentStep >= 1 {
			// Full roster must be revealed before balancing starts.
			assert.Equal(t, RosterSize, s.FoundPlayers)
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("never reached the balancing step")
}

func TestTeamPartition(t *testing.T) {
	e := NewEngine(testConfig())
	e.Open()
	defer e.Close()

	s := waitFor(t, e, 2*time.Second, func(s State) bool {
		return len(s.YourTeam) > 0 && len(s.EnemyTeam) > 0
	})

	require.Len(t, s.YourTeam, 5)
	require.Len(t, s.EnemyTeam, 5)
	assert.True(t, s.YourTeam[0].IsYou)

	seen := map[string]bool{}
	for _, p := range append(append([]Player{}, s.YourTeam...), s.EnemyTeam...) {
		assert.False(t, seen[p.ID], "player %s appears in both teams", p.ID)
		seen[p.ID] = true
	}
	assert.Len(t, seen, RosterSize)
}

func TestProgressStaysInBounds(t *testing.T) {
	e := NewEngine(testConfig())
	e.Open()
	defer e.Close()

	deadline := time.Now().Add(500 * time.Millisecond)
	for time.Now().Before(deadline) {
		s := e.Snapshot()
		assert.GreaterOrEqual(t, s.Progress, 0.0)
		assert.LessOrEqual(t, s.Progress, 100.0)
		time.Sleep(time.Millisecond)
	}
}

func TestFullSequenceCompletes(t *testing.T) {
	e := NewEngine(testConfig())
	e.Open()
	defer e.Close()

	s := waitFor(t, e, 3*time.Second, func(s State) bool {
		return !s.IsSearching
	})

	assert.Equal(t, len(Steps)-1, s.CurrentStep)
	assert.Equal(t, Servers[0].Name, s.SelectedServer)
	assert.Len(t, s.YourTeam, 5)
	assert.Len(t, s.EnemyTeam, 5)
}

func TestCloseResetsAndSilencesTimers(t *testing.T) {
	e := NewEngine(testConfig())
	e.Open()

	waitFor(t, e, time.Second, func(s State) bool {
		return s.FoundPlayers >= 2
	})

	e.Close()

	want := State{
		Players:     []Player{},
		YourTeam:    []Player{},
		EnemyTeam:   []Player{},
		IsSearching: true,
	}
	assert.Equal(t, want, e.Snapshot())

	// No stale callback may touch state after close.
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, want, e.Snapshot())
	assert.False(t, e.Opened())
}

func TestRapidReopenStartsCleanSession(t *testing.T) {
	e := NewEngine(testConfig())
	e.Open()
	waitFor(t, e, time.Second, func(s State) bool {
		return s.FoundPlayers >= 3
	})
	e.Close()
	e.Open()
	defer e.Close()

	s := e.Snapshot()
	assert.Equal(t, 0, s.CurrentStep)
	require.Len(t, s.Players, RosterSize)

	// The reopened session must still run to completion without
	// interference from the torn-down one.
	s = waitFor(t, e, 3*time.Second, func(s State) bool {
		return !s.IsSearching
	})
	assert.Equal(t, Servers[0].Name, s.SelectedServer)
}

func TestOpenTwiceIsNoop(t *testing.T) {
	e := NewEngine(testConfig())
	e.Open()
	defer e.Close()

	first := e.Snapshot().Players
	e.Open()
	assert.Equal(t, first, e.Snapshot().Players)
}
