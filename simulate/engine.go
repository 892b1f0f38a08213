package simulate

import (
	"math/rand"
	"sync"
	"time"
)

// State is the mutable record of one simulated matchmaking session. One
// instance lives per open session and is reset whenever the session closes.
type State struct {
	CurrentStep    int      `json:"currentStep"`
	Progress       float64  `json:"progress"`
	Players        []Player `json:"players"`
	FoundPlayers   int      `json:"foundPlayers"`
	YourTeam       []Player `json:"yourTeam"`
	EnemyTeam      []Player `json:"enemyTeam"`
	SelectedServer string   `json:"selectedServer"`
	IsSearching    bool     `json:"isSearching"`
}

func initialState() State {
	return State{
		Players:     []Player{},
		YourTeam:    []Player{},
		EnemyTeam:   []Player{},
		IsSearching: true,
	}
}

// Config controls the engine's phase catalog and timing. Timings are
// configurable so tests can run the whole sequence at millisecond scale.
type Config struct {
	Steps          []Step
	Servers        []Server
	TickInterval   time.Duration // progress tick cadence
	RevealInterval time.Duration // player reveal cadence during "searching"
	RevealAdvance  time.Duration // delay between full reveal and next phase
	EffectDelay    time.Duration // delay before "server" and "ready" side effects
	TeamSize       int
	Rand           *rand.Rand
}

// DefaultConfig returns the production timings.
func DefaultConfig() Config {
	return Config{
		Steps:          Steps,
		Servers:        Servers,
		TickInterval:   100 * time.Millisecond,
		RevealInterval: 300 * time.Millisecond,
		RevealAdvance:  500 * time.Millisecond,
		EffectDelay:    time.Second,
		TeamSize:       5,
		Rand:           rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Engine drives the simulated matchmaking sequence: it fabricates a roster,
// walks the step catalog on timers, reveals players, splits teams, picks a
// server and finally reports the session ready.
//
// Every scheduled callback captures the session epoch and re-checks it under
// the lock before touching state. Close bumps the epoch, so callbacks from a
// previous session become no-ops even if their timers already fired; rapid
// close/reopen can never corrupt the new session.
type Engine struct {
	mu     sync.Mutex
	cfg    Config
	state  State
	epoch  uint64
	open   bool
	timers []*time.Timer
}

// NewEngine creates a closed engine. Zero-value config fields fall back to
// the defaults.
func NewEngine(cfg Config) *Engine {
	def := DefaultConfig()
	if cfg.Steps == nil {
		cfg.Steps = def.Steps
	}
	if cfg.Servers == nil {
		cfg.Servers = def.Servers
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = def.TickInterval
	}
	if cfg.RevealInterval <= 0 {
		cfg.RevealInterval = def.RevealInterval
	}
	if cfg.RevealAdvance <= 0 {
		cfg.RevealAdvance = def.RevealAdvance
	}
	if cfg.EffectDelay <= 0 {
		cfg.EffectDelay = def.EffectDelay
	}
	if cfg.TeamSize <= 0 {
		cfg.TeamSize = def.TeamSize
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Engine{cfg: cfg, state: initialState()}
}

// Open starts a fresh session: generates the roster, resets all counters and
// enters step 0. Opening an already-open engine is a no-op.
func (e *Engine) Open() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.open {
		return
	}
	e.epoch++
	e.open = true
	e.state = initialState()
	e.state.Players = GeneratePlayers(e.cfg.Rand)
	e.enterStep(0)
}

// Close tears the session down: invalidates every pending callback and resets
// the state to its initial empty form. Safe to call at any point, including
// on an already-closed engine.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.epoch++
	e.open = false
	for _, t := range e.timers {
		t.Stop()
	}
	e.timers = nil
	e.state = initialState()
}

// Opened reports whether a session is currently running.
func (e *Engine) Opened() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.open
}

// Snapshot returns a copy of the session state safe for the caller to keep.
func (e *Engine) Snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.state
	s.Players = copyPlayers(e.state.Players)
	s.YourTeam = copyPlayers(e.state.YourTeam)
	s.EnemyTeam = copyPlayers(e.state.EnemyTeam)
	return s
}

func copyPlayers(in []Player) []Player {
	out := make([]Player, len(in))
	copy(out, in)
	return out
}

// CurrentStep returns the descriptor of the active step.
func (e *Engine) CurrentStep() Step {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg.Steps[e.state.CurrentStep]
}

// schedule arms a timer whose callback only runs if the session epoch is
// still current. Must be called with the lock held.
func (e *Engine) schedule(d time.Duration, fn func()) {
	epoch := e.epoch
	t := time.AfterFunc(d, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if e.epoch != epoch || !e.open {
			return
		}
		fn()
	})
	e.timers = append(e.timers, t)
}

// enterStep activates a step: resets progress, starts the progress ticker
// and kicks off the step's side effects. Must be called with the lock held.
func (e *Engine) enterStep(idx int) {
	e.state.CurrentStep = idx
	e.state.Progress = 0

	step := e.cfg.Steps[idx]
	e.tickProgress(idx, 100*float64(e.cfg.TickInterval)/float64(step.Duration))

	switch step.ID {
	case StepSearching:
		// Advancement is driven by the reveal loop, not the step duration:
		// all ten players must be on screen before balancing starts.
		e.revealPlayer(idx)
	case StepBalancing:
		e.divideIntoTeams()
		e.scheduleAdvance(idx, step.Duration)
	case StepServer:
		e.schedule(e.cfg.EffectDelay, func() {
			e.state.SelectedServer = e.cfg.Servers[0].Name
		})
		e.scheduleAdvance(idx, step.Duration)
	case StepReady:
		e.schedule(e.cfg.EffectDelay, func() {
			e.state.IsSearching = false
		})
	default:
		e.scheduleAdvance(idx, step.Duration)
	}
}

// scheduleAdvance moves to the next step after d, unless the session has
// already moved on or idx is the last step.
func (e *Engine) scheduleAdvance(idx int, d time.Duration) {
	if idx >= len(e.cfg.Steps)-1 {
		return
	}
	e.schedule(d, func() {
		if e.state.CurrentStep != idx {
			return
		}
		e.enterStep(idx + 1)
	})
}

// tickProgress advances the progress bar in fixed increments until it hits
// 100, then stops rescheduling itself.
func (e *Engine) tickProgress(idx int, increment float64) {
	e.schedule(e.cfg.TickInterval, func() {
		if e.state.CurrentStep != idx {
			return
		}
		e.state.Progress += increment
		if e.state.Progress >= 100 {
			e.state.Progress = 100
			return
		}
		e.tickProgress(idx, increment)
	})
}

// revealPlayer increments the found-player counter every reveal interval.
// Once the whole roster is revealed it waits RevealAdvance and enters the
// next step explicitly.
func (e *Engine) revealPlayer(idx int) {
	e.schedule(e.cfg.RevealInterval, func() {
		if e.state.CurrentStep != idx {
			return
		}
		e.state.FoundPlayers++
		if e.state.FoundPlayers >= len(e.state.Players) {
			e.state.FoundPlayers = len(e.state.Players)
			e.schedule(e.cfg.RevealAdvance, func() {
				if e.state.CurrentStep != idx {
					return
				}
				e.enterStep(idx + 1)
			})
			return
		}
		e.revealPlayer(idx)
	})
}

// divideIntoTeams splits the roster in order: you plus the next four
// opponents against the following five. Must be called with the lock held.
func (e *Engine) divideIntoTeams() {
	var you *Player
	others := make([]Player, 0, len(e.state.Players))
	for i := range e.state.Players {
		if e.state.Players[i].IsYou {
			you = &e.state.Players[i]
		} else {
			others = append(others, e.state.Players[i])
		}
	}
	if you == nil {
		return
	}

	yours := make([]Player, 0, e.cfg.TeamSize)
	yours = append(yours, *you)
	for i := 0; i < len(others) && len(yours) < e.cfg.TeamSize; i++ {
		yours = append(yours, others[i])
	}

	enemies := make([]Player, 0, e.cfg.TeamSize)
	for i := e.cfg.TeamSize - 1; i < len(others) && len(enemies) < e.cfg.TeamSize; i++ {
		enemies = append(enemies, others[i])
	}

	e.state.YourTeam = yours
	e.state.EnemyTeam = enemies
}
