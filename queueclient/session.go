package queueclient

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrNotLoggedIn is reported when a search is attempted without a known
// user identity. No network request is issued in that case.
var ErrNotLoggedIn = errors.New("you must be logged in to search for a match")

const connectionErrMsg = "could not reach the matchmaking server"

// SessionState is a snapshot of one search session, read by the UI.
type SessionState struct {
	Searching  bool         `json:"isSearching"`
	SearchTime int          `json:"searchTime"`
	Match      *MatchResult `json:"matchFound,omitempty"`
	Err        string       `json:"error,omitempty"`
}

// Session tracks one user's search against the real matchmaking queue.
// While a search is active a local ticker counts elapsed seconds purely
// for display; it is cleared whenever searching stops. Closing the session
// while a search is active fires a best-effort leave so no orphaned queue
// entry is left behind on the server.
type Session struct {
	// TickInterval is the elapsed-counter cadence, one second by default.
	TickInterval time.Duration

	client   *Client
	userID   int
	gameMode string

	mu        sync.Mutex
	searching bool
	elapsed   int
	lastRun   int // duration of the most recent search, reported by FinishMatch
	match     *MatchResult
	errMsg    string
	stop      chan struct{}
	closed    bool
}

// NewSession creates a session for the given user. userID 0 means not
// logged in; JoinQueue will refuse to search.
func NewSession(client *Client, userID int, gameMode string) *Session {
	if gameMode == "" {
		gameMode = "classic"
	}
	return &Session{
		TickInterval: time.Second,
		client:       client,
		userID:       userID,
		gameMode:     gameMode,
	}
}

// State returns a snapshot of the session.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SessionState{
		Searching:  s.searching,
		SearchTime: s.elapsed,
		Match:      s.match,
		Err:        s.errMsg,
	}
}

// JoinQueue sends a join request and updates the session state from the
// outcome. A "searching" response leaves the session searching; there is
// no automatic re-poll — the server pairs waiting players on its own.
func (s *Session) JoinQueue(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return errors.New("session is closed")
	}
	if s.userID == 0 {
		s.errMsg = ErrNotLoggedIn.Error()
		s.mu.Unlock()
		return ErrNotLoggedIn
	}
	s.searching = true
	s.errMsg = ""
	s.match = nil
	s.startTickerLocked()
	s.mu.Unlock()

	result, err := s.client.JoinQueue(ctx, s.userID, s.gameMode)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		var serverErr *ServerError
		if errors.As(err, &serverErr) {
			s.errMsg = serverErr.Message
		} else {
			s.errMsg = connectionErrMsg
		}
		s.stopSearchingLocked()
		return err
	}

	if result.Status == StatusMatchFound && result.Opponent != nil {
		s.match = &MatchResult{
			MatchID:  result.MatchID,
			Opponent: *result.Opponent,
			Status:   StatusMatchFound,
		}
		s.stopSearchingLocked()
	}
	return nil
}

// LeaveQueue sends a best-effort leave request. Local searching, elapsed
// time and match state are always cleared, whatever the request's outcome.
// It is a no-op for anonymous sessions.
func (s *Session) LeaveQueue(ctx context.Context) error {
	s.mu.Lock()
	if s.userID == 0 {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	if err := s.client.LeaveQueue(ctx, s.userID); err != nil {
		s.client.Log.Warn("failed to leave matchmaking queue",
			zap.Int("user_id", s.userID),
			zap.Error(err),
		)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.match = nil
	s.errMsg = ""
	s.stopSearchingLocked()
	s.lastRun = 0
	return nil
}

// FinishMatch reports a completed match along with the elapsed search
// duration. The server's error message, if any, is returned to the caller.
func (s *Session) FinishMatch(ctx context.Context, matchID string, winnerID, player1Score, player2Score int) (*FinishResult, error) {
	s.mu.Lock()
	duration := s.lastRun
	if s.searching {
		duration = s.elapsed
	}
	s.mu.Unlock()

	return s.client.FinishMatch(ctx, matchID, winnerID, player1Score, player2Score, duration)
}

// Close tears the session down. An active search leaves the queue first.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	wasSearching := s.searching
	s.mu.Unlock()

	if wasSearching {
		_ = s.LeaveQueue(context.Background())
		return
	}

	s.mu.Lock()
	s.stopSearchingLocked()
	s.mu.Unlock()
}

// stopSearchingLocked halts the elapsed ticker and clears the counter,
// remembering the final value for finish reports. Lock must be held.
func (s *Session) stopSearchingLocked() {
	s.searching = false
	if s.elapsed > 0 {
		s.lastRun = s.elapsed
	}
	s.elapsed = 0
	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
}

func (s *Session) startTickerLocked() {
	if s.stop != nil {
		return
	}
	stop := make(chan struct{})
	s.stop = stop

	go func() {
		ticker := time.NewTicker(s.TickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				s.mu.Lock()
				if s.searching {
					s.elapsed++
				}
				s.mu.Unlock()
			}
		}
	}()
}
