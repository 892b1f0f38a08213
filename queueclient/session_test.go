package queueclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordedRequest struct {
	Action   string `json:"action"`
	UserID   int    `json:"userId"`
	GameMode string `json:"gameMode"`
}

func newTestServer(t *testing.T, handle func(recordedRequest, http.ResponseWriter)) (*httptest.Server, *int64) {
	t.Helper()
	var hits int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
		var req recordedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		w.Header().Set("Content-Type", "application/json")
		handle(req, w)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestJoinQueueWithoutUserSkipsNetwork(t *testing.T) {
	srv, hits := newTestServer(t, func(_ recordedRequest, w http.ResponseWriter) {
		w.Write([]byte(`{"status":"searching"}`))
	})

	session := NewSession(NewClient(srv.URL, zap.NewNop()), 0, "classic")
	err := session.JoinQueue(context.Background())

	assert.ErrorIs(t, err, ErrNotLoggedIn)
	state := session.State()
	assert.Equal(t, ErrNotLoggedIn.Error(), state.Err)
	assert.False(t, state.Searching)
	assert.EqualValues(t, 0, atomic.LoadInt64(hits))
}

func TestJoinQueueMatchFound(t *testing.T) {
	srv, _ := newTestServer(t, func(req recordedRequest, w http.ResponseWriter) {
		assert.Equal(t, "join_queue", req.Action)
		assert.Equal(t, 42, req.UserID)
		assert.Equal(t, "classic", req.GameMode)
		json.NewEncoder(w).Encode(map[string]any{
			"status":  "match_found",
			"matchId": "m1",
			"opponent": map[string]any{
				"userId":      7,
				"username":    "foo",
				"displayName": "Foo",
				"level":       3,
				"skillRating": 1500,
			},
		})
	})

	session := NewSession(NewClient(srv.URL, zap.NewNop()), 42, "classic")
	require.NoError(t, session.JoinQueue(context.Background()))

	state := session.State()
	require.NotNil(t, state.Match)
	assert.Equal(t, "m1", state.Match.MatchID)
	assert.Equal(t, 7, state.Match.Opponent.UserID)
	assert.Equal(t, "Foo", state.Match.Opponent.DisplayName)
	assert.Equal(t, 1500, state.Match.Opponent.SkillRating)
	assert.False(t, state.Searching)
	assert.Empty(t, state.Err)
}

func TestJoinQueueServerError(t *testing.T) {
	srv, _ := newTestServer(t, func(_ recordedRequest, w http.ResponseWriter) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"Queue full"}`))
	})

	session := NewSession(NewClient(srv.URL, zap.NewNop()), 42, "classic")
	err := session.JoinQueue(context.Background())

	var serverErr *ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, http.StatusBadRequest, serverErr.StatusCode)

	state := session.State()
	assert.Equal(t, "Queue full", state.Err)
	assert.False(t, state.Searching)
	assert.Nil(t, state.Match)
}

func TestJoinQueueTransportError(t *testing.T) {
	srv, _ := newTestServer(t, func(_ recordedRequest, w http.ResponseWriter) {})
	srv.Close()

	session := NewSession(NewClient(srv.URL, zap.NewNop()), 42, "classic")
	err := session.JoinQueue(context.Background())

	require.Error(t, err)
	state := session.State()
	assert.Equal(t, connectionErrMsg, state.Err)
	assert.False(t, state.Searching)
}

func TestSearchingKeepsTicking(t *testing.T) {
	srv, _ := newTestServer(t, func(_ recordedRequest, w http.ResponseWriter) {
		w.Write([]byte(`{"status":"searching"}`))
	})

	session := NewSession(NewClient(srv.URL, zap.NewNop()), 42, "classic")
	session.TickInterval = 5 * time.Millisecond
	require.NoError(t, session.JoinQueue(context.Background()))

	state := session.State()
	assert.True(t, state.Searching)
	assert.Nil(t, state.Match)

	time.Sleep(40 * time.Millisecond)
	assert.GreaterOrEqual(t, session.State().SearchTime, 2)

	session.Close()
}

func TestLeaveQueueAlwaysClearsState(t *testing.T) {
	srv, _ := newTestServer(t, func(req recordedRequest, w http.ResponseWriter) {
		if req.Action == "leave_queue" {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error":"boom"}`))
			return
		}
		w.Write([]byte(`{"status":"searching"}`))
	})

	session := NewSession(NewClient(srv.URL, zap.NewNop()), 42, "classic")
	session.TickInterval = 5 * time.Millisecond
	require.NoError(t, session.JoinQueue(context.Background()))
	require.True(t, session.State().Searching)

	require.NoError(t, session.LeaveQueue(context.Background()))

	state := session.State()
	assert.False(t, state.Searching)
	assert.Equal(t, 0, state.SearchTime)
	assert.Nil(t, state.Match)
}

func TestCloseWhileSearchingLeavesQueue(t *testing.T) {
	var leaves int64
	srv, _ := newTestServer(t, func(req recordedRequest, w http.ResponseWriter) {
		if req.Action == "leave_queue" {
			atomic.AddInt64(&leaves, 1)
			w.Write([]byte(`{"message":"Left queue successfully"}`))
			return
		}
		w.Write([]byte(`{"status":"searching"}`))
	})

	session := NewSession(NewClient(srv.URL, zap.NewNop()), 42, "classic")
	require.NoError(t, session.JoinQueue(context.Background()))

	session.Close()

	assert.EqualValues(t, 1, atomic.LoadInt64(&leaves))
	assert.False(t, session.State().Searching)
}

func TestFinishMatchReturnsServerMessage(t *testing.T) {
	srv, _ := newTestServer(t, func(req recordedRequest, w http.ResponseWriter) {
		if req.Action == "finish_match" {
			json.NewEncoder(w).Encode(map[string]any{
				"message":       "Match completed successfully",
				"winnerId":      42,
				"pointsAwarded": map[string]int{"winner": 18, "loser": 4},
			})
			return
		}
		w.Write([]byte(`{"status":"searching"}`))
	})

	session := NewSession(NewClient(srv.URL, zap.NewNop()), 42, "classic")
	result, err := session.FinishMatch(context.Background(), "m1", 42, 3, 1)
	require.NoError(t, err)
	assert.Equal(t, 42, result.WinnerID)
	assert.Equal(t, 18, result.PointsAwarded.Winner)
}

func TestFinishMatchServerError(t *testing.T) {
	srv, _ := newTestServer(t, func(req recordedRequest, w http.ResponseWriter) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"Match not found"}`))
	})

	session := NewSession(NewClient(srv.URL, zap.NewNop()), 42, "classic")
	_, err := session.FinishMatch(context.Background(), "nope", 42, 0, 0)

	var serverErr *ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, "Match not found", serverErr.Message)
}
