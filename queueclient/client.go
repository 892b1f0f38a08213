// Package queueclient is a thin request/response wrapper around the
// server-side matchmaking queue. It keeps no persistent connection: the
// caller joins the queue, may leave it, and reports match results.
package queueclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"champlink-platform/utils"
)

// Opponent is the server-reported identity of a matched player.
type Opponent struct {
	UserID      int    `json:"userId"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Level       int    `json:"level"`
	Avatar      string `json:"avatar,omitempty"`
	SkillRating int    `json:"skillRating"`
}

// MatchResult describes a found match. Created only on a "match_found"
// response and held until the queue is left or the session closes.
type MatchResult struct {
	MatchID  string   `json:"matchId"`
	Opponent Opponent `json:"opponent"`
	Status   string   `json:"status"`
}

// JoinResult is the queue endpoint's answer to a join request.
type JoinResult struct {
	Status   string    `json:"status"`
	MatchID  string    `json:"matchId,omitempty"`
	Opponent *Opponent `json:"opponent,omitempty"`
	Message  string    `json:"message,omitempty"`
}

// FinishResult is the payload returned after reporting a completed match.
type FinishResult struct {
	Message       string `json:"message"`
	WinnerID      int    `json:"winnerId"`
	PointsAwarded struct {
		Winner int `json:"winner"`
		Loser  int `json:"loser"`
	} `json:"pointsAwarded"`
}

// ServerError carries the error message the queue endpoint responded with.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string { return e.Message }

const (
	StatusMatchFound = "match_found"
	StatusSearching  = "searching"
)

// Client issues requests against one matchmaking queue endpoint.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Log        *zap.Logger
}

func NewClient(baseURL string, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: utils.HTTPClient,
		Log:        log,
	}
}

// JoinQueue sends a join request. A non-2xx response is returned as a
// *ServerError carrying the server's message.
func (c *Client) JoinQueue(ctx context.Context, userID int, gameMode string) (*JoinResult, error) {
	var result JoinResult
	err := c.post(ctx, map[string]any{
		"action":   "join_queue",
		"userId":   userID,
		"gameMode": gameMode,
	}, &result, "failed to find an opponent")
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// LeaveQueue removes the user from the queue.
func (c *Client) LeaveQueue(ctx context.Context, userID int) error {
	return c.post(ctx, map[string]any{
		"action": "leave_queue",
		"userId": userID,
	}, nil, "failed to leave the queue")
}

// FinishMatch reports the result of a completed match, including how long
// the search that produced it took.
func (c *Client) FinishMatch(ctx context.Context, matchID string, winnerID, player1Score, player2Score, durationSec int) (*FinishResult, error) {
	var result FinishResult
	err := c.post(ctx, map[string]any{
		"action":       "finish_match",
		"matchId":      matchID,
		"winnerId":     winnerID,
		"player1Score": player1Score,
		"player2Score": player2Score,
		"duration":     durationSec,
	}, &result, "failed to finish the match")
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) post(ctx context.Context, payload any, out any, defaultErr string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call matchmaking endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errBody struct {
			Error string `json:"error"`
		}
		message := defaultErr
		if decodeErr := json.NewDecoder(resp.Body).Decode(&errBody); decodeErr == nil && errBody.Error != "" {
			message = errBody.Error
		}
		return &ServerError{StatusCode: resp.StatusCode, Message: message}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
