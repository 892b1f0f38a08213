package models

import "time"

// QueueTicket is one user's entry in the matchmaking queue, held in Redis
// while the search is active.
type QueueTicket struct {
	UserID      uint      `json:"user_id"`
	GameMode    string    `json:"game_mode"`
	SkillRating int       `json:"skill_rating"`
	JoinedAt    time.Time `json:"joined_at"`
}
