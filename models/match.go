package models

import "time"

// Match statuses.
const (
	MatchWaiting    = "waiting"
	MatchInProgress = "in_progress"
	MatchCompleted  = "completed"
)

// Match records one head-to-head game created by the matchmaking queue.
type Match struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	MatchID string `gorm:"uniqueIndex;size:16;not null" json:"matchId"`

	GameMode string `gorm:"size:32;not null" json:"gameMode"`
	Status   string `gorm:"size:16;default:waiting;check:status IN ('waiting','in_progress','completed')" json:"status"`

	Player1ID uint  `gorm:"index;not null" json:"player1Id"`
	Player2ID uint  `gorm:"index;not null" json:"player2Id"`
	WinnerID  *uint `json:"winnerId,omitempty"`

	Player1Score int `gorm:"default:0" json:"player1Score"`
	Player2Score int `gorm:"default:0" json:"player2Score"`

	PointsAwarded   int        `gorm:"default:0" json:"pointsAwarded"`
	DurationSeconds int        `gorm:"default:0" json:"durationSeconds"`
	FinishedAt      *time.Time `json:"finishedAt,omitempty"`

	Player1 *User `gorm:"foreignKey:Player1ID" json:"-"`
	Player2 *User `gorm:"foreignKey:Player2ID" json:"-"`

	Timestamps
}
