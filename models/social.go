package models

import "time"

// Friend link statuses.
const (
	FriendPending  = "pending"
	FriendAccepted = "accepted"
)

// Friend is a directed friendship request; accepted links count for both
// directions.
type Friend struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	UserID   uint   `gorm:"index;not null;uniqueIndex:idx_friend_pair" json:"user_id"`
	FriendID uint   `gorm:"index;not null;uniqueIndex:idx_friend_pair" json:"friend_id"`
	Status   string `gorm:"size:20;default:pending" json:"status"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// Message is one direct chat message between two users.
type Message struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	SenderID   uint   `gorm:"index;not null" json:"sender_id"`
	ReceiverID uint   `gorm:"index;not null" json:"receiver_id"`
	Body       string `gorm:"column:message;type:text;not null" json:"message"`
	IsRead     bool   `gorm:"default:false" json:"is_read"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// Challenge statuses.
const (
	ChallengeOpen      = "open"
	ChallengeAccepted  = "accepted"
	ChallengeCancelled = "cancelled"
	ChallengeCompleted = "completed"
)

// Challenge is a user-created stake match waiting for an opponent.
type Challenge struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	CreatorID  uint   `gorm:"index;not null" json:"creator_id"`
	OpponentID *uint  `json:"opponent_id,omitempty"`
	GameMode   string `gorm:"size:10" json:"game_mode"`
	Stake      int    `gorm:"default:0" json:"stake"`
	Status     string `gorm:"size:20;default:open" json:"status"`
	WinnerID   *uint  `json:"winner_id,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`

	Creator  *User `gorm:"foreignKey:CreatorID" json:"-"`
	Opponent *User `gorm:"foreignKey:OpponentID" json:"-"`
}
