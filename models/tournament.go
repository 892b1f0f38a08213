package models

import "time"

// Tournament statuses.
const (
	TournamentUpcoming  = "upcoming"
	TournamentLive      = "live"
	TournamentCompleted = "completed"
)

// Tournament is a scheduled competition users register for.
type Tournament struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:255;not null" json:"name"`
	Slug string `gorm:"uniqueIndex;size:255" json:"slug"`

	Status          string     `gorm:"size:20;default:upcoming" json:"status"`
	PrizePool       int        `gorm:"default:0" json:"prize_pool"`
	MaxParticipants int        `gorm:"default:16" json:"max_participants"`
	StartDate       *time.Time `json:"start_date,omitempty"`
	Format          string     `gorm:"size:50;default:single-elimination" json:"format"`

	Participants []TournamentParticipant `gorm:"foreignKey:TournamentID" json:"-"`

	Timestamps
}

// TournamentParticipant registers one user into one tournament.
type TournamentParticipant struct {
	ID           uint `gorm:"primaryKey" json:"id"`
	TournamentID uint `gorm:"index;not null;uniqueIndex:idx_tournament_user" json:"tournament_id"`
	UserID       uint `gorm:"index;not null;uniqueIndex:idx_tournament_user" json:"user_id"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// NewsItem is a site news post.
type NewsItem struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Title    string `gorm:"size:255;not null" json:"title"`
	Category string `gorm:"size:50;default:update" json:"category"`
	Content  string `gorm:"type:text" json:"content"`
	AuthorID *uint  `json:"author_id,omitempty"`

	Author *User `gorm:"foreignKey:AuthorID" json:"-"`

	Timestamps
}
