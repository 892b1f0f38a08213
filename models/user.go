package models

import (
	"time"

	"gorm.io/gorm"
)

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// User is a registered player account. New accounts start with 100 points
// at level 1.
type User struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	Username     string  `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email        string  `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string  `gorm:"not null" json:"-"`
	DisplayName  string  `gorm:"size:100" json:"displayName"`
	AvatarURL    *string `json:"avatarUrl,omitempty"`

	Points int `gorm:"default:100" json:"points"`
	Level  int `gorm:"default:1" json:"level"`
	Wins   int `gorm:"default:0" json:"wins"`
	Losses int `gorm:"default:0" json:"losses"`

	IsAdmin  bool `gorm:"default:false" json:"isAdmin"`
	IsActive bool `gorm:"default:true" json:"-"`

	Timestamps
}

// SkillRating is the matchmaking score: accumulated points plus a level
// bonus, matching what the queue matches on.
func (u *User) SkillRating() int {
	return u.Points + u.Level*100
}

// WinRate returns the win percentage rounded to one decimal.
func (u *User) WinRate() float64 {
	total := u.Wins + u.Losses
	if total == 0 {
		return 0
	}
	return float64(int(float64(u.Wins)/float64(total)*1000+0.5)) / 10
}
