package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"champlink-platform/models"
)

func TestMatchPoints(t *testing.T) {
	winner, loser := MatchPoints(16, 12)
	assert.Equal(t, 10+28*2, winner)
	assert.Equal(t, 28, loser)

	// A forfeit with no rounds still pays the loser one point.
	winner, loser = MatchPoints(0, 0)
	assert.Equal(t, 10, winner)
	assert.Equal(t, 1, loser)

	winner, loser = MatchPoints(1, 0)
	assert.Equal(t, 12, winner)
	assert.Equal(t, 1, loser)
}

func ticket(userID uint, rating int, joined time.Time) models.QueueTicket {
	return models.QueueTicket{
		UserID:      userID,
		GameMode:    "classic",
		SkillRating: rating,
		JoinedAt:    joined,
	}
}

func TestPickOpponentClosestRating(t *testing.T) {
	now := time.Now()
	self := ticket(1, 500, now)
	candidates := []models.QueueTicket{
		ticket(2, 650, now),
		ticket(3, 520, now),
		ticket(4, 400, now),
	}

	got := pickOpponent(candidates, &self)
	assert.NotNil(t, got)
	assert.Equal(t, uint(3), got.UserID)
}

func TestPickOpponentSkipsSelfAndOtherModes(t *testing.T) {
	now := time.Now()
	self := ticket(1, 500, now)

	other := ticket(2, 500, now)
	other.GameMode = "1v1"
	candidates := []models.QueueTicket{
		ticket(1, 500, now), // self, same rating
		other,
	}
	assert.Nil(t, pickOpponent(candidates, &self))
}

func TestPickOpponentTieBreaksOnOldestTicket(t *testing.T) {
	now := time.Now()
	self := ticket(1, 500, now)
	candidates := []models.QueueTicket{
		ticket(2, 550, now),
		ticket(3, 450, now.Add(-time.Minute)), // same distance, waited longer
	}

	got := pickOpponent(candidates, &self)
	assert.NotNil(t, got)
	assert.Equal(t, uint(3), got.UserID)
}

func TestPickOpponentEmpty(t *testing.T) {
	self := ticket(1, 500, time.Now())
	assert.Nil(t, pickOpponent(nil, &self))
}

func TestRatingWindowWidensWithWait(t *testing.T) {
	s := &MatchmakingService{MaxRatingDiff: 200}

	assert.Equal(t, 200, s.ratingWindow(0))
	assert.Equal(t, 200, s.ratingWindow(29*time.Second))
	assert.Equal(t, 250, s.ratingWindow(30*time.Second))
	assert.Equal(t, 300, s.ratingWindow(time.Minute))
	assert.Equal(t, 1000, s.ratingWindow(time.Hour), "window is capped")
}
