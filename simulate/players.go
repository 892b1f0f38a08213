package simulate

import (
	"fmt"
	"math"
	"math/rand"
)

// Player is one roster entry of a simulated session. Created by
// GeneratePlayers when a session opens, immutable afterwards.
type Player struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Rating  int     `json:"rating"`
	Rank    string  `json:"rank"`
	Avatar  string  `json:"avatar"`
	WinRate float64 `json:"winRate"`
	KD      float64 `json:"kd"`
	Wins    int     `json:"wins"`
	Losses  int     `json:"losses"`
	IsYou   bool    `json:"isYou,omitempty"`
}

// RosterSize is the number of players in a simulated session.
const RosterSize = 10

var playerNames = []string{
	"s1mple",
	"ZywOo",
	"sh1ro",
	"electronic",
	"NiKo",
	"device",
	"Ax1Le",
	"nafany",
	"Perfecto",
	"b1t",
}

var ranks = []string{"Silver", "Gold", "Ruby", "Elite"}

// GeneratePlayers produces the roster for one simulated session: a fixed
// "you" entry followed by nine randomized opponents. The random source is
// explicit so callers can make the roster deterministic.
func GeneratePlayers(rnd *rand.Rand) []Player {
	players := make([]Player, 0, RosterSize)

	players = append(players, Player{
		ID:      "you",
		Name:    "You",
		Rating:  2847,
		Rank:    "Gold",
		Avatar:  "you",
		WinRate: 63.7,
		KD:      1.76,
		Wins:    156,
		Losses:  89,
		IsYou:   true,
	})

	for i := 0; i < RosterSize-1; i++ {
		wins := 50 + rnd.Intn(200)
		losses := 30 + rnd.Intn(150)
		winRate := math.Round(float64(wins)/float64(wins+losses)*1000) / 10

		players = append(players, Player{
			ID:      fmt.Sprintf("player-%d", i),
			Name:    fmt.Sprintf("%s%d", playerNames[rnd.Intn(len(playerNames))], rnd.Intn(1000)),
			Rating:  2500 + rnd.Intn(800),
			Rank:    ranks[rnd.Intn(len(ranks))],
			Avatar:  fmt.Sprintf("https://api.dicebear.com/7.x/avataaars/svg?seed=%d", i),
			WinRate: winRate,
			KD:      math.Round((0.8+rnd.Float64()*1.5)*100) / 100,
			Wins:    wins,
			Losses:  losses,
		})
	}

	return players
}
