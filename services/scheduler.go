package services

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"

	"champlink-platform/models"
)

// StartTournamentScheduler runs the periodic housekeeping jobs: promoting
// tournaments whose start date has passed, and pruning expired queue
// entries. Returns the scheduler so the caller can shut it down.
func (s *MatchmakingService) StartTournamentScheduler() (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	sched.Start()

	// Every minute: flip upcoming tournaments whose start date has passed
	// to live.
	_, err = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			result := s.DB.Model(&models.Tournament{}).
				Where("status = ? AND start_date IS NOT NULL AND start_date <= ?",
					models.TournamentUpcoming, time.Now()).
				Update("status", models.TournamentLive)
			if result.Error != nil {
				s.Log.Error("tournament promotion failed", zap.Error(result.Error))
				return
			}
			if result.RowsAffected > 0 {
				s.Log.Info("tournaments went live", zap.Int64("count", result.RowsAffected))
			}
		}),
	)
	if err != nil {
		return nil, err
	}

	// Every five minutes: drop queue members whose ticket expired.
	_, err = sched.NewJob(
		gocron.DurationJob(5*time.Minute),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			for _, mode := range s.GameModes {
				if _, err := s.Queue.PruneStale(ctx, mode); err != nil {
					s.Log.Error("queue prune failed",
						zap.String("game_mode", mode),
						zap.Error(err),
					)
				}
				s.refreshQueueDepth(ctx, mode)
			}
		}),
	)
	if err != nil {
		return nil, err
	}

	return sched, nil
}
