package workers

import (
	"context"
	"time"

	"go.uber.org/zap"

	"champlink-platform/services"
)

// QueueWorker periodically pairs up players left waiting in the
// matchmaking queue. A join that found no immediate opponent returns
// "searching"; this worker is what turns that wait into a match.
type QueueWorker struct {
	mm       *services.MatchmakingService
	interval time.Duration
	log      *zap.Logger
}

func NewQueueWorker(mm *services.MatchmakingService, interval time.Duration, log *zap.Logger) *QueueWorker {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &QueueWorker{mm: mm, interval: interval, log: log}
}

func (w *QueueWorker) Start(ctx context.Context) {
	w.log.Info("starting queue pairing worker", zap.Duration("interval", w.interval))
	go w.run(ctx)
}

func (w *QueueWorker) run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info("queue pairing worker stopped")
			return
		case <-ticker.C:
			w.pairAll(ctx)
		}
	}
}

func (w *QueueWorker) pairAll(ctx context.Context) {
	for _, mode := range w.mm.GameModes {
		created, err := w.mm.PairWaiting(ctx, mode)
		if err != nil {
			w.log.Error("pairing pass failed",
				zap.String("game_mode", mode),
				zap.Error(err),
			)
			continue
		}
		if created > 0 {
			w.log.Info("paired waiting players",
				zap.String("game_mode", mode),
				zap.Int("matches", created),
			)
		}
	}
}
