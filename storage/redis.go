// Package storage holds the Redis-backed matchmaking queue. Each game mode
// gets a sorted set scored by skill rating; each queued user gets a ticket
// key with a TTL so abandoned entries age out on their own.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"champlink-platform/models"
)

// ErrNotQueued is returned when a user has no active queue ticket.
var ErrNotQueued = errors.New("user is not in the queue")

const ticketTTL = 30 * time.Minute

// QueueStore manages matchmaking queue state in Redis.
type QueueStore struct {
	client *redis.Client
	logger *zap.Logger
}

func NewQueueStore(addr, password string, db int, logger *zap.Logger) (*QueueStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &QueueStore{client: client, logger: logger}, nil
}

func (s *QueueStore) Close() error {
	return s.client.Close()
}

// Enqueue adds a ticket to its game mode's queue.
func (s *QueueStore) Enqueue(ctx context.Context, ticket *models.QueueTicket) error {
	raw, err := json.Marshal(ticket)
	if err != nil {
		return fmt.Errorf("failed to marshal ticket: %w", err)
	}

	member := strconv.FormatUint(uint64(ticket.UserID), 10)
	if err := s.client.ZAdd(ctx, s.queueKey(ticket.GameMode), &redis.Z{
		Score:  float64(ticket.SkillRating),
		Member: member,
	}).Err(); err != nil {
		return fmt.Errorf("failed to add ticket to queue: %w", err)
	}

	if err := s.client.Set(ctx, s.ticketKey(ticket.UserID), raw, ticketTTL).Err(); err != nil {
		return fmt.Errorf("failed to store ticket: %w", err)
	}

	s.logger.Info("user joined queue",
		zap.Uint("user_id", ticket.UserID),
		zap.String("game_mode", ticket.GameMode),
		zap.Int("skill_rating", ticket.SkillRating),
	)
	return nil
}

// Ticket returns the user's active queue ticket, or ErrNotQueued.
func (s *QueueStore) Ticket(ctx context.Context, userID uint) (*models.QueueTicket, error) {
	raw, err := s.client.Get(ctx, s.ticketKey(userID)).Result()
	if err == redis.Nil {
		return nil, ErrNotQueued
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}

	var ticket models.QueueTicket
	if err := json.Unmarshal([]byte(raw), &ticket); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ticket: %w", err)
	}
	return &ticket, nil
}

// Remove deletes the user's queue entry. Removing an absent user is not
// an error; leave is best-effort from the caller's perspective.
func (s *QueueStore) Remove(ctx context.Context, userID uint) error {
	ticket, err := s.Ticket(ctx, userID)
	if errors.Is(err, ErrNotQueued) {
		return nil
	}
	if err != nil {
		return err
	}

	member := strconv.FormatUint(uint64(userID), 10)
	if err := s.client.ZRem(ctx, s.queueKey(ticket.GameMode), member).Err(); err != nil {
		return fmt.Errorf("failed to remove from queue: %w", err)
	}
	if err := s.client.Del(ctx, s.ticketKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to delete ticket: %w", err)
	}

	s.logger.Info("user left queue", zap.Uint("user_id", userID))
	return nil
}

// Candidates returns queued tickets for a game mode within a skill rating
// window, ordered by rating. Entries whose ticket has expired are skipped.
func (s *QueueStore) Candidates(ctx context.Context, gameMode string, minRating, maxRating int, limit int64) ([]models.QueueTicket, error) {
	ids, err := s.client.ZRangeByScore(ctx, s.queueKey(gameMode), &redis.ZRangeBy{
		Min:   strconv.Itoa(minRating),
		Max:   strconv.Itoa(maxRating),
		Count: limit,
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to range queue: %w", err)
	}

	tickets := make([]models.QueueTicket, 0, len(ids))
	for _, id := range ids {
		userID, err := strconv.ParseUint(id, 10, 64)
		if err != nil {
			continue
		}
		ticket, err := s.Ticket(ctx, uint(userID))
		if errors.Is(err, ErrNotQueued) {
			continue
		}
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, *ticket)
	}
	return tickets, nil
}

// All returns every queued ticket for a game mode.
func (s *QueueStore) All(ctx context.Context, gameMode string, limit int64) ([]models.QueueTicket, error) {
	return s.Candidates(ctx, gameMode, 0, math.MaxInt32, limit)
}

// Size returns the number of queued entries for a game mode.
func (s *QueueStore) Size(ctx context.Context, gameMode string) (int64, error) {
	return s.client.ZCard(ctx, s.queueKey(gameMode)).Result()
}

// PruneStale drops queue members whose ticket key has expired, and returns
// how many were removed.
func (s *QueueStore) PruneStale(ctx context.Context, gameMode string) (int, error) {
	ids, err := s.client.ZRange(ctx, s.queueKey(gameMode), 0, -1).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to list queue: %w", err)
	}

	pruned := 0
	for _, id := range ids {
		exists, err := s.client.Exists(ctx, "mm:ticket:"+id).Result()
		if err != nil {
			return pruned, err
		}
		if exists == 0 {
			if err := s.client.ZRem(ctx, s.queueKey(gameMode), id).Err(); err != nil {
				return pruned, err
			}
			pruned++
		}
	}

	if pruned > 0 {
		s.logger.Info("pruned stale queue entries",
			zap.String("game_mode", gameMode),
			zap.Int("count", pruned),
		)
	}
	return pruned, nil
}

func (s *QueueStore) queueKey(gameMode string) string {
	return "mm:queue:" + gameMode
}

func (s *QueueStore) ticketKey(userID uint) string {
	return fmt.Sprintf("mm:ticket:%d", userID)
}
