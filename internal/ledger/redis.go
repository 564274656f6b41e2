package ledger

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLedger stores each (user, day) entry as a redis set of task IDs with a
// TTL slightly past the lookahead window, so stale day keys expire on their
// own instead of requiring a prune pass.
type RedisLedger struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisLedger(client *redis.Client, ttlDays int) *RedisLedger {
	return &RedisLedger{
		client: client,
		ttl:    time.Duration(ttlDays) * 24 * time.Hour,
	}
}

func (l *RedisLedger) Contains(ctx context.Context, userID int64, day string, taskID int64) (bool, error) {
	ok, err := l.client.SIsMember(ctx, key(userID, day), taskID).Result()
	if err != nil {
		return false, fmt.Errorf("ledger contains: %w", err)
	}
	return ok, nil
}

func (l *RedisLedger) AddAll(ctx context.Context, userID int64, day string, taskIDs []int64) error {
	if len(taskIDs) == 0 {
		return nil
	}
	members := make([]interface{}, 0, len(taskIDs))
	for _, id := range taskIDs {
		members = append(members, strconv.FormatInt(id, 10))
	}
	k := key(userID, day)
	pipe := l.client.TxPipeline()
	pipe.SAdd(ctx, k, members...)
	pipe.Expire(ctx, k, l.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("ledger add: %w", err)
	}
	return nil
}

func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}
