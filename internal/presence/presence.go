// Package presence tracks which users are online across API instances.
//
// Each user maps to a connection count in a Redis hash, so a user with two
// open tabs stays online when one closes. The hash is shared by every
// instance; the online list any instance reads is the cluster-wide view.
package presence

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/Neeraj110/chatApp/pkg/metrics"
)

const key = "chat:online"

// Tracker maintains per-user connection counts in Redis.
type Tracker struct {
	rdb *redis.Client
}

// NewTracker returns a tracker over an established Redis client.
func NewTracker(rdb *redis.Client) *Tracker {
	return &Tracker{rdb: rdb}
}

// Connect records one more connection for the user and returns the online
// list including them.
func (t *Tracker) Connect(ctx context.Context, userID string) ([]string, error) {
	if err := t.rdb.HIncrBy(ctx, key, userID, 1).Err(); err != nil {
		return nil, err
	}
	return t.online(ctx)
}

// Disconnect records one fewer connection for the user, dropping them from
// the online set when their last connection closes, and returns the updated
// online list.
func (t *Tracker) Disconnect(ctx context.Context, userID string) ([]string, error) {
	n, err := t.rdb.HIncrBy(ctx, key, userID, -1).Result()
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		if err := t.rdb.HDel(ctx, key, userID).Err(); err != nil {
			return nil, err
		}
	}
	return t.online(ctx)
}

// Online returns the ids of every user with at least one open connection.
func (t *Tracker) Online(ctx context.Context) ([]string, error) {
	return t.online(ctx)
}

// Ping reports whether Redis is reachable.
func (t *Tracker) Ping(ctx context.Context) error {
	return t.rdb.Ping(ctx).Err()
}

func (t *Tracker) online(ctx context.Context) ([]string, error) {
	fields, err := t.rdb.HKeys(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	metrics.OnlineUsers.Set(float64(len(fields)))
	return fields, nil
}
