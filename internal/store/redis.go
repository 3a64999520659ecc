package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// healthTimeout bounds a /healthz ping so a dead redis cannot stall the probe.
const healthTimeout = 500 * time.Millisecond

// Redis holds the client backing the audit fan-out queue.
type Redis struct {
	Client *redis.Client
	Addr   string
}

// NewRedis does not dial; the first command or Healthy call does.
func NewRedis(addr string) *Redis {
	return &Redis{
		Addr: addr,
		Client: redis.NewClient(&redis.Options{
			Addr:         addr,
			DialTimeout:  2 * time.Second,
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
			MaxRetries:   1,
		}),
	}
}

func (r *Redis) Healthy(ctx context.Context) bool {
	if r == nil || r.Client == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()
	return r.Client.Ping(ctx).Err() == nil
}

func (r *Redis) Close() error {
	if r == nil || r.Client == nil {
		return nil
	}
	return r.Client.Close()
}
