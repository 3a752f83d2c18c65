package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Options struct {
	Addr        string
	DB          int
	PingTimeout time.Duration
}

// OpenRedis connects and pings once; the client backs the idempotency store.
func OpenRedis(ctx context.Context, o Options) (*redis.Client, error) {
	if o.PingTimeout <= 0 {
		o.PingTimeout = 5 * time.Second
	}
	r := redis.NewClient(&redis.Options{Addr: o.Addr, DB: o.DB})
	ctx, cancel := context.WithTimeout(ctx, o.PingTimeout)
	defer cancel()
	if err := r.Ping(ctx).Err(); err != nil {
		_ = r.Close()
		return nil, fmt.Errorf("redis %s: %w", o.Addr, err)
	}
	return r, nil
}

// Probe adapts a client to the health check.
type Probe struct{ rdb redis.UniversalClient }

func NewProbe(rdb redis.UniversalClient) *Probe { return &Probe{rdb: rdb} }

func (p *Probe) Name() string { return "redis" }

func (p *Probe) Check(ctx context.Context) error { return p.rdb.Ping(ctx).Err() }
