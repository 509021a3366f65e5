package readiness

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// redisPinger is implemented by the real go-redis client and by test doubles.
type redisPinger interface {
	PingResult(ctx context.Context) (string, error)
	Close() error
}

// realRedisPinger adapts *redis.Client to the redisPinger interface.
type realRedisPinger struct {
	client *redis.Client
}

func (r *realRedisPinger) PingResult(ctx context.Context) (string, error) {
	return r.client.Ping(ctx).Result()
}

func (r *realRedisPinger) Close() error {
	return r.client.Close()
}

// RedisProber sends a PING and validates the PONG reply.
type RedisProber struct {
	// Addr is the host:port of the Redis server.
	Addr string
	// Password is the server password; empty disables AUTH.
	Password string

	pinger redisPinger
}

// NewRedisProber constructs a prober; the client is built lazily per probe.
func NewRedisProber(addr, password string) *RedisProber {
	return &RedisProber{Addr: addr, Password: password}
}

// Probe issues PING over the Redis protocol. AUTH failures and LOADING
// responses surface here even though the TCP port is already accepting.
func (p *RedisProber) Probe(ctx context.Context) error {
	pinger := p.pinger
	if pinger == nil {
		pinger = &realRedisPinger{
			client: redis.NewClient(&redis.Options{
				Addr:     p.Addr,
				Password: p.Password,
			}),
		}
		defer pinger.Close() //nolint:errcheck
	}

	val, err := pinger.PingResult(ctx)
	if err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	if val != "PONG" {
		return fmt.Errorf("unexpected PING response: %q", val)
	}
	return nil
}
