package circuitbreaker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// RedisBreaker keeps its state in Redis so every instance of the service
// shares one view of the upstream.
//
// Keys under <prefix><name>:
//
//	open    set with a TTL of OpenCoolDown while the circuit is open
//	tripped set when the circuit opens, cleared by a successful probe
//	fails   failure counter, expires after FailWindow
//	probe   half-open lease, held by the one caller allowed through
type RedisBreaker struct {
	// Redis client used to read and update the circuit state.
	rdb *redis.Client
	// Name of the breaker, combined with the prefix when constructing redis keys.
	name string
	// Defines the behaviour and timing characteristics of the breaker.
	opts   Options
	logger *slog.Logger
}

type breakerKeys struct {
	open, tripped, fails, probe string
}

func NewRedisBreaker(rdb *redis.Client, name string, opts Options, logger *slog.Logger) *RedisBreaker {
	if logger == nil {
		logger = slog.Default()
	}

	return &RedisBreaker{
		rdb:  rdb,
		name: name,
		opts: opts.withDefaults(),
		logger: logger.With(
			slog.String("component", "circuitbreaker"),
			slog.String("breaker", name),
		),
	}
}

func (b *RedisBreaker) keys() breakerKeys {
	prefix := b.opts.Prefix + b.name + ":"
	return breakerKeys{
		open:    prefix + "open",
		tripped: prefix + "tripped",
		fails:   prefix + "fails",
		probe:   prefix + "probe",
	}
}

// State reports the current circuit state as seen from Redis.
func (b *RedisBreaker) State(ctx context.Context) (State, error) {
	k := b.keys()

	n, err := b.rdb.Exists(ctx, k.open).Result()
	if err != nil {
		return Closed, err
	}
	if n == 1 {
		return Open, nil
	}

	n, err = b.rdb.Exists(ctx, k.tripped).Result()
	if err != nil {
		return Closed, err
	}
	if n == 1 {
		return HalfOpen, nil
	}

	return Closed, nil
}

// Allow returns nil if the call may proceed, or ErrCircuitOpen if it must be blocked.
// In the half-open state only the holder of the probe lease is let through.
func (b *RedisBreaker) Allow(ctx context.Context) error {
	state, err := b.State(ctx)
	if err != nil {
		return b.blind(ctx, err)
	}

	switch state {
	case Open:
		return ErrCircuitOpen
	case HalfOpen:
		acquired, err := b.rdb.SetNX(ctx, b.keys().probe, "1", b.opts.HalfOpenLease).Result()
		if err != nil {
			return b.blind(ctx, err)
		}
		if !acquired {
			return ErrCircuitOpen
		}
		b.logger.InfoContext(ctx, "half-open probe allowed")
	}

	return nil
}

func (b *RedisBreaker) blind(ctx context.Context, err error) error {
	if b.opts.FailOpen {
		b.logger.WarnContext(ctx, "breaker state unavailable, failing open", slog.Any("err", err))
		return nil
	}
	b.logger.ErrorContext(ctx, "breaker state unavailable, failing closed", slog.Any("err", err))
	return fmt.Errorf("%w: %v", ErrBreakerUnavailable, err)
}

func (b *RedisBreaker) OnSuccess(ctx context.Context) {
	k := b.keys()

	closed, err := b.rdb.Del(ctx, k.tripped).Result()
	if err != nil {
		b.logger.WarnContext(ctx, "failed to record success", slog.Any("err", err))
		return
	}
	_ = b.rdb.Del(ctx, k.fails, k.probe).Err()

	if closed > 0 {
		b.logger.InfoContext(ctx, "circuit closed")
	}
}

func (b *RedisBreaker) OnFailure(ctx context.Context) {
	k := b.keys()

	// A failed probe reopens immediately.
	tripped, err := b.rdb.Exists(ctx, k.tripped).Result()
	if err != nil {
		b.logger.WarnContext(ctx, "failed to record failure", slog.Any("err", err))
		return
	}
	if tripped == 1 {
		b.open(ctx, k)
		return
	}

	fails, err := b.rdb.Incr(ctx, k.fails).Result()
	if err != nil {
		b.logger.WarnContext(ctx, "failed to record failure", slog.Any("err", err))
		return
	}

	ttl, err := b.rdb.PTTL(ctx, k.fails).Result()
	if err == nil && ttl < 0 {
		_ = b.rdb.PExpire(ctx, k.fails, b.opts.FailWindow).Err()
	}

	if int(fails) >= b.opts.FailureThreshold {
		b.open(ctx, k)
	}
}

// open breaker + reset counter
func (b *RedisBreaker) open(ctx context.Context, k breakerKeys) {
	_, err := b.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, k.open, "1", b.opts.OpenCoolDown)
		p.Set(ctx, k.tripped, "1", 0)
		p.Del(ctx, k.fails, k.probe)
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		b.logger.ErrorContext(ctx, "failed to open circuit", slog.Any("err", err))
		return
	}

	b.logger.WarnContext(ctx, "circuit opened", slog.Duration("cooldown", b.opts.OpenCoolDown))
}
