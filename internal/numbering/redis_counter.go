package numbering

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Advancer records that every sequence below next has been taken.
type Advancer interface {
	Advance(ctx context.Context, next int64) error
}

// SeedFunc returns the first sequence a fresh counter should hand out.
type SeedFunc func(ctx context.Context) (int64, error)

// RedisCounter reserves sequences with INCR on a shared key.
// The key is seeded once, under a distributed lock, from SeedFunc.
type RedisCounter struct {
	rdb     *redis.Client
	locker  *redislock.Client
	key     string
	seed    SeedFunc
	sink    Advancer
	lockTTL time.Duration
	log     zerolog.Logger
}

// NewRedisCounter builds a counter on key. sink may be nil; when set it is told
// about every reservation so that database proposals stay in step.
func NewRedisCounter(rdb *redis.Client, key string, seed SeedFunc, sink Advancer, log zerolog.Logger) *RedisCounter {
	return &RedisCounter{
		rdb:     rdb,
		locker:  redislock.New(rdb),
		key:     key,
		seed:    seed,
		sink:    sink,
		lockTTL: 10 * time.Second,
		log:     log,
	}
}

// Reserve increments the counter and returns the claimed sequence.
func (c *RedisCounter) Reserve(ctx context.Context) (int64, error) {
	n, err := c.rdb.Exists(ctx, c.key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis exists %s: %w", c.key, err)
	}
	if n == 0 {
		if err := c.ensureSeeded(ctx); err != nil {
			return 0, err
		}
	}
	seq, err := c.rdb.Incr(ctx, c.key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis incr %s: %w", c.key, err)
	}
	if c.sink != nil {
		if err := c.sink.Advance(ctx, seq+1); err != nil {
			c.log.Warn().Err(err).Int64("sequence", seq).Msg("failed to record reserved invoice sequence")
		}
	}
	return seq, nil
}

func (c *RedisCounter) ensureSeeded(ctx context.Context) error {
	opts := &redislock.Options{RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(20*time.Millisecond), 100)}
	lock, err := c.locker.Obtain(ctx, "lock:"+c.key, c.lockTTL, opts)
	if errors.Is(err, redislock.ErrNotObtained) {
		return fmt.Errorf("could not obtain seeding lock for %s: %w", c.key, err)
	} else if err != nil {
		return fmt.Errorf("obtain seeding lock for %s: %w", c.key, err)
	}
	defer func() {
		_ = lock.Release(ctx)
	}()

	n, err := c.rdb.Exists(ctx, c.key).Result()
	if err != nil {
		return fmt.Errorf("redis exists %s: %w", c.key, err)
	}
	if n > 0 {
		return nil
	}
	first, err := c.seed(ctx)
	if err != nil {
		return fmt.Errorf("seed %s: %w", c.key, err)
	}
	if first < Baseline {
		first = Baseline
	}
	// INCR hands out first on the next call
	if err := c.rdb.SetNX(ctx, c.key, first-1, 0).Err(); err != nil {
		return fmt.Errorf("redis setnx %s: %w", c.key, err)
	}
	c.log.Info().Str("key", c.key).Int64("first", first).Msg("invoice counter seeded")
	return nil
}

// SeedFromSource seeds a counter with the proposal policy of src.
func SeedFromSource(src Source, prefix string) SeedFunc {
	return func(ctx context.Context) (int64, error) {
		return nextFrom(ctx, src, prefix)
	}
}

// raiseScript sets KEYS[1] to ARGV[1] unless it already holds a larger value.
var raiseScript = redis.NewScript(`
local cur = tonumber(redis.call('GET', KEYS[1]) or '0')
local want = tonumber(ARGV[1])
if cur < want then
  redis.call('SET', KEYS[1], want)
end
return 0
`)

// Advance makes the next reservation return at least next. The counter never goes back.
func (c *RedisCounter) Advance(ctx context.Context, next int64) error {
	if err := raiseScript.Run(ctx, c.rdb, []string{c.key}, next-1).Err(); err != nil {
		return fmt.Errorf("redis raise %s: %w", c.key, err)
	}
	return nil
}
