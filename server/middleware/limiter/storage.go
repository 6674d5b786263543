package limiter

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Storage spends tokens from the bucket stored under a key. Take must be
// atomic per key.
type Storage interface {
	Take(ctx context.Context, key string, rule Rule, now time.Time) (Result, error)

	// Reset clears all stored buckets
	Reset(ctx context.Context) error
}

type MemoryStorage struct {
	mu      sync.Mutex
	buckets map[string]*bucket
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		buckets: make(map[string]*bucket),
	}
}

func (s *MemoryStorage) Take(_ context.Context, key string, rule Rule, now time.Time) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, exists := s.buckets[key]
	if !exists {
		b = &bucket{Tokens: rule.Capacity, LastRefill: now}
		s.buckets[key] = b
	}
	return b.take(rule, now), nil
}

func (s *MemoryStorage) Reset(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buckets = make(map[string]*bucket)
	return nil
}

// takeScript is bucket.take run inside Redis so concurrent servers share
// one bucket per key. Times are unix milliseconds.
var takeScript = redis.NewScript(`
local capacity = tonumber(ARGV[1])
local rate = tonumber(ARGV[2])
local period = tonumber(ARGV[3])
local now = tonumber(ARGV[4])
local ttl = tonumber(ARGV[5])

local state = redis.call('HMGET', KEYS[1], 'tokens', 'ts')
local tokens = tonumber(state[1])
local ts = tonumber(state[2])
if tokens == nil or ts == nil then
	tokens = capacity
	ts = now
end

local periods = math.floor((now - ts) / period)
if periods > 0 then
	tokens = math.min(capacity, tokens + periods * rate)
	ts = ts + periods * period
end

local allowed = 0
local retry = 0
if tokens > 0 then
	tokens = tokens - 1
	allowed = 1
else
	retry = ts + period - now
end

redis.call('HSET', KEYS[1], 'tokens', tokens, 'ts', ts)
redis.call('PEXPIRE', KEYS[1], ttl)
return {allowed, tokens, retry}
`)

// RedisStorage keeps buckets in Redis hashes under "ratelimit:<key>"
type RedisStorage struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStorage stores buckets that expire after ttl of inactivity
func NewRedisStorage(client *redis.Client, ttl time.Duration) *RedisStorage {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RedisStorage{
		client: client,
		prefix: "ratelimit:",
		ttl:    ttl,
	}
}

func (s *RedisStorage) Take(ctx context.Context, key string, rule Rule, now time.Time) (Result, error) {
	vals, err := takeScript.Run(ctx, s.client, []string{s.prefix + key},
		rule.Capacity,
		rule.RefillRate,
		rule.RefillPeriod.Milliseconds(),
		now.UnixMilli(),
		s.ttl.Milliseconds(),
	).Int64Slice()
	if err != nil {
		return Result{}, fmt.Errorf("rate limit script: %w", err)
	}
	if len(vals) != 3 {
		return Result{}, fmt.Errorf("rate limit script: unexpected reply %v", vals)
	}

	return Result{
		Allowed:    vals[0] == 1,
		Remaining:  vals[1],
		RetryAfter: time.Duration(vals[2]) * time.Millisecond,
	}, nil
}

func (s *RedisStorage) Reset(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
