package limiter

import (
	"math"
	"strconv"
	"time"

	"useradmin/pkg/metrics"

	"github.com/gofiber/fiber/v2"
)

// Rule is the token bucket a key is measured against
type Rule struct {
	Capacity     int64
	RefillRate   int64
	RefillPeriod time.Duration
}

// Result of taking one token
type Result struct {
	Allowed    bool
	Remaining  int64
	RetryAfter time.Duration
}

// bucket is the persisted state of one key
type bucket struct {
	Tokens     int64     `json:"tokens"`
	LastRefill time.Time `json:"last_refill"`
}

// take refills b for the periods elapsed since its last refill and then
// spends one token if there is one.
func (b *bucket) take(rule Rule, now time.Time) Result {
	if elapsed := now.Sub(b.LastRefill); elapsed >= rule.RefillPeriod {
		periods := int64(elapsed / rule.RefillPeriod)
		b.Tokens = min(rule.Capacity, b.Tokens+periods*rule.RefillRate)
		b.LastRefill = b.LastRefill.Add(time.Duration(periods) * rule.RefillPeriod)
	}

	if b.Tokens > 0 {
		b.Tokens--
		return Result{Allowed: true, Remaining: b.Tokens}
	}
	return Result{
		Allowed:    false,
		RetryAfter: b.LastRefill.Add(rule.RefillPeriod).Sub(now),
	}
}

func New(config ...Config) fiber.Handler {
	cfg := configDefault(config...)
	rule := cfg.rule()
	limit := strconv.FormatInt(cfg.Capacity, 10)

	return func(c *fiber.Ctx) error {
		if cfg.Next != nil && cfg.Next(c) {
			return c.Next()
		}

		res, err := cfg.Storage.Take(c.UserContext(), cfg.KeyGenerator(c), rule, time.Now())
		if err != nil {
			if cfg.OnStorageError != nil {
				cfg.OnStorageError(c, err)
			}
			return c.Next()
		}

		c.Set("X-RateLimit-Limit", limit)
		c.Set("X-RateLimit-Remaining", strconv.FormatInt(res.Remaining, 10))

		if !res.Allowed {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(math.Ceil(res.RetryAfter.Seconds()))))
			metrics.IncrementRateLimitExceeded(metrics.SanitizePath(c.Path()))
			return cfg.LimitReachedHandler(c)
		}

		return c.Next()
	}
}
