package limiter

import (
	"time"

	"useradmin/apperrors"

	"github.com/gofiber/fiber/v2"
)

// Config defines the configuration for the rate limiter
type Config struct {
	// Next defines a function to skip middleware.
	//
	// Optional. Default: nil
	Next func(c *fiber.Ctx) bool

	// Bucket size, the burst a single client may send
	//
	// Optional. Default: 100
	Capacity int64

	// Number of tokens to add per refill period
	//
	// Optional. Default: 10
	RefillRate int64

	// How often to refill tokens
	//
	// Optional. Default: 1 second
	RefillPeriod time.Duration

	// KeyGenerator identifies the client a bucket belongs to
	//
	// Optional. Default: uses IP address
	KeyGenerator func(c *fiber.Ctx) string

	// LimitReachedHandler is called when the bucket is empty
	//
	// Optional. Default: returns apperrors.NewRateLimitError
	LimitReachedHandler fiber.Handler

	// Storage holds the buckets
	//
	// Optional. Default: in-memory
	Storage Storage

	// OnStorageError is told about storage failures. The request is let
	// through.
	//
	// Optional. Default: nil
	OnStorageError func(c *fiber.Ctx, err error)
}

// ConfigDefault provides default configuration
var ConfigDefault = Config{
	Capacity:     100,
	RefillRate:   10,
	RefillPeriod: time.Second,
	KeyGenerator: func(c *fiber.Ctx) string {
		return c.IP()
	},
	LimitReachedHandler: func(c *fiber.Ctx) error {
		return apperrors.NewRateLimitError()
	},
}

func configDefault(config ...Config) Config {
	if len(config) < 1 {
		cfg := ConfigDefault
		cfg.Storage = NewMemoryStorage()
		return cfg
	}

	cfg := config[0]

	if cfg.Capacity <= 0 {
		cfg.Capacity = ConfigDefault.Capacity
	}
	if cfg.RefillRate <= 0 {
		cfg.RefillRate = ConfigDefault.RefillRate
	}
	if cfg.RefillPeriod <= 0 {
		cfg.RefillPeriod = ConfigDefault.RefillPeriod
	}
	if cfg.KeyGenerator == nil {
		cfg.KeyGenerator = ConfigDefault.KeyGenerator
	}
	if cfg.LimitReachedHandler == nil {
		cfg.LimitReachedHandler = ConfigDefault.LimitReachedHandler
	}
	if cfg.Storage == nil {
		cfg.Storage = NewMemoryStorage()
	}

	return cfg
}

func (cfg Config) rule() Rule {
	return Rule{
		Capacity:     cfg.Capacity,
		RefillRate:   cfg.RefillRate,
		RefillPeriod: cfg.RefillPeriod,
	}
}
