package security

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

type Config struct {
	// ScriptSources for the CSP script-src directive
	ScriptSources []string

	// StyleSources for the CSP style-src directive
	StyleSources []string

	// ConnectSources for the CSP connect-src directive. The browser client
	// needs the user API here when it lives on another origin.
	ConnectSources []string

	// Development skips HSTS so plain http on localhost keeps working
	Development bool
}

var DefaultConfig = Config{
	ScriptSources:  []string{"'self'"},
	StyleSources:   []string{"'self'"},
	ConnectSources: []string{"'self'"},
}

// configDefault merges provided config with defaults
func configDefault(config ...Config) Config {
	if len(config) < 1 {
		return DefaultConfig
	}

	cfg := config[0]

	if len(cfg.ScriptSources) == 0 {
		cfg.ScriptSources = DefaultConfig.ScriptSources
	}
	if len(cfg.StyleSources) == 0 {
		cfg.StyleSources = DefaultConfig.StyleSources
	}
	if len(cfg.ConnectSources) == 0 {
		cfg.ConnectSources = DefaultConfig.ConnectSources
	}

	return cfg
}

// New sets the security headers on every response
func New(config ...Config) fiber.Handler {
	cfg := configDefault(config...)
	csp := buildCSP(cfg)

	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentSecurityPolicy, csp)
		c.Set(fiber.HeaderXContentTypeOptions, "nosniff")
		c.Set(fiber.HeaderXFrameOptions, "DENY")
		c.Set(fiber.HeaderReferrerPolicy, "strict-origin-when-cross-origin")
		c.Set(fiber.HeaderPermissionsPolicy, "geolocation=(), microphone=(), camera=()")

		if !cfg.Development {
			c.Set(fiber.HeaderStrictTransportSecurity, "max-age=31536000; includeSubDomains")
		}

		return c.Next()
	}
}

func buildCSP(cfg Config) string {
	directives := []string{
		"default-src 'self'",
		"script-src " + strings.Join(cfg.ScriptSources, " "),
		"style-src " + strings.Join(cfg.StyleSources, " "),
		"connect-src " + strings.Join(cfg.ConnectSources, " "),
		"img-src 'self' data:",
		"frame-ancestors 'none'",
		"base-uri 'self'",
		"form-action 'self'",
	}
	return strings.Join(directives, "; ")
}
