package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server    ServerConfig
	API       APIConfig
	Client    ClientConfig
	Frontend  FrontendConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Development  bool
}

// APIConfig points at the user REST API
type APIConfig struct {
	BaseURL string
}

type ClientConfig struct {
	NotificationTimeout time.Duration
	BreakerMinRequests  uint32
	BreakerFailureRatio float64
	BreakerOpenTimeout  time.Duration
}

type FrontendConfig struct {
	// OutputDir is where `generate` writes the static frontend
	OutputDir string
	// APIBaseURL is the base URL baked into the generated script
	APIBaseURL string
	Title      string
}

// RedisConfig is optional; an empty Address keeps rate limiting in memory
type RedisConfig struct {
	Address  string
	Username string
	Password string
	DB       int
}

type RateLimitConfig struct {
	Capacity     int64
	RefillRate   int64
	RefillPeriod time.Duration
}

type LogConfig struct {
	File  string
	Level string
}

// getProjectRoot finds the project root by looking for go.mod
func getProjectRoot() (string, error) {
	if projectRoot := os.Getenv("PROJECT_ROOT"); projectRoot != "" {
		return projectRoot, nil
	}

	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Not inside the source tree; resolve against the working directory
			return os.Getwd()
		}
		dir = parent
	}
}

// resolvePath resolves a path relative to the project root if it's not absolute
func resolvePath(path string) (string, error) {
	if path == "" || path == "-" || path == "stdout" || filepath.IsAbs(path) {
		return path, nil
	}

	projectRoot, err := getProjectRoot()
	if err != nil {
		return "", err
	}

	return filepath.Join(projectRoot, path), nil
}

func Load() (*Config, error) {
	outputDir, err := resolvePath(getEnv("FRONTEND_OUTPUT_DIR", "./dist"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve output directory: %w", err)
	}

	logFile, err := resolvePath(getEnv("LOG_FILE", "stdout"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve log file: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         getEnvAsInt("SERVER_PORT", 3000),
			ReadTimeout:  getEnvAsDuration("READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getEnvAsDuration("WRITE_TIMEOUT", 30*time.Second),
			Development:  getEnv("APP_ENV", "production") == "development",
		},
		API: APIConfig{
			BaseURL: strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:8080/api"), "/"),
		},
		Client: ClientConfig{
			NotificationTimeout: getEnvAsDuration("NOTIFICATION_TIMEOUT", 5*time.Second),
			BreakerMinRequests:  uint32(getEnvAsInt("BREAKER_MIN_REQUESTS", 5)),
			BreakerFailureRatio: getEnvAsFloat("BREAKER_FAILURE_RATIO", 0.5),
			BreakerOpenTimeout:  getEnvAsDuration("BREAKER_OPEN_TIMEOUT", 30*time.Second),
		},
		Frontend: FrontendConfig{
			OutputDir:  outputDir,
			APIBaseURL: strings.TrimRight(getEnv("FRONTEND_API_BASE_URL", "/api"), "/"),
			Title:      getEnv("FRONTEND_TITLE", "User Management"),
		},
		Redis: RedisConfig{
			Address:  getEnv("REDIS_ADDR", ""),
			Username: getEnv("REDIS_USERNAME", "default"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		RateLimit: RateLimitConfig{
			Capacity:     getEnvAsInt64("RATE_LIMIT_CAPACITY", 200),
			RefillRate:   getEnvAsInt64("RATE_LIMIT_REFILL", 20),
			RefillPeriod: getEnvAsDuration("RATE_LIMIT_PERIOD", time.Second),
		},
		Log: LogConfig{
			File:  logFile,
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	var errors []string

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid server port: %d (must be 1-65535)", c.Server.Port))
	}

	if c.API.BaseURL == "" {
		errors = append(errors, "API base URL (API_BASE_URL) is required")
	} else if u, err := url.Parse(c.API.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errors = append(errors, fmt.Sprintf("API base URL must be absolute: %q", c.API.BaseURL))
	}

	if c.Frontend.APIBaseURL == "" {
		errors = append(errors, "frontend API base URL (FRONTEND_API_BASE_URL) is required")
	}
	if c.Frontend.OutputDir == "" {
		errors = append(errors, "frontend output directory (FRONTEND_OUTPUT_DIR) is required")
	}

	if c.Client.NotificationTimeout <= 0 {
		errors = append(errors, "notification timeout must be > 0")
	}
	if c.Client.BreakerFailureRatio <= 0 || c.Client.BreakerFailureRatio > 1 {
		errors = append(errors, fmt.Sprintf("breaker failure ratio must be in (0, 1]: %v", c.Client.BreakerFailureRatio))
	}
	if c.Client.BreakerOpenTimeout <= 0 {
		errors = append(errors, "breaker open timeout must be > 0")
	}

	if c.RateLimit.Capacity <= 0 {
		errors = append(errors, "rate limit capacity must be > 0")
	}
	if c.RateLimit.RefillRate <= 0 {
		errors = append(errors, "rate limit refill rate must be > 0")
	}
	if c.RateLimit.RefillPeriod <= 0 {
		errors = append(errors, "rate limit refill period must be > 0")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

func (c *Config) ServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// PrintSummary prints a summary of the loaded configuration
func (c *Config) PrintSummary() {
	fmt.Println("Configuration Summary:")
	fmt.Printf("  Server: %s\n", c.ServerAddress())
	fmt.Printf("  User API: %s\n", c.API.BaseURL)
	fmt.Printf("  Frontend API base: %s (output: %s)\n", c.Frontend.APIBaseURL, c.Frontend.OutputDir)
	fmt.Printf("  Notification timeout: %s\n", c.Client.NotificationTimeout)
	if c.Redis.Address != "" {
		fmt.Printf("  Redis: %s (DB: %d)\n", c.Redis.Address, c.Redis.DB)
	} else {
		fmt.Println("  Redis: disabled (in-memory rate limiting)")
	}
	fmt.Printf("  Rate Limit: %d requests/%s (capacity: %d)\n",
		c.RateLimit.RefillRate, c.RateLimit.RefillPeriod, c.RateLimit.Capacity)
}

// Helper functions to read environment variables with defaults
func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if val, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return val
	}
	return defaultVal
}

func getEnvAsInt64(key string, defaultVal int64) int64 {
	if val, err := strconv.ParseInt(os.Getenv(key), 10, 64); err == nil {
		return val
	}
	return defaultVal
}

func getEnvAsFloat(key string, defaultVal float64) float64 {
	if val, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return val
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if val, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return val
	}
	return defaultVal
}
