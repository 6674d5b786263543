package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"useradmin/config"
	infraredis "useradmin/infrastructure/redis"
	"useradmin/pkg/breaker"
	"useradmin/pkg/logger"
	"useradmin/server"
	"useradmin/services/frontend"
	"useradmin/services/shell"
	"useradmin/services/users"

	"github.com/joho/godotenv"
)

const usage = `Usage: useradmin [command] [flags]

Commands:
  serve      run the preview server (default)
  generate   write the static frontend to a directory
  shell      manage users from the terminal

Run "useradmin <command> -h" for command flags.`

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatalf("Application failed: %v", err)
	}
}

func run(args []string) error {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cmd := "serve"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	switch cmd {
	case "serve":
		return serve(cfg, args)
	case "generate":
		return generate(cfg, args)
	case "shell":
		return runShell(cfg, args)
	case "help":
		fmt.Println(usage)
		return nil
	default:
		fmt.Fprintln(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// setupLogger installs the application logger. quiet moves stdout logging
// to stderr so it does not interleave with command output.
func setupLogger(cfg config.LogConfig, quiet bool) (*logger.Logger, error) {
	lcfg := logger.DefaultConfig(cfg.File)
	lcfg.Level = logger.ParseLevel(cfg.Level)
	if quiet && (cfg.File == "" || cfg.File == "-" || cfg.File == "stdout") {
		lcfg.Output = os.Stderr
	}

	appLog, err := logger.NewWithConfig(lcfg)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}
	logger.SetDefault(appLog)
	return appLog, nil
}

func serve(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	port := fs.Int("port", cfg.Server.Port, "listen port")
	api := fs.String("api", cfg.API.BaseURL, "user API base URL to proxy")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg.Server.Port = *port
	cfg.API.BaseURL = strings.TrimRight(*api, "/")
	if err := cfg.Validate(); err != nil {
		return err
	}

	appLog, err := setupLogger(cfg.Log, false)
	if err != nil {
		return err
	}
	defer appLog.Close()

	log.Println("✓ Configuration loaded and validated")
	cfg.PrintSummary()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	rdb, err := infraredis.NewClient(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to initialize Redis client: %w", err)
	}
	if rdb != nil {
		defer rdb.Close()
		log.Println("✓ Connected to Redis")
	}

	srv, err := server.NewServer(cfg, rdb, appLog)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			errChan <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		log.Printf("Received signal: %v. Shutting down gracefully...", sig)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Println("✓ Server shutdown complete")
	return nil
}

func generate(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	out := fs.String("out", cfg.Frontend.OutputDir, "output directory")
	api := fs.String("api", cfg.Frontend.APIBaseURL, "API base URL baked into the frontend")
	title := fs.String("title", cfg.Frontend.Title, "page title")
	if err := fs.Parse(args); err != nil {
		return err
	}

	appLog, err := setupLogger(cfg.Log, true)
	if err != nil {
		return err
	}
	defer appLog.Close()

	gen, err := frontend.New(frontend.Options{
		Title:               *title,
		APIBaseURL:          strings.TrimRight(*api, "/"),
		NotificationTimeout: cfg.Client.NotificationTimeout,
		Logger:              appLog,
	})
	if err != nil {
		return err
	}

	written, err := gen.Generate(*out)
	if err != nil {
		return err
	}
	for _, path := range written {
		fmt.Println("✓ wrote", path)
	}
	return nil
}

func runShell(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("shell", flag.ContinueOnError)
	api := fs.String("api", cfg.API.BaseURL, "user API base URL")
	if err := fs.Parse(args); err != nil {
		return err
	}

	appLog, err := setupLogger(cfg.Log, true)
	if err != nil {
		return err
	}
	defer appLog.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sh := shell.New(shell.Config{
		In:     os.Stdin,
		Out:    os.Stdout,
		Logger: appLog,
		Admin: users.Options{
			BaseURL:             strings.TrimRight(*api, "/"),
			NotificationTimeout: cfg.Client.NotificationTimeout,
			Breaker: breaker.Config{
				MinRequests:  cfg.Client.BreakerMinRequests,
				FailureRatio: cfg.Client.BreakerFailureRatio,
				Timeout:      cfg.Client.BreakerOpenTimeout,
			},
		},
	})

	if err := sh.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
