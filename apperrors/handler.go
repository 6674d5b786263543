package apperrors

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Printer is satisfied by *log.Logger and *logger.Logger
type Printer interface {
	Printf(format string, args ...any)
}

// HandlerConfig configures the error handler
type HandlerConfig struct {
	// Logger for error logging
	Logger Printer

	// ShowInternalErrors shows internal error details in responses (dev only)
	ShowInternalErrors bool

	// OnError is called for each error (useful for metrics/monitoring)
	OnError func(c *fiber.Ctx, err *AppError)
}

// DefaultHandlerConfig returns sensible defaults
func DefaultHandlerConfig() HandlerConfig {
	return HandlerConfig{
		Logger:             log.Default(),
		ShowInternalErrors: false,
		OnError:            nil,
	}
}

// Handler creates a Fiber error handler middleware
func Handler(config HandlerConfig) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		appErr := FromError(err)

		if config.Logger != nil {
			logError(config.Logger, c, appErr)
		}

		if config.OnError != nil {
			config.OnError(c, appErr)
		}

		if strings.HasPrefix(c.Path(), "/api") {
			return handleAPIError(c, appErr, config.ShowInternalErrors)
		}

		return handleBrowserError(c, appErr)
	}
}

// handleAPIError returns JSON shaped like the user API's own errors, so the
// generated frontend can read `error` and `message` the same way.
func handleAPIError(c *fiber.Ctx, err *AppError, showInternal bool) error {
	response := fiber.Map{
		"success": false,
		"code":    err.Code,
		"message": err.Message,
		"error":   err.Message,
	}

	if len(err.Details) > 0 {
		response["details"] = err.Details
	}

	if showInternal && err.Internal != nil {
		response["internal"] = err.Internal.Error()
	}

	return c.Status(err.StatusCode).JSON(response)
}

// handleBrowserError returns full HTML pages for browser requests
func handleBrowserError(c *fiber.Ctx, err *AppError) error {
	renderErr := c.Status(err.StatusCode).Render("error", fiber.Map{
		"Code":    err.Code,
		"Message": err.Message,
		"Status":  err.StatusCode,
	})

	// Fallback to plain text if render fails
	if renderErr != nil {
		return c.Status(err.StatusCode).SendString(err.Message)
	}

	return nil
}

// logError logs the error with request context
func logError(logger Printer, c *fiber.Ctx, err *AppError) {
	// Don't log expected errors at error level
	if err.StatusCode < 500 {
		logger.Printf("[WARN] %s %s | %s | Status: %d",
			c.Method(), c.Path(), err.Error(), err.StatusCode)
		return
	}

	logger.Printf("[ERROR] %s %s | %s | Status: %d | IP: %s",
		c.Method(), c.Path(), err.Error(), err.StatusCode, c.IP())

	if err.Internal != nil {
		logger.Printf("[ERROR] Internal error: %+v", err.Internal)
	}
}

// WrapHandler wraps a handler so returned errors are converted to AppErrors
func WrapHandler(h func(*fiber.Ctx) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := h(c)
		if err == nil {
			return nil
		}
		return FromError(err)
	}
}
