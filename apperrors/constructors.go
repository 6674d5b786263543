package apperrors

import (
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// DefaultAPIMessage is used when a failed response carries no usable message
const DefaultAPIMessage = "API request failed"

// Backend API errors

// NewAPIError reports a non-2xx response from the user API.
func NewAPIError(method, endpoint string, status int, message string) *AppError {
	if message == "" {
		message = DefaultAPIMessage
	}
	return New(ErrCodeAPI, message, status).
		WithOperation("api_call").
		WithDetails("method", method).
		WithDetails("endpoint", endpoint).
		WithContext("subsystem", "api")
}

func NewNetworkError(method, endpoint string, err error) *AppError {
	return New(ErrCodeNetwork, "Could not reach the API server", fiber.StatusBadGateway).
		WithOperation("api_call").
		WithDetails("method", method).
		WithDetails("endpoint", endpoint).
		WithContext("subsystem", "api").
		WithInternal(err)
}

func NewDecodeError(endpoint string, err error) *AppError {
	return New(ErrCodeDecode, "Unexpected response from the API server", fiber.StatusBadGateway).
		WithOperation("decode_response").
		WithDetails("endpoint", endpoint).
		WithContext("subsystem", "api").
		WithInternal(err)
}

// Circuit breaker errors
func NewCircuitBreakerError(service string, state string) *AppError {
	return New(ErrCodeServiceUnavail, "Service temporarily unavailable", fiber.StatusServiceUnavailable).
		WithOperation("circuit_breaker_check").
		WithDetails("service", service).
		WithDetails("breaker_state", state).
		WithContext("subsystem", "circuit_breaker")
}

// User management errors

func NewUserNotFound(id int64) *AppError {
	return New(ErrCodeUserNotFound, "User not found", fiber.StatusNotFound).
		WithDetails("user_id", id)
}

func NewCancelled(operation string) *AppError {
	return New(ErrCodeCancelled, "Operation cancelled", http.StatusConflict).
		WithOperation(operation)
}

func NewValidationError(message string) *AppError {
	return New(ErrCodeValidationFailed, message, fiber.StatusBadRequest)
}

func NewBadRequest(message string) *AppError {
	if message == "" {
		message = "Bad request"
	}
	return New(ErrCodeInvalidInput, message, fiber.StatusBadRequest)
}

// Frontend generation errors

func NewRenderError(template string, err error) *AppError {
	return New(ErrCodeRenderFailed, fmt.Sprintf("Failed to render %s", template), fiber.StatusInternalServerError).
		WithOperation("render_template").
		WithDetails("template", template).
		WithContext("subsystem", "frontend").
		WithInternal(err)
}

func NewWriteError(path string, err error) *AppError {
	return New(ErrCodeWriteFailed, "Failed to write generated file", fiber.StatusInternalServerError).
		WithOperation("write_file").
		WithDetails("path", path).
		WithContext("subsystem", "frontend").
		WithInternal(err)
}

func NewInternalError(message string) *AppError {
	if message == "" {
		message = "An internal error occurred"
	}
	return New(ErrCodeInternal, message, fiber.StatusInternalServerError)
}

func NewRateLimitError() *AppError {
	return New(ErrCodeRateLimited, "Too many requests. Please try again later.", http.StatusTooManyRequests)
}
