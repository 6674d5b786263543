package users

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"useradmin/apperrors"
	"useradmin/pkg/breaker"
	"useradmin/pkg/logger"
	"useradmin/pkg/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sony/gobreaker"
)

// APIClient is the shared request wrapper for the user API. Every call
// holds the loading indicator for its duration, normalizes failures into
// AppErrors, logs them and surfaces them as an error notification.
type APIClient struct {
	baseURL  string
	cb       *gobreaker.CircuitBreaker
	loading  *Loading
	notifier *Notifier
	log      *logger.Logger
}

type APIClientConfig struct {
	BaseURL  string
	Breaker  breaker.Config
	Loading  *Loading
	Notifier *Notifier
	Logger   *logger.Logger
}

func NewAPIClient(cfg APIClientConfig) *APIClient {
	if cfg.Breaker.Name == "" {
		cfg.Breaker.Name = "user-api"
	}
	if cfg.Breaker.IsSuccessful == nil {
		cfg.Breaker.IsSuccessful = countsAsSuccess
	}
	if cfg.Loading == nil {
		cfg.Loading = NewLoading(nil)
	}
	if cfg.Notifier == nil {
		cfg.Notifier = NewNotifier(DefaultNotificationTimeout, nil)
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.GetDefault()
	}

	return &APIClient{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		cb:       breaker.New(cfg.Breaker),
		loading:  cfg.Loading,
		notifier: cfg.Notifier,
		log:      cfg.Logger.Component("api"),
	}
}

// BaseURL returns the API root every endpoint is resolved against
func (c *APIClient) BaseURL() string {
	return c.baseURL
}

// countsAsSuccess keeps client-side (4xx) failures from tripping the breaker
func countsAsSuccess(err error) bool {
	if err == nil {
		return true
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Code == apperrors.ErrCodeAPI && appErr.StatusCode < 500
	}
	return false
}

type rawResponse struct {
	status int
	body   []byte
}

// Do sends a JSON request to endpoint and decodes a 2xx body into out.
// out may be nil when the response body is not needed.
func (c *APIClient) Do(ctx context.Context, method, endpoint string, body, out any) error {
	release := c.loading.Acquire()
	defer release()

	start := time.Now()
	status := "error"
	defer func() {
		metrics.RecordAPICall(method, metrics.SanitizePath(endpoint), status, time.Since(start).Seconds())
	}()

	result, err := breaker.ExecuteCtx(ctx, c.cb, func() (interface{}, error) {
		resp, err := c.send(method, endpoint, body)
		if err != nil {
			return nil, err
		}
		if resp.status < 200 || resp.status > 299 {
			return resp, apperrors.NewAPIError(method, endpoint, resp.status, extractMessage(resp.body))
		}
		return resp, nil
	})
	if resp, ok := result.(*rawResponse); ok && resp != nil {
		status = strconv.Itoa(resp.status)
	}

	if err != nil {
		return c.fail(c.normalize(method, endpoint, err))
	}

	resp := result.(*rawResponse)
	if out == nil || len(resp.body) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.body, out); err != nil {
		return c.fail(apperrors.NewDecodeError(endpoint, err))
	}
	return nil
}

func (c *APIClient) send(method, endpoint string, body any) (*rawResponse, error) {
	a := fiber.AcquireAgent()
	req := a.Request()
	req.Header.SetMethod(method)
	req.SetRequestURI(c.baseURL + endpoint)

	a.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	a.Set(fiber.HeaderXRequestID, uuid.NewString())
	if body != nil {
		a.JSON(body)
	} else {
		a.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}

	if err := a.Parse(); err != nil {
		fiber.ReleaseAgent(a)
		return nil, apperrors.NewNetworkError(method, endpoint, err)
	}

	// Bytes releases the agent
	code, respBody, errs := a.Bytes()
	if len(errs) > 0 {
		return nil, apperrors.NewNetworkError(method, endpoint, errs[0])
	}

	return &rawResponse{status: code, body: respBody}, nil
}

func (c *APIClient) normalize(method, endpoint string, err error) *apperrors.AppError {
	if breaker.IsOpen(err) {
		return apperrors.NewCircuitBreakerError(c.cb.Name(), c.cb.State().String()).
			WithDetails("method", method).
			WithDetails("endpoint", endpoint)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewNetworkError(method, endpoint, err)
	}
	return apperrors.FromError(err)
}

func (c *APIClient) fail(err *apperrors.AppError) error {
	c.log.LogAppError(err, logger.ERROR)
	c.notifier.Error(err.Message)
	return err
}

// extractMessage pulls a human message out of an error body, trying
// `error` first and then `message`. Objects of the form
// {"error": {"message": ...}} are understood too.
func extractMessage(body []byte) string {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return ""
	}

	if raw, ok := fields["error"]; ok {
		var s string
		if json.Unmarshal(raw, &s) == nil && s != "" {
			return s
		}
		var nested struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(raw, &nested) == nil && nested.Message != "" {
			return nested.Message
		}
	}

	if raw, ok := fields["message"]; ok {
		var s string
		if json.Unmarshal(raw, &s) == nil && s != "" {
			return s
		}
	}

	return ""
}
