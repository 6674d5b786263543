package breaker

import (
	"context"
	"errors"
	"testing"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
)

var errUpstream = errors.New("upstream failed")

func fail() (interface{}, error) { return nil, errUpstream }

func TestTripsAfterFailureRatio(t *testing.T) {
	cb := New(Config{Name: "test", MinRequests: 3, FailureRatio: 0.6})

	for i := 0; i < 3; i++ {
		_, err := ExecuteCtx(context.Background(), cb, fail)
		assert.ErrorIs(t, err, errUpstream)
	}

	assert.Equal(t, gobreaker.StateOpen, cb.State())
	_, err := ExecuteCtx(context.Background(), cb, fail)
	assert.True(t, IsOpen(err))
}

func TestIsSuccessfulKeepsBreakerClosed(t *testing.T) {
	cb := New(Config{
		Name:         "test",
		MinRequests:  1,
		IsSuccessful: func(err error) bool { return errors.Is(err, errUpstream) },
	})

	for i := 0; i < 5; i++ {
		_, _ = ExecuteCtx(context.Background(), cb, fail)
	}
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestExecuteCtxHonorsCancellation(t *testing.T) {
	cb := New(Config{Name: "test"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	_, err := ExecuteCtx(ctx, cb, func() (interface{}, error) {
		called = true
		return nil, nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
	assert.False(t, IsOpen(err))
}
