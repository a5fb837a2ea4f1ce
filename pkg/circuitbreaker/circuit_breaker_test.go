package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func failing(ctx context.Context) error { return errBoom }
func passing(ctx context.Context) error { return nil }

func newTestBreaker(maxFailures int, cooldown time.Duration) *Breaker {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return New("test", maxFailures, cooldown, logger)
}

func TestBreakerStaysClosedOnSuccess(t *testing.T) {
	b := newTestBreaker(3, time.Minute)

	for i := 0; i < 10; i++ {
		require.NoError(t, b.Execute(context.Background(), passing))
	}
	assert.Equal(t, StateClosed, b.State())
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	b := newTestBreaker(3, time.Minute)

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, b.Execute(context.Background(), failing), errBoom)
	}
	assert.Equal(t, StateOpen, b.State())

	err := b.Execute(context.Background(), passing)
	require.Error(t, err)
	assert.True(t, IsOpen(err))
}

func TestSuccessResetsFailureStreak(t *testing.T) {
	b := newTestBreaker(3, time.Minute)

	assert.Error(t, b.Execute(context.Background(), failing))
	assert.Error(t, b.Execute(context.Background(), failing))
	require.NoError(t, b.Execute(context.Background(), passing))
	assert.Error(t, b.Execute(context.Background(), failing))
	assert.Error(t, b.Execute(context.Background(), failing))

	assert.Equal(t, StateClosed, b.State())
}

func TestBreakerRecoversThroughProbes(t *testing.T) {
	b := newTestBreaker(1, 50*time.Millisecond)

	assert.Error(t, b.Execute(context.Background(), failing))
	assert.Equal(t, StateOpen, b.State())

	time.Sleep(75 * time.Millisecond)
	assert.Equal(t, StateHalfOpen, b.State())

	for i := 0; i < 3; i++ {
		require.NoError(t, b.Execute(context.Background(), passing))
	}
	assert.Equal(t, StateClosed, b.State())
}

func TestProbeFailureReopens(t *testing.T) {
	b := newTestBreaker(1, 50*time.Millisecond)

	assert.Error(t, b.Execute(context.Background(), failing))
	time.Sleep(75 * time.Millisecond)

	assert.ErrorIs(t, b.Execute(context.Background(), failing), errBoom)
	assert.Equal(t, StateOpen, b.State())

	err := b.Execute(context.Background(), passing)
	assert.True(t, IsOpen(err))
}

func TestIsOpen(t *testing.T) {
	assert.True(t, IsOpen(&OpenError{Name: "x"}))
	assert.False(t, IsOpen(errBoom))
	assert.False(t, IsOpen(nil))
}
