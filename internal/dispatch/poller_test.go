package dispatch

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"sigcast/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTarget struct {
	pollCount  atomic.Int64
	pollErr    error
	probeErr   error
	probeCount atomic.Int64
}

func (f *fakeTarget) PollMessages(ctx context.Context) error {
	f.pollCount.Add(1)
	return f.pollErr
}

func (f *fakeTarget) ProbeConnection(ctx context.Context) error {
	f.probeCount.Add(1)
	return f.probeErr
}

func pollerConfigs() (models.SignalConfig, models.RetryConfig) {
	return models.SignalConfig{PollingEnabled: true, PollIntervalSec: 1},
		models.RetryConfig{InitialBackoffMs: 1, MaxBackoffMs: 4, MaxAttempts: 3}
}

func TestPollerStartStop(t *testing.T) {
	target := &fakeTarget{}
	sig, retry := pollerConfigs()
	p := NewPoller(target, sig, retry, logrus.New())

	require.NoError(t, p.Start(context.Background()))
	assert.True(t, p.IsRunning())
	assert.Equal(t, int64(1), target.probeCount.Load())

	p.Stop()
	assert.False(t, p.IsRunning())
}

func TestPollerStartTwice(t *testing.T) {
	target := &fakeTarget{}
	sig, retry := pollerConfigs()
	p := NewPoller(target, sig, retry, logrus.New())

	require.NoError(t, p.Start(context.Background()))
	defer p.Stop()

	err := p.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already running")
}

func TestPollerDisabled(t *testing.T) {
	target := &fakeTarget{}
	sig, retry := pollerConfigs()
	sig.PollingEnabled = false
	p := NewPoller(target, sig, retry, logrus.New())

	require.NoError(t, p.Start(context.Background()))
	assert.False(t, p.IsRunning())
	assert.Equal(t, int64(0), target.probeCount.Load())
}

func TestPollerProbeFailureBlocksStart(t *testing.T) {
	target := &fakeTarget{probeErr: errors.New("unreachable")}
	sig, retry := pollerConfigs()
	p := NewPoller(target, sig, retry, logrus.New())

	err := p.Start(context.Background())
	require.Error(t, err)
	assert.False(t, p.IsRunning())
}

func TestPollerRetriesFailedPolls(t *testing.T) {
	target := &fakeTarget{pollErr: errors.New("timeout")}
	sig, retry := pollerConfigs()
	p := NewPoller(target, sig, retry, logrus.New())

	require.NoError(t, p.Start(context.Background()))
	defer p.Stop()

	// One tick should produce MaxAttempts poll attempts
	require.Eventually(t, func() bool {
		return target.pollCount.Load() >= int64(retry.MaxAttempts)
	}, 5*time.Second, 10*time.Millisecond)
}
