package dispatch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"sigcast/internal/models"

	"github.com/sirupsen/logrus"
)

// MessagePoller fetches and processes pending inbound messages for one
// channel account.
type MessagePoller interface {
	PollMessages(ctx context.Context) error
	ProbeConnection(ctx context.Context) error
}

// Poller drives a MessagePoller on a fixed interval, retrying failed
// polls with exponential backoff.
type Poller struct {
	target      MessagePoller
	config      models.SignalConfig
	retryConfig models.RetryConfig
	logger      *logrus.Logger
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	running     bool
	mu          sync.RWMutex
}

func NewPoller(target MessagePoller, signalConfig models.SignalConfig, retryConfig models.RetryConfig, logger *logrus.Logger) *Poller {
	return &Poller{
		target:      target,
		config:      signalConfig,
		retryConfig: retryConfig,
		logger:      logger,
	}
}

// Start begins the background polling process.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return fmt.Errorf("poller is already running")
	}

	if !p.config.PollingEnabled {
		p.logger.Info("Polling is disabled in configuration")
		return nil
	}

	if err := p.target.ProbeConnection(ctx); err != nil {
		return fmt.Errorf("failed to connect to Signal API before starting poller: %w", err)
	}

	p.ctx, p.cancel = context.WithCancel(ctx)
	p.running = true

	p.wg.Add(1)
	go p.pollLoop()

	p.logger.WithFields(logrus.Fields{
		"interval": p.config.PollIntervalSec,
	}).Info("Poller started")

	return nil
}

// Stop gracefully stops the polling process.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}

	p.cancel()
	p.wg.Wait()
	p.running = false
	p.logger.Info("Poller stopped")
}

// IsRunning returns whether the poller is currently active.
func (p *Poller) IsRunning() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.running
}

func (p *Poller) pollLoop() {
	defer p.wg.Done()

	ticker := time.NewTicker(time.Duration(p.config.PollIntervalSec) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.pollWithRetry()
		}
	}
}

// pollWithRetry executes a single poll attempt with exponential backoff
// on failure.
func (p *Poller) pollWithRetry() {
	ctx, cancel := context.WithTimeout(p.ctx, 30*time.Second)
	defer cancel()

	backoff := time.Duration(p.retryConfig.InitialBackoffMs) * time.Millisecond
	maxBackoff := time.Duration(p.retryConfig.MaxBackoffMs) * time.Millisecond

	for attempt := 0; attempt < p.retryConfig.MaxAttempts; attempt++ {
		err := p.target.PollMessages(ctx)
		if err == nil {
			return
		}

		p.logger.WithFields(logrus.Fields{
			"attempt": attempt + 1,
			"error":   err,
			"backoff": backoff,
		}).Warn("Polling failed, retrying with backoff")

		// Don't sleep on the last attempt
		if attempt < p.retryConfig.MaxAttempts-1 {
			select {
			case <-p.ctx.Done():
				return
			case <-time.After(backoff):
				backoff *= 2
				if backoff > maxBackoff {
					backoff = maxBackoff
				}
			}
		}
	}

	p.logger.Error("Polling failed after all retry attempts")
}
