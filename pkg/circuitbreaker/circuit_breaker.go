// Package circuitbreaker guards calls to an external service so a dead
// endpoint stops consuming attempts until it has had time to recover.
package circuitbreaker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// State is the current mode of a breaker.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

// Breaker trips open after maxFailures consecutive failures. After the
// cooldown it admits a limited number of probe calls; if they all
// succeed the breaker closes again, and a single failure re-opens it.
type Breaker struct {
	name        string
	maxFailures int
	cooldown    time.Duration
	probeCalls  int
	logger      *logrus.Logger

	mu             sync.Mutex
	state          State
	failures       int
	probesInFlight int
	probeSuccesses int
	openedAt       time.Time
}

func New(name string, maxFailures int, cooldown time.Duration, logger *logrus.Logger) *Breaker {
	if logger == nil {
		logger = logrus.New()
	}
	return &Breaker{
		name:        name,
		maxFailures: maxFailures,
		cooldown:    cooldown,
		probeCalls:  3,
		logger:      logger,
	}
}

// Execute runs fn unless the breaker is open, and records the outcome.
func (b *Breaker) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := b.admit(); err != nil {
		return err
	}

	if err := fn(ctx); err != nil {
		b.recordFailure()
		return err
	}
	b.recordSuccess()
	return nil
}

func (b *Breaker) admit() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		return nil
	case StateOpen:
		if time.Since(b.openedAt) < b.cooldown {
			return &OpenError{Name: b.name}
		}
		b.state = StateHalfOpen
		b.probesInFlight = 0
		b.probeSuccesses = 0
		b.logger.WithField("breaker", b.name).Info("Circuit breaker probing after cooldown")
	}

	if b.probesInFlight >= b.probeCalls {
		return &OpenError{Name: b.name}
	}
	b.probesInFlight++
	return nil
}

func (b *Breaker) recordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures++
	if b.state == StateHalfOpen || b.failures >= b.maxFailures {
		b.state = StateOpen
		b.openedAt = time.Now()
		b.logger.WithFields(logrus.Fields{
			"breaker":  b.name,
			"failures": b.failures,
		}).Warn("Circuit breaker opened")
	}
}

func (b *Breaker) recordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		b.failures = 0
	case StateHalfOpen:
		b.probeSuccesses++
		if b.probeSuccesses >= b.probeCalls {
			b.state = StateClosed
			b.failures = 0
			b.logger.WithField("breaker", b.name).Info("Circuit breaker closed after recovery")
		}
	}
}

// State reports the breaker's mode, accounting for an elapsed cooldown.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateOpen && time.Since(b.openedAt) >= b.cooldown {
		return StateHalfOpen
	}
	return b.state
}

// OpenError is returned when a call is rejected without being attempted.
type OpenError struct {
	Name string
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("circuit breaker %q is open", e.Name)
}

// IsOpen reports whether err is a breaker rejection rather than a
// failure from the wrapped call.
func IsOpen(err error) bool {
	_, ok := err.(*OpenError)
	return ok
}
