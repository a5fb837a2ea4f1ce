package resend

import (
	"context"
	"sync"
	"time"

	"sigcast/internal/digest"
	"sigcast/internal/metrics"
	"sigcast/internal/models"
	"sigcast/internal/privacy"

	"github.com/sirupsen/logrus"
)

// Sender transmits a message. The queue never inspects the outcome: the
// transport offers no delivery acknowledgment, so a send error is logged
// and the schedule proceeds regardless.
type Sender interface {
	Send(ctx context.Context, msg *models.SdMessage) error
}

type entry struct {
	msg          *models.SdMessage
	lastInterval time.Duration
	timer        *time.Timer
}

// Queue schedules repeated best-effort delivery of outbound messages.
// Entries are keyed by content hash, so logically identical messages
// enqueued close together collapse into one schedule. Each re-enqueue
// doubles the stored interval; once the interval reaches the ceiling the
// entry is evicted and no further retry is armed. The table is transient:
// it never survives a restart.
type Queue struct {
	sender      Sender
	logger      *logrus.Logger
	minInterval time.Duration
	maxInterval time.Duration

	mu      sync.Mutex
	entries map[string]*entry
	stopped bool
}

func NewQueue(sender Sender, minInterval, maxInterval time.Duration, logger *logrus.Logger) *Queue {
	if logger == nil {
		logger = logrus.New()
	}
	return &Queue{
		sender:      sender,
		logger:      logger,
		minInterval: minInterval,
		maxInterval: maxInterval,
		entries:     make(map[string]*entry),
	}
}

// Enqueue registers (or re-registers) a message for delivery retry. The
// caller is assumed to have already attempted the original send. Table
// update and timer arming happen under one critical section per key, so
// concurrent enqueues of the same message never arm two timers.
func (q *Queue) Enqueue(msg *models.SdMessage) {
	hash := digest.Message(msg)

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.stopped {
		return
	}

	e, ok := q.entries[hash]
	if !ok {
		e = &entry{msg: msg, lastInterval: q.minInterval}
		e.timer = time.AfterFunc(q.minInterval, func() { q.resend(hash) })
		q.entries[hash] = e

		q.logger.WithFields(logrus.Fields{
			"hash":     privacy.MaskMessageHash(hash),
			"interval": q.minInterval,
		}).Debug("Scheduled first resend")
		metrics.SetGauge("pending_resends", float64(len(q.entries)), nil)
		return
	}

	if e.lastInterval >= q.maxInterval {
		delete(q.entries, hash)
		q.logger.WithField("hash", privacy.MaskMessageHash(hash)).Debug("Resend interval ceiling reached, evicting entry")
		metrics.IncrementCounter("resends_evicted", nil)
		metrics.SetGauge("pending_resends", float64(len(q.entries)), nil)
		return
	}

	e.lastInterval *= 2
	e.timer = time.AfterFunc(e.lastInterval, func() { q.resend(hash) })

	q.logger.WithFields(logrus.Fields{
		"hash":     privacy.MaskMessageHash(hash),
		"interval": e.lastInterval,
	}).Debug("Rescheduled resend")
}

// resend fires when an entry's timer elapses: it retransmits the stored
// snapshot and re-enters Enqueue to advance (or terminate) the schedule.
func (q *Queue) resend(hash string) {
	q.mu.Lock()
	e, ok := q.entries[hash]
	var msg *models.SdMessage
	if ok {
		msg = e.msg
	}
	q.mu.Unlock()

	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	metrics.IncrementCounter("resend_attempts", nil)
	if err := q.sender.Send(ctx, msg); err != nil {
		// No acknowledgment exists either way; the schedule is the only
		// recovery mechanism.
		q.logger.WithError(err).WithField("hash", privacy.MaskMessageHash(hash)).Warn("Resend attempt failed")
	}

	q.Enqueue(msg)
}

// Len reports the number of in-flight entries.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// Stop cancels all pending timers and rejects further enqueues.
func (q *Queue) Stop() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.stopped = true
	for hash, e := range q.entries {
		if e.timer != nil {
			e.timer.Stop()
		}
		delete(q.entries, hash)
	}
}
