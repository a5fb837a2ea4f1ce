package dispatch

import (
	"context"
	"fmt"
	"time"

	"sigcast/internal/command"
	"sigcast/internal/metrics"
	"sigcast/internal/models"
	"sigcast/internal/privacy"
	"sigcast/internal/tracing"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// Inbound is a message received on a channel number, normalized from the
// transport's envelope format.
type Inbound struct {
	Sender      string
	Body        string
	Attachments []models.Attachment
	Timestamp   int64
}

// Dispatcher is the inbound pipeline: parse the text, classify the
// sender, then either broadcast (free text from an admin or publisher
// goes to every subscriber) or execute the command and reply with its
// result. Every outbound send is additionally registered with the resend
// queue, which re-attempts delivery on its own schedule regardless of the
// original call's outcome.
type Dispatcher struct {
	resolver  *Resolver
	executor  *Executor
	store     MembershipStore
	transport Transport
	queue     ResendQueue
	logger    *logrus.Logger
}

func NewDispatcher(store MembershipStore, transport Transport, queue ResendQueue, logger *logrus.Logger) *Dispatcher {
	if logger == nil {
		logger = logrus.New()
	}
	resolver := NewResolver(store)
	return &Dispatcher{
		resolver:  resolver,
		executor:  NewExecutor(store, resolver, logger),
		store:     store,
		transport: transport,
		queue:     queue,
		logger:    logger,
	}
}

// HandleInbound processes one received message for a channel.
func (d *Dispatcher) HandleInbound(ctx context.Context, channel string, msg *Inbound) error {
	ctx, span := tracing.StartSpan(ctx, "dispatch.handleInbound",
		attribute.String("channel", privacy.MaskPhoneNumber(channel)))
	defer span.End()

	cmd := command.Parse(msg.Body)
	tracing.AddSpanAttributes(ctx, attribute.String("command", string(cmd.Kind)))

	if cmd.Kind == models.CommandNoop {
		role, err := d.resolver.Resolve(ctx, channel, msg.Sender)
		if err != nil {
			tracing.RecordError(ctx, err)
			return fmt.Errorf("failed to resolve sender role: %w", err)
		}
		if role.CanBroadcast() {
			return d.broadcast(ctx, channel, msg)
		}
	}

	result, err := d.executor.Execute(ctx, cmd, channel, msg.Sender)
	if err != nil {
		tracing.RecordError(ctx, err)
		return fmt.Errorf("failed to execute command: %w", err)
	}

	d.logger.WithFields(logrus.Fields{
		"channel": privacy.MaskPhoneNumber(channel),
		"sender":  privacy.MaskPhoneNumber(msg.Sender),
		"command": cmd.Kind,
		"status":  result.Status,
	}).Info("Command executed")
	metrics.IncrementCounter("commands_executed", map[string]string{
		"command": string(cmd.Kind),
		"status":  string(result.Status),
	})

	reply := &models.SdMessage{
		Sender:    channel,
		Recipient: msg.Sender,
		Body:      result.Message,
	}
	d.send(ctx, reply)

	return nil
}

// broadcast relays free text from a publishing member to every subscriber.
func (d *Dispatcher) broadcast(ctx context.Context, channel string, msg *Inbound) error {
	ctx, span := tracing.StartSpan(ctx, "dispatch.broadcast")
	defer span.End()

	subscribers, err := d.store.ListSubscribers(ctx, channel)
	if err != nil {
		tracing.RecordError(ctx, err)
		return fmt.Errorf("failed to list subscribers: %w", err)
	}
	tracing.AddSpanAttributes(ctx, attribute.Int("recipients", len(subscribers)))

	d.logger.WithFields(logrus.Fields{
		"channel":    privacy.MaskPhoneNumber(channel),
		"sender":     privacy.MaskPhoneNumber(msg.Sender),
		"recipients": len(subscribers),
	}).Info("Broadcasting message")

	start := time.Now()
	for _, subscriber := range subscribers {
		out := &models.SdMessage{
			Sender:      channel,
			Recipient:   subscriber,
			Body:        msg.Body,
			Attachments: msg.Attachments,
		}
		d.send(ctx, out)
	}
	metrics.IncrementCounter("broadcasts", nil)
	metrics.RecordTimer("broadcast_duration", time.Since(start), nil)

	return nil
}

// send performs the first delivery attempt and registers the message for
// background retry. The message is enqueued whether or not the first
// attempt reported success: the transport cannot confirm delivery, so the
// schedule runs either way.
func (d *Dispatcher) send(ctx context.Context, msg *models.SdMessage) {
	if err := d.transport.Send(ctx, msg); err != nil {
		d.logger.WithError(err).WithFields(logrus.Fields{
			"recipient": privacy.MaskPhoneNumber(msg.Recipient),
		}).Warn("Initial send attempt failed")
	}
	d.queue.Enqueue(msg)
}
