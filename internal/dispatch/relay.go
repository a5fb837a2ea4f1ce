package dispatch

import (
	"context"
	"fmt"
	"time"

	"sigcast/internal/constants"
	apperrors "sigcast/internal/errors"
	"sigcast/internal/models"
	"sigcast/internal/privacy"
	"sigcast/pkg/circuitbreaker"
	"sigcast/pkg/signal"

	"github.com/sirupsen/logrus"
)

// ChannelRelay binds one channel account to the dispatch pipeline. It
// implements MessagePoller: each poll drains the account's pending
// messages and hands them to the dispatcher one by one.
type ChannelRelay struct {
	channel        string
	client         signal.Client
	dispatcher     *Dispatcher
	pollTimeoutSec int
	logger         *logrus.Logger
}

func NewChannelRelay(channel string, client signal.Client, dispatcher *Dispatcher, pollTimeoutSec int, logger *logrus.Logger) *ChannelRelay {
	if logger == nil {
		logger = logrus.New()
	}
	return &ChannelRelay{
		channel:        channel,
		client:         client,
		dispatcher:     dispatcher,
		pollTimeoutSec: pollTimeoutSec,
		logger:         logger,
	}
}

// PollMessages fetches pending messages for the channel account and
// dispatches each one. A message that fails to dispatch is logged and
// skipped so one bad message cannot wedge the queue.
func (r *ChannelRelay) PollMessages(ctx context.Context) error {
	messages, err := r.client.ReceiveMessages(ctx, r.pollTimeoutSec)
	if err != nil {
		return fmt.Errorf("failed to receive messages: %w", err)
	}

	for _, msg := range messages {
		inbound := &Inbound{
			Sender:      msg.Sender,
			Body:        msg.Message,
			Attachments: convertAttachments(msg.Attachments),
			Timestamp:   msg.Timestamp,
		}

		if err := r.dispatcher.HandleInbound(ctx, r.channel, inbound); err != nil {
			r.logger.WithError(err).WithFields(logrus.Fields{
				"channel": privacy.MaskPhoneNumber(r.channel),
				"sender":  privacy.MaskPhoneNumber(msg.Sender),
			}).Error("Failed to dispatch inbound message")
		}
	}

	return nil
}

// ProbeConnection verifies the Signal API is reachable for this account.
func (r *ChannelRelay) ProbeConnection(ctx context.Context) error {
	return r.client.ProbeConnection(ctx)
}

func convertAttachments(attachments []signal.MessageAttachment) []models.Attachment {
	if len(attachments) == 0 {
		return nil
	}

	result := make([]models.Attachment, 0, len(attachments))
	for _, att := range attachments {
		digest := att.ID
		if digest == "" {
			digest = att.Filename
		}
		result = append(result, &models.InboundAttachment{
			Digest:      digest,
			ContentType: att.ContentType,
			StoredPath:  att.StoredPath,
			Size:        att.Size,
		})
	}
	return result
}

// ClientTransport routes outbound messages to the Signal client for the
// originating channel account. It satisfies both the dispatcher's
// Transport and the resend queue's Sender. Each account's client sits
// behind a circuit breaker so an unreachable API endpoint sheds send
// attempts instead of timing out on every one.
type ClientTransport struct {
	clients  map[string]signal.Client
	breakers map[string]*circuitbreaker.Breaker
}

func NewClientTransport(clients map[string]signal.Client, logger *logrus.Logger) *ClientTransport {
	breakers := make(map[string]*circuitbreaker.Breaker, len(clients))
	for number := range clients {
		breakers[number] = circuitbreaker.New(
			privacy.MaskPhoneNumber(number),
			constants.DefaultBreakerMaxFailures,
			time.Duration(constants.DefaultBreakerCooldownSec)*time.Second,
			logger,
		)
	}
	return &ClientTransport{clients: clients, breakers: breakers}
}

func (t *ClientTransport) Send(ctx context.Context, msg *models.SdMessage) error {
	client, ok := t.clients[msg.Sender]
	if !ok {
		return fmt.Errorf("no client registered for account %s", privacy.MaskPhoneNumber(msg.Sender))
	}

	var paths []string
	for _, att := range msg.Attachments {
		if inbound, ok := att.(*models.InboundAttachment); ok && inbound.StoredPath != "" {
			paths = append(paths, inbound.StoredPath)
		}
	}

	err := t.breakers[msg.Sender].Execute(ctx, func(ctx context.Context) error {
		_, err := client.SendMessage(ctx, msg.Recipient, msg.Body, paths)
		return err
	})
	if err != nil {
		if circuitbreaker.IsOpen(err) {
			return err
		}
		return apperrors.WrapRetryable(err, apperrors.ErrCodeSignalAPI, "failed to send message")
	}
	return nil
}
