package dispatch

import (
	"context"
	"errors"
	"testing"

	"sigcast/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestDispatcher(store *mockStore, transport *mockTransport, queue *mockQueue) *Dispatcher {
	return NewDispatcher(store, transport, queue, nil)
}

func TestHandleInboundBroadcastsPublisherText(t *testing.T) {
	store := &mockStore{}
	transport := &mockTransport{}
	queue := &mockQueue{}

	store.expectRole(testChannel, testSender, models.RolePublisher)
	store.On("ListSubscribers", mock.Anything, testChannel).Return([]string{"+15554440001", "+15554440002"}, nil)
	transport.On("Send", mock.Anything, mock.Anything).Return(nil)
	queue.On("Enqueue", mock.Anything).Return()

	d := newTestDispatcher(store, transport, queue)
	err := d.HandleInbound(context.Background(), testChannel, &Inbound{Sender: testSender, Body: "big news everyone"})
	require.NoError(t, err)

	transport.AssertNumberOfCalls(t, "Send", 2)
	queue.AssertNumberOfCalls(t, "Enqueue", 2)

	// Relayed messages originate from the channel, not the publisher
	for _, call := range transport.Calls {
		msg := call.Arguments.Get(1).(*models.SdMessage)
		assert.Equal(t, testChannel, msg.Sender)
		assert.Equal(t, "big news everyone", msg.Body)
	}
}

func TestHandleInboundAdminBroadcastsWithAttachments(t *testing.T) {
	store := &mockStore{}
	transport := &mockTransport{}
	queue := &mockQueue{}

	store.On("IsAdmin", mock.Anything, testChannel, testSender).Return(true, nil)
	store.On("ListSubscribers", mock.Anything, testChannel).Return([]string{"+15554440001"}, nil)
	transport.On("Send", mock.Anything, mock.Anything).Return(nil)
	queue.On("Enqueue", mock.Anything).Return()

	att := &models.InboundAttachment{Digest: "att-1", ContentType: "image/jpeg"}
	d := newTestDispatcher(store, transport, queue)
	err := d.HandleInbound(context.Background(), testChannel, &Inbound{
		Sender:      testSender,
		Body:        "see attached",
		Attachments: []models.Attachment{att},
	})
	require.NoError(t, err)

	msg := transport.Calls[0].Arguments.Get(1).(*models.SdMessage)
	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, "att-1", msg.Attachments[0].ContentDigest())
}

func TestHandleInboundSubscriberTextGetsHelpReply(t *testing.T) {
	store := &mockStore{}
	transport := &mockTransport{}
	queue := &mockQueue{}

	store.expectRole(testChannel, testSender, models.RoleSubscriber)
	transport.On("Send", mock.Anything, mock.Anything).Return(nil)
	queue.On("Enqueue", mock.Anything).Return()

	d := newTestDispatcher(store, transport, queue)
	err := d.HandleInbound(context.Background(), testChannel, &Inbound{Sender: testSender, Body: "hello?"})
	require.NoError(t, err)

	// No broadcast, just one reply back to the sender
	transport.AssertNumberOfCalls(t, "Send", 1)
	msg := transport.Calls[0].Arguments.Get(1).(*models.SdMessage)
	assert.Equal(t, testSender, msg.Recipient)
	assert.Equal(t, msgInvalid, msg.Body)
	store.AssertNotCalled(t, "ListSubscribers", mock.Anything, mock.Anything)
}

func TestHandleInboundJoinCommand(t *testing.T) {
	store := &mockStore{}
	transport := &mockTransport{}
	queue := &mockQueue{}

	store.expectRole(testChannel, testSender, models.RoleNone)
	store.On("AddSubscriber", mock.Anything, testChannel, testSender).Return(nil)
	store.On("GetChannel", mock.Anything, testChannel).Return(&models.Channel{PhoneNumber: testChannel, Name: "alerts"}, nil)
	transport.On("Send", mock.Anything, mock.Anything).Return(nil)
	queue.On("Enqueue", mock.Anything).Return()

	d := newTestDispatcher(store, transport, queue)
	err := d.HandleInbound(context.Background(), testChannel, &Inbound{Sender: testSender, Body: "JOIN"})
	require.NoError(t, err)

	transport.AssertNumberOfCalls(t, "Send", 1)
	msg := transport.Calls[0].Arguments.Get(1).(*models.SdMessage)
	assert.Equal(t, testSender, msg.Recipient)
	assert.Contains(t, msg.Body, "alerts")
}

func TestHandleInboundAddAdminCommand(t *testing.T) {
	store := &mockStore{}
	transport := &mockTransport{}
	queue := &mockQueue{}

	store.On("IsAdmin", mock.Anything, testChannel, testSender).Return(true, nil)
	store.On("AddAdmin", mock.Anything, testChannel, testTarget).Return(nil)
	transport.On("Send", mock.Anything, mock.Anything).Return(nil)
	queue.On("Enqueue", mock.Anything).Return()

	d := newTestDispatcher(store, transport, queue)
	err := d.HandleInbound(context.Background(), testChannel, &Inbound{Sender: testSender, Body: "ADD ADMIN +15551234567"})
	require.NoError(t, err)

	msg := transport.Calls[0].Arguments.Get(1).(*models.SdMessage)
	assert.Equal(t, "added +15551234567 as admin", msg.Body)
}

func TestHandleInboundEnqueuesDespiteSendFailure(t *testing.T) {
	store := &mockStore{}
	transport := &mockTransport{}
	queue := &mockQueue{}

	store.expectRole(testChannel, testSender, models.RoleNone)
	transport.On("Send", mock.Anything, mock.Anything).Return(errors.New("network down"))
	queue.On("Enqueue", mock.Anything).Return()

	d := newTestDispatcher(store, transport, queue)
	err := d.HandleInbound(context.Background(), testChannel, &Inbound{Sender: testSender, Body: "INFO"})
	require.NoError(t, err)

	queue.AssertNumberOfCalls(t, "Enqueue", 1)
}

func TestHandleInboundResolveErrorPropagates(t *testing.T) {
	store := &mockStore{}
	transport := &mockTransport{}
	queue := &mockQueue{}

	store.On("IsAdmin", mock.Anything, testChannel, testSender).Return(false, errors.New("db gone"))

	d := newTestDispatcher(store, transport, queue)
	err := d.HandleInbound(context.Background(), testChannel, &Inbound{Sender: testSender, Body: "whatever"})
	require.Error(t, err)
	transport.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}
