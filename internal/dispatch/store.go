package dispatch

import (
	"context"

	"sigcast/internal/models"
)

// MembershipStore is the persistence collaborator for channels and
// memberships. Lookup calls against a channel that does not exist return
// the falsy answer, never an error: it is legitimate for an unaffiliated
// sender to message any number. Mutating calls may fail; the executor maps
// those failures to FAILURE results.
type MembershipStore interface {
	GetChannel(ctx context.Context, phoneNumber string) (*models.Channel, error)

	IsAdmin(ctx context.Context, channel, number string) (bool, error)
	IsPublisher(ctx context.Context, channel, number string) (bool, error)
	IsSubscriber(ctx context.Context, channel, number string) (bool, error)

	AddSubscriber(ctx context.Context, channel, number string) error
	RemoveSubscriber(ctx context.Context, channel, number string) (int64, error)
	AddAdmin(ctx context.Context, channel, number string) error
	RemoveAdmin(ctx context.Context, channel, number string) (int64, error)

	ListAdmins(ctx context.Context, channel string) ([]string, error)
	ListSubscribers(ctx context.Context, channel string) ([]string, error)
	CountAdmins(ctx context.Context, channel string) (int, error)
	CountSubscribers(ctx context.Context, channel string) (int, error)
}

// Transport transmits an outbound message. The call reports whether the
// transmission call itself succeeded; actual delivery is never confirmed.
type Transport interface {
	Send(ctx context.Context, msg *models.SdMessage) error
}

// ResendQueue registers an outbound message for background delivery retry.
type ResendQueue interface {
	Enqueue(msg *models.SdMessage)
}
