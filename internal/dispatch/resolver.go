package dispatch

import (
	"context"

	"sigcast/internal/models"
)

// Resolver classifies a sender's relationship to a channel.
type Resolver struct {
	store MembershipStore
}

func NewResolver(store MembershipStore) *Resolver {
	return &Resolver{store: store}
}

// Resolve returns the most privileged role the sender holds on the
// channel: admin first, then publisher, then subscriber. A sender with no
// membership row, including on a channel that does not exist, resolves to
// NONE.
func (r *Resolver) Resolve(ctx context.Context, channel, sender string) (models.Role, error) {
	isAdmin, err := r.store.IsAdmin(ctx, channel, sender)
	if err != nil {
		return models.RoleNone, err
	}
	if isAdmin {
		return models.RoleAdmin, nil
	}

	isPublisher, err := r.store.IsPublisher(ctx, channel, sender)
	if err != nil {
		return models.RoleNone, err
	}
	if isPublisher {
		return models.RolePublisher, nil
	}

	isSubscriber, err := r.store.IsSubscriber(ctx, channel, sender)
	if err != nil {
		return models.RoleNone, err
	}
	if isSubscriber {
		return models.RoleSubscriber, nil
	}

	return models.RoleNone, nil
}
