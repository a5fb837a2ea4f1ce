package dispatch

import (
	"context"

	apperrors "sigcast/internal/errors"
	"sigcast/internal/models"
	"sigcast/internal/privacy"
	"sigcast/internal/validation"

	"github.com/sirupsen/logrus"
)

// Executor runs the role-gated command state machine. Preconditions are
// evaluated in a fixed order (sender role, then payload validity, then
// target role), so a non-admin sender of a malformed command still gets
// the not-admin response. Violated preconditions yield SUCCESS results
// with no-op messages; only a failing store mutation yields FAILURE. The
// triggering store error is logged here and never shown to the sender.
type Executor struct {
	store    MembershipStore
	resolver *Resolver
	logger   *logrus.Logger
}

func NewExecutor(store MembershipStore, resolver *Resolver, logger *logrus.Logger) *Executor {
	if logger == nil {
		logger = logrus.New()
	}
	return &Executor{
		store:    store,
		resolver: resolver,
		logger:   logger,
	}
}

// Execute decides and performs the action for a parsed command. A non-nil
// error means a store lookup failed and the command could not be
// evaluated at all; every evaluable command produces a Result.
func (e *Executor) Execute(ctx context.Context, cmd models.Command, channel, sender string) (models.Result, error) {
	switch cmd.Kind {
	case models.CommandJoin:
		return e.executeJoin(ctx, channel, sender)
	case models.CommandLeave:
		return e.executeLeave(ctx, channel, sender)
	case models.CommandAddAdmin:
		return e.executeAddAdmin(ctx, channel, sender, cmd.Payload)
	case models.CommandRemoveAdmin:
		return e.executeRemoveAdmin(ctx, channel, sender, cmd.Payload)
	case models.CommandInfo:
		return e.executeInfo(ctx, channel, sender)
	default:
		return models.Result{Status: models.StatusNoop, Message: msgInvalid}, nil
	}
}

func (e *Executor) executeJoin(ctx context.Context, channel, sender string) (models.Result, error) {
	role, err := e.resolver.Resolve(ctx, channel, sender)
	if err != nil {
		return models.Result{}, err
	}

	// Already a member in any capacity: joining again is a no-op, not an
	// error.
	if role != models.RoleNone {
		return models.Result{Status: models.StatusSuccess, Message: msgJoinNoop}, nil
	}

	if err := e.store.AddSubscriber(ctx, channel, sender); err != nil {
		e.logMutationFailure(err, "addSubscriber", channel, sender)
		return models.Result{Status: models.StatusFailure, Message: msgJoinFailure}, nil
	}

	ch, err := e.store.GetChannel(ctx, channel)
	if err != nil {
		return models.Result{}, err
	}
	name := ""
	if ch != nil {
		name = ch.Name
	}
	return models.Result{Status: models.StatusSuccess, Message: msgJoinSuccess(name)}, nil
}

func (e *Executor) executeLeave(ctx context.Context, channel, sender string) (models.Result, error) {
	role, err := e.resolver.Resolve(ctx, channel, sender)
	if err != nil {
		return models.Result{}, err
	}

	if role == models.RoleNone {
		return models.Result{Status: models.StatusSuccess, Message: msgLeaveNoop}, nil
	}

	if _, err := e.store.RemoveSubscriber(ctx, channel, sender); err != nil {
		e.logMutationFailure(err, "removeSubscriber", channel, sender)
		return models.Result{Status: models.StatusFailure, Message: msgLeaveFailure}, nil
	}

	return models.Result{Status: models.StatusSuccess, Message: msgLeaveSuccess}, nil
}

func (e *Executor) executeAddAdmin(ctx context.Context, channel, sender, payload string) (models.Result, error) {
	role, err := e.resolver.Resolve(ctx, channel, sender)
	if err != nil {
		return models.Result{}, err
	}

	if role != models.RoleAdmin {
		return models.Result{Status: models.StatusSuccess, Message: msgNotAdmin}, nil
	}

	if !validation.IsValidPhoneNumber(payload) {
		return models.Result{Status: models.StatusSuccess, Message: msgInvalidNumber(payload)}, nil
	}

	if err := e.store.AddAdmin(ctx, channel, payload); err != nil {
		e.logMutationFailure(err, "addAdmin", channel, payload)
		return models.Result{Status: models.StatusFailure, Message: msgAddAdminFailure(payload)}, nil
	}

	return models.Result{Status: models.StatusSuccess, Message: msgAddAdminSuccess(payload)}, nil
}

func (e *Executor) executeRemoveAdmin(ctx context.Context, channel, sender, payload string) (models.Result, error) {
	role, err := e.resolver.Resolve(ctx, channel, sender)
	if err != nil {
		return models.Result{}, err
	}

	if role != models.RoleAdmin {
		return models.Result{Status: models.StatusSuccess, Message: msgNotAdmin}, nil
	}

	if !validation.IsValidPhoneNumber(payload) {
		return models.Result{Status: models.StatusSuccess, Message: msgInvalidNumber(payload)}, nil
	}

	targetIsAdmin, err := e.store.IsAdmin(ctx, channel, payload)
	if err != nil {
		return models.Result{}, err
	}
	if !targetIsAdmin {
		return models.Result{Status: models.StatusSuccess, Message: msgRemoveAdminNoopTargetNotAdmin(payload)}, nil
	}

	if _, err := e.store.RemoveAdmin(ctx, channel, payload); err != nil {
		e.logMutationFailure(err, "removeAdmin", channel, payload)
		return models.Result{Status: models.StatusFailure, Message: msgRemoveAdminFailure(payload)}, nil
	}

	return models.Result{Status: models.StatusSuccess, Message: msgRemoveAdminSuccess(payload)}, nil
}

func (e *Executor) executeInfo(ctx context.Context, channel, sender string) (models.Result, error) {
	role, err := e.resolver.Resolve(ctx, channel, sender)
	if err != nil {
		return models.Result{}, err
	}

	if role == models.RoleNone {
		return models.Result{Status: models.StatusSuccess, Message: msgInfoNoop}, nil
	}

	ch, err := e.store.GetChannel(ctx, channel)
	if err != nil {
		return models.Result{}, err
	}
	name := ""
	if ch != nil {
		name = ch.Name
	}

	subscriberCount, err := e.store.CountSubscribers(ctx, channel)
	if err != nil {
		return models.Result{}, err
	}

	// Admins see the member list; everyone else only gets counts.
	if role == models.RoleAdmin {
		admins, err := e.store.ListAdmins(ctx, channel)
		if err != nil {
			return models.Result{}, err
		}
		return models.Result{
			Status:  models.StatusSuccess,
			Message: msgInfoForAdmin(name, channel, admins, subscriberCount),
		}, nil
	}

	adminCount, err := e.store.CountAdmins(ctx, channel)
	if err != nil {
		return models.Result{}, err
	}
	return models.Result{
		Status:  models.StatusSuccess,
		Message: msgInfoForMember(name, channel, adminCount, subscriberCount),
	}, nil
}

func (e *Executor) logMutationFailure(err error, operation, channel, number string) {
	e.logger.WithError(err).WithFields(apperrors.Fields(err)).WithFields(logrus.Fields{
		"operation": operation,
		"channel":   privacy.MaskPhoneNumber(channel),
		"number":    privacy.MaskPhoneNumber(number),
	}).Error("Membership mutation failed")
}
