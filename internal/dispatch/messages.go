package dispatch

import (
	"fmt"
	"strings"
)

// User-facing response text. Every permission or idempotency violation
// reads as an informative no-op, not an error; only collaborator failures
// get failure wording.
const (
	msgJoinNoop     = "you are already a member of this channel"
	msgJoinFailure  = "something went wrong adding you to the channel, please try again"
	msgLeaveSuccess = "you have been removed from the channel, goodbye!"
	msgLeaveNoop    = "you are not a member of this channel"
	msgLeaveFailure = "something went wrong removing you from the channel, please try again"
	msgNotAdmin     = "you must be an admin to do that"
	msgInvalid      = "sorry, I don't understand that. reply with INFO for help"
)

func msgJoinSuccess(channelName string) string {
	if channelName == "" {
		return "welcome! you are now subscribed. reply with LEAVE to unsubscribe"
	}
	return fmt.Sprintf("welcome to %s! you are now subscribed. reply with LEAVE to unsubscribe", channelName)
}

func msgInvalidNumber(payload string) string {
	return fmt.Sprintf("%q doesn't look like a phone number; use the full international format, e.g. +15551234567", payload)
}

func msgAddAdminSuccess(target string) string {
	return fmt.Sprintf("added %s as admin", target)
}

func msgAddAdminFailure(target string) string {
	return fmt.Sprintf("something went wrong adding %s as admin, please try again", target)
}

func msgRemoveAdminSuccess(target string) string {
	return fmt.Sprintf("removed %s as admin", target)
}

func msgRemoveAdminNoopTargetNotAdmin(target string) string {
	return fmt.Sprintf("%s is not an admin of this channel", target)
}

func msgRemoveAdminFailure(target string) string {
	return fmt.Sprintf("something went wrong removing %s as admin, please try again", target)
}

func msgInfoForAdmin(channelName, channelNumber string, admins []string, subscriberCount int) string {
	return fmt.Sprintf("channel: %s (%s)\nadmins: %s\nsubscribers: %d",
		channelName, channelNumber, strings.Join(admins, ", "), subscriberCount)
}

func msgInfoForMember(channelName, channelNumber string, adminCount, subscriberCount int) string {
	return fmt.Sprintf("channel: %s (%s)\nadmins: %d\nsubscribers: %d",
		channelName, channelNumber, adminCount, subscriberCount)
}

const msgInfoNoop = "you are not a member of this channel and cannot request its info"
