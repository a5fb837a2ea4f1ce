package command

import (
	"regexp"
	"strings"

	"sigcast/internal/models"
)

// Keyword matching is anchored: the keyword must account for the entire
// normalized input (payload-less commands) or its prefix followed by
// whitespace (payload commands). Whitespace between keyword tokens is
// optional, so "ADD ADMIN" and "addadmin" are the same command.
var (
	joinPattern        = regexp.MustCompile(`(?i)^\s*(?:add|join)\s*$`)
	leavePattern       = regexp.MustCompile(`(?i)^\s*leave\s*$`)
	infoPattern        = regexp.MustCompile(`(?i)^\s*info\s*$`)
	addAdminPattern    = regexp.MustCompile(`(?i)^\s*add\s*admin\s*(.*?)\s*$`)
	removeAdminPattern = regexp.MustCompile(`(?i)^\s*remove\s*admin\s*(.*?)\s*$`)
)

// Parse maps raw inbound text to a structured command. It is total and
// deterministic: every input yields exactly one command, and anything not
// anchored on a recognized keyword is a NOOP.
func Parse(raw string) models.Command {
	text := strings.TrimSpace(raw)

	// ADD ADMIN must win over bare ADD, so payload forms are tried first.
	if m := addAdminPattern.FindStringSubmatch(text); m != nil {
		return models.Command{Kind: models.CommandAddAdmin, Payload: m[1]}
	}
	if m := removeAdminPattern.FindStringSubmatch(text); m != nil {
		return models.Command{Kind: models.CommandRemoveAdmin, Payload: m[1]}
	}
	if joinPattern.MatchString(text) {
		return models.Command{Kind: models.CommandJoin}
	}
	if leavePattern.MatchString(text) {
		return models.Command{Kind: models.CommandLeave}
	}
	if infoPattern.MatchString(text) {
		return models.Command{Kind: models.CommandInfo}
	}

	return models.Command{Kind: models.CommandNoop}
}
