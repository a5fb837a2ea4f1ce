package models

// CommandKind identifies the structured interpretation of inbound text.
type CommandKind string

const (
	CommandJoin        CommandKind = "JOIN"
	CommandLeave       CommandKind = "LEAVE"
	CommandInfo        CommandKind = "INFO"
	CommandAddAdmin    CommandKind = "ADD_ADMIN"
	CommandRemoveAdmin CommandKind = "REMOVE_ADMIN"
	CommandNoop        CommandKind = "NOOP"
)

// Command is the parsed form of an inbound message. Payload carries the
// remaining text for commands that take an argument (the target phone
// number for ADD_ADMIN and REMOVE_ADMIN).
type Command struct {
	Kind    CommandKind
	Payload string
}

// ResultStatus distinguishes "the action happened" from "nothing needed to
// happen" from "something should have happened and didn't".
type ResultStatus string

const (
	StatusSuccess ResultStatus = "SUCCESS"
	StatusFailure ResultStatus = "FAILURE"
	StatusNoop    ResultStatus = "NOOP"
)

// Result is the outcome of executing a command: a status plus the
// user-facing message rendered back to the sender.
type Result struct {
	Status  ResultStatus
	Message string
}
