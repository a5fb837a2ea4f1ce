package models

import "time"

// Role describes the relationship between a phone number and a channel.
type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RolePublisher  Role = "PUBLISHER"
	RoleSubscriber Role = "SUBSCRIBER"
	RoleNone       Role = "NONE"
)

// CanBroadcast reports whether the role carries publishing rights.
func (r Role) CanBroadcast() bool {
	return r == RoleAdmin || r == RolePublisher
}

// Stored membership_type values.
const (
	MembershipAdmin      = "ADMIN"
	MembershipPublisher  = "PUBLISHER"
	MembershipSubscriber = "SUBSCRIBER"
)

// Channel is a phone number operating as a broadcast identity.
type Channel struct {
	PhoneNumber string    `db:"phone_number" json:"phoneNumber"`
	Name        string    `db:"name" json:"name"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}
