package models

import (
	"time"

	"github.com/google/uuid"
)

// InviteStatus is a party member's invitation state.
type InviteStatus string

const (
	InviteAccepted InviteStatus = "accepted"
	InvitePending  InviteStatus = "pending"
	InviteDeclined InviteStatus = "declined"
)

// PartyMember links a user to a co-ownership party. The core reads it
// only to resolve the "coowner" role; membership itself is managed elsewhere.
type PartyMember struct {
	PartyID      uuid.UUID    `json:"party_id"`
	UserID       uuid.UUID    `json:"user_id"`
	InviteStatus InviteStatus `json:"invite_status"`
	JoinedAt     time.Time    `json:"joined_at"`
}
