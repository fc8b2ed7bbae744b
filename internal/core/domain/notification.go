package domain

import "github.com/shopspring/decimal"

// EventKind identifies a lifecycle notification type. The wire names match
// what subscribed clients listen for.
type EventKind string

const (
	EventNewClaim     EventKind = "new-expense"
	EventClaimDecided EventKind = "expense-updated"
)

// AdminChannel is the shared channel every connected admin listens on.
const AdminChannel = "admins"

// UserChannel returns the personal channel key for a user.
func UserChannel(userID string) string {
	return "user-" + userID
}

// Event is a best-effort lifecycle notification. Events are never persisted:
// delivery is at-most-once to currently connected subscribers, and the
// authoritative state always lives in the expense repository.
type Event struct {
	Kind    EventKind `json:"kind"`
	Channel string    `json:"-"`
	Payload any       `json:"payload"`
}

// NewClaimPayload is fanned out to the admin channel after a claim is created.
type NewClaimPayload struct {
	ClaimID     string          `json:"id"`
	SubmitterID string          `json:"userId"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Status      ClaimStatus     `json:"status"`
}

// ClaimDecidedPayload is fanned out to the submitter's channel after a decision.
type ClaimDecidedPayload struct {
	ClaimID string      `json:"id"`
	Status  ClaimStatus `json:"status"`
	Notes   *string     `json:"notes,omitempty"`
}
