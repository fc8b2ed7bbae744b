package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ClaimStatus is the lifecycle state of an expense claim.
// Pending is the only initial state; Approved and Rejected are terminal.
type ClaimStatus string

const (
	StatusPending  ClaimStatus = "pending"
	StatusApproved ClaimStatus = "approved"
	StatusRejected ClaimStatus = "rejected"
)

// ParseClaimStatus returns the status matching s, or false if s is not a
// known status value.
func ParseClaimStatus(s string) (ClaimStatus, bool) {
	switch ClaimStatus(s) {
	case StatusPending, StatusApproved, StatusRejected:
		return ClaimStatus(s), true
	}
	return "", false
}

// IsDecision reports whether the status is a valid terminal decision.
func (s ClaimStatus) IsDecision() bool {
	return s == StatusApproved || s == StatusRejected
}

// Category is the expense category of a claim. Empty means unset.
type Category string

const (
	CategoryOffice    Category = "office"
	CategoryTravel    Category = "travel"
	CategoryMeals     Category = "meals"
	CategoryEquipment Category = "equipment"
	CategoryUtilities Category = "utilities"
	CategoryOther     Category = "other"
)

// ValidCategory reports whether c is empty or one of the known categories.
func ValidCategory(c Category) bool {
	switch c {
	case "", CategoryOffice, CategoryTravel, CategoryMeals, CategoryEquipment, CategoryUtilities, CategoryOther:
		return true
	}
	return false
}

// Submitter is the identity of the user who filed a claim, joined in by the
// admin listing queries so reviewers see a name and email, not a bare ID.
type Submitter struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// ExpenseClaim represents one expense reimbursement request within the core
// domain. This is the primary representation used by services.
type ExpenseClaim struct {
	ClaimID     string          `json:"claimID"`     // Primary key (UUID)
	SubmitterID string          `json:"submitterID"` // FK -> users.user_id, immutable
	Amount      decimal.Decimal `json:"amount"`      // Positive, 2 decimal places
	Description string          `json:"description"`
	Category    Category        `json:"category,omitempty"`
	ReceiptDate *time.Time      `json:"receiptDate,omitempty"` // Date on the receipt, not submission time
	ReceiptKey  string          `json:"receiptKey,omitempty"`  // Blob store key; required by the submission contract
	Status      ClaimStatus     `json:"status"`
	SubmittedAt time.Time       `json:"submittedAt"`

	// Submitter identity, populated only by the admin listing queries.
	Submitter *Submitter `json:"submitter,omitempty"`

	// Decision fields. Set exactly once, together, when the claim leaves
	// pending; nil until then.
	DecidedAt *time.Time `json:"decidedAt,omitempty"`
	DecidedBy *string    `json:"decidedBy,omitempty"`
	Notes     *string    `json:"notes,omitempty"`
}
