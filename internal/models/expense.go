package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExpenseClaim is the database representation of an expense claim. Nullable
// columns use pointers so scans round-trip NULLs faithfully.
type ExpenseClaim struct {
	ClaimID     string          `db:"claim_id"`
	SubmitterID string          `db:"submitter_id"`
	Amount      decimal.Decimal `db:"amount"`
	Description string          `db:"description"`
	Category    *string         `db:"category"`
	ReceiptDate *time.Time      `db:"receipt_date"`
	ReceiptKey  *string         `db:"receipt_key"`
	Status      string          `db:"status"`
	SubmittedAt time.Time       `db:"submitted_at"`
	DecidedAt   *time.Time      `db:"decided_at"`
	DecidedBy   *string         `db:"decided_by"`
	Notes       *string         `db:"notes"`

	// Submitter identity joined from users; set only by the admin listing
	// queries, nil everywhere else.
	SubmitterFirstName *string `db:"first_name"`
	SubmitterLastName  *string `db:"last_name"`
	SubmitterEmail     *string `db:"email"`
}
