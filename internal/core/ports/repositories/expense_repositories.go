package repositories

import (
	"context"
	"time"

	"github.com/vzlabs/expense_tracker_app/internal/core/domain"
)

// ExpenseReader defines read operations for expense claim data.
type ExpenseReader interface {
	// FindClaimByID retrieves a specific claim by its ID.
	FindClaimByID(ctx context.Context, claimID string) (*domain.ExpenseClaim, error)

	// FindClaimsBySubmitter retrieves a submitter's claims, newest first.
	FindClaimsBySubmitter(ctx context.Context, submitterID string) ([]domain.ExpenseClaim, error)

	// FindPendingClaims retrieves all pending claims, oldest first, so the
	// review queue is worked in FIFO order.
	FindPendingClaims(ctx context.Context) ([]domain.ExpenseClaim, error)

	// FindClaims retrieves all claims newest first, optionally filtered to
	// one status. A nil filter means no filtering.
	FindClaims(ctx context.Context, statusFilter *domain.ClaimStatus) ([]domain.ExpenseClaim, error)
}

// ExpenseWriter defines write operations for expense claim data.
type ExpenseWriter interface {
	// SaveClaim persists a new claim.
	SaveClaim(ctx context.Context, claim domain.ExpenseClaim) error

	// DecideClaim atomically applies a decision to a claim that is still
	// pending, setting status, decided_at, decided_by and notes in one
	// conditional update. It returns the submitter's user ID so the caller
	// can notify them. If the claim does not exist or is no longer pending
	// it returns apperrors.ErrAlreadyDecided and changes nothing.
	DecideClaim(ctx context.Context, claimID string, decision domain.ClaimStatus, decidedBy string, decidedAt time.Time, notes *string) (submitterID string, err error)
}

// ExpenseRepositoryFacade combines all expense repository interfaces for
// clients that need full access.
type ExpenseRepositoryFacade interface {
	ExpenseReader
	ExpenseWriter
}
