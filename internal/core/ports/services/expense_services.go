package services

import (
	"context"

	"github.com/vzlabs/expense_tracker_app/internal/core/domain"
	"github.com/vzlabs/expense_tracker_app/internal/dto"
)

// ExpenseReaderSvc defines read operations for expense claims.
type ExpenseReaderSvc interface {
	// ListMine retrieves the submitter's own claims, newest first.
	ListMine(ctx context.Context, submitterID string) ([]domain.ExpenseClaim, error)

	// ListPending retrieves all pending claims oldest first. Admin only.
	ListPending(ctx context.Context, actorRole domain.Role) ([]domain.ExpenseClaim, error)

	// ListAll retrieves all claims newest first, optionally filtered by
	// status. An unknown filter value is ignored rather than rejected.
	// Admin only.
	ListAll(ctx context.Context, actorRole domain.Role, statusFilter string) ([]domain.ExpenseClaim, error)

	// GetClaim retrieves one claim. Submitters may read their own claims;
	// admins may read any.
	GetClaim(ctx context.Context, actorID string, actorRole domain.Role, claimID string) (*domain.ExpenseClaim, error)
}

// ExpenseWriterSvc defines the lifecycle transitions of expense claims.
type ExpenseWriterSvc interface {
	// SubmitClaim validates and creates a new pending claim, then publishes
	// a new-expense event to the admin channel best-effort.
	SubmitClaim(ctx context.Context, submitterID string, req dto.SubmitExpenseRequest) (*domain.ExpenseClaim, error)

	// DecideClaim applies an approve/reject decision to a pending claim,
	// then publishes an expense-updated event to the submitter's channel
	// best-effort. Exactly one of several racing decisions wins; the rest
	// receive apperrors.ErrAlreadyDecided.
	DecideClaim(ctx context.Context, actorID string, actorRole domain.Role, claimID string, req dto.DecideExpenseRequest) error
}

// ExpenseSvcFacade combines the expense workflow interfaces.
type ExpenseSvcFacade interface {
	ExpenseReaderSvc
	ExpenseWriterSvc
}
