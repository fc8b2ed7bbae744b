package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vzlabs/expense_tracker_app/internal/apperrors"
	"github.com/vzlabs/expense_tracker_app/internal/core/domain"
	portsrepo "github.com/vzlabs/expense_tracker_app/internal/core/ports/repositories"
	portssvc "github.com/vzlabs/expense_tracker_app/internal/core/ports/services"
	"github.com/vzlabs/expense_tracker_app/internal/dto"
)

// expenseService is the workflow engine for expense claims. It enforces the
// state machine (pending -> approved|rejected, both terminal), persists
// through the repository and fans lifecycle events out through the publisher.
// It holds no claim state of its own between calls: every transition is
// decided against the currently persisted status.
type expenseService struct {
	expenseRepo portsrepo.ExpenseRepositoryFacade
	publisher   portssvc.EventPublisher
	now         func() time.Time
}

// NewExpenseService creates the expense workflow service.
func NewExpenseService(expenseRepo portsrepo.ExpenseRepositoryFacade, publisher portssvc.EventPublisher) portssvc.ExpenseSvcFacade {
	if publisher == nil {
		publisher = portssvc.NoopPublisher{}
	}
	return &expenseService{
		expenseRepo: expenseRepo,
		publisher:   publisher,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

var _ portssvc.ExpenseSvcFacade = (*expenseService)(nil)

// SubmitClaim validates the submission, creates the claim in pending state
// and publishes a new-expense event to the admin channel. The event goes out
// only after the row is durably created, so a consumer reacting to it can
// always read the claim back. Publication is best-effort and cannot fail the
// submission.
func (s *expenseService) SubmitClaim(ctx context.Context, submitterID string, req dto.SubmitExpenseRequest) (*domain.ExpenseClaim, error) {
	if err := validateSubmission(req); err != nil {
		return nil, err
	}

	claim := domain.ExpenseClaim{
		ClaimID:     uuid.NewString(),
		SubmitterID: submitterID,
		Amount:      req.Amount,
		Description: strings.TrimSpace(req.Description),
		Category:    req.Category,
		ReceiptDate: req.ReceiptDate,
		ReceiptKey:  req.ReceiptKey,
		Status:      domain.StatusPending,
		SubmittedAt: s.now(),
	}

	if err := s.expenseRepo.SaveClaim(ctx, claim); err != nil {
		return nil, fmt.Errorf("failed to create expense claim: %w", err)
	}

	s.publisher.Publish(domain.AdminChannel, domain.Event{
		Kind: domain.EventNewClaim,
		Payload: domain.NewClaimPayload{
			ClaimID:     claim.ClaimID,
			SubmitterID: claim.SubmitterID,
			Amount:      claim.Amount,
			Description: claim.Description,
			Status:      claim.Status,
		},
	})

	return &claim, nil
}

func validateSubmission(req dto.SubmitExpenseRequest) error {
	if !req.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be greater than zero", apperrors.ErrValidation)
	}
	if !req.Amount.Equal(req.Amount.Round(2)) {
		return fmt.Errorf("%w: amount must have at most two decimal places", apperrors.ErrValidation)
	}
	if strings.TrimSpace(req.Description) == "" {
		return fmt.Errorf("%w: description must not be empty", apperrors.ErrValidation)
	}
	if req.ReceiptKey == "" {
		return fmt.Errorf("%w: receipt image is required", apperrors.ErrValidation)
	}
	if !domain.ValidCategory(req.Category) {
		return fmt.Errorf("%w: unknown category %q", apperrors.ErrValidation, req.Category)
	}
	return nil
}

// DecideClaim applies an admin's decision to a pending claim. The current
// status is re-checked at the moment of transition by the repository's
// conditional update, never from a stale read, so among racing decisions
// exactly one wins and the rest get apperrors.ErrAlreadyDecided. The
// expense-updated event targets the submitter's personal channel and is
// published only after the update commits.
func (s *expenseService) DecideClaim(ctx context.Context, actorID string, actorRole domain.Role, claimID string, req dto.DecideExpenseRequest) error {
	if actorRole != domain.RoleAdmin {
		return fmt.Errorf("%w: only admins may decide expense claims", apperrors.ErrForbidden)
	}

	decision, ok := domain.ParseClaimStatus(req.Status)
	if !ok || !decision.IsDecision() {
		return fmt.Errorf("%w: decision must be approved or rejected", apperrors.ErrValidation)
	}

	submitterID, err := s.expenseRepo.DecideClaim(ctx, claimID, decision, actorID, s.now(), req.Notes)
	if err != nil {
		if errors.Is(err, apperrors.ErrAlreadyDecided) {
			return err
		}
		return fmt.Errorf("failed to decide expense claim %s: %w", claimID, err)
	}

	s.publisher.Publish(domain.UserChannel(submitterID), domain.Event{
		Kind: domain.EventClaimDecided,
		Payload: domain.ClaimDecidedPayload{
			ClaimID: claimID,
			Status:  decision,
			Notes:   req.Notes,
		},
	})

	return nil
}

func (s *expenseService) ListMine(ctx context.Context, submitterID string) ([]domain.ExpenseClaim, error) {
	claims, err := s.expenseRepo.FindClaimsBySubmitter(ctx, submitterID)
	if err != nil {
		return nil, fmt.Errorf("failed to list claims for submitter %s: %w", submitterID, err)
	}
	return claims, nil
}

func (s *expenseService) ListPending(ctx context.Context, actorRole domain.Role) ([]domain.ExpenseClaim, error) {
	if actorRole != domain.RoleAdmin {
		return nil, fmt.Errorf("%w: only admins may list pending claims", apperrors.ErrForbidden)
	}
	claims, err := s.expenseRepo.FindPendingClaims(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending claims: %w", err)
	}
	return claims, nil
}

// ListAll tolerates unknown status filter values by ignoring them, matching
// the behavior clients already rely on.
func (s *expenseService) ListAll(ctx context.Context, actorRole domain.Role, statusFilter string) ([]domain.ExpenseClaim, error) {
	if actorRole != domain.RoleAdmin {
		return nil, fmt.Errorf("%w: only admins may list all claims", apperrors.ErrForbidden)
	}

	var filter *domain.ClaimStatus
	if status, ok := domain.ParseClaimStatus(statusFilter); ok {
		filter = &status
	}

	claims, err := s.expenseRepo.FindClaims(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list claims: %w", err)
	}
	return claims, nil
}

func (s *expenseService) GetClaim(ctx context.Context, actorID string, actorRole domain.Role, claimID string) (*domain.ExpenseClaim, error) {
	claim, err := s.expenseRepo.FindClaimByID(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if actorRole != domain.RoleAdmin && claim.SubmitterID != actorID {
		return nil, fmt.Errorf("%w: not your claim", apperrors.ErrForbidden)
	}
	return claim, nil
}
