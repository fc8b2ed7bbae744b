package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vzlabs/expense_tracker_app/internal/apperrors"
	"github.com/vzlabs/expense_tracker_app/internal/core/domain"
	portsrepo "github.com/vzlabs/expense_tracker_app/internal/core/ports/repositories"
	"github.com/vzlabs/expense_tracker_app/internal/models"
)

type PgxExpenseRepository struct {
	db *pgxpool.Pool
}

func newPgxExpenseRepository(db *pgxpool.Pool) portsrepo.ExpenseRepositoryFacade {
	return &PgxExpenseRepository{db: db}
}

// Ensure PgxExpenseRepository implements portsrepo.ExpenseRepositoryFacade
var _ portsrepo.ExpenseRepositoryFacade = (*PgxExpenseRepository)(nil)

// Helper to convert domain.ExpenseClaim to models.ExpenseClaim
func toModelClaim(d domain.ExpenseClaim) models.ExpenseClaim {
	m := models.ExpenseClaim{
		ClaimID:     d.ClaimID,
		SubmitterID: d.SubmitterID,
		Amount:      d.Amount,
		Description: d.Description,
		ReceiptDate: d.ReceiptDate,
		Status:      string(d.Status),
		SubmittedAt: d.SubmittedAt,
		DecidedAt:   d.DecidedAt,
		DecidedBy:   d.DecidedBy,
		Notes:       d.Notes,
	}
	if d.Category != "" {
		category := string(d.Category)
		m.Category = &category
	}
	if d.ReceiptKey != "" {
		key := d.ReceiptKey
		m.ReceiptKey = &key
	}
	return m
}

// Helper to convert models.ExpenseClaim to domain.ExpenseClaim
func toDomainClaim(m models.ExpenseClaim) domain.ExpenseClaim {
	d := domain.ExpenseClaim{
		ClaimID:     m.ClaimID,
		SubmitterID: m.SubmitterID,
		Amount:      m.Amount,
		Description: m.Description,
		ReceiptDate: m.ReceiptDate,
		Status:      domain.ClaimStatus(m.Status),
		SubmittedAt: m.SubmittedAt,
		DecidedAt:   m.DecidedAt,
		DecidedBy:   m.DecidedBy,
		Notes:       m.Notes,
	}
	if m.Category != nil {
		d.Category = domain.Category(*m.Category)
	}
	if m.ReceiptKey != nil {
		d.ReceiptKey = *m.ReceiptKey
	}
	if m.SubmitterFirstName != nil && m.SubmitterLastName != nil && m.SubmitterEmail != nil {
		d.Submitter = &domain.Submitter{
			FirstName: *m.SubmitterFirstName,
			LastName:  *m.SubmitterLastName,
			Email:     *m.SubmitterEmail,
		}
	}
	return d
}

const claimColumns = `claim_id, submitter_id, amount, description, category, receipt_date, receipt_key, status, submitted_at, decided_at, decided_by, notes`

// claimSubmitterColumns is the admin-listing projection: every claim column
// plus the submitter's identity joined from users.
const claimSubmitterColumns = `e.claim_id, e.submitter_id, e.amount, e.description, e.category, e.receipt_date, e.receipt_key, e.status, e.submitted_at, e.decided_at, e.decided_by, e.notes, u.first_name, u.last_name, u.email`

func scanClaim(row pgx.Row) (models.ExpenseClaim, error) {
	var m models.ExpenseClaim
	err := row.Scan(
		&m.ClaimID,
		&m.SubmitterID,
		&m.Amount,
		&m.Description,
		&m.Category,
		&m.ReceiptDate,
		&m.ReceiptKey,
		&m.Status,
		&m.SubmittedAt,
		&m.DecidedAt,
		&m.DecidedBy,
		&m.Notes,
	)
	return m, err
}

func scanClaimWithSubmitter(row pgx.Row) (models.ExpenseClaim, error) {
	var m models.ExpenseClaim
	err := row.Scan(
		&m.ClaimID,
		&m.SubmitterID,
		&m.Amount,
		&m.Description,
		&m.Category,
		&m.ReceiptDate,
		&m.ReceiptKey,
		&m.Status,
		&m.SubmittedAt,
		&m.DecidedAt,
		&m.DecidedBy,
		&m.Notes,
		&m.SubmitterFirstName,
		&m.SubmitterLastName,
		&m.SubmitterEmail,
	)
	return m, err
}

func (r *PgxExpenseRepository) SaveClaim(ctx context.Context, claim domain.ExpenseClaim) error {
	m := toModelClaim(claim)
	query := `
		INSERT INTO expenses (` + claimColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := r.db.Exec(ctx, query,
		m.ClaimID,
		m.SubmitterID,
		m.Amount,
		m.Description,
		m.Category,
		m.ReceiptDate,
		m.ReceiptKey,
		m.Status,
		m.SubmittedAt,
		m.DecidedAt,
		m.DecidedBy,
		m.Notes,
	)
	if err != nil {
		return fmt.Errorf("failed to save expense claim %s: %w", m.ClaimID, err)
	}
	return nil
}

// DecideClaim applies the decision with one conditional update. The WHERE
// status='pending' guard is what resolves the double-decision race: among
// concurrently racing admins exactly one statement matches the row, and the
// rest see zero rows and get ErrAlreadyDecided. Correctness comes from the
// storage layer, not an in-process lock, so it holds across server instances.
func (r *PgxExpenseRepository) DecideClaim(ctx context.Context, claimID string, decision domain.ClaimStatus, decidedBy string, decidedAt time.Time, notes *string) (string, error) {
	query := `
		UPDATE expenses
		SET status = $2, decided_at = $3, decided_by = $4, notes = $5
		WHERE claim_id = $1 AND status = 'pending'
		RETURNING submitter_id;
	`
	var submitterID string
	err := r.db.QueryRow(ctx, query, claimID, string(decision), decidedAt, decidedBy, notes).Scan(&submitterID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.ErrAlreadyDecided
		}
		return "", fmt.Errorf("failed to decide expense claim %s: %w", claimID, err)
	}
	return submitterID, nil
}

func (r *PgxExpenseRepository) FindClaimByID(ctx context.Context, claimID string) (*domain.ExpenseClaim, error) {
	query := `
		SELECT ` + claimColumns + `
		FROM expenses
		WHERE claim_id = $1;
	`
	m, err := scanClaim(r.db.QueryRow(ctx, query, claimID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find expense claim by ID %s: %w", claimID, err)
	}
	d := toDomainClaim(m)
	return &d, nil
}

func (r *PgxExpenseRepository) FindClaimsBySubmitter(ctx context.Context, submitterID string) ([]domain.ExpenseClaim, error) {
	query := `
		SELECT ` + claimColumns + `
		FROM expenses
		WHERE submitter_id = $1
		ORDER BY submitted_at DESC;
	`
	rows, err := r.db.Query(ctx, query, submitterID)
	if err != nil {
		return nil, fmt.Errorf("failed to query claims for submitter %s: %w", submitterID, err)
	}
	defer rows.Close()
	return collectClaims(rows, scanClaim)
}

func (r *PgxExpenseRepository) FindPendingClaims(ctx context.Context) ([]domain.ExpenseClaim, error) {
	// Oldest first keeps the review queue FIFO so no claim is starved.
	// The users join gives reviewers the submitter's name and email.
	query := `
		SELECT ` + claimSubmitterColumns + `
		FROM expenses e
		JOIN users u ON u.user_id = e.submitter_id
		WHERE e.status = 'pending'
		ORDER BY e.submitted_at ASC;
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending claims: %w", err)
	}
	defer rows.Close()
	return collectClaims(rows, scanClaimWithSubmitter)
}

func (r *PgxExpenseRepository) FindClaims(ctx context.Context, statusFilter *domain.ClaimStatus) ([]domain.ExpenseClaim, error) {
	query := `
		SELECT ` + claimSubmitterColumns + `
		FROM expenses e
		JOIN users u ON u.user_id = e.submitter_id
	`
	args := []any{}
	if statusFilter != nil {
		query += ` WHERE e.status = $1`
		args = append(args, string(*statusFilter))
	}
	query += ` ORDER BY e.submitted_at DESC;`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query claims: %w", err)
	}
	defer rows.Close()
	return collectClaims(rows, scanClaimWithSubmitter)
}

func collectClaims(rows pgx.Rows, scan func(pgx.Row) (models.ExpenseClaim, error)) ([]domain.ExpenseClaim, error) {
	claims := []domain.ExpenseClaim{}
	for rows.Next() {
		m, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense claim row: %w", err)
		}
		claims = append(claims, toDomainClaim(m))
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating expense claim rows: %w", rows.Err())
	}
	return claims, nil
}
