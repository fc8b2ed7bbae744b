package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vzlabs/expense_tracker_app/internal/apperrors"
	"github.com/vzlabs/expense_tracker_app/internal/core/domain"
	portsrepo "github.com/vzlabs/expense_tracker_app/internal/core/ports/repositories"
	"github.com/vzlabs/expense_tracker_app/internal/models"
)

type PgxUserRepository struct {
	db *pgxpool.Pool
}

func newPgxUserRepository(db *pgxpool.Pool) portsrepo.UserRepositoryFacade {
	return &PgxUserRepository{db: db}
}

// Ensure PgxUserRepository implements portsrepo.UserRepositoryFacade
var _ portsrepo.UserRepositoryFacade = (*PgxUserRepository)(nil)

// Helper to convert models.User to domain.User
func toDomainUser(m models.User) domain.User {
	return domain.User{
		UserID:    m.UserID,
		Email:     m.Email,
		FirstName: m.FirstName,
		LastName:  m.LastName,
		Role:      domain.Role(m.Role),
		CreatedAt: m.CreatedAt,
	}
}

func (r *PgxUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	query := `
		SELECT user_id, email, first_name, last_name, role, created_at
		FROM users
		WHERE user_id = $1;
	`
	var m models.User
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&m.UserID,
		&m.Email,
		&m.FirstName,
		&m.LastName,
		&m.Role,
		&m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user by ID %s: %w", userID, err)
	}

	u := toDomainUser(m)
	return &u, nil
}

func (r *PgxUserRepository) FindAdminEmails(ctx context.Context) ([]string, error) {
	query := `
		SELECT email
		FROM users
		WHERE role = $1;
	`
	rows, err := r.db.Query(ctx, query, string(domain.RoleAdmin))
	if err != nil {
		return nil, fmt.Errorf("failed to query admin emails: %w", err)
	}
	defer rows.Close()

	emails := []string{}
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, fmt.Errorf("failed to scan admin email: %w", err)
		}
		emails = append(emails, email)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating admin email rows: %w", rows.Err())
	}
	return emails, nil
}
