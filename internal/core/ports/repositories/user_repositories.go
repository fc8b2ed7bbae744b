package repositories

import (
	"context"

	"github.com/vzlabs/expense_tracker_app/internal/core/domain"
)

// UserReader defines read operations for user data.
type UserReader interface {
	// FindUserByID retrieves a specific user by their ID.
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)

	// FindAdminEmails returns the email addresses of all admin users.
	FindAdminEmails(ctx context.Context) ([]string, error)
}

// UserRepositoryFacade combines all user repository interfaces.
type UserRepositoryFacade interface {
	UserReader
}
