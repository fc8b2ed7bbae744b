package services

import (
	"context"

	"github.com/vzlabs/expense_tracker_app/internal/core/domain"
)

// UserSvcFacade defines user lookup operations. Identity issuance lives in
// the external identity service; this backend only reads the user rows that
// claims reference.
type UserSvcFacade interface {
	// GetUserByID retrieves one user, or apperrors.ErrNotFound.
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)
}
