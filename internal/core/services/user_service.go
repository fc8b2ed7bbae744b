package services

import (
	"context"

	"github.com/vzlabs/expense_tracker_app/internal/core/domain"
	portsrepo "github.com/vzlabs/expense_tracker_app/internal/core/ports/repositories"
	portssvc "github.com/vzlabs/expense_tracker_app/internal/core/ports/services"
)

type userService struct {
	userRepo portsrepo.UserRepositoryFacade
}

// NewUserService creates the user lookup service.
func NewUserService(userRepo portsrepo.UserRepositoryFacade) portssvc.UserSvcFacade {
	return &userService{userRepo: userRepo}
}

var _ portssvc.UserSvcFacade = (*userService)(nil)

func (s *userService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	return s.userRepo.FindUserByID(ctx, userID)
}
