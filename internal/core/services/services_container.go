package services

import (
	portsrepo "github.com/vzlabs/expense_tracker_app/internal/core/ports/repositories"
	portssvc "github.com/vzlabs/expense_tracker_app/internal/core/ports/services"
)

// NewServiceContainer creates a new service container with properly
// initialized dependencies.
func NewServiceContainer(
	repos portsrepo.RepositoryProvider,
	publisher portssvc.EventPublisher,
	extractor portssvc.ReceiptExtractorSvc,
	receipts portssvc.ReceiptStore,
) *portssvc.ServiceContainer {
	return &portssvc.ServiceContainer{
		Expense:   NewExpenseService(repos.ExpenseRepo, publisher),
		Users:     NewUserService(repos.UserRepo),
		Extractor: extractor,
		Receipts:  receipts,
	}
}
