package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/vzlabs/expense_tracker_app/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		ExpenseRepo: newPgxExpenseRepository(dbPool),
		UserRepo:    newPgxUserRepository(dbPool),
	}
}
