package repositories

// RepositoryProvider groups the repositories the service layer needs, so
// wiring code can pass one value instead of each repository individually.
type RepositoryProvider struct {
	ExpenseRepo ExpenseRepositoryFacade
	UserRepo    UserRepositoryFacade
}
