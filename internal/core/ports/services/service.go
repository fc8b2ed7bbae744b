package services

// ServiceContainer holds the service interfaces handlers depend on.
type ServiceContainer struct {
	Expense   ExpenseSvcFacade
	Users     UserSvcFacade
	Extractor ReceiptExtractorSvc
	Receipts  ReceiptStore
}
