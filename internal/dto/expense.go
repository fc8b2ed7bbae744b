package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vzlabs/expense_tracker_app/internal/core/domain"
)

// SubmitExpenseForm is the multipart form of the submit endpoint. Amount and
// receiptDate arrive as strings and are parsed by the handler; the receipt
// image travels as the "receipt" file part.
type SubmitExpenseForm struct {
	Amount      string `form:"amount" binding:"required"`
	Description string `form:"description" binding:"required"`
	ReceiptDate string `form:"receiptDate"` // ISO-8601 date, optional
	Category    string `form:"category" binding:"omitempty,expensecategory"`
}

// SubmitExpenseRequest is the parsed, typed submission handed to the service.
type SubmitExpenseRequest struct {
	Amount      decimal.Decimal
	Description string
	Category    domain.Category
	ReceiptDate *time.Time
	ReceiptKey  string
}

// DecideExpenseRequest carries an admin's decision on a pending claim.
type DecideExpenseRequest struct {
	Status string  `json:"status" binding:"required,oneof=approved rejected"`
	Notes  *string `json:"notes"`
}

// SubmitExpenseResponse acknowledges a created claim.
type SubmitExpenseResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// ExpenseResponse is the API representation of a claim.
type ExpenseResponse struct {
	ID          string     `json:"id"`
	SubmitterID string     `json:"userId"`
	Amount      string     `json:"amount"`
	Description string     `json:"description"`
	Category    string     `json:"category,omitempty"`
	ReceiptDate *time.Time `json:"receiptDate,omitempty"`
	ReceiptKey  string     `json:"receiptImage,omitempty"`
	Status      string     `json:"status"`
	SubmittedAt time.Time  `json:"submittedAt"`
	DecidedAt   *time.Time `json:"decidedAt,omitempty"`
	DecidedBy   *string    `json:"decidedBy,omitempty"`
	Notes       *string    `json:"notes,omitempty"`

	// Submitter identity, present in admin listings only.
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email,omitempty"`
}

// ListExpensesResponse wraps a list of claims.
type ListExpensesResponse struct {
	Expenses []ExpenseResponse `json:"expenses"`
}

// ToExpenseResponse converts a domain claim to its API representation.
func ToExpenseResponse(claim *domain.ExpenseClaim) ExpenseResponse {
	resp := ExpenseResponse{
		ID:          claim.ClaimID,
		SubmitterID: claim.SubmitterID,
		Amount:      claim.Amount.StringFixed(2),
		Description: claim.Description,
		Category:    string(claim.Category),
		ReceiptDate: claim.ReceiptDate,
		ReceiptKey:  claim.ReceiptKey,
		Status:      string(claim.Status),
		SubmittedAt: claim.SubmittedAt,
		DecidedAt:   claim.DecidedAt,
		DecidedBy:   claim.DecidedBy,
		Notes:       claim.Notes,
	}
	if claim.Submitter != nil {
		resp.FirstName = claim.Submitter.FirstName
		resp.LastName = claim.Submitter.LastName
		resp.Email = claim.Submitter.Email
	}
	return resp
}

// ToListExpensesResponse converts a slice of domain claims to the list DTO.
func ToListExpensesResponse(claims []domain.ExpenseClaim) ListExpensesResponse {
	responses := make([]ExpenseResponse, len(claims))
	for i := range claims {
		responses[i] = ToExpenseResponse(&claims[i])
	}
	return ListExpensesResponse{Expenses: responses}
}
