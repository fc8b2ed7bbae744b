package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/vzlabs/expense_tracker_app/internal/apperrors"
	"github.com/vzlabs/expense_tracker_app/internal/core/domain"
	portssvc "github.com/vzlabs/expense_tracker_app/internal/core/ports/services"
	"github.com/vzlabs/expense_tracker_app/internal/dto"
	"github.com/vzlabs/expense_tracker_app/internal/middleware"
)

// maxReceiptSize caps uploaded receipt images at 10MB.
const maxReceiptSize = 10 << 20

// receiptURLExpiry bounds how long a presigned receipt link stays valid.
const receiptURLExpiry = 15 * time.Minute

// expenseHandler handles HTTP requests related to expense claims.
type expenseHandler struct {
	expenseService portssvc.ExpenseSvcFacade
	extractor      portssvc.ReceiptExtractorSvc
	receipts       portssvc.ReceiptStore
}

// newExpenseHandler creates a new expenseHandler.
func newExpenseHandler(es portssvc.ExpenseSvcFacade, ex portssvc.ReceiptExtractorSvc, rs portssvc.ReceiptStore) *expenseHandler {
	return &expenseHandler{
		expenseService: es,
		extractor:      ex,
		receipts:       rs,
	}
}

// RegisterExpenseRoutes registers all expense-related routes.
func RegisterExpenseRoutes(rg *gin.RouterGroup, services *portssvc.ServiceContainer) {
	h := newExpenseHandler(services.Expense, services.Extractor, services.Receipts)

	expenses := rg.Group("/expenses")
	{
		expenses.POST("", h.submitExpense)
		expenses.POST("/extract-receipt", h.extractReceipt)
		expenses.GET("/mine", h.listMyExpenses)
		expenses.GET("/pending", middleware.RequireRole(domain.RoleAdmin), h.listPendingExpenses)
		expenses.GET("", middleware.RequireRole(domain.RoleAdmin), h.listAllExpenses)
		expenses.PATCH("/:id/status", middleware.RequireRole(domain.RoleAdmin), h.decideExpense)
		expenses.GET("/:id/receipt", h.getReceiptURL)
	}
}

// submitExpense godoc
// @Summary Submit a new expense claim
// @Description Creates a pending expense claim from a multipart form with a receipt image
// @Tags expenses
// @Accept  multipart/form-data
// @Produce json
// @Param   amount formData string true "Claim amount, e.g. 42.00"
// @Param   description formData string true "What the expense was for"
// @Param   receiptDate formData string false "Date on the receipt (YYYY-MM-DD)"
// @Param   category formData string false "office|travel|meals|equipment|utilities|other"
// @Param   receipt formData file true "Receipt image"
// @Success 201 {object} dto.SubmitExpenseResponse
// @Failure 400 {object} map[string]string "Invalid input or missing image"
// @Failure 500 {object} map[string]string "Storage failure"
// @Security BearerAuth
// @Router /expenses [post]
func (h *expenseHandler) submitExpense(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	submitterID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var form dto.SubmitExpenseForm
	if err := c.ShouldBind(&form); err != nil {
		logger.Warn("Failed to bind expense submission form", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(form.Amount))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount"})
		return
	}

	var receiptDate *time.Time
	if form.ReceiptDate != "" {
		parsed, err := parseReceiptDate(form.ReceiptDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid receiptDate, expected YYYY-MM-DD"})
			return
		}
		receiptDate = &parsed
	}

	content, originalName, contentType, ok := h.readReceiptUpload(c)
	if !ok {
		return
	}

	receiptKey, err := h.receipts.Save(c.Request.Context(), content, originalName, contentType)
	if err != nil {
		logger.Error("Failed to store receipt image", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store receipt image"})
		return
	}

	claim, err := h.expenseService.SubmitClaim(c.Request.Context(), submitterID, dto.SubmitExpenseRequest{
		Amount:      amount,
		Description: form.Description,
		Category:    domain.Category(form.Category),
		ReceiptDate: receiptDate,
		ReceiptKey:  receiptKey,
	})
	if err != nil {
		respondExpenseError(c, err)
		return
	}

	logger.Info("Expense claim submitted", slog.String("claim_id", claim.ClaimID))
	c.JSON(http.StatusCreated, dto.SubmitExpenseResponse{
		ID:      claim.ClaimID,
		Message: "Expense submitted successfully",
	})
}

// extractReceipt godoc
// @Summary Extract text and a suggested amount from a receipt image
// @Description Runs OCR on the uploaded image; independent of claim submission
// @Tags expenses
// @Accept  multipart/form-data
// @Produce json
// @Param   receipt formData file true "Receipt image"
// @Success 200 {object} dto.ExtractReceiptResponse
// @Failure 400 {object} map[string]string "Empty or non-image upload"
// @Failure 500 {object} map[string]string "OCR engine failure"
// @Security BearerAuth
// @Router /expenses/extract-receipt [post]
func (h *expenseHandler) extractReceipt(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	content, _, _, ok := h.readReceiptUpload(c)
	if !ok {
		return
	}

	result, err := h.extractor.Extract(c.Request.Context(), content)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidImage) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No image provided"})
			return
		}
		logger.Error("Receipt extraction failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to extract text from image"})
		return
	}

	c.JSON(http.StatusOK, dto.ExtractReceiptResponse{
		ExtractedText:   result.RawText,
		SuggestedAmount: result.SuggestedAmount,
		Message:         "Text extracted successfully",
	})
}

// listMyExpenses godoc
// @Summary List the caller's expense claims
// @Description Returns the caller's claims, newest first
// @Tags expenses
// @Produce json
// @Success 200 {object} dto.ListExpensesResponse
// @Security BearerAuth
// @Router /expenses/mine [get]
func (h *expenseHandler) listMyExpenses(c *gin.Context) {
	submitterID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	claims, err := h.expenseService.ListMine(c.Request.Context(), submitterID)
	if err != nil {
		respondExpenseError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToListExpensesResponse(claims))
}

// listPendingExpenses godoc
// @Summary List all pending expense claims
// @Description Admin review queue, oldest submission first
// @Tags expenses
// @Produce json
// @Success 200 {object} dto.ListExpensesResponse
// @Failure 403 {object} map[string]string "Not an admin"
// @Security BearerAuth
// @Router /expenses/pending [get]
func (h *expenseHandler) listPendingExpenses(c *gin.Context) {
	role, _ := middleware.GetUserRoleFromContext(c)

	claims, err := h.expenseService.ListPending(c.Request.Context(), role)
	if err != nil {
		respondExpenseError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToListExpensesResponse(claims))
}

// listAllExpenses godoc
// @Summary List all expense claims
// @Description Admin only; optional status filter, unknown filter values are ignored
// @Tags expenses
// @Produce json
// @Param   status query string false "pending|approved|rejected"
// @Success 200 {object} dto.ListExpensesResponse
// @Failure 403 {object} map[string]string "Not an admin"
// @Security BearerAuth
// @Router /expenses [get]
func (h *expenseHandler) listAllExpenses(c *gin.Context) {
	role, _ := middleware.GetUserRoleFromContext(c)

	claims, err := h.expenseService.ListAll(c.Request.Context(), role, c.Query("status"))
	if err != nil {
		respondExpenseError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToListExpensesResponse(claims))
}

// decideExpense godoc
// @Summary Approve or reject a pending expense claim
// @Description Applies a terminal decision; racing decisions lose with a 404
// @Tags expenses
// @Accept  json
// @Produce json
// @Param   id path string true "Claim ID"
// @Param   decision body dto.DecideExpenseRequest true "Decision"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string "Invalid decision"
// @Failure 403 {object} map[string]string "Not an admin"
// @Failure 404 {object} map[string]string "Claim missing or already decided"
// @Security BearerAuth
// @Router /expenses/{id}/status [patch]
func (h *expenseHandler) decideExpense(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	actorID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	role, _ := middleware.GetUserRoleFromContext(c)

	var req dto.DecideExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	claimID := c.Param("id")
	if err := h.expenseService.DecideClaim(c.Request.Context(), actorID, role, claimID, req); err != nil {
		respondExpenseError(c, err)
		return
	}

	logger.Info("Expense claim decided",
		slog.String("claim_id", claimID),
		slog.String("decision", req.Status))
	c.JSON(http.StatusOK, gin.H{"message": "Expense status updated successfully"})
}

// getReceiptURL godoc
// @Summary Resolve a claim's receipt image to a download URL
// @Description Redirects to a time-limited presigned URL for the stored image
// @Tags expenses
// @Param   id path string true "Claim ID"
// @Success 307
// @Failure 404 {object} map[string]string "Claim or image not found"
// @Security BearerAuth
// @Router /expenses/{id}/receipt [get]
func (h *expenseHandler) getReceiptURL(c *gin.Context) {
	actorID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	role, _ := middleware.GetUserRoleFromContext(c)

	claim, err := h.expenseService.GetClaim(c.Request.Context(), actorID, role, c.Param("id"))
	if err != nil {
		respondExpenseError(c, err)
		return
	}
	if claim.ReceiptKey == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "No receipt image attached"})
		return
	}

	url, err := h.receipts.ResolveURL(c.Request.Context(), claim.ReceiptKey, receiptURLExpiry)
	if err != nil {
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("Failed to presign receipt URL", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve receipt image"})
		return
	}
	c.Redirect(http.StatusTemporaryRedirect, url)
}

// readReceiptUpload parses the "receipt" file part, enforcing the size cap
// and the image content-type contract. On failure it writes the error
// response and returns ok=false.
func (h *expenseHandler) readReceiptUpload(c *gin.Context) (content []byte, originalName, contentType string, ok bool) {
	file, header, err := c.Request.FormFile("receipt")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No image provided"})
		return nil, "", "", false
	}
	defer file.Close()

	if header.Size > maxReceiptSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Receipt image exceeds the 10MB limit"})
		return nil, "", "", false
	}

	content, err = io.ReadAll(io.LimitReader(file, maxReceiptSize+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read uploaded image"})
		return nil, "", "", false
	}
	if len(content) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No image provided"})
		return nil, "", "", false
	}

	contentType = http.DetectContentType(content)
	if !strings.HasPrefix(contentType, "image/") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only image files are allowed"})
		return nil, "", "", false
	}

	return content, header.Filename, contentType, true
}

func parseReceiptDate(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}
