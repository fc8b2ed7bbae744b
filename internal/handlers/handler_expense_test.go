package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/vzlabs/expense_tracker_app/internal/apperrors"
	"github.com/vzlabs/expense_tracker_app/internal/core/domain"
	portssvc "github.com/vzlabs/expense_tracker_app/internal/core/ports/services"
	"github.com/vzlabs/expense_tracker_app/internal/dto"
	"github.com/vzlabs/expense_tracker_app/internal/handlers"
	"github.com/vzlabs/expense_tracker_app/internal/middleware"
)

// pngBytes is a minimal payload that content-type sniffing reports as image/png.
var pngBytes = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}

// --- Mock ExpenseService ---
type MockExpenseService struct {
	mock.Mock
}

func (m *MockExpenseService) SubmitClaim(ctx context.Context, submitterID string, req dto.SubmitExpenseRequest) (*domain.ExpenseClaim, error) {
	args := m.Called(ctx, submitterID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExpenseClaim), args.Error(1)
}
func (m *MockExpenseService) DecideClaim(ctx context.Context, actorID string, actorRole domain.Role, claimID string, req dto.DecideExpenseRequest) error {
	args := m.Called(ctx, actorID, actorRole, claimID, req)
	return args.Error(0)
}
func (m *MockExpenseService) ListMine(ctx context.Context, submitterID string) ([]domain.ExpenseClaim, error) {
	args := m.Called(ctx, submitterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExpenseClaim), args.Error(1)
}
func (m *MockExpenseService) ListPending(ctx context.Context, actorRole domain.Role) ([]domain.ExpenseClaim, error) {
	args := m.Called(ctx, actorRole)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExpenseClaim), args.Error(1)
}
func (m *MockExpenseService) ListAll(ctx context.Context, actorRole domain.Role, statusFilter string) ([]domain.ExpenseClaim, error) {
	args := m.Called(ctx, actorRole, statusFilter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExpenseClaim), args.Error(1)
}
func (m *MockExpenseService) GetClaim(ctx context.Context, actorID string, actorRole domain.Role, claimID string) (*domain.ExpenseClaim, error) {
	args := m.Called(ctx, actorID, actorRole, claimID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExpenseClaim), args.Error(1)
}

var _ portssvc.ExpenseSvcFacade = (*MockExpenseService)(nil)

// --- Mock ReceiptExtractor ---
type MockReceiptExtractor struct {
	mock.Mock
}

func (m *MockReceiptExtractor) Extract(ctx context.Context, image []byte) (*portssvc.OcrResult, error) {
	args := m.Called(ctx, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*portssvc.OcrResult), args.Error(1)
}

var _ portssvc.ReceiptExtractorSvc = (*MockReceiptExtractor)(nil)

// --- Mock ReceiptStore ---
type MockReceiptStore struct {
	mock.Mock
}

func (m *MockReceiptStore) Save(ctx context.Context, content []byte, originalName, contentType string) (string, error) {
	args := m.Called(ctx, content, originalName, contentType)
	return args.String(0), args.Error(1)
}
func (m *MockReceiptStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}
func (m *MockReceiptStore) ResolveURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, key, expiry)
	return args.String(0), args.Error(1)
}

var _ portssvc.ReceiptStore = (*MockReceiptStore)(nil)

// --- Test Suite ---
type ExpenseHandlerTestSuite struct {
	suite.Suite
	router         *gin.Engine
	jwtSecret      string
	mockExpenseSvc *MockExpenseService
	mockExtractor  *MockReceiptExtractor
	mockReceipts   *MockReceiptStore
}

// generateTestToken creates a dummy JWT for testing.
func (suite *ExpenseHandlerTestSuite) generateTestToken(userID string, role domain.Role) string {
	claims := middleware.AuthClaims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedString, err := token.SignedString([]byte(suite.jwtSecret))
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return signedString
}

func (suite *ExpenseHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"

	suite.router.Use(middleware.AuthMiddleware(suite.jwtSecret))

	suite.mockExpenseSvc = new(MockExpenseService)
	suite.mockExtractor = new(MockReceiptExtractor)
	suite.mockReceipts = new(MockReceiptStore)

	v1 := suite.router.Group("/api/v1")
	handlers.RegisterExpenseRoutes(v1, &portssvc.ServiceContainer{
		Expense:   suite.mockExpenseSvc,
		Extractor: suite.mockExtractor,
		Receipts:  suite.mockReceipts,
	})
}

// multipartSubmission builds a multipart body with form fields and a receipt part.
func (suite *ExpenseHandlerTestSuite) multipartSubmission(fields map[string]string, receipt []byte) (*bytes.Buffer, string) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range fields {
		suite.NoError(writer.WriteField(key, value))
	}
	if receipt != nil {
		part, err := writer.CreateFormFile("receipt", "receipt.png")
		suite.NoError(err)
		_, err = part.Write(receipt)
		suite.NoError(err)
	}
	suite.NoError(writer.Close())
	return body, writer.FormDataContentType()
}

func (suite *ExpenseHandlerTestSuite) TestSubmitExpense_Success() {
	submitterID := uuid.NewString()
	claimID := uuid.NewString()

	suite.mockReceipts.On("Save", mock.Anything, pngBytes, "receipt.png", "image/png").
		Return("receipts/"+claimID+".png", nil)
	suite.mockExpenseSvc.On("SubmitClaim", mock.Anything, submitterID, mock.MatchedBy(func(req dto.SubmitExpenseRequest) bool {
		return req.Amount.Equal(decimal.RequireFromString("42.00")) &&
			req.Description == "Taxi" &&
			req.ReceiptKey == "receipts/"+claimID+".png"
	})).Return(&domain.ExpenseClaim{
		ClaimID:     claimID,
		SubmitterID: submitterID,
		Amount:      decimal.RequireFromString("42.00"),
		Description: "Taxi",
		Status:      domain.StatusPending,
		SubmittedAt: time.Now().UTC(),
	}, nil)

	body, contentType := suite.multipartSubmission(map[string]string{
		"amount":      "42.00",
		"description": "Taxi",
	}, pngBytes)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/expenses", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(submitterID, domain.RoleStaff))
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.SubmitExpenseResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(claimID, resp.ID)
	suite.mockExpenseSvc.AssertExpectations(suite.T())
	suite.mockReceipts.AssertExpectations(suite.T())
}

func (suite *ExpenseHandlerTestSuite) TestSubmitExpense_MissingReceipt() {
	body, contentType := suite.multipartSubmission(map[string]string{
		"amount":      "42.00",
		"description": "Taxi",
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/expenses", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(uuid.NewString(), domain.RoleStaff))
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(w.Body.String(), "No image provided")
	suite.mockReceipts.AssertNotCalled(suite.T(), "Save", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockExpenseSvc.AssertNotCalled(suite.T(), "SubmitClaim", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ExpenseHandlerTestSuite) TestSubmitExpense_NonImageUpload() {
	body, contentType := suite.multipartSubmission(map[string]string{
		"amount":      "42.00",
		"description": "Taxi",
	}, []byte("plain text, not an image"))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/expenses", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(uuid.NewString(), domain.RoleStaff))
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(w.Body.String(), "Only image files are allowed")
}

func (suite *ExpenseHandlerTestSuite) TestSubmitExpense_InvalidAmount() {
	body, contentType := suite.multipartSubmission(map[string]string{
		"amount":      "not-a-number",
		"description": "Taxi",
	}, pngBytes)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/expenses", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(uuid.NewString(), domain.RoleStaff))
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(w.Body.String(), "Invalid amount")
}

func (suite *ExpenseHandlerTestSuite) TestSubmitExpense_Unauthenticated() {
	body, contentType := suite.multipartSubmission(map[string]string{
		"amount":      "42.00",
		"description": "Taxi",
	}, pngBytes)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/expenses", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *ExpenseHandlerTestSuite) TestExtractReceipt_Success() {
	suggested := "$12.34"
	suite.mockExtractor.On("Extract", mock.Anything, pngBytes).Return(&portssvc.OcrResult{
		RawText:         "Total $12.34",
		SuggestedAmount: &suggested,
	}, nil)

	body, contentType := suite.multipartSubmission(nil, pngBytes)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/expenses/extract-receipt", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(uuid.NewString(), domain.RoleStaff))
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.ExtractReceiptResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("Total $12.34", resp.ExtractedText)
	suite.NotNil(resp.SuggestedAmount)
	suite.Equal("$12.34", *resp.SuggestedAmount)
}

func (suite *ExpenseHandlerTestSuite) TestExtractReceipt_EngineFailure() {
	suite.mockExtractor.On("Extract", mock.Anything, pngBytes).
		Return(nil, fmt.Errorf("%w: tesseract crashed", apperrors.ErrExtractionFailed))

	body, contentType := suite.multipartSubmission(nil, pngBytes)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/expenses/extract-receipt", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(uuid.NewString(), domain.RoleStaff))
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusInternalServerError, w.Code)
	suite.Contains(w.Body.String(), "Failed to extract text from image")
}

func (suite *ExpenseHandlerTestSuite) TestListMyExpenses_Success() {
	submitterID := uuid.NewString()
	claims := []domain.ExpenseClaim{
		{ClaimID: uuid.NewString(), SubmitterID: submitterID, Amount: decimal.RequireFromString("10.50"), Description: "Lunch", Status: domain.StatusPending, SubmittedAt: time.Now().UTC()},
	}
	suite.mockExpenseSvc.On("ListMine", mock.Anything, submitterID).Return(claims, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/expenses/mine", nil)
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(submitterID, domain.RoleStaff))
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.ListExpensesResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Len(resp.Expenses, 1)
	suite.Equal("10.50", resp.Expenses[0].Amount)
	suite.Equal("pending", resp.Expenses[0].Status)
}

func (suite *ExpenseHandlerTestSuite) TestListPendingExpenses_IncludesSubmitterIdentity() {
	adminID := uuid.NewString()
	claims := []domain.ExpenseClaim{
		{
			ClaimID:     uuid.NewString(),
			SubmitterID: uuid.NewString(),
			Amount:      decimal.RequireFromString("42.00"),
			Description: "Taxi",
			Status:      domain.StatusPending,
			SubmittedAt: time.Now().UTC(),
			Submitter:   &domain.Submitter{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"},
		},
	}
	suite.mockExpenseSvc.On("ListPending", mock.Anything, domain.RoleAdmin).Return(claims, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/expenses/pending", nil)
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(adminID, domain.RoleAdmin))
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.ListExpensesResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Require().Len(resp.Expenses, 1)
	suite.Equal("Ada", resp.Expenses[0].FirstName)
	suite.Equal("Lovelace", resp.Expenses[0].LastName)
	suite.Equal("ada@example.com", resp.Expenses[0].Email)
}

func (suite *ExpenseHandlerTestSuite) TestListPendingExpenses_ForbiddenForStaff() {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/expenses/pending", nil)
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(uuid.NewString(), domain.RoleStaff))
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusForbidden, w.Code)
	suite.mockExpenseSvc.AssertNotCalled(suite.T(), "ListPending", mock.Anything, mock.Anything)
}

func (suite *ExpenseHandlerTestSuite) TestListAllExpenses_ForwardsStatusFilter() {
	adminID := uuid.NewString()
	suite.mockExpenseSvc.On("ListAll", mock.Anything, domain.RoleAdmin, "approved").
		Return([]domain.ExpenseClaim{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/expenses?status=approved", nil)
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(adminID, domain.RoleAdmin))
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code)
	suite.mockExpenseSvc.AssertExpectations(suite.T())
}

func (suite *ExpenseHandlerTestSuite) TestDecideExpense_Success() {
	adminID := uuid.NewString()
	claimID := uuid.NewString()
	notes := "ok"
	suite.mockExpenseSvc.On("DecideClaim", mock.Anything, adminID, domain.RoleAdmin, claimID,
		dto.DecideExpenseRequest{Status: "approved", Notes: &notes}).Return(nil)

	body := bytes.NewBufferString(`{"status":"approved","notes":"ok"}`)
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/expenses/"+claimID+"/status", body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(adminID, domain.RoleAdmin))
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code)
	suite.mockExpenseSvc.AssertExpectations(suite.T())
}

func (suite *ExpenseHandlerTestSuite) TestDecideExpense_AlreadyDecidedMapsTo404() {
	adminID := uuid.NewString()
	claimID := uuid.NewString()
	suite.mockExpenseSvc.On("DecideClaim", mock.Anything, adminID, domain.RoleAdmin, claimID, mock.Anything).
		Return(apperrors.ErrAlreadyDecided)

	body := bytes.NewBufferString(`{"status":"rejected"}`)
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/expenses/"+claimID+"/status", body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(adminID, domain.RoleAdmin))
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusNotFound, w.Code)
	suite.Contains(w.Body.String(), "Expense not found or already decided")
}

func (suite *ExpenseHandlerTestSuite) TestDecideExpense_InvalidStatusRejectedByBinding() {
	adminID := uuid.NewString()
	body := bytes.NewBufferString(`{"status":"maybe"}`)
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/expenses/"+uuid.NewString()+"/status", body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(adminID, domain.RoleAdmin))
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockExpenseSvc.AssertNotCalled(suite.T(), "DecideClaim", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ExpenseHandlerTestSuite) TestDecideExpense_ForbiddenForStaff() {
	body := bytes.NewBufferString(`{"status":"approved"}`)
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/expenses/"+uuid.NewString()+"/status", body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(uuid.NewString(), domain.RoleStaff))
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusForbidden, w.Code)
	suite.mockExpenseSvc.AssertNotCalled(suite.T(), "DecideClaim", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ExpenseHandlerTestSuite) TestGetReceiptURL_Redirects() {
	submitterID := uuid.NewString()
	claimID := uuid.NewString()
	claim := &domain.ExpenseClaim{
		ClaimID:     claimID,
		SubmitterID: submitterID,
		ReceiptKey:  "receipts/abc.png",
		Status:      domain.StatusPending,
	}
	suite.mockExpenseSvc.On("GetClaim", mock.Anything, submitterID, domain.RoleStaff, claimID).Return(claim, nil)
	suite.mockReceipts.On("ResolveURL", mock.Anything, "receipts/abc.png", 15*time.Minute).
		Return("https://minio.example.com/receipts/abc.png?sig=x", nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/expenses/"+claimID+"/receipt", nil)
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(submitterID, domain.RoleStaff))
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusTemporaryRedirect, w.Code)
	suite.Equal("https://minio.example.com/receipts/abc.png?sig=x", w.Header().Get("Location"))
}

func (suite *ExpenseHandlerTestSuite) TestGetReceiptURL_NotFound() {
	actorID := uuid.NewString()
	claimID := uuid.NewString()
	suite.mockExpenseSvc.On("GetClaim", mock.Anything, actorID, domain.RoleStaff, claimID).
		Return(nil, apperrors.ErrNotFound)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/expenses/"+claimID+"/receipt", nil)
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(actorID, domain.RoleStaff))
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusNotFound, w.Code)
}

func TestExpenseHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(ExpenseHandlerTestSuite))
}
