package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vzlabs/expense_tracker_app/internal/apperrors"
	"github.com/vzlabs/expense_tracker_app/internal/middleware"
)

// respondExpenseError maps service errors onto HTTP responses. Every typed
// failure has a distinct caller-visible outcome; anything unrecognized is a
// generic 500 with the detail kept in the logs.
func respondExpenseError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	case errors.Is(err, apperrors.ErrAlreadyDecided):
		// Distinct message so the UI knows to re-fetch instead of retrying.
		c.JSON(http.StatusNotFound, gin.H{"error": "Expense not found or already decided"})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Expense not found"})
	case errors.Is(err, apperrors.ErrInvalidImage):
		c.JSON(http.StatusBadRequest, gin.H{"error": "No image provided"})
	case errors.Is(err, apperrors.ErrExtractionFailed):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to extract text from image"})
	default:
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("Unhandled service error", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
	}
}
