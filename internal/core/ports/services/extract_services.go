package services

import "context"

// OcrResult is the outcome of one extraction request. It is never persisted;
// it exists only for the duration of the response to the caller.
type OcrResult struct {
	RawText         string
	SuggestedAmount *string // e.g. "$12.34"; nil when no amount was recognized
}

// ReceiptExtractorSvc wraps a text-recognition engine. Each call runs an
// engine instance scoped to that call, so concurrent extractions are
// independent of one another.
type ReceiptExtractorSvc interface {
	// Extract recognizes text in the image and guesses the receipt total.
	// Empty or non-image input fails fast with apperrors.ErrInvalidImage
	// before any recognition work; engine failures and timeouts surface as
	// apperrors.ErrExtractionFailed.
	Extract(ctx context.Context, image []byte) (*OcrResult, error)
}
