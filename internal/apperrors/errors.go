package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrForbidden indicates the caller lacks the role or ownership required
// for the operation.
var ErrForbidden = errors.New("forbidden")

// ErrAlreadyDecided indicates a decision was attempted on an expense that is
// missing or no longer pending. The two cases are deliberately not
// distinguished: the conditional update that guards the transition cannot
// tell them apart, and callers react the same way (re-fetch, never retry).
var ErrAlreadyDecided = errors.New("expense not found or already decided")

// ErrInvalidImage indicates an uploaded receipt was empty or not an image.
var ErrInvalidImage = errors.New("invalid receipt image")

// ErrExtractionFailed indicates the OCR engine failed or timed out.
var ErrExtractionFailed = errors.New("failed to extract text from image")

// ErrStorage indicates a repository or blob-store failure.
var ErrStorage = errors.New("storage error")
