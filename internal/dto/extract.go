package dto

// ExtractReceiptResponse carries the OCR output of one extraction request.
// SuggestedAmount is null when no currency amount was recognized; the client
// shows an amount-not-found hint rather than an error in that case.
type ExtractReceiptResponse struct {
	ExtractedText   string  `json:"extractedText"`
	SuggestedAmount *string `json:"suggestedAmount"`
	Message         string  `json:"message"`
}
