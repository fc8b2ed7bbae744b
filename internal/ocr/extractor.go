package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/vzlabs/expense_tracker_app/internal/apperrors"
	portssvc "github.com/vzlabs/expense_tracker_app/internal/core/ports/services"
)

// amountPattern matches currency amounts in recognized text: an optional $
// followed by digits, a decimal point and exactly two digits.
var amountPattern = regexp.MustCompile(`\$?\d+\.\d{2}`)

// Config configures the tesseract invocation.
type Config struct {
	Tesseract string        // binary name or absolute path; if empty -> "tesseract"
	Lang      string        // recognition language, default "eng"
	Timeout   time.Duration // per-call bound, default 30s
}

// Extractor runs tesseract as a subprocess, one invocation per call. There is
// no shared engine state, so concurrent extractions proceed independently and
// a slow recognition only ties up its own request.
type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

// NewExtractor creates an extractor with the given config.
func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Lang == "" {
		cfg.Lang = "eng"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Extractor{cfg: cfg, runner: execRunner{logger: logger}, logger: logger}
}

var _ portssvc.ReceiptExtractorSvc = (*Extractor)(nil)

// Extract recognizes text in the receipt image and guesses its total.
// Invalid input fails before the engine is touched; engine errors and
// timeouts surface as apperrors.ErrExtractionFailed. The temp file backing
// the invocation is removed on every path.
func (e *Extractor) Extract(ctx context.Context, image []byte) (*portssvc.OcrResult, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("%w: empty image", apperrors.ErrInvalidImage)
	}
	if contentType := http.DetectContentType(image); !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("%w: unsupported content type %s", apperrors.ErrInvalidImage, contentType)
	}

	ctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	tmp, err := os.CreateTemp("", "receipt-*")
	if err != nil {
		return nil, fmt.Errorf("%w: create temp file: %v", apperrors.ErrExtractionFailed, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(image); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("%w: write temp file: %v", apperrors.ErrExtractionFailed, err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("%w: close temp file: %v", apperrors.ErrExtractionFailed, err)
	}

	// tesseract <file> stdout -l <lang>
	out, _, err := e.runner.Run(ctx, e.cfg.Tesseract, tmp.Name(), "stdout", "-l", e.cfg.Lang)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%w: recognition timed out: %v", apperrors.ErrExtractionFailed, ctxErr)
		}
		return nil, fmt.Errorf("%w: tesseract: %v", apperrors.ErrExtractionFailed, err)
	}

	text := string(out)
	return &portssvc.OcrResult{
		RawText:         text,
		SuggestedAmount: SuggestAmount(text),
	}, nil
}

// SuggestAmount scans recognized text for currency amounts and returns the
// last one in reading order, where receipts conventionally place the grand
// total. Nil means no amount was found; that is not an error.
func SuggestAmount(text string) *string {
	matches := amountPattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}
	last := matches[len(matches)-1]
	return &last
}
