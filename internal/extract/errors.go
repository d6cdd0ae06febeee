package extract

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrEmptyDocument     = errors.New("document contains no extractable text")
	ErrExtractionFailed  = errors.New("extraction failed")
)

// ExtractionError wraps a parser failure for a specific document type.
// errors.Is matches both ErrExtractionFailed and the underlying cause.
type ExtractionError struct {
	MimeType string
	Err      error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.MimeType, e.Err)
}

func (e *ExtractionError) Unwrap() []error {
	return []error{ErrExtractionFailed, e.Err}
}
