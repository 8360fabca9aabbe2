package extract

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// Result carries the extracted text plus whatever metadata the backend
// could determine.
type Result struct {
	Text  string
	Pages int
}

// TextExtractor turns raw uploaded bytes into plain text. A zero-length
// Text with a nil error means "no extractable content", which callers must
// treat as a distinct condition from a parse failure.
type TextExtractor interface {
	Extract(data []byte) (Result, error)
}

var ErrUnsupportedPayload = errors.New("payload is not extractable text")

// PlainTextExtractor is the default backend: it accepts any payload whose
// bytes decode as UTF-8 text. PDF parsing backends plug in behind the same
// interface.
type PlainTextExtractor struct{}

func NewPlainTextExtractor() *PlainTextExtractor {
	return &PlainTextExtractor{}
}

func (e *PlainTextExtractor) Extract(data []byte) (Result, error) {
	if len(data) == 0 {
		return Result{}, nil
	}
	if !utf8.Valid(data) {
		return Result{}, ErrUnsupportedPayload
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return Result{}, nil
	}
	// A text payload has no page structure; it counts as one page
	return Result{Text: text, Pages: 1}, nil
}
