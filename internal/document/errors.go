package document

import (
	"errors"
	"fmt"
)

// ErrEmptyInput is returned by Open for a blank path or URL.
var ErrEmptyInput = errors.New("no document path or URL given")

// UnsupportedFileError rejects a local file that is not a PDF.
type UnsupportedFileError struct {
	Path string
	MIME string
}

func (e *UnsupportedFileError) Error() string {
	return fmt.Sprintf("%s is not a PDF (detected %s)", e.Path, e.MIME)
}

// LoadError reports a document that could not be fetched or parsed.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// UserMessage is the short alert shown by the reader.
func UserMessage(err error) string {
	var unsupported *UnsupportedFileError
	if errors.As(err, &unsupported) {
		return "Only PDF files are supported"
	}
	if errors.Is(err, ErrEmptyInput) {
		return "Enter a PDF path or URL"
	}
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return "Could not open the document"
	}
	if err == nil {
		return ""
	}
	return "Something went wrong opening the document"
}
