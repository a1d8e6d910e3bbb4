package document

import (
	"errors"
	"fmt"
)

// ErrEncrypted reports a password-protected input. Load never returns a
// half-open document for encrypted sources; callers decide via errors.Is.
var ErrEncrypted = errors.New("document is encrypted")

// ParseError reports bytes that could not be read as a well-formed PDF.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return fmt.Sprintf("parse pdf: %v", e.Err) }
func (e *ParseError) Unwrap() error { return e.Err }

// IndexError reports a page index outside [0, PageCount).
type IndexError struct {
	Index     int
	PageCount int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("page index %d out of range [0,%d)", e.Index, e.PageCount)
}

// SerializeError reports a failure while writing a document back to bytes.
type SerializeError struct {
	Err error
}

func (e *SerializeError) Error() string { return fmt.Sprintf("serialize pdf: %v", e.Err) }
func (e *SerializeError) Unwrap() error { return e.Err }
