package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrIncompleteMetadata signals a dataset that lacks a field required for indexing.
	ErrIncompleteMetadata = errors.New("incomplete metadata")
	// ErrEmptyDocument signals an attempt to write a document without fields.
	ErrEmptyDocument = errors.New("empty document")
	// ErrIndexLocked signals that another writer holds the index directory.
	ErrIndexLocked = errors.New("index locked")
	// ErrWriterClosed signals use of a writer session after Close.
	ErrWriterClosed = errors.New("writer closed")
	// ErrQuerySyntax signals a malformed query string.
	ErrQuerySyntax = errors.New("query syntax error")
	// ErrInvalidLimit signals a non-positive result limit.
	ErrInvalidLimit = errors.New("invalid result limit")
	// ErrInvalidOperator signals an unknown default operator.
	ErrInvalidOperator = errors.New("invalid default operator")
	// ErrBaseDirNotFound signals a missing database base directory.
	ErrBaseDirNotFound = errors.New("database base directory not found")
	// ErrInvalidMode signals an unknown indexing mode.
	ErrInvalidMode = errors.New("invalid indexing mode")
	// ErrInvalidName signals a database or language name that cannot name a directory.
	ErrInvalidName = errors.New("invalid database or language name")
)

// MissingFieldsError wraps ErrIncompleteMetadata with the names of the missing parts.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("%s: missing %s", ErrIncompleteMetadata.Error(), strings.Join(e.Fields, ", "))
}

func (e *MissingFieldsError) Unwrap() error { return ErrIncompleteMetadata }

// NewMissingFields creates an incomplete metadata error.
func NewMissingFields(fields ...string) error {
	return &MissingFieldsError{Fields: fields}
}

// QuerySyntaxError wraps ErrQuerySyntax with the offending position.
type QuerySyntaxError struct {
	Pos int
	Msg string
}

func (e *QuerySyntaxError) Error() string {
	return fmt.Sprintf("%s at %d: %s", ErrQuerySyntax.Error(), e.Pos, e.Msg)
}

func (e *QuerySyntaxError) Unwrap() error { return ErrQuerySyntax }

// NewQuerySyntax creates a query syntax error.
func NewQuerySyntax(pos int, msg string) error {
	return &QuerySyntaxError{Pos: pos, Msg: msg}
}
