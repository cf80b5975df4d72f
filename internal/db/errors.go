// Package db holds what the index engine adapters share: operation names and
// the error type that carries them.
package db

// Op constants name engine operations for error context.
const (
	OpOpen     = "open"
	OpCreate   = "create"
	OpTruncate = "truncate"
	OpLookup   = "lookup"
	OpBatch    = "batch"
	OpCommit   = "commit"
	OpCompact  = "compact"
	OpClose    = "close"
	OpSearch   = "search"
)

// Error wraps an underlying error with the operation name and index path.
type Error struct {
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return e.Op + ": " + e.Err.Error()
	}
	return e.Op + " " + e.Path + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Wrap returns nil for a nil err, otherwise an *Error.
func Wrap(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Path: path, Err: err}
}
