package batch

// ItemStatus is the indexing outcome of a single dataset.
type ItemStatus string

// Batch item status values.
const (
	StatusOK ItemStatus = "ok"
	// StatusSkipped marks a dataset rejected by document validation.
	StatusSkipped ItemStatus = "skipped"
	StatusError   ItemStatus = "error"
)

// Result is the outcome of indexing one dataset of a batch.
type Result struct {
	id     string
	status ItemStatus
	err    error
}

// NewOK creates a successful batch result.
func NewOK(id string) Result { return Result{id: id, status: StatusOK} }

// NewSkipped creates a result for a dataset that was not indexed.
func NewSkipped(id string, reason error) Result {
	return Result{id: id, status: StatusSkipped, err: reason}
}

// NewError creates a failed batch result.
func NewError(id string, err error) Result { return Result{id: id, status: StatusError, err: err} }

// ID returns the dataset identifier.
func (r Result) ID() string { return r.id }

// Status returns the processing outcome.
func (r Result) Status() ItemStatus { return r.status }

// Err returns the error or skip reason, if any.
func (r Result) Err() error { return r.err }

// Summary counts results by status.
type Summary struct {
	OK      int
	Skipped int
	Failed  int
}

// Summarize counts the outcomes of a batch.
func Summarize(results []Result) Summary {
	var s Summary
	for _, r := range results {
		switch r.status {
		case StatusOK:
			s.OK++
		case StatusSkipped:
			s.Skipped++
		case StatusError:
			s.Failed++
		}
	}
	return s
}
