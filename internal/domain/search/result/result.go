package result

import "time"

// Status is the outcome of a search call.
type Status string

// Search status values.
const (
	Successful Status = "successful"
	// NotIndexed means the index directory does not exist yet.
	NotIndexed Status = "not_indexed"
)

// Record is a single search hit.
type Record struct {
	path      string
	table     string
	title     string
	score     float64
	published time.Time
}

// New creates a search record.
func New(path, table, title string, score float64, published time.Time) Record {
	return Record{path: path, table: table, title: title, score: score, published: published}
}

// Path returns the table location inside the database.
func (r *Record) Path() string { return r.path }

// Table returns the table file name.
func (r *Record) Table() string { return r.table }

// Title returns the table title.
func (r *Record) Title() string { return r.title }

// Score returns the relevance score; higher is more relevant.
func (r *Record) Score() float64 { return r.score }

// Published returns the publication time, or the zero time when unset.
func (r *Record) Published() time.Time { return r.published }

// HasPublished reports whether a publication time was decoded.
func (r *Record) HasPublished() bool { return !r.published.IsZero() }
