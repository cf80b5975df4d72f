package indexing

import (
	"github.com/kailas-cloud/pxsearch/internal/domain/document"
)

// IndexWriter is one writer session on an index.
type IndexWriter interface {
	Add(doc document.Document) error
	Update(doc document.Document) error
	End()
	Close() error
}

// WriterSource opens writer sessions and drops searchers made stale by a commit.
type WriterSource interface {
	OpenWriter(database, language string, createNew bool) (IndexWriter, error)
	Invalidate(database, language string) error
}
