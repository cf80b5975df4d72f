package search

import (
	"github.com/kailas-cloud/pxsearch/internal/domain/search/operator"
	"github.com/kailas-cloud/pxsearch/internal/domain/search/result"
)

// IndexSearcher runs a query against one index.
type IndexSearcher interface {
	Search(text, filter string, maxResults int, op operator.Operator) ([]result.Record, result.Status, error)
}

// SearcherSource hands out searchers. release must be called once the searcher is no longer used.
type SearcherSource interface {
	Searcher(database, language string) (s IndexSearcher, release func(), err error)
}
