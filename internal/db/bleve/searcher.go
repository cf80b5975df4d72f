package bleve

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search"

	"github.com/kailas-cloud/pxsearch/internal/db"
	"github.com/kailas-cloud/pxsearch/internal/domain"
	"github.com/kailas-cloud/pxsearch/internal/domain/field"
	"github.com/kailas-cloud/pxsearch/internal/domain/pxdate"
	"github.com/kailas-cloud/pxsearch/internal/domain/search/operator"
	"github.com/kailas-cloud/pxsearch/internal/domain/search/result"
)

// Searcher runs queries against the committed state of a Handle's index.
// Changes of a running writer session are not visible until it commits.
type Searcher struct {
	handle *Handle
}

// Path returns the index directory.
func (s *Searcher) Path() string { return s.handle.path }

// Indexed reports whether the directory holds an index.
func (s *Searcher) Indexed() bool { return s.handle.Indexed() }

// Search returns at most maxResults records ordered by descending score.
// filter is a comma-separated list of fields to search instead of the
// defaults; op joins clauses without an explicit conjunction and defaults to OR.
func (s *Searcher) Search(text, filter string, maxResults int, op operator.Operator) ([]result.Record, result.Status, error) {
	path := s.handle.path
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []result.Record{}, result.NotIndexed, nil
		}
		return nil, "", db.Wrap(db.OpSearch, path, err)
	}
	idx, err := s.handle.reader()
	if err != nil {
		return nil, "", err
	}
	if idx == nil {
		return []result.Record{}, result.NotIndexed, nil
	}
	if maxResults <= 0 {
		return nil, "", fmt.Errorf("%w: %d", domain.ErrInvalidLimit, maxResults)
	}
	op = op.OrDefault()
	if !op.IsValid() {
		return nil, "", fmt.Errorf("%w: %q", domain.ErrInvalidOperator, op)
	}

	q, err := NewQueryBuilder(idx.Mapping()).Build(text, field.ResolveSearchFields(filter), op)
	if err != nil {
		return nil, "", err
	}

	req := bleve.NewSearchRequestOptions(q, maxResults, 0, false)
	req.Fields = []string{
		field.Path.Name(),
		field.Table.Name(),
		field.Title.Name(),
		field.Published.Name(),
	}
	res, err := idx.Search(req)
	if err != nil {
		return nil, "", db.Wrap(db.OpSearch, path, err)
	}

	records := make([]result.Record, 0, len(res.Hits))
	for _, hit := range res.Hits {
		records = append(records, toRecord(hit))
	}
	return records, result.Successful, nil
}

// toRecord decodes stored fields. An absent or malformed published value
// reads as unset.
func toRecord(hit *search.DocumentMatch) result.Record {
	var published time.Time
	if raw := storedString(hit, field.Published); raw != "" {
		if t, err := pxdate.Parse(raw); err == nil {
			published = t
		}
	}
	return result.New(
		storedString(hit, field.Path),
		storedString(hit, field.Table),
		storedString(hit, field.Title),
		hit.Score,
		published,
	)
}

func storedString(hit *search.DocumentMatch, f field.Field) string {
	s, _ := hit.Fields[f.Name()].(string)
	return s
}
