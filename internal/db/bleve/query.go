package bleve

import (
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/kailas-cloud/pxsearch/internal/domain/field"
	"github.com/kailas-cloud/pxsearch/internal/domain/search/operator"
)

// QueryBuilder turns user query text into an engine query over a set of fields.
type QueryBuilder struct {
	mapping mapping.IndexMapping
}

// NewQueryBuilder creates a builder that analyzes terms with the analyzers of m.
func NewQueryBuilder(m mapping.IndexMapping) *QueryBuilder {
	return &QueryBuilder{mapping: m}
}

// Build parses text and expands every term over fields, or over the default
// search fields when fields is empty. op joins clauses that have no explicit
// conjunction. Terms that analyze to nothing in a field, such as stop words,
// are dropped for that field; a query left without clauses matches nothing.
func (b *QueryBuilder) Build(text string, fields []string, op operator.Operator) (query.Query, error) {
	if len(fields) == 0 {
		fields = field.ResolveSearchFields("")
	}
	clauses, err := parseQueryString(text, op)
	if err != nil {
		return nil, err
	}

	q := b.clausesQuery(clauses, fields)
	if q == nil {
		return bleve.NewMatchNoneQuery(), nil
	}
	return q, nil
}

func (b *QueryBuilder) clausesQuery(clauses []clause, fields []string) query.Query {
	var must, should, mustNot []query.Query
	for _, c := range clauses {
		q := b.nodeQuery(c.node, fields)
		if q == nil {
			continue
		}
		switch c.occur {
		case occurMust:
			must = append(must, q)
		case occurMustNot:
			mustNot = append(mustNot, q)
		default:
			should = append(should, q)
		}
	}

	switch {
	case len(must)+len(should)+len(mustNot) == 0:
		return nil
	case len(mustNot) == 0 && len(must)+len(should) == 1:
		if len(must) == 1 {
			return must[0]
		}
		return should[0]
	}

	bq := bleve.NewBooleanQuery()
	if len(must) > 0 {
		bq.AddMust(must...)
	}
	if len(should) > 0 {
		bq.AddShould(should...)
	}
	if len(mustNot) > 0 {
		bq.AddMustNot(mustNot...)
	}
	return bq
}

func (b *QueryBuilder) nodeQuery(n node, fields []string) query.Query {
	switch n := n.(type) {
	case *termNode:
		if n.field != "" {
			fields = []string{n.field}
		}
		return b.termQuery(n, fields)
	case *groupNode:
		if n.field != "" {
			fields = []string{n.field}
		}
		return b.clausesQuery(n.clauses, fields)
	default:
		return nil
	}
}

// termQuery matches the term in any of fields.
func (b *QueryBuilder) termQuery(n *termNode, fields []string) query.Query {
	var qs []query.Query
	for _, f := range fields {
		if q := b.fieldQuery(n, f); q != nil {
			qs = append(qs, q)
		}
	}

	switch len(qs) {
	case 0:
		return nil
	case 1:
		return qs[0]
	default:
		return bleve.NewDisjunctionQuery(qs...)
	}
}

func (b *QueryBuilder) fieldQuery(n *termNode, f string) query.Query {
	if n.prefix {
		if n.text == "" {
			return nil
		}
		q := bleve.NewPrefixQuery(strings.ToLower(n.text))
		q.SetField(f)
		return q
	}

	tokens := b.tokenCount(f, n.text)
	switch {
	case tokens == 0:
		return nil
	case n.phrase || tokens > 1:
		q := bleve.NewMatchPhraseQuery(n.text)
		q.SetField(f)
		return q
	default:
		q := bleve.NewMatchQuery(n.text)
		q.SetField(f)
		return q
	}
}

func (b *QueryBuilder) tokenCount(f, text string) int {
	a := b.mapping.AnalyzerNamed(b.mapping.AnalyzerNameForPath(f))
	if a == nil {
		if strings.TrimSpace(text) == "" {
			return 0
		}
		return 1
	}
	return len(a.Analyze([]byte(text)))
}
