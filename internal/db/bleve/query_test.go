package bleve

import (
	"testing"

	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/pxsearch/internal/domain"
	"github.com/kailas-cloud/pxsearch/internal/domain/search/operator"
)

func newTestBuilder() *QueryBuilder {
	return NewQueryBuilder(BuildIndexMapping())
}

func TestQueryBuilder_SingleTermSingleField(t *testing.T) {
	q, err := newTestBuilder().Build("population", []string{"title"}, operator.Or)
	require.NoError(t, err)

	mq, ok := q.(*query.MatchQuery)
	require.True(t, ok, "got %T", q)
	assert.Equal(t, "title", mq.Field())
	assert.Equal(t, "population", mq.Match)
}

func TestQueryBuilder_TermAcrossDefaultFields(t *testing.T) {
	q, err := newTestBuilder().Build("population", nil, operator.Or)
	require.NoError(t, err)

	dq, ok := q.(*query.DisjunctionQuery)
	require.True(t, ok, "got %T", q)
	assert.Len(t, dq.Disjuncts, 12)
}

func TestQueryBuilder_StopWordsDropped(t *testing.T) {
	q, err := newTestBuilder().Build("the", nil, operator.Or)
	require.NoError(t, err)

	_, ok := q.(*query.MatchNoneQuery)
	assert.True(t, ok, "got %T", q)
}

func TestQueryBuilder_StopWordKeptInKeywordField(t *testing.T) {
	q, err := newTestBuilder().Build("the", []string{"title", "docid"}, operator.Or)
	require.NoError(t, err)

	mq, ok := q.(*query.MatchQuery)
	require.True(t, ok, "got %T", q)
	assert.Equal(t, "docid", mq.Field())
}

func TestQueryBuilder_Conjunction(t *testing.T) {
	q, err := newTestBuilder().Build("population housing", []string{"title"}, operator.And)
	require.NoError(t, err)

	bq, ok := q.(*query.BooleanQuery)
	require.True(t, ok, "got %T", q)
	require.NotNil(t, bq.Must)
	assert.Nil(t, bq.Should)
}

func TestQueryBuilder_MultiTokenTermBecomesPhrase(t *testing.T) {
	q, err := newTestBuilder().Build("region-2020", []string{"title"}, operator.Or)
	require.NoError(t, err)

	_, ok := q.(*query.MatchPhraseQuery)
	assert.True(t, ok, "got %T", q)
}

func TestQueryBuilder_Prefix(t *testing.T) {
	q, err := newTestBuilder().Build("Popul*", []string{"title"}, operator.Or)
	require.NoError(t, err)

	pq, ok := q.(*query.PrefixQuery)
	require.True(t, ok, "got %T", q)
	assert.Equal(t, "popul", pq.Prefix)
}

func TestQueryBuilder_SyntaxError(t *testing.T) {
	_, err := newTestBuilder().Build("(population", nil, operator.Or)
	assert.ErrorIs(t, err, domain.ErrQuerySyntax)
}
