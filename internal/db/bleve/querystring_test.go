package bleve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/pxsearch/internal/domain"
	"github.com/kailas-cloud/pxsearch/internal/domain/search/operator"
)

func occurs(clauses []clause) []occur {
	out := make([]occur, 0, len(clauses))
	for _, c := range clauses {
		out = append(out, c.occur)
	}
	return out
}

func TestParseQueryString_Occurs(t *testing.T) {
	tests := []struct {
		text string
		op   operator.Operator
		want []occur
	}{
		{"a b", operator.Or, []occur{occurShould, occurShould}},
		{"a b", operator.And, []occur{occurMust, occurMust}},
		{"a AND b", operator.Or, []occur{occurMust, occurMust}},
		{"a OR b", operator.And, []occur{occurShould, occurShould}},
		{"a OR b c", operator.And, []occur{occurShould, occurShould, occurMust}},
		{"+a b", operator.Or, []occur{occurMust, occurShould}},
		{"a -b", operator.Or, []occur{occurShould, occurMustNot}},
		{"a NOT b", operator.And, []occur{occurMust, occurMustNot}},
		{"a AND !b", operator.Or, []occur{occurMust, occurMustNot}},
		{"-a AND b", operator.Or, []occur{occurMustNot, occurMust}},
		{"a && b || c", operator.Or, []occur{occurMust, occurMust, occurShould}},
	}

	for _, tt := range tests {
		t.Run(string(tt.op)+" "+tt.text, func(t *testing.T) {
			clauses, err := parseQueryString(tt.text, tt.op)
			require.NoError(t, err)
			assert.Equal(t, tt.want, occurs(clauses))
		})
	}
}

func TestParseQueryString_Terms(t *testing.T) {
	clauses, err := parseQueryString(`title:popul* "by region" values:(a b) region\-2020 \AND`, operator.Or)
	require.NoError(t, err)
	require.Len(t, clauses, 5)

	prefix := clauses[0].node.(*termNode)
	assert.Equal(t, "title", prefix.field)
	assert.Equal(t, "popul", prefix.text)
	assert.True(t, prefix.prefix)

	phrase := clauses[1].node.(*termNode)
	assert.Equal(t, "by region", phrase.text)
	assert.True(t, phrase.phrase)

	group := clauses[2].node.(*groupNode)
	assert.Equal(t, "values", group.field)
	assert.Len(t, group.clauses, 2)

	assert.Equal(t, "region-2020", clauses[3].node.(*termNode).text)
	assert.Equal(t, "AND", clauses[4].node.(*termNode).text)
}

func TestParseQueryString_Errors(t *testing.T) {
	tests := []string{
		"",
		"   ",
		"AND a",
		"a AND",
		"a OR",
		"(a b",
		"a b)",
		"()",
		`"open`,
		`a\`,
		":a",
		"title:",
		"NOT",
	}

	for _, text := range tests {
		t.Run(text, func(t *testing.T) {
			_, err := parseQueryString(text, operator.Or)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrQuerySyntax)
		})
	}
}

func TestParseQueryString_ErrorPosition(t *testing.T) {
	_, err := parseQueryString("a (b", operator.Or)

	var syntaxErr *domain.QuerySyntaxError
	require.ErrorAs(t, err, &syntaxErr)
	assert.Equal(t, 4, syntaxErr.Pos)
}
