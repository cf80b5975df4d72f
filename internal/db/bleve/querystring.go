package bleve

import (
	"strings"
	"unicode"

	"github.com/kailas-cloud/pxsearch/internal/domain"
	"github.com/kailas-cloud/pxsearch/internal/domain/search/operator"
)

// The query language is the classic keyword syntax:
//
//	population                  term, searched in every field
//	"population by region"      phrase
//	popul*                      prefix
//	title:population            term restricted to one field
//	title:(population housing)  group restricted to one field
//	+must -mustnot NOT x !x     modifiers
//	a AND b, a && b             conjunction
//	a OR b, a || b              disjunction
//	(a OR b) AND c              grouping
//	\"                          escape
//
// Clauses without an explicit conjunction are joined with the default
// operator. Explicit conjunctions take precedence over it.

const maxGroupDepth = 32

type occur int

const (
	occurShould occur = iota
	occurMust
	occurMustNot
)

func (o occur) String() string {
	switch o {
	case occurMust:
		return "MUST"
	case occurMustNot:
		return "MUST_NOT"
	default:
		return "SHOULD"
	}
}

type conjunction int

const (
	conjNone conjunction = iota
	conjAnd
	conjOr
)

type modifier int

const (
	modNone modifier = iota
	modRequired
	modNot
)

type node interface {
	isNode()
}

type termNode struct {
	field  string
	text   string
	phrase bool
	prefix bool
}

type groupNode struct {
	field   string
	clauses []clause
}

func (*termNode) isNode()  {}
func (*groupNode) isNode() {}

type clause struct {
	occur occur
	node  node
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokTerm
	tokPhrase
	tokField
	tokLParen
	tokRParen
	tokAnd
	tokOr
	tokNot
	tokPlus
	tokMinus
)

type token struct {
	kind   tokenKind
	text   string
	prefix bool
	pos    int
}

// parseQueryString parses text into top-level clauses whose occurrence is
// already resolved against op.
func parseQueryString(text string, op operator.Operator) ([]clause, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.NewQuerySyntax(0, "empty query")
	}
	toks, err := lex(text)
	if err != nil {
		return nil, err
	}

	p := &parser{toks: toks, op: op.OrDefault()}
	clauses, err := p.parseQuery()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, domain.NewQuerySyntax(t.pos, "unexpected ')'")
	}
	return clauses, nil
}

type parser struct {
	toks  []token
	pos   int
	op    operator.Operator
	depth int
}

func (p *parser) peek() token {
	return p.toks[p.pos]
}

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) parseQuery() ([]clause, error) {
	var clauses []clause
	for {
		t := p.peek()
		if t.kind == tokEOF || t.kind == tokRParen {
			if len(clauses) == 0 {
				return nil, domain.NewQuerySyntax(t.pos, "expected a term")
			}
			return clauses, nil
		}

		conj := conjNone
		switch t.kind {
		case tokAnd, tokOr:
			if len(clauses) == 0 {
				return nil, domain.NewQuerySyntax(t.pos, "operator without left operand")
			}
			conj = conjAnd
			if t.kind == tokOr {
				conj = conjOr
			}
			p.next()
		}

		mod := modNone
		switch p.peek().kind {
		case tokPlus:
			mod = modRequired
			p.next()
		case tokMinus, tokNot:
			mod = modNot
			p.next()
		}

		n, err := p.parseClause()
		if err != nil {
			return nil, err
		}
		clauses = addClause(clauses, conj, mod, n, p.op)
	}
}

func (p *parser) parseClause() (node, error) {
	t := p.next()
	fieldName := ""
	if t.kind == tokField {
		fieldName = t.text
		t = p.next()
	}

	switch t.kind {
	case tokTerm:
		return &termNode{field: fieldName, text: t.text, prefix: t.prefix}, nil
	case tokPhrase:
		return &termNode{field: fieldName, text: t.text, phrase: true}, nil
	case tokLParen:
		p.depth++
		if p.depth > maxGroupDepth {
			return nil, domain.NewQuerySyntax(t.pos, "groups nested too deeply")
		}
		clauses, err := p.parseQuery()
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.kind != tokRParen {
			return nil, domain.NewQuerySyntax(closing.pos, "missing ')'")
		}
		p.depth--
		return &groupNode{field: fieldName, clauses: clauses}, nil
	case tokEOF:
		return nil, domain.NewQuerySyntax(t.pos, "unexpected end of query")
	default:
		return nil, domain.NewQuerySyntax(t.pos, "expected a term")
	}
}

// addClause appends n and adjusts the previous clause the way the classic
// keyword parser does: AND makes both sides required, and OR under an AND
// default turns the left side optional.
func addClause(clauses []clause, conj conjunction, mod modifier, n node, op operator.Operator) []clause {
	if len(clauses) > 0 {
		prev := &clauses[len(clauses)-1]
		if conj == conjAnd && prev.occur != occurMustNot {
			prev.occur = occurMust
		}
		if conj == conjOr && op == operator.And && prev.occur == occurMust {
			prev.occur = occurShould
		}
	}

	var required, prohibited bool
	if op == operator.Or {
		prohibited = mod == modNot
		required = mod == modRequired
		if conj == conjAnd && !prohibited {
			required = true
		}
	} else {
		prohibited = mod == modNot
		required = !prohibited && conj != conjOr
	}

	c := clause{occur: occurShould, node: n}
	switch {
	case prohibited:
		c.occur = occurMustNot
	case required:
		c.occur = occurMust
	}
	return append(clauses, c)
}

func lex(input string) ([]token, error) {
	rs := []rune(input)
	var toks []token

	for i := 0; i < len(rs); {
		r := rs[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '(':
			toks = append(toks, token{kind: tokLParen, pos: i})
			i++
		case r == ')':
			toks = append(toks, token{kind: tokRParen, pos: i})
			i++
		case r == '+':
			toks = append(toks, token{kind: tokPlus, pos: i})
			i++
		case r == '-':
			toks = append(toks, token{kind: tokMinus, pos: i})
			i++
		case r == '!':
			toks = append(toks, token{kind: tokNot, pos: i})
			i++
		case r == '&' && i+1 < len(rs) && rs[i+1] == '&':
			toks = append(toks, token{kind: tokAnd, pos: i})
			i += 2
		case r == '|' && i+1 < len(rs) && rs[i+1] == '|':
			toks = append(toks, token{kind: tokOr, pos: i})
			i += 2
		case r == '"':
			text, next, err := readPhrase(rs, i)
			if err != nil {
				return nil, err
			}
			toks = append(toks, token{kind: tokPhrase, text: text, pos: i})
			i = next
		default:
			tok, next, err := readWord(rs, i)
			if err != nil {
				return nil, err
			}
			toks = append(toks, tok)
			i = next
		}
	}
	return append(toks, token{kind: tokEOF, pos: len(rs)}), nil
}

func readPhrase(rs []rune, start int) (string, int, error) {
	var sb strings.Builder
	for i := start + 1; i < len(rs); i++ {
		switch rs[i] {
		case '\\':
			if i+1 >= len(rs) {
				return "", 0, domain.NewQuerySyntax(i, "dangling escape")
			}
			i++
			sb.WriteRune(rs[i])
		case '"':
			return sb.String(), i + 1, nil
		default:
			sb.WriteRune(rs[i])
		}
	}
	return "", 0, domain.NewQuerySyntax(start, "unterminated phrase")
}

func isWordBreak(r rune) bool {
	return unicode.IsSpace(r) || r == '(' || r == ')' || r == '"' || r == ':'
}

func readWord(rs []rune, start int) (token, int, error) {
	var sb strings.Builder
	escaped := false
	prefix := false

	i := start
	for ; i < len(rs) && !isWordBreak(rs[i]); i++ {
		prefix = false
		if rs[i] == '\\' {
			if i+1 >= len(rs) {
				return token{}, 0, domain.NewQuerySyntax(i, "dangling escape")
			}
			i++
			escaped = true
			sb.WriteRune(rs[i])
			continue
		}
		if rs[i] == '*' {
			prefix = true
		}
		sb.WriteRune(rs[i])
	}
	word := sb.String()

	if i < len(rs) && rs[i] == ':' {
		if word == "" {
			return token{}, 0, domain.NewQuerySyntax(i, "missing field name")
		}
		return token{kind: tokField, text: word, pos: start}, i + 1, nil
	}
	if word == "" {
		return token{}, 0, domain.NewQuerySyntax(start, "unexpected character")
	}

	if !escaped {
		switch word {
		case "AND":
			return token{kind: tokAnd, pos: start}, i, nil
		case "OR":
			return token{kind: tokOr, pos: start}, i, nil
		case "NOT":
			return token{kind: tokNot, pos: start}, i, nil
		}
	}
	if prefix {
		word = strings.TrimSuffix(word, "*")
	}
	return token{kind: tokTerm, text: word, prefix: prefix, pos: start}, i, nil
}
