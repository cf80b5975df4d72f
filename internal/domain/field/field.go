// Package field is the closed catalog of index fields shared by document
// building, the engine mapping and query construction.
package field

import "strings"

// Field is an immutable value object describing an index field.
type Field struct {
	name     string
	stored   bool
	indexed  bool
	analyzed bool
}

// Catalog entries. Names are part of the on-disk index format.
var (
	// DocID is the update key: stored, indexed verbatim, excluded from text search.
	DocID = Field{name: "docid", stored: true, indexed: true}
	// SearchID lets users find a table by typing its identifier.
	SearchID = Field{name: "searchid", indexed: true, analyzed: true}

	Path      = Field{name: "path", stored: true}
	Table     = Field{name: "table", stored: true}
	Database  = Field{name: "database", stored: true, indexed: true}
	Published = Field{name: "published", stored: true, indexed: true}

	Matrix        = Field{name: "matrix", stored: true, indexed: true, analyzed: true}
	Title         = Field{name: "title", stored: true, indexed: true, analyzed: true}
	Variables     = Field{name: "variables", indexed: true, analyzed: true}
	Period        = Field{name: "period", indexed: true, analyzed: true}
	Values        = Field{name: "values", indexed: true, analyzed: true}
	Codes         = Field{name: "codes", indexed: true, analyzed: true}
	Groupings     = Field{name: "groupings", indexed: true, analyzed: true}
	GroupingCodes = Field{name: "groupingcodes", indexed: true, analyzed: true}
	ValueSets     = Field{name: "valuesets", indexed: true, analyzed: true}
	ValueSetCodes = Field{name: "valuesetcodes", indexed: true, analyzed: true}
	TableID       = Field{name: "tableid", stored: true, indexed: true, analyzed: true}
	Synonyms      = Field{name: "synonyms", indexed: true, analyzed: true}
)

var all = []Field{
	DocID, SearchID, Path, Table, Database, Published, Matrix, Title, Variables, Period,
	Values, Codes, Groupings, GroupingCodes, ValueSets, ValueSetCodes, TableID, Synonyms,
}

var defaultSearch = []Field{
	SearchID, Title, Values, Codes, Matrix, Variables, Period,
	Groupings, GroupingCodes, ValueSets, ValueSetCodes, Synonyms,
}

var byName = func() map[string]Field {
	m := make(map[string]Field, len(all))
	for _, f := range all {
		m[f.name] = f
	}
	return m
}()

// Name returns the field name.
func (f Field) Name() string { return f.name }

// Stored reports whether the value is retrievable from search hits.
func (f Field) Stored() bool { return f.stored }

// Indexed reports whether the value is written to the inverted index.
func (f Field) Indexed() bool { return f.indexed }

// Analyzed reports whether the value is tokenized before indexing.
func (f Field) Analyzed() bool { return f.analyzed }

// Searchable reports whether the field takes part in free-text search.
func (f Field) Searchable() bool { return f.indexed && f.analyzed }

// All returns every catalog field in document order.
func All() []Field {
	out := make([]Field, len(all))
	copy(out, all)
	return out
}

// ByName looks up a catalog field.
func ByName(name string) (Field, bool) {
	f, ok := byName[name]
	return f, ok
}

// DefaultSearchFields returns the fields searched when no filter is given.
func DefaultSearchFields() []Field {
	out := make([]Field, len(defaultSearch))
	copy(out, defaultSearch)
	return out
}

// ResolveSearchFields turns a comma-delimited filter into field names.
// An empty filter yields the default search fields. Names are passed through
// as given; a name outside the catalog simply matches nothing.
func ResolveSearchFields(filter string) []string {
	var names []string
	for _, part := range strings.Split(filter, ",") {
		if part = strings.TrimSpace(part); part != "" {
			names = append(names, part)
		}
	}
	if len(names) > 0 {
		return names
	}

	names = make([]string, len(defaultSearch))
	for i, f := range defaultSearch {
		names[i] = f.name
	}
	return names
}
