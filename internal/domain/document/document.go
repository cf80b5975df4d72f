package document

import (
	"time"

	"github.com/kailas-cloud/pxsearch/internal/domain"
	"github.com/kailas-cloud/pxsearch/internal/domain/dataset"
	"github.com/kailas-cloud/pxsearch/internal/domain/field"
	"github.com/kailas-cloud/pxsearch/internal/domain/pxdate"
)

// Value is one field of a document.
type Value struct {
	Field field.Field
	Text  string
}

// Document is the index representation of one dataset (immutable value object).
// The zero Document has no fields.
type Document struct {
	values []Value
}

// Build maps a dataset onto index fields.
// If any of path, table, database, id, title, meta title, matrix or variables
// is missing, Build returns an empty Document and an error wrapping
// domain.ErrIncompleteMetadata; callers skip such datasets.
func Build(
	database, id, path, table, title string,
	published time.Time, meta *dataset.Metadata,
) (Document, error) {
	if err := validate(database, id, path, table, title, meta); err != nil {
		return Document{}, err
	}

	b := builder{values: make([]Value, 0, 18)}
	b.add(field.DocID, id)
	b.add(field.SearchID, id)
	b.add(field.Path, path)
	b.add(field.Table, table)
	b.add(field.Database, database)
	if !published.IsZero() {
		b.add(field.Published, pxdate.Format(published))
	}
	b.add(field.Matrix, meta.Matrix)
	b.add(field.Title, title)
	b.add(field.Variables, meta.VariableNames())
	b.add(field.Period, meta.TimeValues())
	b.add(field.Values, meta.AllValues())
	b.add(field.Codes, meta.AllCodes())
	b.add(field.Groupings, meta.AllGroupings())
	b.add(field.GroupingCodes, meta.AllGroupingCodes())
	b.add(field.ValueSets, meta.AllValueSets())
	b.add(field.ValueSetCodes, meta.AllValueSetCodes())
	b.add(field.TableID, meta.TableIDOrMatrix())
	if meta.Synonyms != "" {
		b.add(field.Synonyms, meta.Synonyms)
	}

	return Document{values: b.values}, nil
}

// FromDataset builds the document for a dataset of the given database.
func FromDataset(database string, ds *dataset.Dataset) (Document, error) {
	return Build(database, ds.ID, ds.Path, ds.Table, ds.Title, ds.Published, ds.Meta)
}

func validate(database, id, path, table, title string, meta *dataset.Metadata) error {
	var missing []string
	check := func(name, v string) {
		if v == "" {
			missing = append(missing, name)
		}
	}
	check("id", id)
	check("path", path)
	check("table", table)
	check("database", database)
	check("title", title)

	if meta == nil {
		missing = append(missing, "metadata")
	} else {
		check("metadata title", meta.Title)
		check("matrix", meta.Matrix)
		if len(meta.Variables) == 0 {
			missing = append(missing, "variables")
		}
	}

	if len(missing) > 0 {
		return domain.NewMissingFields(missing...)
	}
	return nil
}

type builder struct {
	values []Value
}

func (b *builder) add(f field.Field, text string) {
	b.values = append(b.values, Value{Field: f, Text: text})
}

// IsEmpty reports whether the document has no fields.
func (d Document) IsEmpty() bool { return len(d.values) == 0 }

// Len returns the number of fields.
func (d Document) Len() int { return len(d.values) }

// Values returns a copy of the fields in insertion order.
func (d Document) Values() []Value {
	out := make([]Value, len(d.values))
	copy(out, d.values)
	return out
}

// Get returns the text of the first value of the named field.
func (d Document) Get(name string) (string, bool) {
	for _, v := range d.values {
		if v.Field.Name() == name {
			return v.Text, true
		}
	}
	return "", false
}

// Key returns the update key (the docid field).
func (d Document) Key() string {
	k, _ := d.Get(field.DocID.Name())
	return k
}

// Fields returns the document as a name/value map for the index engine.
func (d Document) Fields() map[string]interface{} {
	m := make(map[string]interface{}, len(d.values))
	for _, v := range d.values {
		m[v.Field.Name()] = v.Text
	}
	return m
}
