package document

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kailas-cloud/pxsearch/internal/domain"
	"github.com/kailas-cloud/pxsearch/internal/domain/dataset"
	"github.com/kailas-cloud/pxsearch/internal/domain/field"
)

var published = time.Date(2020, time.March, 15, 9, 0, 0, 0, time.UTC)

func testMeta() *dataset.Metadata {
	return &dataset.Metadata{
		Title:  "Population by region 2020",
		Matrix: "POP01",
		Variables: []dataset.Variable{
			{Name: "region", Values: []dataset.Value{{Code: "01", Text: "Stockholm"}}},
			{Name: "year", IsTime: true, Values: []dataset.Value{{Code: "2020", Text: "2020"}}},
		},
	}
}

func buildValid(t *testing.T) Document {
	t.Helper()
	doc, err := Build("ssd", "POP01", "BE/BE0101", "POP01.px", "Population by region 2020", published, testMeta())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return doc
}

func TestBuild_Valid(t *testing.T) {
	doc := buildValid(t)

	if doc.IsEmpty() {
		t.Fatal("document should not be empty")
	}
	want := map[string]string{
		"docid":     "POP01",
		"searchid":  "POP01",
		"path":      "BE/BE0101",
		"table":     "POP01.px",
		"database":  "ssd",
		"published": "20200315 09:00",
		"matrix":    "POP01",
		"title":     "Population by region 2020",
		"variables": "region year",
		"period":    "2020",
		"values":    "Stockholm 2020",
		"codes":     "01 2020",
		"tableid":   "POP01",
	}
	for name, v := range want {
		got, ok := doc.Get(name)
		if !ok {
			t.Errorf("field %s missing", name)
			continue
		}
		if got != v {
			t.Errorf("%s = %q, want %q", name, got, v)
		}
	}
	if _, ok := doc.Get("synonyms"); ok {
		t.Error("synonyms must be omitted when empty")
	}
}

func TestBuild_IdentifierMappedTwice(t *testing.T) {
	doc := buildValid(t)

	var key, search *Value
	values := doc.Values()
	for i := range values {
		switch values[i].Field.Name() {
		case "docid":
			key = &values[i]
		case "searchid":
			search = &values[i]
		}
	}
	if key == nil || search == nil {
		t.Fatal("identifier fields missing")
	}
	if key.Text != "POP01" || search.Text != "POP01" {
		t.Errorf("identifier values = %q/%q", key.Text, search.Text)
	}
	if key.Field.Analyzed() == search.Field.Analyzed() {
		t.Error("key and search identifiers must differ in analysis")
	}
	if doc.Key() != "POP01" {
		t.Errorf("Key() = %q", doc.Key())
	}
}

func TestBuild_Synonyms(t *testing.T) {
	meta := testMeta()
	meta.Synonyms = "inhabitants residents"
	doc, err := Build("ssd", "POP01", "p", "t", "title", published, meta)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got, _ := doc.Get(field.Synonyms.Name()); got != "inhabitants residents" {
		t.Errorf("synonyms = %q", got)
	}
}

func TestBuild_TableIDPreferred(t *testing.T) {
	meta := testMeta()
	meta.TableID = "TAB0001"
	doc, err := Build("ssd", "POP01", "p", "t", "title", published, meta)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got, _ := doc.Get("tableid"); got != "TAB0001" {
		t.Errorf("tableid = %q, want TAB0001", got)
	}
}

func TestBuild_Incomplete(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(db, id, path, table, title *string, m **dataset.Metadata)
		missing string
	}{
		{"no path", func(_, _, p, _, _ *string, _ **dataset.Metadata) { *p = "" }, "path"},
		{"no table", func(_, _, _, tb, _ *string, _ **dataset.Metadata) { *tb = "" }, "table"},
		{"no database", func(db, _, _, _, _ *string, _ **dataset.Metadata) { *db = "" }, "database"},
		{"no id", func(_, id, _, _, _ *string, _ **dataset.Metadata) { *id = "" }, "id"},
		{"no title", func(_, _, _, _, ti *string, _ **dataset.Metadata) { *ti = "" }, "title"},
		{"no meta title", func(_, _, _, _, _ *string, m **dataset.Metadata) { (*m).Title = "" }, "metadata title"},
		{"no matrix", func(_, _, _, _, _ *string, m **dataset.Metadata) { (*m).Matrix = "" }, "matrix"},
		{"no variables", func(_, _, _, _, _ *string, m **dataset.Metadata) { (*m).Variables = nil }, "variables"},
		{"nil metadata", func(_, _, _, _, _ *string, m **dataset.Metadata) { *m = nil }, "metadata"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, id, path, table, title := "ssd", "POP01", "p", "t", "title"
			meta := testMeta()
			tt.mutate(&db, &id, &path, &table, &title, &meta)

			doc, err := Build(db, id, path, table, title, published, meta)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.Is(err, domain.ErrIncompleteMetadata) {
				t.Errorf("error = %v, want ErrIncompleteMetadata", err)
			}
			if !strings.Contains(err.Error(), tt.missing) {
				t.Errorf("error %q does not name %q", err, tt.missing)
			}
			if !doc.IsEmpty() || doc.Len() != 0 {
				t.Errorf("document has %d fields, want 0", doc.Len())
			}
		})
	}
}

func TestBuild_UnsetPublishedOmitted(t *testing.T) {
	doc, err := Build("ssd", "POP01", "p", "t", "title", time.Time{}, testMeta())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, ok := doc.Get(field.Published.Name()); ok {
		t.Error("published must be omitted when unset")
	}
}

func TestFromDataset(t *testing.T) {
	ds := &dataset.Dataset{
		ID: "POP01", Path: "BE", Table: "POP01.px", Title: "Population", Published: published, Meta: testMeta(),
	}
	doc, err := FromDataset("ssd", ds)
	if err != nil {
		t.Fatalf("FromDataset: %v", err)
	}
	if got, _ := doc.Get("database"); got != "ssd" {
		t.Errorf("database = %q", got)
	}
}

func TestDocument_FieldsAndCopies(t *testing.T) {
	doc := buildValid(t)

	m := doc.Fields()
	if len(m) != doc.Len() {
		t.Errorf("Fields() len = %d, want %d", len(m), doc.Len())
	}
	if m["title"] != "Population by region 2020" {
		t.Errorf("Fields()[title] = %v", m["title"])
	}

	vals := doc.Values()
	vals[0].Text = "mutated"
	if doc.Key() != "POP01" {
		t.Error("Values() must return a copy")
	}
}
