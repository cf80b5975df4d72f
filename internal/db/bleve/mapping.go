// Package bleve adapts a bleve full-text index to the dataset search index:
// field mapping, the writer session, read-only searchers and query construction.
package bleve

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/kailas-cloud/pxsearch/internal/domain/field"
)

// BuildIndexMapping returns the index mapping derived from the field catalog.
// Unknown document properties are neither indexed nor stored.
func BuildIndexMapping() *mapping.IndexMappingImpl {
	im := bleve.NewIndexMapping()
	im.DefaultAnalyzer = standard.Name
	im.IndexDynamic = false
	im.StoreDynamic = false
	im.DocValuesDynamic = false
	im.DefaultMapping = BuildDocumentMapping()
	return im
}

// BuildDocumentMapping maps every catalog field.
func BuildDocumentMapping() *mapping.DocumentMapping {
	dm := bleve.NewDocumentStaticMapping()
	for _, f := range field.All() {
		dm.AddFieldMappingsAt(f.Name(), FieldMapping(f))
	}
	return dm
}

// FieldMapping translates catalog attributes into a bleve text field:
// analyzed fields use the standard analyzer, verbatim fields the keyword analyzer.
func FieldMapping(f field.Field) *mapping.FieldMapping {
	fm := bleve.NewTextFieldMapping()
	fm.Store = f.Stored()
	fm.Index = f.Indexed()
	fm.IncludeInAll = false
	fm.IncludeTermVectors = f.Analyzed()
	fm.DocValues = false
	fm.Analyzer = keyword.Name
	if f.Analyzed() {
		fm.Analyzer = standard.Name
	}
	return fm
}
