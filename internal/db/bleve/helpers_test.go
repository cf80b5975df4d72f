package bleve

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/pxsearch/internal/domain/dataset"
	"github.com/kailas-cloud/pxsearch/internal/domain/document"
	"github.com/kailas-cloud/pxsearch/internal/domain/search/operator"
)

var testPublished = time.Date(2021, time.June, 1, 8, 30, 0, 0, time.UTC)

func testDoc(t *testing.T, id, title string, values ...string) document.Document {
	t.Helper()

	vals := make([]dataset.Value, 0, len(values))
	for i, v := range values {
		vals = append(vals, dataset.Value{Code: string(rune('A' + i)), Text: v})
	}
	meta := &dataset.Metadata{
		Title:  title,
		Matrix: id,
		Variables: []dataset.Variable{
			{Name: "region", Values: vals},
			{Name: "year", IsTime: true, Values: []dataset.Value{{Code: "2021", Text: "2021"}}},
		},
	}
	doc, err := document.Build("ssd", id, "BE/"+id, id+".px", title, testPublished, meta)
	require.NoError(t, err)
	return doc
}

func indexPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "ssd", "_INDEX", "en")
}

func openHandle(t *testing.T, path string) *Handle {
	t.Helper()

	h, err := OpenHandle(HandleConfig{Path: path})
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })
	return h
}

// writeDocs runs one committed session that updates every doc.
func writeDocs(t *testing.T, h *Handle, docs ...document.Document) {
	t.Helper()

	w, err := h.OpenWriter(false)
	require.NoError(t, err)
	for _, d := range docs {
		require.NoError(t, w.Update(d))
	}
	w.End()
	require.NoError(t, w.Close())
}

func titles(t *testing.T, s *Searcher, text string) []string {
	t.Helper()

	recs, _, err := s.Search(text, "", 10, operator.Or)
	require.NoError(t, err)
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Title())
	}
	return out
}
