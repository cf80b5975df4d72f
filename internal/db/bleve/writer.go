package bleve

import (
	"context"
	"errors"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/index/scorch/mergeplan"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/pxsearch/internal/db"
	"github.com/kailas-cloud/pxsearch/internal/domain"
	"github.com/kailas-cloud/pxsearch/internal/domain/document"
	"github.com/kailas-cloud/pxsearch/internal/domain/field"
)

const lookupPageSize = 100

// Writer is one indexing session over a Handle. Changes are staged in a
// single batch and become visible only when the session is closed after End;
// closing a running session discards them.
//
// A Writer is not safe for concurrent use.
type Writer struct {
	handle  *Handle
	path    string
	index   bleve.Index
	batch   *bleve.Batch
	pending map[string][]string
	running bool
	closed  bool
	logger  *zap.Logger
	newID   func() string
}

func newWriter(h *Handle, idx bleve.Index) *Writer {
	return &Writer{
		handle:  h,
		path:    h.path,
		index:   idx,
		batch:   idx.NewBatch(),
		pending: make(map[string][]string),
		running: true,
		logger:  h.logger,
		newID:   uuid.NewString,
	}
}

// Path returns the index directory.
func (w *Writer) Path() string { return w.path }

// Running reports whether the session is open and End has not been called.
func (w *Writer) Running() bool { return w.running && !w.closed }

// Add stages doc without looking for earlier documents with the same key.
func (w *Writer) Add(doc document.Document) error {
	if err := w.check(doc); err != nil {
		return err
	}
	return w.stage(doc)
}

// Update stages doc in place of every document sharing its key, both those
// already committed and those staged earlier in this session.
func (w *Writer) Update(doc document.Document) error {
	if err := w.check(doc); err != nil {
		return err
	}

	key := doc.Key()
	q := bleve.NewTermQuery(key)
	q.SetField(field.DocID.Name())
	committed, err := w.committedIDs(q, db.OpLookup)
	if err != nil {
		return err
	}
	for _, id := range committed {
		w.batch.Delete(id)
	}
	for _, id := range w.pending[key] {
		w.batch.Delete(id)
	}
	delete(w.pending, key)

	return w.stage(doc)
}

// End marks the session as successfully finished. Close then commits.
func (w *Writer) End() {
	w.running = false
}

// Close commits and compacts the index when End was called, otherwise it
// discards staged changes. The handle is free for the next session in both
// cases. Calling Close again is a no-op.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	var errs []error
	if w.running {
		w.logger.Warn("index session rolled back",
			zap.String("path", w.path),
			zap.Int("discarded", w.batch.Size()),
		)
		w.batch.Reset()
	} else {
		errs = append(errs, w.commit())
	}

	errs = append(errs, w.handle.endSession())
	w.batch = nil
	w.pending = nil
	return errors.Join(errs...)
}

func (w *Writer) check(doc document.Document) error {
	if w.closed {
		return domain.ErrWriterClosed
	}
	if doc.IsEmpty() {
		return domain.ErrEmptyDocument
	}
	return nil
}

func (w *Writer) stage(doc document.Document) error {
	id := w.newID()
	if err := w.batch.Index(id, doc.Fields()); err != nil {
		return db.Wrap(db.OpBatch, w.path, err)
	}
	key := doc.Key()
	w.pending[key] = append(w.pending[key], id)
	return nil
}

// stageTruncate stages the deletion of every committed document.
func (w *Writer) stageTruncate() (int, error) {
	ids, err := w.committedIDs(bleve.NewMatchAllQuery(), db.OpTruncate)
	if err != nil {
		return 0, err
	}
	for _, id := range ids {
		w.batch.Delete(id)
	}
	return len(ids), nil
}

// committedIDs pages through the internal ids of committed documents matching q.
func (w *Writer) committedIDs(q query.Query, op string) ([]string, error) {
	var ids []string
	for from := 0; ; from += lookupPageSize {
		req := bleve.NewSearchRequestOptions(q, lookupPageSize, from, false)
		res, err := w.index.Search(req)
		if err != nil {
			return nil, db.Wrap(op, w.path, err)
		}
		for _, hit := range res.Hits {
			ids = append(ids, hit.ID)
		}
		if len(res.Hits) < lookupPageSize {
			return ids, nil
		}
	}
}

func (w *Writer) commit() error {
	staged := w.batch.Size()
	if staged > 0 {
		if err := w.index.Batch(w.batch); err != nil {
			return db.Wrap(db.OpCommit, w.path, err)
		}
	}
	w.logger.Info("index session committed",
		zap.String("path", w.path),
		zap.Int("operations", staged),
	)
	return w.compact()
}

// singleSegment asks the merger for one segment of any size.
var singleSegment = mergeplan.MergePlanOptions{
	MaxSegmentsPerTier:   1,
	MaxSegmentSize:       1 << 30,
	TierGrowth:           1.0,
	SegmentsPerMergeTask: 10,
	FloorSegmentSize:     1 << 30,
	ReclaimDeletesWeight: 2.0,
}

type forceMerger interface {
	ForceMerge(ctx context.Context, mo *mergeplan.MergePlanOptions) error
}

// compact merges the index down to a single segment where the engine allows it.
func (w *Writer) compact() error {
	adv, err := w.index.Advanced()
	if err != nil {
		return db.Wrap(db.OpCompact, w.path, err)
	}
	fm, ok := adv.(forceMerger)
	if !ok {
		w.logger.Debug("index engine cannot compact", zap.String("path", w.path))
		return nil
	}
	if err := fm.ForceMerge(context.Background(), &singleSegment); err != nil {
		return db.Wrap(db.OpCompact, w.path, err)
	}
	return nil
}
