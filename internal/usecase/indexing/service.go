package indexing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/pxsearch/internal/domain"
	dombatch "github.com/kailas-cloud/pxsearch/internal/domain/batch"
	"github.com/kailas-cloud/pxsearch/internal/domain/dataset"
	"github.com/kailas-cloud/pxsearch/internal/domain/document"
	"github.com/kailas-cloud/pxsearch/internal/logger"
	"github.com/kailas-cloud/pxsearch/internal/metrics"
)

// Mode selects how documents are written.
type Mode string

// Indexing modes.
const (
	// ModeUpdate replaces documents that share a key. It is the default.
	ModeUpdate Mode = "update"
	// ModeAdd appends without looking up existing keys; meant for loads into a fresh index.
	ModeAdd Mode = "add"
)

// Request describes one indexing session.
type Request struct {
	Database  string
	Language  string
	Datasets  []dataset.Dataset
	Mode      Mode
	CreateNew bool
}

// Report is the outcome of an indexing session.
type Report struct {
	Results   []dombatch.Result
	Summary   dombatch.Summary
	Committed bool
}

// Service drives a writer session over a batch of datasets.
type Service struct {
	writers WriterSource
}

// New creates an indexing service.
func New(writers WriterSource) *Service {
	return &Service{writers: writers}
}

// Run writes every dataset of req in one session. Datasets with incomplete
// metadata are skipped. The first write failure or a cancelled ctx rolls the
// whole session back. A locked index returns an error wrapping
// domain.ErrIndexLocked with nothing written.
func (s *Service) Run(ctx context.Context, req Request) (Report, error) {
	start := time.Now()

	mode := req.Mode
	if mode == "" {
		mode = ModeUpdate
	}
	if mode != ModeUpdate && mode != ModeAdd {
		return Report{}, fmt.Errorf("%w: %q", domain.ErrInvalidMode, mode)
	}

	ctx = logger.WithFields(ctx,
		zap.String("database", req.Database),
		zap.String("mode", string(mode)),
	)
	log := logger.FromContext(ctx)

	w, err := s.writers.OpenWriter(req.Database, req.Language, req.CreateNew)
	if err != nil {
		if errors.Is(err, domain.ErrIndexLocked) {
			metrics.WriterSessionsTotal.WithLabelValues(metrics.OutcomeLocked).Inc()
			log.Warn("index locked, try again later", zap.Error(err))
			return Report{}, err
		}
		metrics.WriterSessionsTotal.WithLabelValues(metrics.OutcomeFailed).Inc()
		return Report{}, fmt.Errorf("open writer: %w", err)
	}

	write := w.Update
	if mode == ModeAdd {
		write = w.Add
	}

	report := Report{Results: make([]dombatch.Result, 0, len(req.Datasets))}
	for i := range req.Datasets {
		ds := &req.Datasets[i]

		if err := ctx.Err(); err != nil {
			return s.abort(w, report, fmt.Errorf("indexing interrupted: %w", err), log)
		}

		doc, err := document.FromDataset(req.Database, ds)
		if err != nil {
			if !errors.Is(err, domain.ErrIncompleteMetadata) {
				return s.abort(w, report, fmt.Errorf("build %s: %w", ds.ID, err), log)
			}
			metrics.DocumentsSkippedTotal.Inc()
			log.Warn("dataset skipped", zap.String("id", ds.ID), zap.Error(err))
			report.Results = append(report.Results, dombatch.NewSkipped(ds.ID, err))
			continue
		}

		if err := write(doc); err != nil {
			report.Results = append(report.Results, dombatch.NewError(ds.ID, err))
			return s.abort(w, report, fmt.Errorf("write %s: %w", ds.ID, err), log)
		}
		report.Results = append(report.Results, dombatch.NewOK(ds.ID))
	}

	w.End()
	report.Summary = dombatch.Summarize(report.Results)
	if err := w.Close(); err != nil {
		metrics.WriterSessionsTotal.WithLabelValues(metrics.OutcomeFailed).Inc()
		return report, fmt.Errorf("commit: %w", err)
	}
	report.Committed = true

	metrics.WriterSessionsTotal.WithLabelValues(metrics.OutcomeCommitted).Inc()
	metrics.DocumentsIndexedTotal.WithLabelValues(string(mode)).Add(float64(report.Summary.OK))

	if err := s.writers.Invalidate(req.Database, req.Language); err != nil {
		log.Warn("searcher invalidation failed", zap.Error(err))
	}

	log.Info("indexing finished",
		zap.Int("indexed", report.Summary.OK),
		zap.Int("skipped", report.Summary.Skipped),
		zap.Duration("duration", time.Since(start)),
	)
	return report, nil
}

// abort closes w without End, which discards the session.
func (s *Service) abort(w IndexWriter, report Report, cause error, log *zap.Logger) (Report, error) {
	report.Summary = dombatch.Summarize(report.Results)
	closeErr := w.Close()

	metrics.WriterSessionsTotal.WithLabelValues(metrics.OutcomeRolledBack).Inc()
	log.Error("indexing rolled back", zap.Error(cause))

	if closeErr != nil {
		return report, errors.Join(cause, fmt.Errorf("rollback: %w", closeErr))
	}
	return report, cause
}
