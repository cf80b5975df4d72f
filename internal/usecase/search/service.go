package search

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/pxsearch/internal/domain"
	"github.com/kailas-cloud/pxsearch/internal/domain/search/operator"
	"github.com/kailas-cloud/pxsearch/internal/domain/search/result"
	"github.com/kailas-cloud/pxsearch/internal/logger"
	"github.com/kailas-cloud/pxsearch/internal/metrics"
)

const statusError = "error"

// Config holds query defaults and limits.
type Config struct {
	DefaultOperator   operator.Operator
	DefaultMaxResults int
	MaxResults        int
}

// Request is a free-text search against one database index.
type Request struct {
	Database string
	Language string
	Text     string
	// Filter is a comma-separated list of fields replacing the default search fields.
	Filter string
	// Limit of zero selects the configured default; larger values are clamped.
	Limit int
	// Operator joins terms without an explicit conjunction. Empty selects the default.
	Operator operator.Operator
}

// Response holds ranked records and the index status.
type Response struct {
	Records []result.Record
	Status  result.Status
}

// Service answers free-text searches.
type Service struct {
	searchers    SearcherSource
	defaultOp    operator.Operator
	defaultLimit int
	maxLimit     int
}

// New creates a search service.
func New(searchers SearcherSource, cfg Config) *Service {
	s := &Service{
		searchers:    searchers,
		defaultOp:    cfg.DefaultOperator.OrDefault(),
		defaultLimit: cfg.DefaultMaxResults,
		maxLimit:     cfg.MaxResults,
	}
	if s.maxLimit <= 0 {
		s.maxLimit = 1000
	}
	if s.defaultLimit <= 0 || s.defaultLimit > s.maxLimit {
		s.defaultLimit = s.maxLimit
	}
	return s
}

// Search runs req and records its status and duration.
func (s *Service) Search(ctx context.Context, req Request) (Response, error) {
	start := time.Now()

	op, limit, err := s.resolve(req)
	if err != nil {
		return Response{}, err
	}

	ctx = logger.WithFields(ctx,
		zap.String("database", req.Database),
		zap.String("operator", string(op)),
	)
	log := logger.FromContext(ctx)

	searcher, release, err := s.searchers.Searcher(req.Database, req.Language)
	if err != nil {
		metrics.SearchesTotal.WithLabelValues(statusError).Inc()
		return Response{}, fmt.Errorf("open searcher: %w", err)
	}
	defer release()

	records, status, err := searcher.Search(req.Text, req.Filter, limit, op)
	metrics.SearchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.SearchesTotal.WithLabelValues(statusError).Inc()
		log.Debug("search failed", zap.String("text", req.Text), zap.Error(err))
		return Response{}, fmt.Errorf("search: %w", err)
	}
	metrics.SearchesTotal.WithLabelValues(string(status)).Inc()

	log.Info("search",
		zap.String("text", req.Text),
		zap.String("filter", req.Filter),
		zap.Int("limit", limit),
		zap.String("status", string(status)),
		zap.Int("hits", len(records)),
		zap.Duration("duration", time.Since(start)),
	)
	return Response{Records: records, Status: status}, nil
}

func (s *Service) resolve(req Request) (operator.Operator, int, error) {
	op := s.defaultOp
	if req.Operator != "" {
		parsed, err := operator.Parse(string(req.Operator))
		if err != nil {
			return "", 0, err
		}
		op = parsed
	}

	limit := req.Limit
	switch {
	case limit < 0:
		return "", 0, fmt.Errorf("%w: %d", domain.ErrInvalidLimit, limit)
	case limit == 0:
		limit = s.defaultLimit
	case limit > s.maxLimit:
		limit = s.maxLimit
	}
	return op, limit, nil
}
