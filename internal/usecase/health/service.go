package health

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/pxsearch/internal/domain"
	"github.com/kailas-cloud/pxsearch/internal/logger"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates every index is searchable.
	Healthy Status = "ok"
	// Degraded indicates at least one database cannot be searched right now.
	Degraded Status = "degraded"
	// Unhealthy indicates every check failed.
	Unhealthy Status = "error"
)

// CheckResult is the state of one database index.
type CheckResult string

const (
	CheckOK         CheckResult = "ok"
	CheckNotIndexed CheckResult = "not_indexed"
	// CheckLocked means another process holds the index.
	CheckLocked CheckResult = "locked"
	CheckError  CheckResult = "error"
)

// Report aggregates health check results keyed by database.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates index health checks.
type Service struct {
	indexes IndexInspector
}

// New creates a Service.
func New(indexes IndexInspector) *Service {
	return &Service{indexes: indexes}
}

// Check inspects the given databases, or every database under the base
// directory when none are given.
func (s *Service) Check(ctx context.Context, databases []string, language string) (Report, error) {
	if len(databases) == 0 {
		all, err := s.indexes.Databases()
		if err != nil {
			return Report{Status: Unhealthy}, err
		}
		databases = all
	}

	ctx = logger.WithFields(ctx, zap.String("language", language))
	checks := make(map[string]CheckResult, len(databases))
	failed := 0
	for _, name := range databases {
		if err := ctx.Err(); err != nil {
			return Report{}, fmt.Errorf("health check interrupted: %w", err)
		}

		indexed, err := s.indexes.HasIndex(name, language)
		switch {
		case errors.Is(err, domain.ErrIndexLocked):
			checks[name] = CheckLocked
		case err != nil:
			dbCtx := logger.WithFields(ctx, zap.String("database", name))
			logger.FromContext(dbCtx).Warn("index check failed", zap.Error(err))
			checks[name] = CheckError
			failed++
		case !indexed:
			checks[name] = CheckNotIndexed
		default:
			checks[name] = CheckOK
		}
	}

	status := Healthy
	for _, v := range checks {
		if v != CheckOK {
			status = Degraded
			break
		}
	}
	if failed > 0 && failed == len(checks) {
		status = Unhealthy
	}

	return Report{Status: status, Checks: checks}, nil
}
