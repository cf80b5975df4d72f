package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegister_Idempotent(t *testing.T) {
	Register()
	Register()

	err := prometheus.Register(SearchesTotal)
	var already prometheus.AlreadyRegisteredError
	if !errors.As(err, &already) {
		t.Errorf("expected AlreadyRegisteredError, got %v", err)
	}
}

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(DocumentsIndexedTotal.WithLabelValues("update"))
	DocumentsIndexedTotal.WithLabelValues("update").Inc()
	if got := testutil.ToFloat64(DocumentsIndexedTotal.WithLabelValues("update")); got != before+1 {
		t.Errorf("documents_indexed_total{op=update} = %f, want %f", got, before+1)
	}

	WriterSessionsTotal.WithLabelValues(OutcomeLocked).Inc()
	if got := testutil.ToFloat64(WriterSessionsTotal.WithLabelValues(OutcomeLocked)); got < 1 {
		t.Errorf("writer_sessions_total{outcome=locked} = %f", got)
	}

	SearchDuration.Observe(0.01)
	if n := testutil.CollectAndCount(SearchDuration); n != 1 {
		t.Errorf("search_duration_seconds series = %d, want 1", n)
	}
}
