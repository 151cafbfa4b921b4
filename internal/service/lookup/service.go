package lookup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/w-h-a/tabular/internal/metrics"
	"github.com/w-h-a/tabular/record"
	"github.com/w-h-a/tabular/store"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

const (
	KindQuery = "error_from_query"
)

var (
	ErrNotFound = errors.New("record not found")
)

var tracer = otel.Tracer("github.com/w-h-a/tabular/internal/service/lookup")

type Service struct {
	store   store.Store
	metrics *metrics.Metrics
	timeout time.Duration
}

// Lookup returns the record stored under key. A missing record yields
// ErrNotFound; any other error comes from the store.
func (s *Service) Lookup(ctx context.Context, key string) (record.Record, error) {
	ctx, span := tracer.Start(ctx, "Lookup")
	defer span.End()

	if len(key) == 0 {
		s.metrics.Lookups.WithLabelValues(metrics.OutcomeNotFound).Inc()
		return record.Record{}, ErrNotFound
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	rec, err := s.store.SelectByID(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		s.metrics.Lookups.WithLabelValues(metrics.OutcomeNotFound).Inc()
		return record.Record{}, ErrNotFound
	}
	if err != nil {
		s.metrics.Lookups.WithLabelValues(metrics.OutcomeError).Inc()
		span.SetStatus(codes.Error, KindQuery)
		return record.Record{}, fmt.Errorf("select %q: %w", key, err)
	}

	s.metrics.Lookups.WithLabelValues(metrics.OutcomeFound).Inc()

	return rec, nil
}

func New(
	st store.Store,
	m *metrics.Metrics,
	timeout time.Duration,
) *Service {
	if m == nil {
		m = metrics.New(nil)
	}
	return &Service{
		store:   st,
		metrics: m,
		timeout: timeout,
	}
}
