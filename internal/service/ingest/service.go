package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/w-h-a/tabular/internal/metrics"
	"github.com/w-h-a/tabular/record"
	"github.com/w-h-a/tabular/store"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
)

const (
	KindDecode = "csv_deserialization_error"
	KindInsert = "insert_error"
)

var tracer = otel.Tracer("github.com/w-h-a/tabular/internal/service/ingest")

type Result struct {
	Records []record.Record
}

// DecodeFailure means the payload was rejected before anything was written.
type DecodeFailure struct {
	Err error
}

func (e *DecodeFailure) Error() string {
	return fmt.Sprintf("type=%s error=%v", KindDecode, e.Err)
}

func (e *DecodeFailure) Unwrap() error {
	return e.Err
}

type RecordFailure struct {
	ID  string
	Err error
}

// InsertFailure lists every record whose insert failed. Records of the same
// payload that are not listed were persisted.
type InsertFailure struct {
	Total  int
	Failed []RecordFailure
}

func (e *InsertFailure) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "type=%s error=%d of %d inserts failed", KindInsert, len(e.Failed), e.Total)
	for _, f := range e.Failed {
		fmt.Fprintf(&sb, "; %s: %v", f.ID, f.Err)
	}
	return sb.String()
}

func (e *InsertFailure) Unwrap() []error {
	errs := make([]error, len(e.Failed))
	for i, f := range e.Failed {
		errs[i] = f.Err
	}
	return errs
}

func (e *InsertFailure) IDs() []string {
	ids := make([]string, len(e.Failed))
	for i, f := range e.Failed {
		ids[i] = f.ID
	}
	return ids
}

type Service struct {
	options Options
	store   store.Store
	metrics *metrics.Metrics
}

// Ingest decodes payload and inserts every record. Any decode error aborts
// before the first insert and yields a *DecodeFailure. Inserts run concurrently
// outside a transaction; failures yield an *InsertFailure while the other rows
// stay written.
func (s *Service) Ingest(ctx context.Context, payload []byte) (Result, error) {
	start := time.Now()
	defer func() {
		s.metrics.IngestDuration.Observe(time.Since(start).Seconds())
	}()

	ctx, span := tracer.Start(ctx, "Ingest")
	defer span.End()

	if s.options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.options.Timeout)
		defer cancel()
	}

	records, err := s.decode(payload)
	if err != nil {
		s.metrics.Ingests.WithLabelValues(metrics.OutcomeDecodeFailure).Inc()
		span.SetStatus(codes.Error, KindDecode)
		slog.ErrorContext(ctx, "failed to decode payload", "type", KindDecode, "error", err)
		return Result{}, &DecodeFailure{Err: err}
	}

	span.SetAttributes(attribute.Int("ingest.records", len(records)))

	failed := s.insert(ctx, records)

	persisted := len(records) - len(failed)
	s.metrics.IngestedRecords.Add(float64(persisted))

	if len(failed) > 0 {
		s.metrics.Ingests.WithLabelValues(metrics.OutcomeInsertFailure).Inc()
		s.metrics.FailedInserts.Add(float64(len(failed)))
		span.SetStatus(codes.Error, KindInsert)

		failure := &InsertFailure{Total: len(records), Failed: failed}
		slog.ErrorContext(ctx, "failed to insert records",
			"type", KindInsert,
			"failed", len(failed),
			"persisted", persisted,
			"ids", failure.IDs(),
			"error", failure,
		)
		return Result{}, failure
	}

	s.metrics.Ingests.WithLabelValues(metrics.OutcomeSuccess).Inc()
	slog.DebugContext(ctx, "ingested records", "count", len(records))

	return Result{Records: records}, nil
}

func (s *Service) decode(payload []byte) ([]record.Record, error) {
	records := []record.Record{}
	for rec, err := range s.options.Codec.Decode(payload) {
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *Service) insert(ctx context.Context, records []record.Record) []RecordFailure {
	errs := make([]error, len(records))

	var g errgroup.Group
	g.SetLimit(s.options.Concurrency)

	for i, rec := range records {
		g.Go(func() error {
			errs[i] = s.store.Insert(ctx, rec)
			return nil
		})
	}

	_ = g.Wait()

	var failed []RecordFailure
	for i, err := range errs {
		if err != nil {
			failed = append(failed, RecordFailure{ID: records[i].ID, Err: err})
		}
	}

	return failed
}

func New(
	st store.Store,
	m *metrics.Metrics,
	opts ...Option,
) *Service {
	if m == nil {
		m = metrics.New(nil)
	}
	return &Service{
		options: NewOptions(opts...),
		store:   st,
		metrics: m,
	}
}
