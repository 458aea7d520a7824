package pipeline

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"partpulse/internal"
	"partpulse/internal/logger"
	"partpulse/internal/metrics"
)

var ErrSinkWrite = errors.New("sink write failed")

type InputSource interface {
	Load(ctx context.Context) ([]internal.PartRequest, error)
}

// Sink appends a batch. Implementations never update or delete rows.
type Sink interface {
	AppendBatch(ctx context.Context, batch internal.PulledBatch) error
}

// RunRecorder is implemented by sinks that keep per-run bookkeeping.
type RunRecorder interface {
	RecordRun(ctx context.Context, traceID string, pulledAt time.Time, timings map[string]float64, counts map[string]int) error
}

// FileSource reads the part list from a spreadsheet on every Load.
type FileSource struct {
	Path  string
	Sheet string
	Log   *slog.Logger
}

func (f FileSource) Load(_ context.Context) ([]internal.PartRequest, error) {
	return ReadPartRequests(f.Path, f.Sheet, f.Log)
}

type Service struct {
	source    InputSource
	collector *Collector
	sink      Sink
	log       *slog.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

func NewService(source InputSource, lookup Lookuper, sink Sink, log *slog.Logger, m *metrics.Metrics) *Service {
	if log == nil {
		log = logger.Discard()
	}
	return &Service{
		source:    source,
		collector: NewCollector(lookup, log, m),
		sink:      sink,
		log:       log,
		metrics:   m,
		now:       time.Now,
	}
}

type RunResult struct {
	TraceID  string
	PulledAt time.Time
	Stats    Stats
	Duration time.Duration
}

// Run loads the input, collects one batch and appends it to the sink.
// Only input and sink failures are returned.
func (s *Service) Run(ctx context.Context) (RunResult, error) {
	start := s.now()
	result := RunResult{TraceID: traceID(), PulledAt: start}
	log := s.log.With("trace_id", result.TraceID)
	log.Info("starting data pull")

	requests, err := s.source.Load(ctx)
	if err != nil {
		result.Duration = time.Since(start)
		s.metrics.ObserveRun("input_failed", 0, result.Duration, start)
		log.Error("loading part list failed", "error", err)
		return result, err
	}

	batch, stats := s.collector.Collect(ctx, requests, start)
	result.Stats = stats

	if len(batch.Rows) > 0 {
		if err := s.sink.AppendBatch(ctx, batch); err != nil {
			result.Duration = time.Since(start)
			s.metrics.ObserveRun("sink_failed", len(batch.Rows), result.Duration, start)
			log.Error("inserting batch failed", "rows", len(batch.Rows), "error", err)
			return result, fmt.Errorf("%w: %w", ErrSinkWrite, err)
		}
	}

	result.Duration = time.Since(start)
	s.metrics.ObserveRun("success", len(batch.Rows), result.Duration, start)
	if rec, ok := s.sink.(RunRecorder); ok {
		timings := map[string]float64{"totalMs": float64(result.Duration.Milliseconds())}
		if err := rec.RecordRun(ctx, result.TraceID, start, timings, stats.Counts()); err != nil {
			log.Warn("recording run failed", "error", err)
		}
	}
	log.Info("data pull stored",
		"requests", stats.Requests,
		"found", stats.Found,
		"not_found", stats.NotFound,
		"exhausted", stats.Exhausted,
		"transient", stats.Transient,
		"rows", stats.Rows,
		"took", result.Duration,
	)
	return result, nil
}

func traceID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("run-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}
