package pipeline

import (
	"context"
	"log/slog"
	"time"

	"partpulse/internal"
	"partpulse/internal/logger"
	"partpulse/internal/metrics"
	"partpulse/internal/oemsecrets"
)

type Lookuper interface {
	Lookup(ctx context.Context, partNumber string) internal.LookupResult
}

type Stats struct {
	Requests      int
	Found         int
	NotFound      int
	Exhausted     int
	Transient     int
	SkippedOffers int
	Rows          int
}

func (s Stats) Counts() map[string]int {
	return map[string]int{
		"requests":      s.Requests,
		"found":         s.Found,
		"notFound":      s.NotFound,
		"exhausted":     s.Exhausted,
		"transient":     s.Transient,
		"skippedOffers": s.SkippedOffers,
		"rows":          s.Rows,
	}
}

type Collector struct {
	lookup  Lookuper
	log     *slog.Logger
	metrics *metrics.Metrics
}

func NewCollector(lookup Lookuper, log *slog.Logger, m *metrics.Metrics) *Collector {
	if log == nil {
		log = logger.Discard()
	}
	return &Collector{lookup: lookup, log: log, metrics: m}
}

// Collect looks every request up in order and builds one batch stamped with
// pulledAt. Part-level failures are logged and never abort the batch.
func (c *Collector) Collect(ctx context.Context, requests []internal.PartRequest, pulledAt time.Time) (internal.PulledBatch, Stats) {
	batch := internal.PulledBatch{PulledAt: pulledAt, Rows: []internal.ProductRow{}}
	stats := Stats{Requests: len(requests)}

	for _, req := range requests {
		res := c.lookup.Lookup(ctx, req.PartNumber)
		c.metrics.ObserveLookup(res.Status)

		switch res.Status {
		case internal.LookupSuccess:
			stats.Found++
		case internal.LookupNotFound:
			stats.NotFound++
			c.log.Info("no data for part", "part_number", req.PartNumber, "status", res.StatusCode)
			continue
		case internal.LookupCredentialsExhausted:
			stats.Exhausted++
			c.log.Error("all api keys exhausted", "part_number", req.PartNumber, "error", res.Err)
			continue
		default:
			stats.Transient++
			c.log.Error("part lookup failed", "part_number", req.PartNumber, "status", res.StatusCode, "error", res.Err)
			continue
		}

		offers, errs := Expand(req, res, oemsecrets.Currency)
		for _, err := range errs {
			c.log.Warn("skipping stock offer", "part_number", req.PartNumber, "error", err)
		}
		stats.SkippedOffers += len(errs)
		c.metrics.ObserveSkippedOffers(len(errs))
		if len(offers) == 0 {
			c.log.Info("no data found for part", "part_number", req.PartNumber)
			continue
		}

		for _, offer := range offers {
			row := NormalizeRow(offer)
			row.DataPulledTime = pulledAt
			batch.Rows = append(batch.Rows, row)
		}
	}

	stats.Rows = len(batch.Rows)
	return batch, stats
}
