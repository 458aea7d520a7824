package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"partpulse/internal"
	"partpulse/internal/storage"
)

type fakeSource struct {
	requests []internal.PartRequest
	err      error
}

func (f fakeSource) Load(context.Context) ([]internal.PartRequest, error) {
	return f.requests, f.err
}

type lookupFunc func(ctx context.Context, partNumber string) internal.LookupResult

func (f lookupFunc) Lookup(ctx context.Context, partNumber string) internal.LookupResult {
	return f(ctx, partNumber)
}

type memorySink struct {
	batches []internal.PulledBatch
	err     error
}

func (m *memorySink) AppendBatch(_ context.Context, batch internal.PulledBatch) error {
	if m.err != nil {
		return m.err
	}
	m.batches = append(m.batches, batch)
	return nil
}

const twoBreaks = `{"stock":[{
	"manufacturer":"WhiteRodgers",
	"quantity_in_stock":"250",
	"lead_time":"3 weeks",
	"lead_time_format":"weeks",
	"distributor":{"distributor_name":"Farnell"},
	"prices":{"EUR":[{"unit_break":1,"unit_price":2.5},{"unit_break":10,"unit_price":2.25}]}
}]}`

func TestRunEndToEnd(t *testing.T) {
	source := fakeSource{requests: []internal.PartRequest{{PartNumber: "50E47-843", Categories: "HVAC"}}}
	lookup := lookupFunc(func(_ context.Context, part string) internal.LookupResult {
		return success(t, twoBreaks)
	})
	sink := &memorySink{}
	pulledAt := time.Date(2026, 10, 19, 21, 30, 0, 0, time.UTC)

	svc := NewService(source, lookup, sink, nil, nil)
	svc.now = func() time.Time { return pulledAt }

	res, err := svc.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Stats.Rows != 2 || len(sink.batches) != 1 {
		t.Fatalf("stats=%+v batches=%d", res.Stats, len(sink.batches))
	}
	batch := sink.batches[0]
	if !batch.PulledAt.Equal(pulledAt) {
		t.Fatalf("pulledAt=%v", batch.PulledAt)
	}
	for _, row := range batch.Rows {
		if !row.DataPulledTime.Equal(pulledAt) {
			t.Fatalf("row timestamp=%v", row.DataPulledTime)
		}
		if row.Manufacturer != "white-rodgers" || row.QuantityInStock != 250 || row.NewLeadTime != 21 || row.PartNumber != "50E47-843" {
			t.Fatalf("row=%+v", row)
		}
	}
	if batch.Rows[0].UnitPriceEUR != 2.5 || batch.Rows[1].UnitBreakQty != 10 {
		t.Fatalf("prices=%+v", batch.Rows)
	}
}

func TestCollectDropsFailedParts(t *testing.T) {
	results := map[string]internal.LookupResult{
		"A": {Status: internal.LookupNotFound, StatusCode: 404},
		"B": {Status: internal.LookupCredentialsExhausted, Err: errors.New("all keys exhausted")},
		"C": {Status: internal.LookupTransientError, StatusCode: 503, Err: errors.New("unavailable")},
	}
	lookup := lookupFunc(func(_ context.Context, part string) internal.LookupResult {
		if res, ok := results[part]; ok {
			return res
		}
		return success(t, twoBreaks)
	})

	requests := []internal.PartRequest{{PartNumber: "A"}, {PartNumber: "B"}, {PartNumber: "C"}, {PartNumber: "D"}}
	batch, stats := NewCollector(lookup, nil, nil).Collect(context.Background(), requests, time.Now())

	if len(batch.Rows) != 2 || batch.Rows[0].PartNumber != "D" {
		t.Fatalf("rows=%+v", batch.Rows)
	}
	if stats.NotFound != 1 || stats.Exhausted != 1 || stats.Transient != 1 || stats.Found != 1 {
		t.Fatalf("stats=%+v", stats)
	}
}

func TestRunSinkFailure(t *testing.T) {
	source := fakeSource{requests: []internal.PartRequest{{PartNumber: "X"}}}
	lookup := lookupFunc(func(context.Context, string) internal.LookupResult { return success(t, twoBreaks) })
	sink := &memorySink{err: errors.New("connection refused")}

	_, err := NewService(source, lookup, sink, nil, nil).Run(context.Background())
	if !errors.Is(err, ErrSinkWrite) {
		t.Fatalf("err=%v", err)
	}
}

func TestRunInputFailure(t *testing.T) {
	source := fakeSource{err: ErrInput}
	lookup := lookupFunc(func(context.Context, string) internal.LookupResult {
		t.Fatal("lookup must not run")
		return internal.LookupResult{}
	})
	_, err := NewService(source, lookup, &memorySink{}, nil, nil).Run(context.Background())
	if !errors.Is(err, ErrInput) {
		t.Fatalf("err=%v", err)
	}
}

func TestRunIntoSQLite(t *testing.T) {
	db, err := storage.Open(filepath.Join(t.TempDir(), "app.db"), "productdetails")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	source := fakeSource{requests: []internal.PartRequest{{PartNumber: "50E47-843"}}}
	lookup := lookupFunc(func(context.Context, string) internal.LookupResult { return success(t, twoBreaks) })

	svc := NewService(source, lookup, db, nil, nil)
	if _, err := svc.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	rows, err := db.ListRows(context.Background(), internal.RowFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 4 {
		t.Fatalf("len=%d", len(rows))
	}
	runs, err := db.ListRuns(context.Background(), 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 || runs[0].Counts["rows"] != 2 {
		t.Fatalf("runs=%+v", runs)
	}
}
