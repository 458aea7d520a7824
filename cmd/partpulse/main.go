package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"partpulse/internal"
	"partpulse/internal/config"
	"partpulse/internal/logger"
	"partpulse/internal/metrics"
	"partpulse/internal/oemsecrets"
	"partpulse/internal/pipeline"
	"partpulse/internal/scheduler"
	"partpulse/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cmd := os.Args[1]
	switch cmd {
	case "pull":
		store, err := storage.OpenStore(ctx, cfg)
		must(err)
		defer store.Close()
		svc := newService(cfg, store, log, nil)
		res, err := svc.Run(ctx)
		must(err)
		fmt.Printf("pull done trace=%s parts=%d rows=%d took=%s\n", res.TraceID, res.Stats.Requests, res.Stats.Rows, res.Duration.Round(time.Millisecond))
	case "schedule":
		store, err := storage.OpenStore(ctx, cfg)
		must(err)
		defer store.Close()

		var m *metrics.Metrics
		if strings.TrimSpace(cfg.MetricsAddr) != "" {
			reg := prometheus.NewRegistry()
			m = metrics.New(reg)
			go serveMetrics(ctx, cfg.MetricsAddr, metrics.Handler(reg), log)
		}

		svc := newService(cfg, store, log, m)
		sched := scheduler.NewService(cfg.PullSchedule, cfg.PullOnStart, func(ctx context.Context) error {
			_, err := svc.Run(ctx)
			return err
		}, log)
		must(sched.Run(ctx))
	case "lookup":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		part := fs.String("part", "", "part number")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*part) == "" {
			must(fmt.Errorf("--part is required"))
		}
		must(lookup(ctx, cfg, log, strings.TrimSpace(*part)))
	case "report:xlsx":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		out := fs.String("out", "", "output xlsx path")
		latest := fs.Bool("latest", false, "only rows from the most recent pull")
		category := fs.String("category", "", "comma-separated categories")
		manufacturer := fs.String("manufacturer", "", "comma-separated manufacturers")
		distributor := fs.String("distributor", "", "comma-separated distributors")
		subCategory := fs.String("sub-category", "", "comma-separated sub-categories")
		subCategory2 := fs.String("sub-category2", "", "comma-separated second-level sub-categories")
		partNumber := fs.String("part", "", "comma-separated part numbers")
		region := fs.String("region", "", "comma-separated distributor regions")
		country := fs.String("country", "", "comma-separated distributor countries")
		breakQty := fs.String("break-qty", "", "comma-separated unit break quantities")
		_ = fs.Parse(os.Args[2:])
		breaks, err := parseInts(*breakQty)
		must(err)

		path := strings.TrimSpace(*out)
		if path == "" {
			path = filepath.Join(cfg.OutputDir, fmt.Sprintf("productdetails_%s.xlsx", time.Now().Format("20060102_150405")))
		}
		filter := internal.RowFilter{
			Categories:           config.SplitList(*category),
			SubCategories:        config.SplitList(*subCategory),
			SubCategories2:       config.SplitList(*subCategory2),
			PartNumbers:          config.SplitList(*partNumber),
			Manufacturers:        config.SplitList(*manufacturer),
			Distributors:         config.SplitList(*distributor),
			DistributorRegions:   config.SplitList(*region),
			DistributorCountries: config.SplitList(*country),
			UnitBreakQtys:        breaks,
			LatestOnly:           *latest,
		}

		store, err := storage.OpenStore(ctx, cfg)
		must(err)
		defer store.Close()
		rows, err := store.ListRows(ctx, filter)
		must(err)
		if len(rows) == 0 {
			must(fmt.Errorf("no stored rows match the filter"))
		}
		must(pipeline.ExportRowsToXLSX(rows, path))
		fmt.Printf("exported %d rows to %s\n", len(rows), path)
	default:
		usage()
		os.Exit(1)
	}
}

func newService(cfg config.Config, store storage.Store, log *slog.Logger, m *metrics.Metrics) *pipeline.Service {
	source := pipeline.FileSource{Path: cfg.InputPath, Sheet: cfg.InputSheet, Log: log}
	client := oemsecrets.NewClient(cfg, log)
	return pipeline.NewService(source, client, store, log, m)
}

func lookup(ctx context.Context, cfg config.Config, log *slog.Logger, part string) error {
	res := oemsecrets.NewClient(cfg, log).Lookup(ctx, part)
	fmt.Printf("part=%s status=%s http=%d\n", part, res.Status, res.StatusCode)
	if res.Status != internal.LookupSuccess {
		if res.Err != nil {
			return res.Err
		}
		return nil
	}

	offers, errs := pipeline.Expand(internal.PartRequest{PartNumber: part}, res, oemsecrets.Currency)
	for _, err := range errs {
		fmt.Printf("skipped offer: %v\n", err)
	}
	for _, offer := range offers {
		row := pipeline.NormalizeRow(offer)
		fmt.Printf("  %-24s %-20s qty=%-6d price=%-10g stock=%-8d lead_days=%d\n",
			row.DistributorName, row.Manufacturer, row.UnitBreakQty, row.UnitPriceEUR, row.QuantityInStock, row.NewLeadTime)
	}
	fmt.Printf("rows=%d\n", len(offers))
	return nil
}

func parseInts(value string) ([]int, error) {
	var out []int
	for _, p := range config.SplitList(value) {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid quantity %q", p)
		}
		out = append(out, n)
	}
	return out, nil
}

func serveMetrics(ctx context.Context, addr string, h http.Handler, log *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", h)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("metrics listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("metrics server failed", "error", err)
	}
}

func usage() {
	fmt.Println("usage: partpulse <command>")
	fmt.Println("commands:")
	fmt.Println("  pull")
	fmt.Println("  schedule")
	fmt.Println("  lookup --part=LM317")
	fmt.Println("  report:xlsx [--out=./out/report.xlsx] [--latest] [--category=...] [--manufacturer=...] [--distributor=...]")
	fmt.Println("              [--sub-category=...] [--sub-category2=...] [--part=...] [--region=...] [--country=...] [--break-qty=1,10]")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
