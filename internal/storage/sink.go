package storage

import (
	"context"
	"fmt"

	"partpulse/internal"
	"partpulse/internal/config"
)

// Store is what the pipeline and the report command need from a sink.
type Store interface {
	AppendBatch(ctx context.Context, batch internal.PulledBatch) error
	ListRows(ctx context.Context, f internal.RowFilter) ([]internal.ProductRow, error)
	Close() error
}

func OpenStore(ctx context.Context, cfg config.Config) (Store, error) {
	switch cfg.SinkDriver {
	case "", "sqlite":
		return Open(cfg.SQLitePath, cfg.SinkTable)
	case "postgres", "postgresql":
		if err := cfg.Require("DATABASE_URL", cfg.DatabaseURL); err != nil {
			return nil, err
		}
		return OpenPostgres(ctx, cfg.DatabaseURL, cfg.SinkTable)
	default:
		return nil, fmt.Errorf("unsupported sink driver: %s", cfg.SinkDriver)
	}
}
