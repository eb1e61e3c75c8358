package provider

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/argo-frvp/internal/types"
)

// DuckDBSource reads bars from parquet or csv files through an in-memory DuckDB.
// The files use the column layout written by the market data writer:
// time, symbol, open, high, low, close, volume.
type DuckDBSource struct {
	path string
	sq   squirrel.StatementBuilderType
}

// NewDuckDBSource creates a source over path, which may be a glob.
func NewDuckDBSource(path string) (Provider, error) {
	if path == "" {
		return nil, fmt.Errorf("data path is required")
	}

	return &DuckDBSource{
		path: path,
		sq:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}, nil
}

func (d *DuckDBSource) Type() ProviderType {
	return ProviderDuckDB
}

// table returns the DuckDB table function for the configured path.
func (d *DuckDBSource) table() string {
	escaped := strings.ReplaceAll(d.path, "'", "''")

	if strings.EqualFold(filepath.Ext(d.path), ".csv") {
		return fmt.Sprintf("read_csv_auto('%s')", escaped)
	}

	return fmt.Sprintf("read_parquet('%s')", escaped)
}

// Fetch implements Provider.
func (d *DuckDBSource) Fetch(ctx context.Context, query Query) ([]types.Bar, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("failed to open DuckDB connection: %w", err)
	}
	defer db.Close()

	stmt, args, err := d.sq.
		Select("time", "open", "high", "low", "close", "volume").
		From(d.table()).
		Where(squirrel.And{
			squirrel.Eq{"symbol": query.Symbol},
			squirrel.GtOrEq{"time": query.Start},
			squirrel.LtOrEq{"time": query.End},
		}).
		OrderBy("time ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query market data: %w", err)
	}
	defer rows.Close()

	bars := make([]types.Bar, 0)

	for rows.Next() {
		var (
			timestamp                           time.Time
			open, high, low, closePrice, volume float64
		)

		if err := rows.Scan(&timestamp, &open, &high, &low, &closePrice, &volume); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		bars = append(bars, types.Bar{
			Time:   timestamp.UTC(),
			Open:   open,
			High:   high,
			Low:    low,
			Close:  closePrice,
			Volume: volume,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	return bars, nil
}
