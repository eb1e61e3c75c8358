package writer

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/argo-frvp/internal/logger"
	"go.uber.org/zap"
)

// DuckDBWriter implements the Writer interface for DuckDB.
type DuckDBWriter struct {
	db         *sql.DB
	tx         *sql.Tx
	stmt       *sql.Stmt
	columns    []string
	outputPath string // Path of the output Parquet file
	logger     *logger.Logger
}

// NewDuckDBWriter creates a new DuckDBWriter.
// outputPath specifies where the final Parquet file will be saved.
func NewDuckDBWriter(outputPath string, log *logger.Logger) MarketDataWriter {
	if log == nil {
		log = logger.NewNop()
	}

	return &DuckDBWriter{
		outputPath: outputPath,
		logger:     log.Named("chart_writer"),
	}
}

func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// Initialize sets up the DuckDB writer.
// It opens an in-memory database, creates the chart table with one column per
// indicator, begins a transaction, and prepares the insert statement.
func (w *DuckDBWriter) Initialize(indicatorColumns []string) (err error) {
	w.columns = append([]string(nil), indicatorColumns...)

	w.db, err = sql.Open("duckdb", "")
	if err != nil {
		return fmt.Errorf("failed to open DuckDB connection: %w", err)
	}

	names := []string{"id", "time", "symbol", "open", "high", "low", "close", "volume"}
	definitions := []string{"id TEXT", "time TIMESTAMP", "symbol TEXT", "open DOUBLE", "high DOUBLE", "low DOUBLE", "close DOUBLE", "volume DOUBLE"}

	for _, column := range w.columns {
		names = append(names, quoteIdentifier(column))
		definitions = append(definitions, quoteIdentifier(column)+" DOUBLE")
	}

	names = append(names, "action")
	definitions = append(definitions, "action TEXT")

	_, err = w.db.Exec(fmt.Sprintf("CREATE TABLE IF NOT EXISTS chart_data (%s)", strings.Join(definitions, ", ")))
	if err != nil {
		w.db.Close() // Ensure DB is closed on error during init

		return fmt.Errorf("failed to create table: %w", err)
	}

	w.tx, err = w.db.Begin()
	if err != nil {
		w.db.Close()

		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(names)), ", ")

	w.stmt, err = w.tx.Prepare(fmt.Sprintf("INSERT INTO chart_data (%s) VALUES (%s)", strings.Join(names, ", "), placeholders))
	if err != nil {
		w.tx.Rollback()
		w.db.Close()

		return fmt.Errorf("failed to prepare statement: %w", err)
	}

	return nil
}

// Write persists a single chart row using the prepared statement within the transaction.
func (w *DuckDBWriter) Write(row ChartRow) error {
	if w.stmt == nil {
		return fmt.Errorf("writer not initialized or statement is nil")
	}

	if len(row.Values) != len(w.columns) {
		return fmt.Errorf("row has %d indicator values, expected %d", len(row.Values), len(w.columns))
	}

	args := []any{uuid.New().String(), row.Time, row.Symbol, row.Open, row.High, row.Low, row.Close, row.Volume}
	for _, v := range row.Values {
		if v == nil {
			args = append(args, nil)
		} else {
			args = append(args, *v)
		}
	}

	args = append(args, row.Action)

	if _, err := w.stmt.Exec(args...); err != nil {
		// Don't rollback here, let Finalize handle it or allow further writes
		return fmt.Errorf("failed to insert data: %w", err)
	}

	return nil
}

// Finalize commits the transaction and exports the data to a Parquet file.
func (w *DuckDBWriter) Finalize() (outputPath string, err error) {
	if w.tx == nil {
		return "", fmt.Errorf("writer not initialized or transaction is nil")
	}

	if err = w.tx.Commit(); err != nil {
		// Attempt rollback on commit failure, though it might also fail
		w.tx.Rollback()

		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}

	w.tx = nil // Transaction is finished

	escaped := strings.ReplaceAll(w.outputPath, "'", "''")

	_, err = w.db.Exec(fmt.Sprintf(`COPY (SELECT * FROM chart_data ORDER BY time) TO '%s' (FORMAT PARQUET)`, escaped))
	if err != nil {
		return "", fmt.Errorf("failed to export to Parquet: %w", err)
	}

	w.logger.Info("Exported chart data", zap.String("path", w.outputPath))

	return w.outputPath, nil
}

// Close cleans up resources used by the writer, including closing the statement
// and the database connection.
func (w *DuckDBWriter) Close() error {
	var closeErrors []error

	if w.stmt != nil {
		if err := w.stmt.Close(); err != nil {
			closeErrors = append(closeErrors, fmt.Errorf("failed to close statement: %w", err))
		}

		w.stmt = nil
	}

	// If transaction is still active (e.g., Finalize wasn't called or failed), rollback
	if w.tx != nil {
		if err := w.tx.Rollback(); err != nil {
			w.logger.Warn("Failed to rollback transaction during close", zap.Error(err))
		}

		w.tx = nil
	}

	if w.db != nil {
		if err := w.db.Close(); err != nil {
			closeErrors = append(closeErrors, fmt.Errorf("failed to close db connection: %w", err))
		}

		w.db = nil
	}

	if len(closeErrors) > 0 {
		errMsg := "errors occurred during close:"
		for _, e := range closeErrors {
			errMsg += fmt.Sprintf("\n- %v", e)
		}

		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

// GetOutputPath returns the configured output file path.
func (w *DuckDBWriter) GetOutputPath() string {
	return w.outputPath
}
