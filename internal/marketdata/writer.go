package marketdata

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/argo-evolution/internal/types"
)

// SeriesWriter streams price points into a file.
type SeriesWriter interface {
	// Initialize prepares the writer.
	Initialize() error
	// Write appends one point.
	Write(point types.PricePoint) error
	// Finalize flushes the points and returns the output path.
	Finalize() (string, error)
	// Close releases the writer. It is safe to call after Finalize.
	Close() error
}

// ParquetWriter stages points in an in-memory DuckDB table and exports
// them to a Parquet file on Finalize.
type ParquetWriter struct {
	db         *sql.DB
	tx         *sql.Tx
	stmt       *sql.Stmt
	series     string
	outputPath string
}

// NewParquetWriter creates a writer for the series called name.
func NewParquetWriter(outputPath, name string) SeriesWriter {
	return &ParquetWriter{
		db:         nil,
		tx:         nil,
		stmt:       nil,
		series:     name,
		outputPath: outputPath,
	}
}

// Initialize implements SeriesWriter.
func (w *ParquetWriter) Initialize() (err error) {
	w.db, err = sql.Open("duckdb", ":memory:")
	if err != nil {
		return fmt.Errorf("failed to open DuckDB connection: %w", err)
	}

	_, err = w.db.Exec(`
		CREATE TABLE IF NOT EXISTS price_series (
			time TIMESTAMP,
			series TEXT,
			price DOUBLE
		)
	`)
	if err != nil {
		w.db.Close()

		return fmt.Errorf("failed to create table: %w", err)
	}

	w.tx, err = w.db.Begin()
	if err != nil {
		w.db.Close()

		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	w.stmt, err = w.tx.Prepare(`INSERT INTO price_series (time, series, price) VALUES (?, ?, ?)`)
	if err != nil {
		w.tx.Rollback()
		w.db.Close()

		return fmt.Errorf("failed to prepare statement: %w", err)
	}

	return nil
}

// Write implements SeriesWriter.
func (w *ParquetWriter) Write(point types.PricePoint) error {
	if w.stmt == nil {
		return fmt.Errorf("writer not initialized or statement is nil")
	}

	if _, err := w.stmt.Exec(point.Time, w.series, point.Price); err != nil {
		return fmt.Errorf("failed to insert point: %w", err)
	}

	return nil
}

// Finalize implements SeriesWriter.
func (w *ParquetWriter) Finalize() (string, error) {
	if w.tx == nil {
		return "", fmt.Errorf("writer not initialized or transaction is nil")
	}

	if err := w.stmt.Close(); err != nil {
		return "", fmt.Errorf("failed to close statement: %w", err)
	}

	w.stmt = nil

	if err := w.tx.Commit(); err != nil {
		w.tx.Rollback()

		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}

	w.tx = nil

	if err := os.MkdirAll(filepath.Dir(w.outputPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	escaped := strings.ReplaceAll(w.outputPath, "'", "''")

	_, err := w.db.Exec(fmt.Sprintf(`COPY (SELECT * FROM price_series ORDER BY time) TO '%s' (FORMAT PARQUET)`, escaped))
	if err != nil {
		return "", fmt.Errorf("failed to export to Parquet: %w", err)
	}

	return w.outputPath, nil
}

// Close implements SeriesWriter.
func (w *ParquetWriter) Close() error {
	var closeErrors []string

	if w.stmt != nil {
		if err := w.stmt.Close(); err != nil {
			closeErrors = append(closeErrors, fmt.Sprintf("failed to close statement: %v", err))
		}

		w.stmt = nil
	}

	if w.tx != nil {
		if err := w.tx.Rollback(); err != nil {
			closeErrors = append(closeErrors, fmt.Sprintf("failed to rollback transaction: %v", err))
		}

		w.tx = nil
	}

	if w.db != nil {
		if err := w.db.Close(); err != nil {
			closeErrors = append(closeErrors, fmt.Sprintf("failed to close db connection: %v", err))
		}

		w.db = nil
	}

	if len(closeErrors) > 0 {
		return fmt.Errorf("errors occurred during close: %s", strings.Join(closeErrors, "; "))
	}

	return nil
}

// WriteSeries writes every point of series with w and returns the output path.
func WriteSeries(w SeriesWriter, series types.PriceSeries) (string, error) {
	if err := w.Initialize(); err != nil {
		return "", err
	}
	defer w.Close()

	for _, point := range series.Points {
		if err := w.Write(point); err != nil {
			return "", err
		}
	}

	return w.Finalize()
}
