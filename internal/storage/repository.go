package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/guregu/null/v6"
	pq "github.com/lib/pq"

	"github.com/guttosm/stockpulse/internal/domain/models"
)

// BarsRepository defines contract for the daily bars warehouse.
type BarsRepository interface {
	FetchDailyBars(ctx context.Context, symbol string, start, end time.Time) ([]models.RawBar, error)
	InsertBarsBatch(ctx context.Context, symbol string, bars []models.CanonicalBar) error
	DeleteBarsInRange(ctx context.Context, symbol string, start, end time.Time) (int64, error)
	HasIngestion(ctx context.Context, filename string) (bool, error)
	UpsertIngestionLog(ctx context.Context, filename, symbol string, rowCount int) error
	Symbols(ctx context.Context) ([]string, error)
	Ping(ctx context.Context) error
}

type barsRepository struct {
	db *sql.DB
}

func NewBarsRepository(db *sql.DB) BarsRepository {
	return &barsRepository{db: db}
}

// FetchDailyBars returns the stored bars for symbol with start <= trade_date <= end,
// ascending. Columns are flat; a NULL price comes back as an invalid null.Float.
func (r *barsRepository) FetchDailyBars(ctx context.Context, symbol string, start, end time.Time) ([]models.RawBar, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT trade_date, open, high, low, close, volume
		FROM daily_bars
		WHERE symbol = $1 AND trade_date BETWEEN $2 AND $3
		ORDER BY trade_date
	`, normalizeSymbol(symbol), models.TruncateDate(start), models.TruncateDate(end))
	if err != nil {
		return nil, fmt.Errorf("query daily bars: %w", err)
	}
	defer rows.Close()

	var out []models.RawBar
	for rows.Next() {
		var (
			day                             time.Time
			open, high, low, closeP, volume null.Float
		)
		if err := rows.Scan(&day, &open, &high, &low, &closeP, &volume); err != nil {
			return nil, fmt.Errorf("scan daily bar: %w", err)
		}
		out = append(out, models.RawBar{
			Date: day,
			Columns: map[models.ColumnKey]any{
				{Field: models.FieldOpen}:   open,
				{Field: models.FieldHigh}:   high,
				{Field: models.FieldLow}:    low,
				{Field: models.FieldClose}:  closeP,
				{Field: models.FieldVolume}: volume,
			},
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily bars: %w", err)
	}
	return out, nil
}

// InsertBarsBatch bulk loads bars for one symbol in a single transaction.
// Fields listed in a bar's Unparsed are stored as NULL.
func (r *barsRepository) InsertBarsBatch(ctx context.Context, symbol string, bars []models.CanonicalBar) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	// Small optimization for bulk load
	if _, err := tx.ExecContext(ctx, `SET LOCAL synchronous_commit = OFF`); err != nil {
		_ = tx.Rollback()
		return err
	}

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn(
		"daily_bars",
		"symbol",
		"trade_date",
		"open",
		"high",
		"low",
		"close",
		"volume",
	))
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	symbol = normalizeSymbol(symbol)
	for _, b := range bars {
		if _, err := stmt.ExecContext(ctx,
			symbol,
			models.TruncateDate(b.Date),
			storedValue(b, models.FieldOpen, b.Open),
			storedValue(b, models.FieldHigh, b.High),
			storedValue(b, models.FieldLow, b.Low),
			storedValue(b, models.FieldClose, b.Close),
			storedValue(b, models.FieldVolume, b.Volume),
		); err != nil {
			_ = stmt.Close()
			_ = tx.Rollback()
			return err
		}
	}

	if _, err := stmt.ExecContext(ctx); err != nil {
		_ = stmt.Close()
		_ = tx.Rollback()
		return err
	}
	if err := stmt.Close(); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

// DeleteBarsInRange removes symbol's bars with start <= trade_date <= end.
func (r *barsRepository) DeleteBarsInRange(ctx context.Context, symbol string, start, end time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM daily_bars WHERE symbol = $1 AND trade_date BETWEEN $2 AND $3`,
		normalizeSymbol(symbol), models.TruncateDate(start), models.TruncateDate(end))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// HasIngestion reports whether a file was already loaded.
func (r *barsRepository) HasIngestion(ctx context.Context, filename string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM ingestion_log WHERE filename = $1)`, filename).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// UpsertIngestionLog records (or updates) an ingestion entry for a file.
func (r *barsRepository) UpsertIngestionLog(ctx context.Context, filename, symbol string, rowCount int) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO ingestion_log (filename, symbol, row_count)
		VALUES ($1, $2, $3)
		ON CONFLICT (filename)
		DO UPDATE SET symbol = EXCLUDED.symbol,
					  row_count = EXCLUDED.row_count,
					  ingested_at = NOW()
	`, filename, normalizeSymbol(symbol), rowCount)
	return err
}

// Symbols lists the distinct symbols present in the warehouse.
func (r *barsRepository) Symbols(ctx context.Context) ([]string, error) {
	var out pq.StringArray
	if err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(array_agg(DISTINCT symbol ORDER BY symbol), '{}') FROM daily_bars`).Scan(&out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *barsRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func storedValue(b models.CanonicalBar, field string, v float64) any {
	for _, f := range b.Unparsed {
		if f == field {
			return nil
		}
	}
	return v
}

func normalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
