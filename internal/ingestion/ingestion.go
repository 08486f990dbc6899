package ingestion

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/guttosm/stockpulse/internal/domain/models"
	"github.com/guttosm/stockpulse/internal/logger"
	"github.com/guttosm/stockpulse/internal/normalize"
	"github.com/guttosm/stockpulse/internal/storage"
)

const (
	fileExt          = ".csv"
	defaultBatchSize = 5000
	maxParallel      = 8
)

// repoCtor is an indirection for creating the repository; tests can override this.
var repoCtor = func(db *sql.DB) storage.BarsRepository {
	return storage.NewBarsRepository(db)
}

// ProcessDirectory loads every *.csv file in dir into the daily bars warehouse.
//
// Behavior:
//   - Files already recorded in ingestion_log are skipped unless force is set.
//   - Each file is parsed, normalized per ticker, and replaces the stored bars in the
//     date span it covers, so a reload never duplicates rows.
//   - Files run concurrently, bounded by parallel (clamped to 1..8; 0 means min(8, NumCPU)).
//   - The first failing file cancels the rest and its error is returned.
func ProcessDirectory(ctx context.Context, dir string, db *sql.DB, parallel int, force bool) error {
	repo := repoCtor(db)
	lg := logger.Component("ingestion")

	files, err := listInputFiles(dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no %s files in %s", fileExt, dir)
	}

	limit := maxParallel
	if parallel > 0 {
		if parallel < limit {
			limit = parallel
		}
	} else if c := runtime.NumCPU(); c < limit {
		limit = c
	}

	lg.Info().Int("files", len(files)).Str("dir", dir).Int("max_parallel", limit).Msg("ingestion start")

	// errgroup will cancel siblings on first error.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, file := range files {
		idx := i
		f := file

		g.Go(func() error {
			start := time.Now()
			base := filepath.Base(f)
			lg.Info().Int("idx", idx+1).Int("total", len(files)).Str("file", base).Msg("file start")

			exists, err := repo.HasIngestion(gctx, base)
			if err != nil {
				lg.Error().Str("file", base).Err(err).Msg("check ingestion log failed")
				return fmt.Errorf("file %s: check ingestion log: %w", f, err)
			}
			if exists && !force {
				lg.Info().Int("idx", idx+1).Int("total", len(files)).Str("file", base).Bool("skipped", true).Msg("already ingested")
				return nil
			}

			symbols, total, err := loadFile(gctx, f, repo, defaultBatchSize)
			if err != nil {
				lg.Error().Str("file", base).Dur("elapsed", time.Since(start)).Err(err).Msg("file failed")
				return fmt.Errorf("file %s: %w", f, err)
			}
			if err := repo.UpsertIngestionLog(gctx, base, strings.Join(symbols, ","), total); err != nil {
				lg.Error().Str("file", base).Err(err).Msg("update ingestion log failed")
				return fmt.Errorf("file %s: upsert ingestion log: %w", f, err)
			}
			lg.Info().Int("idx", idx+1).Int("total", len(files)).Str("file", base).Strs("symbols", symbols).
				Int("rows", total).Dur("elapsed", time.Since(start)).Bool("force", force).Msg("file done")
			return nil
		})
	}

	return g.Wait()
}

// loadFile parses path and writes each ticker's bars in batches.
func loadFile(ctx context.Context, path string, repo storage.BarsRepository, batch int) ([]string, int, error) {
	series, err := parseFile(ctx, path)
	if err != nil {
		return nil, 0, err
	}

	var symbols []string
	total := 0
	for _, s := range series {
		bars := normalize.Normalize(s.Rows)
		if len(bars) == 0 {
			continue
		}
		if _, err := repo.DeleteBarsInRange(ctx, s.Symbol, bars[0].Date, bars[len(bars)-1].Date); err != nil {
			return nil, 0, fmt.Errorf("delete existing %s: %w", s.Symbol, err)
		}
		for _, chunk := range chunks(bars, batch) {
			if err := repo.InsertBarsBatch(ctx, s.Symbol, chunk); err != nil {
				return nil, 0, fmt.Errorf("insert %s batch: %w", s.Symbol, err)
			}
		}
		symbols = append(symbols, s.Symbol)
		total += len(bars)
	}
	return symbols, total, nil
}

func listInputFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), fileExt) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	return files, nil
}

func chunks(bars []models.CanonicalBar, size int) [][]models.CanonicalBar {
	if size <= 0 {
		size = len(bars)
	}
	var out [][]models.CanonicalBar
	for len(bars) > size {
		out = append(out, bars[:size])
		bars = bars[size:]
	}
	if len(bars) > 0 {
		out = append(out, bars)
	}
	return out
}
