package ingestion

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/guttosm/stockpulse/internal/domain/models"
	"github.com/guttosm/stockpulse/internal/storage"
)

// fakeRepoIngestion implements storage.BarsRepository for ProcessDirectory tests.
type fakeRepoIngestion struct {
	mu        sync.Mutex
	has       map[string]bool
	inserted  map[string]int
	batches   int
	deleted   []string
	logged    map[string]string
	hasErr    error
	insertErr error
	upsertErr error
}

func newFakeRepo() *fakeRepoIngestion {
	return &fakeRepoIngestion{has: map[string]bool{}, inserted: map[string]int{}, logged: map[string]string{}}
}

func (f *fakeRepoIngestion) FetchDailyBars(context.Context, string, time.Time, time.Time) ([]models.RawBar, error) {
	return nil, nil
}
func (f *fakeRepoIngestion) InsertBarsBatch(_ context.Context, symbol string, bars []models.CanonicalBar) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted[symbol] += len(bars)
	f.batches++
	return nil
}
func (f *fakeRepoIngestion) DeleteBarsInRange(_ context.Context, symbol string, _, _ time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, symbol)
	return 0, nil
}
func (f *fakeRepoIngestion) HasIngestion(_ context.Context, filename string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.has[filename], f.hasErr
}
func (f *fakeRepoIngestion) UpsertIngestionLog(_ context.Context, filename, symbol string, _ int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.has[filename] = true
	f.logged[filename] = symbol
	return nil
}
func (f *fakeRepoIngestion) Symbols(context.Context) ([]string, error) { return nil, nil }
func (f *fakeRepoIngestion) Ping(context.Context) error                { return nil }

// dummyDB satisfies *sql.DB usage but is nil internally; we never call db methods directly in tests due to repoCtor override.
func dummyDB() *sql.DB { return (*sql.DB)(nil) }

func useRepo(t *testing.T, r storage.BarsRepository) {
	t.Helper()
	old := repoCtor
	repoCtor = func(_ *sql.DB) storage.BarsRepository { return r }
	t.Cleanup(func() { repoCtor = old })
}

func TestProcessDirectory_LoadsAllFiles(t *testing.T) {
	dir := t.TempDir()
	writeTempFile(t, dir, "aapl.csv", flatCSV)
	writeTempFile(t, dir, "zbao_multi.csv", multiCSV)
	writeTempFile(t, dir, "notes.txt", "ignored")

	fr := newFakeRepo()
	useRepo(t, fr)

	if err := ProcessDirectory(context.Background(), dir, dummyDB(), 2, false); err != nil {
		t.Fatalf("ProcessDirectory err: %v", err)
	}
	if fr.inserted["AAPL"] != 2 || fr.inserted["ZBAO"] != 2 {
		t.Fatalf("unexpected inserts %v", fr.inserted)
	}
	if fr.logged["aapl.csv"] != "AAPL" || fr.logged["zbao_multi.csv"] != "ZBAO" {
		t.Fatalf("unexpected ingestion log %v", fr.logged)
	}
	if len(fr.deleted) != 2 {
		t.Fatalf("expected span replacement per series, got %v", fr.deleted)
	}
}

func TestProcessDirectory_SkipIfAlreadyIngested(t *testing.T) {
	dir := t.TempDir()
	writeTempFile(t, dir, "zbao.csv", flatCSV)

	fr := newFakeRepo()
	fr.has["zbao.csv"] = true
	useRepo(t, fr)

	if err := ProcessDirectory(context.Background(), dir, dummyDB(), 0, false); err != nil {
		t.Fatalf("ProcessDirectory err: %v", err)
	}
	if len(fr.inserted) != 0 {
		t.Fatalf("expected no inserts when already ingested, got %v", fr.inserted)
	}
}

func TestProcessDirectory_ForceReprocess(t *testing.T) {
	dir := t.TempDir()
	writeTempFile(t, dir, "zbao.csv", flatCSV)

	fr := newFakeRepo()
	fr.has["zbao.csv"] = true
	useRepo(t, fr)

	if err := ProcessDirectory(context.Background(), dir, dummyDB(), 1, true); err != nil {
		t.Fatalf("ProcessDirectory err: %v", err)
	}
	if len(fr.deleted) != 1 || fr.deleted[0] != "ZBAO" {
		t.Fatalf("expected delete for ZBAO, got %v", fr.deleted)
	}
	if fr.inserted["ZBAO"] != 2 {
		t.Fatalf("expected 2 inserted rows, got %d", fr.inserted["ZBAO"])
	}
}

func TestProcessDirectory_NoFiles(t *testing.T) {
	useRepo(t, newFakeRepo())
	err := ProcessDirectory(context.Background(), t.TempDir(), dummyDB(), 1, false)
	if err == nil || !strings.Contains(err.Error(), "no .csv files") {
		t.Fatalf("expected no files error, got %v", err)
	}
}

func TestProcessDirectory_MissingDir(t *testing.T) {
	useRepo(t, newFakeRepo())
	if err := ProcessDirectory(context.Background(), filepath.Join(t.TempDir(), "nope"), dummyDB(), 1, false); err == nil {
		t.Fatalf("expected error for missing dir")
	}
}

func TestProcessDirectory_Errors(t *testing.T) {
	cases := []struct {
		name    string
		content string
		repo    func() *fakeRepoIngestion
	}{
		{name: "has ingestion", content: flatCSV, repo: func() *fakeRepoIngestion {
			r := newFakeRepo()
			r.hasErr = context.DeadlineExceeded
			return r
		}},
		{name: "upsert log", content: flatCSV, repo: func() *fakeRepoIngestion {
			r := newFakeRepo()
			r.upsertErr = context.Canceled
			return r
		}},
		{name: "insert", content: flatCSV, repo: func() *fakeRepoIngestion {
			r := newFakeRepo()
			r.insertErr = errors.New("copy failed")
			return r
		}},
		{name: "bad file", content: "nonsense\n", repo: newFakeRepo},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			writeTempFile(t, dir, "zbao.csv", tc.content)
			useRepo(t, tc.repo())
			if err := ProcessDirectory(context.Background(), dir, dummyDB(), 1, false); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestChunks(t *testing.T) {
	bars := make([]models.CanonicalBar, 5)
	got := chunks(bars, 2)
	if len(got) != 3 || len(got[0]) != 2 || len(got[2]) != 1 {
		t.Fatalf("unexpected chunking %v", got)
	}
	if len(chunks(nil, 2)) != 0 {
		t.Fatalf("nil input must give no chunks")
	}
}

func TestLoadFile_Batches(t *testing.T) {
	dir := t.TempDir()
	path := writeTempFile(t, dir, "zbao.csv", flatCSV)
	fr := newFakeRepo()

	symbols, total, err := loadFile(context.Background(), path, fr, 1)
	if err != nil {
		t.Fatalf("loadFile: %v", err)
	}
	if total != 2 || fr.batches != 2 || len(symbols) != 1 || symbols[0] != "ZBAO" {
		t.Fatalf("unexpected symbols=%v total=%d batches=%d", symbols, total, fr.batches)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("input must stay in place: %v", err)
	}
}
