//go:build integration
// +build integration

package ingestion

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	_ "github.com/lib/pq"
	goose "github.com/pressly/goose/v3"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startPostgres spins up a Postgres container and returns a DSN and terminate func.
func startPostgres(t *testing.T) (dsn string, terminate func()) {
	t.Helper()
	ctx := context.Background()

	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       "stockpulse",
			"POSTGRES_USER":     "postgres",
			"POSTGRES_PASSWORD": "postgres",
		},
		WaitingFor: wait.ForSQL("5432/tcp", "postgres", func(host string, port nat.Port) string {
			return fmt.Sprintf("host=%s port=%s user=postgres password=postgres dbname=stockpulse sslmode=disable", host, port.Port())
		}).WithStartupTimeout(60 * time.Second),
	}

	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Fatalf("container start: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}

	dsn = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", "postgres", "postgres", host, port.Port(), "stockpulse")
	terminate = func() { _ = container.Terminate(context.Background()) }
	return dsn, terminate
}

func openDB(t *testing.T, dsn string) *sql.DB {
	t.Helper()
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.Ping(); err != nil {
		t.Fatalf("ping: %v", err)
	}
	return db
}

func runMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	if err := goose.SetDialect("postgres"); err != nil {
		t.Fatalf("dialect: %v", err)
	}
	// migrations path relative to this test file (internal/ingestion → ../../db/migrations)
	path := filepath.Join("..", "..", "db", "migrations")
	if err := goose.Up(db, path); err != nil {
		t.Fatalf("migrate up: %v", err)
	}
}

func TestIngestion_EndToEnd_ProcessDirectory(t *testing.T) {
	dsn, terminate := startPostgres(t)
	defer terminate()
	db := openDB(t, dsn)
	defer db.Close()
	runMigrations(t, db)

	tdir := t.TempDir()
	var b strings.Builder
	b.WriteString("Price,Close,High,Low,Open,Volume\nTicker,TEST,TEST,TEST,TEST,TEST\nDate,,,,,\n")
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	const wrote = 3
	for i := 0; i < wrote; i++ {
		fmt.Fprintf(&b, "%s,%.2f,%.2f,%.2f,%.2f,%d\n", day.AddDate(0, 0, i).Format("2006-01-02"),
			10.0+float64(i), 11.0+float64(i), 9.0+float64(i), 10.0+float64(i), 100+i)
	}
	writeTempFile(t, tdir, "test.csv", b.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := ProcessDirectory(ctx, tdir, db, 2, false); err != nil {
		t.Fatalf("ProcessDirectory: %v", err)
	}
	// A forced reload replaces the span instead of duplicating it.
	if err := ProcessDirectory(ctx, tdir, db, 2, true); err != nil {
		t.Fatalf("ProcessDirectory force: %v", err)
	}

	var cnt int
	if err := db.QueryRow("SELECT COUNT(*) FROM daily_bars WHERE symbol='TEST'").Scan(&cnt); err != nil {
		t.Fatalf("count bars: %v", err)
	}
	if cnt != wrote {
		t.Fatalf("expected %d bars, got %d", wrote, cnt)
	}

	var rows int
	if err := db.QueryRow("SELECT row_count FROM ingestion_log WHERE filename='test.csv'").Scan(&rows); err != nil {
		t.Fatalf("check ingestion_log: %v", err)
	}
	if rows != wrote {
		t.Fatalf("expected ingestion_log row_count %d, got %d", wrote, rows)
	}
}
