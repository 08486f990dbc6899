package app

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/guttosm/stockpulse/config"
)

var warehouseCfg = config.Config{Postgres: config.PostgresConfig{User: "u", Password: "p", Host: "h", Port: 5432, DBName: "d", SSLMode: "disable"}}

func TestInitPostgres_OpenError(t *testing.T) {
	old := sqlOpener
	sqlOpener = func(driverName, dataSourceName string) (*sql.DB, error) {
		return nil, errors.New("open failed")
	}
	t.Cleanup(func() { sqlOpener = old })

	if _, err := InitPostgres(warehouseCfg); err == nil {
		t.Fatalf("expected error from InitPostgres when open fails")
	}
}

func TestInitPostgres_PingError(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	mock.ExpectPing().WillReturnError(errors.New("ping failed"))
	mock.ExpectClose()

	old := sqlOpener
	sqlOpener = func(driverName, dataSourceName string) (*sql.DB, error) { return db, nil }
	t.Cleanup(func() { sqlOpener = old })

	if _, err := InitPostgres(warehouseCfg); err == nil {
		t.Fatalf("expected ping error from InitPostgres")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("failed ping should close the pool: %v", err)
	}
}

func TestInitPostgres_UsesConfiguredDSN(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	mock.ExpectPing()

	var gotDriver, gotDSN string
	old := sqlOpener
	sqlOpener = func(driverName, dataSourceName string) (*sql.DB, error) {
		gotDriver, gotDSN = driverName, dataSourceName
		return db, nil
	}
	t.Cleanup(func() {
		sqlOpener = old
		_ = db.Close()
	})

	if _, err := InitPostgres(warehouseCfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotDriver != "postgres" || gotDSN != "postgres://u:p@h:5432/d?sslmode=disable" {
		t.Fatalf("unexpected open(%q, %q)", gotDriver, gotDSN)
	}
}
