package main

//
//  @title           stockpulse API
//  @version         1.0
//  @description     Daily OHLCV quotes enriched with change, turnover and market capitalization.
//  @termsOfService  https://github.com/guttosm/stockpulse
//  @contact.name    API Support
//  @contact.url     https://github.com/guttosm/stockpulse
//  @contact.email   support@example.com
//  @license.name    MIT
//  @license.url     https://opensource.org/licenses/MIT
//  @host            localhost:8080
//  @BasePath        /
//  @schemes         http
//
//  @tag.name        quote
//  @tag.description Single trading day lookups
//
//  @tag.name        report
//  @tag.description Date range reports and exports
//
//  @tag.name        health
//  @tag.description Liveness and readiness probes

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/guttosm/stockpulse/config"
	_ "github.com/guttosm/stockpulse/docs" // swagger docs
	"github.com/guttosm/stockpulse/internal/app"
	"github.com/guttosm/stockpulse/internal/domain/dto"
	"github.com/guttosm/stockpulse/internal/domain/models"
	"github.com/guttosm/stockpulse/internal/ingestion"
	"github.com/guttosm/stockpulse/internal/logger"
	"github.com/guttosm/stockpulse/internal/service"
)

// startServer initializes and starts the HTTP server in a separate goroutine.
//
// Parameters:
//   - router (http.Handler): The HTTP router (Gin Engine) configured with all routes.
//   - port (string): The port where the server will listen for incoming requests.
//
// Returns:
//   - *http.Server: The initialized HTTP server instance.
func startServer(router http.Handler, port string) *http.Server {
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.L().Info().Str("port", port).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Fatal().Err(err).Msg("server failed to start")
		}
	}()

	return server
}

// gracefulShutdown gracefully terminates the HTTP server and cleans up resources
// when an OS interrupt signal (SIGINT, SIGTERM) is received.
func gracefulShutdown(ctx context.Context, server *http.Server, cleanup func()) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	logger.L().Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.L().Fatal().Err(err).Msg("server forced to shutdown")
	}

	cleanup()
	logger.L().Info().Msg("server exited gracefully")
}

// queryFlags are the command line inputs of --mode query.
type queryFlags struct {
	symbol      string
	date        string
	start       string
	end         string
	totalShares int64
	floatShares int64
}

// buildRequest turns the flags into a query request. With --start or --end it
// is a range report, otherwise a single-day lookup on --date (default yesterday).
func (f queryFlags) buildRequest(now time.Time) (models.QueryRequest, error) {
	req := models.QueryRequest{Symbol: strings.ToUpper(strings.TrimSpace(f.symbol))}
	if req.Symbol == "" {
		return req, errors.New("--symbol is required")
	}
	if f.totalShares != 0 {
		req.ManualTotal = &f.totalShares
	}
	if f.floatShares != 0 {
		req.ManualFloat = &f.floatShares
	}

	parse := func(name, v string) (time.Time, error) {
		if v == "" {
			return time.Time{}, nil
		}
		t, err := time.Parse(models.DateLayout, v)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid --%s %q, expected YYYY-MM-DD", name, v)
		}
		return t, nil
	}

	if f.start != "" || f.end != "" {
		start, err := parse("start", f.start)
		if err != nil {
			return req, err
		}
		end, err := parse("end", f.end)
		if err != nil {
			return req, err
		}
		req.Mode = models.ModeRangeReport
		req.Start, req.End = service.DefaultRange(now, start, end)
		return req, nil
	}

	date, err := parse("date", f.date)
	if err != nil {
		return req, err
	}
	if date.IsZero() {
		date = service.DefaultDate(now)
	}
	req.Mode = models.ModeSingleDay
	req.Date = date
	return req, nil
}

// runQuery executes one query and prints the API-shaped JSON to w.
// Non-success results are printed as an error envelope and returned as an error.
func runQuery(ctx context.Context, svc service.QueryService, dataSource string, f queryFlags, now time.Time, w io.Writer) error {
	req, err := f.buildRequest(now)
	if err != nil {
		return err
	}

	res := svc.Query(ctx, req)

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if res.Kind != models.ResultSuccess {
		resp := dto.NewErrorResponse(string(res.Kind), nil)
		resp.ErrorDetails = res.Message
		resp.Kind = string(res.ErrorKind)
		if err := enc.Encode(resp); err != nil {
			return err
		}
		return resp
	}

	if req.Mode == models.ModeSingleDay {
		return enc.Encode(dto.NewQuoteResponse(res, req.Date.Format(models.DateLayout), dataSource))
	}
	return enc.Encode(dto.NewReportResponse(res, req.Start.Format(models.DateLayout), req.End.Format(models.DateLayout), dataSource))
}

// main is the entry point of the stockpulse application.
//
// Modes (selected via --mode flag):
//   - query:   Runs one quote (--date) or report (--start/--end) and prints JSON to stdout.
//   - api:     Starts the REST API.
//   - ingest:  Loads yfinance-style CSV files from --dir into the price warehouse.
//   - migrate: Applies the warehouse migrations from --migrations.
func main() {
	ctx := context.Background()

	// Load configuration from environment or .env file
	config.LoadConfig()

	// Initialize JSON logger (stderr, so query output stays clean)
	logger.Init()

	mode := flag.String("mode", "query", "Mode: query, api, ingest or migrate")
	var qf queryFlags
	flag.StringVar(&qf.symbol, "symbol", "", "Ticker symbol (query mode)")
	flag.StringVar(&qf.date, "date", "", "Single day in YYYY-MM-DD (query mode; default yesterday)")
	flag.StringVar(&qf.start, "start", "", "Range start in YYYY-MM-DD (query mode)")
	flag.StringVar(&qf.end, "end", "", "Range end in YYYY-MM-DD, inclusive (query mode)")
	flag.Int64Var(&qf.totalShares, "total-shares", 0, "Manual total shares override (query mode)")
	flag.Int64Var(&qf.floatShares, "float-shares", 0, "Manual float shares override (query mode)")
	dir := flag.String("dir", "./data/input", "Directory with .csv price files (ingest mode)")
	parallel := flag.Int("parallel", 0, "How many files to process concurrently (0=auto up to CPU, max 8)")
	force := flag.Bool("force", false, "Reload files even if already ingested")
	migrations := flag.String("migrations", "./db/migrations", "Goose migrations directory (migrate mode)")
	port := flag.String("port", config.AppConfig.Server.Port, "Port for API mode")
	flag.Parse()

	switch *mode {
	case "query":
		stack, err := app.NewQueryStack(config.AppConfig)
		if err != nil {
			logger.L().Fatal().Err(err).Msg("query init error")
		}
		err = runQuery(ctx, stack.Service, stack.DataSource, qf, time.Now(), os.Stdout)
		stack.Close()
		if err != nil {
			logger.L().Error().Err(err).Msg("query failed")
			os.Exit(1)
		}

	case "api":
		logger.L().Info().Str("price_source", config.AppConfig.Market.PriceSource).Msg("starting API server")

		router, cleanup, err := app.InitializeApp()
		if err != nil {
			logger.L().Fatal().Err(err).Msg("app init error")
		}

		server := startServer(router, *port)
		gracefulShutdown(ctx, server, cleanup)

	case "ingest", "migrate":
		if missing := config.PostgresProblems(config.AppConfig.Postgres); len(missing) > 0 {
			logger.L().Fatal().Strs("missing", missing).Msg("warehouse not configured")
		}
		db, err := app.InitPostgres(config.AppConfig)
		if err != nil {
			logger.L().Fatal().Err(err).Msg("db connect error")
		}
		defer func() { _ = db.Close() }()

		if *mode == "migrate" {
			if err := app.Migrate(ctx, db, *migrations); err != nil {
				logger.L().Fatal().Err(err).Msg("migration failed")
			}
			logger.L().Info().Msg("migrations applied")
			return
		}

		logger.L().Info().Str("dir", *dir).Msg("running ingestion")
		if err := ingestion.ProcessDirectory(ctx, *dir, db, *parallel, *force); err != nil {
			logger.L().Fatal().Err(err).Msg("ingestion failed")
		}
		logger.L().Info().Msg("ingestion completed successfully")

	default:
		logger.L().Fatal().Str("mode", *mode).Msg("unknown mode")
	}
}
