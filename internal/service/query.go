package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/guttosm/stockpulse/internal/calc"
	"github.com/guttosm/stockpulse/internal/calendar"
	"github.com/guttosm/stockpulse/internal/domain/models"
	"github.com/guttosm/stockpulse/internal/logger"
	"github.com/guttosm/stockpulse/internal/normalize"
	"github.com/guttosm/stockpulse/internal/shares"
)

// ErrInvalidRequest wraps every validation failure.
var ErrInvalidRequest = errors.New("invalid request")

// PriceSource returns raw daily rows for symbol with start <= date <= end.
type PriceSource interface {
	FetchDailyBars(ctx context.Context, symbol string, start, end time.Time) ([]models.RawBar, error)
}

// ShareResolver produces the share count estimate for a symbol.
type ShareResolver interface {
	Resolve(ctx context.Context, in shares.Input) models.ShareCountEstimate
}

// QueryService defines the business logic behind quote and report requests.
type QueryService interface {
	Query(ctx context.Context, req models.QueryRequest) models.QueryResult
}

// Options sizes the fetch windows around a request.
type Options struct {
	// LookbackTradingDays is how many trading days before the requested start are fetched
	// so the first requested day has a previous close.
	LookbackTradingDays int
	// LookbackSlackDays widens the lookback by calendar days to cover unlisted closures.
	LookbackSlackDays int
	// ForwardBufferDays is the single-day window, [date, date+ForwardBufferDays).
	ForwardBufferDays int
}

// DefaultOptions returns the production window sizes.
func DefaultOptions() Options {
	return Options{LookbackTradingDays: 3, LookbackSlackDays: 4, ForwardBufferDays: 5}
}

type queryService struct {
	prices   PriceSource
	resolver ShareResolver
	opts     Options
}

func NewQueryService(prices PriceSource, resolver ShareResolver, opts Options) QueryService {
	def := DefaultOptions()
	if opts.LookbackTradingDays <= 0 {
		opts.LookbackTradingDays = def.LookbackTradingDays
	}
	if opts.LookbackSlackDays < 0 {
		opts.LookbackSlackDays = def.LookbackSlackDays
	}
	if opts.ForwardBufferDays <= 0 {
		opts.ForwardBufferDays = def.ForwardBufferDays
	}
	return &queryService{prices: prices, resolver: resolver, opts: opts}
}

// Query runs one request through
//
//	received → fetching_prices → (empty | fetching_shares → computing → done) | failed
//
// It never panics; a panic in a dependency becomes a data_source_error failure.
func (s *queryService) Query(ctx context.Context, req models.QueryRequest) (res models.QueryResult) {
	req.Symbol = strings.ToUpper(strings.TrimSpace(req.Symbol))
	lg := logger.Component("query").With().Str("symbol", req.Symbol).Str("mode", string(req.Mode)).Logger()
	state := func(name string) { lg.Debug().Str("state", name).Msg("query state") }

	defer func() {
		if r := recover(); r != nil {
			lg.Error().Interface("panic", r).Msg("query panicked")
			res = models.Failure(req, models.ErrDataSource, fmt.Errorf("internal failure: %v", r))
		}
	}()

	state("received")
	if err := validate(req); err != nil {
		state("failed")
		return models.Failure(req, models.ErrInvalidRequest, err)
	}

	from, to := s.window(req)
	fetchStart := calendar.AddTradingDays(from, -s.opts.LookbackTradingDays).AddDate(0, 0, -s.opts.LookbackSlackDays)

	state("fetching_prices")
	raw, err := s.prices.FetchDailyBars(ctx, req.Symbol, fetchStart, to)
	if err != nil {
		lg.Warn().Err(err).Msg("price fetch failed")
		state("failed")
		return models.Failure(req, models.ErrDataSource, fmt.Errorf("fetch prices: %w", err))
	}

	bars := normalize.Normalize(raw)
	if !hasBarInWindow(bars, from, to) {
		state("empty")
		return models.Empty(req)
	}

	state("fetching_shares")
	est := s.resolver.Resolve(ctx, shares.Input{Symbol: req.Symbol, ManualTotal: req.ManualTotal, ManualFloat: req.ManualFloat})

	state("computing")
	selected := calc.Between(calc.Enrich(bars, est), from, to)
	if req.Mode == models.ModeSingleDay {
		selected = selected[:1]
	}

	state("done")
	lg.Info().Int("bars", len(selected)).Str("shares_source", string(est.Source)).Msg("query done")
	return models.Success(req, selected, est)
}

// window returns the inclusive span of dates the answer is taken from.
func (s *queryService) window(req models.QueryRequest) (time.Time, time.Time) {
	if req.Mode == models.ModeSingleDay {
		d := models.TruncateDate(req.Date)
		return d, d.AddDate(0, 0, s.opts.ForwardBufferDays-1)
	}
	return models.TruncateDate(req.Start), models.TruncateDate(req.End)
}

// hasBarInWindow reports whether an enrichable bar (one with a predecessor) falls in [from, to].
func hasBarInWindow(bars []models.CanonicalBar, from, to time.Time) bool {
	for i := 1; i < len(bars); i++ {
		if !bars[i].Date.Before(from) && !bars[i].Date.After(to) {
			return true
		}
	}
	return false
}

func validate(req models.QueryRequest) error {
	if req.Symbol == "" {
		return fmt.Errorf("%w: symbol is required", ErrInvalidRequest)
	}
	switch req.Mode {
	case models.ModeSingleDay:
		if req.Date.IsZero() {
			return fmt.Errorf("%w: date is required", ErrInvalidRequest)
		}
	case models.ModeRangeReport:
		if req.Start.IsZero() || req.End.IsZero() {
			return fmt.Errorf("%w: start and end are required", ErrInvalidRequest)
		}
		if models.TruncateDate(req.Start).After(models.TruncateDate(req.End)) {
			return fmt.Errorf("%w: start %s is after end %s", ErrInvalidRequest,
				req.Start.Format(models.DateLayout), req.End.Format(models.DateLayout))
		}
	default:
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidRequest, req.Mode)
	}
	if req.ManualTotal != nil && *req.ManualTotal <= 0 {
		return fmt.Errorf("%w: total_shares must be positive", ErrInvalidRequest)
	}
	if req.ManualFloat != nil && *req.ManualFloat <= 0 {
		return fmt.Errorf("%w: float_shares must be positive", ErrInvalidRequest)
	}
	return nil
}

// Compile-time check that the standard resolver fits.
var _ ShareResolver = (*shares.Resolver)(nil)
