package app

import (
	"context"
	"fmt"

	"github.com/guttosm/stockpulse/config"
	"github.com/guttosm/stockpulse/internal/marketdata"
	"github.com/guttosm/stockpulse/internal/service"
	"github.com/guttosm/stockpulse/internal/shares"
	"github.com/guttosm/stockpulse/internal/storage"
)

// QueryStack is a ready query service together with what the outer layers need
// to know about it.
type QueryStack struct {
	Service    service.QueryService
	DataSource string                      // "yahoo" or "postgres"
	Ping       func(context.Context) error // nil when prices are not read from the warehouse
	Close      func()
}

// NewQueryStack wires the price source selected by cfg.Market.PriceSource, the
// Yahoo profile source and the share count resolver into a QueryService.
//
// The warehouse connection is only opened for PRICE_SOURCE=postgres.
func NewQueryStack(cfg config.Config) (*QueryStack, error) {
	market := marketdata.NewClient(
		marketdata.WithBaseURL(cfg.Market.BaseURL),
		marketdata.WithCookieURL(cfg.Market.CookieURL),
		marketdata.WithUserAgent(cfg.Market.UserAgent),
		marketdata.WithTimeout(cfg.Market.Timeout),
		marketdata.WithRateLimit(cfg.Market.RateLimit),
	)

	stack := &QueryStack{DataSource: config.PriceSourceYahoo, Close: func() {}}
	var prices service.PriceSource = market

	switch cfg.Market.PriceSource {
	case config.PriceSourceYahoo, "":
	case config.PriceSourcePostgres:
		// indirection for unit testing
		db, err := postgresOpener(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize postgres: %w", err)
		}
		repo := storage.NewBarsRepository(db)
		prices = repo
		stack.DataSource = config.PriceSourcePostgres
		stack.Ping = repo.Ping
		stack.Close = func() { _ = db.Close() }
	default:
		return nil, fmt.Errorf("unknown price source %q", cfg.Market.PriceSource)
	}

	resolver := shares.NewResolver(market,
		shares.WithCache(shares.NewCache(cfg.Shares.CacheTTL, nil)),
		shares.WithLookupTimeout(cfg.Shares.LookupTimeout),
	)
	stack.Service = service.NewQueryService(prices, resolver, service.Options{
		LookbackTradingDays: cfg.Query.LookbackTradingDays,
		LookbackSlackDays:   cfg.Query.LookbackSlackDays,
		ForwardBufferDays:   cfg.Query.ForwardBufferDays,
	})
	return stack, nil
}
