// Package shares resolves total and float share counts through an ordered fallback chain.
package shares

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/guttosm/stockpulse/internal/domain/models"
	"github.com/guttosm/stockpulse/internal/logger"
)

// ProfileSource looks up company profile figures for a symbol.
type ProfileSource interface {
	LookupProfile(ctx context.Context, symbol string) (models.Profile, error)
}

// Input is what a resolution needs: the symbol and any caller-supplied figures.
type Input struct {
	Symbol      string
	ManualTotal *int64
	ManualFloat *int64
}

// Strategy tries to produce an estimate. ok is false when it has nothing to offer,
// in which case the next strategy in the chain is tried.
type Strategy func(ctx context.Context, in Input) (est models.ShareCountEstimate, ok bool)

// NamedStrategy pairs a strategy with the name used in logs.
type NamedStrategy struct {
	name string
	run  Strategy
}

// Resolver runs the strategies in order; the first one that answers wins.
// If none answers the result is models.Unresolved().
type Resolver struct {
	chain []NamedStrategy
}

// Option configures NewResolver.
type Option func(*config)

type config struct {
	cache   *Cache
	presets map[string]Preset
	timeout time.Duration
}

// WithCache sets the cache for live lookups.
func WithCache(c *Cache) Option {
	return func(cfg *config) { cfg.cache = c }
}

// WithPresets replaces the known-symbol registry.
func WithPresets(p map[string]Preset) Option {
	return func(cfg *config) { cfg.presets = p }
}

// WithLookupTimeout bounds each live lookup. Zero means no extra bound.
func WithLookupTimeout(d time.Duration) Option {
	return func(cfg *config) { cfg.timeout = d }
}

// NewResolver builds the standard chain:
//
//	user_override → live_lookup (cached) → known_symbol_preset → unresolved
func NewResolver(src ProfileSource, opts ...Option) *Resolver {
	cfg := config{presets: KnownSymbols}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.cache == nil {
		cfg.cache = NewCache(DefaultCacheTTL, nil)
	}
	return NewChain(
		Named(string(models.SourceUserOverride), UserOverride),
		Named(string(models.SourceLiveLookup), LiveLookup(src, cfg.cache, cfg.timeout)),
		Named(string(models.SourceKnownSymbolPreset), KnownSymbolPreset(cfg.presets)),
	)
}

// Named labels a strategy for NewChain.
func Named(name string, s Strategy) NamedStrategy {
	return NamedStrategy{name: name, run: s}
}

// NewChain builds a resolver from an explicit strategy order.
func NewChain(strategies ...NamedStrategy) *Resolver {
	return &Resolver{chain: strategies}
}

// Resolve walks the chain. It never fails: an exhausted chain yields models.Unresolved().
func (r *Resolver) Resolve(ctx context.Context, in Input) models.ShareCountEstimate {
	lg := logger.Component("shares")
	in.Symbol = strings.ToUpper(strings.TrimSpace(in.Symbol))

	for _, s := range r.chain {
		est, ok := s.run(ctx, in)
		if ok {
			lg.Debug().Str("symbol", in.Symbol).Str("strategy", s.name).Msg("share count resolved")
			return est
		}
		lg.Debug().Str("symbol", in.Symbol).Str("strategy", s.name).Msg("strategy yielded nothing")
	}
	lg.Info().Str("symbol", in.Symbol).Msg("share count unresolved")
	return models.Unresolved()
}

// UserOverride answers whenever the caller supplied a positive total or float figure.
// Unsupplied figures stay absent.
func UserOverride(_ context.Context, in Input) (models.ShareCountEstimate, bool) {
	var est models.ShareCountEstimate
	if in.ManualTotal != nil && *in.ManualTotal > 0 {
		est.TotalShares = models.PositiveInt(*in.ManualTotal)
	}
	if in.ManualFloat != nil && *in.ManualFloat > 0 {
		est.FloatShares = models.PositiveInt(*in.ManualFloat)
	}
	if !est.TotalShares.Valid && !est.FloatShares.Valid {
		return models.ShareCountEstimate{}, false
	}
	est.Source = models.SourceUserOverride
	return est, true
}

// LiveLookup asks the profile source, caching successful answers per symbol.
//
// Lookup errors (timeouts included) are logged and treated as "no data"; they are
// not cached. It answers only when total shares resolved.
func LiveLookup(src ProfileSource, cache *Cache, timeout time.Duration) Strategy {
	return func(ctx context.Context, in Input) (models.ShareCountEstimate, bool) {
		if src == nil {
			return models.ShareCountEstimate{}, false
		}
		p, ok := cache.Get(in.Symbol)
		if !ok {
			var err error
			p, err = lookup(ctx, src, in.Symbol, timeout)
			if err != nil {
				lg := logger.Component("shares")
				lg.Warn().Err(err).Str("symbol", in.Symbol).Msg("profile lookup failed")
				return models.ShareCountEstimate{}, false
			}
			cache.Put(in.Symbol, p)
		}

		total := models.PositiveInt(p.SharesOutstanding.ValueOrZero())
		if !total.Valid {
			return models.ShareCountEstimate{}, false
		}
		return models.ShareCountEstimate{
			TotalShares: total,
			FloatShares: models.PositiveInt(p.FloatShares.ValueOrZero()),
			Source:      models.SourceLiveLookup,
		}, true
	}
}

func lookup(ctx context.Context, src ProfileSource, symbol string, timeout time.Duration) (p models.Profile, err error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	defer func() {
		if r := recover(); r != nil {
			err = &panicError{value: r}
		}
	}()
	return src.LookupProfile(ctx, symbol)
}

// KnownSymbolPreset answers for symbols in the registry.
func KnownSymbolPreset(registry map[string]Preset) Strategy {
	return func(_ context.Context, in Input) (models.ShareCountEstimate, bool) {
		total, float, ok := lookupPreset(registry, in.Symbol)
		if !ok {
			return models.ShareCountEstimate{}, false
		}
		return models.ShareCountEstimate{TotalShares: total, FloatShares: float, Source: models.SourceKnownSymbolPreset}, true
	}
}

type panicError struct{ value any }

func (e *panicError) Error() string { return fmt.Sprintf("profile source panicked: %v", e.value) }
