// Package calc derives per-day metrics from canonical bars and share counts.
package calc

import (
	"time"

	"github.com/guregu/null/v6"
	"github.com/guttosm/stockpulse/internal/domain/models"
)

// Enrich computes the derived metrics for an ascending series of bars.
//
// bars must carry at least one lookback bar before the span the caller cares about:
// change_pct of bar i is measured against bar i-1, and the first bar of the input,
// having no predecessor, is dropped from the output. The result has len(bars)-1
// entries (or none for fewer than two bars).
//
// Share-dependent fields are invalid when the matching count is absent. Nothing is rounded.
func Enrich(bars []models.CanonicalBar, est models.ShareCountEstimate) []models.EnrichedBar {
	if len(bars) < 2 {
		return []models.EnrichedBar{}
	}
	out := make([]models.EnrichedBar, 0, len(bars)-1)
	for i := 1; i < len(bars); i++ {
		out = append(out, enrichOne(bars[i], bars[i-1].Close, est))
	}
	return out
}

func enrichOne(bar models.CanonicalBar, prevClose float64, est models.ShareCountEstimate) models.EnrichedBar {
	return models.EnrichedBar{
		CanonicalBar:     bar,
		ChangePct:        ChangePct(bar.Close, prevClose),
		TurnoverEstimate: Turnover(bar.Open, bar.Close, bar.Volume),
		MarketCap:        capitalization(bar.Close, est.TotalShares),
		FloatMarketCap:   capitalization(bar.Close, est.FloatShares),
	}
}

// ChangePct is the percent change from prev to cur. It is invalid when prev is 0.
func ChangePct(cur, prev float64) null.Float {
	if prev == 0 {
		return null.Float{}
	}
	return null.FloatFrom((cur - prev) / prev * 100)
}

// Turnover approximates the traded value of a day as average(open, close) × volume.
func Turnover(open, close, volume float64) float64 {
	return (open + close) / 2 * volume
}

func capitalization(close float64, shares null.Int) null.Float {
	if !shares.Valid {
		return null.Float{}
	}
	return null.FloatFrom(close * float64(shares.Int64))
}

// Since keeps the bars dated on or after from.
func Since(bars []models.EnrichedBar, from time.Time) []models.EnrichedBar {
	return Between(bars, from, time.Time{})
}

// Between keeps the bars with from <= date and, when to is non-zero, date <= to.
func Between(bars []models.EnrichedBar, from, to time.Time) []models.EnrichedBar {
	from = models.TruncateDate(from)
	out := make([]models.EnrichedBar, 0, len(bars))
	for _, b := range bars {
		if b.Date.Before(from) {
			continue
		}
		if !to.IsZero() && b.Date.After(models.TruncateDate(to)) {
			continue
		}
		out = append(out, b)
	}
	return out
}
