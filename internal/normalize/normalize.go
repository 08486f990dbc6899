// Package normalize turns raw price rows into canonical daily bars.
package normalize

import (
	"sort"
	"strings"
	"time"

	"github.com/guttosm/stockpulse/internal/domain/models"
	"github.com/guttosm/stockpulse/internal/logger"
)

// Normalize flattens, coerces, orders and de-duplicates raw rows.
//
// Behavior:
//   - Column keys are reduced to their lower-cased top-level field; the symbol layer is dropped.
//     A field present for several tickers is unparsed rather than taken from one of them.
//   - Each OHLCV value is coerced to a finite float64. Failures become 0 and are listed
//     in CanonicalBar.Unparsed.
//   - Output is ascending by date. The first row of a duplicated date wins.
//   - Missing days are not synthesized.
//
// Returns an empty (non-nil) slice when rows is empty.
func Normalize(rows []models.RawBar) []models.CanonicalBar {
	lg := logger.Component("normalize")

	out := make([]models.CanonicalBar, 0, len(rows))
	seen := make(map[int64]struct{}, len(rows))

	ordered := make([]models.RawBar, len(rows))
	copy(ordered, rows)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Date.Before(ordered[j].Date) })

	for _, row := range ordered {
		date := models.TruncateDate(row.Date)
		key := date.Unix()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		bar := toCanonical(date, Flatten(row.Columns))
		if len(bar.Unparsed) > 0 {
			lg.Warn().
				Str("date", date.Format(models.DateLayout)).
				Strs("fields", bar.Unparsed).
				Msg("unparseable price fields defaulted to 0")
		}
		out = append(out, bar)
	}
	return out
}

// Flatten recovers the top-level field name for each column.
//
// A column is kept under its lower-cased Field with an empty Symbol. A field that
// appears under more than one ticker is ambiguous: it is kept with a value Scalar
// rejects, so the field ends up in CanonicalBar.Unparsed.
func Flatten(cols map[models.ColumnKey]any) map[models.ColumnKey]any {
	flat := make(map[models.ColumnKey]any, len(cols))
	for k, v := range cols {
		field := strings.ToLower(strings.TrimSpace(k.Field))
		if field == "" {
			continue
		}
		fk := models.ColumnKey{Field: field}
		if _, ok := flat[fk]; ok {
			flat[fk] = ambiguous{}
			continue
		}
		flat[fk] = unnest(v)
	}
	return flat
}

// ambiguous marks a field claimed by several tickers in one row.
type ambiguous struct{}

// unnest unwraps a value grouped one level deeper under a single ticker.
func unnest(v any) any {
	switch m := v.(type) {
	case map[string]any:
		if len(m) == 1 {
			for _, inner := range m {
				return inner
			}
		}
	case map[string]float64:
		if len(m) == 1 {
			for _, inner := range m {
				return inner
			}
		}
	}
	return v
}

func toCanonical(date time.Time, flat map[models.ColumnKey]any) models.CanonicalBar {
	bar := models.CanonicalBar{Date: date}
	targets := map[string]*float64{
		models.FieldOpen:   &bar.Open,
		models.FieldHigh:   &bar.High,
		models.FieldLow:    &bar.Low,
		models.FieldClose:  &bar.Close,
		models.FieldVolume: &bar.Volume,
	}
	for _, field := range models.PriceFields {
		raw, present := flat[models.ColumnKey{Field: field}]
		v, ok := Scalar(raw)
		if !present || !ok {
			bar.Unparsed = append(bar.Unparsed, field)
			v = 0
		}
		*targets[field] = v
	}
	return bar
}
