package shares

import (
	"strings"

	"github.com/guregu/null/v6"
)

// Preset is a curated share count pair for a symbol whose live data is unreliable.
type Preset struct {
	TotalShares int64
	FloatShares int64
}

// KnownSymbols is the registry consulted when a live lookup yields no total shares.
var KnownSymbols = map[string]Preset{
	"ZBAO": {TotalShares: 33_270_000, FloatShares: 10_000_000},
}

func lookupPreset(registry map[string]Preset, symbol string) (null.Int, null.Int, bool) {
	p, ok := registry[strings.ToUpper(strings.TrimSpace(symbol))]
	if !ok || p.TotalShares <= 0 {
		return null.Int{}, null.Int{}, false
	}
	return null.IntFrom(p.TotalShares), null.NewInt(p.FloatShares, p.FloatShares > 0), true
}
