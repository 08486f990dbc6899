package models

import "github.com/guregu/null/v6"

// SourceTag records which rung of the share count chain produced an estimate.
type SourceTag string

const (
	SourceLiveLookup        SourceTag = "live_lookup"
	SourceKnownSymbolPreset SourceTag = "known_symbol_preset"
	SourceUserOverride      SourceTag = "user_override"
	SourceUnresolved        SourceTag = "unresolved"
)

// ShareCountEstimate holds the total and float share counts for a symbol.
//
// When Source is SourceUnresolved both counts are invalid.
type ShareCountEstimate struct {
	TotalShares null.Int  `json:"total_shares" swaggertype:"integer"`
	FloatShares null.Int  `json:"float_shares" swaggertype:"integer"`
	Source      SourceTag `json:"source" example:"live_lookup"`
}

// Unresolved returns the terminal estimate with no counts.
func Unresolved() ShareCountEstimate {
	return ShareCountEstimate{Source: SourceUnresolved}
}

// Profile is what a company-profile source reports for a symbol.
// Zero or non-numeric figures are represented as invalid values.
type Profile struct {
	SharesOutstanding null.Int
	FloatShares       null.Int
}

// PositiveInt returns a valid null.Int only for v > 0.
func PositiveInt(v int64) null.Int {
	return null.NewInt(v, v > 0)
}
