package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/guregu/null/v6"
)

// ColumnKey identifies one column of a raw price row.
//
// Flat sources leave Symbol empty. Sources that group their columns per ticker
// (a multi-level column layout such as the yfinance CSV "Price/Ticker" header or a
// Yahoo chart payload) carry the ticker in Symbol. The normalizer only ever keeps Field.
type ColumnKey struct {
	Field  string
	Symbol string
}

// RawBar is one trading day exactly as a price source returned it.
//
// Values are untyped on purpose: a source may hand back floats, ints, pointers that
// are nil for missing quotes, numeric strings, length-1 slices, or a value nested one
// level deeper under the ticker (map[string]any{"ZBAO": 1.23}). The normalizer turns
// each row into a CanonicalBar.
type RawBar struct {
	Date    time.Time
	Columns map[ColumnKey]any
}

// Canonical OHLCV field names, as the normalizer recovers them from raw columns.
const (
	FieldOpen   = "open"
	FieldHigh   = "high"
	FieldLow    = "low"
	FieldClose  = "close"
	FieldVolume = "volume"
)

// PriceFields lists the fields every canonical bar carries, in presentation order.
var PriceFields = []string{FieldOpen, FieldHigh, FieldLow, FieldClose, FieldVolume}

// CanonicalBar is a flat daily OHLCV record with every numeric field reduced to a
// finite scalar.
//
// Unparsed names the fields whose raw value could not be coerced; those fields hold 0.
// A bar with an empty Unparsed is fully sourced.
type CanonicalBar struct {
	Date     time.Time `json:"date" swaggertype:"string" format:"date" example:"2024-01-05"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	Volume   float64   `json:"volume"`
	Unparsed []string  `json:"unparsed,omitempty"`
}

// EnrichedBar is a CanonicalBar plus the metrics derived from it.
//
// Optional fields are invalid (JSON null) when an input is unknown; they are never 0.
type EnrichedBar struct {
	CanonicalBar
	ChangePct        null.Float `json:"change_pct" swaggertype:"number"`
	TurnoverEstimate float64    `json:"turnover_estimate"`
	MarketCap        null.Float `json:"market_cap" swaggertype:"number"`
	FloatMarketCap   null.Float `json:"float_market_cap" swaggertype:"number"`
}

// DateLayout is the wire format for trading dates.
const DateLayout = "2006-01-02"

// barJSON is the wire shape of a CanonicalBar. The date is written as DateLayout.
type barJSON struct {
	Date     string   `json:"date"`
	Open     float64  `json:"open"`
	High     float64  `json:"high"`
	Low      float64  `json:"low"`
	Close    float64  `json:"close"`
	Volume   float64  `json:"volume"`
	Unparsed []string `json:"unparsed,omitempty"`
}

type enrichedJSON struct {
	barJSON
	ChangePct        null.Float `json:"change_pct"`
	TurnoverEstimate float64    `json:"turnover_estimate"`
	MarketCap        null.Float `json:"market_cap"`
	FloatMarketCap   null.Float `json:"float_market_cap"`
}

func (b CanonicalBar) wire() barJSON {
	return barJSON{
		Date:     b.Date.Format(DateLayout),
		Open:     b.Open,
		High:     b.High,
		Low:      b.Low,
		Close:    b.Close,
		Volume:   b.Volume,
		Unparsed: b.Unparsed,
	}
}

func (j barJSON) bar() (CanonicalBar, error) {
	date, err := time.Parse(DateLayout, j.Date)
	if err != nil {
		return CanonicalBar{}, fmt.Errorf("bar date %q: %w", j.Date, err)
	}
	return CanonicalBar{
		Date:     date,
		Open:     j.Open,
		High:     j.High,
		Low:      j.Low,
		Close:    j.Close,
		Volume:   j.Volume,
		Unparsed: j.Unparsed,
	}, nil
}

func (b CanonicalBar) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.wire())
}

func (b *CanonicalBar) UnmarshalJSON(data []byte) error {
	var j barJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	bar, err := j.bar()
	if err != nil {
		return err
	}
	*b = bar
	return nil
}

// MarshalJSON keeps the metric fields next to the flattened bar fields.
func (b EnrichedBar) MarshalJSON() ([]byte, error) {
	return json.Marshal(enrichedJSON{
		barJSON:          b.CanonicalBar.wire(),
		ChangePct:        b.ChangePct,
		TurnoverEstimate: b.TurnoverEstimate,
		MarketCap:        b.MarketCap,
		FloatMarketCap:   b.FloatMarketCap,
	})
}

func (b *EnrichedBar) UnmarshalJSON(data []byte) error {
	var j enrichedJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	bar, err := j.barJSON.bar()
	if err != nil {
		return err
	}
	*b = EnrichedBar{
		CanonicalBar:     bar,
		ChangePct:        j.ChangePct,
		TurnoverEstimate: j.TurnoverEstimate,
		MarketCap:        j.MarketCap,
		FloatMarketCap:   j.FloatMarketCap,
	}
	return nil
}

// TruncateDate drops the clock part of t, keeping its calendar date in UTC.
func TruncateDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
