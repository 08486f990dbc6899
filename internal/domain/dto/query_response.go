package dto

import (
	"github.com/guttosm/stockpulse/internal/domain/models"
)

// MarketCapUnavailable marks a response whose share counts could not be resolved.
const MarketCapUnavailable = "unavailable"

// SharesResponse describes the share counts a response was computed with.
type SharesResponse struct {
	TotalShares *int64 `json:"total_shares" example:"33270000"`
	FloatShares *int64 `json:"float_shares" example:"10000000"`
	Source      string `json:"source" example:"known_symbol_preset"`
}

// QuoteResponse is returned by GET /api/v1/quote.
type QuoteResponse struct {
	Symbol          string             `json:"symbol" example:"ZBAO"`
	RequestedDate   string             `json:"requested_date" example:"2024-01-06"`
	Bar             models.EnrichedBar `json:"bar"`
	Shares          SharesResponse     `json:"shares"`
	MarketCapStatus string             `json:"market_cap_status,omitempty" example:"unavailable"`
	DataSource      string             `json:"data_source" example:"yahoo"`
}

// ClosePoint is one point of the close-price series.
type ClosePoint struct {
	Date  string  `json:"date" example:"2024-01-05"`
	Close float64 `json:"close" example:"1.25"`
}

// ReportResponse is returned by GET /api/v1/report.
type ReportResponse struct {
	Symbol          string               `json:"symbol" example:"ZBAO"`
	Start           string               `json:"start" example:"2024-01-01"`
	End             string               `json:"end" example:"2024-01-31"`
	Bars            []models.EnrichedBar `json:"bars"`
	Closes          []ClosePoint         `json:"closes"`
	Shares          SharesResponse       `json:"shares"`
	MarketCapStatus string               `json:"market_cap_status,omitempty" example:"unavailable"`
	DataSource      string               `json:"data_source" example:"yahoo"`
}

// NewSharesResponse converts an estimate for the wire.
func NewSharesResponse(est models.ShareCountEstimate) SharesResponse {
	return SharesResponse{
		TotalShares: est.TotalShares.Ptr(),
		FloatShares: est.FloatShares.Ptr(),
		Source:      string(est.Source),
	}
}

// MarketCapStatus is "unavailable" when no total share count is known, empty otherwise.
func MarketCapStatus(est models.ShareCountEstimate) string {
	if !est.TotalShares.Valid {
		return MarketCapUnavailable
	}
	return ""
}

// NewQuoteResponse builds the single-day payload. res must be a success.
func NewQuoteResponse(res models.QueryResult, requested, dataSource string) QuoteResponse {
	out := QuoteResponse{
		Symbol:          res.Symbol,
		RequestedDate:   requested,
		Shares:          NewSharesResponse(res.Shares),
		MarketCapStatus: MarketCapStatus(res.Shares),
		DataSource:      dataSource,
	}
	if len(res.Bars) > 0 {
		out.Bar = res.Bars[0]
	}
	return out
}

// NewReportResponse builds the range payload. res must be a success.
func NewReportResponse(res models.QueryResult, start, end, dataSource string) ReportResponse {
	closes := make([]ClosePoint, len(res.Bars))
	for i, b := range res.Bars {
		closes[i] = ClosePoint{Date: b.Date.Format(models.DateLayout), Close: b.Close}
	}
	bars := res.Bars
	if bars == nil {
		bars = []models.EnrichedBar{}
	}
	return ReportResponse{
		Symbol:          res.Symbol,
		Start:           start,
		End:             end,
		Bars:            bars,
		Closes:          closes,
		Shares:          NewSharesResponse(res.Shares),
		MarketCapStatus: MarketCapStatus(res.Shares),
		DataSource:      dataSource,
	}
}
