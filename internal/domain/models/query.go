package models

import "time"

// QueryMode selects between a single-day lookup and a range report.
type QueryMode string

const (
	ModeSingleDay   QueryMode = "single_day"
	ModeRangeReport QueryMode = "range_report"
)

// QueryRequest is one user query.
//
// Date is used by ModeSingleDay; Start and End (both inclusive) by ModeRangeReport.
// ManualTotal and ManualFloat, when set, override every share count lookup.
type QueryRequest struct {
	Symbol      string
	Mode        QueryMode
	Date        time.Time
	Start       time.Time
	End         time.Time
	ManualTotal *int64
	ManualFloat *int64
}

// ResultKind discriminates a QueryResult.
type ResultKind string

const (
	ResultSuccess ResultKind = "success"
	ResultEmpty   ResultKind = "empty"
	ResultFailure ResultKind = "failure"
)

// ErrorKind classifies why a query did not succeed.
type ErrorKind string

const (
	ErrDataSource     ErrorKind = "data_source_error"
	ErrNoTradingData  ErrorKind = "no_trading_data"
	ErrInvalidRequest ErrorKind = "invalid_request"
)

// QueryResult is the outcome of a query.
//
//   - ResultSuccess: Bars holds one bar (single day) or the ordered range, Shares the estimate.
//   - ResultEmpty:   the span has no trading days; ErrorKind is ErrNoTradingData.
//   - ResultFailure: ErrorKind and Message describe the failure.
type QueryResult struct {
	Kind      ResultKind
	Symbol    string
	Mode      QueryMode
	Bars      []EnrichedBar
	Shares    ShareCountEstimate
	ErrorKind ErrorKind
	Message   string
}

// Success builds a successful result.
func Success(req QueryRequest, bars []EnrichedBar, shares ShareCountEstimate) QueryResult {
	return QueryResult{Kind: ResultSuccess, Symbol: req.Symbol, Mode: req.Mode, Bars: bars, Shares: shares}
}

// Empty builds a no-trading-data result.
func Empty(req QueryRequest) QueryResult {
	return QueryResult{
		Kind:      ResultEmpty,
		Symbol:    req.Symbol,
		Mode:      req.Mode,
		ErrorKind: ErrNoTradingData,
		Message:   "no trading data in the requested span",
	}
}

// Failure builds a failed result.
func Failure(req QueryRequest, kind ErrorKind, err error) QueryResult {
	msg := string(kind)
	if err != nil {
		msg = err.Error()
	}
	return QueryResult{Kind: ResultFailure, Symbol: req.Symbol, Mode: req.Mode, ErrorKind: kind, Message: msg}
}
