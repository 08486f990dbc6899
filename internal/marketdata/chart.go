package marketdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/guttosm/stockpulse/internal/domain/models"
)

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *chartError   `json:"error"`
	} `json:"chart"`
}

type chartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// Yahoo answers a span before listing or in the future with this error rather
// than an empty result.
func (e *chartError) noData() bool {
	return strings.EqualFold(e.Code, "Bad Request") &&
		strings.Contains(strings.ToLower(e.Description), "data doesn't exist")
}

// spanHasNoData reports whether err is a 400 whose chart.error body says the
// requested span has no data.
func spanHasNoData(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadRequest {
		return false
	}
	var body chartResponse
	if json.Unmarshal([]byte(apiErr.Message), &body) != nil || body.Chart.Error == nil {
		return false
	}
	return body.Chart.Error.noData()
}

type chartResult struct {
	Meta struct {
		Symbol         string `json:"symbol"`
		Currency       string `json:"currency"`
		GMTOffset      int64  `json:"gmtoffset"`
		InstrumentType string `json:"instrumentType"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []chartQuote `json:"quote"`
	} `json:"indicators"`
}

// Yahoo sends null for days it has a timestamp but no quote.
type chartQuote struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*float64 `json:"volume"`
}

// FetchDailyBars returns the daily bars for symbol between start and end, both inclusive.
//
// Columns are keyed by Yahoo's field names and qualified with the symbol, the same
// grouped layout a multi-ticker download has. Missing quotes come through as nil
// pointers for the normalizer to deal with. Rows where every field is null are skipped.
func (c *Client) FetchDailyBars(ctx context.Context, symbol string, start, end time.Time) ([]models.RawBar, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("fetch daily bars: empty symbol")
	}

	params := url.Values{}
	params.Set("interval", "1d")
	params.Set("events", "history")
	params.Set("includePrePost", "false")
	params.Set("period1", strconv.FormatInt(models.TruncateDate(start).Unix(), 10))
	params.Set("period2", strconv.FormatInt(models.TruncateDate(end).AddDate(0, 0, 1).Unix(), 10))

	var resp chartResponse
	if err := c.get(ctx, "/v8/finance/chart/"+url.PathEscape(symbol), params, &resp); err != nil {
		if spanHasNoData(err) {
			c.log.Debug().Str("symbol", symbol).Msg("no data in requested span")
			return nil, nil
		}
		return nil, fmt.Errorf("fetch daily bars %s: %w", symbol, err)
	}
	if e := resp.Chart.Error; e != nil {
		if e.noData() {
			return nil, nil
		}
		if strings.EqualFold(e.Code, "Not Found") {
			return nil, fmt.Errorf("fetch daily bars %s: %w: %s", symbol, ErrNotFound, e.Description)
		}
		return nil, fmt.Errorf("fetch daily bars %s: %s: %s", symbol, e.Code, e.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, nil
	}

	res := resp.Chart.Result[0]
	if len(res.Indicators.Quote) == 0 {
		return nil, nil
	}
	q := res.Indicators.Quote[0]

	bars := make([]models.RawBar, 0, len(res.Timestamp))
	for i, ts := range res.Timestamp {
		fields := map[string]*float64{
			"Open":   at(q.Open, i),
			"High":   at(q.High, i),
			"Low":    at(q.Low, i),
			"Close":  at(q.Close, i),
			"Volume": at(q.Volume, i),
		}
		cols := make(map[models.ColumnKey]any, len(fields))
		empty := true
		for name, v := range fields {
			if v != nil {
				empty = false
			}
			cols[models.ColumnKey{Field: name, Symbol: symbol}] = v
		}
		if empty {
			continue
		}
		// Exchange-local calendar date of the session.
		day := models.TruncateDate(time.Unix(ts+res.Meta.GMTOffset, 0).UTC())
		bars = append(bars, models.RawBar{Date: day, Columns: cols})
	}

	c.log.Debug().Str("symbol", symbol).Int("bars", len(bars)).Msg("chart fetched")
	return bars, nil
}

func at(vals []*float64, i int) *float64 {
	if i < len(vals) {
		return vals[i]
	}
	return nil
}
