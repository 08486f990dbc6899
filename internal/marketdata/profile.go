package marketdata

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"

	"github.com/guregu/null/v6"

	"github.com/guttosm/stockpulse/internal/domain/models"
)

// yfRaw is Yahoo's {"raw": 123, "fmt": "123"} number wrapper. Either part may be missing.
type yfRaw struct {
	Raw *float64 `json:"raw"`
	Fmt string   `json:"fmt"`
}

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			DefaultKeyStatistics struct {
				SharesOutstanding yfRaw `json:"sharesOutstanding"`
				FloatShares       yfRaw `json:"floatShares"`
			} `json:"defaultKeyStatistics"`
		} `json:"result"`
		Error *chartError `json:"error"`
	} `json:"quoteSummary"`
}

// LookupProfile returns the share counts Yahoo publishes for symbol.
// Missing or non-positive figures come back as invalid values.
func (c *Client) LookupProfile(ctx context.Context, symbol string) (models.Profile, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return models.Profile{}, fmt.Errorf("lookup profile: empty symbol")
	}

	resp, err := c.quoteSummary(ctx, symbol)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
		// Stale crumb; negotiate a fresh one once.
		c.resetCrumb()
		resp, err = c.quoteSummary(ctx, symbol)
	}
	if err != nil {
		return models.Profile{}, fmt.Errorf("lookup profile %s: %w", symbol, err)
	}

	if e := resp.QuoteSummary.Error; e != nil {
		if strings.EqualFold(e.Code, "Not Found") {
			return models.Profile{}, fmt.Errorf("lookup profile %s: %w: %s", symbol, ErrNotFound, e.Description)
		}
		return models.Profile{}, fmt.Errorf("lookup profile %s: %s: %s", symbol, e.Code, e.Description)
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return models.Profile{}, nil
	}

	stats := resp.QuoteSummary.Result[0].DefaultKeyStatistics
	return models.Profile{
		SharesOutstanding: shareCount(stats.SharesOutstanding),
		FloatShares:       shareCount(stats.FloatShares),
	}, nil
}

func (c *Client) quoteSummary(ctx context.Context, symbol string) (quoteSummaryResponse, error) {
	crumb, err := c.sessionCrumb(ctx)
	if err != nil {
		return quoteSummaryResponse{}, err
	}
	params := url.Values{}
	params.Set("modules", "defaultKeyStatistics")
	params.Set("crumb", crumb)

	var resp quoteSummaryResponse
	err = c.get(ctx, "/v10/finance/quoteSummary/"+url.PathEscape(symbol), params, &resp)
	return resp, err
}

func shareCount(v yfRaw) null.Int {
	if v.Raw == nil || math.IsNaN(*v.Raw) || math.IsInf(*v.Raw, 0) {
		return null.Int{}
	}
	return models.PositiveInt(int64(*v.Raw))
}
