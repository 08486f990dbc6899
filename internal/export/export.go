// Package export encodes enriched bars as downloadable tables.
package export

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/guttosm/stockpulse/internal/domain/models"
)

// ErrUnsupportedFormat is returned by NewEncoder for unknown formats.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// Encoder writes a report's bars in one table format.
type Encoder interface {
	Encode(w io.Writer, bars []models.EnrichedBar) error
	ContentType() string
	Extension() string
}

// Columns is the header shared by every format, in order.
var Columns = []string{
	"date", "open", "high", "low", "close", "volume",
	"change_pct", "turnover_estimate", "market_cap", "float_market_cap",
}

// NewEncoder returns the encoder for format (csv, parquet, json).
func NewEncoder(format string) (Encoder, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "csv", "":
		return CSVEncoder{}, nil
	case "parquet":
		return ParquetEncoder{}, nil
	case "json":
		return JSONEncoder{}, nil
	default:
		return nil, fmt.Errorf("%w: %q (use csv, parquet or json)", ErrUnsupportedFormat, format)
	}
}

// Filename builds the attachment name for a report.
func Filename(symbol string, bars []models.EnrichedBar, e Encoder) string {
	name := strings.ToLower(strings.TrimSpace(symbol))
	if name == "" {
		name = "report"
	}
	if len(bars) > 0 {
		name += "_" + bars[0].Date.Format(models.DateLayout) + "_" + bars[len(bars)-1].Date.Format(models.DateLayout)
	}
	return name + "." + e.Extension()
}
