package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/guregu/null/v6"

	"github.com/guttosm/stockpulse/internal/domain/models"
)

// CSVEncoder writes one row per bar under the Columns header. Absent values are empty cells.
type CSVEncoder struct{}

func (CSVEncoder) ContentType() string { return "text/csv" }

func (CSVEncoder) Extension() string { return "csv" }

func (CSVEncoder) Encode(w io.Writer, bars []models.EnrichedBar) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, b := range bars {
		if err := cw.Write([]string{
			b.Date.Format(models.DateLayout),
			floatStr(b.Open),
			floatStr(b.High),
			floatStr(b.Low),
			floatStr(b.Close),
			floatStr(b.Volume),
			nullStr(b.ChangePct),
			floatStr(b.TurnoverEstimate),
			nullStr(b.MarketCap),
			nullStr(b.FloatMarketCap),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func floatStr(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

func nullStr(f null.Float) string {
	if !f.Valid {
		return ""
	}
	return floatStr(f.Float64)
}
