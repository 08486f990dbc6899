package export

import (
	"io"

	"github.com/parquet-go/parquet-go"

	"github.com/guttosm/stockpulse/internal/domain/models"
)

// parquetRow is the on-disk layout. Optional columns are nullable.
type parquetRow struct {
	Date             string   `parquet:"date"`
	Open             float64  `parquet:"open"`
	High             float64  `parquet:"high"`
	Low              float64  `parquet:"low"`
	Close            float64  `parquet:"close"`
	Volume           float64  `parquet:"volume"`
	ChangePct        *float64 `parquet:"change_pct,optional"`
	TurnoverEstimate float64  `parquet:"turnover_estimate"`
	MarketCap        *float64 `parquet:"market_cap,optional"`
	FloatMarketCap   *float64 `parquet:"float_market_cap,optional"`
}

// ParquetEncoder writes bars as a single Parquet file.
type ParquetEncoder struct{}

func (ParquetEncoder) ContentType() string { return "application/vnd.apache.parquet" }

func (ParquetEncoder) Extension() string { return "parquet" }

func (ParquetEncoder) Encode(w io.Writer, bars []models.EnrichedBar) error {
	rows := make([]parquetRow, len(bars))
	for i, b := range bars {
		rows[i] = parquetRow{
			Date:             b.Date.Format(models.DateLayout),
			Open:             b.Open,
			High:             b.High,
			Low:              b.Low,
			Close:            b.Close,
			Volume:           b.Volume,
			ChangePct:        b.ChangePct.Ptr(),
			TurnoverEstimate: b.TurnoverEstimate,
			MarketCap:        b.MarketCap.Ptr(),
			FloatMarketCap:   b.FloatMarketCap.Ptr(),
		}
	}
	return parquet.Write(w, rows)
}
