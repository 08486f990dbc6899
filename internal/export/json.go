package export

import (
	"encoding/json"
	"io"

	"github.com/guttosm/stockpulse/internal/domain/models"
)

// JSONEncoder writes bars as an indented JSON array.
type JSONEncoder struct{}

func (JSONEncoder) ContentType() string { return "application/json" }

func (JSONEncoder) Extension() string { return "json" }

func (JSONEncoder) Encode(w io.Writer, bars []models.EnrichedBar) error {
	if bars == nil {
		bars = []models.EnrichedBar{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(bars)
}
