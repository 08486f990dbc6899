package normalize

import (
	"encoding/json"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/guregu/null/v6"
	"github.com/guttosm/stockpulse/internal/domain/models"
)

func day(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }

func flatRow(d int, o, h, l, c, v any) models.RawBar {
	return models.RawBar{Date: day(d), Columns: map[models.ColumnKey]any{
		{Field: "Open"}:   o,
		{Field: "High"}:   h,
		{Field: "Low"}:    l,
		{Field: "Close"}:  c,
		{Field: "Volume"}: v,
	}}
}

func nestedRow(d int, symbol string, o, h, l, c, v any) models.RawBar {
	return models.RawBar{Date: day(d), Columns: map[models.ColumnKey]any{
		{Field: "Open", Symbol: symbol}:   o,
		{Field: "High", Symbol: symbol}:   h,
		{Field: "Low", Symbol: symbol}:    l,
		{Field: "Close", Symbol: symbol}:  c,
		{Field: "Volume", Symbol: symbol}: v,
	}}
}

func TestScalar_TableDriven(t *testing.T) {
	f := 2.5
	nf := null.FloatFrom(6)
	var nilPtr *float64
	cases := []struct {
		name string
		in   any
		want float64
		ok   bool
	}{
		{name: "float", in: 1.25, want: 1.25, ok: true},
		{name: "int", in: 42, want: 42, ok: true},
		{name: "int64", in: int64(1000), want: 1000, ok: true},
		{name: "uint", in: uint32(7), want: 7, ok: true},
		{name: "pointer", in: &f, want: 2.5, ok: true},
		{name: "nil pointer", in: nilPtr, ok: false},
		{name: "nil", in: nil, ok: false},
		{name: "json number", in: json.Number("3.75"), want: 3.75, ok: true},
		{name: "string", in: " 1,234.5 ", want: 1234.5, ok: true},
		{name: "bad string", in: "N/A", ok: false},
		{name: "empty string", in: "", ok: false},
		{name: "length-1 slice", in: []float64{9.5}, want: 9.5, ok: true},
		{name: "length-1 any slice", in: []any{"4"}, want: 4, ok: true},
		{name: "length-2 slice", in: []float64{1, 2}, ok: false},
		{name: "empty slice", in: []float64{}, ok: false},
		{name: "NaN", in: math.NaN(), ok: false},
		{name: "Inf", in: math.Inf(1), ok: false},
		{name: "valid null.Float", in: null.FloatFrom(8), want: 8, ok: true},
		{name: "invalid null.Float", in: null.Float{}, ok: false},
		{name: "valid null.Int", in: null.IntFrom(12), want: 12, ok: true},
		{name: "struct", in: struct{}{}, ok: false},
		{name: "bool", in: true, ok: false},
		{name: "NaN string", in: "NaN", ok: false},
		{name: "overflowing string", in: "1e400", ok: false},
		{name: "pointer to null.Float", in: &nf, want: 6, ok: true},
		{name: "int8", in: int8(-3), want: -3, ok: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Scalar(tc.in)
			if ok != tc.ok || got != tc.want {
				t.Fatalf("Scalar(%v) = (%v, %v), want (%v, %v)", tc.in, got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestNormalize_NestedEqualsFlat(t *testing.T) {
	flat := []models.RawBar{
		flatRow(3, 10.0, 12.0, 9.5, 11.0, 1000.0),
		flatRow(2, 9.0, 10.0, 8.0, 9.5, int64(500)),
	}
	nested := []models.RawBar{
		nestedRow(3, "ZBAO", []float64{10.0}, 12.0, 9.5, 11.0, 1000.0),
		nestedRow(2, "ZBAO", 9.0, map[string]any{"ZBAO": 10.0}, 8.0, 9.5, int64(500)),
	}

	a := Normalize(flat)
	b := Normalize(nested)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("nested != flat\nflat=%+v\nnested=%+v", a, b)
	}
	if len(a) != 2 || !a[0].Date.Equal(day(2)) || !a[1].Date.Equal(day(3)) {
		t.Fatalf("expected ascending dates, got %+v", a)
	}
}

func TestFlatten_Idempotent(t *testing.T) {
	row := nestedRow(2, "ZBAO", 1.0, 2.0, 0.5, 1.5, 100.0)
	once := Flatten(row.Columns)
	twice := Flatten(once)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("flatten not idempotent: %+v vs %+v", once, twice)
	}
	for k := range once {
		if k.Symbol != "" {
			t.Fatalf("symbol layer leaked: %+v", k)
		}
	}
}

func TestNormalize_FieldForSeveralTickersIsUnparsed(t *testing.T) {
	row := nestedRow(2, "ZBAO", 1.0, 1.2, 0.9, 1.0, 100.0)
	row.Columns[models.ColumnKey{Field: "Close", Symbol: "AAPL"}] = 190.0

	out := Normalize([]models.RawBar{row})
	bar := out[0]
	if bar.Close != 0 || !reflect.DeepEqual(bar.Unparsed, []string{"close"}) {
		t.Fatalf("want close unparsed, got %+v", bar)
	}
	if bar.Open != 1 || bar.Volume != 100 {
		t.Fatalf("single-ticker fields should survive, got %+v", bar)
	}
}

func TestNormalize_CoercionFailureDefaultsToZero(t *testing.T) {
	rows := []models.RawBar{flatRow(2, "oops", 10.0, 8.0, nil, 100.0)}
	out := Normalize(rows)
	if len(out) != 1 {
		t.Fatalf("want 1 bar got %d", len(out))
	}
	bar := out[0]
	if bar.Open != 0 || bar.Close != 0 || bar.High != 10 {
		t.Fatalf("unexpected bar: %+v", bar)
	}
	if !reflect.DeepEqual(bar.Unparsed, []string{"open", "close"}) {
		t.Fatalf("unexpected unparsed: %v", bar.Unparsed)
	}
}

func TestNormalize_MissingFieldIsUnparsed(t *testing.T) {
	row := models.RawBar{Date: day(2), Columns: map[models.ColumnKey]any{
		{Field: "Open"}: 1.0, {Field: "High"}: 1.0, {Field: "Low"}: 1.0, {Field: "Close"}: 1.0,
	}}
	out := Normalize([]models.RawBar{row})
	if len(out[0].Unparsed) != 1 || out[0].Unparsed[0] != "volume" || out[0].Volume != 0 {
		t.Fatalf("expected volume unparsed, got %+v", out[0])
	}
}

func TestNormalize_NoClampingOnInvalidOHLC(t *testing.T) {
	// low above high: passed through as-is
	out := Normalize([]models.RawBar{flatRow(2, 5.0, 4.0, 6.0, 5.5, 10.0)})
	b := out[0]
	if b.Open != 5 || b.High != 4 || b.Low != 6 || b.Close != 5.5 {
		t.Fatalf("values were modified: %+v", b)
	}
}

func TestNormalize_DuplicatesAndEmpty(t *testing.T) {
	if out := Normalize(nil); out == nil || len(out) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", out)
	}

	rows := []models.RawBar{
		flatRow(2, 1.0, 1.0, 1.0, 1.0, 1.0),
		{Date: day(2).Add(14 * time.Hour), Columns: flatRow(2, 2.0, 2.0, 2.0, 2.0, 2.0).Columns},
	}
	out := Normalize(rows)
	if len(out) != 1 || out[0].Close != 1 {
		t.Fatalf("expected first duplicate kept, got %+v", out)
	}
}

func TestNormalize_OrderInvariantHolds(t *testing.T) {
	out := Normalize([]models.RawBar{
		flatRow(2, 10.0, 12.0, 9.0, 11.0, 100.0),
		flatRow(3, 11.0, 11.5, 10.0, 10.5, 200.0),
	})
	for _, b := range out {
		if b.Low > b.Open || b.Open > b.High || b.Low > b.Close || b.Close > b.High || b.Volume < 0 {
			t.Fatalf("invariant broken: %+v", b)
		}
	}
}
