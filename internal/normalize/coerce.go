package normalize

import (
	"math"
	"reflect"
	"strings"

	"github.com/guregu/null/v6"
	"github.com/spf13/cast"
)

// Scalar reduces v to a single finite float64.
//
// Accepted shapes:
//   - any int/uint/float kind, or a non-nil pointer to one
//   - json.Number and numeric strings (surrounding spaces and thousands commas allowed)
//   - valid null.Float / null.Int
//   - a length-1 slice or array of any of the above
//
// ok is false for nil, booleans, NaN, ±Inf, empty collections and every other shape.
func Scalar(v any) (float64, bool) {
	switch x := v.(type) {
	case nil, bool:
		return 0, false
	case null.Float:
		if !x.Valid {
			return 0, false
		}
		return finite(x.Float64)
	case null.Int:
		if !x.Valid {
			return 0, false
		}
		return float64(x.Int64), true
	case string:
		x = strings.ReplaceAll(strings.TrimSpace(x), ",", "")
		if x == "" {
			return 0, false
		}
		v = x
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return 0, false
		}
		return Scalar(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		if rv.Len() != 1 {
			return 0, false
		}
		return Scalar(rv.Index(0).Interface())
	}

	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, false
	}
	return finite(f)
}

func finite(f float64) (float64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
