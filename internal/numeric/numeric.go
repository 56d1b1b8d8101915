// Package numeric holds the total coercion rules used by every figure in a
// quote: a malformed, missing or non-finite input is read as 0, never as an
// error, so running totals always display a number.
package numeric

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Float coerces v to a finite float64. Unsupported types, unparsable strings,
// NaN and infinities all yield 0. Strings accept a comma as decimal separator.
func Float(v any) float64 {
	var f float64
	switch x := v.(type) {
	case nil:
		return 0
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int32:
		f = float64(x)
	case int64:
		f = float64(x)
	case uint:
		f = float64(x)
	case uint32:
		f = float64(x)
	case uint64:
		f = float64(x)
	case Amount:
		f = float64(x)
	case Count:
		f = float64(x)
	case json.Number:
		f = parseString(string(x))
	case string:
		f = parseString(x)
	default:
		return 0
	}
	return Finite(f)
}

// Int coerces v to an int, truncating any fractional part the way a
// form field parsed as an integer does ("12.9" -> 12). Values beyond the int
// range saturate.
func Int(v any) int {
	f := math.Trunc(Float(v))
	switch {
	case f >= float64(math.MaxInt):
		return math.MaxInt
	case f <= float64(math.MinInt):
		return math.MinInt
	}
	return int(f)
}

// Finite returns f, or 0 when f is NaN or infinite.
func Finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// NonNegative returns f when it is finite and >= 0, otherwise 0.
func NonNegative(f float64) float64 {
	f = Finite(f)
	if f < 0 {
		return 0
	}
	return f
}

// Round2 rounds f to cents, half away from zero.
func Round2(f float64) float64 {
	return decimal.NewFromFloat(Finite(f)).Round(2).InexactFloat64()
}

// RoundInt rounds f to the nearest integer, half away from zero.
func RoundInt(f float64) int {
	return int(decimal.NewFromFloat(Finite(f)).Round(0).IntPart())
}

func parseString(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	s = strings.ReplaceAll(s, " ", "")
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
