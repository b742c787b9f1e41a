package normalize

import (
	"math"
	"strconv"
	"strings"

	"github.com/gyeh/ripsconv/internal/model"
)

// maxExactInt is the largest magnitude a float64 holds without losing integer precision.
const maxExactInt = 1 << 53

// Number parses a numeric cell. Integral values come back as KindInt and
// fractional ones as KindFloat. ok is false for blanks, non-numeric text and
// non-finite values.
func Number(raw string) (v model.Value, ok bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return model.Null(), false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return model.Int(i), true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return model.Null(), false
	}
	return fromFloat(f)
}

func fromFloat(f float64) (model.Value, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return model.Null(), false
	}
	if f == math.Trunc(f) && math.Abs(f) <= maxExactInt {
		return model.Int(int64(f)), true
	}
	return model.Float(f), true
}
