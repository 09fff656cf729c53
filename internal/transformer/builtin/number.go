package builtin

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Distance keeps only the digits of s, so "173.000 km" becomes 173000.
func Distance(s string) (int64, bool) {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0, false
	}
	v, err := strconv.ParseInt(b.String(), 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Year parses an all-digit model year; anything else yields def.
func Year(s string, def int) (int, bool) {
	if s == "" {
		return def, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return def, false
		}
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def, false
	}
	return v, true
}

// Integer parses a plain non-negative number and truncates any fraction.
// Spreadsheet exports write whole prices as "1500000.0". Values beyond
// int64 yield (0, false).
func Integer(s string) (int64, bool) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return nonNegativeInt64(d)
}

// Float parses a plain non-negative decimal.
func Float(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
