// Package builtin holds the field normalizers for listing exports. Each one
// takes raw cell text and returns a typed value plus an ok flag; ok=false
// means the text could not be parsed and the returned value is the default.
// Normalizers never fail a row.
package builtin

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// priceGroupRe matches a Turkish-formatted amount: 1 to 3 digits followed by
// any number of dot-separated thousands groups.
var priceGroupRe = regexp.MustCompile(`\d{1,3}(?:\.\d{3})*`)

// Price extracts the rightmost formatted amount from s. Scraped prices often
// carry a struck-through old price before the current one, as in
// "109.000 TL108.000 TL", so the last match is the live value.
func Price(s string) (int64, bool) {
	m := priceGroupRe.FindAllString(s, -1)
	if len(m) == 0 {
		return 0, false
	}
	v, err := strconv.ParseInt(strings.ReplaceAll(m[len(m)-1], ".", ""), 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Scale returns v*m truncated toward zero. A negative product or one that
// does not fit in an int64 yields (0, false).
func Scale(v int64, m decimal.Decimal) (int64, bool) {
	return nonNegativeInt64(decimal.NewFromInt(v).Mul(m))
}

// PriceScaled is Price followed by Scale. An unparseable or out-of-range
// price stays 0.
func PriceScaled(s string, m decimal.Decimal) (int64, bool) {
	v, ok := Price(s)
	if !ok {
		return 0, false
	}
	return Scale(v, m)
}

// nonNegativeInt64 truncates d toward zero and range-checks the result.
// IntPart alone keeps only the low 64 bits.
func nonNegativeInt64(d decimal.Decimal) (int64, bool) {
	if d.IsNegative() {
		return 0, false
	}
	bi := d.BigInt()
	if !bi.IsInt64() {
		return 0, false
	}
	return bi.Int64(), true
}
