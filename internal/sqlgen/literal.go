// Package sqlgen renders normalized rows as SQL INSERT text. Values are
// inlined as literals, so Quote is the only line of defence for text that
// came from a scraped export.
package sqlgen

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrNoRows is returned by Render when there is nothing to insert.
var ErrNoRows = errors.New("sqlgen: no rows to render")

// Quote wraps s in single quotes, doubling every embedded quote.
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// Literal renders one value. Integers are bare, floats always carry a
// fractional part ("120.0"), strings are quoted and nil is NULL.
func Literal(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "NULL", nil
	case string:
		return Quote(x), nil
	case int:
		return strconv.Itoa(x), nil
	case int32:
		return strconv.FormatInt(int64(x), 10), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case float64:
		return formatFloat(x)
	case float32:
		return formatFloat(float64(x))
	default:
		return "", fmt.Errorf("sqlgen: unsupported literal type %T", v)
	}
}

func formatFloat(f float64) (string, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", fmt.Errorf("sqlgen: non-finite float %v", f)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s, nil
}

// Tuple renders vals as "(a, b, c)".
func Tuple(vals ...any) (string, error) {
	var b strings.Builder
	b.WriteByte('(')
	for i, v := range vals {
		lit, err := Literal(v)
		if err != nil {
			return "", fmt.Errorf("value %d: %w", i, err)
		}
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(lit)
	}
	b.WriteByte(')')
	return b.String(), nil
}
