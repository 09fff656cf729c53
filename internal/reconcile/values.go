package reconcile

import (
	"fmt"
	"log"
	"strings"

	"listingetl/internal/parser/csv"
	"listingetl/internal/transformer/builtin"
)

// Target names the table and columns a reconciliation patches.
type Target struct {
	Table     string
	Columns   []string
	IDColumn  string
	SetColumn string
}

// Stats summarizes one reconciliation run.
type Stats struct {
	Rows      int
	Changed   int
	Unchanged int
}

// Values returns the distance-normalized contents of field, in file order.
// Rows where any of require is blank are skipped. Unparseable values count
// as 0.
func Values(tbl *csv.Table, field string, require []string) ([]int64, error) {
	col, ok := tbl.Column(field)
	if !ok {
		return nil, fmt.Errorf("reconcile: source has no column %q", field)
	}

	reqCols := make([][]string, 0, len(require))
	for _, name := range require {
		c, ok := tbl.Column(name)
		if !ok {
			return nil, fmt.Errorf("reconcile: source has no column %q", name)
		}
		reqCols = append(reqCols, c)
	}

	out := make([]int64, 0, len(col))
	skipped := 0
rows:
	for i, raw := range col {
		for _, c := range reqCols {
			if strings.TrimSpace(c[i]) == "" {
				skipped++
				continue rows
			}
		}
		v, _ := builtin.Distance(raw)
		out = append(out, v)
	}
	if skipped > 0 {
		log.Printf("reconcile: field=%s values=%d skipped_incomplete=%d", field, len(out), skipped)
	}
	return out, nil
}
