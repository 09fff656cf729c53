package transformer

import (
	"fmt"
	"sort"
	"strings"

	"listingetl/internal/record"
)

// Report counts normalized rows and how often each field fell back to its
// default.
type Report struct {
	Rows      int
	Defaulted map[string]int
}

// Add records one normalized row.
func (r *Report) Add(d record.Defaulted) {
	r.Rows++
	for _, f := range d.Fields() {
		if r.Defaulted == nil {
			r.Defaulted = make(map[string]int)
		}
		r.Defaulted[f]++
	}
}

// String renders "rows=N defaulted_price=K ..." with fields sorted by name.
func (r Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "rows=%d", r.Rows)
	keys := make([]string, 0, len(r.Defaulted))
	for k := range r.Defaulted {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " defaulted_%s=%d", k, r.Defaulted[k])
	}
	return b.String()
}
