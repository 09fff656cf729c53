package reconcile

import (
	"errors"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"
)

// ErrStatementNotFound is returned when the document has no INSERT block for
// the target, or the block has no rows. The document is left untouched.
var ErrStatementNotFound = errors.New("reconcile: INSERT statement not found")

// rowRe captures the leading identifier and the trailing numeric field of one
// row tuple, e.g. (1, 1997, 'Hyundai Accent 1.5 GLS', 1730), or (1, 1730)
// when the target has only those two columns.
var rowRe = regexp.MustCompile(`\((\d+)(?:,.*)?,\s*(-?\d+)\)`)

const rewriteLogLimit = 10

// statementRe matches the VALUES block of the target's INSERT statement.
func statementRe(t Target) *regexp.Regexp {
	return regexp.MustCompile(`(?s)INSERT INTO ` + regexp.QuoteMeta(t.Table) +
		` \(` + regexp.QuoteMeta(strings.Join(t.Columns, ", ")) + `\) VALUES\n(.*?);`)
}

// RewriteSQL replaces the trailing numeric literal of every row in the
// target's INSERT block with the value s assigns to that row's identifier.
// Only the first matching block is rewritten; the rest of doc is preserved
// byte for byte.
func RewriteSQL(doc string, t Target, values []int64, s CorrespondenceStrategy) (string, Stats, error) {
	var st Stats
	if len(values) == 0 {
		return doc, st, ErrNoSourceValues
	}

	loc := statementRe(t).FindStringSubmatchIndex(doc)
	if loc == nil {
		return doc, st, fmt.Errorf("%w: table=%s columns=(%s)", ErrStatementNotFound, t.Table, strings.Join(t.Columns, ", "))
	}
	start, end := loc[2], loc[3]

	lines := strings.Split(doc[start:end], "\n")
	for i, line := range lines {
		m := rowRe.FindStringSubmatchIndex(line)
		if m == nil {
			continue
		}
		id, err := strconv.ParseInt(line[m[2]:m[3]], 10, 64)
		if err != nil {
			return doc, Stats{}, fmt.Errorf("reconcile: row id %q: %w", line[m[2]:m[3]], err)
		}
		oldLit := line[m[4]:m[5]]
		old, err := strconv.ParseInt(oldLit, 10, 64)
		if err != nil {
			return doc, Stats{}, fmt.Errorf("reconcile: id=%d value %q: %w", id, oldLit, err)
		}
		v, err := pick(s, id, values)
		if err != nil {
			return doc, Stats{}, err
		}

		st.Rows++
		if v == old {
			st.Unchanged++
			continue
		}
		st.Changed++
		if st.Changed <= rewriteLogLimit {
			log.Printf("reconcile: rewrite %s=%d %s %d -> %d", t.IDColumn, id, t.SetColumn, old, v)
		}
		lines[i] = line[:m[4]] + strconv.FormatInt(v, 10) + line[m[5]:]
	}

	if st.Rows == 0 {
		return doc, Stats{}, fmt.Errorf("%w: table=%s block has no rows", ErrStatementNotFound, t.Table)
	}

	out := doc[:start] + strings.Join(lines, "\n") + doc[end:]
	log.Printf("reconcile: rewrite table=%s rows=%d changed=%d unchanged=%d", t.Table, st.Rows, st.Changed, st.Unchanged)
	return out, st, nil
}
