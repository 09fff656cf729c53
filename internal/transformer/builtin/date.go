package builtin

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var turkishMonths = map[string]string{
	"Ocak": "01", "Şubat": "02", "Mart": "03", "Nisan": "04",
	"Mayıs": "05", "Haziran": "06", "Temmuz": "07", "Ağustos": "08",
	"Eylül": "09", "Ekim": "10", "Kasım": "11", "Aralık": "12",
}

// foldedMonth is turkishMonths keyed by the Turkish lower-case form.
var foldedMonth = func() map[string]string {
	m := make(map[string]string, len(turkishMonths))
	for k, v := range turkishMonths {
		m[turkishLower(k)] = v
	}
	return m
}()

// asciiMonth is foldedMonth keyed by the diacritic-free spelling, so
// "Subat" and "AGUSTOS" resolve too.
var asciiMonth = func() map[string]string {
	m := make(map[string]string, len(foldedMonth))
	for k, v := range foldedMonth {
		m[stripMarks(k)] = v
	}
	return m
}()

// stripMarks removes combining marks and maps dotless i to i. Transformers
// carry state, so a new chain is built per call.
func stripMarks(s string) string {
	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		runes.Map(func(r rune) rune {
			if r == 'ı' {
				return 'i'
			}
			return r
		}),
		norm.NFC,
	)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// turkishLower folds with dotted/dotless i rules. Casers are not safe for
// concurrent use.
func turkishLower(s string) string {
	return cases.Lower(language.Turkish).String(s)
}

// Month maps a Turkish month name to "01".."12". Unknown names map to "01".
func Month(name string) (string, bool) {
	name = norm.NFC.String(name)
	if mm, ok := turkishMonths[name]; ok {
		return mm, true
	}
	lower := turkishLower(name)
	if mm, ok := foldedMonth[lower]; ok {
		return mm, true
	}
	if mm, ok := asciiMonth[stripMarks(lower)]; ok {
		return mm, true
	}
	return "01", false
}

// Date converts "5 Mart 2024" to "2024-03-05". Input that is not exactly
// a 1-2 digit day, a month name and a 4 digit year yields fallback. An
// unknown month name still produces a date, in January, but reports
// ok=false so the field is counted as defaulted.
func Date(s, fallback string) (string, bool) {
	parts := strings.Fields(s)
	if len(parts) != 3 {
		return fallback, false
	}
	day, year := parts[0], parts[2]
	if !digits(day, 1, 2) || !digits(year, 4, 4) {
		return fallback, false
	}
	if len(day) == 1 {
		day = "0" + day
	}
	mm, ok := Month(parts[1])
	return year + "-" + mm + "-" + day, ok
}

// digits reports whether s is between lo and hi ASCII digits long.
func digits(s string, lo, hi int) bool {
	if len(s) < lo || len(s) > hi {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
