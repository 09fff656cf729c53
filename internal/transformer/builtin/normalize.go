package builtin

import "strings"

// textReplacer maps a non-breaking space, and its UTF-8-read-as-Latin-1
// mojibake, to a plain space.
var textReplacer = strings.NewReplacer("\u00c2\u00a0", " ", "\u00a0", " ")

// Text cleans a free-text cell.
func Text(s string) string {
	return strings.TrimSpace(textReplacer.Replace(s))
}
