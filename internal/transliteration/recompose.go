package transliteration

import "strings"

// Recompose joins converted tokens back into text. Tokens carry their own
// whitespace and line breaks, so spacing is reproduced exactly.
func Recompose(conversions []Conversion) string {
	n := 0
	for _, c := range conversions {
		n += len(c.Result.Output)
	}
	var b strings.Builder
	b.Grow(n)
	for _, c := range conversions {
		b.WriteString(c.Result.Output)
	}
	return b.String()
}
