package transliteration

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// minRepeatRun is the shortest run of one letter treated as emphasis.
// Doubled letters carry meaning in romanized Sinhala (aa, ee, kk) and stay.
const minRepeatRun = 3

// Normalize prepares raw input for tokenization. It composes to NFC,
// collapses Latin emphasis runs ("oyaaaaa" -> "oya") and strips symbol
// noise. Letters of other scripts are never collapsed.
// Casing and line breaks are left as they are.
func Normalize(raw string) string {
	if raw == "" {
		return raw
	}
	s := norm.NFC.String(raw)
	s = collapseRepeats(s)
	return stripNoise(s)
}

func collapseRepeats(s string) string {
	rs := []rune(s)
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(rs); {
		j := i + 1
		if unicode.IsLetter(rs[i]) && isLatin(rs[i]) {
			for j < len(rs) && sameLetter(rs[i], rs[j]) {
				j++
			}
		}
		if j-i >= minRepeatRun {
			b.WriteRune(rs[i])
		} else {
			b.WriteString(string(rs[i:j]))
		}
		i = j
	}
	return b.String()
}

func sameLetter(a, b rune) bool {
	return a == b || unicode.ToLower(a) == unicode.ToLower(b)
}

// stripNoise removes runs of unrecognized symbols. A run is kept only when
// every rune in it is recognized, or when it is part of a number (10:30,
// 2024/01/05, $50, +94). A removed run between two words becomes a single
// space; next to existing whitespace it leaves nothing behind.
func stripNoise(s string) string {
	rs := []rune(s)
	var b strings.Builder
	b.Grow(len(s))

	var last rune
	for i := 0; i < len(rs); {
		if !isSymbolRune(rs[i]) {
			b.WriteRune(rs[i])
			last = rs[i]
			i++
			continue
		}

		j := i
		for j < len(rs) && isSymbolRune(rs[j]) {
			j++
		}
		run := rs[i:j]
		var next rune
		if j < len(rs) {
			next = rs[j]
		}

		if keepSymbolRun(run, last, next) {
			b.WriteString(string(run))
			last = run[len(run)-1]
			i = j
			continue
		}

		switch {
		case last == 0 || unicode.IsSpace(last):
			for j < len(rs) && isHorizontalSpace(rs[j]) {
				j++
			}
		case next == 0 || unicode.IsSpace(next):
		default:
			b.WriteByte(' ')
			last = ' '
		}
		i = j
	}
	return b.String()
}

func keepSymbolRun(run []rune, last, next rune) bool {
	recognized := true
	for _, r := range run {
		if !isPunct(r) && !isKeptSymbol(r) {
			recognized = false
			break
		}
	}
	if recognized {
		return true
	}

	if len(run) == 1 && unicode.IsDigit(last) && unicode.IsDigit(next) && strings.ContainsRune(numberJoiners, run[0]) {
		return true
	}

	if unicode.IsDigit(next) {
		for _, r := range run {
			if !isCurrencySign(r) && r != '+' && r != '-' {
				return false
			}
		}
		return true
	}
	return false
}

const numberJoiners = "./:-,"

func isSymbolRune(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsSpace(r) && !unicode.IsMark(r) && !isJoiner(r)
}

func isPunct(r rune) bool {
	switch r {
	case '.', ',', '!', '?', ':', ';':
		return true
	}
	return false
}

func isKeptSymbol(r rune) bool {
	switch r {
	case '\'', '"', '-', '–', '—', '…', '‘', '’', '“', '”', '%':
		return true
	}
	return isCurrencySign(r)
}

func isCurrencySign(r rune) bool {
	return unicode.Is(unicode.Sc, r)
}

func isHorizontalSpace(r rune) bool {
	return r != '\n' && r != '\r' && unicode.IsSpace(r)
}
