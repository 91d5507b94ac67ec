package transliteration

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// PassThroughSet holds words that are never transliterated, keyed by their
// folded form.
type PassThroughSet map[string]struct{}

// NewPassThroughSet builds a set from raw words.
func NewPassThroughSet(words ...string) PassThroughSet {
	p := make(PassThroughSet, len(words))
	for _, w := range words {
		if k := foldKey(strings.TrimSpace(w)); k != "" {
			p[k] = struct{}{}
		}
	}
	return p
}

func (p PassThroughSet) Contains(word string) bool {
	_, ok := p[foldKey(word)]
	return ok
}

// currencyCodes are abbreviations tokenized as Currency when a number follows.
var currencyCodes = map[string]bool{
	"rs":  true,
	"lkr": true,
	"usd": true,
	"inr": true,
	"eur": true,
	"gbp": true,
}

// Tokenize splits normalized text into tokens. Concatenating the Text of
// every token reproduces the input exactly.
func Tokenize(text string, passThrough PassThroughSet) []Token {
	rs := []rune(text)
	offs := runeOffsets(text, len(rs))

	var toks []Token
	emit := func(kind Kind, i, j int) {
		toks = append(toks, Token{Kind: kind, Text: text[offs[i]:offs[j]], Offset: offs[i]})
	}

	for i := 0; i < len(rs); {
		r := rs[i]
		switch {
		case r == '\r' && i+1 < len(rs) && rs[i+1] == '\n':
			emit(LineBreak, i, i+2)
			i += 2
		case r == '\n' || r == '\r':
			emit(LineBreak, i, i+1)
			i++
		case unicode.IsSpace(r):
			j := i + 1
			for j < len(rs) && isHorizontalSpace(rs[j]) {
				j++
			}
			emit(Whitespace, i, j)
			i = j
		case unicode.IsDigit(r):
			j := scanNumber(rs, i)
			emit(Number, i, j)
			i = j
		case isCurrencySign(r) && i+1 < len(rs) && unicode.IsDigit(rs[i+1]):
			j := scanNumber(rs, i+1)
			emit(Currency, i, j)
			i = j
		case isWordRune(r):
			j := scanWord(rs, i)
			if k, ok := currencyAbbrev(rs, i, j); ok {
				emit(Currency, i, k)
				i = k
				continue
			}
			emit(Word, i, j)
			tok := &toks[len(toks)-1]
			tok.PassThrough = isPassThrough(rs[i:j], passThrough)
			i = j
		case isPunct(r):
			j := i + 1
			for j < len(rs) && isPunct(rs[j]) {
				j++
			}
			emit(Punctuation, i, j)
			i = j
		default:
			emit(Symbol, i, i+1)
			i++
		}
	}
	return toks
}

// runeOffsets returns the byte offset of every rune plus the total length.
func runeOffsets(s string, n int) []int {
	offs := make([]int, 0, n+1)
	for i := 0; i < len(s); {
		offs = append(offs, i)
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return append(offs, len(s))
}

// numberSuffixes are the unit and ordinal forms that stay glued to a number.
// Any other letters after digits start a new word (2mata -> 2 mata).
var numberSuffixes = map[string]bool{
	"k": true, "m": true,
	"st": true, "nd": true, "rd": true, "th": true,
	"am": true, "pm": true,
}

// scanNumber consumes digits with inner separators (10:30, 1,500.50),
// a known letter suffix (430k, 5pm, 21st) and a trailing percent sign.
func scanNumber(rs []rune, i int) int {
	j := i
	for j < len(rs) {
		switch {
		case unicode.IsDigit(rs[j]):
			j++
			continue
		case j > i && strings.ContainsRune(numberJoiners, rs[j]) && j+1 < len(rs) && unicode.IsDigit(rs[j+1]):
			j++
			continue
		}
		break
	}
	k := j
	for k < len(rs) && isASCIILetter(rs[k]) {
		k++
	}
	if k > j && numberSuffixes[strings.ToLower(string(rs[j:k]))] {
		j = k
	}
	if j < len(rs) && rs[j] == '%' {
		j++
	}
	return j
}

// scanWord consumes letters and marks, stopping where the text switches
// between Latin and another script. Marks and joiners follow whatever
// precedes them.
func scanWord(rs []rune, i int) int {
	latin := isLatin(rs[i])
	j := i + 1
	for j < len(rs) && isWordRune(rs[j]) {
		r := rs[j]
		if unicode.IsLetter(r) && isLatin(r) != latin {
			break
		}
		j++
	}
	return j
}

// currencyAbbrev reports whether rs[i:j] is a currency code (Rs, LKR, ...)
// followed, optionally after a dot and spaces, by a digit.
func currencyAbbrev(rs []rune, i, j int) (int, bool) {
	if !currencyCodes[strings.ToLower(string(rs[i:j]))] {
		return 0, false
	}
	k := j
	if k < len(rs) && rs[k] == '.' {
		k++
	}
	m := k
	for m < len(rs) && isHorizontalSpace(rs[m]) {
		m++
	}
	if m < len(rs) && unicode.IsDigit(rs[m]) {
		return k, true
	}
	return 0, false
}

func isPassThrough(word []rune, passThrough PassThroughSet) bool {
	for _, r := range word {
		if unicode.IsLetter(r) && !isLatin(r) {
			return true
		}
	}
	return passThrough.Contains(string(word)) || isAcronym(word)
}

// isAcronym matches all-caps words without vowels, like NIC or SMS.
func isAcronym(word []rune) bool {
	if len(word) < 2 {
		return false
	}
	for _, r := range word {
		if !unicode.IsUpper(r) || isVowel(r) {
			return false
		}
	}
	return true
}

func isASCIILetter(r rune) bool {
	return ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z')
}

func isVowel(r rune) bool {
	switch unicode.ToLower(r) {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}
