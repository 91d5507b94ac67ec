package transliteration

import "strings"

type Kind int

const (
	Word Kind = iota + 1
	Number
	Currency
	Punctuation
	Symbol
	Whitespace
	LineBreak
)

func (k Kind) String() string {
	switch k {
	case Word:
		return "word"
	case Number:
		return "number"
	case Currency:
		return "currency"
	case Punctuation:
		return "punctuation"
	case Symbol:
		return "symbol"
	case Whitespace:
		return "whitespace"
	case LineBreak:
		return "linebreak"
	default:
		return "unknown"
	}
}

// Token is one classified span of normalized input. Text keeps the
// original casing; Offset is the byte offset into the normalized text.
type Token struct {
	Kind        Kind
	Text        string
	Offset      int
	PassThrough bool
}

// Key is the case-folded, repeat-collapsed form used for lookups.
func (t Token) Key() string {
	return foldKey(t.Text)
}

// candidate reports whether the resolver should attempt conversion.
func (t Token) candidate() bool {
	return t.Kind == Word && !t.PassThrough
}

// KeyOf returns the dictionary key a word is stored and looked up under.
func KeyOf(word string) string {
	return foldKey(strings.TrimSpace(word))
}

func foldKey(s string) string {
	return collapseRepeats(strings.ToLower(s))
}

// Source records which path produced a token's output.
type Source int

const (
	// SourceLiteral marks non-word tokens (numbers, punctuation, spacing).
	SourceLiteral Source = iota
	SourceDictionary
	SourceRules
	SourcePartial
	SourceVerbatim
)

func (s Source) String() string {
	switch s {
	case SourceLiteral:
		return "literal"
	case SourceDictionary:
		return "dictionary"
	case SourceRules:
		return "rules"
	case SourcePartial:
		return "partial"
	case SourceVerbatim:
		return "verbatim"
	default:
		return "unknown"
	}
}

// ConversionResult is the outcome for one token. Matched is false whenever
// any part of the token was emitted verbatim.
type ConversionResult struct {
	Output  string
	Matched bool
	Source  Source
}

// Conversion pairs a token with its result, for traces.
type Conversion struct {
	Token  Token
	Result ConversionResult
}
