package transliteration

import (
	"fmt"
	"strings"
	"unicode"
)

// Script is a target script the engine can convert into.
type Script int

const (
	Sinhala Script = iota + 1
	Tamil
)

// Scripts lists every supported target script.
var Scripts = []Script{Sinhala, Tamil}

func (s Script) String() string {
	switch s {
	case Sinhala:
		return "sinhala"
	case Tamil:
		return "tamil"
	default:
		return fmt.Sprintf("script(%d)", int(s))
	}
}

func (s Script) valid() bool {
	return s == Sinhala || s == Tamil
}

// ParseScript accepts the script name or its ISO 639-1 code.
func ParseScript(name string) (Script, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sinhala", "si", "":
		return Sinhala, nil
	case "tamil", "ta":
		return Tamil, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownScript, name)
	}
}

// MarshalText lets scripts round-trip through JSON and YAML as names.
func (s Script) MarshalText() ([]byte, error) {
	if !s.valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownScript, int(s))
	}
	return []byte(s.String()), nil
}

func (s *Script) UnmarshalText(text []byte) error {
	parsed, err := ParseScript(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// isLatin reports whether r is a letter of the romanized input alphabet.
func isLatin(r rune) bool {
	return unicode.Is(unicode.Latin, r)
}

// isJoiner covers ZWJ/ZWNJ, which live inside Sinhala conjuncts.
func isJoiner(r rune) bool {
	return r == '\u200d' || r == '\u200c'
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsMark(r) || isJoiner(r)
}
