package transliteration

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"unicode"
)

// CharClass constrains the character next to a rule match.
type CharClass int

const (
	AnyClass CharClass = iota
	VowelClass
	ConsonantClass
)

func (c CharClass) String() string {
	switch c {
	case VowelClass:
		return "vowel"
	case ConsonantClass:
		return "consonant"
	default:
		return "any"
	}
}

func (c *CharClass) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "", "any":
		*c = AnyClass
	case "vowel":
		*c = VowelClass
	case "consonant":
		*c = ConsonantClass
	default:
		return fmt.Errorf("unknown character class %q", text)
	}
	return nil
}

// Position pins a rule to the start or end of a word.
type Position int

const (
	AnyPosition Position = iota
	StartPosition
	EndPosition
)

func (p Position) String() string {
	switch p {
	case StartPosition:
		return "start"
	case EndPosition:
		return "end"
	default:
		return "any"
	}
}

func (p *Position) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "", "any":
		*p = AnyPosition
	case "start":
		*p = StartPosition
	case "end":
		*p = EndPosition
	default:
		return fmt.Errorf("unknown position %q", text)
	}
	return nil
}

// RuleContext is the condition under which a rule may fire.
type RuleContext struct {
	Preceding CharClass `yaml:"preceding"`
	Following CharClass `yaml:"following"`
	Position  Position  `yaml:"position"`
}

// holds checks the context for a match of n runes at start.
func (c RuleContext) holds(src []rune, start, n int) bool {
	end := start + n
	switch c.Position {
	case StartPosition:
		if start != 0 {
			return false
		}
	case EndPosition:
		if end != len(src) {
			return false
		}
	}
	if c.Preceding != AnyClass && (start == 0 || classOf(src[start-1]) != c.Preceding) {
		return false
	}
	if c.Following != AnyClass && (end == len(src) || classOf(src[end]) != c.Following) {
		return false
	}
	return true
}

func classOf(r rune) CharClass {
	switch {
	case isVowel(r):
		return VowelClass
	case unicode.IsLetter(r):
		return ConsonantClass
	default:
		return AnyClass
	}
}

// RuleEntry maps a Latin pattern to target-script text.
type RuleEntry struct {
	Script      Script      `yaml:"script"`
	Pattern     string      `yaml:"pattern"`
	Context     RuleContext `yaml:"context"`
	Replacement string      `yaml:"replacement"`
	Priority    int         `yaml:"priority"`
}

func (r RuleEntry) String() string {
	return fmt.Sprintf("%s %q -> %q", r.Script, r.Pattern, r.Replacement)
}

// RuleTable is the rule set for one script, indexed by pattern.
type RuleTable struct {
	byPattern map[string][]RuleEntry
	maxLen    int
	size      int
	// significant holds letters whose case changes meaning, derived from the
	// uppercase letters that appear in any pattern.
	significant map[rune]bool
}

func newRuleTable(rules []RuleEntry) *RuleTable {
	t := &RuleTable{
		byPattern:   make(map[string][]RuleEntry),
		significant: make(map[rune]bool),
		size:        len(rules),
	}
	for _, r := range rules {
		t.byPattern[r.Pattern] = append(t.byPattern[r.Pattern], r)
		if n := len([]rune(r.Pattern)); n > t.maxLen {
			t.maxLen = n
		}
		for _, c := range r.Pattern {
			if unicode.IsUpper(c) {
				t.significant[c] = true
			}
		}
	}
	for _, entries := range t.byPattern {
		slices.SortStableFunc(entries, func(a, b RuleEntry) int {
			return cmp.Compare(b.Priority, a.Priority)
		})
	}
	return t
}

// Len returns the number of rules in the table.
func (t *RuleTable) Len() int {
	if t == nil {
		return 0
	}
	return t.size
}

// Apply converts a word left to right. At each position the best rule wins:
// higher priority first, then the longer pattern. A position no rule covers
// is copied verbatim and counted as a fallback.
func (t *RuleTable) Apply(word string) (out string, matched, fallbacks int) {
	orig := []rune(word)
	src := t.matchingForm(orig)

	var b strings.Builder
	for i := 0; i < len(src); {
		rule, n, ok := t.match(src, i)
		if !ok {
			b.WriteRune(orig[i])
			fallbacks++
			i++
			continue
		}
		b.WriteString(rule.Replacement)
		matched += n
		i += n
	}
	return b.String(), matched, fallbacks
}

func (t *RuleTable) match(src []rune, i int) (RuleEntry, int, bool) {
	var best RuleEntry
	bestLen := 0
	for n := min(t.maxLen, len(src)-i); n > 0; n-- {
		for _, r := range t.byPattern[string(src[i:i+n])] {
			if !r.Context.holds(src, i, n) {
				continue
			}
			if bestLen == 0 || r.Priority > best.Priority {
				best, bestLen = r, n
			}
			break
		}
	}
	return best, bestLen, bestLen > 0
}

// matchingForm folds case except on significant letters. Shouted and
// capitalized words (OYA, Oya) fold entirely since their capitals are not
// notation. Folding is per rune so indices line up with the original.
func (t *RuleTable) matchingForm(word []rune) []rune {
	fold := isAllUpper(word) || isTitleCase(word)
	out := make([]rune, len(word))
	for i, r := range word {
		if !fold && t.significant[r] {
			out[i] = r
			continue
		}
		out[i] = unicode.ToLower(r)
	}
	return out
}

func isAllUpper(word []rune) bool {
	letters := 0
	for _, r := range word {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			letters++
		}
	}
	return letters > 0
}

func isTitleCase(word []rune) bool {
	if len(word) < 2 || !unicode.IsUpper(word[0]) {
		return false
	}
	for _, r := range word[1:] {
		if unicode.IsUpper(r) {
			return false
		}
	}
	return true
}
