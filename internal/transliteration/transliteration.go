// Package transliteration converts romanized colloquial Sinhala ("Singlish")
// into Sinhala or Tamil script.
//
// Input flows through Normalize, Tokenize, a per-word resolver (dictionary
// first, then phonetic rules) and Recompose. Words that cannot be resolved
// are kept in Latin, so Convert always produces output.
package transliteration

import (
	"fmt"
	"strings"
	"unicode"
)

// Tables is everything an Engine is built from.
type Tables struct {
	Dictionary  []DictionaryEntry
	Rules       []RuleEntry
	PassThrough []string
}

// Engine converts text. It is immutable after LoadTables and safe for
// concurrent use.
type Engine struct {
	dictionaries map[Script]*Dictionary
	rules        map[Script]*RuleTable
	resolvers    map[Script]resolver
	passThrough  PassThroughSet
}

// Stats summarizes loaded table sizes.
type Stats struct {
	DictionaryEntries map[Script]int `json:"dictionary_entries"`
	Rules             map[Script]int `json:"rules"`
	PassThrough       int            `json:"pass_through"`
}

// LoadTables validates the tables and builds an Engine. Every problem is
// reported in one *InitializationError; no entry is silently dropped.
func LoadTables(t Tables) (*Engine, error) {
	var problems []error

	dicts := make(map[Script]map[string]string)
	for _, d := range t.Dictionary {
		if !d.Script.valid() {
			problems = append(problems, fmt.Errorf("dictionary key %q: %w", d.Key, ErrUnknownScript))
			continue
		}
		key := foldKey(strings.TrimSpace(d.Key))
		if key == "" {
			problems = append(problems, fmt.Errorf("%s dictionary: %w", d.Script, ErrEmptyKey))
			continue
		}
		if d.Output == "" {
			problems = append(problems, fmt.Errorf("%s dictionary key %q: %w", d.Script, d.Key, ErrEmptyOutput))
			continue
		}
		if dicts[d.Script] == nil {
			dicts[d.Script] = make(map[string]string)
		}
		if prev, dup := dicts[d.Script][key]; dup {
			problems = append(problems, fmt.Errorf("%w: %s key %q (%q and %q)", ErrDuplicateKey, d.Script, key, prev, d.Output))
			continue
		}
		dicts[d.Script][key] = d.Output
	}

	passThrough := make(PassThroughSet, len(t.PassThrough))
	for _, w := range t.PassThrough {
		key := foldKey(strings.TrimSpace(w))
		if key == "" {
			problems = append(problems, fmt.Errorf("pass-through list: %w", ErrEmptyKey))
			continue
		}
		if _, dup := passThrough[key]; dup {
			problems = append(problems, fmt.Errorf("%w: pass-through word %q", ErrDuplicateKey, key))
			continue
		}
		for _, s := range Scripts {
			if _, ok := dicts[s][key]; ok {
				problems = append(problems, fmt.Errorf("%w: %q (%s)", ErrPassThroughConflict, key, s))
			}
		}
		passThrough[key] = struct{}{}
	}

	type ruleKey struct {
		script  Script
		pattern string
		ctx     RuleContext
	}
	seen := make(map[ruleKey]RuleEntry)
	rules := make(map[Script][]RuleEntry)
	for _, r := range t.Rules {
		if err := validateRule(r); err != nil {
			problems = append(problems, err)
			continue
		}
		k := ruleKey{r.Script, r.Pattern, r.Context}
		if prev, dup := seen[k]; dup {
			problems = append(problems, fmt.Errorf("%w: %s and %q", ErrConflictingRule, prev, r.Replacement))
			continue
		}
		seen[k] = r
		rules[r.Script] = append(rules[r.Script], r)
	}

	if len(problems) > 0 {
		return nil, &InitializationError{Problems: problems}
	}

	e := &Engine{
		dictionaries: make(map[Script]*Dictionary),
		rules:        make(map[Script]*RuleTable),
		resolvers:    make(map[Script]resolver),
		passThrough:  passThrough,
	}
	for _, s := range Scripts {
		e.dictionaries[s] = newDictionary(dicts[s])
		e.rules[s] = newRuleTable(rules[s])
		e.resolvers[s] = newResolver(e.dictionaries[s], e.rules[s])
	}
	return e, nil
}

func validateRule(r RuleEntry) error {
	if !r.Script.valid() {
		return fmt.Errorf("rule %q: %w", r.Pattern, ErrUnknownScript)
	}
	if r.Pattern == "" {
		return fmt.Errorf("%s rule -> %q: %w", r.Script, r.Replacement, ErrEmptyPattern)
	}
	for _, c := range r.Pattern {
		if !unicode.IsLetter(c) || !isLatin(c) {
			return fmt.Errorf("%s rule %q: %w", r.Script, r.Pattern, ErrInvalidPattern)
		}
	}
	if r.Replacement == "" {
		return fmt.Errorf("%s rule %q: %w", r.Script, r.Pattern, ErrEmptyOutput)
	}
	return nil
}

// Convert transliterates input into script. It never fails: unresolvable
// words stay in Latin and an unknown script returns input unchanged.
func (e *Engine) Convert(input string, script Script) (out string) {
	if !script.valid() {
		return input
	}
	defer func() {
		if r := recover(); r != nil {
			out = input
		}
	}()
	return Recompose(e.Trace(input, script))
}

// Trace runs the pipeline and returns every token with its result.
func (e *Engine) Trace(input string, script Script) []Conversion {
	tokens := Tokenize(Normalize(input), e.passThrough)
	r, ok := e.resolvers[script]

	out := make([]Conversion, len(tokens))
	for i, tok := range tokens {
		if !ok {
			out[i] = Conversion{Token: tok, Result: verbatim(tok)}
			continue
		}
		out[i] = Conversion{Token: tok, Result: r.resolve(tok)}
	}
	return out
}

func (e *Engine) Stats() Stats {
	st := Stats{
		DictionaryEntries: make(map[Script]int, len(Scripts)),
		Rules:             make(map[Script]int, len(Scripts)),
		PassThrough:       len(e.passThrough),
	}
	for _, s := range Scripts {
		st.DictionaryEntries[s] = e.dictionaries[s].Len()
		st.Rules[s] = e.rules[s].Len()
	}
	return st
}

// HasKey reports whether word already has a dictionary entry for script or
// is on the pass-through list.
func (e *Engine) HasKey(word string, script Script) bool {
	if e.passThrough.Contains(word) {
		return true
	}
	_, ok := e.dictionaries[script].Lookup(foldKey(strings.TrimSpace(word)))
	return ok
}
