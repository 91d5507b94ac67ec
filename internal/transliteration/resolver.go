package transliteration

// strategy is one way of converting a word. It reports false when it has
// nothing to offer so the next strategy can try.
type strategy interface {
	resolve(tok Token) (ConversionResult, bool)
}

type dictionaryStrategy struct {
	dict *Dictionary
}

func (s dictionaryStrategy) resolve(tok Token) (ConversionResult, bool) {
	out, ok := s.dict.Lookup(tok.Key())
	if !ok {
		return ConversionResult{}, false
	}
	return ConversionResult{Output: out, Matched: true, Source: SourceDictionary}, true
}

type ruleStrategy struct {
	rules *RuleTable
}

func (s ruleStrategy) resolve(tok Token) (ConversionResult, bool) {
	if s.rules == nil {
		return ConversionResult{}, false
	}
	out, matched, fallbacks := s.rules.Apply(tok.Text)
	switch {
	case matched == 0:
		return ConversionResult{}, false
	case fallbacks == 0:
		return ConversionResult{Output: out, Matched: true, Source: SourceRules}, true
	case isAllUpper([]rune(tok.Text)):
		// Half-converted acronyms read worse than the original.
		return ConversionResult{}, false
	default:
		return ConversionResult{Output: out, Source: SourcePartial}, true
	}
}

// resolver tries its strategies in order; the first to answer wins.
type resolver struct {
	strategies []strategy
}

func newResolver(dict *Dictionary, rules *RuleTable) resolver {
	return resolver{strategies: []strategy{
		dictionaryStrategy{dict: dict},
		ruleStrategy{rules: rules},
	}}
}

func (r resolver) resolve(tok Token) ConversionResult {
	if !tok.candidate() {
		return verbatim(tok)
	}
	for _, s := range r.strategies {
		if res, ok := s.resolve(tok); ok {
			return res
		}
	}
	return verbatim(tok)
}

func verbatim(tok Token) ConversionResult {
	src := SourceLiteral
	if tok.Kind == Word {
		src = SourceVerbatim
	}
	return ConversionResult{Output: tok.Text, Source: src}
}
