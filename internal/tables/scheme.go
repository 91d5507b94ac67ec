package tables

import (
	"github.com/samber/lo"

	"github.com/jusunglee/singlish/internal/transliteration"
)

// Scheme describes an abugida romanization compactly. Expand turns it into
// one rule per consonant, vowel and cluster combination.
type Scheme struct {
	Script     transliteration.Script      `yaml:"script"`
	Virama     string                      `yaml:"virama"`
	Vowels     []Vowel                     `yaml:"vowels"`
	Consonants []Consonant                 `yaml:"consonants"`
	Clusters   []Cluster                   `yaml:"clusters"`
	Rules      []transliteration.RuleEntry `yaml:"rules"`
}

// Vowel has an independent letter and a dependent sign. The inherent
// vowel has an empty sign.
type Vowel struct {
	Roman       string `yaml:"roman"`
	Independent string `yaml:"independent"`
	Sign        string `yaml:"sign"`
}

// Consonant is a base letter. Bare controls whether the consonant alone
// produces the letter with a virama; nil means true.
type Consonant struct {
	Roman  string `yaml:"roman"`
	Letter string `yaml:"letter"`
	Bare   *bool  `yaml:"bare"`
}

func (c Consonant) bare() bool {
	return c.Bare == nil || *c.Bare
}

// Cluster is a medial form joined between a consonant and its vowel sign,
// like the Sinhala rakaransaya.
type Cluster struct {
	Roman string `yaml:"roman"`
	Join  string `yaml:"join"`
}

// Expand generates the scheme's rules. Explicit rules come last and keep
// their own priority and context.
func (s Scheme) Expand() []transliteration.RuleEntry {
	rule := func(pattern, replacement string) transliteration.RuleEntry {
		return transliteration.RuleEntry{Script: s.Script, Pattern: pattern, Replacement: replacement}
	}

	rules := lo.Map(s.Vowels, func(v Vowel, _ int) transliteration.RuleEntry {
		return rule(v.Roman, v.Independent)
	})
	for _, c := range s.Consonants {
		if c.bare() {
			rules = append(rules, rule(c.Roman, c.Letter+s.Virama))
		}
		for _, v := range s.Vowels {
			rules = append(rules, rule(c.Roman+v.Roman, c.Letter+v.Sign))
		}
		for _, cl := range s.Clusters {
			if cl.Roman == c.Roman {
				continue
			}
			for _, v := range s.Vowels {
				rules = append(rules, rule(c.Roman+cl.Roman+v.Roman, c.Letter+cl.Join+v.Sign))
			}
		}
	}

	explicit := lo.Map(s.Rules, func(r transliteration.RuleEntry, _ int) transliteration.RuleEntry {
		r.Script = s.Script
		return r
	})
	return append(rules, explicit...)
}
