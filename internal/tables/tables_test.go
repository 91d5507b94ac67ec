package tables

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jusunglee/singlish/internal/transliteration"
)

func TestLoadBuiltin(t *testing.T) {
	tbl, err := Load()
	require.NoError(t, err)
	assert.NotEmpty(t, tbl.Rules)
	assert.NotEmpty(t, tbl.Dictionary)
	assert.Contains(t, tbl.PassThrough, "whatsapp")

	e, err := transliteration.LoadTables(tbl)
	require.NoError(t, err)

	st := e.Stats()
	assert.Positive(t, st.Rules[transliteration.Sinhala])
	assert.Positive(t, st.Rules[transliteration.Tamil])
	assert.True(t, e.HasKey("gedara", transliteration.Sinhala))
	assert.True(t, e.HasKey("vanakkam", transliteration.Tamil))
}

func TestSchemeExpand(t *testing.T) {
	no := false
	sch := Scheme{
		Script: transliteration.Sinhala,
		Virama: "්",
		Vowels: []Vowel{
			{Roman: "a", Independent: "අ"},
			{Roman: "aa", Independent: "ආ", Sign: "ා"},
		},
		Consonants: []Consonant{
			{Roman: "k", Letter: "ක"},
			{Roman: "nd", Letter: "ඳ", Bare: &no},
		},
		Clusters: []Cluster{{Roman: "r", Join: "්‍ර"}},
		Rules: []transliteration.RuleEntry{
			{Pattern: "i", Replacement: "යි", Priority: 10},
		},
	}

	got := map[string]string{}
	for _, r := range sch.Expand() {
		assert.Equal(t, transliteration.Sinhala, r.Script)
		got[r.Pattern] = r.Replacement
	}
	assert.Equal(t, map[string]string{
		"a":     "අ",
		"aa":    "ආ",
		"k":     "ක්",
		"ka":    "ක",
		"kaa":   "කා",
		"kra":   "ක්‍ර",
		"kraa":  "ක්‍රා",
		"nda":   "ඳ",
		"ndaa":  "ඳා",
		"ndra":  "ඳ්‍ර",
		"ndraa": "ඳ්‍රා",
		"i":     "යි",
	}, got)
}

func TestLoadFS(t *testing.T) {
	fsys := fstest.MapFS{
		"tamil.yaml": {Data: []byte(`
script: tamil
virama: "்"
vowels:
  - {roman: a, independent: "அ", sign: ""}
consonants:
  - {roman: k, letter: "க"}
rules:
  - pattern: n
    replacement: "ன்"
    context: {position: end}
`)},
		"dictionary.yaml": {Data: []byte("tamil:\n  vanakkam: வணக்கம்\n")},
		"passthrough.yaml": {Data: []byte("- zoom\n")},
	}

	tbl, err := LoadFS(fsys)
	require.NoError(t, err)
	assert.Len(t, tbl.Rules, 4)
	assert.Equal(t, []transliteration.DictionaryEntry{
		{Key: "vanakkam", Script: transliteration.Tamil, Output: "வணக்கம்"},
	}, tbl.Dictionary)
	assert.Equal(t, []string{"zoom"}, tbl.PassThrough)

	var endRule transliteration.RuleEntry
	for _, r := range tbl.Rules {
		if r.Pattern == "n" {
			endRule = r
		}
	}
	assert.Equal(t, transliteration.EndPosition, endRule.Context.Position)
	assert.Equal(t, transliteration.Tamil, endRule.Script)
}

func TestLoadFSErrors(t *testing.T) {
	tests := []struct {
		name string
		fsys fstest.MapFS
	}{
		{"script mismatch", fstest.MapFS{"sinhala.yaml": {Data: []byte("script: tamil\n")}}},
		{"bad yaml", fstest.MapFS{"passthrough.yaml": {Data: []byte("{{{")}}},
		{"unknown dictionary script", fstest.MapFS{"dictionary.yaml": {Data: []byte("hindi:\n  a: b\n")}}},
		{"bad context", fstest.MapFS{"sinhala.yaml": {Data: []byte("script: sinhala\nrules:\n  - {pattern: a, replacement: x, context: {preceding: glide}}\n")}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFS(tt.fsys)
			assert.Error(t, err)
		})
	}
}

func TestWithWordsDoesNotAlias(t *testing.T) {
	base, err := Load()
	require.NoError(t, err)
	n := len(base.Dictionary)

	extra := WithWords(base, transliteration.DictionaryEntry{Key: "kohomada", Script: transliteration.Sinhala, Output: "කොහොමද"})
	assert.Len(t, extra.Dictionary, n+1)
	assert.Len(t, base.Dictionary, n)

	other := WithWords(base, transliteration.DictionaryEntry{Key: "hondai", Script: transliteration.Sinhala, Output: "හොඳයි"})
	assert.Equal(t, "kohomada", extra.Dictionary[n].Key)
	assert.Equal(t, "hondai", other.Dictionary[n].Key)

	_, err = transliteration.LoadTables(extra)
	assert.NoError(t, err)
}
