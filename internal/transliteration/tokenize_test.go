package transliteration

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tokenWant struct {
	kind Kind
	text string
}

func wants(toks []Token) []tokenWant {
	out := make([]tokenWant, len(toks))
	for i, tok := range toks {
		out[i] = tokenWant{tok.Kind, tok.Text}
	}
	return out
}

func TestTokenizeKinds(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []tokenWant
	}{
		{
			name:  "currency abbreviation",
			input: "mata Rs. 7500 oonee",
			want: []tokenWant{
				{Word, "mata"}, {Whitespace, " "}, {Currency, "Rs."}, {Whitespace, " "},
				{Number, "7500"}, {Whitespace, " "}, {Word, "oonee"},
			},
		},
		{
			name:  "time",
			input: "11.59 PM",
			want:  []tokenWant{{Number, "11.59"}, {Whitespace, " "}, {Word, "PM"}},
		},
		{
			name:  "number with suffix",
			input: "kotas 430k",
			want:  []tokenWant{{Word, "kotas"}, {Whitespace, " "}, {Number, "430k"}},
		},
		{
			name:  "ordinal and clock suffixes",
			input: "21st 5pm",
			want:  []tokenWant{{Number, "21st"}, {Whitespace, " "}, {Number, "5pm"}},
		},
		{
			name:  "word glued to number",
			input: "2mata 7500rupiyal",
			want: []tokenWant{
				{Number, "2"}, {Word, "mata"}, {Whitespace, " "},
				{Number, "7500"}, {Word, "rupiyal"},
			},
		},
		{
			name:  "currency sign",
			input: "$50",
			want:  []tokenWant{{Currency, "$50"}},
		},
		{
			name:  "punctuation runs",
			input: "ela machan! supiri!!",
			want: []tokenWant{
				{Word, "ela"}, {Whitespace, " "}, {Word, "machan"}, {Punctuation, "!"},
				{Whitespace, " "}, {Word, "supiri"}, {Punctuation, "!!"},
			},
		},
		{
			name:  "line breaks",
			input: "a\r\nb\nc",
			want: []tokenWant{
				{Word, "a"}, {LineBreak, "\r\n"}, {Word, "b"}, {LineBreak, "\n"}, {Word, "c"},
			},
		},
		{
			name:  "script boundary",
			input: "abcමම",
			want:  []tokenWant{{Word, "abc"}, {Word, "මම"}},
		},
		{
			name:  "symbol",
			input: "it's",
			want:  []tokenWant{{Word, "it"}, {Symbol, "'"}, {Word, "s"}},
		},
		{
			name:  "bare currency code is a word",
			input: "rs kiyala",
			want:  []tokenWant{{Word, "rs"}, {Whitespace, " "}, {Word, "kiyala"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, wants(Tokenize(tt.input, nil)))
		})
	}
}

func TestTokenizePassThrough(t *testing.T) {
	pass := NewPassThroughSet("thanks", "WhatsApp", "zoom")
	toks := Tokenize("Thanks මම ZOOM SMS HARI oya", pass)

	got := map[string]bool{}
	for _, tok := range toks {
		if tok.Kind == Word {
			got[tok.Text] = tok.PassThrough
		}
	}
	assert.Equal(t, map[string]bool{
		"Thanks": true,
		"මම":     true,
		"ZOOM":   true,
		"SMS":    true,
		"HARI":   false,
		"oya":    false,
	}, got)
}

func TestTokenizeReproducesInput(t *testing.T) {
	for _, input := range []string{
		"machan, mata meeting ekak thiyenne Zoom eke. NIC eka gena enna.",
		"mata Rs. 7500 oonee dhesaembar 31 11.59 PM venakota",
		"line one\r\nline two\n\nend",
		"ඔයා  enavadha?",
	} {
		var b strings.Builder
		for _, tok := range Tokenize(input, nil) {
			b.WriteString(tok.Text)
		}
		assert.Equal(t, input, b.String())
	}
}

func TestTokenizeOffsets(t *testing.T) {
	toks := Tokenize("මම gedara", nil)
	require.Len(t, toks, 3)
	assert.Equal(t, 0, toks[0].Offset)
	assert.Equal(t, len("මම"), toks[1].Offset)
	assert.Equal(t, len("මම "), toks[2].Offset)
}
