package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/jusunglee/singlish/internal/tables"
	"github.com/jusunglee/singlish/internal/translation"
	"github.com/jusunglee/singlish/internal/transliteration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTranslator(t *testing.T) *translation.Translator {
	t.Helper()
	base, err := tables.Load()
	require.NoError(t, err)
	tr, err := translation.NewTranslator(t.Context(), base, nil)
	require.NoError(t, err)
	return tr
}

func TestConvertLinesKeepsOrder(t *testing.T) {
	tr := newTestTranslator(t)
	lines := []string{"mama", "gedhara", "yanavaa", "oya", ""}

	results, err := convertLines(t.Context(), tr, lines, transliteration.Sinhala, 3)
	require.NoError(t, err)
	require.Len(t, results, len(lines))

	got := make([]string, len(results))
	for i, r := range results {
		got[i] = transliteration.Recompose(r)
	}
	assert.Equal(t, []string{"මම", "ගෙදර", "යනවා", "ඔය", ""}, got)
}

func TestConvertLinesTamil(t *testing.T) {
	tr := newTestTranslator(t)
	results, err := convertLines(t.Context(), tr, []string{"naan"}, transliteration.Tamil, 1)
	require.NoError(t, err)
	assert.Equal(t, "நான்", transliteration.Recompose(results[0]))
}

func TestConvertLinesCanceled(t *testing.T) {
	tr := newTestTranslator(t)
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := convertLines(ctx, tr, []string{"mama"}, transliteration.Sinhala, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReadLines(t *testing.T) {
	lines, err := readLines(strings.NewReader("mama\ngedhara\n\nyanavaa"))
	require.NoError(t, err)
	assert.Equal(t, []string{"mama", "gedhara", "", "yanavaa"}, lines)
}

func TestWriteTraceListsWordsOnly(t *testing.T) {
	tr := newTestTranslator(t)
	var buf bytes.Buffer
	writeTrace(&buf, tr.Trace("mama, gedara!", transliteration.Sinhala, "test"))

	out := buf.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "mama")
	assert.Contains(t, lines[0], "rules")
	assert.Contains(t, lines[1], "gedara")
	assert.Contains(t, lines[1], "dictionary")
	assert.NotContains(t, out, "!")
}

func TestLoadTablesDefault(t *testing.T) {
	base, err := loadTables("")
	require.NoError(t, err)
	assert.NotEmpty(t, base.Dictionary)
	assert.NotEmpty(t, base.Rules)
}
