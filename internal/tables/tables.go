// Package tables holds the built-in conversion data and turns it into
// transliteration.Tables.
//
// The data directory has one scheme file per script (sinhala.yaml,
// tamil.yaml), a dictionary.yaml of whole-word overrides and a
// passthrough.yaml of words kept in Latin.
package tables

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"slices"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/jusunglee/singlish/internal/transliteration"
)

//go:embed data/*.yaml
var embedded embed.FS

// Default returns the embedded data directory.
func Default() fs.FS {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		panic(err)
	}
	return sub
}

// Load reads the embedded tables.
func Load() (transliteration.Tables, error) {
	return LoadFS(Default())
}

// LoadFS reads tables from fsys. Scheme files that are missing are skipped;
// dictionary.yaml and passthrough.yaml are optional.
func LoadFS(fsys fs.FS) (transliteration.Tables, error) {
	var t transliteration.Tables

	for _, s := range transliteration.Scripts {
		var sch Scheme
		found, err := decodeFile(fsys, s.String()+".yaml", &sch)
		if err != nil {
			return t, err
		}
		if !found {
			continue
		}
		if sch.Script != s {
			return t, fmt.Errorf("%s.yaml declares script %s", s, sch.Script)
		}
		t.Rules = append(t.Rules, sch.Expand()...)
	}

	var dict map[string]map[string]string
	if _, err := decodeFile(fsys, "dictionary.yaml", &dict); err != nil {
		return t, err
	}
	names := lo.Keys(dict)
	slices.Sort(names)
	for _, name := range names {
		s, err := transliteration.ParseScript(name)
		if err != nil {
			return t, fmt.Errorf("dictionary.yaml: %w", err)
		}
		words := dict[name]
		keys := lo.Keys(words)
		slices.Sort(keys)
		for _, k := range keys {
			t.Dictionary = append(t.Dictionary, transliteration.DictionaryEntry{Key: k, Script: s, Output: words[k]})
		}
	}

	if _, err := decodeFile(fsys, "passthrough.yaml", &t.PassThrough); err != nil {
		return t, err
	}
	return t, nil
}

func decodeFile(fsys fs.FS, name string, v any) (bool, error) {
	data, err := fs.ReadFile(fsys, name)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", name, err)
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("parsing %s: %w", name, err)
	}
	return true, nil
}

// WithWords returns a copy of t with extra dictionary entries appended.
// Conflicts are left for transliteration.LoadTables to report.
func WithWords(t transliteration.Tables, words ...transliteration.DictionaryEntry) transliteration.Tables {
	out := t
	out.Dictionary = append(slices.Clip(t.Dictionary), words...)
	return out
}
