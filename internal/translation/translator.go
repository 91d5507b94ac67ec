// Package translation owns the live conversion engine. It merges operator
// custom words from the database with the built-in tables and swaps in a
// rebuilt engine whenever they change.
package translation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode"

	"github.com/jusunglee/singlish/internal/db"
	"github.com/jusunglee/singlish/internal/metrics"
	"github.com/jusunglee/singlish/internal/tables"
	"github.com/jusunglee/singlish/internal/transliteration"
)

var (
	ErrWordExists  = errors.New("word already has an entry")
	ErrInvalidWord = errors.New("invalid custom word")
)

type Translator struct {
	base   transliteration.Tables
	repo   db.Repository
	engine atomic.Pointer[transliteration.Engine]

	// mu serializes rebuilds so two writers cannot race their swaps.
	mu sync.Mutex
}

// NewTranslator builds the first engine from base plus any custom words in
// repo. repo may be nil, in which case custom words are unavailable.
func NewTranslator(ctx context.Context, base transliteration.Tables, repo db.Repository) (*Translator, error) {
	t := &Translator{base: base, repo: repo}

	var words []db.CustomWord
	if repo != nil {
		var err error
		words, err = repo.AllCustomWords(ctx)
		if err != nil {
			return nil, fmt.Errorf("loading custom words: %w", err)
		}
	}

	e, err := t.build(words)
	if err != nil {
		return nil, err
	}
	t.store(e)
	return t, nil
}

// NewBuiltinTranslator uses the embedded tables and no database.
func NewBuiltinTranslator() (*Translator, error) {
	base, err := tables.Load()
	if err != nil {
		return nil, fmt.Errorf("loading tables: %w", err)
	}
	return NewTranslator(context.Background(), base, nil)
}

// Engine returns the active engine. Callers may hold it as long as they
// like; a reload never mutates it.
func (t *Translator) Engine() *transliteration.Engine {
	return t.engine.Load()
}

// Convert transliterates text and records metrics under caller.
func (t *Translator) Convert(text string, script transliteration.Script, caller string) string {
	return transliteration.Recompose(t.Trace(text, script, caller))
}

// Trace is Convert with the per-token breakdown.
func (t *Translator) Trace(text string, script transliteration.Script, caller string) []transliteration.Conversion {
	start := time.Now()
	trace := t.Engine().Trace(text, script)
	metrics.ConversionDuration.Observe(time.Since(start).Seconds())
	metrics.ConversionsTotal.WithLabelValues(script.String(), caller).Inc()

	for _, c := range trace {
		if c.Token.Kind == transliteration.Word {
			metrics.TokensResolved.WithLabelValues(script.String(), c.Result.Source.String()).Inc()
		}
	}
	return trace
}

type CustomWordParams struct {
	Word    string
	Script  transliteration.Script
	Output  string
	AddedBy string
}

// AddCustomWord stores a new dictionary entry and activates it. Words that
// already resolve through the dictionary or pass-through list are rejected
// with ErrWordExists.
func (t *Translator) AddCustomWord(ctx context.Context, p CustomWordParams) (db.CustomWord, error) {
	if t.repo == nil {
		return db.CustomWord{}, errors.New("custom words need a database")
	}

	key := transliteration.KeyOf(p.Word)
	output := strings.TrimSpace(p.Output)
	if err := validateWord(key, output); err != nil {
		metrics.CustomWordMutations.WithLabelValues("add", "invalid").Inc()
		return db.CustomWord{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.Engine().HasKey(key, p.Script) {
		metrics.CustomWordMutations.WithLabelValues("add", "duplicate").Inc()
		return db.CustomWord{}, fmt.Errorf("%w: %q", ErrWordExists, key)
	}

	var created db.CustomWord
	var next *transliteration.Engine
	err := t.repo.WithTx(ctx, func(tx db.Repository) error {
		var err error
		created, err = tx.CreateCustomWord(ctx, db.CreateCustomWordParams{
			Word:    key,
			Script:  p.Script.String(),
			Output:  output,
			AddedBy: p.AddedBy,
		})
		if err != nil {
			return err
		}
		next, err = t.rebuild(ctx, tx)
		return err
	})
	if errors.Is(err, db.ErrDuplicate) {
		metrics.CustomWordMutations.WithLabelValues("add", "duplicate").Inc()
		return db.CustomWord{}, fmt.Errorf("%w: %q", ErrWordExists, key)
	}
	if err != nil {
		metrics.CustomWordMutations.WithLabelValues("add", "error").Inc()
		return db.CustomWord{}, err
	}

	t.store(next)
	metrics.CustomWordMutations.WithLabelValues("add", "ok").Inc()
	return created, nil
}

// DeleteCustomWord removes a custom word. It returns db.ErrNoRows when id
// does not exist.
func (t *Translator) DeleteCustomWord(ctx context.Context, id int64) error {
	if t.repo == nil {
		return db.ErrNoRows
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	var next *transliteration.Engine
	err := t.repo.WithTx(ctx, func(tx db.Repository) error {
		n, err := tx.DeleteCustomWord(ctx, id)
		if err != nil {
			return err
		}
		if n == 0 {
			return db.ErrNoRows
		}
		next, err = t.rebuild(ctx, tx)
		return err
	})
	if err != nil {
		result := "error"
		if db.IsNoRows(err) {
			result = "not_found"
		}
		metrics.CustomWordMutations.WithLabelValues("delete", result).Inc()
		return err
	}

	t.store(next)
	metrics.CustomWordMutations.WithLabelValues("delete", "ok").Inc()
	return nil
}

// Reload rebuilds the engine from the database, picking up words written by
// other processes.
func (t *Translator) Reload(ctx context.Context) error {
	if t.repo == nil {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	next, err := t.rebuild(ctx, t.repo)
	if err != nil {
		return err
	}
	t.store(next)
	return nil
}

func (t *Translator) rebuild(ctx context.Context, repo db.Repository) (*transliteration.Engine, error) {
	words, err := repo.AllCustomWords(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading custom words: %w", err)
	}
	return t.build(words)
}

func (t *Translator) build(words []db.CustomWord) (*transliteration.Engine, error) {
	entries := make([]transliteration.DictionaryEntry, 0, len(words))
	for _, w := range words {
		script, err := transliteration.ParseScript(w.Script)
		if err != nil {
			return nil, fmt.Errorf("custom word %d: %w", w.ID, err)
		}
		entries = append(entries, transliteration.DictionaryEntry{Key: w.Word, Script: script, Output: w.Output})
	}

	e, err := transliteration.LoadTables(tables.WithWords(t.base, entries...))
	if err != nil {
		metrics.EngineReloads.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("building engine: %w", err)
	}
	metrics.EngineReloads.WithLabelValues("ok").Inc()
	return e, nil
}

func (t *Translator) store(e *transliteration.Engine) {
	t.engine.Store(e)
	for script, n := range e.Stats().DictionaryEntries {
		metrics.DictionaryEntries.WithLabelValues(script.String()).Set(float64(n))
	}
}

func validateWord(key, output string) error {
	if key == "" {
		return fmt.Errorf("%w: word is empty", ErrInvalidWord)
	}
	for _, r := range key {
		if !unicode.IsLetter(r) || !unicode.Is(unicode.Latin, r) {
			return fmt.Errorf("%w: %q must be a single romanized word", ErrInvalidWord, key)
		}
	}
	if output == "" {
		return fmt.Errorf("%w: output is empty", ErrInvalidWord)
	}
	return nil
}
