package transliteration

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownScript       = errors.New("unknown script")
	ErrDuplicateKey        = errors.New("duplicate dictionary key")
	ErrEmptyKey            = errors.New("empty dictionary key")
	ErrEmptyPattern        = errors.New("rule with empty pattern")
	ErrInvalidPattern      = errors.New("rule pattern must be Latin letters")
	ErrEmptyOutput         = errors.New("empty output")
	ErrConflictingRule     = errors.New("conflicting rule")
	ErrPassThroughConflict = errors.New("pass-through word also has a dictionary entry")
)

// InitializationError reports every problem found while loading tables.
// Nothing is dropped: one bad entry fails the whole load.
type InitializationError struct {
	Problems []error
}

func (e *InitializationError) Error() string {
	msgs := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		msgs[i] = p.Error()
	}
	return fmt.Sprintf("loading transliteration tables: %d problem(s): %s", len(e.Problems), strings.Join(msgs, "; "))
}

func (e *InitializationError) Unwrap() []error {
	return e.Problems
}
