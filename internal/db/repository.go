package db

import (
	"context"
	"database/sql"
	"time"
)

// CustomWord is an operator-added dictionary entry.
type CustomWord struct {
	ID        int64
	Word      string
	Script    string
	Output    string
	AddedBy   string
	CreatedAt time.Time
}

// Feedback is a user report that a conversion came out wrong.
type Feedback struct {
	ID            int64
	Source        string
	Script        string
	InputText     string
	OutputText    string
	SuggestedText sql.NullString
	FeedbackText  string
	CreatedAt     time.Time
}

// Parameter structs for repository methods

type CreateCustomWordParams struct {
	Word    string
	Script  string
	Output  string
	AddedBy string
}

type ListCustomWordsParams struct {
	// Script filters by script name; empty lists every script.
	Script string
	Limit  int32
	Offset int32
}

type CreateFeedbackParams struct {
	Source        string
	Script        string
	InputText     string
	OutputText    string
	SuggestedText sql.NullString
	FeedbackText  string
}

type ListFeedbackParams struct {
	Limit  int32
	Offset int32
}

// Repository defines the interface for database operations
type Repository interface {
	// Custom words
	CreateCustomWord(ctx context.Context, arg CreateCustomWordParams) (CustomWord, error)
	GetCustomWord(ctx context.Context, id int64) (CustomWord, error)
	ListCustomWords(ctx context.Context, arg ListCustomWordsParams) ([]CustomWord, error)
	AllCustomWords(ctx context.Context) ([]CustomWord, error)
	CountCustomWords(ctx context.Context, script string) (int64, error)
	DeleteCustomWord(ctx context.Context, id int64) (int64, error)

	// Feedback
	CreateFeedback(ctx context.Context, arg CreateFeedbackParams) (Feedback, error)
	ListFeedback(ctx context.Context, arg ListFeedbackParams) ([]Feedback, error)
	CountFeedback(ctx context.Context) (int64, error)
	DeleteOldFeedback(ctx context.Context, before time.Time) (int64, error)

	// Transaction support
	WithTx(ctx context.Context, fn func(repo Repository) error) error

	// Lifecycle
	Close() error
}
