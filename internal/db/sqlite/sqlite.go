package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/jusunglee/singlish/internal/db"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Repository implements db.Repository using SQLite
type Repository struct {
	db *sql.DB
	q  querier
	tx bool
}

// New creates a new SQLite repository
func New(ctx context.Context, dbPath string) (*Repository, error) {
	// Strip sqlite:// prefix if present
	dbPath = strings.TrimPrefix(dbPath, "sqlite://")

	isNew := false
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		isNew = true
	}

	sqliteDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening SQLite database: %w", err)
	}

	// Every connection to :memory: is a separate database.
	if dbPath == ":memory:" {
		sqliteDB.SetMaxOpenConns(1)
	}

	// Enable WAL mode for better concurrent read performance
	if _, err := sqliteDB.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		sqliteDB.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	if _, err := sqliteDB.ExecContext(ctx, schemaSQL); err != nil {
		sqliteDB.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	if isNew {
		slog.Info("created new SQLite database", "path", dbPath)
	}

	return &Repository{db: sqliteDB, q: sqliteDB}, nil
}

func (r *Repository) Close() error {
	if r.tx {
		return nil
	}
	return r.db.Close()
}

func (r *Repository) WithTx(ctx context.Context, fn func(repo db.Repository) error) error {
	if r.tx {
		return fn(r)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(&Repository{db: r.db, q: tx, tx: true}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction error: %w, rollback error: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Custom word methods

const customWordColumns = `id, word, script, output, added_by, created_at`

func (r *Repository) CreateCustomWord(ctx context.Context, arg db.CreateCustomWordParams) (db.CustomWord, error) {
	result, err := r.q.ExecContext(ctx, `
		INSERT INTO custom_words (word, script, output, added_by)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (word, script) DO NOTHING
	`, arg.Word, arg.Script, arg.Output, arg.AddedBy)
	if err != nil {
		return db.CustomWord{}, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return db.CustomWord{}, err
	}
	if rowsAffected == 0 {
		return db.CustomWord{}, db.ErrDuplicate
	}

	id, err := result.LastInsertId()
	if err != nil {
		return db.CustomWord{}, err
	}

	return r.GetCustomWord(ctx, id)
}

func (r *Repository) GetCustomWord(ctx context.Context, id int64) (db.CustomWord, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+customWordColumns+` FROM custom_words WHERE id = ?`, id)
	return scanCustomWord(row)
}

func (r *Repository) ListCustomWords(ctx context.Context, arg db.ListCustomWordsParams) ([]db.CustomWord, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+customWordColumns+`
		FROM custom_words
		WHERE ? = '' OR script = ?
		ORDER BY id DESC
		LIMIT ? OFFSET ?
	`, arg.Script, arg.Script, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanCustomWords(rows)
}

func (r *Repository) AllCustomWords(ctx context.Context) ([]db.CustomWord, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT `+customWordColumns+` FROM custom_words ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanCustomWords(rows)
}

func (r *Repository) CountCustomWords(ctx context.Context, script string) (int64, error) {
	var count int64
	err := r.q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM custom_words WHERE ? = '' OR script = ?
	`, script, script).Scan(&count)
	return count, err
}

func (r *Repository) DeleteCustomWord(ctx context.Context, id int64) (int64, error) {
	result, err := r.q.ExecContext(ctx, `DELETE FROM custom_words WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// Feedback methods

const feedbackColumns = `id, source, script, input_text, output_text, suggested_text, feedback_text, created_at`

func (r *Repository) CreateFeedback(ctx context.Context, arg db.CreateFeedbackParams) (db.Feedback, error) {
	result, err := r.q.ExecContext(ctx, `
		INSERT INTO feedback (source, script, input_text, output_text, suggested_text, feedback_text)
		VALUES (?, ?, ?, ?, ?, ?)
	`, arg.Source, arg.Script, arg.InputText, arg.OutputText, nullString(arg.SuggestedText), arg.FeedbackText)
	if err != nil {
		return db.Feedback{}, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return db.Feedback{}, err
	}

	row := r.q.QueryRowContext(ctx, `SELECT `+feedbackColumns+` FROM feedback WHERE id = ?`, id)
	return scanFeedback(row)
}

func (r *Repository) ListFeedback(ctx context.Context, arg db.ListFeedbackParams) ([]db.Feedback, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+feedbackColumns+`
		FROM feedback
		ORDER BY id DESC
		LIMIT ? OFFSET ?
	`, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []db.Feedback
	for rows.Next() {
		f, err := scanFeedback(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *Repository) CountFeedback(ctx context.Context) (int64, error) {
	var count int64
	err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM feedback`).Scan(&count)
	return count, err
}

func (r *Repository) DeleteOldFeedback(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.q.ExecContext(ctx, `DELETE FROM feedback WHERE created_at < ?`, before.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// Helper functions

type scanner interface {
	Scan(dest ...any) error
}

func scanCustomWord(row scanner) (db.CustomWord, error) {
	var w db.CustomWord
	var createdAtStr string
	err := row.Scan(&w.ID, &w.Word, &w.Script, &w.Output, &w.AddedBy, &createdAtStr)
	if err == sql.ErrNoRows {
		return db.CustomWord{}, db.ErrNoRows
	}
	if err != nil {
		return db.CustomWord{}, err
	}
	w.CreatedAt, _ = time.Parse(time.RFC3339, createdAtStr)
	return w, nil
}

func scanCustomWords(rows *sql.Rows) ([]db.CustomWord, error) {
	var words []db.CustomWord
	for rows.Next() {
		w, err := scanCustomWord(rows)
		if err != nil {
			return nil, err
		}
		words = append(words, w)
	}
	return words, rows.Err()
}

func scanFeedback(row scanner) (db.Feedback, error) {
	var f db.Feedback
	var createdAtStr string
	err := row.Scan(&f.ID, &f.Source, &f.Script, &f.InputText, &f.OutputText, &f.SuggestedText, &f.FeedbackText, &createdAtStr)
	if err == sql.ErrNoRows {
		return db.Feedback{}, db.ErrNoRows
	}
	if err != nil {
		return db.Feedback{}, err
	}
	f.CreatedAt, _ = time.Parse(time.RFC3339, createdAtStr)
	return f, nil
}

func nullString(s sql.NullString) interface{} {
	if s.Valid {
		return s.String
	}
	return nil
}
