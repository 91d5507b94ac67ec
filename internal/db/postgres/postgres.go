package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jusunglee/singlish/internal/db"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository implements db.Repository using PostgreSQL via pgx
type Repository struct {
	pool *pgxpool.Pool
	q    querier
	tx   bool
}

// New creates a new PostgreSQL repository and applies pending migrations.
func New(ctx context.Context, databaseURL string) (*Repository, error) {
	pool, err := db.NewPool(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if err := migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return &Repository{pool: pool, q: pool}, nil
}

func migrate(ctx context.Context, pool *pgxpool.Pool) error {
	fsys, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return err
	}

	sqlDB := stdlib.OpenDBFromPool(pool)
	defer sqlDB.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, sqlDB, fsys)
	if err != nil {
		return fmt.Errorf("creating migration provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}
	return nil
}

// PoolStats exposes connection pool statistics for metrics.
func (r *Repository) PoolStats() *pgxpool.Stat {
	return r.pool.Stat()
}

func (r *Repository) Close() error {
	if !r.tx {
		r.pool.Close()
	}
	return nil
}

func (r *Repository) WithTx(ctx context.Context, fn func(repo db.Repository) error) error {
	if r.tx {
		return fn(r)
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	// If fn() panics, the normal err-check rollback below won't run.
	// recover() catches the panic so we can roll back the tx (releasing the db connection), then re-panic.
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback(ctx)
			panic(p)
		}
	}()

	err = fn(&Repository{pool: r.pool, q: tx, tx: true})
	if err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("transaction error: %w, rollback error: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

// Custom word methods

const customWordColumns = `id, word, script, output, added_by, created_at`

func (r *Repository) CreateCustomWord(ctx context.Context, arg db.CreateCustomWordParams) (db.CustomWord, error) {
	row := r.q.QueryRow(ctx, `
		INSERT INTO custom_words (word, script, output, added_by)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (word, script) DO NOTHING
		RETURNING `+customWordColumns,
		arg.Word, arg.Script, arg.Output, arg.AddedBy)

	w, err := scanCustomWord(row)
	if errors.Is(err, db.ErrNoRows) {
		return db.CustomWord{}, db.ErrDuplicate
	}
	return w, err
}

func (r *Repository) GetCustomWord(ctx context.Context, id int64) (db.CustomWord, error) {
	row := r.q.QueryRow(ctx, `SELECT `+customWordColumns+` FROM custom_words WHERE id = $1`, id)
	return scanCustomWord(row)
}

func (r *Repository) ListCustomWords(ctx context.Context, arg db.ListCustomWordsParams) ([]db.CustomWord, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+customWordColumns+`
		FROM custom_words
		WHERE $1::text = '' OR script = $1
		ORDER BY id DESC
		LIMIT $2 OFFSET $3
	`, arg.Script, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (db.CustomWord, error) {
		return scanCustomWord(row)
	})
}

func (r *Repository) AllCustomWords(ctx context.Context) ([]db.CustomWord, error) {
	rows, err := r.q.Query(ctx, `SELECT `+customWordColumns+` FROM custom_words ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (db.CustomWord, error) {
		return scanCustomWord(row)
	})
}

func (r *Repository) CountCustomWords(ctx context.Context, script string) (int64, error) {
	var count int64
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM custom_words WHERE $1::text = '' OR script = $1`, script).Scan(&count)
	return count, err
}

func (r *Repository) DeleteCustomWord(ctx context.Context, id int64) (int64, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM custom_words WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Feedback methods

const feedbackColumns = `id, source, script, input_text, output_text, suggested_text, feedback_text, created_at`

func (r *Repository) CreateFeedback(ctx context.Context, arg db.CreateFeedbackParams) (db.Feedback, error) {
	row := r.q.QueryRow(ctx, `
		INSERT INTO feedback (source, script, input_text, output_text, suggested_text, feedback_text)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+feedbackColumns,
		arg.Source, arg.Script, arg.InputText, arg.OutputText, arg.SuggestedText, arg.FeedbackText)
	return scanFeedback(row)
}

func (r *Repository) ListFeedback(ctx context.Context, arg db.ListFeedbackParams) ([]db.Feedback, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+feedbackColumns+`
		FROM feedback
		ORDER BY id DESC
		LIMIT $1 OFFSET $2
	`, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (db.Feedback, error) {
		return scanFeedback(row)
	})
}

func (r *Repository) CountFeedback(ctx context.Context) (int64, error) {
	var count int64
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM feedback`).Scan(&count)
	return count, err
}

func (r *Repository) DeleteOldFeedback(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM feedback WHERE created_at < $1`, before)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanCustomWord(row pgx.Row) (db.CustomWord, error) {
	var w db.CustomWord
	err := row.Scan(&w.ID, &w.Word, &w.Script, &w.Output, &w.AddedBy, &w.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return db.CustomWord{}, db.ErrNoRows
	}
	return w, err
}

func scanFeedback(row pgx.Row) (db.Feedback, error) {
	var f db.Feedback
	err := row.Scan(&f.ID, &f.Source, &f.Script, &f.InputText, &f.OutputText, &f.SuggestedText, &f.FeedbackText, &f.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return db.Feedback{}, db.ErrNoRows
	}
	return f, err
}
