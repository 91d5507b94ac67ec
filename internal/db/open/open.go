// Package open picks a repository implementation from a database URL.
package open

import (
	"context"
	"fmt"

	"github.com/jusunglee/singlish/internal/db"
	"github.com/jusunglee/singlish/internal/db/postgres"
	"github.com/jusunglee/singlish/internal/db/sqlite"
)

// Repository opens PostgreSQL for postgres:// URLs and SQLite otherwise.
func Repository(ctx context.Context, databaseURL string) (db.Repository, error) {
	if db.IsPostgresURL(databaseURL) {
		repo, err := postgres.New(ctx, databaseURL)
		if err != nil {
			return nil, fmt.Errorf("creating PostgreSQL connection: %w", err)
		}
		return repo, nil
	}

	repo, err := sqlite.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("creating SQLite connection: %w", err)
	}
	return repo, nil
}
