package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jusunglee/singlish/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	once      sync.Once
	sharedDSN string
	initErr   error
)

// newTestRepo starts one PostgreSQL container for the whole package and
// hands each test an empty schema.
func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping PostgreSQL tests in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	once.Do(func() {
		sharedDSN, initErr = startContainer()
	})
	if initErr != nil {
		t.Skipf("PostgreSQL container unavailable: %v", initErr)
	}

	repo, err := New(context.Background(), sharedDSN)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	_, err = repo.pool.Exec(context.Background(), "TRUNCATE custom_words, feedback RESTART IDENTITY")
	require.NoError(t, err)
	return repo
}

func startContainer() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:17-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "singlish",
			"POSTGRES_PASSWORD": "testpass",
			"POSTGRES_DB":       "singlish",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return "", fmt.Errorf("start container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return "", fmt.Errorf("get container host: %w", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return "", fmt.Errorf("get mapped port: %w", err)
	}

	return fmt.Sprintf("postgres://singlish:testpass@%s:%s/singlish?sslmode=disable", host, port.Port()), nil
}

func TestMigrationsAreIdempotent(t *testing.T) {
	repo := newTestRepo(t)

	again, err := New(context.Background(), sharedDSN)
	require.NoError(t, err)
	defer again.Close()

	_, err = again.CountCustomWords(context.Background(), "")
	assert.NoError(t, err)
	assert.Positive(t, repo.PoolStats().MaxConns())
}

func TestCustomWordCRUD(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	w, err := repo.CreateCustomWord(ctx, db.CreateCustomWordParams{
		Word:    "kohomada",
		Script:  "sinhala",
		Output:  "කොහොමද",
		AddedBy: "admin",
	})
	require.NoError(t, err)
	assert.Equal(t, "kohomada", w.Word)
	assert.False(t, w.CreatedAt.IsZero())

	got, err := repo.GetCustomWord(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, w.Output, got.Output)

	_, err = repo.CreateCustomWord(ctx, db.CreateCustomWordParams{Word: "vanakkam", Script: "tamil", Output: "வணக்கம்"})
	require.NoError(t, err)

	sinhala, err := repo.ListCustomWords(ctx, db.ListCustomWordsParams{Script: "sinhala", Limit: 10})
	require.NoError(t, err)
	assert.Len(t, sinhala, 1)

	count, err := repo.CountCustomWords(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	_, err = repo.CreateCustomWord(ctx, db.CreateCustomWordParams{Word: "kohomada", Script: "sinhala", Output: "x"})
	assert.ErrorIs(t, err, db.ErrDuplicate)

	rows, err := repo.DeleteCustomWord(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	_, err = repo.GetCustomWord(ctx, w.ID)
	assert.True(t, db.IsNoRows(err))
}

func TestFeedback(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.CreateFeedback(ctx, db.CreateFeedbackParams{
		Source:        "web",
		Script:        "sinhala",
		InputText:     "Zoom eke",
		OutputText:    "Zoom එකෙ",
		SuggestedText: sql.NullString{String: "Zoom එකේ", Valid: true},
	})
	require.NoError(t, err)

	list, err := repo.ListFeedback(ctx, db.ListFeedbackParams{Limit: 10})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Zoom එකේ", list[0].SuggestedText.String)

	deleted, err := repo.DeleteOldFeedback(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}

func TestWithTxRollsBack(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := repo.WithTx(ctx, func(tx db.Repository) error {
		if _, err := tx.CreateCustomWord(ctx, db.CreateCustomWordParams{Word: "hondai", Script: "sinhala", Output: "හොඳයි"}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	count, err := repo.CountCustomWords(ctx, "")
	require.NoError(t, err)
	assert.Zero(t, count)
}
