package main

import (
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jusunglee/singlish/internal/db/sqlite"
	"github.com/jusunglee/singlish/internal/tables"
	"github.com/jusunglee/singlish/internal/translation"
	"github.com/jusunglee/singlish/internal/transliteration"
	"github.com/jusunglee/singlish/internal/web"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniqueWordIsAcceptedAsCustomWord(t *testing.T) {
	w := uniqueWord(time.Unix(1760000000, 123456789))
	assert.Equal(t, "ezxdefghijk", w)
	assert.Regexp(t, `^[a-z]+$`, w)
	assert.NotEqual(t, w, uniqueWord(time.Unix(1760000000, 123456790)))
}

func TestRunAgainstLocalServer(t *testing.T) {
	repo, err := sqlite.New(t.Context(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	base, err := tables.Load()
	require.NoError(t, err)
	tr, err := translation.NewTranslator(t.Context(), base, repo)
	require.NoError(t, err)

	router := web.NewRouter(repo, slog.New(slog.NewTextHandler(io.Discard, nil)), tr, web.Config{
		APIKey:    "e2e-key",
		RateLimit: 1000,
	})
	srv := httptest.NewServer(router.Handler(t.Context()))
	t.Cleanup(srv.Close)

	t.Setenv("E2E_BASE_URL", srv.URL+"/")
	t.Setenv("E2E_API_KEY", "e2e-key")
	require.NoError(t, run())

	n, err := repo.CountCustomWords(t.Context(), transliteration.Sinhala.String())
	require.NoError(t, err)
	assert.Zero(t, n)

	fb, err := repo.CountFeedback(t.Context())
	require.NoError(t, err)
	assert.Equal(t, int64(1), fb)
}
