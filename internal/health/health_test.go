package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jusunglee/singlish/internal/tables"
	"github.com/jusunglee/singlish/internal/transliteration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedEngine struct{ e *transliteration.Engine }

func (f fixedEngine) Engine() *transliteration.Engine { return f.e }

func TestHandlerReportsTables(t *testing.T) {
	base, err := tables.Load()
	require.NoError(t, err)
	e, err := transliteration.LoadTables(base)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	Handler(fixedEngine{e}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status string `json:"status"`
		Tables struct {
			DictionaryEntries map[string]int `json:"dictionary_entries"`
			Rules             map[string]int `json:"rules"`
		} `json:"tables"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Positive(t, body.Tables.DictionaryEntries["sinhala"])
	assert.Positive(t, body.Tables.Rules["tamil"])
}

func TestHandlerWithoutEngine(t *testing.T) {
	rec := httptest.NewRecorder()
	Handler(fixedEngine{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
