package handlers

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
)

type paginationMeta struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

type listResponse[T any] struct {
	Data       []T            `json:"data"`
	Pagination paginationMeta `json:"pagination"`
}

const maxPageSize = 100

// maxPage keeps the offset within an int32 for every page size.
const maxPage = math.MaxInt32 / maxPageSize

// pageParams reads page and limit, defaulting to page 1 of 25.
func pageParams(r *http.Request) (page, limit, offset int) {
	q := r.URL.Query()

	page, _ = strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	page = min(page, maxPage)
	limit, _ = strconv.Atoi(q.Get("limit"))
	if limit < 1 || limit > maxPageSize {
		limit = 25
	}
	return page, limit, (page - 1) * limit
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
