package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/jusunglee/singlish/internal/db"
	"github.com/jusunglee/singlish/internal/translation"
	"github.com/jusunglee/singlish/internal/transliteration"
)

type WordsHandler struct {
	repo       db.Repository
	translator *translation.Translator
	log        *slog.Logger
}

func NewWordsHandler(repo db.Repository, translator *translation.Translator, log *slog.Logger) *WordsHandler {
	return &WordsHandler{repo: repo, translator: translator, log: log}
}

type createWordRequest struct {
	Word    string `json:"word"`
	Script  string `json:"script"`
	Output  string `json:"output"`
	AddedBy string `json:"added_by"`
}

type wordResponse struct {
	ID        int64  `json:"id"`
	Word      string `json:"word"`
	Script    string `json:"script"`
	Output    string `json:"output"`
	AddedBy   string `json:"added_by,omitempty"`
	CreatedAt string `json:"created_at"`
}

func toWordResponse(w db.CustomWord) wordResponse {
	return wordResponse{
		ID:        w.ID,
		Word:      w.Word,
		Script:    w.Script,
		Output:    w.Output,
		AddedBy:   w.AddedBy,
		CreatedAt: w.CreatedAt.Format(time.RFC3339),
	}
}

func (h *WordsHandler) List(w http.ResponseWriter, r *http.Request) {
	var script string
	if s := r.URL.Query().Get("script"); s != "" {
		parsed, err := transliteration.ParseScript(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		script = parsed.String()
	}
	page, limit, offset := pageParams(r)

	total, err := h.repo.CountCustomWords(r.Context(), script)
	if err != nil {
		h.log.ErrorContext(r.Context(), "counting custom words", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	rows, err := h.repo.ListCustomWords(r.Context(), db.ListCustomWordsParams{
		Script: script,
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		h.log.ErrorContext(r.Context(), "listing custom words", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	data := make([]wordResponse, len(rows))
	for i, row := range rows {
		data[i] = toWordResponse(row)
	}

	writeJSON(w, http.StatusOK, listResponse[wordResponse]{
		Data:       data,
		Pagination: paginationMeta{Page: page, Limit: limit, Total: total},
	})
}

func (h *WordsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createWordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	script, err := transliteration.ParseScript(req.Script)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	word, err := h.translator.AddCustomWord(r.Context(), translation.CustomWordParams{
		Word:    req.Word,
		Script:  script,
		Output:  req.Output,
		AddedBy: req.AddedBy,
	})
	switch {
	case errors.Is(err, translation.ErrInvalidWord):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, translation.ErrWordExists):
		writeError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		h.log.ErrorContext(r.Context(), "adding custom word", "word", req.Word, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.log.InfoContext(r.Context(), "custom word added", "word", word.Word, "script", word.Script)
	writeJSON(w, http.StatusCreated, toWordResponse(word))
}

func (h *WordsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	err = h.translator.DeleteCustomWord(r.Context(), id)
	if db.IsNoRows(err) {
		writeError(w, http.StatusNotFound, "word not found")
		return
	}
	if err != nil {
		h.log.ErrorContext(r.Context(), "deleting custom word", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.log.InfoContext(r.Context(), "custom word deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}
