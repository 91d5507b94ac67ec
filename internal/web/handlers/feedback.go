package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jusunglee/singlish/internal/db"
	"github.com/jusunglee/singlish/internal/metrics"
	"github.com/jusunglee/singlish/internal/transliteration"
)

const maxFeedbackRunes = 500

type FeedbackHandler struct {
	repo db.Repository
	log  *slog.Logger
}

func NewFeedbackHandler(repo db.Repository, log *slog.Logger) *FeedbackHandler {
	return &FeedbackHandler{repo: repo, log: log}
}

type createFeedbackRequest struct {
	Script    string `json:"script"`
	Input     string `json:"input"`
	Output    string `json:"output"`
	Suggested string `json:"suggested"`
	Text      string `json:"text"`
}

type feedbackResponse struct {
	ID        int64   `json:"id"`
	Source    string  `json:"source"`
	Script    string  `json:"script"`
	Input     string  `json:"input"`
	Output    string  `json:"output"`
	Suggested *string `json:"suggested,omitempty"`
	Text      string  `json:"text,omitempty"`
	CreatedAt string  `json:"created_at"`
}

func toFeedbackResponse(f db.Feedback) feedbackResponse {
	resp := feedbackResponse{
		ID:        f.ID,
		Source:    f.Source,
		Script:    f.Script,
		Input:     f.InputText,
		Output:    f.OutputText,
		Text:      f.FeedbackText,
		CreatedAt: f.CreatedAt.Format(time.RFC3339),
	}
	if f.SuggestedText.Valid {
		resp.Suggested = &f.SuggestedText.String
	}
	return resp
}

func (h *FeedbackHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createFeedbackRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	script, err := transliteration.ParseScript(req.Script)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	req.Input = strings.TrimSpace(req.Input)
	req.Suggested = strings.TrimSpace(req.Suggested)
	if req.Input == "" {
		writeError(w, http.StatusBadRequest, "input is required")
		return
	}
	if req.Suggested == "" && strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "suggested or text is required")
		return
	}
	for _, s := range []string{req.Input, req.Output, req.Suggested, req.Text} {
		if utf8.RuneCountInString(s) > maxFeedbackRunes {
			writeError(w, http.StatusBadRequest, "feedback fields must be 500 characters or fewer")
			return
		}
	}

	fb, err := h.repo.CreateFeedback(r.Context(), db.CreateFeedbackParams{
		Source:        "web",
		Script:        script.String(),
		InputText:     req.Input,
		OutputText:    req.Output,
		SuggestedText: sql.NullString{String: req.Suggested, Valid: req.Suggested != ""},
		FeedbackText:  req.Text,
	})
	if err != nil {
		h.log.ErrorContext(r.Context(), "creating feedback", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	metrics.FeedbackSubmissions.WithLabelValues("web").Inc()

	writeJSON(w, http.StatusCreated, toFeedbackResponse(fb))
}

func (h *FeedbackHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit, offset := pageParams(r)

	total, err := h.repo.CountFeedback(r.Context())
	if err != nil {
		h.log.ErrorContext(r.Context(), "counting feedback", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	rows, err := h.repo.ListFeedback(r.Context(), db.ListFeedbackParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		h.log.ErrorContext(r.Context(), "listing feedback", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	data := make([]feedbackResponse, len(rows))
	for i, row := range rows {
		data[i] = toFeedbackResponse(row)
	}

	writeJSON(w, http.StatusOK, listResponse[feedbackResponse]{
		Data:       data,
		Pagination: paginationMeta{Page: page, Limit: limit, Total: total},
	})
}
