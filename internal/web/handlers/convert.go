package handlers

import (
	"log/slog"
	"net/http"
	"unicode/utf8"

	"github.com/jusunglee/singlish/internal/translation"
	"github.com/jusunglee/singlish/internal/transliteration"
	"github.com/rivo/uniseg"
)

// MaxConvertRunes bounds the text accepted by one convert request.
const MaxConvertRunes = 5000

type ConvertHandler struct {
	translator *translation.Translator
	log        *slog.Logger
}

func NewConvertHandler(translator *translation.Translator, log *slog.Logger) *ConvertHandler {
	return &ConvertHandler{translator: translator, log: log}
}

type convertRequest struct {
	Text   string `json:"text"`
	Script string `json:"script"`
	Trace  bool   `json:"trace"`
}

type tokenResponse struct {
	Kind    string `json:"kind"`
	Text    string `json:"text"`
	Output  string `json:"output"`
	Source  string `json:"source"`
	Matched bool   `json:"matched"`
}

type convertResponse struct {
	Output    string                 `json:"output"`
	Script    transliteration.Script `json:"script"`
	Graphemes int                    `json:"graphemes"`
	Tokens    []tokenResponse        `json:"tokens,omitempty"`
}

func (h *ConvertHandler) Convert(w http.ResponseWriter, r *http.Request) {
	var req convertRequest
	if err := decodeJSON(r, &req); err != nil {
		h.log.DebugContext(r.Context(), "rejected convert request", "reason", "invalid json", "error", err)
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if !utf8.ValidString(req.Text) {
		h.log.DebugContext(r.Context(), "rejected convert request", "reason", "invalid utf-8")
		writeError(w, http.StatusBadRequest, "text must be valid UTF-8")
		return
	}
	if n := utf8.RuneCountInString(req.Text); n > MaxConvertRunes {
		h.log.WarnContext(r.Context(), "rejected convert request", "reason", "too long", "runes", n)
		writeError(w, http.StatusRequestEntityTooLarge, "text is too long")
		return
	}

	script, err := transliteration.ParseScript(req.Script)
	if err != nil {
		h.log.DebugContext(r.Context(), "rejected convert request", "reason", "unknown script", "script", req.Script)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	trace := h.translator.Trace(req.Text, script, "web")
	out := transliteration.Recompose(trace)

	resp := convertResponse{
		Output:    out,
		Script:    script,
		Graphemes: uniseg.GraphemeClusterCount(out),
	}
	if req.Trace {
		resp.Tokens = make([]tokenResponse, len(trace))
		for i, c := range trace {
			resp.Tokens[i] = tokenResponse{
				Kind:    c.Token.Kind.String(),
				Text:    c.Token.Text,
				Output:  c.Result.Output,
				Source:  c.Result.Source.String(),
				Matched: c.Result.Matched,
			}
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// Stats reports the sizes of the active tables.
func (h *ConvertHandler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.translator.Engine().Stats())
}
