// Command e2e checks a running web server end to end: health, a battery of
// conversions, the custom word lifecycle and feedback submission.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/jusunglee/singlish/internal/logger"
)

type scenario struct {
	input  string
	script string
	want   string
}

var scenarios = []scenario{
	{"mama gedhara yanavaa", "sinhala", "මම ගෙදර යනවා"},
	{"oya", "sinhala", "ඔය"},
	{"ayubovan!", "sinhala", "ආයුබෝවන්!"},
	{"zoom meeting", "sinhala", "zoom meeting"},
	{"vanakkam", "tamil", "வணக்கம்"},
	{"naan", "tamil", "நான்"},
}

func main() {
	if err := run(); err != nil {
		slog.Error("E2E FAILED", "error", err)
		os.Exit(1)
	}
	slog.Info("E2E PASSED")
}

func run() error {
	_ = godotenv.Load()

	baseURL := strings.TrimRight(requireEnv("E2E_BASE_URL"), "/")
	apiKey := os.Getenv("E2E_API_KEY")

	log := logger.New()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	c := &client{base: baseURL, apiKey: apiKey, http: &http.Client{Timeout: 15 * time.Second}}

	log.Info("Phase 1: Checking health...", "base_url", baseURL)
	var health struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, http.MethodGet, "/health", nil, http.StatusOK, &health); err != nil {
		return fmt.Errorf("health check: %w", err)
	}
	if health.Status != "ok" {
		return fmt.Errorf("health status is %q", health.Status)
	}

	log.Info("Phase 2: Converting scenarios...", "count", len(scenarios))
	for _, s := range scenarios {
		got, err := c.convert(ctx, s.input, s.script)
		if err != nil {
			return fmt.Errorf("converting %q: %w", s.input, err)
		}
		if got != s.want {
			return fmt.Errorf("converting %q to %s: got %q, want %q", s.input, s.script, got, s.want)
		}
		log.Info("converted", "input", s.input, "output", got)
	}

	if apiKey == "" {
		log.Warn("Phase 3: skipped, E2E_API_KEY not set")
	} else {
		log.Info("Phase 3: Custom word lifecycle...")
		if err := c.wordLifecycle(ctx, log); err != nil {
			return err
		}
	}

	log.Info("Phase 4: Submitting feedback...")
	feedback := map[string]string{
		"script":    "sinhala",
		"input":     "mama",
		"output":    "මම",
		"suggested": "මම",
		"text":      "e2e check",
	}
	if err := c.do(ctx, http.MethodPost, "/api/v1/feedback", feedback, http.StatusCreated, nil); err != nil {
		return fmt.Errorf("submitting feedback: %w", err)
	}

	log.Info("all verifications passed", "scenarios", len(scenarios))
	return nil
}

func (c *client) wordLifecycle(ctx context.Context, log *slog.Logger) error {
	word := uniqueWord(time.Now())
	const output = "ටෙස්ට්"

	var created struct {
		ID int64 `json:"id"`
	}
	body := map[string]string{"word": word, "script": "sinhala", "output": output, "added_by": "e2e"}
	if err := c.do(ctx, http.MethodPost, "/api/v1/words", body, http.StatusCreated, &created); err != nil {
		return fmt.Errorf("adding custom word %q: %w", word, err)
	}
	log.Info("custom word added", "id", created.ID, "word", word)

	got, err := c.convert(ctx, word, "sinhala")
	if err != nil {
		return fmt.Errorf("converting custom word: %w", err)
	}
	if got != output {
		return fmt.Errorf("custom word %q converted to %q, want %q", word, got, output)
	}

	path := "/api/v1/words/" + strconv.FormatInt(created.ID, 10)
	if err := c.do(ctx, http.MethodDelete, path, nil, http.StatusNoContent, nil); err != nil {
		return fmt.Errorf("deleting custom word: %w", err)
	}
	log.Info("custom word deleted", "id", created.ID)

	got, err = c.convert(ctx, word, "sinhala")
	if err != nil {
		return fmt.Errorf("converting deleted word: %w", err)
	}
	if got == output {
		return fmt.Errorf("deleted word %q still converts to %q", word, got)
	}
	return nil
}

type client struct {
	base   string
	apiKey string
	http   *http.Client
}

func (c *client) convert(ctx context.Context, text, script string) (string, error) {
	var resp struct {
		Output string `json:"output"`
	}
	req := map[string]string{"text": text, "script": script}
	if err := c.do(ctx, http.MethodPost, "/api/v1/convert", req, http.StatusOK, &resp); err != nil {
		return "", err
	}
	return resp.Output, nil
}

func (c *client) do(ctx context.Context, method, path string, in any, wantStatus int, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshalling request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: status %d, want %d: %s", method, path, resp.StatusCode, wantStatus, bytes.TrimSpace(msg))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// uniqueWord spells the current time in letters so repeated runs never
// collide with an existing custom word.
func uniqueWord(now time.Time) string {
	digits := strconv.FormatInt(now.UnixNano(), 10)
	var b strings.Builder
	b.WriteString("ezx")
	for _, d := range digits[len(digits)-8:] {
		b.WriteRune('b' + (d - '0'))
	}
	return b.String()
}

func requireEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		slog.Error("required environment variable not set", "key", key)
		os.Exit(1)
	}
	return val
}
