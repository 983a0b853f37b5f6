package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// maxErrorBody caps how much of a failed response body is kept in errors.
const maxErrorBody = 512

// GeminiConfig configures a GeminiClient.
type GeminiConfig struct {
	APIKey       string
	BaseURL      string
	DefaultModel string
	Timeout      time.Duration
	// MaxRetries is the number of retries after the first attempt for
	// rate-limited and server-side failures.
	MaxRetries int
}

// GeminiClient calls the generateContent endpoint of the Gemini REST API.
type GeminiClient struct {
	httpClient   *http.Client
	baseURL      string
	apiKey       string
	defaultModel string
	maxRetries   uint64
	newBackOff   func() backoff.BackOff
	logger       *slog.Logger
}

// NewGeminiClient returns a client for cfg. A nil logger uses slog.Default.
func NewGeminiClient(cfg GeminiConfig, logger *slog.Logger) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini api key is empty")
	}
	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid gemini base url: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	retries := 0
	if cfg.MaxRetries > 0 {
		retries = cfg.MaxRetries
	}

	return &GeminiClient{
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:       cfg.APIKey,
		defaultModel: cfg.DefaultModel,
		maxRetries:   uint64(retries),
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 500 * time.Millisecond
			b.MaxInterval = 5 * time.Second
			return b
		},
		logger: logger,
	}, nil
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type generateRequest struct {
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

// StatusError is returned when the API answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("gemini: status %d: %s", e.StatusCode, e.Body)
}

// retryable reports whether a request that failed with status may succeed
// when sent again.
func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

// Generate sends req and returns the text of the first candidate. Rate
// limited and 5xx responses, as well as transport errors, are retried with
// exponential backoff up to the configured number of times.
func (c *GeminiClient) Generate(ctx context.Context, req Request) (string, error) {
	model := req.Model
	if model == "" {
		model = c.defaultModel
	}
	body, err := json.Marshal(buildGenerateRequest(req))
	if err != nil {
		return "", fmt.Errorf("encode gemini request: %w", err)
	}
	endpoint := c.baseURL + "/models/" + url.PathEscape(model) + ":generateContent"

	var reply string
	attempt := 0
	op := func() error {
		attempt++
		text, err := c.send(ctx, endpoint, body)
		if err != nil {
			var se *StatusError
			if errors.As(err, &se) && !retryable(se.StatusCode) {
				return backoff.Permanent(err)
			}
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		reply = text
		return nil
	}
	notify := func(err error, wait time.Duration) {
		c.logger.WarnContext(ctx, "retrying gemini request",
			slog.String("model", model),
			slog.Int("attempt", attempt),
			slog.Duration("wait", wait),
			slog.Any("error", err),
		)
	}

	b := backoff.WithContext(backoff.WithMaxRetries(c.newBackOff(), c.maxRetries), ctx)
	if err := backoff.RetryNotify(op, b, notify); err != nil {
		return "", err
	}
	return reply, nil
}

func (c *GeminiClient) send(ctx context.Context, endpoint string, body []byte) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build gemini request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("gemini request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode gemini response: %w", err)
	}
	return out.text()
}

func (r *generateResponse) text() (string, error) {
	if len(r.Candidates) == 0 {
		if r.PromptFeedback != nil && r.PromptFeedback.BlockReason != "" {
			return "", backoff.Permanent(fmt.Errorf("gemini: prompt blocked: %s", r.PromptFeedback.BlockReason))
		}
		return "", backoff.Permanent(errors.New("gemini: response has no candidates"))
	}
	var sb strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String(), nil
}

func buildGenerateRequest(req Request) generateRequest {
	out := generateRequest{
		Contents: make([]geminiContent, 0, len(req.History)+1),
	}
	if req.SystemInstruction != "" {
		out.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: req.SystemInstruction}}}
	}
	for _, turn := range req.History {
		out.Contents = append(out.Contents, geminiContent{
			Role:  turn.Role,
			Parts: []geminiPart{{Text: turn.Content}},
		})
	}
	out.Contents = append(out.Contents, geminiContent{
		Role:  "user",
		Parts: []geminiPart{{Text: req.Message}},
	})
	return out
}
