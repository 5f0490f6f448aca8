// internal/llm/client.go
// JSON chat completions and audio transcription against an OpenAI-compatible API

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/imadgeboyega/kiekky-couples/internal/common/apperr"
	"github.com/imadgeboyega/kiekky-couples/internal/common/logger"
)

var (
	ErrUpstream          = apperr.New(apperr.KindUpstream, "llm_failed", "AI service is unavailable")
	ErrMalformedResponse = apperr.New(apperr.KindUpstream, "llm_malformed_response", "AI service returned an unreadable response")
)

// Client is what features use to talk to the language model
type Client interface {
	// GenerateJSON asks for a JSON object and decodes it into out
	GenerateJSON(ctx context.Context, req JSONRequest, out any) error
	Transcribe(ctx context.Context, req TranscriptionRequest) (*Transcription, error)
}

// JSONRequest is a single system+user prompt expecting a JSON object back
type JSONRequest struct {
	Operation string // metric/span label, e.g. "psychometric_analysis"
	System    string
	User      string
	MaxTokens int // 0 uses the client default
}

// Config configures the HTTP client
type Config struct {
	BaseURL         string
	APIKey          string
	Model           string
	TranscribeModel string
	Temperature     float64
	MaxTokens       int
	MaxRetries      int
	RetryBackoff    time.Duration
	Timeout         time.Duration
}

// HTTPError is a non-2xx response from the API
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("llm http %d: %s", e.StatusCode, truncate(e.Body, 300))
}

// retryableStatus lists the response codes worth another attempt
var retryableStatus = map[int]bool{
	http.StatusRequestTimeout:      true,
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

type httpClient struct {
	cfg    Config
	http   *http.Client
	log    *logger.Logger
	tracer trace.Tracer
}

// NewClient creates an HTTP-backed client
func NewClient(cfg Config, log *logger.Logger) Client {
	if cfg.MaxRetries < 1 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 2 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &httpClient{
		cfg:    cfg,
		http:   &http.Client{},
		log:    log.With("component", "llm"),
		tracer: otel.Tracer("llm"),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	Temperature    float64           `json:"temperature"`
	MaxTokens      int               `json:"max_tokens,omitempty"`
	ResponseFormat map[string]string `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *httpClient) GenerateJSON(ctx context.Context, req JSONRequest, out any) error {
	ctx, span := c.tracer.Start(ctx, "llm.GenerateJSON",
		trace.WithAttributes(
			attribute.String("llm.operation", req.Operation),
			attribute.String("llm.model", c.cfg.Model),
		),
	)
	defer span.End()

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.cfg.MaxTokens
	}
	body, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.User},
		},
		Temperature:    c.cfg.Temperature,
		MaxTokens:      maxTokens,
		ResponseFormat: map[string]string{"type": "json_object"},
	})
	if err != nil {
		return fmt.Errorf("encode chat request: %w", err)
	}

	start := time.Now()
	raw, err := c.doWithRetry(ctx, req.Operation, func(ctx context.Context) (*http.Request, error) {
		r, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v1/chat/completions", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		r.Header.Set("Content-Type", "application/json")
		return r, nil
	})
	if err != nil {
		observeRequest(req.Operation, "error", time.Since(start))
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		return ErrUpstream.WithCause(err)
	}

	var resp chatResponse
	if err := json.Unmarshal(raw, &resp); err != nil || len(resp.Choices) == 0 {
		observeRequest(req.Operation, "malformed", time.Since(start))
		span.SetStatus(codes.Error, "malformed envelope")
		return ErrMalformedResponse.WithCause(fmt.Errorf("decode envelope: %v", err))
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), out); err != nil {
		observeRequest(req.Operation, "malformed", time.Since(start))
		span.SetStatus(codes.Error, "malformed content")
		return ErrMalformedResponse.WithCause(err)
	}

	observeRequest(req.Operation, "ok", time.Since(start))
	return nil
}

// doWithRetry sends the request built by newReq, retrying transient failures
// with exponential backoff. The whole exchange is bounded by the configured timeout.
func (c *httpClient) doWithRetry(ctx context.Context, operation string, newReq func(context.Context) (*http.Request, error)) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.cfg.RetryBackoff
	policy.Multiplier = 2
	policy.MaxInterval = 4 * c.cfg.RetryBackoff

	attempt := 0
	return backoff.Retry(ctx, func() ([]byte, error) {
		attempt++
		req, err := newReq(ctx)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, backoff.Permanent(ctx.Err())
			}
			return nil, err
		}
		raw, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return nil, readErr
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			httpErr := &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
			if retryableStatus[resp.StatusCode] {
				return nil, httpErr
			}
			return nil, backoff.Permanent(httpErr)
		}
		return raw, nil
	},
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(uint(c.cfg.MaxRetries)),
		backoff.WithNotify(func(err error, wait time.Duration) {
			c.log.Warn("LLM request retrying",
				"operation", operation,
				"attempt", attempt,
				"max_retries", c.cfg.MaxRetries,
				"sleep", wait.String(),
				"error", err.Error(),
			)
		}),
	)
}

// IsRetryable reports whether err would have been retried
func IsRetryable(err error) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return retryableStatus[httpErr.StatusCode]
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
