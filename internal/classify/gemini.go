package classify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/riteshshukladev/FinSight/internal/common"
	"github.com/riteshshukladev/FinSight/internal/model"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Config holds configuration for the Gemini classification client.
type Config struct {
	APIKey        string
	Model         string
	BaseURL       string
	MaxRetries    int
	RetryDelay    time.Duration
	RateLimitWait time.Duration
	Temperature   float64
	MaxTokens     int
}

// GeminiClient implements the Client interface against the Gemini
// generateContent endpoint.
type GeminiClient struct {
	httpClient    *http.Client
	logger        *slog.Logger
	apiKey        string
	model         string
	baseURL       string
	maxRetries    int
	retryDelay    time.Duration
	rateLimitWait time.Duration
	temperature   float64
	maxTokens     int
}

// NewGeminiClient creates a new Gemini API client.
func NewGeminiClient(cfg Config, logger *slog.Logger) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key is required", common.ErrMissingConfig)
	}

	model := cfg.Model
	if model == "" {
		model = "gemini-1.5-flash"
	}

	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 2
	}

	retryDelay := cfg.RetryDelay
	if retryDelay <= 0 {
		retryDelay = 2 * time.Second
	}

	rateLimitWait := cfg.RateLimitWait
	if rateLimitWait <= 0 {
		rateLimitWait = 10 * time.Second
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.1
	}

	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 2048
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &GeminiClient{
		apiKey:        cfg.APIKey,
		model:         model,
		baseURL:       baseURL,
		maxRetries:    maxRetries,
		retryDelay:    retryDelay,
		rateLimitWait: rateLimitWait,
		temperature:   temperature,
		maxTokens:     maxTokens,
		logger:        logger,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}, nil
}

// geminiResponse represents the generateContent response structure.
type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
}

// ClassifyBatch sends one batch of messages to the classifier and returns the
// validated candidates extracted from its response. Retries are an explicit
// bounded loop: rate limits wait a fixed cool-down, transport failures and
// structurally empty payloads back off a fixed delay, and a truncated payload
// gets one repair pass before the extra retry.
func (c *GeminiClient) ClassifyBatch(ctx context.Context, messages []model.RawMessage) ([]Candidate, error) {
	prompt := BuildPrompt(messages)

	var lastErr error
	repairedTruncation := false

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.retryDelay
			if lastErr != nil && isRateLimit(lastErr) {
				delay = c.rateLimitWait
			}
			c.logger.Warn("classification attempt failed, retrying",
				"attempt", attempt,
				"max_retries", c.maxRetries,
				"delay", delay,
				"error", lastErr)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		text, finishReason, err := c.generate(ctx, prompt)
		if err != nil {
			if !common.IsRetryable(err) {
				return nil, err
			}
			lastErr = err
			continue
		}

		if finishReason == "SAFETY" {
			// Terminal for this batch: zero results, no retry.
			c.logger.Warn("classifier refused batch under safety policy",
				"messages", len(messages))
			return nil, nil
		}

		candidates, repairErr := RepairPayload(text)
		if repairErr == nil && len(candidates) > 0 {
			return candidates, nil
		}

		if finishReason == "MAX_TOKENS" && !repairedTruncation {
			// The payload may be truncated; repair already ran, so grant
			// one extra attempt for a complete response.
			repairedTruncation = true
			lastErr = fmt.Errorf("%w: truncated payload (finishReason=MAX_TOKENS)", common.ErrMalformedResponse)
			continue
		}

		if repairErr != nil {
			lastErr = fmt.Errorf("%w: %v", common.ErrMalformedResponse, repairErr)
			continue
		}

		// Parsed cleanly but nothing survived validation: genuinely no
		// financial transactions in this batch.
		return nil, nil
	}

	return nil, fmt.Errorf("%w: %v", common.ErrMaxRetries, lastErr)
}

// generate performs a single generateContent call and returns the raw text
// payload plus the finish reason.
func (c *GeminiClient) generate(ctx context.Context, prompt string) (string, string, error) {
	requestBody := map[string]any{
		"contents": []map[string]any{
			{
				"parts": []map[string]string{
					{"text": prompt},
				},
			},
		},
		"generationConfig": map[string]any{
			"temperature":     c.temperature,
			"maxOutputTokens": c.maxTokens,
		},
	}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(jsonBody)))
	if err != nil {
		return "", "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", "", &common.RetryableError{Err: fmt.Errorf("request failed: %w", err), Retryable: true}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", &common.RetryableError{Err: fmt.Errorf("failed to read response: %w", err), Retryable: true}
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", "", fmt.Errorf("%w (status 429)", common.ErrRateLimited)
	}
	if resp.StatusCode != http.StatusOK {
		return "", "", &common.RetryableError{
			Err:       fmt.Errorf("gemini API error (status %d): %s", resp.StatusCode, string(body)),
			Retryable: false,
		}
	}

	var response geminiResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", "", fmt.Errorf("%w: failed to parse response envelope: %v", common.ErrMalformedResponse, err)
	}

	if len(response.Candidates) == 0 {
		return "", "", fmt.Errorf("%w: no candidates in response", common.ErrMalformedResponse)
	}

	candidate := response.Candidates[0]
	if candidate.FinishReason == "SAFETY" {
		return "", "SAFETY", nil
	}
	if len(candidate.Content.Parts) == 0 {
		return "", "", fmt.Errorf("%w: no content parts in response", common.ErrMalformedResponse)
	}

	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		text.WriteString(part.Text)
	}

	return text.String(), candidate.FinishReason, nil
}

func isRateLimit(err error) bool {
	return errors.Is(err, common.ErrRateLimited)
}
