package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"bitgyeol/internal/logger"
)

// OpenAIChatClient talks to any OpenAI-compatible chat completions endpoint
// (/v1/chat/completions).
type OpenAIChatClient struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	Timeout     time.Duration
	// Retries for 429/5xx. 0 means the default of 2.
	MaxRetries int

	// HTTPClient overrides the default client, mainly for tests.
	HTTPClient *http.Client
}

func (c *OpenAIChatClient) Invoke(ctx context.Context, prompt string) (string, error) {
	timeout := c.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	maxRetries := c.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 2
	}
	temperature := c.Temperature
	if temperature <= 0 {
		temperature = 0.7
	}

	// Normalize the base URL so a configured ".../chat/completions" does not
	// produce a doubled path.
	url := strings.TrimRight(c.BaseURL, "/")
	if url == "" {
		url = "https://api.openai.com/v1"
	}
	url = strings.TrimSuffix(url, "/chat/completions")
	url = url + "/chat/completions"

	body := map[string]any{
		"model":       c.Model,
		"messages":    []map[string]string{{"role": "user", "content": prompt}},
		"temperature": temperature,
	}
	b, _ := json.Marshal(body)

	httpc := c.HTTPClient
	if httpc == nil {
		httpc = &http.Client{Timeout: timeout}
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
		if err != nil {
			return "", err
		}
		req.Header.Set("Content-Type", "application/json")
		if c.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.APIKey)
		}

		resp, err := httpc.Do(req)
		if err != nil {
			lastErr = err
			break
		}
		if resp.StatusCode/100 == 2 {
			var r struct {
				Choices []struct {
					Message struct {
						Content string `json:"content"`
					} `json:"message"`
				} `json:"choices"`
			}
			derr := json.NewDecoder(resp.Body).Decode(&r)
			resp.Body.Close()
			if derr != nil {
				lastErr = derr
				break
			}
			if len(r.Choices) == 0 {
				lastErr = fmt.Errorf("model returned empty choices")
				break
			}
			return r.Choices[0].Message.Content, nil
		}

		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		lastErr = fmt.Errorf("model call failed: status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(payload)))
		if (resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode/100 == 5) && attempt < maxRetries {
			wait := retryAfter(resp, attempt)
			logger.Warnf("[AI] %s, retry %d/%d in %s", lastErr, attempt+1, maxRetries, wait)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(wait):
			}
			continue
		}
		break
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("model call failed")
	}
	return "", lastErr
}

func retryAfter(resp *http.Response, attempt int) time.Duration {
	if s := resp.Header.Get("Retry-After"); s != "" {
		if secs, err := strconv.Atoi(strings.TrimSpace(s)); err == nil && secs > 0 && secs <= 60 {
			return time.Duration(secs) * time.Second
		}
	}
	return time.Duration(attempt+1) * 2 * time.Second
}
