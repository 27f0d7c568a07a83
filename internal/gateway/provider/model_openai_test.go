package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completionBody(content string) string {
	b, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
	})
	return string(b)
}

func TestInvokeReturnsContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o-mini", req.Model)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "user", req.Messages[0].Role)
		assert.Equal(t, "분석해주세요", req.Messages[0].Content)

		w.Write([]byte(completionBody("투자 결정: 관망")))
	}))
	defer srv.Close()

	c := &OpenAIChatClient{BaseURL: srv.URL + "/v1", APIKey: "sk-test", Model: "gpt-4o-mini"}
	got, err := c.Invoke(context.Background(), "분석해주세요")
	require.NoError(t, err)
	assert.Equal(t, "투자 결정: 관망", got)
}

func TestInvokeNormalizesChatCompletionsSuffix(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		w.Write([]byte(completionBody("ok")))
	}))
	defer srv.Close()

	c := &OpenAIChatClient{BaseURL: srv.URL + "/v1/chat/completions", Model: "m"}
	got, err := c.Invoke(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
}

func TestInvokeRetriesOnRateLimit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(completionBody("재시도 성공")))
	}))
	defer srv.Close()

	c := &OpenAIChatClient{BaseURL: srv.URL, Model: "m", MaxRetries: 2}
	got, err := c.Invoke(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "재시도 성공", got)
	assert.Equal(t, int32(2), calls.Load())
}

func TestInvokeReturnsWithoutBackoffOnceRetriesExhausted(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "1")
		} else {
			// A long Retry-After on the last attempt must not delay the error.
			w.Header().Set("Retry-After", "60")
		}
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := &OpenAIChatClient{BaseURL: srv.URL, Model: "m", MaxRetries: 1}
	start := time.Now()
	_, err := c.Invoke(context.Background(), "p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Equal(t, int32(2), calls.Load())
	assert.Less(t, time.Since(start), 10*time.Second)
}

func TestInvokeDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"invalid model"}}`))
	}))
	defer srv.Close()

	c := &OpenAIChatClient{BaseURL: srv.URL, Model: "nope", MaxRetries: 3}
	_, err := c.Invoke(context.Background(), "p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.Equal(t, int32(1), calls.Load())
}

func TestInvokeEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := &OpenAIChatClient{BaseURL: srv.URL, Model: "m"}
	_, err := c.Invoke(context.Background(), "p")
	assert.Error(t, err)
}
