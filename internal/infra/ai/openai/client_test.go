package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeServer(t *testing.T, status int, body string, seen *map[string]any) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		if seen != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(seen))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestGenerate_ReturnsFirstChoice(t *testing.T) {
	var seen map[string]any
	ts := fakeServer(t, http.StatusOK, `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "model": "gpt-4o-mini",
  "choices": [{"index": 0, "message": {"role": "assistant", "content": "**Risk Score:** 9"}, "finish_reason": "stop"}]
}`, &seen)

	c := NewClient("sk-test", "", ts.URL+"/v1")
	out, err := c.Generate(context.Background(), "classify this")

	require.NoError(t, err)
	assert.Equal(t, "**Risk Score:** 9", out)
	assert.Equal(t, "openai/gpt-4o-mini", c.Name())
	assert.Equal(t, "gpt-4o-mini", seen["model"])
	assert.EqualValues(t, maxTokens, seen["max_tokens"])

	msgs, ok := seen["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 2)
	assert.Equal(t, "classify this", msgs[1].(map[string]any)["content"])
}

func TestGenerate_ReasoningModelUsesCompletionTokens(t *testing.T) {
	var seen map[string]any
	ts := fakeServer(t, http.StatusOK, `{"choices":[{"message":{"role":"assistant","content":"ok"}}]}`, &seen)

	_, err := NewClient("sk-test", "o3-mini", ts.URL+"/v1").Generate(context.Background(), "p")

	require.NoError(t, err)
	assert.EqualValues(t, maxTokens, seen["max_completion_tokens"])
	assert.NotContains(t, seen, "max_tokens")
}

func TestGenerate_APIError(t *testing.T) {
	ts := fakeServer(t, http.StatusTooManyRequests, `{"error":{"message":"quota exceeded","type":"insufficient_quota"}}`, nil)

	_, err := NewClient("sk-test", "gpt-4o-mini", ts.URL+"/v1").Generate(context.Background(), "p")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestGenerate_NoChoices(t *testing.T) {
	ts := fakeServer(t, http.StatusOK, `{"choices":[]}`, nil)

	_, err := NewClient("sk-test", "gpt-4o-mini", ts.URL+"/v1").Generate(context.Background(), "p")

	assert.ErrorIs(t, err, ErrEmptyResponse)
}
