package extract

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnthropicClientComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))

		body, _ := io.ReadAll(r.Body)
		var payload map[string]interface{}
		require.NoError(t, json.Unmarshal(body, &payload))
		assert.Equal(t, "haiku", payload["model"])
		assert.Equal(t, float64(512), payload["max_tokens"])
		assert.Equal(t, textSystemPrompt, payload["system"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"content": [{"type": "text", "text": "{\"dish\": null}"}]}`))
	}))
	defer server.Close()

	c := NewAnthropicClient("secret", server.URL, "haiku", 512)
	out, err := c.Complete(context.Background(), textSystemPrompt, buildTextPrompt("page"))
	require.NoError(t, err)
	assert.Equal(t, `{"dish": null}`, out)
}

func TestAnthropicClientImage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Messages []struct {
				Content []struct {
					Type   string            `json:"type"`
					Source map[string]string `json:"source"`
				} `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Len(t, payload.Messages, 1)
		require.Len(t, payload.Messages[0].Content, 2)
		assert.Equal(t, "image/png", payload.Messages[0].Content[0].Source["media_type"])
		assert.Equal(t, "aW1n", payload.Messages[0].Content[0].Source["data"])

		w.Write([]byte(`{"content": [{"type": "text", "text": "[]"}]}`))
	}))
	defer server.Close()

	c := NewAnthropicClient("secret", server.URL, "sonnet", 1024)
	out, err := c.CompleteImage(context.Background(), visionSystemPrompt, []byte("img"), "image/png", visionUserPrompt)
	require.NoError(t, err)
	assert.Equal(t, "[]", out)
}

func TestAnthropicClientErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error": "overloaded"}`))
	}))
	defer server.Close()

	_, err := NewAnthropicClient("secret", server.URL, "haiku", 512).Complete(context.Background(), "s", "u")
	assert.ErrorContains(t, err, "503")

	_, err = NewAnthropicClient("", server.URL, "haiku", 512).Complete(context.Background(), "s", "u")
	assert.ErrorContains(t, err, "ANTHROPIC_API_KEY")
}
