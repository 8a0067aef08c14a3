package extract

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const anthropicVersion = "2023-06-01"

// AnthropicClient calls the Messages API for one model
type AnthropicClient struct {
	apiKey    string
	url       string
	model     string
	maxTokens int
	client    *http.Client
}

// NewAnthropicClient creates a client; url is the full messages endpoint
func NewAnthropicClient(apiKey, url, model string, maxTokens int) *AnthropicClient {
	return &AnthropicClient{
		apiKey:    apiKey,
		url:       url,
		model:     model,
		maxTokens: maxTokens,
		client:    &http.Client{Timeout: 60 * time.Second},
	}
}

var (
	_ TextModel   = (*AnthropicClient)(nil)
	_ VisionModel = (*AnthropicClient)(nil)
)

// Complete sends a text-only message
func (a *AnthropicClient) Complete(ctx context.Context, system, user string) (string, error) {
	return a.send(ctx, system, user)
}

// CompleteImage sends one base64 image followed by the user text
func (a *AnthropicClient) CompleteImage(ctx context.Context, system string, image []byte, contentType, user string) (string, error) {
	content := []map[string]any{
		{
			"type": "image",
			"source": map[string]string{
				"type":       "base64",
				"media_type": contentType,
				"data":       base64.StdEncoding.EncodeToString(image),
			},
		},
		{"type": "text", "text": user},
	}
	return a.send(ctx, system, content)
}

func (a *AnthropicClient) send(ctx context.Context, system string, content any) (string, error) {
	if a.apiKey == "" {
		return "", errors.New("missing ANTHROPIC_API_KEY")
	}

	payload := map[string]any{
		"model":       a.model,
		"max_tokens":  a.maxTokens,
		"temperature": 0.0,
		"system":      system,
		"messages": []map[string]any{
			{"role": "user", "content": content},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", a.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := a.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("anthropic api error %d: %s", resp.StatusCode, string(raw))
	}

	var result struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return "", fmt.Errorf("decode anthropic response: %w", err)
	}

	for _, block := range result.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", errors.New("empty anthropic response")
}
