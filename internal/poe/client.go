// internal/poe/client.go
// Package poe implements the HTTP client for the Poe OpenAI-compatible API.
package poe

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/poegate/poegate/internal/appconfig"
	"github.com/poegate/poegate/internal/catalog"
)

// ErrStopStream is returned by a stream consumer to stop delivery early.
// The client stops decoding, closes the response body, and reports success.
var ErrStopStream = errors.New("poe: stop streaming")

// StatusError describes a non-2xx response from the remote API. It carries
// the status code and the response body so callers can decide on retries.
type StatusError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("poe: API returned %s", e.Status)
	}
	return fmt.Sprintf("poe: API returned %s: %s", e.Status, body)
}

// Message is a single chat message on the wire.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Choice is one completion alternative within a response.
type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

// Usage reports token counts when the API includes them.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatResponse is a complete, non-streamed completion response.
type ChatResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

// Text returns the content of the first choice, or the empty string.
func (r *ChatResponse) Text() string {
	if r == nil || len(r.Choices) == 0 {
		return ""
	}
	return r.Choices[0].Message.Content
}

// streamChunk is one SSE frame of a streamed completion.
type streamChunk struct {
	Model   string `json:"model"`
	Choices []struct {
		Delta struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
}

// modelsResponse is the body of GET /models.
type modelsResponse struct {
	Data []map[string]any `json:"data"`
}

// Client issues authenticated requests against one Poe API endpoint.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// New constructs a Client from the application configuration. It resolves the
// API key up front: a missing key is a configuration error surfaced before any
// network call.
func New(cfg *appconfig.Config) (*Client, error) {
	key, err := cfg.ResolveAPIKey()
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: cfg.APIBaseURL(),
		apiKey:  key,
		client: &http.Client{
			Transport: &http.Transport{ForceAttemptHTTP2: false},
		},
	}, nil
}

// newRequest builds an authenticated JSON request against the API.
func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// ListModels fetches the current model catalog via GET /models.
func (c *Client) ListModels(ctx context.Context, timeout time.Duration) ([]catalog.Entry, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := c.newRequest(ctx, http.MethodGet, "/models", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status, Body: string(body)}
	}

	var parsed modelsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("poe: parse /models response: %w", err)
	}

	entries := make([]catalog.Entry, 0, len(parsed.Data))
	for _, raw := range parsed.Data {
		id, _ := raw["id"].(string)
		if id == "" {
			continue
		}
		entries = append(entries, catalog.Entry{ID: id, Raw: raw})
	}
	return entries, nil
}

// Complete issues one non-streaming completion request and returns the full
// parsed response.
func (c *Client) Complete(ctx context.Context, payload map[string]any, timeout time.Duration) (*ChatResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := c.newRequest(ctx, http.MethodPost, "/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status, Body: string(respBody)}
	}

	var result ChatResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("poe: parse completion response: %w", err)
	}
	return &result, nil
}

// Stream issues a streaming completion request and forwards each text delta to
// onDelta in arrival order. The sequence is finite and non-restartable: it
// ends at the [DONE] sentinel, on error, or when onDelta returns ErrStopStream
// to stop early. The response body is closed on every exit path, so an early
// stop leaves the connection in a clean state for subsequent calls. Frames
// that fail to parse are skipped.
func (c *Client) Stream(ctx context.Context, payload map[string]any, timeout time.Duration, onDelta func(string) error) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := c.newRequest(ctx, http.MethodPost, "/chat/completions", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return &StatusError{StatusCode: resp.StatusCode, Status: resp.Status, Body: string(respBody)}
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		data := strings.TrimPrefix(line, "data: ")
		if data == "[DONE]" {
			break
		}

		var chunk streamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			continue
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		content := chunk.Choices[0].Delta.Content
		if content == "" {
			continue
		}
		if err := onDelta(content); err != nil {
			if errors.Is(err, ErrStopStream) {
				return nil
			}
			return err
		}
	}
	return scanner.Err()
}
