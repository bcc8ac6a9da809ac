// internal/poe/client_test.go
package poe

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/poegate/poegate/internal/appconfig"
)

func newTestClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	cfg := &appconfig.Config{BaseURL: serverURL, APIKey: "test-key-123"}
	client, err := New(cfg)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return client
}

// TestNewRequiresAPIKey verifies a missing key fails before any network use.
func TestNewRequiresAPIKey(t *testing.T) {
	t.Setenv(appconfig.EnvAPIKey, "")

	if _, err := New(&appconfig.Config{}); !errors.Is(err, appconfig.ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
}

// TestListModels verifies catalog parsing and the Authorization header.
func TestListModels(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key-123" {
			t.Errorf("unexpected auth header: %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[
            {"id":"GPT-4o","object":"model","owned_by":"openai"},
            {"id":"Flux-Pro-1.1","object":"model","owned_by":"black-forest-labs"},
            {"object":"model"}
        ]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	entries, err := client.ListModels(context.Background(), 5*time.Second)
	if err != nil {
		t.Fatalf("ListModels returned error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected entries without ids skipped, got %+v", entries)
	}
	if entries[0].ID != "GPT-4o" || entries[1].ID != "Flux-Pro-1.1" {
		t.Fatalf("unexpected identifiers: %+v", entries)
	}
	if owner, _ := entries[0].Raw["owned_by"].(string); owner != "openai" {
		t.Fatalf("expected raw metadata preserved, got %+v", entries[0].Raw)
	}
}

// TestListModelsStatusError verifies a non-2xx catalog response surfaces the
// status code and body.
func TestListModelsStatusError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid api key"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.ListModels(context.Background(), 5*time.Second)

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unexpected status code: %d", statusErr.StatusCode)
	}
	if !strings.Contains(statusErr.Error(), "invalid api key") {
		t.Fatalf("expected body context in error, got %q", statusErr.Error())
	}
}

// TestListModelsMalformedBody verifies invalid JSON surfaces as a parse error.
func TestListModelsMalformedBody(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	if _, err := client.ListModels(context.Background(), 5*time.Second); err == nil {
		t.Fatal("expected parse error")
	}
}

// TestComplete verifies payload delivery and response parsing.
func TestComplete(t *testing.T) {
	t.Parallel()

	var capturedBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("read body: %v", err)
		}
		capturedBody = body
		_, _ = w.Write([]byte(`{
            "id":"chatcmpl-123","object":"chat.completion","model":"GPT-4o",
            "choices":[{"index":0,"message":{"role":"assistant","content":"hi there"},"finish_reason":"stop"}],
            "usage":{"prompt_tokens":10,"completion_tokens":20,"total_tokens":30}
        }`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	payload := map[string]any{
		"model":    "GPT-4o",
		"messages": []Message{{Role: "user", Content: "hello"}},
		"stream":   false,
	}
	resp, err := client.Complete(context.Background(), payload, 5*time.Second)
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if resp.Text() != "hi there" {
		t.Fatalf("unexpected text: %q", resp.Text())
	}
	if resp.Usage.TotalTokens != 30 {
		t.Fatalf("unexpected usage: %+v", resp.Usage)
	}

	var sent map[string]any
	if err := json.Unmarshal(capturedBody, &sent); err != nil {
		t.Fatalf("unmarshal captured payload: %v", err)
	}
	if sent["model"] != "GPT-4o" {
		t.Fatalf("expected model in payload, got %v", sent["model"])
	}
	if stream, ok := sent["stream"].(bool); !ok || stream {
		t.Fatalf("expected stream=false, got %v", sent["stream"])
	}
}

func sseBody() string {
	lines := []string{
		`data: {"id":"chatcmpl-123","object":"chat.completion.chunk","model":"GPT-4o","choices":[{"index":0,"delta":{"role":"assistant","content":"This"},"finish_reason":null}]}`,
		`data: {"id":"chatcmpl-123","object":"chat.completion.chunk","model":"GPT-4o","choices":[{"index":0,"delta":{"content":" is"},"finish_reason":null}]}`,
		`data: not-json`,
		`data: {"id":"chatcmpl-123","object":"chat.completion.chunk","model":"GPT-4o","choices":[{"index":0,"delta":{"content":" a"},"finish_reason":null}]}`,
		`data: {"id":"chatcmpl-123","object":"chat.completion.chunk","model":"GPT-4o","choices":[{"index":0,"delta":{"content":" test"},"finish_reason":null}]}`,
		`data: [DONE]`,
		`data: {"id":"chatcmpl-123","object":"chat.completion.chunk","model":"GPT-4o","choices":[{"index":0,"delta":{"content":" trailing"},"finish_reason":null}]}`,
	}
	return strings.Join(lines, "\n\n") + "\n"
}

// TestStream verifies delta ordering, malformed-frame skipping, and the DONE
// sentinel.
func TestStream(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = io.WriteString(w, sseBody())
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	var got []string
	err := client.Stream(context.Background(), map[string]any{"model": "GPT-4o", "stream": true}, 5*time.Second, func(delta string) error {
		got = append(got, delta)
		return nil
	})
	if err != nil {
		t.Fatalf("Stream returned error: %v", err)
	}

	if strings.Join(got, "") != "This is a test" {
		t.Fatalf("unexpected concatenation: %q", strings.Join(got, ""))
	}
	if len(got) != 4 {
		t.Fatalf("expected 4 deltas, got %d: %v", len(got), got)
	}
}

// TestStreamEarlyStop verifies ErrStopStream ends delivery cleanly.
func TestStreamEarlyStop(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = io.WriteString(w, sseBody())
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	var got []string
	err := client.Stream(context.Background(), map[string]any{"model": "GPT-4o", "stream": true}, 5*time.Second, func(delta string) error {
		got = append(got, delta)
		return ErrStopStream
	})
	if err != nil {
		t.Fatalf("expected early stop to report success, got %v", err)
	}
	if len(got) != 1 || got[0] != "This" {
		t.Fatalf("expected a single delta, got %v", got)
	}
}

// TestStreamCallbackError verifies other callback errors propagate unchanged.
func TestStreamCallbackError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = io.WriteString(w, sseBody())
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	wantErr := errors.New("sink failed")
	err := client.Stream(context.Background(), map[string]any{"model": "GPT-4o", "stream": true}, 5*time.Second, func(delta string) error {
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected callback error, got %v", err)
	}
}

// TestStreamStatusError verifies non-2xx streaming responses surface before
// any delta is delivered.
func TestStreamStatusError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"rate limited"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	err := client.Stream(context.Background(), map[string]any{"model": "GPT-4o", "stream": true}, 5*time.Second, func(delta string) error {
		t.Error("unexpected delta delivery")
		return nil
	})

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("unexpected status code: %d", statusErr.StatusCode)
	}
}
