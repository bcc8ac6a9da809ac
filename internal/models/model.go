// internal/models/model.go

// Package models exposes each remote Poe model as a callable facade. One
// facade variant exists per modality; all share a uniform execution contract
// with two cases: a buffered Complete and a lazy, callback-driven Stream.
package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/poegate/poegate/internal/logging"
	"github.com/poegate/poegate/internal/modality"
	"github.com/poegate/poegate/internal/poe"
)

// ErrStopStream may be returned from Callbacks.OnChunk to stop consuming a
// stream early. Delivery ends, the connection is torn down cleanly, and the
// call reports success.
var ErrStopStream = poe.ErrStopStream

// ConfigError reports an invalid option set or other configuration problem
// detected before any network call. It is never worth retrying.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "invalid configuration: " + e.Reason
}

// Turn is one prior exchange in a conversation, oldest first.
type Turn struct {
	Prompt   string
	Response string
}

// Request carries everything needed for one model invocation.
type Request struct {
	Prompt  string
	System  string
	History []Turn
	Options map[string]any
}

// Metadata summarizes a completed response.
type Metadata struct {
	Model        string
	FinishReason string
	Usage        poe.Usage
}

// Response is the buffered result of a non-streaming invocation. For image,
// video, and audio models Text holds the artifact URL.
type Response struct {
	Text     string
	Metadata Metadata
	Raw      *poe.ChatResponse
}

// Callbacks receives a streamed invocation's output. OnChunk is called for
// each text fragment in arrival order; OnComplete once at the end.
type Callbacks struct {
	OnChunk    func(string) error
	OnComplete func(Metadata) error
}

// Model is the uniform facade contract handed to the host. Implementations
// exist for each modality and differ only in option validation, payload
// construction, and streaming capability.
type Model interface {
	// ID returns the registration key, e.g. "poe/gpt_4o".
	ID() string
	// Name returns the remote model identifier, e.g. "GPT-4o".
	Name() string
	// Modality returns the output modality derived from the identifier.
	Modality() modality.Modality
	// OptionsSchema returns the JSON Schema describing recognized options.
	OptionsSchema() map[string]any
	// CanStream reports whether Stream delivers incremental fragments. Image,
	// video, and audio models return false; their Stream degrades to a single
	// buffered delivery.
	CanStream() bool
	// Complete issues one request and returns the full result at once.
	Complete(ctx context.Context, req Request) (*Response, error)
	// Stream delivers the result lazily through cb. The sequence is finite
	// and non-restartable; OnChunk may return ErrStopStream to stop early.
	Stream(ctx context.Context, req Request, cb Callbacks) error
}

// base holds the state shared by every facade variant. The client may be nil
// when no API key was configured; execution then fails before any network
// call.
type base struct {
	client  *poe.Client
	id      string
	name    string
	timeout time.Duration
}

func (b base) ID() string   { return b.id }
func (b base) Name() string { return b.name }

// ensureClient surfaces the missing-key configuration error on the execution
// path.
func (b base) ensureClient() error {
	if b.client == nil {
		return &ConfigError{Reason: "no Poe API key configured"}
	}
	return nil
}

// logExchange records one request/response cycle. Logging never aborts a
// request.
func logExchange(m Model, payload map[string]any, meta *Metadata) {
	logging.LogRequest("POEGATE->POE", m.Name(), m.Modality().String(), payload)
	if meta != nil {
		logging.LogRequest("POE->POEGATE", m.Name(), m.Modality().String(),
			fmt.Sprintf("finish=%s tokens=%d", meta.FinishReason, meta.Usage.TotalTokens))
	}
}

// metadataFrom extracts response metadata, defaulting the model name when the
// API omits it.
func metadataFrom(name string, resp *poe.ChatResponse) Metadata {
	meta := Metadata{Model: resp.Model, Usage: resp.Usage}
	if meta.Model == "" {
		meta.Model = name
	}
	if len(resp.Choices) > 0 {
		meta.FinishReason = resp.Choices[0].FinishReason
	}
	return meta
}

// deliverBuffered feeds a buffered response through streaming callbacks. Used
// by the media facades, whose generation endpoints return one completed
// artifact regardless of a caller's streaming request.
func deliverBuffered(resp *Response, cb Callbacks) error {
	if cb.OnChunk != nil && resp.Text != "" {
		if err := cb.OnChunk(resp.Text); err != nil && !errors.Is(err, ErrStopStream) {
			return err
		}
	}
	if cb.OnComplete != nil {
		return cb.OnComplete(resp.Metadata)
	}
	return nil
}
