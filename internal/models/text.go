// internal/models/text.go
package models

import (
	"context"

	"github.com/poegate/poegate/internal/modality"
	"github.com/poegate/poegate/internal/poe"
)

// TextModel is the facade for chat models. It is the only variant that
// streams.
type TextModel struct {
	base
}

func (m *TextModel) Modality() modality.Modality { return modality.Text }

func (m *TextModel) CanStream() bool { return true }

func (m *TextModel) OptionsSchema() map[string]any { return textOptionsSchema() }

// buildPayload validates options and assembles the chat-completions body.
// Prior turns are serialized chronologically ahead of the current prompt.
func (m *TextModel) buildPayload(req Request, stream bool) (map[string]any, error) {
	if err := validateOptions(m.OptionsSchema(), req.Options); err != nil {
		return nil, err
	}

	messages := make([]poe.Message, 0, 2*len(req.History)+2)
	if req.System != "" {
		messages = append(messages, poe.Message{Role: "system", Content: req.System})
	}
	for _, turn := range req.History {
		messages = append(messages, poe.Message{Role: "user", Content: turn.Prompt})
		messages = append(messages, poe.Message{Role: "assistant", Content: turn.Response})
	}
	messages = append(messages, poe.Message{Role: "user", Content: req.Prompt})

	payload := map[string]any{
		"model":    m.name,
		"messages": messages,
		"stream":   stream,
	}
	copyOptions(payload, req.Options, "temperature", "max_tokens")
	return payload, nil
}

// Complete issues one request and waits for the full response body.
func (m *TextModel) Complete(ctx context.Context, req Request) (*Response, error) {
	if err := m.ensureClient(); err != nil {
		return nil, err
	}
	payload, err := m.buildPayload(req, false)
	if err != nil {
		return nil, err
	}

	resp, err := m.client.Complete(ctx, payload, m.timeout)
	if err != nil {
		return nil, err
	}

	meta := metadataFrom(m.name, resp)
	logExchange(m, payload, &meta)
	return &Response{Text: resp.Text(), Metadata: meta, Raw: resp}, nil
}

// Stream delivers text fragments through cb as they arrive over a single
// logical response.
func (m *TextModel) Stream(ctx context.Context, req Request, cb Callbacks) error {
	if err := m.ensureClient(); err != nil {
		return err
	}
	payload, err := m.buildPayload(req, true)
	if err != nil {
		return err
	}

	meta := Metadata{Model: m.name, FinishReason: "stop"}
	err = m.client.Stream(ctx, payload, m.timeout, func(delta string) error {
		if cb.OnChunk != nil {
			return cb.OnChunk(delta)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logExchange(m, payload, &meta)
	if cb.OnComplete != nil {
		return cb.OnComplete(meta)
	}
	return nil
}
