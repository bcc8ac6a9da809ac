// internal/models/media.go
package models

import (
	"context"

	"github.com/poegate/poegate/internal/modality"
	"github.com/poegate/poegate/internal/poe"
)

// completeMedia is the shared execution path for the image, video, and audio
// facades. Generation endpoints ignore prior turns: the payload carries only
// the latest prompt, with the modality's options as top-level fields, and
// streaming is always disabled on the wire.
func completeMedia(ctx context.Context, m Model, b base, schema map[string]any, req Request, optionKeys ...string) (*Response, error) {
	if err := b.ensureClient(); err != nil {
		return nil, err
	}
	if err := validateOptions(schema, req.Options); err != nil {
		return nil, err
	}

	payload := map[string]any{
		"model":    b.name,
		"messages": []poe.Message{{Role: "user", Content: req.Prompt}},
		"stream":   false,
	}
	copyOptions(payload, req.Options, optionKeys...)

	resp, err := b.client.Complete(ctx, payload, b.timeout)
	if err != nil {
		return nil, err
	}

	meta := metadataFrom(b.name, resp)
	logExchange(m, payload, &meta)
	return &Response{Text: resp.Text(), Metadata: meta, Raw: resp}, nil
}

// ImageModel is the facade for image generation models. Responses carry the
// artifact URL as text.
type ImageModel struct {
	base
}

func (m *ImageModel) Modality() modality.Modality   { return modality.Image }
func (m *ImageModel) CanStream() bool               { return false }
func (m *ImageModel) OptionsSchema() map[string]any { return imageOptionsSchema() }

func (m *ImageModel) Complete(ctx context.Context, req Request) (*Response, error) {
	return completeMedia(ctx, m, m.base, m.OptionsSchema(), req, "size", "quality")
}

// Stream degrades to a single buffered delivery: the generation endpoint
// returns one completed artifact regardless of the caller's streaming request.
func (m *ImageModel) Stream(ctx context.Context, req Request, cb Callbacks) error {
	resp, err := m.Complete(ctx, req)
	if err != nil {
		return err
	}
	return deliverBuffered(resp, cb)
}

// VideoModel is the facade for video generation models.
type VideoModel struct {
	base
}

func (m *VideoModel) Modality() modality.Modality   { return modality.Video }
func (m *VideoModel) CanStream() bool               { return false }
func (m *VideoModel) OptionsSchema() map[string]any { return videoOptionsSchema() }

func (m *VideoModel) Complete(ctx context.Context, req Request) (*Response, error) {
	return completeMedia(ctx, m, m.base, m.OptionsSchema(), req, "duration", "aspect_ratio")
}

func (m *VideoModel) Stream(ctx context.Context, req Request, cb Callbacks) error {
	resp, err := m.Complete(ctx, req)
	if err != nil {
		return err
	}
	return deliverBuffered(resp, cb)
}

// AudioModel is the facade for speech and music generation models.
type AudioModel struct {
	base
}

func (m *AudioModel) Modality() modality.Modality   { return modality.Audio }
func (m *AudioModel) CanStream() bool               { return false }
func (m *AudioModel) OptionsSchema() map[string]any { return audioOptionsSchema() }

func (m *AudioModel) Complete(ctx context.Context, req Request) (*Response, error) {
	return completeMedia(ctx, m, m.base, m.OptionsSchema(), req, "voice", "speed")
}

func (m *AudioModel) Stream(ctx context.Context, req Request, cb Callbacks) error {
	resp, err := m.Complete(ctx, req)
	if err != nil {
		return err
	}
	return deliverBuffered(resp, cb)
}
