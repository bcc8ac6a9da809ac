// internal/models/registry.go
package models

import (
	"context"
	"strings"

	"github.com/poegate/poegate/internal/appconfig"
	"github.com/poegate/poegate/internal/catalog"
	"github.com/poegate/poegate/internal/modality"
	"github.com/poegate/poegate/internal/poe"
)

// slugReplacer folds identifier characters that are awkward in registration
// keys.
var slugReplacer = strings.NewReplacer("-", "_", ".", "_", " ", "_")

// Slug derives the registration key for a remote model identifier,
// e.g. "GPT-4o" -> "poe/gpt_4o".
func Slug(name string) string {
	return "poe/" + slugReplacer.Replace(strings.ToLower(name))
}

// Registrar builds the full set of model facades on demand. Catalog fetches
// go through a time-bounded cache; a fetch failure (including a missing API
// key) degrades to the static fallback set so registration never comes back
// empty-handed because the network was.
type Registrar struct {
	cfg    *appconfig.Config
	cache  *catalog.Cache
	client *poe.Client
}

// NewRegistrar wires the catalog cache and HTTP client from the application
// configuration. A missing API key is tolerated here: registration degrades
// to the fallback set, and the key error resurfaces when a model is executed.
func NewRegistrar(cfg *appconfig.Config) *Registrar {
	client, clientErr := poe.New(cfg)
	fetch := func(ctx context.Context) ([]catalog.Entry, error) {
		if clientErr != nil {
			return nil, clientErr
		}
		return client.ListModels(ctx, cfg.RequestTimeout())
	}
	return &Registrar{
		cfg:    cfg,
		cache:  catalog.NewCache(fetch, cfg.CacheTTL(), catalog.DefaultFallback()),
		client: client,
	}
}

// Cache exposes the underlying catalog cache.
func (r *Registrar) Cache() *catalog.Cache { return r.cache }

// Register returns one facade per catalog entry, classified by modality.
// Every entry yields exactly one model; entries with blank identifiers are
// skipped.
func (r *Registrar) Register(ctx context.Context) []Model {
	entries := r.cache.Models(ctx)
	registered := make([]Model, 0, len(entries))
	for _, entry := range entries {
		if strings.TrimSpace(entry.ID) == "" {
			continue
		}
		registered = append(registered, r.build(entry))
	}
	return registered
}

// build constructs the modality-appropriate facade for one catalog entry.
func (r *Registrar) build(entry catalog.Entry) Model {
	b := base{
		client:  r.client,
		id:      Slug(entry.ID),
		name:    entry.ID,
		timeout: r.cfg.MediaTimeout(),
	}
	switch modality.Classify(entry.ID) {
	case modality.Audio:
		return &AudioModel{base: b}
	case modality.Video:
		return &VideoModel{base: b}
	case modality.Image:
		return &ImageModel{base: b}
	default:
		b.timeout = r.cfg.RequestTimeout()
		return &TextModel{base: b}
	}
}

// Find locates a registered model by registration key or remote identifier,
// case-insensitively.
func Find(registered []Model, idOrName string) (Model, bool) {
	needle := strings.ToLower(strings.TrimSpace(idOrName))
	for _, m := range registered {
		if strings.ToLower(m.ID()) == needle || strings.ToLower(m.Name()) == needle {
			return m, true
		}
	}
	return nil, false
}
