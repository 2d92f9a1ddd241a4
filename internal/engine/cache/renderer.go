package cache

import (
	"context"
	"errors"

	"github.com/rshade/qrbatch/internal/logging"
	"github.com/rshade/qrbatch/internal/render"
)

// Renderer serves repeated render requests from a FileStore and falls
// through to Next on a miss. Store failures never fail a render.
type Renderer struct {
	Next  render.Renderer
	Store *FileStore
}

// NewRenderer wraps next with store. A nil or disabled store passes every
// request straight through.
func NewRenderer(next render.Renderer, store *FileStore) *Renderer {
	return &Renderer{Next: next, Store: store}
}

// Render implements render.Renderer.
func (r *Renderer) Render(ctx context.Context, req render.Request) ([]byte, error) {
	if r.Store == nil || !r.Store.IsEnabled() {
		return r.Next.Render(ctx, req)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	log := logging.FromContext(ctx).With().Str("component", "cache").Logger()

	key, err := GenerateKey(req)
	if err != nil {
		log.Warn().Err(err).Msg("cache key failed, rendering uncached")
		return r.Next.Render(ctx, req)
	}

	entry, err := r.Store.Get(key)
	switch {
	case err == nil:
		log.Debug().Str("key", key).Dur("age", entry.Age()).Msg("cache hit")
		return entry.Data, nil
	case errors.Is(err, ErrCacheNotFound), errors.Is(err, ErrCacheExpired):
	default:
		log.Warn().Err(err).Str("key", key).Msg("cache read failed")
	}

	data, err := r.Next.Render(ctx, req)
	if err != nil {
		return nil, err
	}
	if setErr := r.Store.Set(key, data, req.Style.WithDefaults().Format.ContentType()); setErr != nil {
		log.Warn().Err(setErr).Str("key", key).Msg("cache write failed")
	}
	return data, nil
}
