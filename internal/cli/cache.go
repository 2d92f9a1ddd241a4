package cli

import (
	"path/filepath"

	"github.com/rshade/qrbatch/internal/config"
	"github.com/rshade/qrbatch/internal/engine/cache"
	"github.com/rshade/qrbatch/internal/render"
)

// newSingleRenderer returns the renderer for single images: the QR renderer,
// behind the on-disk cache when cache.enabled (or QRBATCH_CACHE_ENABLED) is set.
// A cache that cannot be opened is logged and skipped.
func newSingleRenderer(cfg *config.Config) render.Renderer {
	base := render.New()
	if !cache.EnabledFromEnv(cfg.Cache.Enabled) {
		return base
	}

	dir := cfg.Cache.Directory
	if dir == "" {
		home, err := config.GetConfigDir()
		if err != nil {
			logger.Warn().Err(err).Msg("render cache disabled: no config directory")
			return base
		}
		dir = filepath.Join(home, "cache")
	}
	dir = cache.DirFromEnv(dir)

	store, err := cache.NewFileStore(dir, true, cache.TTLFromEnv(cfg.Cache.TTLSeconds))
	if err != nil {
		logger.Warn().Err(err).Str("dir", dir).Msg("render cache disabled")
		return base
	}
	return cache.NewRenderer(base, store)
}
