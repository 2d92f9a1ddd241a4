// Package cache provides file-based caching with TTL expiration for rendered
// single QR images.
//
// Rendering a styled code is deterministic, so repeated requests for the same
// data, style and size can be served from disk. Key features:
//   - File-based storage in ~/.qrbatch/cache/ (one JSON file per image)
//   - Configurable TTL (default 1 hour) via config file or environment variable
//   - Automatic expiration and cleanup of stale entries
//   - SHA256-based cache keys over every render input, including the logo bytes
//
// Bulk runs never use the cache: every bulk record is rendered fresh.
package cache
