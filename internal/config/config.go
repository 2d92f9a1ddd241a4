package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rshade/qrbatch/internal/engine/batch"
	"github.com/rshade/qrbatch/internal/engine/cache"
	"github.com/rshade/qrbatch/internal/pipeline"
	"github.com/rshade/qrbatch/internal/style"
	"github.com/rshade/qrbatch/pkg/version"
)

const (
	configFileName = "config.yaml"

	defaultOutputDir   = "."
	defaultServerAddr  = "127.0.0.1:8080"
	defaultMaxUploadMB = 10
)

// ErrUnknownKey is returned by Get and Set for keys that do not exist.
var ErrUnknownKey = errors.New("unknown configuration key")

// Config is the qrbatch configuration file.
type Config struct {
	// Version is the schema version the file was written with.
	Version string        `yaml:"version"`
	Style   style.Config  `yaml:"style"`
	Render  RenderConfig  `yaml:"render"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
	Server  ServerConfig  `yaml:"server"`
	Cache   CacheConfig   `yaml:"cache"`

	configPath string
}

// RenderConfig controls bulk runs.
type RenderConfig struct {
	Concurrency   int    `yaml:"concurrency"`
	FailurePolicy string `yaml:"failure_policy"`
	// Logo is a path to an image placed at the center of every code.
	Logo string `yaml:"logo,omitempty"`
}

// OutputConfig controls where generated files go and how progress is shown.
type OutputConfig struct {
	Dir   string `yaml:"dir"`
	Plain bool   `yaml:"plain"`
}

// LoggingConfig controls the application logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file,omitempty"`
}

// ServerConfig controls the HTTP surface started by `qrbatch serve`.
type ServerConfig struct {
	Addr        string `yaml:"addr"`
	MaxUploadMB int    `yaml:"max_upload_mb"`
}

// CacheConfig controls the on-disk cache of single rendered images used by
// `qrbatch generate` and the /api/v1/qr endpoint.
type CacheConfig struct {
	Enabled    bool `yaml:"enabled"`
	TTLSeconds int  `yaml:"ttl_seconds"`
	// Directory defaults to $QRBATCH_HOME/cache.
	Directory string `yaml:"directory,omitempty"`
}

// Defaults returns a Config with every field set to its default and no path.
func Defaults() *Config {
	return &Config{
		Version: version.ConfigSchema,
		Style:   style.Default(),
		Render: RenderConfig{
			Concurrency:   batch.DefaultConcurrency,
			FailurePolicy: string(pipeline.FailureAbort),
		},
		Output: OutputConfig{
			Dir: defaultOutputDir,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Server: ServerConfig{
			Addr:        defaultServerAddr,
			MaxUploadMB: defaultMaxUploadMB,
		},
		Cache: CacheConfig{
			TTLSeconds: cache.DefaultTTLSeconds,
		},
	}
}

// New returns the defaults overlaid with the global config file, if present.
// A file that cannot be read or parsed leaves the defaults in place.
func New() *Config {
	cfg := Defaults()

	dir, err := GetConfigDir()
	if err != nil {
		return cfg
	}
	cfg.configPath = filepath.Join(dir, configFileName)

	if loadErr := cfg.Load(); loadErr != nil && !errors.Is(loadErr, os.ErrNotExist) {
		_, _ = fmt.Fprintf(os.Stderr, "Warning: ignoring config file %s: %v\n", cfg.configPath, loadErr)
	}
	return cfg
}

// ConfigPath returns the file this config is loaded from and saved to.
func (c *Config) ConfigPath() string {
	return c.configPath
}

// SetConfigPath changes where Load and Save operate.
func (c *Config) SetConfigPath(path string) {
	c.configPath = path
}

// Load reads the config file onto c. Keys missing from the file keep their
// current values.
func (c *Config) Load() error {
	data, err := os.ReadFile(c.configPath)
	if err != nil {
		return err
	}
	if err = yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing %s: %w", c.configPath, err)
	}
	return nil
}

// Save writes c to its config path, creating the parent directory.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.New("config path is not set")
	}
	if err := os.MkdirAll(filepath.Dir(c.configPath), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err = os.WriteFile(c.configPath, data, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", c.configPath, err)
	}
	return nil
}

// Validate checks the schema version and every section.
func (c *Config) Validate() error {
	if err := version.CheckConfigSchema(c.Version); err != nil {
		return err
	}
	if err := c.Style.WithDefaults().Validate(); err != nil {
		return fmt.Errorf("style: %w", err)
	}
	if c.Render.Concurrency < batch.MinConcurrency || c.Render.Concurrency > batch.MaxConcurrency {
		return fmt.Errorf("render.concurrency: %w: got %d", batch.ErrInvalidConcurrency, c.Render.Concurrency)
	}
	if _, err := pipeline.ParseFailurePolicy(c.Render.FailurePolicy); err != nil {
		return fmt.Errorf("render.failure_policy: %w", err)
	}
	if c.Render.Logo != "" {
		if _, err := os.Stat(c.Render.Logo); err != nil {
			return fmt.Errorf("render.logo: %w", err)
		}
	}
	switch c.Logging.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	if c.Server.MaxUploadMB < 1 {
		return fmt.Errorf("server.max_upload_mb must be positive, got %d", c.Server.MaxUploadMB)
	}
	if c.Cache.Enabled {
		if err := cache.ValidateTTL(c.Cache.TTLSeconds); err != nil {
			return fmt.Errorf("cache.ttl_seconds: %w", err)
		}
	}
	return nil
}

// Get returns the value at a dotted key such as "style.color".
func (c *Config) Get(key string) (string, error) {
	tree, err := c.tree()
	if err != nil {
		return "", err
	}
	node, err := lookup(tree, key)
	if err != nil {
		return "", err
	}
	if section, ok := node.(map[string]interface{}); ok {
		out, marshalErr := yaml.Marshal(section)
		if marshalErr != nil {
			return "", marshalErr
		}
		return strings.TrimRight(string(out), "\n"), nil
	}
	return fmt.Sprint(node), nil
}

// Set assigns value to a leaf key. The value is parsed as a YAML scalar, so
// "4" sets an int and "true" a bool. The result must still validate.
func (c *Config) Set(key, value string) error {
	tree, err := c.tree()
	if err != nil {
		return err
	}

	parts := strings.Split(key, ".")
	parent := tree
	for _, p := range parts[:len(parts)-1] {
		next, ok := parent[p].(map[string]interface{})
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownKey, key)
		}
		parent = next
	}
	leaf := parts[len(parts)-1]
	if _, ok := parent[leaf]; !ok && !optionalKeys[key] {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	if _, isSection := parent[leaf].(map[string]interface{}); isSection {
		return fmt.Errorf("%s is a section, set one of its keys instead", key)
	}

	var scalar interface{}
	if err = yaml.Unmarshal([]byte(value), &scalar); err != nil || scalar == nil {
		scalar = value
	}
	parent[leaf] = scalar

	data, err := yaml.Marshal(tree)
	if err != nil {
		return err
	}
	updated := *c
	if err = yaml.Unmarshal(data, &updated); err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	if err = updated.Validate(); err != nil {
		return err
	}
	*c = updated
	return nil
}

// List returns every leaf key with its value, sorted by key.
func (c *Config) List() ([][2]string, error) {
	tree, err := c.tree()
	if err != nil {
		return nil, err
	}
	var out [][2]string
	flatten("", tree, &out)
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out, nil
}

// optionalKeys are omitted from the YAML tree while empty but may be set.
//
//nolint:gochecknoglobals // Compile-time constant lookup table.
var optionalKeys = map[string]bool{
	"render.logo":     true,
	"logging.file":    true,
	"style.width":     true,
	"style.height":    true,
	"cache.directory": true,
}

func (c *Config) tree() (map[string]interface{}, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, err
	}
	var tree map[string]interface{}
	if err = yaml.Unmarshal(data, &tree); err != nil {
		return nil, err
	}
	return tree, nil
}

func lookup(tree map[string]interface{}, key string) (interface{}, error) {
	var node interface{} = tree
	for _, p := range strings.Split(key, ".") {
		m, ok := node.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownKey, key)
		}
		if node, ok = m[p]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownKey, key)
		}
	}
	return node, nil
}

func flatten(prefix string, node map[string]interface{}, out *[][2]string) {
	for k, v := range node {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if m, ok := v.(map[string]interface{}); ok {
			flatten(key, m, out)
			continue
		}
		*out = append(*out, [2]string{key, fmt.Sprint(v)})
	}
}
