// Package config provides configuration types, defaults and validation for
// typstmath.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	"github.com/zjrosen/typstmath/internal/log"
	"github.com/zjrosen/typstmath/internal/symbols"
	"github.com/zjrosen/typstmath/internal/walker"
)

// Config is the full typstmath configuration as loaded by viper.
type Config struct {
	RenderingMode     int                     `mapstructure:"rendering_mode"`
	RenderOutsideMath bool                    `mapstructure:"render_outside_math"`
	Blacklist         []string                `mapstructure:"blacklist"`
	CustomSymbols     map[string]SymbolConfig `mapstructure:"custom_symbols"`
	MaxNodes          int                     `mapstructure:"max_nodes"` // 0 disables the guard
	Cache             CacheConfig             `mapstructure:"cache"`
	Theme             ThemeConfig             `mapstructure:"theme"`
	Tracing           TracingConfig           `mapstructure:"tracing"`
	Serve             ServeConfig             `mapstructure:"serve"`
	Watch             WatchConfig             `mapstructure:"watch"`
}

// SymbolConfig is a user-defined symbol.
type SymbolConfig struct {
	Content string `mapstructure:"content"`
	Color   string `mapstructure:"color"` // one of the color category names, default "letter"
}

// CacheConfig controls the decoration result cache.
type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// ThemeConfig overrides the preview palette.
type ThemeConfig struct {
	// Colors maps a color category ("number", "operator", ...) to a hex
	// color. Nested maps are flattened with dots.
	Colors map[string]any `mapstructure:"colors"`
}

// TracingConfig holds OpenTelemetry settings.
type TracingConfig struct {
	// Enabled controls whether tracing is active.
	// Default: false
	Enabled bool `mapstructure:"enabled"`

	// Exporter selects the trace export backend.
	// Options: "none", "file", "stdout", "otlp"
	// Default: "file"
	Exporter string `mapstructure:"exporter"`

	// FilePath is the output file for "file" exporter.
	// Default: ~/.config/typstmath/traces/traces.jsonl
	FilePath string `mapstructure:"file_path"`

	// OTLPEndpoint is the collector endpoint for "otlp" exporter.
	// Default: "localhost:4317"
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`

	// SampleRate controls trace sampling (0.0 to 1.0).
	// Default: 1.0
	SampleRate float64 `mapstructure:"sample_rate"`
}

// ServeConfig configures the HTTP API.
type ServeConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes"`
}

// WatchConfig configures watch mode.
type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// FlattenedColors returns the Colors map flattened to dot-notation keys.
func (t ThemeConfig) FlattenedColors() map[string]string {
	result := make(map[string]string)
	flattenColors("", t.Colors, result)
	return result
}

func flattenColors(prefix string, m map[string]any, result map[string]string) {
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}

		switch val := v.(type) {
		case string:
			result[key] = val
		case map[string]any:
			flattenColors(key, val, result)
		case map[any]any:
			// YAML sometimes produces map[any]any instead of map[string]any
			converted := make(map[string]any)
			for mk, mv := range val {
				if strKey, ok := mk.(string); ok {
					converted[strKey] = mv
				}
			}
			flattenColors(key, converted, result)
		}
	}
}

// Palette returns the theme overrides keyed by color category.
func (t ThemeConfig) Palette() (map[symbols.Color]string, error) {
	palette := make(map[symbols.Color]string)
	for name, hex := range t.FlattenedColors() {
		color, err := symbols.ParseColor(name)
		if err != nil {
			return nil, fmt.Errorf("theme.colors: %w", err)
		}
		if !hexColor.MatchString(hex) {
			return nil, fmt.Errorf("theme.colors.%s: %q is not a hex color", name, hex)
		}
		palette[color] = hex
	}
	return palette, nil
}

// DefaultTracesFilePath returns ~/.config/typstmath/traces/traces.jsonl, or
// "" when the home directory is unknown.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "typstmath", "traces", "traces.jsonl")
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		RenderingMode:     walker.TierRewrites,
		RenderOutsideMath: false,
		MaxNodes:          200_000,
		Cache: CacheConfig{
			Enabled: true,
			TTL:     10 * time.Minute,
		},
		Tracing: TracingConfig{
			Enabled:      false,
			Exporter:     "file",
			FilePath:     "", // Derived from the home directory at runtime
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
		},
		Serve: ServeConfig{
			Addr:         "localhost:7117",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			MaxBodyBytes: 4 << 20,
		},
		Watch: WatchConfig{
			Debounce: 150 * time.Millisecond,
		},
	}
}

// Validate checks c for errors. Every error wraps ErrInvalid.
func (c Config) Validate() error {
	var errs []error
	if c.RenderingMode < 0 || c.RenderingMode > walker.MaxRenderingMode {
		errs = append(errs, fmt.Errorf("rendering_mode must be between 0 and %d, got %d", walker.MaxRenderingMode, c.RenderingMode))
	}
	if c.MaxNodes < 0 {
		errs = append(errs, fmt.Errorf("max_nodes must not be negative, got %d", c.MaxNodes))
	}
	if c.Cache.TTL < 0 {
		errs = append(errs, fmt.Errorf("cache.ttl must not be negative, got %s", c.Cache.TTL))
	}
	if c.Watch.Debounce < 0 {
		errs = append(errs, fmt.Errorf("watch.debounce must not be negative, got %s", c.Watch.Debounce))
	}
	if c.Serve.MaxBodyBytes < 0 {
		errs = append(errs, fmt.Errorf("serve.max_body_bytes must not be negative, got %d", c.Serve.MaxBodyBytes))
	}
	if _, err := c.CustomGlyphs(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Theme.Palette(); err != nil {
		errs = append(errs, err)
	}
	if err := ValidateTracing(c.Tracing); err != nil {
		errs = append(errs, err)
	}

	if err := errors.Join(errs...); err != nil {
		log.Debug(log.CatConfig, "config rejected", "error", err)
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// ValidateTracing checks tracing configuration for errors.
// Returns nil if the configuration is valid (empty values use defaults).
func ValidateTracing(tracing TracingConfig) error {
	if tracing.SampleRate < 0.0 || tracing.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", tracing.SampleRate)
	}

	switch tracing.Exporter {
	case "", "none", "file", "stdout", "otlp":
	default:
		return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", tracing.Exporter)
	}

	if tracing.Enabled && tracing.Exporter == "otlp" && tracing.OTLPEndpoint == "" {
		return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
	}
	return nil
}

// CustomGlyphs converts the custom_symbols section into resolver glyphs.
func (c Config) CustomGlyphs() (map[string]symbols.Glyph, error) {
	names := make([]string, 0, len(c.CustomSymbols))
	for name := range c.CustomSymbols {
		names = append(names, name)
	}
	sort.Strings(names)

	glyphs := make(map[string]symbols.Glyph, len(names))
	for _, name := range names {
		sym := c.CustomSymbols[name]
		if sym.Content == "" {
			return nil, fmt.Errorf("custom_symbols.%s: content is required", name)
		}
		color := symbols.Letter
		if sym.Color != "" {
			parsed, err := symbols.ParseColor(sym.Color)
			if err != nil {
				return nil, fmt.Errorf("custom_symbols.%s: %w", name, err)
			}
			color = parsed
		}
		glyphs[name] = symbols.Glyph{Content: sym.Content, Color: color}
	}
	return glyphs, nil
}

// Resolver builds the symbol resolver described by c.
func (c Config) Resolver() (*symbols.Resolver, error) {
	glyphs, err := c.CustomGlyphs()
	if err != nil {
		return nil, err
	}
	return symbols.NewResolver(glyphs, c.Blacklist), nil
}

// WalkOptions returns the walker options described by c.
func (c Config) WalkOptions() walker.Options {
	return walker.Options{
		RenderingMode:     c.RenderingMode,
		RenderOutsideMath: c.RenderOutsideMath,
	}
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# typstmath configuration

# Rendering tier:
#   0  symbols, shorthands and operators only
#   1  also lift attachments (x^2, a_n) above/below the baseline
#   2  also rewrite calls: cal/frak/bb, accents, abs/norm, sqrt
#   3  same as 2 (accepted for editor compatibility)
rendering_mode: 2

# Decorate #sym.* references written outside equations
render_outside_math: false

# Symbol names that are never decorated
# blacklist:
#   - dot
#   - tilde

# Extra symbols, looked up before the built-in table
# Colors: number, letter, bigletter, operator, comparison, set, keyword
# custom_symbols:
#   "arrow.squiggly":
#     content: "⇝"
#     color: comparison

# Refuse documents with more syntax nodes than this (0 disables the limit)
max_nodes: 200000

# Cache decorations of unchanged documents
cache:
  enabled: true
  ttl: 10m

# Preview colors per category
# theme:
#   colors:
#     number: "#F78C6C"
#     letter: "#82AAFF"
#     operator: "#89DDFF"

# HTTP API (typstmath serve)
serve:
  addr: localhost:7117
  read_timeout: 10s
  write_timeout: 10s
  max_body_bytes: 4194304

# Watch mode (typstmath watch)
watch:
  debounce: 150ms

# OpenTelemetry tracing
# tracing:
#   enabled: false                 # Enable/disable tracing (default: false)
#   exporter: file                 # Export backend: none, file, stdout, otlp (default: file)
#   file_path: ~/.config/typstmath/traces/traces.jsonl
#   otlp_endpoint: localhost:4317  # OTLP collector endpoint (for otlp exporter)
#   sample_rate: 1.0               # Trace sampling rate 0.0-1.0 (default: 1.0)
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
