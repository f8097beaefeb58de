package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"reflect"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/goliatone/go-config/cfgx"
	"github.com/goliatone/go-notification-list/pkg/domain"
	"gopkg.in/yaml.v3"
)

// EnvPrefix namespaces environment overrides, e.g. NOTIFY_WIDGET_EMPTY_TEXT.
const EnvPrefix = "NOTIFY_"

// Config captures module-level configuration knobs. Feature packages
// (widget, manager, templates, transport) pull from these nested structs.
type Config struct {
	Widget       WidgetConfig       `mapstructure:"widget" json:"widget" envPrefix:"WIDGET_"`
	Localization LocalizationConfig `mapstructure:"localization" json:"localization" envPrefix:"LOCALIZATION_"`
	Templates    TemplateConfig     `mapstructure:"templates" json:"templates" envPrefix:"TEMPLATES_"`
	Storage      StorageConfig      `mapstructure:"storage" json:"storage" envPrefix:"STORAGE_"`
	HTTP         HTTPConfig         `mapstructure:"http" json:"http" envPrefix:"HTTP_"`
	Realtime     RealtimeConfig     `mapstructure:"realtime" json:"realtime" envPrefix:"REALTIME_"`
	Options      OptionsConfig      `mapstructure:"options" json:"options" envPrefix:"OPTIONS_"`
}

// WidgetConfig holds the string form of the list widget settings. Function
// templates and resolver sections are wired in code.
type WidgetConfig struct {
	ContainerTemplate string            `mapstructure:"container_template" json:"container_template" env:"CONTAINER_TEMPLATE"`
	ItemTemplate      string            `mapstructure:"item_template" json:"item_template" env:"ITEM_TEMPLATE"`
	Sections          map[string]string `mapstructure:"sections" json:"sections"`
	TimestampFormat   string            `mapstructure:"timestamp_format" json:"timestamp_format" env:"TIMESTAMP_FORMAT"`
	// ListGlue falls back to a newline when empty.
	ListGlue  string `mapstructure:"list_glue" json:"list_glue" env:"LIST_GLUE"`
	EmptyText string `mapstructure:"empty_text" json:"empty_text" env:"EMPTY_TEXT"`
	UserID    *int64 `mapstructure:"user_id" json:"user_id,omitempty"`
}

// LocalizationConfig controls default locale + fallback chains.
type LocalizationConfig struct {
	DefaultLocale string              `mapstructure:"default_locale" json:"default_locale" env:"DEFAULT_LOCALE"`
	Fallbacks     map[string][]string `mapstructure:"fallbacks" json:"fallbacks"`
	TimeZone      string              `mapstructure:"time_zone" json:"time_zone" env:"TIME_ZONE"`
}

// TemplateConfig scopes notification type text compilation.
type TemplateConfig struct {
	// Sanitize filters compiled text through the HTML policy. Unset means on.
	Sanitize *bool                   `mapstructure:"sanitize" json:"sanitize,omitempty" env:"SANITIZE"`
	Types    []domain.TypeDefinition `mapstructure:"types" json:"types"`
}

// SanitizeEnabled reports whether compiled text is sanitized.
func (t TemplateConfig) SanitizeEnabled() bool {
	return t.Sanitize == nil || *t.Sanitize
}

// StorageConfig selects the notification repository backend.
type StorageConfig struct {
	Driver      string `mapstructure:"driver" json:"driver" env:"DRIVER"`
	DSN         string `mapstructure:"dsn" json:"dsn" env:"DSN"`
	AutoMigrate bool   `mapstructure:"auto_migrate" json:"auto_migrate" env:"AUTO_MIGRATE"`
}

// HTTPConfig configures the HTTP transport.
type HTTPConfig struct {
	Addr        string        `mapstructure:"addr" json:"addr" env:"ADDR"`
	ReadTimeout time.Duration `mapstructure:"read_timeout" json:"read_timeout" env:"READ_TIMEOUT"`
	// AllowedOrigins enables CORS for the listed origins.
	AllowedOrigins []string `mapstructure:"allowed_origins" json:"allowed_origins" env:"ALLOWED_ORIGINS" envSeparator:","`
	// WriteRateLimit caps mutating requests per client, per second. Zero
	// disables the limiter.
	WriteRateLimit float64 `mapstructure:"write_rate_limit" json:"write_rate_limit" env:"WRITE_RATE_LIMIT"`
	WriteBurst     int     `mapstructure:"write_burst" json:"write_burst" env:"WRITE_BURST"`
}

// RealtimeConfig controls optional broadcaster integration.
type RealtimeConfig struct {
	Enabled bool `mapstructure:"enabled" json:"enabled" env:"ENABLED"`
}

// OptionsConfig governs go-options specific behaviors.
type OptionsConfig struct {
	EnableScopeSchema bool `mapstructure:"enable_scope_schema" json:"enable_scope_schema" env:"ENABLE_SCOPE_SCHEMA"`
}

const (
	StorageMemory = "memory"
	StorageSQLite = "sqlite"
)

// Defaults returns the baseline configuration.
func Defaults() Config {
	return Config{
		Widget: WidgetConfig{
			ContainerTemplate: "{notifications}{emptyText}",
			ItemTemplate:      "{notification.type} at {timestamp}",
			TimestampFormat:   "php:m/d/Y H:i:s",
			ListGlue:          "\n",
			EmptyText:         "No notifications available.",
		},
		Localization: LocalizationConfig{DefaultLocale: "en", TimeZone: "UTC"},
		Storage: StorageConfig{
			Driver:      StorageMemory,
			AutoMigrate: true,
		},
		HTTP: HTTPConfig{
			Addr:           ":8080",
			ReadTimeout:    10 * time.Second,
			WriteRateLimit: 5,
			WriteBurst:     10,
		},
		Realtime: RealtimeConfig{
			Enabled: true,
		},
	}
}

// Validate ensures required fields are present and sane.
func (c *Config) Validate() error {
	if c.Localization.DefaultLocale == "" {
		return errors.New("localization.default_locale is required")
	}
	if c.Localization.TimeZone != "" {
		if _, err := time.LoadLocation(c.Localization.TimeZone); err != nil {
			return fmt.Errorf("localization.time_zone: %w", err)
		}
	}
	switch c.Storage.Driver {
	case StorageMemory:
	case StorageSQLite:
		if c.Storage.DSN == "" {
			return errors.New("storage.dsn is required for sqlite")
		}
	default:
		return fmt.Errorf("storage.driver %q is not supported", c.Storage.Driver)
	}
	if c.HTTP.ReadTimeout < 0 {
		return fmt.Errorf("http.read_timeout must be >= 0")
	}
	if c.HTTP.WriteRateLimit < 0 || c.HTTP.WriteBurst < 0 {
		return fmt.Errorf("http.write_rate_limit and http.write_burst must be >= 0")
	}
	for i, def := range c.Templates.Types {
		if def.Code == "" {
			return fmt.Errorf("templates.types[%d].code is required", i)
		}
		if def.Text.IsZero() {
			return fmt.Errorf("templates.types[%d].text is required", i)
		}
	}
	return nil
}

// Location returns the configured time zone, UTC when unset.
func (c Config) Location() *time.Location {
	if c.Localization.TimeZone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Localization.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Load decodes arbitrary input (struct, map, cfg struct) using cfgx helpers.
// While cfgx.Build still returns zero values, we fallback to a lightweight
// decoder to keep smoke tests meaningful.
func Load(input any, opts ...LoadOption) (Config, error) {
	settings := loadOptions{}
	for _, opt := range opts {
		opt(&settings)
	}

	cfg, err := cfgx.Build(input, settings.buildOpts...)
	if err != nil {
		return Config{}, err
	}

	if isZero(cfg) {
		if err := decodeFallback(input, &cfg); err != nil {
			return Config{}, err
		}
	}

	cfg = cfg.withDefaults()

	if settings.env {
		if err := ApplyEnv(&cfg, settings.environ); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadFile reads a YAML (or JSON) document from path and loads it.
func LoadFile(path string, opts ...LoadOption) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return LoadYAML(raw, opts...)
}

// LoadYAML decodes a YAML document and loads it.
func LoadYAML(raw []byte, opts ...LoadOption) (Config, error) {
	doc := map[string]any{}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return Config{}, fmt.Errorf("config: decode yaml: %w", err)
	}
	return Load(doc, opts...)
}

// ApplyEnv overlays NOTIFY_* variables onto cfg. A nil environ reads the
// process environment.
func ApplyEnv(cfg *Config, environ map[string]string) error {
	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return fmt.Errorf("config: env: %w", err)
	}
	return nil
}

// LoadOption lets callers amend cfgx build options.
type LoadOption func(*loadOptions)

type loadOptions struct {
	buildOpts []cfgx.Option[Config]
	env       bool
	environ   map[string]string
}

// WithBuildOptions forwards cfgx options (duration hooks, preprocessors, etc.).
func WithBuildOptions(opts ...cfgx.Option[Config]) LoadOption {
	return func(lo *loadOptions) {
		lo.buildOpts = append(lo.buildOpts, opts...)
	}
}

// WithEnv applies environment overrides after decoding. A nil environ reads
// the process environment.
func WithEnv(environ map[string]string) LoadOption {
	return func(lo *loadOptions) {
		lo.env = true
		lo.environ = environ
	}
}

func (c Config) withDefaults() Config {
	defaults := Defaults()

	if c.Widget.ContainerTemplate == "" {
		c.Widget.ContainerTemplate = defaults.Widget.ContainerTemplate
	}
	if c.Widget.ItemTemplate == "" {
		c.Widget.ItemTemplate = defaults.Widget.ItemTemplate
	}
	if c.Widget.TimestampFormat == "" {
		c.Widget.TimestampFormat = defaults.Widget.TimestampFormat
	}
	if c.Widget.ListGlue == "" {
		c.Widget.ListGlue = defaults.Widget.ListGlue
	}
	if c.Widget.EmptyText == "" {
		c.Widget.EmptyText = defaults.Widget.EmptyText
	}
	if c.Localization.DefaultLocale == "" {
		c.Localization.DefaultLocale = defaults.Localization.DefaultLocale
	}
	if c.Localization.TimeZone == "" {
		c.Localization.TimeZone = defaults.Localization.TimeZone
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = defaults.Storage.Driver
		c.Storage.AutoMigrate = defaults.Storage.AutoMigrate
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = defaults.HTTP.Addr
	}
	if c.HTTP.ReadTimeout == 0 {
		c.HTTP.ReadTimeout = defaults.HTTP.ReadTimeout
	}
	if c.HTTP.WriteBurst == 0 {
		c.HTTP.WriteBurst = defaults.HTTP.WriteBurst
	}
	if !c.Realtime.Enabled {
		c.Realtime.Enabled = defaults.Realtime.Enabled
	}
	return c
}

func isZero(cfg Config) bool {
	return reflect.DeepEqual(cfg, Config{})
}

func decodeFallback(input any, cfg *Config) error {
	switch v := input.(type) {
	case nil:
		return nil
	case Config:
		*cfg = v
		return nil
	case *Config:
		if v != nil {
			*cfg = *v
		}
		return nil
	case map[string]any:
		return decodeMap(v, cfg)
	default:
		return fmt.Errorf("unsupported config input type: %T", input)
	}
}

func decodeMap(input map[string]any, cfg *Config) error {
	if input == nil {
		return nil
	}
	payload, err := json.Marshal(input)
	if err != nil {
		return err
	}
	return json.Unmarshal(payload, cfg)
}
