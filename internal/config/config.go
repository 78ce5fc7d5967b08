// Package config loads pdfextract settings from defaults, an optional
// YAML file and PDFEXTRACT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/pyhub-apps/pdfextract-golang/pkg/layout"
	"github.com/pyhub-apps/pdfextract-golang/pkg/pdf"
	"github.com/pyhub-apps/pdfextract-golang/pkg/references"
	"github.com/pyhub-apps/pdfextract-golang/pkg/render"
)

// Config is the file and environment shape of the settings. An empty
// Backend tries every backend in turn.
type Config struct {
	Backend    string           `mapstructure:"backend" yaml:"backend"`
	Format     string           `mapstructure:"format" yaml:"format"`
	Types      []string         `mapstructure:"types" yaml:"types"`
	Workers    int              `mapstructure:"workers" yaml:"workers"`
	Layout     LayoutConfig     `mapstructure:"layout" yaml:"layout"`
	References ReferencesConfig `mapstructure:"references" yaml:"references"`
}

// LayoutConfig holds the layout thresholds, in points
type LayoutConfig struct {
	MinMarginWidth  float64 `mapstructure:"min_margin_width" yaml:"min_margin_width"`
	MinMarginHeight float64 `mapstructure:"min_margin_height" yaml:"min_margin_height"`
	XTolerance      float64 `mapstructure:"x_tolerance" yaml:"x_tolerance"`
	YTolerance      float64 `mapstructure:"y_tolerance" yaml:"y_tolerance"`
	RegionGap       float64 `mapstructure:"region_gap" yaml:"region_gap"`
}

// ReferencesConfig holds the reference segmentation settings
type ReferencesConfig struct {
	MinLetterRatio float64 `mapstructure:"min_letter_ratio" yaml:"min_letter_ratio"`
	MaxLetterRatio float64 `mapstructure:"max_letter_ratio" yaml:"max_letter_ratio"`
	CloseTrailing  bool    `mapstructure:"close_trailing" yaml:"close_trailing"`
}

// DefaultConfig returns the built-in settings
func DefaultConfig() *Config {
	l := layout.DefaultConfig()
	r := references.DefaultConfig()
	return &Config{
		Format:  string(render.FormatXML),
		Types:   []string{references.Sections},
		Workers: 4,
		Layout: LayoutConfig{
			MinMarginWidth:  l.MinMarginWidth,
			MinMarginHeight: l.MinMarginHeight,
			XTolerance:      l.XTolerance,
			YTolerance:      l.YTolerance,
			RegionGap:       l.RegionGap,
		},
		References: ReferencesConfig{
			MinLetterRatio: r.MinLetterRatio,
			MaxLetterRatio: r.MaxLetterRatio,
			CloseTrailing:  r.CloseTrailing,
		},
	}
}

// LayoutSettings converts the layout section for the layout package
func (c *Config) LayoutSettings() layout.Config {
	return layout.Config{
		MinMarginWidth:  c.Layout.MinMarginWidth,
		MinMarginHeight: c.Layout.MinMarginHeight,
		XTolerance:      c.Layout.XTolerance,
		YTolerance:      c.Layout.YTolerance,
		RegionGap:       c.Layout.RegionGap,
	}
}

// ReferenceSettings converts the references section for the references
// package
func (c *Config) ReferenceSettings() references.Config {
	return references.Config{
		MinLetterRatio: c.References.MinLetterRatio,
		MaxLetterRatio: c.References.MaxLetterRatio,
		CloseTrailing:  c.References.CloseTrailing,
	}
}

// Validate checks the values a run depends on
func (c *Config) Validate() error {
	if _, err := pdf.ParseBackend(c.Backend); err != nil {
		return err
	}
	if _, err := render.New(render.Format(c.Format)); err != nil {
		return err
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.References.MinLetterRatio > c.References.MaxLetterRatio {
		return fmt.Errorf("references.min_letter_ratio %.2f exceeds max_letter_ratio %.2f",
			c.References.MinLetterRatio, c.References.MaxLetterRatio)
	}
	return nil
}

// Manager loads the configuration and reloads it when the file changes
type Manager struct {
	mu        sync.RWMutex
	v         *viper.Viper
	config    *Config
	callbacks []func(*Config)
}

// NewManager creates a config manager and loads the initial config. With an
// empty cfgFile, pdfextract.yaml is looked up in the working directory and
// in ~/.pdfextract; a missing file is not an error.
func NewManager(cfgFile string) (*Manager, error) {
	cm := &Manager{v: viper.New()}

	if err := cm.initViper(cfgFile); err != nil {
		return nil, err
	}

	cfg, err := cm.load()
	if err != nil {
		return nil, err
	}
	cm.config = cfg

	return cm, nil
}

// initViper sets up defaults, environment and the config file
func (cm *Manager) initViper(cfgFile string) error {
	v := cm.v
	d := DefaultConfig()
	v.SetDefault("backend", d.Backend)
	v.SetDefault("format", d.Format)
	v.SetDefault("types", d.Types)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("layout.min_margin_width", d.Layout.MinMarginWidth)
	v.SetDefault("layout.min_margin_height", d.Layout.MinMarginHeight)
	v.SetDefault("layout.x_tolerance", d.Layout.XTolerance)
	v.SetDefault("layout.y_tolerance", d.Layout.YTolerance)
	v.SetDefault("layout.region_gap", d.Layout.RegionGap)
	v.SetDefault("references.min_letter_ratio", d.References.MinLetterRatio)
	v.SetDefault("references.max_letter_ratio", d.References.MaxLetterRatio)
	v.SetDefault("references.close_trailing", d.References.CloseTrailing)

	// Environment variables with PDFEXTRACT_ prefix, e.g.
	// PDFEXTRACT_LAYOUT_REGION_GAP
	v.SetEnvPrefix("PDFEXTRACT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("pdfextract")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.pdfextract")
	}

	// Try to read config file (not required)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

// load parses the current viper state into a Config
func (cm *Manager) load() (*Config, error) {
	var cfg Config
	if err := cm.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Get returns the current configuration
func (cm *Manager) Get() *Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.config
}

// File returns the config file in use, or "" when running on defaults
func (cm *Manager) File() string {
	return cm.v.ConfigFileUsed()
}

// OnChange registers a callback for config reloads
func (cm *Manager) OnChange(fn func(*Config)) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.callbacks = append(cm.callbacks, fn)
}

// WatchConfig reloads the configuration when the file changes. A reload
// that fails validation keeps the previous configuration.
func (cm *Manager) WatchConfig() {
	cm.v.OnConfigChange(func(e fsnotify.Event) {
		cm.reload()
	})
	cm.v.WatchConfig()
}

func (cm *Manager) reload() {
	if err := cm.v.ReadInConfig(); err != nil {
		return
	}
	cfg, err := cm.load()
	if err != nil {
		return
	}

	cm.mu.Lock()
	cm.config = cfg
	callbacks := make([]func(*Config), len(cm.callbacks))
	copy(callbacks, cm.callbacks)
	cm.mu.Unlock()

	for _, fn := range callbacks {
		fn(cfg)
	}
}

// WriteDefault writes the default configuration to path
func WriteDefault(path string) error {
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# pdfextract configuration
# Every key can be overridden with a PDFEXTRACT_ environment variable,
# e.g. PDFEXTRACT_BACKEND=pdfcpu or PDFEXTRACT_LAYOUT_REGION_GAP=2

`)
	return os.WriteFile(path, append(header, data...), 0o644)
}
