package model

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/viper"
)

// Config holds every tunable of briefguard
type Config struct {
	Grounding   GroundingConfig   `yaml:"grounding" mapstructure:"grounding"`
	Authority   AuthorityConfig   `yaml:"authority" mapstructure:"authority"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
	Metrics     MetricsConfig     `yaml:"metrics" mapstructure:"metrics"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
}

// GroundingConfig controls evidence matching. The thresholds are empirical and
// should be calibrated against a labeled set before production use.
type GroundingConfig struct {
	AutoMatchThreshold float64   `yaml:"auto_match_threshold" mapstructure:"auto_match_threshold"`
	SupportThreshold   float64   `yaml:"support_threshold" mapstructure:"support_threshold"`
	MaxExcerptChars    int       `yaml:"max_excerpt_chars" mapstructure:"max_excerpt_chars"`
	StrictSections     []Section `yaml:"strict_sections" mapstructure:"strict_sections"`
	DiscursiveSections []Section `yaml:"discursive_sections" mapstructure:"discursive_sections"`
	// StructuralFallback lets the fact checker treat an untagged item's structural
	// article as its source. Disable to require an explicit tag on every figure.
	StructuralFallback bool `yaml:"structural_fallback" mapstructure:"structural_fallback"`
}

// AuthorityConfig classifies catalog sources into tiers
type AuthorityConfig struct {
	PrimaryDomains   []string          `yaml:"primary_domains" mapstructure:"primary_domains"`
	SecondaryDomains []string          `yaml:"secondary_domains" mapstructure:"secondary_domains"`
	DomainMap        map[string]string `yaml:"domain_map,omitempty" mapstructure:"domain_map"`
}

// CacheConfig controls memoization of pipeline reports
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	TTL       time.Duration `yaml:"ttl" mapstructure:"ttl"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	MaxItems  int           `yaml:"max_items" mapstructure:"max_items"`
}

// ConcurrencyConfig controls batch processing
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// OutputConfig controls rendering of results
type OutputConfig struct {
	Verbose bool `yaml:"verbose" mapstructure:"verbose"`
	Pretty  bool `yaml:"pretty" mapstructure:"pretty"`
}

// MetricsConfig controls the Prometheus textfile export
type MetricsConfig struct {
	File string `yaml:"file" mapstructure:"file"`
}

// LogConfig controls the structured logger
type LogConfig struct {
	Mode string `yaml:"mode" mapstructure:"mode"` // development or production
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	cacheDir := filepath.Join(os.TempDir(), "briefguard-cache")
	if home, err := os.UserHomeDir(); err == nil {
		cacheDir = filepath.Join(home, ".briefguard", "cache")
	}

	return &Config{
		Grounding: GroundingConfig{
			AutoMatchThreshold: 0.20,
			SupportThreshold:   0.14,
			MaxExcerptChars:    520,
			StrictSections:     []Section{SectionProcurementAction, SectionWatchlist},
			DiscursiveSections: []Section{SectionSummary, SectionHighlight, SectionDelta},
			StructuralFallback: true,
		},
		Authority: AuthorityConfig{
			PrimaryDomains: []string{
				"sec.gov", "eia.gov", "bls.gov", "federalregister.gov", "europa.eu",
				"ecb.europa.eu", "imf.org", "worldbank.org", "opec.org", "cmegroup.com",
				"lme.com", "ice.com",
			},
			SecondaryDomains: []string{
				"reuters.com", "bloomberg.com", "ft.com", "wsj.com", "apnews.com",
				"spglobal.com", "argusmedia.com", "freightwaves.com", "supplychaindive.com",
			},
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       cacheDir,
			TTL:       7 * 24 * time.Hour,
			MemoryTTL: 30 * time.Minute,
			MaxItems:  512,
		},
		Concurrency: ConcurrencyConfig{
			Workers: runtime.NumCPU(),
		},
		Output: OutputConfig{
			Pretty: true,
		},
		Log: LogConfig{
			Mode: "development",
		},
	}
}

// LoadConfig overlays values from viper (config file, BRIEFGUARD_* env) on the defaults
func LoadConfig(v *viper.Viper) (*Config, error) {
	cfg := DefaultConfig()
	if v == nil {
		return cfg, nil
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the pipeline cannot run with
func (c *Config) Validate() error {
	g := c.Grounding
	if g.AutoMatchThreshold < 0 || g.AutoMatchThreshold > 1 {
		return fmt.Errorf("grounding.auto_match_threshold must be within [0,1], got %v", g.AutoMatchThreshold)
	}
	if g.SupportThreshold < 0 || g.SupportThreshold > 1 {
		return fmt.Errorf("grounding.support_threshold must be within [0,1], got %v", g.SupportThreshold)
	}
	if g.MaxExcerptChars <= 0 {
		return fmt.Errorf("grounding.max_excerpt_chars must be positive, got %d", g.MaxExcerptChars)
	}
	for _, s := range append(append([]Section{}, g.StrictSections...), g.DiscursiveSections...) {
		if !s.Valid() {
			return fmt.Errorf("unknown section in grounding config: %q", s)
		}
	}
	if c.Concurrency.Workers < 0 {
		return fmt.Errorf("concurrency.workers must not be negative, got %d", c.Concurrency.Workers)
	}
	return nil
}
