// Package config holds the tunable engine parameters: discount and growth
// rates, projection caps, and the catalog directory. Statutory dollar limits
// are catalog data, not config.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the full engine configuration.
type Config struct {
	// CatalogDir overrides the embedded catalogs when set.
	CatalogDir string `yaml:"catalog_dir"`

	Weights    WeightsConfig    `yaml:"weights"`
	Projection ProjectionConfig `yaml:"projection"`
}

// WeightsConfig tunes the domain weight ("Ambition Quotient") formula.
type WeightsConfig struct {
	// MonthlyDiscountRate is r in urgencyRaw = 1/(1+r)^months.
	MonthlyDiscountRate float64 `yaml:"monthly_discount_rate"`
	// TieBreakerBoost is added to the named domain when all three are active.
	TieBreakerBoost float64 `yaml:"tie_breaker_boost"`
	// TieBreakerCap bounds the boosted weight.
	TieBreakerCap float64 `yaml:"tie_breaker_cap"`
}

// ProjectionConfig tunes the future-value engine and its overflow guards.
type ProjectionConfig struct {
	// BaseRate plus up to MaxAdditionalRate, scaled by the 1-7 involvement
	// score, gives the personalized annual growth rate.
	BaseRate          float64 `yaml:"base_rate"`
	MaxAdditionalRate float64 `yaml:"max_additional_rate"`

	MaxAnnualRate   float64 `yaml:"max_annual_rate"`
	MaxYears        int     `yaml:"max_years"`
	HorizonSentinel int     `yaml:"horizon_sentinel"` // "not applicable" marker
	FutureValueCap  float64 `yaml:"future_value_cap"`
	CompoundGuard   float64 `yaml:"compound_guard"` // factor beyond which we cap

	InflationRate float64 `yaml:"inflation_rate"`
	EducationRate float64 `yaml:"education_rate"`
	// WithdrawalMonths converts a real balance to monthly income (4% rule).
	WithdrawalMonths float64 `yaml:"withdrawal_months"`
}

// DefaultConfig returns the shipped tuning.
func DefaultConfig() *Config {
	return &Config{
		Weights: WeightsConfig{
			MonthlyDiscountRate: 0.005,
			TieBreakerBoost:     0.10,
			TieBreakerCap:       0.80,
		},
		Projection: ProjectionConfig{
			BaseRate:          0.05,
			MaxAdditionalRate: 0.07,
			MaxAnnualRate:     0.15,
			MaxYears:          75,
			HorizonSentinel:   99,
			FutureValueCap:    99_999_999,
			CompoundGuard:     1e12,
			InflationRate:     0.025,
			EducationRate:     0.06,
			WithdrawalMonths:  300,
		},
	}
}

// Load reads config from path, layering the file over defaults, then applies
// environment overrides. A missing file is not an error: you get defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the config as YAML, creating parent directories as needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) applyEnvOverrides() {
	if dir := os.Getenv("PLANFORGE_CATALOG_DIR"); dir != "" {
		c.CatalogDir = dir
	}
}
