package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/immocalc/internal/engine"
	"github.com/cleared-dev/immocalc/internal/forecast"
)

// FileName is the config file written by `immocalc init`.
const FileName = "immocalc.yaml"

// Config represents the top-level immocalc.yaml configuration.
type Config struct {
	Tax      TaxConfig      `yaml:"tax"`
	Exit     ExitConfig     `yaml:"exit"`
	Forecast ForecastConfig `yaml:"forecast"`
	Warnings WarningsConfig `yaml:"warnings"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// TaxConfig holds the statutory tax parameters.
type TaxConfig struct {
	HoldingPeriodYears          int     `yaml:"holding_period_years"`
	CapitalGainsExemption       float64 `yaml:"capital_gains_exemption"`
	AcquisitionWindowYears      int     `yaml:"acquisition_window_years"`
	AcquisitionThresholdPercent float64 `yaml:"acquisition_threshold_percent"`
}

// ExitConfig controls the sale at the end of the horizon.
type ExitConfig struct {
	SaleCostsPercent float64 `yaml:"sale_costs_percent"`
}

// ForecastConfig tunes the property value forecast.
type ForecastConfig struct {
	Rates                      []RateConfig `yaml:"rates"`
	MeanReversionHalfLifeYears float64      `yaml:"mean_reversion_half_life_years"`
	ImprovementUpliftPercent   float64      `yaml:"improvement_uplift_percent"`
}

// RateConfig is one named appreciation scenario.
type RateConfig struct {
	Name    string  `yaml:"name"`
	Percent float64 `yaml:"percent"`
}

// WarningsConfig sets the risk thresholds.
type WarningsConfig struct {
	MinDSCR       float64 `yaml:"min_dscr"`
	MaxLTVPercent float64 `yaml:"max_ltv_percent"`
}

// MetricsConfig controls the return metrics.
type MetricsConfig struct {
	DiscountRatePercent float64 `yaml:"discount_rate_percent"`
}

// Load reads an immocalc.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns the standard engine rules.
func Default() *Config {
	return &Config{
		Tax: TaxConfig{
			HoldingPeriodYears:          10,
			CapitalGainsExemption:       1000,
			AcquisitionWindowYears:      3,
			AcquisitionThresholdPercent: 15,
		},
		Exit: ExitConfig{SaleCostsPercent: 5},
		Forecast: ForecastConfig{
			Rates: []RateConfig{
				{Name: forecast.Conservative, Percent: 0},
				{Name: forecast.Base, Percent: 1.5},
				{Name: forecast.Optimistic, Percent: 3},
			},
			MeanReversionHalfLifeYears: 7,
			ImprovementUpliftPercent:   70,
		},
		Warnings: WarningsConfig{MinDSCR: 1.2, MaxLTVPercent: 80},
		Metrics:  MetricsConfig{DiscountRatePercent: 4},
	}
}

// Environment variables that override single values.
const (
	EnvHoldingPeriodYears    = "IMMOCALC_HOLDING_PERIOD_YEARS"
	EnvCapitalGainsExemption = "IMMOCALC_CAPITAL_GAINS_EXEMPTION"
	EnvSaleCostsPercent      = "IMMOCALC_SALE_COSTS_PERCENT"
	EnvHalfLifeYears         = "IMMOCALC_MEAN_REVERSION_HALF_LIFE_YEARS"
	EnvMinDSCR               = "IMMOCALC_MIN_DSCR"
	EnvMaxLTVPercent         = "IMMOCALC_MAX_LTV_PERCENT"
	EnvDiscountRatePercent   = "IMMOCALC_DISCOUNT_RATE_PERCENT"
)

// LoadEnv loads envFile into the process environment when it exists and
// applies every IMMOCALC_* override to cfg. Variables already set in the
// environment win over the file.
func LoadEnv(cfg *Config, envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	floats := []struct {
		name string
		dst  *float64
	}{
		{EnvCapitalGainsExemption, &cfg.Tax.CapitalGainsExemption},
		{EnvSaleCostsPercent, &cfg.Exit.SaleCostsPercent},
		{EnvHalfLifeYears, &cfg.Forecast.MeanReversionHalfLifeYears},
		{EnvMinDSCR, &cfg.Warnings.MinDSCR},
		{EnvMaxLTVPercent, &cfg.Warnings.MaxLTVPercent},
		{EnvDiscountRatePercent, &cfg.Metrics.DiscountRatePercent},
	}
	for _, f := range floats {
		v, ok := os.LookupEnv(f.name)
		if !ok {
			continue
		}
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
		*f.dst = parsed
	}
	if v, ok := os.LookupEnv(EnvHoldingPeriodYears); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvHoldingPeriodYears, err)
		}
		cfg.Tax.HoldingPeriodYears = n
	}
	return nil
}

// Params converts the config into engine parameters.
func (c *Config) Params() engine.Params {
	p := engine.DefaultParams()
	p.Tax.HoldingPeriodYears = c.Tax.HoldingPeriodYears
	p.Tax.CapitalGainsExemption = decimal.NewFromFloat(c.Tax.CapitalGainsExemption)
	p.Tax.AcquisitionWindowYears = c.Tax.AcquisitionWindowYears
	p.Tax.AcquisitionThresholdPercent = decimal.NewFromFloat(c.Tax.AcquisitionThresholdPercent)

	p.Exit.SaleCostsPercent = decimal.NewFromFloat(c.Exit.SaleCostsPercent)
	p.Exit.Tax = p.Tax

	if len(c.Forecast.Rates) > 0 {
		p.Forecast.Scenarios = nil
		for _, r := range c.Forecast.Rates {
			p.Forecast.Scenarios = append(p.Forecast.Scenarios, forecast.Rate{Name: r.Name, Percent: decimal.NewFromFloat(r.Percent)})
		}
	}
	p.Forecast.MeanReversionHalfLifeYears = c.Forecast.MeanReversionHalfLifeYears
	p.Forecast.ImprovementUpliftPercent = decimal.NewFromFloat(c.Forecast.ImprovementUpliftPercent)

	p.MinDSCR = decimal.NewFromFloat(c.Warnings.MinDSCR)
	p.MaxLTVPercent = decimal.NewFromFloat(c.Warnings.MaxLTVPercent)
	p.DiscountRatePercent = decimal.NewFromFloat(c.Metrics.DiscountRatePercent)
	return p
}
