package irs

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the settings of the declaration lines.
type Config struct {
	// Code is the income code of every line (G20: units of investment funds).
	Code string `yaml:"code"`
	// Counterparty is the numeric country code of the broker.
	Counterparty int `yaml:"counterparty"`
	// FirstLine is the number of the first line of the table.
	FirstLine int `yaml:"first_line"`
	// Countries maps ISIN prefixes to ISO 3166 numeric country codes.
	Countries map[string]int `yaml:"countries"`
}

// defaultCountries are the ISO 3166 numeric codes of the usual issuer countries.
var defaultCountries = map[string]int{
	"AT": 40,
	"AU": 36,
	"BE": 56,
	"BM": 60,
	"CA": 124,
	"CH": 756,
	"DE": 276,
	"DK": 208,
	"ES": 724,
	"FI": 246,
	"FR": 250,
	"GB": 826,
	"IE": 372,
	"IT": 380,
	"JE": 832,
	"JP": 392,
	"KY": 136,
	"LU": 442,
	"NL": 528,
	"NO": 578,
	"PT": 620,
	"SE": 752,
	"US": 840,
}

// DefaultConfig returns the settings for a Degiro account: the counterparty is
// in the Netherlands.
func DefaultConfig() Config {
	countries := make(map[string]int, len(defaultCountries))
	for k, v := range defaultCountries {
		countries[k] = v
	}
	return Config{
		Code:         "G20",
		Counterparty: 528,
		FirstLine:    951,
		Countries:    countries,
	}
}

// LoadConfig reads a YAML config file. Settings absent from the file keep
// their default value, countries are added to the default ones.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if file.Code != "" {
		cfg.Code = file.Code
	}
	if file.Counterparty != 0 {
		cfg.Counterparty = file.Counterparty
	}
	if file.FirstLine != 0 {
		cfg.FirstLine = file.FirstLine
	}
	for k, v := range file.Countries {
		cfg.Countries[k] = v
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks if the configuration is valid.
func (c Config) Validate() error {
	var errs error
	if c.Code == "" {
		errs = errors.Join(errs, errors.New("code is required"))
	}
	if c.Counterparty <= 0 {
		errs = errors.Join(errs, errors.New("counterparty must be a positive country code"))
	}
	if c.FirstLine <= 0 {
		errs = errors.Join(errs, errors.New("first_line must be positive"))
	}
	for k, v := range c.Countries {
		if len(k) != 2 || v <= 0 {
			errs = errors.Join(errs, fmt.Errorf("invalid country %q: %d", k, v))
		}
	}
	return errs
}
