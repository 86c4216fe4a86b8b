package config

import (
	"fmt"
	"os"
	"slices"

	"github.com/kv-base-hack/coin-tracker/common"
	"gopkg.in/yaml.v3"
)

// Preferences are the dashboard choices that can be fixed in a YAML file.
// Command line flags take precedence over values read here.
type Preferences struct {
	Currencies      []string `yaml:"currencies"`
	ChartPeriods    []int    `yaml:"chart_periods"`
	DefaultCurrency string   `yaml:"default_currency"`
	DefaultDays     int      `yaml:"default_days"`
	APIBaseURL      string   `yaml:"api_base_url"`
}

// Dashboard is the validated form of Preferences.
type Dashboard struct {
	Currencies   []common.Currency
	ChartPeriods []common.ChartDays
	Currency     common.Currency
	ChartDays    common.ChartDays
	APIBaseURL   string
}

// Default returns the built-in preferences.
func Default() Dashboard {
	return Dashboard{
		Currencies:   append([]common.Currency(nil), common.DefaultCurrencies...),
		ChartPeriods: append([]common.ChartDays(nil), common.DefaultChartPeriods...),
		Currency:     common.CurrencyUSD,
		ChartDays:    common.ChartDays30,
	}
}

// Load reads path; an empty path yields the defaults.
func Load(path string) (Dashboard, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Dashboard{}, err
	}
	var p Preferences
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Dashboard{}, fmt.Errorf("parse %s: %w", path, err)
	}
	d, err := p.Resolve()
	if err != nil {
		return Dashboard{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return d, nil
}

// Resolve fills unset values from the defaults and validates the rest.
func (p Preferences) Resolve() (Dashboard, error) {
	d := Default()
	d.APIBaseURL = p.APIBaseURL

	if len(p.Currencies) > 0 {
		cs, err := common.ParseCurrencies(p.Currencies)
		if err != nil {
			return Dashboard{}, err
		}
		d.Currencies = cs
	}
	if len(p.ChartPeriods) > 0 {
		d.ChartPeriods = d.ChartPeriods[:0]
		for _, n := range p.ChartPeriods {
			if n <= 0 {
				return Dashboard{}, fmt.Errorf("chart period must be positive, got %d", n)
			}
			d.ChartPeriods = append(d.ChartPeriods, common.ChartDays(n))
		}
	}
	if p.DefaultCurrency != "" {
		c, err := common.ParseCurrency(p.DefaultCurrency)
		if err != nil {
			return Dashboard{}, err
		}
		d.Currency = c
	}
	if p.DefaultDays != 0 {
		d.ChartDays = common.ChartDays(p.DefaultDays)
	}
	return d, d.Validate()
}

// Validate checks that the defaults are among the selectable values.
func (d Dashboard) Validate() error {
	if len(d.Currencies) == 0 {
		return fmt.Errorf("at least one currency is required")
	}
	if !slices.Contains(d.Currencies, d.Currency) {
		return fmt.Errorf("default currency %s is not selectable", d.Currency)
	}
	if !slices.Contains(d.ChartPeriods, d.ChartDays) {
		return fmt.Errorf("default chart period %d is not selectable", d.ChartDays)
	}
	return nil
}
