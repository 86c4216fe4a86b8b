package common

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/currency"
)

// Currency is a lower-case ISO 4217 code, the form the market API expects in vs_currency.
type Currency string

const (
	CurrencyUSD Currency = "usd"
	CurrencyEUR Currency = "eur"
	CurrencyRUB Currency = "rub"
	CurrencyGBP Currency = "gbp"
	CurrencyJPY Currency = "jpy"
)

// DefaultCurrencies is the subset surfaced by the currency selector.
var DefaultCurrencies = []Currency{CurrencyUSD, CurrencyEUR, CurrencyRUB, CurrencyGBP, CurrencyJPY}

func (c Currency) String() string {
	return string(c)
}

// Upper returns the code as the number formatter wants it.
func (c Currency) Upper() string {
	return strings.ToUpper(string(c))
}

// ParseCurrency validates an ISO currency code.
func ParseCurrency(s string) (Currency, error) {
	s = strings.TrimSpace(s)
	if _, err := currency.ParseISO(s); err != nil {
		return "", fmt.Errorf("invalid currency %q: %w", s, err)
	}
	return Currency(strings.ToLower(s)), nil
}

// ParseCurrencies validates a list of codes, keeping the order and dropping duplicates.
func ParseCurrencies(ss []string) ([]Currency, error) {
	seen := make(map[Currency]bool, len(ss))
	out := make([]Currency, 0, len(ss))
	for _, s := range ss {
		c, err := ParseCurrency(s)
		if err != nil {
			return nil, err
		}
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out, nil
}

// ChartDays is a chart horizon in days, as emitted by the period selector buttons.
type ChartDays int

const (
	ChartDays1   ChartDays = 1
	ChartDays7   ChartDays = 7
	ChartDays30  ChartDays = 30
	ChartDays90  ChartDays = 90
	ChartDays365 ChartDays = 365
)

// DefaultChartPeriods is the typical set rendered by the period selector.
var DefaultChartPeriods = []ChartDays{ChartDays1, ChartDays7, ChartDays30, ChartDays90, ChartDays365}

func (d ChartDays) String() string {
	return strconv.Itoa(int(d))
}

// ParseChartDays parses a data-days attribute value.
func ParseChartDays(s string) (ChartDays, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid chart days %q: %w", s, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("invalid chart days %q: must be positive", s)
	}
	return ChartDays(n), nil
}
