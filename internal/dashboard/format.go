package dashboard

import (
	"fmt"
	"math"
	"strings"

	"github.com/kv-base-hack/coin-tracker/common"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// symbols holds the narrow en-US symbols; other codes are printed as "CODE ".
var symbols = map[common.Currency]string{
	common.CurrencyUSD: "$",
	common.CurrencyEUR: "€",
	common.CurrencyGBP: "£",
	common.CurrencyJPY: "¥",
}

type compactUnit struct {
	div    decimal.Decimal
	suffix string
}

var compactUnits = []compactUnit{
	{decimal.New(1, 3), " thousand"},
	{decimal.New(1, 6), " million"},
	{decimal.New(1, 9), " billion"},
	{decimal.New(1, 12), " trillion"},
}

// Formatter renders amounts in one currency, either in full or in compact notation.
type Formatter struct {
	currency common.Currency
	prefix   string
	compact  bool
	printer  *message.Printer
}

// NewCurrencyFormatter formats prices with 2 to 6 fraction digits.
func NewCurrencyFormatter(c common.Currency) *Formatter {
	return newFormatter(c, false)
}

// NewMarketCapFormatter formats large amounts compactly: $1.2T, $57B.
func NewMarketCapFormatter(c common.Currency) *Formatter {
	return newFormatter(c, true)
}

func newFormatter(c common.Currency, compact bool) *Formatter {
	prefix, ok := symbols[c]
	if !ok {
		prefix = c.Upper() + " "
	}
	return &Formatter{
		currency: c,
		prefix:   prefix,
		compact:  compact,
		printer:  message.NewPrinter(language.AmericanEnglish),
	}
}

func (f *Formatter) Currency() common.Currency {
	return f.currency
}

func (f *Formatter) Format(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return f.prefix + "—"
	}
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	if f.compact {
		return sign + f.prefix + f.formatCompact(v)
	}
	return sign + f.prefix + f.printer.Sprint(number.Decimal(v, number.MinFractionDigits(2), number.MaxFractionDigits(6)))
}

// formatCompact keeps two significant digits but never drops integer digits.
func (f *Formatter) formatCompact(v float64) string {
	d := decimal.NewFromFloat(v)
	unit := -1
	for i := len(compactUnits) - 1; i >= 0; i-- {
		if d.GreaterThanOrEqual(compactUnits[i].div) {
			unit = i
			break
		}
	}
	if unit < 0 {
		return roundSignificant(d).String()
	}

	scaled := roundSignificant(d.Div(compactUnits[unit].div))
	if scaled.GreaterThanOrEqual(decimal.NewFromInt(1000)) && unit < len(compactUnits)-1 {
		unit++
		scaled = roundSignificant(d.Div(compactUnits[unit].div))
	}
	return f.printer.Sprint(number.Decimal(scaled.InexactFloat64(), number.MaxFractionDigits(1))) + compactUnits[unit].suffix
}

func roundSignificant(d decimal.Decimal) decimal.Decimal {
	if d.LessThan(decimal.NewFromInt(10)) {
		return d.Round(1)
	}
	return d.Round(0)
}

// FormatSupply groups an amount of coins with up to three fraction digits.
func FormatSupply(v float64) string {
	p := message.NewPrinter(language.AmericanEnglish)
	return p.Sprint(number.Decimal(decimal.NewFromFloat(v).Round(3).InexactFloat64(), number.MaxFractionDigits(3)))
}

// FormatChange renders a 24h percentage; a missing value renders as 0%.
func FormatChange(v *float64) string {
	if v == nil || *v == 0 {
		return "0%"
	}
	return fmt.Sprintf("%.2f%%", *v)
}

// TickLabel is the y-axis label: the price without a trailing ".00".
func TickLabel(f *Formatter, v float64) string {
	return strings.TrimSuffix(f.Format(v), ".00")
}
