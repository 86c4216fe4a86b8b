package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/kv-base-hack/coin-tracker/internal/chart"
	"github.com/kv-base-hack/coin-tracker/lib/coingecko"
	"github.com/kv-base-hack/coin-tracker/util"
)

var (
	colorGreen     = lipgloss.Color("#4ade80")
	colorRed       = lipgloss.Color("#f87171")
	colorGreenFill = lipgloss.Color("#1e3a2a")
	colorRedFill   = lipgloss.Color("#3f2224")
	colorMuted     = lipgloss.Color("#9ca3af")
	colorText      = lipgloss.Color("#ffffff")
	colorAccent    = lipgloss.Color("#4a90e2")
	colorPanel     = lipgloss.Color("#111827")

	mutedStyle  = lipgloss.NewStyle().Foreground(colorMuted)
	textStyle   = lipgloss.NewStyle().Foreground(colorText).Bold(true)
	activeStyle = lipgloss.NewStyle().Foreground(colorPanel).Background(colorAccent).Bold(true).Padding(0, 1)
	buttonStyle = lipgloss.NewStyle().Foreground(colorText).Padding(0, 1)
)

// column widths of the coin table
const (
	wRank   = 5
	wCoin   = 30
	wPrice  = 20
	wChange = 10
	wCap    = 18

	chartDateLayout   = "02.01.2006"
	defaultModalWidth = 72
	iconGlyph         = "◉"
)

// changeColor is green for zero and gains, red for losses.
func changeColor(v float64) lipgloss.Color {
	if v >= 0 {
		return colorGreen
	}
	return colorRed
}

func cell(s string, width int, align lipgloss.Position, style lipgloss.Style) string {
	return style.Width(width).Align(align).Render(util.Truncate(s, width))
}

// renderTable draws the current page of the filtered coins.
func renderTable(s *State) string {
	coins := s.PageCoins()
	if len(coins) == 0 {
		return mutedStyle.Padding(1, 2).Render(msgNothingFound)
	}

	var b strings.Builder
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		cell(colRank, wRank, lipgloss.Left, mutedStyle),
		cell(strings.ToUpper(colCoin), wCoin, lipgloss.Left, mutedStyle),
		cell(strings.ToUpper(colPrice), wPrice, lipgloss.Right, mutedStyle),
		cell(colChange, wChange, lipgloss.Right, mutedStyle),
		cell(strings.ToUpper(colMarketCap), wCap, lipgloss.Right, mutedStyle),
	))
	for i, c := range coins {
		b.WriteString("\n")
		b.WriteString(renderRow(s, c, i == s.Cursor))
	}
	return b.String()
}

func renderRow(s *State, c coingecko.CoinSummary, focused bool) string {
	base := lipgloss.NewStyle()
	if focused {
		base = base.Background(lipgloss.Color("#1f2937"))
	}
	change := 0.0
	if c.PriceChangePercentage24h != nil {
		change = *c.PriceChangePercentage24h
	}
	name := fmt.Sprintf("%s %s %s", iconGlyph, c.Name, strings.ToUpper(c.Symbol))
	return lipgloss.JoinHorizontal(lipgloss.Top,
		cell(fmt.Sprint(c.MarketCapRank), wRank, lipgloss.Left, base.Foreground(colorMuted)),
		cell(name, wCoin, lipgloss.Left, base.Foreground(colorText)),
		cell(s.CurrencyFormatter.Format(c.CurrentPrice), wPrice, lipgloss.Right, base.Foreground(colorText).Bold(true)),
		cell(FormatChange(c.PriceChangePercentage24h), wChange, lipgloss.Right, base.Foreground(changeColor(change)).Bold(true)),
		cell(s.MarketCapFormatter.Format(c.MarketCap), wCap, lipgloss.Right, base.Foreground(lipgloss.Color("#d1d5db"))),
	)
}

// renderPagination returns nothing when everything fits on one page.
func renderPagination(s *State) string {
	pages := s.PageCount()
	if pages <= 1 {
		return ""
	}
	prev, next := buttonStyle, buttonStyle
	if s.CurrentPage == 1 {
		prev = prev.Faint(true)
	}
	if s.CurrentPage == pages {
		next = next.Faint(true)
	}
	return lipgloss.JoinHorizontal(lipgloss.Center,
		prev.Render("‹ "+msgPrev),
		mutedStyle.Padding(0, 2).Render(fmt.Sprintf(msgPageOf, s.CurrentPage, pages)),
		next.Render(msgNext+" ›"),
	)
}

// seriesColors picks the line and fill colours: green unless the series fell.
func seriesColors(series coingecko.ChartSeries) (lipgloss.Color, lipgloss.Color) {
	if series.First() <= series.Last() {
		return colorGreen, colorGreenFill
	}
	return colorRed, colorRedFill
}

// chartConfig maps a series to date labels and prices in the active currency.
func chartConfig(s *State, series coingecko.ChartSeries) chart.Config {
	labels := make([]string, len(series.Prices))
	values := make([]float64, len(series.Prices))
	for i, p := range series.Prices {
		labels[i] = time.UnixMilli(p.Timestamp).Format(chartDateLayout)
		values[i] = p.Price
	}
	line, fill := seriesColors(series)
	f := s.CurrencyFormatter
	return chart.Config{
		Labels:     labels,
		Values:     values,
		Color:      line,
		Fill:       fill,
		TickFormat: func(v float64) string { return TickLabel(f, v) },
		MaxTicks:   7,
	}
}

func renderChartTitle(name string) string {
	return fmt.Sprintf(msgChartTitle, name)
}

func renderModalLoader() string {
	return mutedStyle.Padding(4, 2).Render(msgLoading)
}

func renderModalError() string {
	return lipgloss.NewStyle().Foreground(colorRed).Padding(4, 2).Render(msgDetailsFailed)
}

// description prefers the interface locale, then the first two English sentences, then nothing.
func description(d coingecko.CoinDetail) string {
	if text := util.StripTags(d.Description[preferredLocale]); text != "" {
		return text
	}
	return util.FirstSentences(util.StripTags(d.Description[fallbackLocale]), 2)
}

// renderModal is the detail panel of a coin in the active currency.
func renderModal(s *State, d coingecko.CoinDetail) string {
	cur := s.Currency.String()
	md := d.MarketData
	var changePtr *float64
	change, ok := md.PriceChangePercentage24hInCurrency[cur]
	if ok {
		changePtr = &change
	}

	header := lipgloss.JoinVertical(lipgloss.Left,
		textStyle.Render(fmt.Sprintf("%s %s ", iconGlyph, d.Name))+mutedStyle.Render(strings.ToUpper(d.Symbol)),
		lipgloss.NewStyle().Foreground(lipgloss.Color("#d1d5db")).Render(fmt.Sprintf(msgRank, d.MarketCapRank)),
	)
	price := textStyle.Render(s.CurrencyFormatter.Format(md.CurrentPrice[cur])) + "  " +
		lipgloss.NewStyle().Foreground(changeColor(change)).Bold(true).Render(FormatChange(changePtr))

	totalSupply := infinity
	if md.TotalSupply != nil && *md.TotalSupply != 0 {
		totalSupply = FormatSupply(*md.TotalSupply)
	}
	metrics := []struct{ label, value string }{
		{metricMarketCap, s.MarketCapFormatter.Format(md.MarketCap[cur])},
		{metricVolume, s.MarketCapFormatter.Format(md.TotalVolume[cur])},
		{metricHigh, s.CurrencyFormatter.Format(md.High24h[cur])},
		{metricLow, s.CurrencyFormatter.Format(md.Low24h[cur])},
		{metricCirculating, FormatSupply(md.CirculatingSupply)},
		{metricTotalSupply, totalSupply},
	}
	box := lipgloss.NewStyle().Background(colorPanel).Padding(0, 1).Width(22).MarginRight(1)
	cells := make([]string, len(metrics))
	for i, m := range metrics {
		cells[i] = box.Render(mutedStyle.Background(colorPanel).Render(m.label) + "\n" + textStyle.Background(colorPanel).Render(m.value))
	}
	grid := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, cells[:3]...),
		"",
		lipgloss.JoinHorizontal(lipgloss.Top, cells[3:]...),
	)

	width := s.ModalWidth
	if width <= 0 {
		width = defaultModalWidth
	}
	desc := lipgloss.NewStyle().Foreground(lipgloss.Color("#d1d5db")).Width(width).Render(description(d))

	return lipgloss.JoinVertical(lipgloss.Left, header, "", price, "", grid, "", desc)
}

func renderPeriodSelector(s *State) string {
	buttons := make([]string, len(s.ChartPeriods))
	for i, d := range s.ChartPeriods {
		label := fmt.Sprintf("%dд", int(d))
		if d == s.ChartDays {
			buttons[i] = activeStyle.Render(label)
			continue
		}
		buttons[i] = buttonStyle.Foreground(colorMuted).Render(label)
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, buttons...)
}

func renderCurrencySelector(s *State) string {
	items := make([]string, len(s.Currencies))
	for i, c := range s.Currencies {
		if c == s.Currency {
			items[i] = activeStyle.Render(c.Upper())
			continue
		}
		items[i] = buttonStyle.Foreground(colorMuted).Render(c.Upper())
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, items...)
}
