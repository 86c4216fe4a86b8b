package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/kv-base-hack/coin-tracker/internal/dashboard"
)

const (
	heroTitle         = "Крипто-трекер"
	heroTagline       = "Цены, капитализация и графики криптовалют в одном месте."
	trackerButton     = "[t] К трекеру ↓"
	trackerTitle      = "Рынок криптовалют"
	filterPlaceholder = "Поиск по названию или символу"
	chartLoading      = "Загрузка графика…"
	marketsLoading    = "Загрузка…"

	chartHeight = 12
	// modalChrome is the border and padding around the detail panel.
	modalChrome = 6
)

var (
	colorAccent = lipgloss.Color("#4a90e2")

	heroStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true).MarginTop(1)
	taglineStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#9ca3af"))
	buttonStyle     = lipgloss.NewStyle().Foreground(colorAccent).Bold(true).MarginBottom(1)
	titleStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#f87171")).Padding(1, 2)
	helperStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#9ca3af")).MarginTop(1)
	backgroundStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#1e3a5f"))
	modalStyle      = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent).
			Padding(1, 2)
)

func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	doc := m.ctrl.Document()

	var sections []string
	if doc.Anchor != dashboard.IDTracker {
		sections = append(sections, m.heroView())
	}
	if doc.Visible(dashboard.IDCoinModal) {
		sections = append(sections, m.modalView())
	} else {
		sections = append(sections, m.trackerView())
	}
	sections = append(sections, m.help.View(m.keys))

	return overlay(lipgloss.JoinVertical(lipgloss.Left, sections...), doc.Content(dashboard.IDBackgroundCanvas), m.height)
}

func (m *Model) heroView() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		heroStyle.Render(heroTitle),
		taglineStyle.Render(heroTagline),
		buttonStyle.Render(trackerButton),
	)
}

func (m *Model) trackerView() string {
	doc := m.ctrl.Document()
	header := lipgloss.JoinHorizontal(lipgloss.Center,
		titleStyle.Render(trackerTitle), "  ",
		doc.Content(dashboard.IDCurrencySelector),
	)
	parts := []string{header, doc.Content(dashboard.IDFilterInput), ""}

	if doc.Visible(dashboard.IDLoader) {
		parts = append(parts, m.spinner.View()+" "+marketsLoading)
	}
	if doc.Visible(dashboard.IDErrorMessage) {
		parts = append(parts, errorStyle.Render(doc.Content(dashboard.IDErrorMessage)))
	}
	if doc.Visible(dashboard.IDTableContainer) {
		parts = append(parts, doc.Content(dashboard.IDTableContainer))
	}
	if doc.Visible(dashboard.IDPaginationControls) {
		if p := doc.Content(dashboard.IDPaginationControls); p != "" {
			parts = append(parts, "", p)
		}
	}
	if doc.Visible(dashboard.IDChartHelper) {
		parts = append(parts, helperStyle.Render(doc.Content(dashboard.IDChartHelper)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *Model) modalView() string {
	doc := m.ctrl.Document()
	width := max(m.width-modalChrome, 20)

	chartParts := []string{
		lipgloss.JoinHorizontal(lipgloss.Center,
			titleStyle.Render(doc.Content(dashboard.IDChartTitle)), "  ",
			doc.Content(dashboard.IDChartPeriodSelector),
		),
	}
	switch c := m.ctrl.State().Chart; {
	case doc.Visible(dashboard.IDChartLoader):
		chartParts = append(chartParts, m.spinner.View()+" "+chartLoading)
	case c != nil && doc.Visible(dashboard.IDPriceChart):
		chartParts = append(chartParts, c.View(width, chartHeight))
	}

	return modalStyle.Width(width + modalChrome - 2).Render(lipgloss.JoinVertical(lipgloss.Left,
		doc.Content(dashboard.IDModalContent),
		"",
		lipgloss.JoinVertical(lipgloss.Left, chartParts...),
	))
}

// overlay draws fg over bg: every fg line is continued by the background
// to its right, and rows below the content show the background alone.
func overlay(fg, bg string, height int) string {
	fgLines := strings.Split(fg, "\n")
	bgLines := strings.Split(bg, "\n")
	out := make([]string, height)
	for y := range out {
		var line string
		if y < len(fgLines) {
			line = fgLines[y]
		}
		if y < len(bgLines) {
			back := []rune(bgLines[y])
			if w := lipgloss.Width(line); w < len(back) {
				line += backgroundStyle.Render(string(back[w:]))
			}
		}
		out[y] = line
	}
	return strings.Join(out, "\n")
}
