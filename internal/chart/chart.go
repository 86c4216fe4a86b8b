package chart

import (
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	lineGlyph = "•"
	fillGlyph = "░"

	defaultMaxTicks = 7
)

// Config describes one line series over labelled x positions.
type Config struct {
	Labels     []string
	Values     []float64
	Color      lipgloss.Color
	Fill       lipgloss.Color
	TickFormat func(float64) string
	MaxTicks   int
}

// LineChart draws a filled line series with character cells.
type LineChart struct {
	cfg       Config
	destroyed bool
}

func New(cfg Config) *LineChart {
	if cfg.MaxTicks <= 0 {
		cfg.MaxTicks = defaultMaxTicks
	}
	if cfg.TickFormat == nil {
		cfg.TickFormat = func(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }
	}
	return &LineChart{cfg: cfg}
}

// Destroy releases the chart; a destroyed chart renders nothing.
func (c *LineChart) Destroy() {
	c.destroyed = true
	c.cfg.Labels = nil
	c.cfg.Values = nil
}

func (c *LineChart) Destroyed() bool {
	return c.destroyed
}

func (c *LineChart) Config() Config {
	return c.cfg
}

// View renders the chart into width x height cells, the last row holding x labels.
func (c *LineChart) View(width, height int) string {
	values := c.cfg.Values
	if c.destroyed || len(values) == 0 || width < 8 || height < 3 {
		return ""
	}

	lo, hi := bounds(values)
	yLabels := []string{c.cfg.TickFormat(hi), c.cfg.TickFormat((hi + lo) / 2), c.cfg.TickFormat(lo)}
	axisWidth := 0
	for _, l := range yLabels {
		if w := lipgloss.Width(l); w > axisWidth {
			axisWidth = w
		}
	}
	axisWidth++

	plotW := width - axisWidth
	rows := height - 1
	if plotW < 2 {
		return ""
	}

	// level[x] is the row of the line in column x, 0 at the top.
	level := make([]int, plotW)
	for x := 0; x < plotW; x++ {
		v := values[sampleIndex(x, plotW, len(values))]
		level[x] = rowOf(v, lo, hi, rows)
	}

	lineStyle := lipgloss.NewStyle().Foreground(c.cfg.Color)
	fillStyle := lipgloss.NewStyle().Foreground(c.cfg.Fill)
	axisStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF")).Width(axisWidth - 1).Align(lipgloss.Right)

	var b strings.Builder
	for r := 0; r < rows; r++ {
		label := ""
		switch r {
		case 0:
			label = yLabels[0]
		case rows / 2:
			label = yLabels[1]
		case rows - 1:
			label = yLabels[2]
		}
		b.WriteString(axisStyle.Render(label))
		b.WriteString(" ")

		var line strings.Builder
		for x := 0; x < plotW; x++ {
			switch {
			case r == level[x]:
				line.WriteString(lineStyle.Render(lineGlyph))
			case r > level[x]:
				line.WriteString(fillStyle.Render(fillGlyph))
			default:
				line.WriteString(" ")
			}
		}
		b.WriteString(line.String())
		b.WriteString("\n")
	}
	b.WriteString(strings.Repeat(" ", axisWidth))
	b.WriteString(c.xAxis(plotW))
	return b.String()
}

// xAxis spreads at most MaxTicks labels over the plot width without overlap.
func (c *LineChart) xAxis(plotW int) string {
	labels := c.cfg.Labels
	if len(labels) == 0 {
		return ""
	}
	ticks := c.cfg.MaxTicks
	if ticks > len(labels) {
		ticks = len(labels)
	}
	row := []rune(strings.Repeat(" ", plotW))
	next := 0
	for t := 0; t < ticks; t++ {
		x := 0
		if ticks > 1 {
			x = t * (plotW - 1) / (ticks - 1)
		}
		idx := sampleIndex(x, plotW, len(labels))
		label := []rune(labels[idx])
		start := x - len(label)/2
		if start < next {
			start = next
		}
		if start+len(label) > plotW {
			continue
		}
		copy(row[start:], label)
		next = start + len(label) + 1
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF")).Render(strings.TrimRight(string(row), " "))
}

func bounds(values []float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

func sampleIndex(x, width, n int) int {
	if width <= 1 || n <= 1 {
		return 0
	}
	return x * (n - 1) / (width - 1)
}

func rowOf(v, lo, hi float64, rows int) int {
	if hi == lo {
		return rows / 2
	}
	return int(math.Round((hi - v) / (hi - lo) * float64(rows-1)))
}
