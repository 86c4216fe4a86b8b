package chart

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func testConfig() Config {
	return Config{
		Labels: []string{"01.01", "02.01", "03.01", "04.01"},
		Values: []float64{10, 12, 11, 15},
		Color:  lipgloss.Color("#4ade80"),
		Fill:   lipgloss.Color("#1f3b2a"),
	}
}

func TestView_Dimensions(t *testing.T) {
	c := New(testConfig())
	out := c.View(40, 8)
	lines := strings.Split(out, "\n")
	if len(lines) != 8 {
		t.Fatalf("lines = %d, want 8\n%s", len(lines), out)
	}
	if !strings.Contains(lines[0], "15.00") {
		t.Errorf("top label missing: %q", lines[0])
	}
	if !strings.Contains(lines[6], "10.00") {
		t.Errorf("bottom label missing: %q", lines[6])
	}
	if !strings.Contains(lines[7], "01.01") {
		t.Errorf("x axis missing first label: %q", lines[7])
	}
	for _, l := range lines[:7] {
		if w := lipgloss.Width(l); w > 40 {
			t.Errorf("line wider than 40: %d %q", w, l)
		}
	}
}

func TestView_LineAtExtremes(t *testing.T) {
	c := New(testConfig())
	lines := strings.Split(c.View(30, 6), "\n")
	// the maximum is the last value, so the top row ends with the line glyph.
	if !strings.HasSuffix(strings.TrimRight(lines[0], " "), lineGlyph) {
		t.Errorf("top row = %q", lines[0])
	}
}

func TestDestroy(t *testing.T) {
	c := New(testConfig())
	c.Destroy()
	if !c.Destroyed() {
		t.Error("Destroyed() = false")
	}
	if out := c.View(40, 8); out != "" {
		t.Errorf("destroyed chart rendered %q", out)
	}
}

func TestView_FlatSeries(t *testing.T) {
	cfg := testConfig()
	cfg.Values = []float64{5, 5, 5}
	if out := New(cfg).View(20, 5); !strings.Contains(out, lineGlyph) {
		t.Errorf("flat series rendered no line:\n%s", out)
	}
}
