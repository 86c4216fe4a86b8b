package dashboard

import (
	"strings"

	"github.com/kv-base-hack/coin-tracker/common"
	"github.com/kv-base-hack/coin-tracker/lib/coingecko"
)

// PageSize is the number of table rows per page.
const PageSize = 20

// Selection is the coin drilled into by a row click.
type Selection struct {
	ID   string
	Name string
}

// Chart is a live chart instance. Destroy releases it and must be called
// exactly once before the state drops its reference.
type Chart interface {
	View(width, height int) string
	Destroy()
}

// State is the single view state of the dashboard. It is created at bootstrap
// and mutated only by Controller.
type State struct {
	AllCoins    []coingecko.CoinSummary
	Currency    common.Currency
	SearchTerm  string
	CurrentPage int
	PageSize    int
	Selected    *Selection
	ChartDays   common.ChartDays
	Chart       Chart
	// Cursor is the focused row within the current page.
	Cursor int
	// ModalWidth is the text width available to the detail panel.
	ModalWidth int

	CurrencyFormatter  *Formatter
	MarketCapFormatter *Formatter

	Currencies   []common.Currency
	ChartPeriods []common.ChartDays

	marketsGen uint64
	chartGen   uint64
	detailsGen uint64
}

func NewState(currency common.Currency, days common.ChartDays, currencies []common.Currency, periods []common.ChartDays) *State {
	s := &State{
		CurrentPage:  1,
		PageSize:     PageSize,
		ChartDays:    days,
		Currencies:   currencies,
		ChartPeriods: periods,
	}
	s.setCurrency(currency)
	return s
}

// setCurrency is the only writer of Currency, so the formatters never lag behind it.
func (s *State) setCurrency(c common.Currency) {
	s.Currency = c
	s.CurrencyFormatter = NewCurrencyFormatter(c)
	s.MarketCapFormatter = NewMarketCapFormatter(c)
}

// Filtered returns the coins whose name or symbol contains the search term, ignoring case.
func (s *State) Filtered() []coingecko.CoinSummary {
	term := strings.ToLower(s.SearchTerm)
	if term == "" {
		return s.AllCoins
	}
	out := make([]coingecko.CoinSummary, 0, len(s.AllCoins))
	for _, c := range s.AllCoins {
		if strings.Contains(strings.ToLower(c.Name), term) || strings.Contains(strings.ToLower(c.Symbol), term) {
			out = append(out, c)
		}
	}
	return out
}

// PageCount is ceil(filtered / page size); zero when nothing matches.
func (s *State) PageCount() int {
	return pageCount(len(s.Filtered()), s.PageSize)
}

func pageCount(n, size int) int {
	return (n + size - 1) / size
}

// PageCoins is the slice of filtered coins shown on the current page.
func (s *State) PageCoins() []coingecko.CoinSummary {
	filtered := s.Filtered()
	start := (s.CurrentPage - 1) * s.PageSize
	if start >= len(filtered) || start < 0 {
		return nil
	}
	end := start + s.PageSize
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[start:end]
}

// clampPage restores 1 <= page <= page count after the coin list changed.
func (s *State) clampPage() {
	if n := s.PageCount(); s.CurrentPage > n {
		s.CurrentPage = n
	}
	if s.CurrentPage < 1 {
		s.CurrentPage = 1
	}
}

// disposeChart destroys the live chart, if any.
func (s *State) disposeChart() {
	if s.Chart != nil {
		s.Chart.Destroy()
		s.Chart = nil
	}
}

func (s *State) setChart(c Chart) {
	s.disposeChart()
	s.Chart = c
}
