package dashboard

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kv-base-hack/coin-tracker/common"
	"github.com/kv-base-hack/coin-tracker/internal/chart"
	"github.com/kv-base-hack/coin-tracker/internal/httputil"
	"github.com/kv-base-hack/coin-tracker/lib/coingecko"
	"go.uber.org/zap"
)

// Fetcher is the market data source used by the controller.
type Fetcher interface {
	Markets(ctx context.Context, currency string) ([]coingecko.CoinSummary, error)
	Chart(ctx context.Context, coinID, currency string, days int) (coingecko.ChartSeries, error)
	Details(ctx context.Context, coinID string) (coingecko.CoinDetail, error)
}

// ChartFactory constructs a live chart from its configuration.
type ChartFactory func(chart.Config) Chart

// NewLineChart is the default ChartFactory.
func NewLineChart(cfg chart.Config) Chart {
	return chart.New(cfg)
}

// Pagination actions, as carried by the data-action attribute of the buttons.
const (
	ActionPrev = "prev"
	ActionNext = "next"
)

// ticket identifies the state a fetch was issued for.
type ticket struct {
	gen      uint64
	coinID   string
	currency common.Currency
	days     common.ChartDays
}

type MarketsLoadedMsg struct {
	ticket ticket
	Coins  []coingecko.CoinSummary
	Err    error
}

type ChartLoadedMsg struct {
	ticket ticket
	Series coingecko.ChartSeries
	Err    error
}

type DetailsLoadedMsg struct {
	ticket ticket
	Detail coingecko.CoinDetail
	Err    error
}

// Controller turns user intents into state mutations, document writes and fetches.
// All methods must be called from the UI goroutine.
type Controller struct {
	log      *zap.SugaredLogger
	state    *State
	doc      *Document
	fetcher  Fetcher
	newChart ChartFactory
	timeout  time.Duration

	detail *coingecko.CoinDetail

	cancelMarkets context.CancelFunc
	cancelChart   context.CancelFunc
	cancelDetails context.CancelFunc
}

func NewController(log *zap.SugaredLogger, state *State, doc *Document, fetcher Fetcher,
	newChart ChartFactory, timeout time.Duration) *Controller {
	if newChart == nil {
		newChart = NewLineChart
	}
	if timeout <= 0 {
		timeout = httputil.DefaultTimeout
	}
	return &Controller{
		log:      log.With("component", "controller"),
		state:    state,
		doc:      doc,
		fetcher:  fetcher,
		newChart: newChart,
		timeout:  timeout,
	}
}

func (c *Controller) State() *State {
	return c.state
}

func (c *Controller) Document() *Document {
	return c.doc
}

// Init renders the static controls and loads the markets.
func (c *Controller) Init() tea.Cmd {
	c.doc.Replace(IDCurrencySelector, renderCurrencySelector(c.state))
	c.doc.Replace(IDChartPeriodSelector, renderPeriodSelector(c.state))
	c.doc.Replace(IDChartHelper, msgChartHelper)
	return c.fetchMarkets()
}

// FilterChanged applies a new search term and returns to the first page.
func (c *Controller) FilterChanged(value string) tea.Cmd {
	c.state.SearchTerm = value
	c.state.CurrentPage = 1
	c.state.Cursor = 0
	c.render()
	return nil
}

// CurrencyChanged switches the active currency, refetching markets and the open chart.
func (c *Controller) CurrencyChanged(cur common.Currency) tea.Cmd {
	s := c.state
	s.setCurrency(cur)
	s.CurrentPage = 1
	s.Cursor = 0

	c.doc.Replace(IDCurrencySelector, renderCurrencySelector(s))
	cmds := []tea.Cmd{c.fetchMarkets()}
	if s.Selected != nil {
		cmds = append(cmds, c.fetchChart())
		if c.detail != nil {
			c.doc.Replace(IDModalContent, renderModal(s, *c.detail))
		}
	}
	return tea.Batch(cmds...)
}

// ChartPeriodChanged selects a new horizon and refetches the chart of the selected coin.
func (c *Controller) ChartPeriodChanged(days common.ChartDays) tea.Cmd {
	c.state.ChartDays = days
	c.doc.Replace(IDChartPeriodSelector, renderPeriodSelector(c.state))
	return c.fetchChart()
}

// RowClicked drills into a coin: opens the modal and fetches its chart and details.
func (c *Controller) RowClicked(id, name string) tea.Cmd {
	s := c.state
	s.Selected = &Selection{ID: id, Name: name}
	s.disposeChart()
	c.detail = nil

	c.doc.Replace(IDChartTitle, renderChartTitle(name))
	c.doc.Hide(IDChartHelper)
	c.openModal()
	return tea.Batch(c.fetchChart(), c.fetchDetails(id))
}

// SelectFocused clicks the row under the cursor.
func (c *Controller) SelectFocused() tea.Cmd {
	coins := c.state.PageCoins()
	if c.state.Cursor < 0 || c.state.Cursor >= len(coins) {
		return nil
	}
	coin := coins[c.state.Cursor]
	return c.RowClicked(coin.ID, coin.Name)
}

// PaginationClicked moves one page back or forward within the filtered page count.
func (c *Controller) PaginationClicked(action string) tea.Cmd {
	s := c.state
	pages := s.PageCount()
	switch {
	case action == ActionPrev && s.CurrentPage > 1:
		s.CurrentPage--
	case action == ActionNext && s.CurrentPage < pages:
		s.CurrentPage++
	default:
		return nil
	}
	s.Cursor = 0
	c.render()
	return nil
}

// MoveCursor moves the row focus within the current page.
func (c *Controller) MoveCursor(delta int) {
	s := c.state
	n := len(s.PageCoins())
	if n == 0 {
		return
	}
	cursor := s.Cursor + delta
	if cursor < 0 || cursor >= n {
		return
	}
	s.Cursor = cursor
	c.doc.Replace(IDTableContainer, renderTable(s))
}

// ModalDismissed closes the drill-down and releases everything it held.
func (c *Controller) ModalDismissed() tea.Cmd {
	s := c.state
	s.Selected = nil
	s.disposeChart()
	c.detail = nil
	// invalidate whatever is still in flight for the closed selection
	s.chartGen++
	s.detailsGen++
	cancel(&c.cancelChart)
	cancel(&c.cancelDetails)

	c.doc.Hide(IDCoinModal)
	c.doc.Hide(IDChartLoader)
	c.doc.Hide(IDPriceChart)
	c.doc.Replace(IDChartTitle, "")
	c.doc.Show(IDChartHelper)
	c.doc.ScrollLocked = false
	return nil
}

// ScrollToTracker brings the tracker section into view.
func (c *Controller) ScrollToTracker() tea.Cmd {
	c.doc.Anchor = IDTracker
	return nil
}

// Resize adapts text widths to the terminal.
func (c *Controller) Resize(width int) {
	c.state.ModalWidth = width
	if c.detail != nil && c.state.Selected != nil {
		c.doc.Replace(IDModalContent, renderModal(c.state, *c.detail))
	}
}

// Update applies fetch results. Results issued for a superseded state are dropped.
func (c *Controller) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case MarketsLoadedMsg:
		c.marketsLoaded(msg)
	case ChartLoadedMsg:
		c.chartLoaded(msg)
	case DetailsLoadedMsg:
		c.detailsLoaded(msg)
	}
	return nil
}

func (c *Controller) fetchMarkets() tea.Cmd {
	s := c.state
	s.marketsGen++
	t := ticket{gen: s.marketsGen, currency: s.Currency}
	c.showLoader(true)

	ctx := c.newContext(&c.cancelMarkets)
	fetcher := c.fetcher
	return func() tea.Msg {
		coins, err := fetcher.Markets(ctx, t.currency.String())
		return MarketsLoadedMsg{ticket: t, Coins: coins, Err: err}
	}
}

func (c *Controller) fetchChart() tea.Cmd {
	s := c.state
	if s.Selected == nil {
		return nil
	}
	s.chartGen++
	s.disposeChart()
	c.doc.Hide(IDPriceChart)
	t := ticket{gen: s.chartGen, coinID: s.Selected.ID, currency: s.Currency, days: s.ChartDays}
	c.doc.Show(IDChartLoader)

	ctx := c.newContext(&c.cancelChart)
	fetcher := c.fetcher
	return func() tea.Msg {
		series, err := fetcher.Chart(ctx, t.coinID, t.currency.String(), int(t.days))
		return ChartLoadedMsg{ticket: t, Series: series, Err: err}
	}
}

func (c *Controller) fetchDetails(id string) tea.Cmd {
	s := c.state
	s.detailsGen++
	t := ticket{gen: s.detailsGen, coinID: id}
	c.doc.Replace(IDModalContent, renderModalLoader())

	ctx := c.newContext(&c.cancelDetails)
	fetcher := c.fetcher
	return func() tea.Msg {
		detail, err := fetcher.Details(ctx, t.coinID)
		return DetailsLoadedMsg{ticket: t, Detail: detail, Err: err}
	}
}

// newContext cancels the previous fetch of the same stream and starts a new deadline.
func (c *Controller) newContext(slot *context.CancelFunc) context.Context {
	cancel(slot)
	ctx, cancelFn := context.WithTimeout(context.Background(), c.timeout)
	*slot = cancelFn
	return ctx
}

func cancel(slot *context.CancelFunc) {
	if *slot != nil {
		(*slot)()
		*slot = nil
	}
}

func (c *Controller) marketsLoaded(msg MarketsLoadedMsg) {
	s := c.state
	if msg.ticket.gen != s.marketsGen {
		c.log.Debugw("drop stale markets", "currency", msg.ticket.currency, "gen", msg.ticket.gen, "current", s.marketsGen)
		return
	}
	cancel(&c.cancelMarkets)
	if msg.Err != nil {
		c.log.Errorw("error when fetch markets", "currency", msg.ticket.currency, "err", msg.Err)
		c.showLoader(false)
		c.showError(msgLoadFailed)
		return
	}

	s.AllCoins = msg.Coins
	s.clampPage()
	c.render()
	c.showLoader(false)
}

func (c *Controller) chartLoaded(msg ChartLoadedMsg) {
	s := c.state
	if msg.ticket.gen != s.chartGen || s.Selected == nil {
		c.log.Debugw("drop stale chart", "coin", msg.ticket.coinID, "currency", msg.ticket.currency,
			"days", msg.ticket.days, "gen", msg.ticket.gen, "current", s.chartGen)
		return
	}
	cancel(&c.cancelChart)
	c.doc.Hide(IDChartLoader)

	err := msg.Err
	if err == nil {
		err = msg.Series.Validate()
	}
	if err != nil {
		c.log.Errorw("error when fetch chart", "coin", msg.ticket.coinID, "days", msg.ticket.days, "err", err)
		c.doc.Replace(IDChartTitle, msgChartFailed)
		return
	}

	c.doc.Hide(IDChartHelper)
	c.doc.Replace(IDChartTitle, renderChartTitle(s.Selected.Name))
	s.setChart(c.newChart(chartConfig(s, msg.Series)))
	c.doc.Show(IDPriceChart)
}

func (c *Controller) detailsLoaded(msg DetailsLoadedMsg) {
	s := c.state
	if msg.ticket.gen != s.detailsGen || s.Selected == nil {
		c.log.Debugw("drop stale details", "coin", msg.ticket.coinID, "gen", msg.ticket.gen, "current", s.detailsGen)
		return
	}
	cancel(&c.cancelDetails)
	if msg.Err != nil {
		c.log.Errorw("error when fetch details", "coin", msg.ticket.coinID, "err", msg.Err)
		c.doc.Replace(IDModalContent, renderModalError())
		return
	}
	detail := msg.Detail
	c.detail = &detail
	c.doc.Replace(IDModalContent, renderModal(s, detail))
}

// render redraws the table and the pagination controls from the state.
func (c *Controller) render() {
	s := c.state
	if n := len(s.PageCoins()); s.Cursor >= n {
		s.Cursor = 0
	}
	c.doc.Replace(IDTableContainer, renderTable(s))
	c.doc.Replace(IDPaginationControls, renderPagination(s))
}

func (c *Controller) showLoader(loading bool) {
	c.doc.SetVisible(IDLoader, loading)
	c.doc.SetVisible(IDTableContainer, !loading)
	c.doc.SetVisible(IDPaginationControls, !loading)
	if loading {
		c.doc.Hide(IDErrorMessage)
	}
}

// showError replaces the table area with the error banner; the table content is kept.
func (c *Controller) showError(message string) {
	c.doc.Replace(IDErrorMessage, message)
	c.doc.Show(IDErrorMessage)
	c.doc.Hide(IDTableContainer)
	c.doc.Hide(IDPaginationControls)
}

func (c *Controller) openModal() {
	c.doc.Show(IDCoinModal)
	c.doc.ScrollLocked = true
}
