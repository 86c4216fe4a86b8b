package dashboard

// Element identifiers of the page. Renderers write into these regions only.
const (
	IDFilterInput         = "filterInput"
	IDCurrencySelector    = "currencySelector"
	IDTableContainer      = "table-container"
	IDLoader              = "loader"
	IDErrorMessage        = "error-message"
	IDPaginationControls  = "pagination-controls"
	IDPriceChart          = "priceChart"
	IDChartTitle          = "chart-title"
	IDChartHelper         = "chart-helper"
	IDChartLoader         = "chart-loader"
	IDChartPeriodSelector = "chart-period-selector"
	IDCoinModal           = "coin-modal"
	IDModalContent        = "modal-content"
	IDScrollToTrackerBtn  = "scrollToTrackerBtn"
	IDBackgroundCanvas    = "bg-canvas"
	IDTracker             = "tracker"
)

// Node is one addressable region: its rendered children and whether it is shown.
type Node struct {
	ID      string
	Content string
	Hidden  bool
}

// Document is the set of regions the controller writes to. It is owned by the
// UI goroutine and is not safe for concurrent use.
type Document struct {
	nodes map[string]*Node
	// Writes counts content replacements per region, used to observe renders.
	Writes map[string]int
	// ScrollLocked is set while the modal is open; the table ignores
	// cursor and page keys until it is released.
	ScrollLocked bool
	// Anchor is the region scrolled into view last.
	Anchor string
}

// NewDocument creates every required region in its initial visibility.
func NewDocument() *Document {
	d := &Document{
		nodes:  make(map[string]*Node),
		Writes: make(map[string]int),
	}
	for _, id := range []string{
		IDFilterInput, IDCurrencySelector, IDTableContainer, IDLoader, IDErrorMessage,
		IDPaginationControls, IDPriceChart, IDChartTitle, IDChartHelper, IDChartLoader,
		IDChartPeriodSelector, IDCoinModal, IDModalContent, IDScrollToTrackerBtn,
		IDBackgroundCanvas, IDTracker,
	} {
		d.nodes[id] = &Node{ID: id}
	}
	for _, id := range []string{IDErrorMessage, IDChartLoader, IDCoinModal, IDLoader, IDPriceChart} {
		d.nodes[id].Hidden = true
	}
	return d
}

// Node returns the region with the given id; unknown ids panic, they are programming errors.
func (d *Document) Node(id string) *Node {
	n, ok := d.nodes[id]
	if !ok {
		panic("dashboard: unknown element " + id)
	}
	return n
}

// Replace swaps the children of a region.
func (d *Document) Replace(id, content string) {
	d.Node(id).Content = content
	d.Writes[id]++
}

func (d *Document) Content(id string) string {
	return d.Node(id).Content
}

func (d *Document) Show(id string) {
	d.Node(id).Hidden = false
}

func (d *Document) Hide(id string) {
	d.Node(id).Hidden = true
}

func (d *Document) SetVisible(id string, visible bool) {
	d.Node(id).Hidden = !visible
}

func (d *Document) Visible(id string) bool {
	return !d.Node(id).Hidden
}
