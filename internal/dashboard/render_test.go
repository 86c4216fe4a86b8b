package dashboard

import (
	"strings"
	"testing"

	"github.com/kv-base-hack/coin-tracker/common"
	"github.com/kv-base-hack/coin-tracker/lib/coingecko"
)

func TestRenderTable(t *testing.T) {
	s := newTestState()
	s.AllCoins = makeCoins(3)
	out := renderTable(s)
	for _, want := range []string{"Coin 1", "C2", "$3.00", strings.ToUpper(colCoin)} {
		if !strings.Contains(out, want) {
			t.Errorf("table misses %q:\n%s", want, out)
		}
	}
	if n := strings.Count(out, "\n"); n != 3 {
		t.Errorf("table has %d line breaks, want header plus 3 rows", n)
	}

	s.SearchTerm = "nothing like this"
	if out := renderTable(s); !strings.Contains(out, msgNothingFound) {
		t.Errorf("empty table = %q", out)
	}
}

func TestRenderPagination(t *testing.T) {
	s := newTestState()
	s.AllCoins = makeCoins(20)
	if out := renderPagination(s); out != "" {
		t.Errorf("single page rendered %q", out)
	}
	s.AllCoins = makeCoins(45)
	s.CurrentPage = 2
	out := renderPagination(s)
	for _, want := range []string{"Стр. 2 из 3", msgPrev, msgNext} {
		if !strings.Contains(out, want) {
			t.Errorf("pagination misses %q: %q", want, out)
		}
	}
}

func TestRenderModal(t *testing.T) {
	s := newTestState()
	d := coingecko.CoinDetail{
		ID:            "bitcoin",
		Symbol:        "btc",
		Name:          "Bitcoin",
		MarketCapRank: 1,
		MarketData: coingecko.MarketData{
			CurrentPrice:                       map[string]float64{"usd": 65000, "eur": 60000},
			MarketCap:                          map[string]float64{"usd": 1.2e12},
			PriceChangePercentage24hInCurrency: map[string]float64{"usd": -1.5},
			CirculatingSupply:                  19700000,
		},
		Description: map[string]string{"en": "Bitcoin is money. It is old. It is new."},
	}
	out := renderModal(s, d)
	for _, want := range []string{"Bitcoin", "BTC", "Ранг #1", "$65,000.00", "-1.50%", "$1.2 trillion", "19,700,000", infinity, "Bitcoin is money. It is old."} {
		if !strings.Contains(out, want) {
			t.Errorf("modal misses %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "It is new") {
		t.Error("english description not cut to two sentences")
	}

	d.Description["ru"] = "<b>Биткоин</b>"
	if out := renderModal(s, d); !strings.Contains(out, "Биткоин") || strings.Contains(out, "<b>") {
		t.Errorf("russian description not preferred:\n%s", out)
	}

	s.setCurrency(common.CurrencyEUR)
	if out := renderModal(s, d); !strings.Contains(out, "€60,000.00") {
		t.Errorf("modal ignores currency:\n%s", out)
	}
}

func TestChartConfig(t *testing.T) {
	s := newTestState()
	falling := coingecko.ChartSeries{Prices: []coingecko.ChartPoint{
		{Timestamp: 1704067200000, Price: 10},
		{Timestamp: 1704153600000, Price: 8},
	}}
	cfg := chartConfig(s, falling)
	if cfg.Color != colorRed {
		t.Errorf("falling series colour = %v", cfg.Color)
	}
	if len(cfg.Labels) != 2 || len(cfg.Values) != 2 || cfg.Values[1] != 8 {
		t.Errorf("config = %+v", cfg)
	}
	if got := cfg.TickFormat(10); got != "$10" {
		t.Errorf("tick = %q", got)
	}

	flat := coingecko.ChartSeries{Prices: []coingecko.ChartPoint{{Timestamp: 1, Price: 5}, {Timestamp: 2, Price: 5}}}
	if cfg := chartConfig(s, flat); cfg.Color != colorGreen {
		t.Errorf("flat series colour = %v", cfg.Color)
	}
}

func TestRenderSelectors(t *testing.T) {
	s := newTestState()
	if out := renderCurrencySelector(s); !strings.Contains(out, "USD") || !strings.Contains(out, "RUB") {
		t.Errorf("currency selector = %q", out)
	}
	if out := renderPeriodSelector(s); !strings.Contains(out, "30д") || !strings.Contains(out, "365д") {
		t.Errorf("period selector = %q", out)
	}
}
