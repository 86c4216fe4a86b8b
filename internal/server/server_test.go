package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/gorilla/websocket"
	"github.com/kv-base-hack/coin-tracker/common"
	"github.com/kv-base-hack/coin-tracker/internal/httputil"
	"github.com/kv-base-hack/coin-tracker/lib/coingecko"
	"github.com/kv-base-hack/coin-tracker/storage"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type fakeUpstream struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (f *fakeUpstream) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	return f.err
}

func (f *fakeUpstream) Markets(_ context.Context, currency string) ([]coingecko.CoinSummary, error) {
	if err := f.record("markets/" + currency); err != nil {
		return nil, err
	}
	return []coingecko.CoinSummary{{ID: "bitcoin", Symbol: "btc", Name: "Bitcoin", CurrentPrice: 1}}, nil
}

func (f *fakeUpstream) Chart(_ context.Context, coinID, currency string, days int) (coingecko.ChartSeries, error) {
	if err := f.record("chart/" + coinID + "/" + currency); err != nil {
		return coingecko.ChartSeries{}, err
	}
	return coingecko.ChartSeries{Prices: []coingecko.ChartPoint{{Timestamp: 1, Price: float64(days)}}}, nil
}

func (f *fakeUpstream) Details(_ context.Context, coinID string) (coingecko.CoinDetail, error) {
	if err := f.record("coin/" + coinID); err != nil {
		return coingecko.CoinDetail{}, err
	}
	return coingecko.CoinDetail{ID: coinID, Name: "Bitcoin"}, nil
}

func (f *fakeUpstream) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func newTestServer(t *testing.T, limit rate.Limit, burst int) (*Server, *storage.Storage, *fakeUpstream) {
	t.Helper()
	log := zap.NewNop().Sugar()
	store := storage.NewStorage(log, time.Minute)
	up := &fakeUpstream{}
	return NewServer(log, "127.0.0.1:0", store, up, limit, burst, time.Second), store, up
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestMarkets_ServesSnapshotWithoutUpstream(t *testing.T) {
	s, store, up := newTestServer(t, 0, 0)
	store.SetMarkets(storage.MarketsSnapshot{
		Currency: common.CurrencyEUR,
		Coins:    []coingecko.CoinSummary{{ID: "ethereum"}, {ID: "bitcoin"}},
	})

	w := get(t, s, "/api/v3/coins/markets?vs_currency=eur&order=market_cap_desc&per_page=1&page=2")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body)
	}
	if got := w.Header().Get(cacheHeader); got != cacheHit {
		t.Errorf("X-Cache = %q", got)
	}
	if w.Header().Get(requestIDHeader) == "" {
		t.Error("missing request id")
	}
	var coins []coingecko.CoinSummary
	if err := json.Unmarshal(w.Body.Bytes(), &coins); err != nil {
		t.Fatal(err)
	}
	if len(coins) != 1 || coins[0].ID != "bitcoin" {
		t.Errorf("coins = %+v", coins)
	}
	if calls := up.Calls(); len(calls) != 0 {
		t.Errorf("upstream called: %v", calls)
	}
}

func TestMarkets_MissReadsThrough(t *testing.T) {
	s, store, up := newTestServer(t, 0, 0)
	w := get(t, s, "/api/v3/coins/markets?vs_currency=USD")
	if w.Code != http.StatusOK || w.Header().Get(cacheHeader) != cacheMiss {
		t.Fatalf("status = %d, X-Cache = %q", w.Code, w.Header().Get(cacheHeader))
	}
	if _, ok := store.GetMarkets(common.CurrencyUSD); !ok {
		t.Error("upstream result not stored")
	}
	get(t, s, "/api/v3/coins/markets?vs_currency=usd")
	if diff := cmp.Diff([]string{"markets/usd"}, up.Calls()); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestMarkets_ExpiredSnapshotReadsThrough(t *testing.T) {
	s, store, up := newTestServer(t, 0, 0)
	if w := get(t, s, "/api/v3/coins/markets?vs_currency=gbp"); w.Header().Get(cacheHeader) != cacheMiss {
		t.Fatalf("first request X-Cache = %q", w.Header().Get(cacheHeader))
	}
	if w := get(t, s, "/api/v3/coins/markets?vs_currency=gbp"); w.Header().Get(cacheHeader) != cacheHit {
		t.Fatalf("second request X-Cache = %q", w.Header().Get(cacheHeader))
	}

	snap, _ := store.GetMarkets(common.CurrencyGBP)
	snap.UpdatedAt = time.Now().Add(-24 * time.Hour)
	store.SetMarkets(snap)

	w := get(t, s, "/api/v3/coins/markets?vs_currency=gbp")
	if w.Code != http.StatusOK || w.Header().Get(cacheHeader) != cacheMiss {
		t.Fatalf("status = %d, X-Cache = %q", w.Code, w.Header().Get(cacheHeader))
	}
	if diff := cmp.Diff([]string{"markets/gbp", "markets/gbp"}, up.Calls()); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
	if got, _ := store.GetMarkets(common.CurrencyGBP); time.Since(got.UpdatedAt) > time.Minute {
		t.Errorf("snapshot not refreshed, updated at %v", got.UpdatedAt)
	}
}

func TestMarkets_BadRequests(t *testing.T) {
	s, _, _ := newTestServer(t, 0, 0)
	for _, target := range []string{
		"/api/v3/coins/markets",
		"/api/v3/coins/markets?vs_currency=notacurrency",
		"/api/v3/coins/markets?vs_currency=usd&per_page=500",
		"/api/v3/coins/bitcoin/market_chart?vs_currency=usd&days=-1",
		"/api/v3/coins/bitcoin/market_chart?days=7",
	} {
		if w := get(t, s, target); w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d", target, w.Code)
		}
	}
}

func TestMarketChart_Cached(t *testing.T) {
	s, _, up := newTestServer(t, 0, 0)
	for i, want := range []string{cacheMiss, cacheHit} {
		w := get(t, s, "/api/v3/coins/bitcoin/market_chart?vs_currency=usd&days=7")
		if w.Code != http.StatusOK || w.Header().Get(cacheHeader) != want {
			t.Fatalf("request %d: status = %d, X-Cache = %q", i, w.Code, w.Header().Get(cacheHeader))
		}
		var series coingecko.ChartSeries
		if err := json.Unmarshal(w.Body.Bytes(), &series); err != nil {
			t.Fatal(err)
		}
		if series.Last() != 7 {
			t.Errorf("series = %+v", series)
		}
	}
	if diff := cmp.Diff([]string{"chart/bitcoin/usd"}, up.Calls()); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestCoin_UpstreamError(t *testing.T) {
	s, _, up := newTestServer(t, 0, 0)
	up.err = errors.New("down")
	w := get(t, s, "/api/v3/coins/bitcoin")
	if w.Code != http.StatusBadGateway {
		t.Errorf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), ErrUpstream.Error()) {
		t.Errorf("body = %s", w.Body)
	}

	up.err = nil
	if w := get(t, s, "/api/v3/coins/bitcoin"); w.Code != http.StatusOK {
		t.Errorf("status = %d after recovery", w.Code)
	}
}

func TestRateLimit(t *testing.T) {
	s, _, _ := newTestServer(t, rate.Every(time.Hour), 2)
	for i := 0; i < 2; i++ {
		if w := get(t, s, "/api/v3/ping"); w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d", i, w.Code)
		}
	}
	if w := get(t, s, "/api/v3/ping"); w.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", w.Code)
	}

	// another client has its own bucket
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/v3/ping", nil)
	r.RemoteAddr = "198.51.100.7:4000"
	s.Handler().ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Errorf("other client status = %d", w.Code)
	}
}

func TestRelay_CompatibleWithClient(t *testing.T) {
	s, store, _ := newTestServer(t, 0, 0)
	store.SetMarkets(storage.MarketsSnapshot{
		Currency: common.CurrencyRUB,
		Coins:    []coingecko.CoinSummary{{ID: "bitcoin", Name: "Bitcoin"}},
	})
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	client := coingecko.NewCoinGecko(ts.URL+"/api/v3", httputil.NewRetryClient(httputil.WithAttempts(1)))
	coins, err := client.Markets(context.Background(), "rub")
	if err != nil {
		t.Fatal(err)
	}
	if len(coins) != 1 || coins[0].Name != "Bitcoin" {
		t.Errorf("coins = %+v", coins)
	}
	detail, err := client.Details(context.Background(), "bitcoin")
	if err != nil || detail.ID != "bitcoin" {
		t.Errorf("Details = %+v, %v", detail, err)
	}
}

func TestStreamMarkets(t *testing.T) {
	s, store, _ := newTestServer(t, 0, 0)
	store.SetMarkets(storage.MarketsSnapshot{Currency: common.CurrencyUSD, Coins: make([]coingecko.CoinSummary, 1)})
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/markets?vs_currency=usd"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var snap storage.MarketsSnapshot
	if err := conn.ReadJSON(&snap); err != nil {
		t.Fatal(err)
	}
	if snap.Currency != common.CurrencyUSD || len(snap.Coins) != 1 {
		t.Errorf("first snapshot = %+v", snap)
	}

	store.SetMarkets(storage.MarketsSnapshot{Currency: common.CurrencyUSD, Coins: make([]coingecko.CoinSummary, 3)})
	if err := conn.ReadJSON(&snap); err != nil {
		t.Fatal(err)
	}
	if len(snap.Coins) != 3 {
		t.Errorf("pushed snapshot has %d coins", len(snap.Coins))
	}
}

func TestStreamMarkets_BadCurrency(t *testing.T) {
	s, _, _ := newTestServer(t, 0, 0)
	if w := get(t, s, "/ws/markets?vs_currency=xx"); w.Code != http.StatusBadRequest {
		t.Errorf("status = %d", w.Code)
	}
}
