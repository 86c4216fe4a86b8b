package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/kv-base-hack/coin-tracker/common"
	"github.com/kv-base-hack/coin-tracker/lib/coingecko"
	"github.com/kv-base-hack/coin-tracker/storage"
	"go.uber.org/zap"
)

type fakeSource struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]bool
}

func (f *fakeSource) Markets(_ context.Context, currency string) ([]coingecko.CoinSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, currency)
	if f.fail[currency] {
		return nil, errors.New("upstream down")
	}
	return []coingecko.CoinSummary{{ID: "bitcoin", Name: "Bitcoin " + currency}}, nil
}

func (f *fakeSource) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func TestMarketsWorker_Init(t *testing.T) {
	src := &fakeSource{fail: map[string]bool{"eur": true}}
	store := storage.NewStorage(zap.NewNop().Sugar(), time.Minute)
	w := NewMarketsWorker(zap.NewNop().Sugar(), src, store,
		[]common.Currency{common.CurrencyUSD, common.CurrencyEUR, common.CurrencyRUB}, time.Hour, time.Second)

	w.Init(context.Background())

	if diff := cmp.Diff([]string{"usd", "eur", "rub"}, src.calls); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
	if snap, ok := store.GetMarkets(common.CurrencyRUB); !ok || snap.Coins[0].Name != "Bitcoin rub" {
		t.Errorf("rub snapshot = %+v, %v", snap, ok)
	}
	if _, ok := store.GetMarkets(common.CurrencyEUR); ok {
		t.Error("failed refresh stored a snapshot")
	}
}

func TestMarketsWorker_RunStopsOnCancel(t *testing.T) {
	src := &fakeSource{}
	store := storage.NewStorage(zap.NewNop().Sugar(), time.Minute)
	w := NewMarketsWorker(zap.NewNop().Sugar(), src, store,
		[]common.Currency{common.CurrencyUSD}, 5*time.Millisecond, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for src.count() < 2 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if src.count() < 2 {
		t.Errorf("ticks = %d, want at least 2", src.count())
	}
}
