package worker

import (
	"context"
	"time"

	"github.com/kv-base-hack/coin-tracker/common"
	"github.com/kv-base-hack/coin-tracker/lib/coingecko"
	"github.com/kv-base-hack/coin-tracker/storage"
	"go.uber.org/zap"
)

// MarketsSource is the upstream of the markets refresh.
type MarketsSource interface {
	Markets(ctx context.Context, currency string) ([]coingecko.CoinSummary, error)
}

// MarketsWorker refreshes the markets snapshot of every configured currency.
type MarketsWorker struct {
	log        *zap.SugaredLogger
	source     MarketsSource
	storage    *storage.Storage
	currencies []common.Currency
	duration   time.Duration
	timeout    time.Duration
}

func NewMarketsWorker(log *zap.SugaredLogger, source MarketsSource, storage *storage.Storage,
	currencies []common.Currency, duration, timeout time.Duration) *MarketsWorker {
	return &MarketsWorker{
		log:        log.With("worker", "markets"),
		source:     source,
		storage:    storage,
		currencies: currencies,
		duration:   duration,
		timeout:    timeout,
	}
}

// Init fills the storage once before the server starts answering.
func (w *MarketsWorker) Init(ctx context.Context) {
	w.process(ctx)
}

// Run refreshes on every tick until ctx is done.
func (w *MarketsWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.duration)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debugw("stop markets worker", "err", ctx.Err())
			return
		case <-ticker.C:
			w.process(ctx)
		}
	}
}

func (w *MarketsWorker) process(ctx context.Context) {
	for _, currency := range w.currencies {
		if ctx.Err() != nil {
			return
		}
		if err := w.refresh(ctx, currency); err != nil {
			w.log.Errorw("error when refresh markets", "currency", currency, "err", err)
		}
	}
	if n := w.storage.RemoveExpired(); n > 0 {
		w.log.Debugw("remove expired entries", "count", n)
	}
}

func (w *MarketsWorker) refresh(ctx context.Context, currency common.Currency) error {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	now := time.Now()
	coins, err := w.source.Markets(ctx, currency.String())
	if err != nil {
		return err
	}
	w.log.Debugw("set markets", "currency", currency, "coins", len(coins), "elapsed", time.Since(now))
	w.storage.SetMarkets(storage.MarketsSnapshot{
		Currency:  currency,
		Coins:     coins,
		UpdatedAt: now,
	})
	return nil
}
