package storage

import (
	"fmt"
	"sync"
	"time"

	"github.com/kv-base-hack/coin-tracker/common"
	"github.com/kv-base-hack/coin-tracker/lib/coingecko"
	"go.uber.org/zap"
)

const DefaultTTL = 2 * time.Minute

// MarketsSnapshot is one refresh of /coins/markets for a currency.
type MarketsSnapshot struct {
	Currency  common.Currency         `json:"currency"`
	Coins     []coingecko.CoinSummary `json:"coins"`
	UpdatedAt time.Time               `json:"updated_at"`
}

type entry[T any] struct {
	value   T
	expires time.Time
}

type chartKey struct {
	coinID   string
	currency common.Currency
	days     common.ChartDays
}

func (k chartKey) String() string {
	return fmt.Sprintf("%s/%s/%d", k.coinID, k.currency, k.days)
}

// Storage keeps the latest markets snapshot per currency and short lived
// copies of charts and coin details. It is safe for concurrent use.
type Storage struct {
	log   *zap.SugaredLogger
	mutex sync.RWMutex
	ttl   time.Duration
	now   func() time.Time

	markets map[common.Currency]MarketsSnapshot
	charts  map[chartKey]entry[coingecko.ChartSeries]
	details map[string]entry[coingecko.CoinDetail]

	subscribers map[common.Currency]map[uint64]chan MarketsSnapshot
	nextID      uint64
}

func NewStorage(log *zap.SugaredLogger, ttl time.Duration) *Storage {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Storage{
		log:         log.With("component", "storage"),
		ttl:         ttl,
		now:         time.Now,
		markets:     make(map[common.Currency]MarketsSnapshot),
		charts:      make(map[chartKey]entry[coingecko.ChartSeries]),
		details:     make(map[string]entry[coingecko.CoinDetail]),
		subscribers: make(map[common.Currency]map[uint64]chan MarketsSnapshot),
	}
}

// SetMarkets replaces the snapshot of its currency and pushes it to the subscribers.
// A subscriber that has not consumed the previous snapshot only gets the newest one.
// A zero UpdatedAt is stamped with the current time.
func (s *Storage) SetMarkets(snap MarketsSnapshot) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if snap.UpdatedAt.IsZero() {
		snap.UpdatedAt = s.now()
	}
	s.markets[snap.Currency] = snap
	for _, ch := range s.subscribers[snap.Currency] {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}

func (s *Storage) GetMarkets(currency common.Currency) (MarketsSnapshot, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	snap, ok := s.markets[currency]
	return snap, ok
}

// GetFreshMarkets returns the snapshot of currency only while it is younger than the TTL.
func (s *Storage) GetFreshMarkets(currency common.Currency) (MarketsSnapshot, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	snap, ok := s.markets[currency]
	if !ok || s.now().Sub(snap.UpdatedAt) >= s.ttl {
		return MarketsSnapshot{}, false
	}
	return snap, true
}

// Subscribe receives every snapshot stored for currency until cancel is called.
func (s *Storage) Subscribe(currency common.Currency) (<-chan MarketsSnapshot, func()) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	id := s.nextID
	s.nextID++
	ch := make(chan MarketsSnapshot, 1)
	if s.subscribers[currency] == nil {
		s.subscribers[currency] = make(map[uint64]chan MarketsSnapshot)
	}
	s.subscribers[currency][id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mutex.Lock()
			defer s.mutex.Unlock()
			delete(s.subscribers[currency], id)
			if len(s.subscribers[currency]) == 0 {
				delete(s.subscribers, currency)
			}
		})
	}
	return ch, cancel
}

func (s *Storage) Subscribers(currency common.Currency) int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.subscribers[currency])
}

func (s *Storage) SetChart(coinID string, currency common.Currency, days common.ChartDays, series coingecko.ChartSeries) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.charts[chartKey{coinID, currency, days}] = entry[coingecko.ChartSeries]{value: series, expires: s.now().Add(s.ttl)}
}

// GetChart returns a cached series that has not expired.
func (s *Storage) GetChart(coinID string, currency common.Currency, days common.ChartDays) (coingecko.ChartSeries, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	e, ok := s.charts[chartKey{coinID, currency, days}]
	if !ok || !s.now().Before(e.expires) {
		return coingecko.ChartSeries{}, false
	}
	return e.value, true
}

func (s *Storage) SetDetails(d coingecko.CoinDetail) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.details[d.ID] = entry[coingecko.CoinDetail]{value: d, expires: s.now().Add(s.ttl)}
}

func (s *Storage) GetDetails(coinID string) (coingecko.CoinDetail, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	e, ok := s.details[coinID]
	if !ok || !s.now().Before(e.expires) {
		return coingecko.CoinDetail{}, false
	}
	return e.value, true
}

// RemoveExpired drops charts and details past their TTL and returns how many were removed.
func (s *Storage) RemoveExpired() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	now := s.now()
	removed := 0
	for k, e := range s.charts {
		if !now.Before(e.expires) {
			delete(s.charts, k)
			removed++
			s.log.Debugw("remove expired chart", "key", k.String())
		}
	}
	for id, e := range s.details {
		if !now.Before(e.expires) {
			delete(s.details, id)
			removed++
		}
	}
	return removed
}
