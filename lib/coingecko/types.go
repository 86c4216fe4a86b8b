package coingecko

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// CoinSummary is one entry of /coins/markets.
type CoinSummary struct {
	ID                       string   `json:"id"`
	Symbol                   string   `json:"symbol"`
	Name                     string   `json:"name"`
	MarketCapRank            int      `json:"market_cap_rank"`
	Image                    string   `json:"image"`
	CurrentPrice             float64  `json:"current_price"`
	PriceChangePercentage24h *float64 `json:"price_change_percentage_24h"`
	MarketCap                float64  `json:"market_cap"`
}

type Image struct {
	Thumb string `json:"thumb"`
	Small string `json:"small"`
	Large string `json:"large"`
}

// MarketData is keyed by lower-case currency code.
type MarketData struct {
	CurrentPrice                       map[string]float64 `json:"current_price"`
	MarketCap                          map[string]float64 `json:"market_cap"`
	TotalVolume                        map[string]float64 `json:"total_volume"`
	High24h                            map[string]float64 `json:"high_24h"`
	Low24h                             map[string]float64 `json:"low_24h"`
	PriceChangePercentage24hInCurrency map[string]float64 `json:"price_change_percentage_24h_in_currency"`
	CirculatingSupply                  float64            `json:"circulating_supply"`
	TotalSupply                        *float64           `json:"total_supply"`
}

// CoinDetail is the /coins/{id} bundle with market data included.
type CoinDetail struct {
	ID            string            `json:"id"`
	Symbol        string            `json:"symbol"`
	Name          string            `json:"name"`
	Image         Image             `json:"image"`
	MarketCapRank int               `json:"market_cap_rank"`
	MarketData    MarketData        `json:"market_data"`
	Description   map[string]string `json:"description"`
}

// ChartPoint is a (timestamp in ms, price) pair, encoded as a two element array.
type ChartPoint struct {
	Timestamp int64
	Price     float64
}

func (p ChartPoint) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{float64(p.Timestamp), p.Price})
}

func (p *ChartPoint) UnmarshalJSON(data []byte) error {
	var pair []float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("chart point: expected 2 values, got %d", len(pair))
	}
	p.Timestamp = int64(pair[0])
	p.Price = pair[1]
	return nil
}

// ChartSeries is the price part of /coins/{id}/market_chart.
type ChartSeries struct {
	Prices []ChartPoint `json:"prices"`
}

var (
	ErrEmptySeries        = errors.New("empty chart series")
	ErrNonFinitePrice     = errors.New("non-finite price in chart series")
	ErrUnorderedTimestamp = errors.New("chart timestamps are not strictly increasing")
)

// Validate checks the series is non-empty, finite and strictly increasing in time.
func (s ChartSeries) Validate() error {
	if len(s.Prices) == 0 {
		return ErrEmptySeries
	}
	for i, p := range s.Prices {
		if math.IsNaN(p.Price) || math.IsInf(p.Price, 0) {
			return fmt.Errorf("%w at index %d", ErrNonFinitePrice, i)
		}
		if i > 0 && p.Timestamp <= s.Prices[i-1].Timestamp {
			return fmt.Errorf("%w at index %d", ErrUnorderedTimestamp, i)
		}
	}
	return nil
}

func (s ChartSeries) First() float64 {
	return s.Prices[0].Price
}

func (s ChartSeries) Last() float64 {
	return s.Prices[len(s.Prices)-1].Price
}
