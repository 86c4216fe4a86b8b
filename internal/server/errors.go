package server

import "errors"

var (
	ErrInvalidMarketsRequest = errors.New("invalid markets request")
	ErrInvalidChartRequest   = errors.New("invalid market chart request")
	ErrInvalidCoinRequest    = errors.New("invalid coin request")
	ErrInvalidCurrency       = errors.New("invalid vs_currency")
	ErrInvalidDays           = errors.New("invalid days")

	ErrUpstream        = errors.New("upstream unavailable")
	ErrTooManyRequests = errors.New("too many requests")
)
