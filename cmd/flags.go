package main

import (
	"fmt"
	"time"

	"github.com/kv-base-hack/coin-tracker/common"
	"github.com/kv-base-hack/coin-tracker/internal/config"
	"github.com/kv-base-hack/coin-tracker/internal/httputil"
	"github.com/kv-base-hack/coin-tracker/internal/plexus"
	"github.com/kv-base-hack/coin-tracker/internal/tui"
	"github.com/kv-base-hack/coin-tracker/lib/coingecko"
	"github.com/kv-base-hack/coin-tracker/storage"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	apiBaseURLFlag     = "api-base-url"
	retryAttemptsFlag  = "retry-attempts"
	retryBackoffFlag   = "retry-backoff"
	requestTimeoutFlag = "request-timeout"

	currencyFlag  = "currency"
	chartDaysFlag = "chart-days"
	particlesFlag = "particles"
	fpsFlag       = "fps"
	configFlag    = "config"

	refreshIntervalFlag = "refresh-interval"
	relayCurrenciesFlag = "relay-currencies"
	cacheTTLFlag        = "cache-ttl"
	rateLimitFlag       = "rate-limit"
	rateBurstFlag       = "rate-burst"

	defaultLogFile = "coin-tracker.log"
)

// NewClientFlags creates the flags of the market API client.
func NewClientFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    apiBaseURLFlag,
			Usage:   "market API root, e.g. a relay at http://localhost:8080/api/v3",
			EnvVars: []string{"API_BASE_URL"},
		},
		&cli.IntFlag{
			Name:    retryAttemptsFlag,
			Value:   httputil.DefaultAttempts,
			Usage:   "attempts per request for 429, 5xx and transport errors",
			EnvVars: []string{"RETRY_ATTEMPTS"},
		},
		&cli.DurationFlag{
			Name:    retryBackoffFlag,
			Value:   httputil.DefaultBackoff,
			Usage:   "initial backoff, doubled after each retry",
			EnvVars: []string{"RETRY_BACKOFF"},
		},
		&cli.DurationFlag{
			Name:    requestTimeoutFlag,
			Value:   httputil.DefaultTimeout,
			Usage:   "deadline of a whole fetch including retries",
			EnvVars: []string{"REQUEST_TIMEOUT"},
		},
	}
}

// NewDashboardFlags creates the flags of the terminal dashboard.
func NewDashboardFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    currencyFlag,
			Value:   common.CurrencyUSD.String(),
			Usage:   "initial currency",
			EnvVars: []string{"CURRENCY"},
		},
		&cli.IntFlag{
			Name:    chartDaysFlag,
			Value:   int(common.ChartDays30),
			Usage:   "initial chart period in days",
			EnvVars: []string{"CHART_DAYS"},
		},
		&cli.IntFlag{
			Name:    particlesFlag,
			Value:   plexus.ParticleCount,
			Usage:   "particles of the background animation",
			EnvVars: []string{"PARTICLES"},
		},
		&cli.IntFlag{
			Name:    fpsFlag,
			Value:   tui.DefaultFPS,
			Usage:   "background frames per second",
			EnvVars: []string{"FPS"},
		},
		&cli.StringFlag{
			Name:    configFlag,
			Usage:   "YAML file with currencies and chart periods",
			EnvVars: []string{"CONFIG"},
		},
	}
}

// NewRelayFlags creates the flags of the relay command.
func NewRelayFlags() []cli.Flag {
	return []cli.Flag{
		&cli.DurationFlag{
			Name:    refreshIntervalFlag,
			Value:   time.Minute,
			Usage:   "duration to refresh markets from upstream",
			EnvVars: []string{"REFRESH_INTERVAL"},
		},
		&cli.StringSliceFlag{
			Name:    relayCurrenciesFlag,
			Value:   cli.NewStringSlice("usd", "eur", "rub"),
			Usage:   "currencies refreshed in the background",
			EnvVars: []string{"RELAY_CURRENCIES"},
		},
		&cli.DurationFlag{
			Name:    cacheTTLFlag,
			Value:   storage.DefaultTTL,
			Usage:   "lifetime of cached charts and coin details",
			EnvVars: []string{"CACHE_TTL"},
		},
		&cli.Float64Flag{
			Name:    rateLimitFlag,
			Value:   10,
			Usage:   "requests per second per client, 0 disables the limit",
			EnvVars: []string{"RATE_LIMIT"},
		},
		&cli.IntFlag{
			Name:    rateBurstFlag,
			Value:   20,
			Usage:   "burst of requests per client",
			EnvVars: []string{"RATE_BURST"},
		},
	}
}

// NewCoinGeckoFromContext builds the retrying market API client.
func NewCoinGeckoFromContext(c *cli.Context, log *zap.SugaredLogger, baseURL string) *coingecko.CoinGecko {
	if c.IsSet(apiBaseURLFlag) || baseURL == "" {
		baseURL = c.String(apiBaseURLFlag)
	}
	client := httputil.NewRetryClient(
		httputil.WithAttempts(c.Int(retryAttemptsFlag)),
		httputil.WithBackoff(c.Duration(retryBackoffFlag)),
		httputil.WithLogger(log),
	)
	return coingecko.NewCoinGecko(baseURL, client)
}

// NewDashboardConfigFromContext merges the YAML preferences with the flags; flags win when set.
func NewDashboardConfigFromContext(c *cli.Context) (config.Dashboard, error) {
	d, err := config.Load(c.String(configFlag))
	if err != nil {
		return config.Dashboard{}, err
	}
	if c.IsSet(currencyFlag) || c.String(configFlag) == "" {
		cur, err := common.ParseCurrency(c.String(currencyFlag))
		if err != nil {
			return config.Dashboard{}, err
		}
		d.Currency = cur
	}
	if c.IsSet(chartDaysFlag) {
		d.ChartDays = common.ChartDays(c.Int(chartDaysFlag))
	}
	if err := d.Validate(); err != nil {
		return config.Dashboard{}, fmt.Errorf("invalid dashboard options: %w", err)
	}
	return d, nil
}

// NewRateLimitFromContext returns the per client limit of the relay.
func NewRateLimitFromContext(c *cli.Context) (rate.Limit, int) {
	return rate.Limit(c.Float64(rateLimitFlag)), c.Int(rateBurstFlag)
}
