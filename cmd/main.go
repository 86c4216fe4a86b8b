package main

import (
	"context"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/kv-base-hack/coin-tracker/common"
	"github.com/kv-base-hack/coin-tracker/internal/httputil"
	"github.com/kv-base-hack/coin-tracker/internal/logger"
	"github.com/kv-base-hack/coin-tracker/internal/server"
	"github.com/kv-base-hack/coin-tracker/internal/tui"
	"github.com/kv-base-hack/coin-tracker/storage"
	"github.com/kv-base-hack/coin-tracker/worker"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	app := cli.NewApp()
	app.Name = "coin-tracker"
	app.Usage = "cryptocurrency market dashboard for the terminal"
	app.Action = runDashboard
	app.Flags = append(app.Flags, logger.NewFlags()...)
	app.Flags = append(app.Flags, NewClientFlags()...)
	app.Flags = append(app.Flags, NewDashboardFlags()...)
	sort.Sort(cli.FlagsByName(app.Flags))

	relayFlags := append(NewRelayFlags(), httputil.NewHTTPCliFlags(httputil.Port)...)
	sort.Sort(cli.FlagsByName(relayFlags))
	app.Commands = []*cli.Command{
		{
			Name:   "relay",
			Usage:  "serve cached market data under the public API paths",
			Flags:  relayFlags,
			Action: runRelay,
		},
	}

	if err := app.Run(os.Args); err != nil {
		panic(err)
	}
}

func newLogger(c *cli.Context, fallbackFile string) (*zap.SugaredLogger, func(), error) {
	l, flusher, err := logger.NewLogger(logger.OptionsFromContext(c, fallbackFile))
	if err != nil {
		return nil, nil, err
	}
	zap.ReplaceGlobals(l)
	return l.Sugar(), flusher, nil
}

func signalContext(c *cli.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
}

// runDashboard logs to a file so the terminal stays with the UI.
func runDashboard(c *cli.Context) error {
	log, flusher, err := newLogger(c, defaultLogFile)
	if err != nil {
		return err
	}
	defer flusher()
	log.Debugw("Starting dashboard...")

	prefs, err := NewDashboardConfigFromContext(c)
	if err != nil {
		log.Errorw("error when load dashboard config", "err", err)
		return err
	}
	client := NewCoinGeckoFromContext(c, log, prefs.APIBaseURL)
	log.Infow("market api", "baseURL", client.BaseURL(), "currency", prefs.Currency, "days", prefs.ChartDays)

	ctx, stop := signalContext(c)
	defer stop()
	return tui.Run(ctx, tui.Options{
		Log:            log,
		Fetcher:        client,
		Dashboard:      prefs,
		Particles:      c.Int(particlesFlag),
		FPS:            c.Int(fpsFlag),
		RequestTimeout: c.Duration(requestTimeoutFlag),
	})
}

func runRelay(c *cli.Context) error {
	log, flusher, err := newLogger(c, "")
	if err != nil {
		return err
	}
	defer flusher()
	log.Debugw("Starting relay...")

	currencies, err := common.ParseCurrencies(c.StringSlice(relayCurrenciesFlag))
	if err != nil {
		log.Errorw("invalid relay currencies", "err", err)
		return err
	}
	ctx, stop := signalContext(c)
	defer stop()

	client := NewCoinGeckoFromContext(c, log, "")
	store := storage.NewStorage(log, c.Duration(cacheTTLFlag))

	markets := worker.NewMarketsWorker(log, client, store, currencies,
		c.Duration(refreshIntervalFlag), c.Duration(requestTimeoutFlag))
	markets.Init(ctx)
	go markets.Run(ctx)

	limit, burst := NewRateLimitFromContext(c)
	host := httputil.NewHTTPAddressFromContext(c)
	srv := server.NewServer(log, host, store, client, limit, burst, c.Duration(requestTimeoutFlag))
	return srv.Run(ctx)
}
