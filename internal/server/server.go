package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/kv-base-hack/coin-tracker/internal/httputil"
	"github.com/kv-base-hack/coin-tracker/lib/coingecko"
	"github.com/kv-base-hack/coin-tracker/storage"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const shutdownTimeout = 5 * time.Second

// Upstream is the market API the relay fronts.
type Upstream interface {
	Markets(ctx context.Context, currency string) ([]coingecko.CoinSummary, error)
	Chart(ctx context.Context, coinID, currency string, days int) (coingecko.ChartSeries, error)
	Details(ctx context.Context, coinID string) (coingecko.CoinDetail, error)
}

// Server serves the cached market data under the public API paths.
type Server struct {
	s        *gin.Engine
	bindAddr string
	log      *zap.SugaredLogger
	storage  *storage.Storage
	upstream Upstream
	limiter  *clientLimiter
	timeout  time.Duration

	// closing is closed when the server shuts down, ending open streams.
	closing chan struct{}
}

// NewServer returns a new server. A zero limit disables rate limiting.
func NewServer(log *zap.SugaredLogger, bindAddr string, storage *storage.Storage, upstream Upstream,
	limit rate.Limit, burst int, timeout time.Duration) *Server {
	if timeout <= 0 {
		timeout = httputil.DefaultTimeout
	}
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	config := cors.DefaultConfig()
	config.AllowOrigins = []string{"*"}
	config.AllowMethods = []string{http.MethodGet, http.MethodOptions}
	engine.Use(cors.New(config))

	s := &Server{
		s:        engine,
		bindAddr: bindAddr,
		log:      log.With("component", "server"),
		storage:  storage,
		upstream: upstream,
		timeout:  timeout,
		closing:  make(chan struct{}),
	}
	if limit > 0 {
		s.limiter = newClientLimiter(limit, burst)
	}
	s.register()
	return s
}

func (s *Server) register() {
	s.s.Use(s.requestID())
	if s.limiter != nil {
		s.s.Use(s.rateLimit())
	}

	v3 := s.s.Group("/api/v3")
	v3.GET("/ping", s.ping)

	coins := v3.Group("/coins")
	coins.GET("/markets", s.getMarkets)
	coins.GET("/:id", s.getCoin)
	coins.GET("/:id/market_chart", s.getMarketChart)

	s.s.GET("/ws/markets", s.streamMarkets)
}

// Handler exposes the router, used by tests.
func (s *Server) Handler() http.Handler {
	return s.s
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.bindAddr,
		Handler:           s.s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Infow("run in", "bindAddr", s.bindAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("run server: %w", err)
	case <-ctx.Done():
	}
	close(s.closing)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("run server: %w", err)
	}
	return nil
}

func (s *Server) ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"gecko_says": "(V3) To the Moon!"})
}
