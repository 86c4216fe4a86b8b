package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kv-base-hack/coin-tracker/common"
	"github.com/kv-base-hack/coin-tracker/lib/coingecko"
	"github.com/kv-base-hack/coin-tracker/storage"
)

const (
	cacheHeader = "X-Cache"
	cacheHit    = "HIT"
	cacheMiss   = "MISS"

	defaultPerPage = 100
)

type MarketsRequest struct {
	VsCurrency string `form:"vs_currency" binding:"required"`
	PerPage    int    `form:"per_page" binding:"omitempty,min=1,max=250"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
}

func (s *Server) getMarkets(c *gin.Context) {
	log := s.logger(c)

	var request MarketsRequest
	if err := c.ShouldBindQuery(&request); err != nil {
		log.Errorw("invalid request when get markets", "err", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": ErrInvalidMarketsRequest.Error()})
		return
	}
	currency, err := common.ParseCurrency(request.VsCurrency)
	if err != nil {
		log.Errorw("invalid currency when get markets", "vs_currency", request.VsCurrency, "err", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": ErrInvalidCurrency.Error()})
		return
	}

	snap, ok := s.storage.GetFreshMarkets(currency)
	c.Header(cacheHeader, cacheHit)
	if !ok {
		c.Header(cacheHeader, cacheMiss)
		ctx, cancel := s.upstreamContext(c)
		defer cancel()
		coins, err := s.upstream.Markets(ctx, currency.String())
		if err != nil {
			log.Errorw("error when get markets from upstream", "currency", currency, "err", err)
			c.JSON(http.StatusBadGateway, gin.H{"error": ErrUpstream.Error()})
			return
		}
		snap = storage.MarketsSnapshot{Currency: currency, Coins: coins, UpdatedAt: time.Now()}
		s.storage.SetMarkets(snap)
	}

	c.JSON(http.StatusOK, paginate(snap.Coins, request.Page, request.PerPage))
}

// paginate returns the 1-based page of coins; zero values mean the first page of defaultPerPage.
func paginate(coins []coingecko.CoinSummary, page, perPage int) []coingecko.CoinSummary {
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	if page <= 0 {
		page = 1
	}
	start := (page - 1) * perPage
	if start >= len(coins) {
		return []coingecko.CoinSummary{}
	}
	end := min(start+perPage, len(coins))
	return coins[start:end]
}

type MarketChartRequest struct {
	VsCurrency string `form:"vs_currency" binding:"required"`
	Days       string `form:"days" binding:"required"`
}

func (s *Server) getMarketChart(c *gin.Context) {
	log := s.logger(c)
	id := c.Param("id")

	var request MarketChartRequest
	if err := c.ShouldBindQuery(&request); err != nil {
		log.Errorw("invalid request when get market chart", "id", id, "err", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": ErrInvalidChartRequest.Error()})
		return
	}
	currency, err := common.ParseCurrency(request.VsCurrency)
	if err != nil {
		log.Errorw("invalid currency when get market chart", "vs_currency", request.VsCurrency, "err", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": ErrInvalidCurrency.Error()})
		return
	}
	days, err := common.ParseChartDays(request.Days)
	if err != nil {
		log.Errorw("invalid days when get market chart", "days", request.Days, "err", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": ErrInvalidDays.Error()})
		return
	}

	if series, ok := s.storage.GetChart(id, currency, days); ok {
		c.Header(cacheHeader, cacheHit)
		c.JSON(http.StatusOK, series)
		return
	}

	c.Header(cacheHeader, cacheMiss)
	ctx, cancel := s.upstreamContext(c)
	defer cancel()
	series, err := s.upstream.Chart(ctx, id, currency.String(), int(days))
	if err != nil {
		log.Errorw("error when get market chart from upstream", "id", id, "currency", currency, "days", days, "err", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": ErrUpstream.Error()})
		return
	}
	s.storage.SetChart(id, currency, days, series)
	c.JSON(http.StatusOK, series)
}

func (s *Server) getCoin(c *gin.Context) {
	log := s.logger(c)
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": ErrInvalidCoinRequest.Error()})
		return
	}

	if detail, ok := s.storage.GetDetails(id); ok {
		c.Header(cacheHeader, cacheHit)
		c.JSON(http.StatusOK, detail)
		return
	}

	c.Header(cacheHeader, cacheMiss)
	ctx, cancel := s.upstreamContext(c)
	defer cancel()
	detail, err := s.upstream.Details(ctx, id)
	if err != nil {
		log.Errorw("error when get coin from upstream", "id", id, "err", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": ErrUpstream.Error()})
		return
	}
	s.storage.SetDetails(detail)
	c.JSON(http.StatusOK, detail)
}

func (s *Server) upstreamContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), s.timeout)
}
