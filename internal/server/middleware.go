package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	logKey          = "log"
	requestIDHeader = "X-Request-ID"
	// limiters idle for longer than this are forgotten
	limiterIdle = 10 * time.Minute
)

// requestID tags every request with an ID, a scoped logger and its execution time.
func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.NewString()
		log := s.log.With("ID", id)
		c.Set(logKey, log)
		c.Header(requestIDHeader, id)

		now := time.Now()
		c.Next()
		log.Debugw("Execution time", "path", c.FullPath(), "status", c.Writer.Status(), "elapsed", time.Since(now))
	}
}

func (s *Server) logger(c *gin.Context) *zap.SugaredLogger {
	if v, ok := c.Get(logKey); ok {
		if log, ok := v.(*zap.SugaredLogger); ok {
			return log
		}
	}
	return s.log
}

type clientInfo struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// clientLimiter keeps one token bucket per client address.
type clientLimiter struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	clients map[string]*clientInfo
	now     func() time.Time
}

func newClientLimiter(limit rate.Limit, burst int) *clientLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &clientLimiter{
		limit:   limit,
		burst:   burst,
		clients: make(map[string]*clientInfo),
		now:     time.Now,
	}
}

func (l *clientLimiter) allow(client string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	info, ok := l.clients[client]
	if !ok {
		info = &clientInfo{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[client] = info
	}
	info.lastSeen = now
	for ip, other := range l.clients {
		if now.Sub(other.lastSeen) > limiterIdle {
			delete(l.clients, ip)
		}
	}
	return info.limiter.AllowN(now, 1)
}

func (s *Server) rateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.limiter.allow(c.ClientIP()) {
			c.Next()
			return
		}
		s.logger(c).Infow("rate limit exceeded", "client", c.ClientIP())
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": ErrTooManyRequests.Error()})
	}
}
