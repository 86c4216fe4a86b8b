package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/kv-base-hack/coin-tracker/common"
	"github.com/kv-base-hack/coin-tracker/storage"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// streamMarkets pushes the current snapshot of vs_currency and every later one.
func (s *Server) streamMarkets(c *gin.Context) {
	log := s.logger(c)
	currency, err := common.ParseCurrency(c.Query("vs_currency"))
	if err != nil {
		log.Errorw("invalid currency when stream markets", "vs_currency", c.Query("vs_currency"), "err", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": ErrInvalidCurrency.Error()})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Errorw("error when upgrade websocket", "err", err)
		return
	}
	defer conn.Close()

	updates, cancel := s.storage.Subscribe(currency)
	defer cancel()

	// the reader only consumes control frames; all writes happen below
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(maxMessageSize)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Debugw("websocket closed", "err", err)
				}
				return
			}
		}
	}()

	write := func(snap storage.MarketsSnapshot) error {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(snap)
	}

	if snap, ok := s.storage.GetMarkets(currency); ok {
		if err := write(snap); err != nil {
			log.Errorw("error when write snapshot", "currency", currency, "err", err)
			return
		}
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-s.closing:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(writeWait))
			return
		case snap := <-updates:
			if err := write(snap); err != nil {
				log.Errorw("error when write snapshot", "currency", currency, "err", err)
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
