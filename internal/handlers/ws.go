package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/telconova/notifier/internal/services"
	"github.com/telconova/notifier/internal/types"
)

const (
	writeWait     = 10 * time.Second
	pongWait      = 60 * time.Second
	pingPeriod    = (pongWait * 9) / 10
	statsInterval = 5 * time.Second
)

// StatsWebSocket streams queue statistics to dashboard clients.
func StatsWebSocket(c *gin.Context) {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			for _, allowed := range types.AllowedOrigins {
				if origin == allowed {
					return true
				}
			}
			return false
		},
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		log.Error().Err(err).Msg("failed to set initial read deadline")
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})

	// Read loop only serves to notice the client going away.
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	statsTicker := time.NewTicker(statsInterval)
	defer statsTicker.Stop()

	pingTicker := time.NewTicker(pingPeriod)
	defer pingTicker.Stop()

	writeStats := func() bool {
		stats, err := services.GetQueueStats()
		if err != nil {
			log.Error().Err(err).Msg("failed to compute stats for websocket client")
			return true
		}

		if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			return false
		}

		if err := conn.WriteJSON(gin.H{"type": "stats", "stats": stats}); err != nil {
			log.Debug().Err(err).Msg("websocket client write failed")
			return false
		}

		return true
	}

	if !writeStats() {
		return
	}

	for {
		select {
		case <-done:
			return
		case <-statsTicker.C:
			if !writeStats() {
				return
			}
		case <-pingTicker.C:
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
