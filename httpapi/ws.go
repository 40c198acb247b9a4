package httpapi

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	pingPeriod   = 30 * time.Second
	writeTimeout = 5 * time.Second
)

type wireEvent struct {
	Key     string `json:"key"`
	Value   []any  `json:"value,omitempty"`
	Deleted bool   `json:"deleted,omitempty"`
}

// watchKey upgrades the request to a websocket and streams change events
// for one key until the peer goes away.
func (s *Server) watchKey(c *gin.Context) {
	key := c.Param("key")
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Println("WS upgrade failed: ", err)
		return
	}
	defer conn.Close()

	events, cancel := s.events.Subscribe(key)
	defer cancel()
	s.metrics.watchers.Inc()
	defer s.metrics.watchers.Dec()

	// We never expect payloads from the peer - the read loop only exists
	// to notice closes.
	closed := make(chan bool, 1)
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				closed <- true
				return
			}
		}
	}()

	pingTimer := time.NewTicker(pingPeriod)
	defer pingTimer.Stop()
	for {
		select {
		case ev := <-events:
			wev := wireEvent{Key: ev.Key, Value: ev.Value, Deleted: ev.Deleted}
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(wev); err != nil {
				return
			}
		case <-pingTimer.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return
			}
		case <-closed:
			return
		}
	}
}
