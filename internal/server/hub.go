package server

import (
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/sangram-sethi/Axiom-pulse/internal/engine"
	"github.com/sangram-sethi/Axiom-pulse/internal/observability"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	clientSendSize = 16
)

// Hub fans view updates out to connected WebSocket clients. Slow clients
// are pruned rather than allowed to block the loop.
type Hub struct {
	logger     *zap.Logger
	clients    map[*wsClient]struct{}
	register   chan *wsClient
	unregister chan *wsClient
	broadcast  chan engine.ViewUpdate
	done       chan struct{}
}

// NewHub creates a hub. Run must be started for it to do anything.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		logger:     logger.Named("hub"),
		clients:    make(map[*wsClient]struct{}),
		register:   make(chan *wsClient),
		unregister: make(chan *wsClient),
		broadcast:  make(chan engine.ViewUpdate, 64),
		done:       make(chan struct{}),
	}
}

// Run processes registrations and broadcasts until updates closes.
func (h *Hub) Run(updates <-chan engine.ViewUpdate) {
	defer close(h.done)

	for {
		select {
		case client := <-h.register:
			h.clients[client] = struct{}{}
			observability.SetWSClients(len(h.clients))

		case client := <-h.unregister:
			h.drop(client)

		case u, ok := <-updates:
			if !ok {
				for client := range h.clients {
					h.drop(client)
				}
				return
			}
			observability.RecordWSBroadcast()
			for client := range h.clients {
				select {
				case client.send <- u:
				default:
					// Client cannot keep up; disconnect instead of
					// blocking the broadcast loop.
					h.logger.Warn("dropping slow client")
					h.drop(client)
				}
			}
		}
	}
}

func (h *Hub) drop(client *wsClient) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.send)
	observability.SetWSClients(len(h.clients))
}

// wsClient is one WebSocket subscriber.
type wsClient struct {
	hub  *Hub
	conn *websocket.Conn
	send chan engine.ViewUpdate
}

func newWSClient(hub *Hub, conn *websocket.Conn) *wsClient {
	return &wsClient{
		hub:  hub,
		conn: conn,
		send: make(chan engine.ViewUpdate, clientSendSize),
	}
}

// writePump serializes queued updates onto the connection and keeps it
// alive with pings.
func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case u, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteJSON(u); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards inbound frames and detects disconnects. The stream is
// one-way; mutations go through the HTTP API.
func (c *wsClient) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
