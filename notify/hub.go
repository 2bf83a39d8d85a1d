package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/realDragonium/mcwatch/logging"
)

const (
	clientBuffer = 16
	writeWait    = 10 * time.Second
)

type hubClient struct {
	conn *websocket.Conn
	send chan []byte
}

func newHubClient(conn *websocket.Conn) *hubClient {
	c := &hubClient{
		conn: conn,
		send: make(chan []byte, clientBuffer),
	}
	go c.writePump()
	return c
}

func (c *hubClient) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
}

// Hub broadcasts messages to every connected websocket client. Clients that
// cannot keep up are dropped.
type Hub struct {
	mu       sync.RWMutex
	clients  map[*hubClient]struct{}
	upgrader websocket.Upgrader
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*hubClient]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// ServeHTTP upgrades the request and keeps the client registered until it
// goes away.
func (hub *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := logging.Component("hub")
	conn, err := hub.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	c := newHubClient(conn)
	hub.mu.Lock()
	hub.clients[c] = struct{}{}
	hub.mu.Unlock()
	logger.Debug().Str("remote", r.RemoteAddr).Msg("websocket client connected")

	go func() {
		defer func() {
			hub.remove(c)
			logger.Debug().Str("remote", r.RemoteAddr).Msg("websocket client disconnected")
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (hub *Hub) remove(c *hubClient) {
	hub.mu.Lock()
	if _, ok := hub.clients[c]; ok {
		delete(hub.clients, c)
		close(c.send)
	}
	hub.mu.Unlock()
}

func (hub *Hub) Notify(ctx context.Context, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal hub message: %w", err)
	}

	hub.mu.RLock()
	clients := make([]*hubClient, 0, len(hub.clients))
	for c := range hub.clients {
		clients = append(clients, c)
	}
	hub.mu.RUnlock()

	for _, c := range clients {
		hub.send(c, data)
	}
	return nil
}

func (hub *Hub) send(c *hubClient, data []byte) {
	hub.mu.RLock()
	defer hub.mu.RUnlock()
	if _, ok := hub.clients[c]; !ok {
		return
	}
	select {
	case c.send <- data:
	default:
		go hub.remove(c)
	}
}

func (hub *Hub) ClientCount() int {
	hub.mu.RLock()
	defer hub.mu.RUnlock()
	return len(hub.clients)
}

// Close disconnects every client.
func (hub *Hub) Close() {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	for c := range hub.clients {
		delete(hub.clients, c)
		close(c.send)
	}
}
