// Package monitor streams unit motion events to websocket clients and accepts
// chat command lines from them.
package monitor

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/oklog/ulid/v2"

	"github.com/udisondev/pathgen/internal/unit"
)

const (
	// DefaultQueueSize is the per-client outgoing buffer, in messages.
	DefaultQueueSize = 256

	writeWait      = 5 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 4096
)

// CommandFunc runs one command line received from a client and writes the
// replies to out.
type CommandFunc func(ctx context.Context, out io.Writer, line string) error

// reply is sent back for every line a command writes.
type reply struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Hub fans motion events out to websocket clients.
// Publish never blocks: a client whose queue is full is dropped.
type Hub struct {
	mu        sync.RWMutex
	clients   map[*client]struct{}
	queueSize int
	commands  CommandFunc
	upgrader  websocket.Upgrader

	published atomic.Uint64
	dropped   atomic.Uint64
}

// NewHub creates a hub. queueSize <= 0 uses DefaultQueueSize; commands may be nil.
func NewHub(queueSize int, commands CommandFunc) *Hub {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Hub{
		clients:   make(map[*client]struct{}),
		queueSize: queueSize,
		commands:  commands,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// Publish sends ev to every client. It has the unit.Observer shape and is
// called from the map tick.
func (h *Hub) Publish(ev unit.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		slog.Error("marshaling motion event", "type", ev.Type, "guid", ev.GUID, "error", err)
		return
	}
	h.published.Add(1)
	h.broadcast(data)
}

func (h *Hub) broadcast(data []byte) {
	h.mu.RLock()
	var slow []*client
	for c := range h.clients {
		if !c.enqueue(data) {
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		slog.Warn("dropping slow monitor client", "client", c.id.String())
		h.dropped.Add(1)
		h.remove(c)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stats returns published events and dropped clients.
func (h *Hub) Stats() (published, dropped uint64) {
	return h.published.Load(), h.dropped.Load()
}

// ServeHTTP upgrades the connection and serves the client until it leaves.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	c := &client{
		id:   ulid.Make(),
		conn: conn,
		send: make(chan []byte, h.queueSize),
		done: make(chan struct{}),
	}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	slog.Info("monitor client connected", "client", c.id.String(), "remote", r.RemoteAddr)

	go c.writePump()
	h.readPump(r.Context(), c)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[*client]struct{})
	h.mu.Unlock()

	for c := range clients {
		c.close()
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	c.close()
}

// readPump reads command lines until the connection fails.
func (h *Hub) readPump(ctx context.Context, c *client) {
	defer func() {
		h.remove(c)
		slog.Info("monitor client disconnected", "client", c.id.String())
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Debug("monitor read failed", "client", c.id.String(), "error", err)
			}
			return
		}

		line := strings.TrimSpace(string(payload))
		if line == "" || h.commands == nil {
			continue
		}
		if err := h.commands(ctx, replyWriter{c}, line); err != nil {
			slog.Debug("monitor command failed", "client", c.id.String(), "line", line, "error", err)
		}
	}
}

type client struct {
	id   ulid.ULID
	conn *websocket.Conn
	send chan []byte

	once sync.Once
	done chan struct{}
}

// enqueue reports false when the queue is full.
func (c *client) enqueue(data []byte) bool {
	select {
	case <-c.done:
		return true
	default:
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case <-c.done:
			return

		case data := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// replyWriter turns command output lines into reply messages.
type replyWriter struct{ c *client }

func (w replyWriter) Write(p []byte) (int, error) {
	for _, line := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		data, err := json.Marshal(reply{Type: "reply", Text: line})
		if err != nil {
			return 0, err
		}
		w.c.enqueue(data)
	}
	return len(p), nil
}
