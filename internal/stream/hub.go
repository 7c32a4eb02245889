// Package stream broadcasts simulation steps to websocket clients.
package stream

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/roach88/reefcore/internal/sim"
)

// Message types sent to clients.
const (
	TypeHello = "hello"
	TypeStep  = "step"
	TypeDone  = "done"
)

// Message is one frame sent to clients.
type Message struct {
	Type    string          `json:"type"`
	Run     string          `json:"run,omitempty"`
	Step    *sim.StepEvent  `json:"step,omitempty"`
	Summary json.RawMessage `json:"summary,omitempty"`
}

const writeTimeout = 5 * time.Second

// Hub is an http.Handler that upgrades requests to websockets and a
// sim.Observer that broadcasts every step to the connected clients.
type Hub struct {
	run      string
	upgrader websocket.Upgrader
	logger   *slog.Logger

	mu      sync.RWMutex
	clients map[*websocket.Conn]*sync.Mutex
	closed  bool
}

// NewHub creates a hub for the named run.
func NewHub(run string, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		run: run,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger:  logger,
		clients: make(map[*websocket.Conn]*sync.Mutex),
	}
}

// ServeHTTP upgrades the connection and keeps it registered until the
// client goes away or the hub closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	// Hold the connection's write lock until hello is out so it is always
	// the first frame a client sees.
	connMu := &sync.Mutex{}
	connMu.Lock()
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		connMu.Unlock()
		conn.Close()
		return
	}
	h.clients[conn] = connMu
	h.mu.Unlock()
	h.logger.Debug("client connected", "remote", r.RemoteAddr)

	ok := h.write(conn, Message{Type: TypeHello, Run: h.run})
	connMu.Unlock()
	if !ok {
		h.drop(conn)
		return
	}

	// Clients only listen. Reading drives ping/close handling and tells us
	// when they leave.
	for {
		if _, _, err := conn.NextReader(); err != nil {
			break
		}
	}
	h.drop(conn)
	h.logger.Debug("client disconnected", "remote", r.RemoteAddr)
}

// OnStep broadcasts a step to every client.
func (h *Hub) OnStep(e sim.StepEvent) {
	h.broadcast(Message{Type: TypeStep, Run: h.run, Step: &e})
}

// Finish broadcasts the end of the run with summary marshaled as JSON.
func (h *Hub) Finish(summary any) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	h.broadcast(Message{Type: TypeDone, Run: h.run, Summary: data})
	return nil
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client and refuses new ones.
func (h *Hub) Close() error {
	h.mu.Lock()
	h.closed = true
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for c := range h.clients {
		conns = append(conns, c)
	}
	h.clients = make(map[*websocket.Conn]*sync.Mutex)
	h.mu.Unlock()

	for _, c := range conns {
		c.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "run finished"),
			time.Now().Add(writeTimeout))
		c.Close()
	}
	return nil
}

func (h *Hub) broadcast(msg Message) {
	h.mu.RLock()
	var failed []*websocket.Conn
	for conn, connMu := range h.clients {
		if !h.send(conn, connMu, msg) {
			failed = append(failed, conn)
		}
	}
	h.mu.RUnlock()

	for _, conn := range failed {
		h.drop(conn)
	}
}

func (h *Hub) send(conn *websocket.Conn, connMu *sync.Mutex, msg Message) bool {
	connMu.Lock()
	defer connMu.Unlock()
	return h.write(conn, msg)
}

// write sends msg; the caller holds the connection's write lock.
func (h *Hub) write(conn *websocket.Conn, msg Message) bool {
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteJSON(msg); err != nil {
		h.logger.Debug("websocket write failed", "error", err)
		return false
	}
	return true
}

func (h *Hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	_, ok := h.clients[conn]
	delete(h.clients, conn)
	h.mu.Unlock()
	if ok {
		conn.Close()
	}
}
