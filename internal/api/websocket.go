package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	MaxWSConnectionsTotal = 500
	MaxWSConnectionsPerIP = 10

	// DefaultBroadcastInterval is 20 snapshots per second.
	DefaultBroadcastInterval = 50 * time.Millisecond

	sendBuffer   = 16
	writeTimeout = 5 * time.Second
)

// Envelope wraps every server-to-client message.
type Envelope struct {
	Event string      `json:"event" msgpack:"event"`
	Data  interface{} `json:"data" msgpack:"data"`
}

// Command is a client-to-server message.
type Command struct {
	Cmd string  `json:"cmd" msgpack:"cmd"`
	X   float64 `json:"x" msgpack:"x"`
	Y   float64 `json:"y" msgpack:"y"`
}

// Selection answers a select command. ID is -1 when no body was hit.
type Selection struct {
	ID       int          `json:"id" msgpack:"id"`
	Neighbor *NeighborDTO `json:"neighbor,omitempty" msgpack:"neighbor,omitempty"`
}

type wsClient struct {
	conn   *websocket.Conn
	ip     string
	binary bool
	send   chan []byte
	once   sync.Once
}

func (c *wsClient) close() {
	c.once.Do(func() {
		close(c.send)
	})
}

// WebSocketHub streams snapshots to every connected client. JSON clients
// get text frames; clients that connect with ?format=msgpack get binary
// msgpack frames.
type WebSocketHub struct {
	engine   EngineInterface
	interval time.Duration
	upgrader websocket.Upgrader

	clients map[*wsClient]struct{}
	mu      sync.RWMutex

	wsLimiter *WebSocketRateLimiter
}

// NewWebSocketHub creates a hub. origins follows the CORS list; "*" accepts
// any origin. Requests without an Origin header (non-browser clients) are
// always accepted.
func NewWebSocketHub(engine EngineInterface, origins []string, interval time.Duration) *WebSocketHub {
	if interval <= 0 {
		interval = DefaultBroadcastInterval
	}
	h := &WebSocketHub{
		engine:    engine,
		interval:  interval,
		clients:   make(map[*wsClient]struct{}),
		wsLimiter: NewWebSocketRateLimiter(MaxWSConnectionsPerIP),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || isAllowedOrigin(origin, origins) {
				return true
			}
			log.Printf("websocket connection rejected from origin %s", origin)
			RecordConnectionRejected("origin")
			return false
		},
	}
	return h
}

func isAllowedOrigin(origin string, allowed []string) bool {
	if AllowAllOrigins(allowed) {
		return true
	}
	if strings.HasPrefix(origin, "http://localhost") || strings.HasPrefix(origin, "http://127.0.0.1") {
		return true
	}
	for _, a := range allowed {
		if origin == a {
			return true
		}
	}
	return false
}

// Run broadcasts the latest snapshot every interval until ctx is done, then
// disconnects every client.
func (h *WebSocketHub) Run(ctx context.Context) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case <-ticker.C:
			if h.ClientCount() == 0 {
				continue
			}
			h.Broadcast("state", toState(h.engine.Snapshot()))
		}
	}
}

// Broadcast encodes data once per wire format and queues it for every
// client. A client whose buffer is full skips the frame.
func (h *WebSocketHub) Broadcast(event string, data interface{}) {
	env := Envelope{Event: event, Data: data}

	var jsonFrame, binFrame []byte
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		var frame []byte
		var err error
		if c.binary {
			if binFrame == nil {
				binFrame, err = msgpack.Marshal(&env)
			}
			frame = binFrame
		} else {
			if jsonFrame == nil {
				jsonFrame, err = json.Marshal(&env)
			}
			frame = jsonFrame
		}
		if err != nil {
			log.Printf("websocket encode %s: %v", event, err)
			return
		}
		select {
		case c.send <- frame:
		default:
		}
	}
	IncrementWSMessages()
}

func (h *WebSocketHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleWebSocket upgrades the request and serves the client until it
// disconnects.
func (h *WebSocketHub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	ip := GetClientIP(r)

	if total := h.ClientCount(); total >= MaxWSConnectionsTotal {
		log.Printf("websocket connection rejected: total limit reached (%d)", total)
		RecordConnectionRejected("ws_total_limit")
		http.Error(w, "Too many connections", http.StatusServiceUnavailable)
		return
	}

	if !h.wsLimiter.Allow(ip) {
		log.Printf("websocket connection rejected from %s: per-IP limit reached", ip)
		RecordConnectionRejected("ws_ip_limit")
		http.Error(w, "Too many connections from your IP", http.StatusTooManyRequests)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		h.wsLimiter.Release(ip)
		return
	}

	c := &wsClient{
		conn:   conn,
		ip:     ip,
		binary: r.URL.Query().Get("format") == "msgpack",
		send:   make(chan []byte, sendBuffer),
	}
	h.register(c)

	go h.writePump(c)
	h.readPump(c)
}

func (h *WebSocketHub) register(c *wsClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()

	log.Printf("websocket client connected from %s (%d total)", c.ip, count)
	UpdateWSConnections(count)
}

func (h *WebSocketHub) unregister(c *wsClient) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	count := len(h.clients)
	h.mu.Unlock()

	if !ok {
		return
	}
	h.wsLimiter.Release(c.ip)
	c.close()
	UpdateWSConnections(count)
}

func (h *WebSocketHub) closeAll() {
	h.mu.RLock()
	clients := make([]*wsClient, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		h.unregister(c)
	}
}

// writePump owns all writes to the connection.
func (h *WebSocketHub) writePump(c *wsClient) {
	defer c.conn.Close()

	msgType := websocket.TextMessage
	if c.binary {
		msgType = websocket.BinaryMessage
	}
	for frame := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(msgType, frame); err != nil {
			h.unregister(c)
			return
		}
	}
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
}

func (h *WebSocketHub) readPump(c *wsClient) {
	defer h.unregister(c)

	for {
		msgType, message, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var cmd Command
		if msgType == websocket.BinaryMessage {
			err = msgpack.Unmarshal(message, &cmd)
		} else {
			err = json.Unmarshal(message, &cmd)
		}
		if err != nil {
			h.reply(c, "error", map[string]string{"error": "malformed command"})
			continue
		}
		h.handleCommand(c, cmd)
	}
}

func (h *WebSocketHub) handleCommand(c *wsClient, cmd Command) {
	switch cmd.Cmd {
	case "reset":
		queued := h.engine.Reset()
		if queued {
			RecordReset()
		}
		h.reply(c, "reset", map[string]bool{"queued": queued})

	case "pause", "resume":
		paused := cmd.Cmd == "pause"
		h.engine.SetPaused(paused)
		h.reply(c, "paused", map[string]bool{"paused": paused})

	case "select":
		sel := Selection{ID: -1}
		if id, ok := h.engine.Pick(r2.Vec{X: cmd.X, Y: cmd.Y}); ok {
			sel.ID = id
			if nb, err := h.engine.Nearest(id); err == nil {
				RecordNearestQuery()
				dto := toNeighbor(nb)
				sel.Neighbor = &dto
			}
		}
		h.reply(c, "selection", sel)

	default:
		h.reply(c, "error", map[string]string{"error": "unknown command " + cmd.Cmd})
	}
}

// reply queues a message for one client only. Unlike broadcasts it waits
// for buffer space.
func (h *WebSocketHub) reply(c *wsClient, event string, data interface{}) {
	env := Envelope{Event: event, Data: data}

	var frame []byte
	var err error
	if c.binary {
		frame, err = msgpack.Marshal(&env)
	} else {
		frame, err = json.Marshal(&env)
	}
	if err != nil {
		log.Printf("websocket encode %s: %v", event, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	select {
	case c.send <- frame:
	case <-time.After(writeTimeout):
		log.Printf("websocket reply %s to %s dropped", event, c.ip)
	}
}
