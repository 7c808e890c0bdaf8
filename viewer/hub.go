package viewer

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/brensch/solosnake/game"
)

const (
	clientBuffer = 16
	writeTimeout = 5 * time.Second
	pingInterval = 30 * time.Second
)

type client struct {
	conn   *websocket.Conn
	remote string
	send   chan []byte
}

// Hub fans committed states out to websocket spectators. It is read-only:
// nothing a spectator sends reaches the game.
type Hub struct {
	upgrader websocket.Upgrader
	log      *slog.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
	last    []byte
	seq     uint64
	closed  bool
}

func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		log:     log.With("component", "hub"),
		clients: map[*client]struct{}{},
	}
}

// NewFrame converts a state into its wire form.
func NewFrame(seq uint64, s *game.GameState) Frame {
	snake := make([]Point, len(s.Snake))
	for i, c := range s.Snake {
		snake[i] = Point{X: c.X, Y: c.Y}
	}
	f := Frame{
		Seq:        seq,
		Status:     s.Status.String(),
		Size:       s.Size,
		Snake:      snake,
		Food:       Point{X: s.Food.X, Y: s.Food.Y},
		Direction:  s.Direction.String(),
		Score:      s.Score,
		HighScore:  s.HighScore,
		Difficulty: s.Difficulty.String(),
		IntervalMs: s.TickInterval.Milliseconds(),
		Turn:       s.Turn,
	}
	if s.Cause != game.CauseNone {
		f.Cause = s.Cause.String()
	}
	return f
}

// OnState broadcasts state. Clients whose buffer is full are dropped rather
// than allowed to hold up the game.
func (h *Hub) OnState(state *game.GameState) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}

	h.seq++
	msg, err := json.Marshal(NewFrame(h.seq, state))
	if err != nil {
		h.log.Warn("encode frame", "err", err)
		return
	}
	h.last = msg

	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			h.log.Info("dropping slow spectator", "remote", c.remote)
			h.removeLocked(c)
		}
	}
}

func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug("websocket upgrade", "err", err)
		return
	}

	c := &client{conn: conn, remote: conn.RemoteAddr().String(), send: make(chan []byte, clientBuffer)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	if h.last != nil {
		c.send <- h.last
	}
	h.mu.Unlock()

	h.log.Debug("spectator joined", "remote", c.remote)
	go h.writeLoop(c)
	h.readLoop(c)
}

// readLoop only watches for the peer going away.
func (h *Hub) readLoop(c *client) {
	defer h.remove(c)
	c.conn.SetReadLimit(512)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.log.Debug("spectator read", "err", err)
			}
			return
		}
	}
}

func (h *Hub) writeLoop(c *client) {
	ping := time.NewTicker(pingInterval)
	defer ping.Stop()
	defer c.conn.Close()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.remove(c)
				return
			}
		case <-ping.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.remove(c)
				return
			}
		}
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
}

// Close disconnects every spectator and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		h.removeLocked(c)
	}
}
