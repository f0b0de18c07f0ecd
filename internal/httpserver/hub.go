// internal/httpserver/hub.go
//
// Websocket fan-out of game events.
// Responsibilities:
//   - Hand each session a games.Publisher that broadcasts to its subscribers.
//   - Run one writer (with keepalive pings) and one reader per connection.
//   - Drop subscribers whose send buffer is full instead of blocking the game.
//
// Notes:
//   - Publish runs under the variant's lock, so broadcast never blocks: a
//     full buffer closes that subscriber.

package httpserver

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/arcade/internal/games"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 25 * time.Second
	sendBuffer = 256
)

// Hub tracks websocket subscribers per session ID.
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[*subscriber]struct{}
}

type subscriber struct {
	conn *websocket.Conn
	send chan []byte
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*subscriber]struct{})}
}

// Publisher returns the sink for one session's events.
func (h *Hub) Publisher(sessionID string) games.Publisher {
	return games.PublisherFunc(func(e games.Event) { h.broadcast(sessionID, e) })
}

func (h *Hub) broadcast(id string, e games.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs := h.subs[id]
	if len(subs) == 0 {
		return
	}
	b, err := json.Marshal(e)
	if err != nil {
		log.Error().Err(err).Str("type", e.Type).Msg("marshal event")
		return
	}
	for sub := range subs {
		select {
		case sub.send <- b:
		default:
			log.Warn().Str("session", id).Msg("dropping slow subscriber")
			h.removeLocked(id, sub)
		}
	}
}

// Subscribe registers conn for a session's events and starts its pumps.
// first, if non-nil, is queued before any event.
func (h *Hub) Subscribe(id string, conn *websocket.Conn, first []byte) {
	sub := &subscriber{conn: conn, send: make(chan []byte, sendBuffer)}
	if first != nil {
		sub.send <- first
	}
	h.mu.Lock()
	if h.subs[id] == nil {
		h.subs[id] = make(map[*subscriber]struct{})
	}
	h.subs[id][sub] = struct{}{}
	h.mu.Unlock()

	go sub.writePump()
	go h.readPump(id, sub)
}

// CloseSession disconnects every subscriber of a session.
func (h *Hub) CloseSession(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs[id] {
		h.removeLocked(id, sub)
	}
}

// Subscribers reports how many connections follow a session.
func (h *Hub) Subscribers(id string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[id])
}

func (h *Hub) unsubscribe(id string, sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(id, sub)
}

// removeLocked closes sub.send exactly once: only the caller that finds sub
// still registered closes it.
func (h *Hub) removeLocked(id string, sub *subscriber) {
	subs, ok := h.subs[id]
	if !ok {
		return
	}
	if _, ok := subs[sub]; !ok {
		return
	}
	delete(subs, sub)
	close(sub.send)
	if len(subs) == 0 {
		delete(h.subs, id)
	}
}

// readPump only services pongs and close frames; clients send input over
// plain HTTP.
func (h *Hub) readPump(id string, sub *subscriber) {
	defer func() {
		h.unsubscribe(id, sub)
		_ = sub.conn.Close()
	}()
	sub.conn.SetReadLimit(512)
	_ = sub.conn.SetReadDeadline(time.Now().Add(pongWait))
	sub.conn.SetPongHandler(func(string) error {
		return sub.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *subscriber) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Debug().Err(err).Msg("websocket write")
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
