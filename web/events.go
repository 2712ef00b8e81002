package web

import (
	"net/http"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/gorilla/websocket"
)

const eventWriteTimeout = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// eventConn is one websocket listener. Writes are serialized.
type eventConn struct {
	mu sync.Mutex
	ws *websocket.Conn
}

func (c *eventConn) send(st State) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ws.SetWriteDeadline(time.Now().Add(eventWriteTimeout))
	return c.ws.WriteJSON(st)
}

// hub fans state changes out to every connected listener.
type hub struct {
	mu    sync.Mutex
	conns map[*eventConn]struct{}
}

func newHub() *hub {
	return &hub{conns: map[*eventConn]struct{}{}}
}

func (h *hub) add(c *eventConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[c] = struct{}{}
}

func (h *hub) remove(c *eventConn) {
	h.mu.Lock()
	delete(h.conns, c)
	h.mu.Unlock()
	c.ws.Close()
}

func (h *hub) snapshot() []*eventConn {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns := make([]*eventConn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	return conns
}

func (h *hub) broadcast(st State) {
	for _, c := range h.snapshot() {
		if err := c.send(st); err != nil {
			glog.V(2).Infof("dropping event listener %s: %v", c.ws.RemoteAddr(), err)
			h.remove(c)
		}
	}
}

func (h *hub) closeAll() {
	for _, c := range h.snapshot() {
		c.mu.Lock()
		c.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		c.mu.Unlock()
		h.remove(c)
	}
}

// eventsHandler upgrades to a websocket and keeps the client informed of
// the deck state until it goes away.
func (h *Handler) eventsHandler(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already answered the request.
		glog.V(2).Infof("websocket upgrade from %s: %v", r.RemoteAddr, err)
		return
	}
	// The server's read timeout must not cut off an idle listener.
	ws.SetReadDeadline(time.Time{})

	c := &eventConn{ws: ws}
	h.events.add(c)
	defer h.events.remove(c)

	if err := c.send(h.state("")); err != nil {
		return
	}
	// Nothing is expected from the client; reading notices it leaving and
	// handles control frames.
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			return
		}
	}
}
