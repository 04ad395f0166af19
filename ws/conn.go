package ws

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type ClaimsProvider interface {
	FromRequest(r *http.Request) (userID, role string, err error)
}

type wsConn struct {
	userID string
	role   string
	conn   *websocket.Conn
	mu     sync.Mutex // gorilla allows one concurrent writer
}

const writeWait = 10 * time.Second

func (c *wsConn) SendJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(v)
}
func (c *wsConn) Close() error   { return c.conn.Close() }
func (c *wsConn) UserID() string { return c.userID }
func (c *wsConn) Role() string   { return c.role }

// keepalive pings until done is closed or a ping fails. Listen-only peers
// answer with pongs, which extend the read deadline.
func (c *wsConn) keepalive(every time.Duration, done <-chan struct{}) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-done:
			return
		case <-t.C:
			c.mu.Lock()
			err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
			c.mu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

// Serve authenticates, upgrades, registers the connection and reads until
// the peer goes away. initial, when non-nil, is called after authentication
// and its result (if non-nil) is sent right after the ready message.
func Serve(hub *Hub, claims ClaimsProvider, initial func() any, w http.ResponseWriter, r *http.Request) {
	userID, role, err := claims.FromRequest(r)
	if err != nil {
		http.Error(w, "unauthorized: "+err.Error(), http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	wc := &wsConn{
		userID: userID,
		role:   role,
		conn:   conn,
	}
	hub.Add(wc)
	done := make(chan struct{})
	defer func() {
		close(done)
		hub.Remove(wc)
		_ = conn.Close()
	}()

	_ = wc.SendJSON(map[string]any{
		"type":   "ws.ready",
		"userId": userID,
		"role":   role,
		"ts":     time.Now().UTC(),
	})
	if initial != nil {
		if v := initial(); v != nil {
			_ = wc.SendJSON(v)
		}
	}

	pongWait := hub.pongWait()
	go wc.keepalive(pongWait*9/10, done)

	conn.SetReadLimit(1 << 20)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	}
}
