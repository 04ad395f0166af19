package ws

import (
	"sync"
	"time"
)

type Conn interface {
	SendJSON(v any) error
	Close() error
	UserID() string
	Role() string
}

type Hub struct {
	// role -> userID -> set(conns)
	roles map[string]map[string]map[Conn]struct{}
	mu    sync.RWMutex

	// PongWait is how long a connection may stay silent before it is
	// dropped; the server pings at 9/10 of it. Set before serving.
	PongWait time.Duration
}

const DefaultPongWait = 60 * time.Second

func NewHub() *Hub {
	return &Hub{
		roles:    make(map[string]map[string]map[Conn]struct{}),
		PongWait: DefaultPongWait,
	}
}

func (h *Hub) pongWait() time.Duration {
	if h.PongWait <= 0 {
		return DefaultPongWait
	}
	return h.PongWait
}

func (h *Hub) Add(c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	role, uid := c.Role(), c.UserID()
	if h.roles[role] == nil {
		h.roles[role] = make(map[string]map[Conn]struct{})
	}
	if h.roles[role][uid] == nil {
		h.roles[role][uid] = make(map[Conn]struct{})
	}
	h.roles[role][uid][c] = struct{}{}
}

func (h *Hub) Remove(c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	role, uid := c.Role(), c.UserID()
	if h.roles[role] == nil || h.roles[role][uid] == nil {
		return
	}
	delete(h.roles[role][uid], c)
	if len(h.roles[role][uid]) == 0 {
		delete(h.roles[role], uid)
	}
	if len(h.roles[role]) == 0 {
		delete(h.roles, role)
	}
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, users := range h.roles {
		for _, set := range users {
			n += len(set)
		}
	}
	return n
}

type BroadcastOpts struct {
	Roles   []string // empty => every role
	UserIDs []string // empty => every user of the selected roles
}

// Broadcast returns how many connections were written to successfully.
// Targets are collected under the lock and written after it is released,
// so a slow peer does not hold up Add or Remove.
func (h *Hub) Broadcast(opts BroadcastOpts, payload any) int {
	sent := 0
	for _, c := range h.targets(opts) {
		// broken writes are cleaned up when the read loop exits
		if c.SendJSON(payload) == nil {
			sent++
		}
	}
	return sent
}

func (h *Hub) targets(opts BroadcastOpts) []Conn {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var wanted map[string]bool
	if len(opts.UserIDs) > 0 {
		wanted = make(map[string]bool, len(opts.UserIDs))
		for _, id := range opts.UserIDs {
			wanted[id] = true
		}
	}

	var out []Conn
	collect := func(users map[string]map[Conn]struct{}) {
		for uid, set := range users {
			if wanted != nil && !wanted[uid] {
				continue
			}
			for c := range set {
				out = append(out, c)
			}
		}
	}

	if len(opts.Roles) == 0 {
		for _, users := range h.roles {
			collect(users)
		}
		return out
	}
	for _, role := range opts.Roles {
		if users, ok := h.roles[role]; ok {
			collect(users)
		}
	}
	return out
}
