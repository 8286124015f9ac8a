// Package collab broadcasts dispatched actions to collaborating peers
// over websockets and feeds received actions back through the remote
// dispatch path, so every participant runs the identical reducer.
package collab

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/easelkit/easel"
	"github.com/easelkit/easel/state"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// sendBuffer is the per-peer outbound queue. A peer that falls this
	// far behind is dropped rather than blocking the others.
	sendBuffer = 64
)

// Hub manages all active peer connections and fans dispatched actions
// out to them. Wire it to a dispatcher with Attach; remote actions
// re-enter through DispatchRemote so they are applied without being
// re-broadcast (no echo loops).
type Hub struct {
	disp     *state.Dispatcher
	upgrader websocket.Upgrader

	mu    sync.RWMutex
	peers map[*peer]struct{}
}

type peer struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates a hub over the dispatcher and registers itself as the
// dispatcher's broadcast sink.
func NewHub(d *state.Dispatcher) *Hub {
	h := &Hub{
		disp:  d,
		peers: make(map[*peer]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Same-origin policy is the embedder's concern.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
	d.SetBroadcast(h.Broadcast)
	return h
}

// ServeHTTP upgrades the request and runs the peer until it disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		easel.Logger().Warn("websocket upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}
	p := &peer{conn: conn, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	h.peers[p] = struct{}{}
	h.mu.Unlock()
	easel.Logger().Info("peer connected", "remote", conn.RemoteAddr().String())

	go h.writeLoop(p)
	h.readLoop(p)
}

// Broadcast encodes an action and queues it on every connected peer.
// Called by the dispatcher after each successful local dispatch.
func (h *Hub) Broadcast(a state.Action) {
	data, err := state.EncodeAction(a)
	if err != nil {
		easel.Logger().Warn("broadcast encode failed", "err", err)
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for p := range h.peers {
		select {
		case p.send <- data:
		default:
			// Peer is too slow; closing its send channel ends its
			// write loop and the read loop cleans up.
			go h.drop(p)
		}
	}
}

// Peers returns the number of connected peers.
func (h *Hub) Peers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.peers)
}

// Close disconnects all peers.
func (h *Hub) Close() {
	h.mu.Lock()
	peers := make([]*peer, 0, len(h.peers))
	for p := range h.peers {
		peers = append(peers, p)
	}
	h.peers = make(map[*peer]struct{})
	h.mu.Unlock()
	for _, p := range peers {
		p.conn.Close()
	}
}

func (h *Hub) drop(p *peer) {
	h.mu.Lock()
	_, ok := h.peers[p]
	delete(h.peers, p)
	h.mu.Unlock()
	if ok {
		p.conn.Close()
		easel.Logger().Info("peer dropped", "remote", p.conn.RemoteAddr().String())
	}
}

func (h *Hub) readLoop(p *peer) {
	defer h.drop(p)
	p.conn.SetReadDeadline(time.Now().Add(pongWait))
	p.conn.SetPongHandler(func(string) error {
		return p.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, data, err := p.conn.ReadMessage()
		if err != nil {
			return
		}
		a, err := state.DecodeAction(data)
		if err != nil {
			easel.Logger().Warn("bad remote action", "remote", p.conn.RemoteAddr().String(), "err", err)
			continue
		}
		if err := h.disp.DispatchRemote(a); err != nil {
			easel.Logger().Warn("remote action rejected", "err", err)
		}
	}
}

func (h *Hub) writeLoop(p *peer) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case data, ok := <-p.send:
			p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				p.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := p.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := p.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
