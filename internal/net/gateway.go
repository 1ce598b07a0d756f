package net

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"blockstead/server/internal/engine"
)

const writeWait = 10 * time.Second

// spawnFrame is the wire format streamed to connected viewers whenever a
// node's network visibility changes.
type spawnFrame struct {
	Type       string  `json:"type"`
	NodeID     uint64  `json:"nodeId"`
	Name       string  `json:"name"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	ServerTime int64   `json:"serverTime"`
}

type viewer struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// SpawnGateway fans node registration changes out to websocket viewers. It
// implements engine.SpawnListener.
type SpawnGateway struct {
	mu       sync.Mutex
	viewers  map[uint64]*viewer
	nextID   atomic.Uint64
	upgrader websocket.Upgrader
	logger   *log.Logger
}

// NewSpawnGateway creates a gateway with no connected viewers.
func NewSpawnGateway(logger *log.Logger) *SpawnGateway {
	if logger == nil {
		logger = log.Default()
	}
	return &SpawnGateway{
		viewers: make(map[uint64]*viewer),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		logger: logger,
	}
}

// NodeRegistered implements engine.SpawnListener.
func (g *SpawnGateway) NodeRegistered(node *engine.Node) {
	g.broadcast("spawn", node)
}

// NodeUnregistered implements engine.SpawnListener.
func (g *SpawnGateway) NodeUnregistered(node *engine.Node) {
	g.broadcast("despawn", node)
}

func (g *SpawnGateway) broadcast(kind string, node *engine.Node) {
	if g == nil || node == nil {
		return
	}
	pos := node.WorldPosition()
	frame := spawnFrame{
		Type:       kind,
		NodeID:     uint64(node.ID()),
		Name:       node.Name(),
		X:          pos.X(),
		Y:          pos.Y(),
		Z:          pos.Z(),
		ServerTime: time.Now().UnixMilli(),
	}
	data, err := json.Marshal(frame)
	if err != nil {
		g.logger.Printf("failed to marshal spawn frame: %v", err)
		return
	}

	g.mu.Lock()
	viewers := make(map[uint64]*viewer, len(g.viewers))
	for id, v := range g.viewers {
		viewers[id] = v
	}
	g.mu.Unlock()

	for id, v := range viewers {
		v.mu.Lock()
		v.conn.SetWriteDeadline(time.Now().Add(writeWait))
		err := v.conn.WriteMessage(websocket.TextMessage, data)
		v.mu.Unlock()
		if err != nil {
			g.logger.Printf("failed to send frame to viewer %d: %v", id, err)
			g.disconnect(id)
		}
	}
}

func (g *SpawnGateway) disconnect(id uint64) {
	g.mu.Lock()
	v, ok := g.viewers[id]
	if ok {
		delete(g.viewers, id)
	}
	g.mu.Unlock()
	if ok {
		v.conn.Close()
	}
}

// HandleWS upgrades an HTTP request into a spawn-stream subscription. The
// read loop exists only to detect disconnects; viewers send nothing.
func (g *SpawnGateway) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Printf("upgrade failed: %v", err)
		return
	}

	id := g.nextID.Add(1)
	g.mu.Lock()
	g.viewers[id] = &viewer{conn: conn}
	g.mu.Unlock()

	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				g.disconnect(id)
				return
			}
		}
	}()
}

// ViewerCount reports the number of connected viewers.
func (g *SpawnGateway) ViewerCount() int {
	if g == nil {
		return 0
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.viewers)
}
