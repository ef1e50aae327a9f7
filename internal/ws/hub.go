package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/Capstone-E1/agrismart_backend/internal/models"
	"github.com/gorilla/websocket"
)

// Message types pushed to dashboard clients
const (
	TypeConnected      = "connected"
	TypeSensorSnapshot = "sensor_snapshot"
	TypeStatusChange   = "status_change"
	TypeError          = "error"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	sendBuffer = 256
)

// Client represents a WebSocket client connection
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	sensorID string // Optional: only push alerts for this sensor
}

// Hub maintains active WebSocket connections and broadcasts messages
type Hub struct {
	mu         sync.RWMutex
	clients    map[*Client]bool
	broadcast  chan outbound
	register   chan *Client
	unregister chan *Client
	latest     []byte
	latestSeq  uint64
}

type outbound struct {
	data     []byte
	sensorID string // empty for messages every client receives
}

// Message represents a WebSocket message structure
type Message struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// WebSocket upgrader configuration
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The dashboard may be served from any origin
		return true
	},
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan outbound, sendBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the WebSocket hub
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			latest := h.latest
			h.mu.Unlock()
			log.Printf("Client connected. Total clients: %d", total)

			if data, err := encode(TypeConnected, map[string]string{"status": "connected"}); err == nil {
				h.deliver(client, data)
			}
			// New clients start from the most recent snapshot
			if latest != nil {
				h.deliver(client, latest)
			}

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				log.Printf("Client disconnected. Total clients: %d", len(h.clients))
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			targets := make([]*Client, 0, len(h.clients))
			for client := range h.clients {
				if msg.sensorID == "" || client.sensorID == "" || client.sensorID == msg.sensorID {
					targets = append(targets, client)
				}
			}
			h.mu.RUnlock()
			for _, client := range targets {
				h.deliver(client, msg.data)
			}
		}
	}
}

// deliver queues data for one client and drops the client when its buffer is full
func (h *Hub) deliver(client *Client, data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; !ok {
		return
	}
	select {
	case client.send <- data:
	default:
		close(client.send)
		delete(h.clients, client)
	}
}

func encode(msgType string, data interface{}) ([]byte, error) {
	return json.Marshal(Message{
		Type:      msgType,
		Timestamp: time.Now(),
		Data:      data,
	})
}

func (h *Hub) enqueue(msg outbound, what string) {
	select {
	case h.broadcast <- msg:
	default:
		log.Printf("Broadcast channel is full, dropping %s message", what)
	}
}

// BroadcastSnapshot pushes the full sensor snapshot to all connected clients.
// Snapshots not newer than the last one broadcast are ignored.
func (h *Hub) BroadcastSnapshot(snap *models.Snapshot) {
	data, err := encode(TypeSensorSnapshot, snap)
	if err != nil {
		log.Printf("Error marshaling sensor snapshot: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.latest != nil && snap.Sequence <= h.latestSeq {
		return
	}
	h.latest = data
	h.latestSeq = snap.Sequence

	// Enqueued under the lock so the broadcast order follows the sequence
	h.enqueue(outbound{data: data}, TypeSensorSnapshot)
}

// BroadcastStatusChange pushes one status-change alert
func (h *Hub) BroadcastStatusChange(change models.StatusChange) {
	data, err := encode(TypeStatusChange, change)
	if err != nil {
		log.Printf("Error marshaling status change: %v", err)
		return
	}
	h.enqueue(outbound{data: data, sensorID: change.SensorID}, TypeStatusChange)
}

// BroadcastError broadcasts error messages to all clients
func (h *Hub) BroadcastError(errorMsg string) {
	data, err := encode(TypeError, map[string]string{"error": errorMsg})
	if err != nil {
		log.Printf("Error marshaling error message: %v", err)
		return
	}
	h.enqueue(outbound{data: data}, TypeError)
}

// OnSnapshot forwards a committed snapshot and its status changes.
// It never blocks the poller.
func (h *Hub) OnSnapshot(snap *models.Snapshot, changes []models.StatusChange) {
	h.BroadcastSnapshot(snap)
	for _, change := range changes {
		h.BroadcastStatusChange(change)
	}
}

// GetConnectedClientsCount returns the number of connected clients
func (h *Hub) GetConnectedClientsCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleWebSocket handles WebSocket connection requests
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	client := &Client{
		hub:      h,
		conn:     conn,
		send:     make(chan []byte, sendBuffer),
		sensorID: r.URL.Query().Get("sensor_id"),
	}

	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}

// readPump drains incoming frames so pongs and close frames are processed
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}
	}
}

// writePump writes one JSON message per frame and keeps the connection alive
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
