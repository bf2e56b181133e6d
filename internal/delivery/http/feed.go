package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/azizikri/yeoubi-storefront/internal/domain"
	"github.com/gorilla/websocket"
)

const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// feedBuffer is how many events a dashboard may fall behind before the hub
// drops it.
const feedBuffer = 16

type feedClient struct {
	conn *websocket.Conn
	send chan []byte
}

// writeLoop delivers queued events until the hub closes send or a write
// fails. Closing the connection ends the read loop in ServeHTTP.
func (c *feedClient) writeLoop() {
	defer c.conn.Close()
	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
}

// FeedHub fans newly placed bookings out to connected admin dashboards.
// Broadcast only queues; each client has its own writer, so one slow
// dashboard cannot stall the others or the caller.
type FeedHub struct {
	mu      sync.Mutex
	clients map[*feedClient]struct{}
}

func NewFeedHub() *FeedHub {
	return &FeedHub{clients: make(map[*feedClient]struct{})}
}

func (h *FeedHub) Broadcast(event domain.BookingPlacedEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to encode booking feed event: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		select {
		case client.send <- data:
		default:
			log.Printf("Dropping booking feed client that fell behind")
			h.removeLocked(client)
		}
	}
}

func (h *FeedHub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *FeedHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Feed upgrade failed: %v", err)
		return
	}

	client := &feedClient{conn: conn, send: make(chan []byte, feedBuffer)}
	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.mu.Unlock()

	go client.writeLoop()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.mu.Lock()
	h.removeLocked(client)
	h.mu.Unlock()
	conn.Close()
}

// removeLocked unregisters client and closes its queue exactly once.
func (h *FeedHub) removeLocked(client *feedClient) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.send)
}

// discardReads drains client frames so control messages are processed, and
// calls done once the connection fails.
func discardReads(conn *websocket.Conn, done context.CancelFunc) {
	defer done()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
