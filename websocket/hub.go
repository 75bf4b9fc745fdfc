package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"
)

// Message is an event pushed to connected providers
type Message struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Hub manages all provider WebSocket connections
type Hub struct {
	// Registered clients by user ID
	Clients map[uint]*Client

	// Broadcast channel for messages to all clients
	Broadcast chan *Message

	// Register requests from clients
	Register chan *Client

	// Unregister requests from clients
	Unregister chan *Client

	mu sync.RWMutex
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		Clients:    make(map[uint]*Client),
		Broadcast:  make(chan *Message, 64),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			h.Clients[client.UserID] = client
			h.mu.Unlock()
			log.Printf("🔌 Provider connected: ID=%d", client.UserID)

		case client := <-h.Unregister:
			h.mu.Lock()
			if _, ok := h.Clients[client.UserID]; ok {
				delete(h.Clients, client.UserID)
				close(client.Send)
			}
			h.mu.Unlock()
			log.Printf("🔌 Provider disconnected: ID=%d", client.UserID)

		case message := <-h.Broadcast:
			payload, err := json.Marshal(message)
			if err != nil {
				log.Printf("❌ Failed to marshal broadcast message: %v", err)
				continue
			}

			h.mu.RLock()
			for _, client := range h.Clients {
				select {
				case client.Send <- payload:
				default:
					// Slow consumer, skip this message for them
					log.Printf("⚠️ Send buffer full for provider %d", client.UserID)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// SendToUser delivers a message to one connected provider. Returns false when
// the provider is not connected or their buffer is full.
func (h *Hub) SendToUser(userID uint, message *Message) bool {
	payload, err := json.Marshal(message)
	if err != nil {
		log.Printf("❌ Failed to marshal message: %v", err)
		return false
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	client, ok := h.Clients[userID]
	if !ok {
		return false
	}

	select {
	case client.Send <- payload:
		return true
	default:
		return false
	}
}
