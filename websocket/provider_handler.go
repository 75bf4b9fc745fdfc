package websocket

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"covidsafe-services-server/models"
)

// ProviderHandler upgrades provider connections onto the hub
type ProviderHandler struct {
	hub *Hub
}

// NewProviderHandler creates a new provider WebSocket handler
func NewProviderHandler(hub *Hub) *ProviderHandler {
	return &ProviderHandler{hub: hub}
}

// HandleProvider upgrades an authenticated provider to a WebSocket connection
// that receives new-booking notifications
func (h *ProviderHandler) HandleProvider(c *gin.Context) {
	value, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	user, ok := value.(models.User)
	if !ok || !user.IsProvider() {
		c.JSON(http.StatusForbidden, gin.H{
			"error":   "Providers only",
			"message": "Only providers can subscribe to booking notifications",
		})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("❌ WebSocket upgrade failed: %v", err)
		return
	}

	client := &Client{
		Hub:    h.hub,
		UserID: user.ID,
		Conn:   conn,
		Send:   make(chan []byte, 64),
	}

	h.hub.Register <- client

	go client.writePump()
	go client.readPump()
}
