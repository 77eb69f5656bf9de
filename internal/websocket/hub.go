package websocket

import (
	"encoding/json"
	"sync"

	"github.com/freshveg/basket-agent/internal/app/model"
	"github.com/freshveg/basket-agent/pkg/logger"
)

// Event is the envelope pushed to UI clients.
type Event struct {
	Type    string      `json:"type"` // badge, dispatch_error
	Payload interface{} `json:"payload"`
}

// ErrorPayload carries an asynchronous validation failure so the UI can
// show a retry affordance without rolling back the optimistic state.
type ErrorPayload struct {
	Code        string `json:"code"`
	Message     string `json:"message"`
	VegetableID uint   `json:"vegetable_id"`
}

// Hub fans badge updates out to connected UI clients. A client that
// cannot keep up is dropped rather than allowed to block the engine.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client, 16),
		unregister: make(chan *Client, 16),
		broadcast:  make(chan []byte, 256),
		done:       make(chan struct{}),
	}
}

// Run processes registrations and broadcasts until Stop is called.
// Call in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			logger.Info("UI client connected", map[string]interface{}{
				"total": total,
			})

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			total := len(h.clients)
			h.mu.Unlock()
			logger.Info("UI client disconnected", map[string]interface{}{
				"total": total,
			})

		case message := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Slow consumer; drop it.
					go func(c *Client) { h.unregister <- c }(client)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// BroadcastBadge pushes the aggregate badge view to all UI clients.
func (h *Hub) BroadcastBadge(update model.BadgeUpdate) {
	h.publish(Event{Type: "badge", Payload: update})
}

// BroadcastError pushes an asynchronous validation failure.
func (h *Hub) BroadcastError(code, message string, vegetableID uint) {
	h.publish(Event{Type: "dispatch_error", Payload: ErrorPayload{
		Code:        code,
		Message:     message,
		VegetableID: vegetableID,
	}})
}

// Stop terminates the Run loop and disconnects remaining clients.
func (h *Hub) Stop() {
	close(h.done)
}

func (h *Hub) publish(event Event) {
	encoded, err := json.Marshal(event)
	if err != nil {
		logger.Error("Failed to encode hub event", err, map[string]interface{}{
			"type": event.Type,
		})
		return
	}
	select {
	case h.broadcast <- encoded:
	default:
		logger.Warn("Hub broadcast buffer full, dropping event", map[string]interface{}{
			"type": event.Type,
		})
	}
}
