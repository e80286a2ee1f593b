package ws

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/tailor-pos/api/internal/enum"
	"github.com/tailor-pos/api/internal/notify"
	"go.uber.org/zap"
)

// Event represents a WebSocket message to be broadcast
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// brandEvent routes an event to one brand's room
type brandEvent struct {
	Brand string
	Event Event
}

// Hub maintains the set of active POS screens per brand and broadcasts
// order notifications to them.
type Hub struct {
	// Registered clients by brand
	rooms map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan *brandEvent
	// closed once Run has returned
	done chan struct{}

	mu  sync.RWMutex
	log *zap.Logger
}

// NewHub creates a new Hub instance
func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *brandEvent, 256),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run is the hub's main loop. It returns when ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			if h.rooms[client.brand] == nil {
				h.rooms[client.brand] = make(map[*Client]bool)
			}
			h.rooms[client.brand][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			h.removeLocked(client)
			h.mu.Unlock()

		case event := <-h.broadcast:
			message, err := json.Marshal(event.Event)
			if err != nil {
				h.log.Error("ws: encode event", zap.String("type", event.Event.Type), zap.Error(err))
				continue
			}

			h.mu.Lock()
			for client := range h.rooms[event.Brand] {
				select {
				case client.send <- message:
				default:
					// slow client
					h.removeLocked(client)
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) removeLocked(client *Client) {
	clients, ok := h.rooms[client.brand]
	if !ok {
		return
	}
	if _, exists := clients[client]; !exists {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.rooms, client.brand)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, clients := range h.rooms {
		for client := range clients {
			h.removeLocked(client)
		}
	}
}

// BroadcastToBrand sends an event to every screen of brand. Once the hub has
// stopped the event is dropped.
func (h *Hub) BroadcastToBrand(brand string, event Event) {
	select {
	case h.broadcast <- &brandEvent{Brand: brand, Event: event}:
	case <-h.done:
		h.log.Debug("ws: hub stopped, event dropped", zap.String("brand", brand), zap.String("type", event.Type))
	}
}

// InvoiceReady pushes the invoice number to the brand's screens.
func (h *Hub) InvoiceReady(ctx context.Context, ev notify.InvoiceEvent) {
	payload, err := json.Marshal(ev)
	if err != nil {
		h.log.Error("ws: encode invoice event", zap.Error(err))
		return
	}
	h.BroadcastToBrand(ev.Brand, Event{Type: enum.EventInvoiceReady, Payload: payload})
}

// StageChange is the payload of an order.stage_changed event.
type StageChange struct {
	OrderID uuid.UUID `json:"order_id"`
	From    string    `json:"from"`
	To      string    `json:"to"`
}

// OrderStageChanged pushes a production stage move to the brand's screens.
func (h *Hub) OrderStageChanged(brand string, change StageChange) {
	payload, err := json.Marshal(change)
	if err != nil {
		h.log.Error("ws: encode stage event", zap.Error(err))
		return
	}
	h.BroadcastToBrand(brand, Event{Type: enum.EventOrderStage, Payload: payload})
}
