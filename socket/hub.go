package socket

import (
	"encoding/json"
	"sync"

	"nbcontents/internal/contents/model"
	"nbcontents/pkg/logger"
)

const (
	SavedType    = "SAVED"    // A notebook was written
	WatchingType = "WATCHING" // Sent once after a client joins a room
)

type WSMessage struct {
	Type    string          `json:"type"`
	Path    string          `json:"path"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Hub fans save events out to the clients watching each notebook.
type Hub struct {
	Rooms      map[string]map[*Client]bool
	Broadcast  chan WSMessage
	Register   chan *Client
	Unregister chan *Client
	mu         sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		Rooms:      make(map[string]map[*Client]bool),
		Broadcast:  make(chan WSMessage, 64),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if h.Rooms[client.Path] == nil {
				h.Rooms[client.Path] = make(map[*Client]bool)
			}
			h.Rooms[client.Path][client] = true
			h.mu.Unlock()

			ack, _ := json.Marshal(WSMessage{Type: WatchingType, Path: client.Path})
			client.Send <- ack

		case client := <-h.Unregister:
			h.mu.Lock()
			if _, ok := h.Rooms[client.Path][client]; ok {
				delete(h.Rooms[client.Path], client)
				close(client.Send)
				if len(h.Rooms[client.Path]) == 0 {
					delete(h.Rooms, client.Path)
					logger.Sugar.Debugf("Closed empty room: %s", client.Path)
				}
			}
			h.mu.Unlock()

		case msg := <-h.Broadcast:
			payload, err := json.Marshal(msg)
			if err != nil {
				logger.Sugar.Errorf("Error marshalling broadcast message: %v", err)
				continue
			}

			// Collect recipients so no I/O happens under the lock.
			h.mu.Lock()
			clientsToSend := make([]*Client, 0, len(h.Rooms[msg.Path]))
			for client := range h.Rooms[msg.Path] {
				clientsToSend = append(clientsToSend, client)
			}
			h.mu.Unlock()

			for _, client := range clientsToSend {
				select {
				case client.Send <- payload:
				default:
					logger.Sugar.Warnf("Watcher of %s is lagging, dropping it", client.Path)
					go func(c *Client) { h.Unregister <- c }(client)
				}
			}
		}
	}
}

// Publish queues a save event for path. It never blocks the caller; events
// are dropped when the hub is saturated.
func (h *Hub) Publish(path string, m *model.ContentModel) {
	payload, err := json.Marshal(m)
	if err != nil {
		logger.Sugar.Errorf("Error marshalling saved notebook %s: %v", path, err)
		return
	}
	select {
	case h.Broadcast <- WSMessage{Type: SavedType, Path: path, Payload: payload}:
	default:
		logger.Sugar.Warnf("Hub busy, dropped save event for %s", path)
	}
}

// Watchers reports how many clients watch path.
func (h *Hub) Watchers(path string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.Rooms[path])
}
