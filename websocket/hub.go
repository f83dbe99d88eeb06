package websocket

import (
	"log"
	"sync"

	"github.com/apoaevents/badge_credits/events"
	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
)

type Client struct {
	UserID uuid.UUID
	Conn   *websocket.Conn
}

var clients = make(map[uuid.UUID]*websocket.Conn)
var clientsMu sync.RWMutex
var Register = make(chan *Client)
var Unregister = make(chan *Client)
var Broadcast = make(chan events.Event)

func init() {
	go RunHub()
}

// WatchBus forwards every outbound credit event to connected admin
// clients so the management page re-renders without polling.
func WatchBus(bus *events.Bus) {
	forward := func(e events.Event) error {
		Broadcast <- e
		return nil
	}
	for _, name := range []string{events.CreditCreated, events.CreditUpdated, events.CreditDeleted, events.CreditAwarded} {
		bus.Subscribe(name, forward)
	}
}

func RunHub() {
	for {
		select {
		case client := <-Register:
			log.Printf("Feed client registered: %s", client.UserID)
			clientsMu.Lock()
			clients[client.UserID] = client.Conn
			clientsMu.Unlock()
		case client := <-Unregister:
			log.Printf("Feed client unregistered: %s", client.UserID)
			clientsMu.Lock()
			if conn, ok := clients[client.UserID]; ok && conn == client.Conn {
				delete(clients, client.UserID)
			}
			clientsMu.Unlock()
		case event := <-Broadcast:
			clientsMu.RLock()
			stale := make([]uuid.UUID, 0)
			for userID, conn := range clients {
				if err := conn.WriteJSON(event); err != nil {
					log.Printf("Error sending event to client %s: %v", userID, err)
					conn.Close()
					stale = append(stale, userID)
				}
			}
			clientsMu.RUnlock()
			if len(stale) > 0 {
				clientsMu.Lock()
				for _, userID := range stale {
					delete(clients, userID)
				}
				clientsMu.Unlock()
			}
		}
	}
}
