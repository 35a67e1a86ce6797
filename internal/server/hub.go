// Package server coordinates client registration, directed emits, room
// broadcasts, and connection cleanup via the Hub type.
package server

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/wavechat/wavechat/internal/store"
)

// Hub manages all websocket client connections. It owns the client map keyed
// by connection id and carries the registries and message store that event
// handlers operate on. Thread safety comes from a single RWMutex around the
// client map; the registries guard themselves.
type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
	done       chan struct{}

	sessions *SessionRegistry
	rooms    *RoomRegistry
	store    *store.Store

	// roomSeq serializes append-then-broadcast for room chat so delivery
	// order matches store order within a room.
	roomSeq sync.Mutex
}

// NewHub creates a Hub around the given registries and store. The Hub is
// ready once Run is started in its own goroutine.
func NewHub(sessions *SessionRegistry, rooms *RoomRegistry, st *store.Store) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
		sessions:   sessions,
		rooms:      rooms,
		store:      st,
	}
}

// GetRegisterChan returns the channel used for registering new clients.
func (h *Hub) GetRegisterChan() chan<- *Client {
	return h.register
}

// GetUnregisterChan returns the channel used for unregistering clients.
func (h *Hub) GetUnregisterChan() chan<- *Client {
	return h.unregister
}

// Run starts the hub's main event loop, handling client registration and
// unregistration. It runs until Shutdown and should be called in its own
// goroutine.
func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.ctx.Done():
			h.shutdownClients()
			return

		case client := <-h.register:
			if client == nil {
				log.Printf("Received nil client registration; skipping")
				continue
			}

			h.mutex.Lock()
			client.closed = false
			h.clients[client.id] = client
			clientCount := len(h.clients)
			h.mutex.Unlock()
			log.Printf("Client %s connected from %s. Total clients: %d", client.id, client.addr, clientCount)

			// Queue the id assignment before the pumps start so it is the
			// first event the client sees; peers need the id to address
			// private messages and calls.
			h.emit(client, EventAssignID, client.id)

			h.wg.Add(2)
			go func() {
				defer h.wg.Done()
				client.writePump()
			}()
			go func() {
				defer h.wg.Done()
				client.readPump()
			}()

		case client := <-h.unregister:
			h.handleDisconnect(client)

			h.mutex.Lock()
			if _, ok := h.clients[client.id]; ok {
				delete(h.clients, client.id)
				client.closed = true
				clientCount := len(h.clients)
				h.mutex.Unlock()
				// Close the channel after releasing the lock.
				close(client.send)
				log.Printf("Client %s disconnected from %s. Total clients: %d", client.id, client.addr, clientCount)
			} else {
				h.mutex.Unlock()
			}
		}
	}
}

func (h *Hub) safeSend(client *Client, message []byte) bool {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic in safeSend: %v", r)
		}
	}()

	h.mutex.RLock()
	defer h.mutex.RUnlock()

	_, exists := h.clients[client.id]
	if !exists || client.closed {
		return false
	}

	select {
	case client.send <- message:
		return true
	default:
		return false
	}
}

// emit encodes an event and queues it on one client's send channel.
func (h *Hub) emit(client *Client, event string, data any) bool {
	payload, err := encodeEvent(event, data)
	if err != nil {
		log.Printf("Error encoding %s event for %s: %v", event, client.id, err)
		return false
	}
	return h.safeSend(client, payload)
}

// emitTo addresses an event to a connection id. Unknown ids are a no-op;
// directed relays are best-effort by design.
func (h *Hub) emitTo(connID, event string, data any) bool {
	h.mutex.RLock()
	client, ok := h.clients[connID]
	h.mutex.RUnlock()
	if !ok {
		return false
	}
	return h.emit(client, event, data)
}

// broadcastToRoom sends an event to every current member of a room, except
// the excluded connection id when one is given.
func (h *Hub) broadcastToRoom(room, event string, data any, excludeID string) {
	payload, err := encodeEvent(event, data)
	if err != nil {
		log.Printf("Error encoding %s broadcast for room %q: %v", event, room, err)
		return
	}

	for _, id := range h.rooms.Members(room) {
		if id == excludeID {
			continue
		}
		h.mutex.RLock()
		client, ok := h.clients[id]
		h.mutex.RUnlock()
		if !ok {
			continue
		}
		h.safeSend(client, payload)
	}
}

// shutdownClients gracefully closes all active client connections.
func (h *Hub) shutdownClients() {
	log.Println("Shutting down all client connections...")

	h.mutex.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for _, client := range h.clients {
		clients = append(clients, client)
	}
	h.mutex.Unlock()

	for _, client := range clients {
		if client.conn != nil {
			if err := client.conn.Close(); err != nil {
				if !isExpectedCloseError(err) {
					log.Printf("Error closing client connection from %s: %v", client.addr, err)
				}
			}
		}
	}

	log.Printf("Closed %d client connections", len(clients))
}

// Shutdown initiates graceful shutdown of the hub and waits for all client
// goroutines to complete, or until the timeout is reached.
func (h *Hub) Shutdown(timeout time.Duration) error {
	log.Println("Initiating hub shutdown...")

	h.cancel()

	<-h.done

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Println("Hub shutdown completed successfully")
		return nil
	case <-time.After(timeout):
		log.Println("Hub shutdown timeout reached, some goroutines may still be running")
		return context.DeadlineExceeded
	}
}
