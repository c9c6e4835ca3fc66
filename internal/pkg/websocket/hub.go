package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// SnapshotProvider supplies the ordered message snapshot a client receives
// right after subscribing to a community channel.
type SnapshotProvider interface {
	ChannelSnapshot(ctx context.Context, communityID int64, limit int) (interface{}, error)
}

// Hub maintains the set of active clients per community and pushes events to
// them. It is the push-based subscription primitive behind the chat layer.
type Hub struct {
	// Registered clients organized by community ID
	clients map[int64]map[*Client]bool

	// Channel for events to fan out
	broadcast chan *Event

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	mu sync.RWMutex

	snapshots    SnapshotProvider
	snapshotSize int

	logger zerolog.Logger
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger, snapshotSize int) *Hub {
	return &Hub{
		broadcast:    make(chan *Event, 64),
		register:     make(chan *Client),
		unregister:   make(chan *Client),
		clients:      make(map[int64]map[*Client]bool),
		snapshotSize: snapshotSize,
		logger:       logger,
	}
}

// SetSnapshotProvider wires the source of on-subscribe snapshots. Must be
// called before Run.
func (h *Hub) SetSnapshotProvider(p SnapshotProvider) {
	h.snapshots = p
}

// Run starts the hub loop, handling registrations and broadcasts until the
// context is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case event := <-h.broadcast:
			h.broadcastEvent(event)

		case <-ctx.Done():
			h.closeAll()
			return
		}
	}
}

// registerClient registers a new client and delivers its initial snapshot
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	communityID := client.communityID
	if _, ok := h.clients[communityID]; !ok {
		h.clients[communityID] = make(map[*Client]bool)
	}
	h.clients[communityID][client] = true
	h.mu.Unlock()

	h.logger.Info().
		Int64("communityID", communityID).
		Int64("userID", client.userID).
		Msg("Client subscribed")

	// Snapshots hit the database; keep the hub loop free while they build.
	go h.sendSnapshot(client)
}

// sendSnapshot pushes the ordered recent-message snapshot to a single client
func (h *Hub) sendSnapshot(client *Client) {
	if h.snapshots == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	payload, err := h.snapshots.ChannelSnapshot(ctx, client.communityID, h.snapshotSize)
	if err != nil {
		h.logger.Error().Err(err).
			Int64("communityID", client.communityID).
			Msg("Failed to build channel snapshot")
		return
	}

	event := NewEvent(EventSnapshot, client.communityID, payload)
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to marshal snapshot event")
		return
	}

	select {
	case client.send <- data:
	default:
		h.logger.Warn().
			Int64("userID", client.userID).
			Msg("Dropped snapshot for slow client")
	}
}

// unregisterClient unregisters a client from the hub
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	communityID := client.communityID
	if clients, ok := h.clients[communityID]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client.send)

			if len(clients) == 0 {
				delete(h.clients, communityID)
			}

			h.logger.Info().
				Int64("communityID", communityID).
				Int64("userID", client.userID).
				Msg("Client unsubscribed")
		}
	}
}

// broadcastEvent fans an event out to every client subscribed to its community
func (h *Hub) broadcastEvent(event *Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error().Err(err).
			Int64("communityID", event.CommunityID).
			Str("kind", string(event.Kind)).
			Msg("Failed to marshal event for broadcast")
		return
	}

	h.mu.RLock()
	clients := h.clients[event.CommunityID]
	var slow []*Client
	for client := range clients {
		select {
		case client.send <- data:
		default:
			// Send buffer full; the client is slow or gone. Evict it.
			slow = append(slow, client)
		}
	}
	count := len(clients)
	h.mu.RUnlock()

	for _, client := range slow {
		h.unregisterClient(client)
	}

	h.logger.Debug().
		Int64("communityID", event.CommunityID).
		Str("kind", string(event.Kind)).
		Int("clientCount", count).
		Msg("Event broadcast to community")
}

// closeAll tears down every client connection
func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for communityID, clients := range h.clients {
		for client := range clients {
			close(client.send)
		}
		delete(h.clients, communityID)
	}
}

// Broadcast queues an event for delivery to a community's subscribers
func (h *Hub) Broadcast(event *Event) {
	h.broadcast <- event
}

// SubscriberCount returns the number of connected clients for a community
func (h *Hub) SubscriberCount(communityID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients[communityID])
}
