package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type fakeSnapshots struct {
	payload interface{}
}

func (f *fakeSnapshots) ChannelSnapshot(ctx context.Context, communityID int64, limit int) (interface{}, error) {
	return f.payload, nil
}

func newTestClient(hub *Hub, userID, communityID int64, buffer int) *Client {
	return &Client{
		hub:         hub,
		send:        make(chan []byte, buffer),
		userID:      userID,
		communityID: communityID,
		logger:      zerolog.Nop(),
	}
}

func receiveEvent(t *testing.T, c *Client) *Event {
	t.Helper()
	select {
	case data := <-c.send:
		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			t.Fatalf("failed to decode event: %v", err)
		}
		return &ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func TestBroadcastReachesOnlySubscribedCommunity(t *testing.T) {
	hub := NewHub(zerolog.Nop(), 10)

	first := newTestClient(hub, 1, 100, 8)
	second := newTestClient(hub, 2, 100, 8)
	other := newTestClient(hub, 3, 200, 8)
	hub.registerClient(first)
	hub.registerClient(second)
	hub.registerClient(other)

	hub.broadcastEvent(NewEvent(EventMessageCreated, 100, map[string]string{"content": "hi"}))

	for _, c := range []*Client{first, second} {
		ev := receiveEvent(t, c)
		if ev.Kind != EventMessageCreated {
			t.Errorf("event kind = %s, want %s", ev.Kind, EventMessageCreated)
		}
		if ev.CommunityID != 100 {
			t.Errorf("event community = %d, want 100", ev.CommunityID)
		}
	}

	select {
	case data := <-other.send:
		t.Errorf("client in another community received event: %s", data)
	default:
	}
}

func TestSlowClientIsEvicted(t *testing.T) {
	hub := NewHub(zerolog.Nop(), 10)

	slow := newTestClient(hub, 1, 100, 1)
	hub.registerClient(slow)

	// Fill the send buffer, then broadcast once more to trip eviction
	hub.broadcastEvent(NewEvent(EventMessageCreated, 100, nil))
	hub.broadcastEvent(NewEvent(EventMessageCreated, 100, nil))

	if got := hub.SubscriberCount(100); got != 0 {
		t.Errorf("subscriber count = %d, want 0 after eviction", got)
	}
}

func TestSnapshotDeliveredOnRegister(t *testing.T) {
	hub := NewHub(zerolog.Nop(), 25)
	hub.SetSnapshotProvider(&fakeSnapshots{payload: map[string]string{"state": "initial"}})

	client := newTestClient(hub, 1, 100, 8)
	hub.registerClient(client)

	ev := receiveEvent(t, client)
	if ev.Kind != EventSnapshot {
		t.Errorf("first event kind = %s, want %s", ev.Kind, EventSnapshot)
	}
	if ev.CommunityID != 100 {
		t.Errorf("snapshot community = %d, want 100", ev.CommunityID)
	}
}

func TestRunTearsDownClientsOnCancel(t *testing.T) {
	hub := NewHub(zerolog.Nop(), 10)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()

	client := newTestClient(hub, 1, 100, 8)
	hub.register <- client

	deadline := time.Now().Add(2 * time.Second)
	for hub.SubscriberCount(100) != 1 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("hub did not stop on context cancellation")
	}

	if got := hub.SubscriberCount(100); got != 0 {
		t.Errorf("subscriber count = %d, want 0 after shutdown", got)
	}

	// The send channel is closed during teardown
	if _, ok := <-client.send; ok {
		t.Error("expected client send channel to be closed")
	}
}
