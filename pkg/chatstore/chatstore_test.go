package chatstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type fakeTransport struct {
	sent []string
	err  error
}

func (f *fakeTransport) SendMessage(ctx context.Context, communityID int64, content string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, content)
	return nil
}

func newTestStore(t *testing.T, transport Transport, opts Options) *Store {
	t.Helper()
	if opts.Clock == nil {
		base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		opts.Clock = func() time.Time { return base }
	}
	store := New(42, transport, zerolog.Nop(), opts)
	t.Cleanup(store.Close)
	return store
}

func TestSendTextAppendsPending(t *testing.T) {
	transport := &fakeTransport{}
	store := newTestStore(t, transport, Options{})

	tempID, err := store.SendText(context.Background(), 7, "Ada", "hello")
	if err != nil {
		t.Fatalf("SendText returned error: %v", err)
	}
	if tempID == "" {
		t.Fatal("expected a temp ID")
	}
	if len(transport.sent) != 1 || transport.sent[0] != "hello" {
		t.Fatalf("expected transport write of %q, got %v", "hello", transport.sent)
	}

	messages := store.Messages()
	if len(messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(messages))
	}
	if !messages[0].Pending || messages[0].TempID != tempID {
		t.Errorf("expected pending placeholder with temp ID %s, got %+v", tempID, messages[0])
	}
}

func TestSendTextRollsBackOnWriteFailure(t *testing.T) {
	transport := &fakeTransport{err: errors.New("write refused")}
	store := newTestStore(t, transport, Options{})

	if _, err := store.SendText(context.Background(), 7, "Ada", "hello"); err == nil {
		t.Fatal("expected SendText to propagate the write error")
	}
	if got := store.PendingCount(); got != 0 {
		t.Errorf("expected placeholder rollback, %d pending remain", got)
	}
	if len(store.Messages()) != 0 {
		t.Errorf("expected empty store after rollback, got %v", store.Messages())
	}
}

func TestReconcileDropsMatchingPlaceholder(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		confirmed   Message
		wantPending int
		wantTotal   int
	}{
		{
			name:        "match within window",
			confirmed:   Message{ID: 100, SenderID: 7, Content: "hello", CreatedAt: base.Add(3 * time.Second)},
			wantPending: 0,
			wantTotal:   1,
		},
		{
			name:        "outside proximity window keeps both",
			confirmed:   Message{ID: 100, SenderID: 7, Content: "hello", CreatedAt: base.Add(30 * time.Second)},
			wantPending: 1,
			wantTotal:   2,
		},
		{
			name:        "different sender keeps both",
			confirmed:   Message{ID: 100, SenderID: 8, Content: "hello", CreatedAt: base.Add(time.Second)},
			wantPending: 1,
			wantTotal:   2,
		},
		{
			name:        "different content keeps both",
			confirmed:   Message{ID: 100, SenderID: 7, Content: "hi", CreatedAt: base.Add(time.Second)},
			wantPending: 1,
			wantTotal:   2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore(t, &fakeTransport{}, Options{
				Clock: func() time.Time { return base },
			})

			if _, err := store.SendText(context.Background(), 7, "Ada", "hello"); err != nil {
				t.Fatalf("SendText returned error: %v", err)
			}

			store.ApplyCreated(tt.confirmed)

			if got := store.PendingCount(); got != tt.wantPending {
				t.Errorf("pending count = %d, want %d", got, tt.wantPending)
			}
			if got := len(store.Messages()); got != tt.wantTotal {
				t.Errorf("message count = %d, want %d", got, tt.wantTotal)
			}
		})
	}
}

func TestPendingExpiresAfterTTL(t *testing.T) {
	store := newTestStore(t, &fakeTransport{}, Options{
		PendingTTL: 20 * time.Millisecond,
	})

	if _, err := store.SendText(context.Background(), 7, "Ada", "hello"); err != nil {
		t.Fatalf("SendText returned error: %v", err)
	}
	if store.PendingCount() != 1 {
		t.Fatal("expected one pending placeholder")
	}

	deadline := time.Now().Add(2 * time.Second)
	for store.PendingCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("placeholder was not expired within the TTL")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestSnapshotReplacesConfirmedAndKeepsPending(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := newTestStore(t, &fakeTransport{}, Options{
		Clock: func() time.Time { return base },
	})

	store.ApplyCreated(Message{ID: 1, SenderID: 5, Content: "old state", CreatedAt: base.Add(-time.Hour)})

	if _, err := store.SendText(context.Background(), 7, "Ada", "unconfirmed"); err != nil {
		t.Fatalf("SendText returned error: %v", err)
	}
	if _, err := store.SendText(context.Background(), 7, "Ada", "confirmed by snapshot"); err != nil {
		t.Fatalf("SendText returned error: %v", err)
	}

	store.ApplySnapshot([]Message{
		{ID: 2, SenderID: 5, Content: "fresh", CreatedAt: base.Add(-time.Minute)},
		{ID: 3, SenderID: 7, Content: "confirmed by snapshot", CreatedAt: base.Add(time.Second)},
	})

	messages := store.Messages()
	if len(messages) != 3 {
		t.Fatalf("expected 3 messages after snapshot merge, got %d: %v", len(messages), messages)
	}
	for _, m := range messages {
		if m.ID == 1 {
			t.Error("snapshot should have replaced previously confirmed state")
		}
	}
	if store.PendingCount() != 1 {
		t.Errorf("expected 1 surviving placeholder, got %d", store.PendingCount())
	}

	var survivor *Message
	for i := range messages {
		if messages[i].Pending {
			survivor = &messages[i]
		}
	}
	if survivor == nil || survivor.Content != "unconfirmed" {
		t.Errorf("expected the unconfirmed placeholder to survive, got %+v", messages)
	}
}

func TestMessagesOrdering(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := newTestStore(t, &fakeTransport{}, Options{
		Clock: func() time.Time { return base },
	})

	store.ApplyCreated(Message{ID: 2, SenderID: 5, Content: "b", CreatedAt: base})
	store.ApplyCreated(Message{ID: 1, SenderID: 5, Content: "a", CreatedAt: base})
	if _, err := store.SendText(context.Background(), 7, "Ada", "pending at same instant"); err != nil {
		t.Fatalf("SendText returned error: %v", err)
	}

	messages := store.Messages()
	if len(messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(messages))
	}
	if messages[0].ID != 1 || messages[1].ID != 2 {
		t.Errorf("confirmed messages not ordered by ID at equal times: %v", messages)
	}
	if !messages[2].Pending {
		t.Error("pending entry should sort after confirmed ones at equal times")
	}
}

func TestApplyUpdatedAndDeleted(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := newTestStore(t, &fakeTransport{}, Options{})

	store.ApplyCreated(Message{ID: 1, SenderID: 5, Content: "original", CreatedAt: base})
	store.ApplyUpdated(Message{ID: 1, SenderID: 5, Content: "edited", Edited: true, CreatedAt: base})

	messages := store.Messages()
	if len(messages) != 1 || messages[0].Content != "edited" || !messages[0].Edited {
		t.Fatalf("expected edited message, got %v", messages)
	}

	store.ApplyReactions(1, []ReactionSummary{{Emoji: "👍", UserIDs: []int64{9}, Count: 1}})
	messages = store.Messages()
	if len(messages[0].Reactions) != 1 || messages[0].Reactions[0].Count != 1 {
		t.Fatalf("expected reaction summary applied, got %v", messages[0].Reactions)
	}

	store.ApplyDeleted(1)
	if len(store.Messages()) != 0 {
		t.Error("expected store empty after deletion")
	}
}

func TestOnChangeNotification(t *testing.T) {
	var calls int
	store := newTestStore(t, &fakeTransport{}, Options{
		OnChange: func([]Message) { calls++ },
	})

	if _, err := store.SendText(context.Background(), 7, "Ada", "hello"); err != nil {
		t.Fatalf("SendText returned error: %v", err)
	}
	store.ApplyCreated(Message{ID: 1, SenderID: 7, Content: "hello", CreatedAt: time.Now()})

	if calls < 2 {
		t.Errorf("expected OnChange on send and confirm, got %d calls", calls)
	}
}

func TestApplyCreatedDeduplicatesSnapshotOverlap(t *testing.T) {
	store := newTestStore(t, &fakeTransport{}, Options{})
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// The snapshot builds asynchronously on subscribe, so a create event
	// can arrive for a message the snapshot already delivered.
	store.ApplySnapshot([]Message{
		{ID: 1, SenderID: 7, Content: "hello", CreatedAt: base},
	})
	store.ApplyCreated(Message{ID: 1, SenderID: 7, Content: "hello", Edited: true, CreatedAt: base})

	messages := store.Messages()
	if len(messages) != 1 {
		t.Fatalf("expected a single confirmed copy, got %d", len(messages))
	}
	if !messages[0].Edited {
		t.Error("expected the later event to replace the snapshot copy")
	}
}
