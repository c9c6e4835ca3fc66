// Package chatstore maintains a client-side view of a community channel.
// Messages sent through the store appear immediately as pending
// placeholders and are reconciled against the authoritative copies the
// server later delivers over the realtime subscription.
package chatstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Transport issues message writes against the server.
type Transport interface {
	SendMessage(ctx context.Context, communityID int64, content string) error
}

// ReactionSummary mirrors the server's per-emoji reaction aggregate.
type ReactionSummary struct {
	Emoji   string  `json:"emoji"`
	UserIDs []int64 `json:"userIds"`
	Count   int     `json:"count"`
}

// Message is a chat message as the store tracks it. Confirmed messages
// carry the server ID; pending placeholders carry only a temp ID.
type Message struct {
	ID         int64             `json:"id"`
	TempID     string            `json:"tempId,omitempty"`
	SenderID   int64             `json:"senderId"`
	SenderName string            `json:"senderName,omitempty"`
	Content    string            `json:"content"`
	Pinned     bool              `json:"pinned"`
	Edited     bool              `json:"edited"`
	Reactions  []ReactionSummary `json:"reactions,omitempty"`
	CreatedAt  time.Time         `json:"createdAt"`
	Pending    bool              `json:"pending,omitempty"`
}

const (
	defaultProximityWindow = 10 * time.Second
	defaultPendingTTL      = 15 * time.Second
)

// Options tunes store behavior. The zero value picks the defaults.
type Options struct {
	// ProximityWindow bounds the timestamp distance within which a
	// confirmed message is matched against a pending placeholder.
	ProximityWindow time.Duration
	// PendingTTL removes a placeholder that was never confirmed.
	PendingTTL time.Duration
	// Clock overrides the time source.
	Clock func() time.Time
	// OnChange is invoked with the merged message list after every
	// state change. Called without the store lock held.
	OnChange func(messages []Message)
}

// Store holds the merged channel state for one community.
type Store struct {
	communityID int64
	transport   Transport
	opts        Options
	logger      zerolog.Logger

	mu        sync.Mutex
	confirmed []Message
	pending   []Message
	timers    map[string]*time.Timer
}

// New creates a store for one community channel.
func New(communityID int64, transport Transport, logger zerolog.Logger, opts Options) *Store {
	if opts.ProximityWindow <= 0 {
		opts.ProximityWindow = defaultProximityWindow
	}
	if opts.PendingTTL <= 0 {
		opts.PendingTTL = defaultPendingTTL
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	return &Store{
		communityID: communityID,
		transport:   transport,
		opts:        opts,
		logger:      logger,
		timers:      make(map[string]*time.Timer),
	}
}

// SendText appends a pending placeholder for the given content and issues
// the remote write. The placeholder is rolled back immediately when the
// write fails, or after the pending TTL when no confirmation arrives.
// Returns the placeholder's temp ID.
func (s *Store) SendText(ctx context.Context, senderID int64, senderName, content string) (string, error) {
	tempID := uuid.NewString()
	placeholder := Message{
		TempID:     tempID,
		SenderID:   senderID,
		SenderName: senderName,
		Content:    content,
		CreatedAt:  s.opts.Clock(),
		Pending:    true,
	}

	s.mu.Lock()
	s.pending = append(s.pending, placeholder)
	s.timers[tempID] = time.AfterFunc(s.opts.PendingTTL, func() {
		s.expirePending(tempID)
	})
	s.mu.Unlock()
	s.notify()

	if err := s.transport.SendMessage(ctx, s.communityID, content); err != nil {
		s.logger.Warn().Err(err).Str("tempId", tempID).Msg("Message write failed, rolling back placeholder")
		s.dropPending(tempID)
		s.notify()
		return "", err
	}

	return tempID, nil
}

// expirePending removes a placeholder whose confirmation never arrived.
func (s *Store) expirePending(tempID string) {
	s.mu.Lock()
	removed := false
	for i, p := range s.pending {
		if p.TempID == tempID {
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			delete(s.timers, tempID)
			removed = true
			break
		}
	}
	s.mu.Unlock()

	if removed {
		s.logger.Debug().Str("tempId", tempID).Msg("Pending message expired without confirmation")
		s.notify()
	}
}

// dropPending removes a placeholder and stops its expiry timer.
// Returns whether a placeholder was removed.
func (s *Store) dropPending(tempID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropPendingLocked(tempID)
}

func (s *Store) dropPendingLocked(tempID string) bool {
	for i, p := range s.pending {
		if p.TempID == tempID {
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			if t, ok := s.timers[tempID]; ok {
				t.Stop()
				delete(s.timers, tempID)
			}
			return true
		}
	}
	return false
}

// reconcileLocked drops the first pending placeholder matching the
// confirmed message on (sender, content) with timestamps within the
// proximity window. An unmatched confirmation keeps both copies; a brief
// duplicate is tolerated over losing a message.
func (s *Store) reconcileLocked(confirmed Message) {
	for _, p := range s.pending {
		if p.SenderID != confirmed.SenderID || p.Content != confirmed.Content {
			continue
		}
		delta := p.CreatedAt.Sub(confirmed.CreatedAt)
		if delta < 0 {
			delta = -delta
		}
		if delta <= s.opts.ProximityWindow {
			s.dropPendingLocked(p.TempID)
			return
		}
	}
}

// ApplyCreated merges a server-confirmed message, dropping the matching
// pending placeholder if one exists. A message already confirmed by ID
// is replaced in place; the snapshot builds asynchronously on subscribe,
// so a create can race a snapshot that already contains it.
func (s *Store) ApplyCreated(m Message) {
	m.Pending = false

	s.mu.Lock()
	s.reconcileLocked(m)
	replaced := false
	for i := range s.confirmed {
		if s.confirmed[i].ID == m.ID {
			s.confirmed[i] = m
			replaced = true
			break
		}
	}
	if !replaced {
		s.confirmed = append(s.confirmed, m)
	}
	sortConfirmed(s.confirmed)
	s.mu.Unlock()
	s.notify()
}

// ApplyUpdated replaces the confirmed message with the same ID. Unknown
// IDs are merged as new messages; an update can arrive before the create
// when the subscription reconnects.
func (s *Store) ApplyUpdated(m Message) {
	m.Pending = false

	s.mu.Lock()
	replaced := false
	for i, c := range s.confirmed {
		if c.ID == m.ID {
			s.confirmed[i] = m
			replaced = true
			break
		}
	}
	if !replaced {
		s.reconcileLocked(m)
		s.confirmed = append(s.confirmed, m)
	}
	sortConfirmed(s.confirmed)
	s.mu.Unlock()
	s.notify()
}

// ApplyDeleted removes the confirmed message with the given ID.
func (s *Store) ApplyDeleted(id int64) {
	s.mu.Lock()
	for i, c := range s.confirmed {
		if c.ID == id {
			s.confirmed = append(s.confirmed[:i], s.confirmed[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
	s.notify()
}

// ApplyReactions replaces the reaction summaries of a confirmed message.
func (s *Store) ApplyReactions(messageID int64, reactions []ReactionSummary) {
	s.mu.Lock()
	for i, c := range s.confirmed {
		if c.ID == messageID {
			s.confirmed[i].Reactions = reactions
			break
		}
	}
	s.mu.Unlock()
	s.notify()
}

// ApplySnapshot replaces all confirmed state with the server's snapshot.
// Pending placeholders survive unless the snapshot already confirms them.
func (s *Store) ApplySnapshot(messages []Message) {
	s.mu.Lock()
	s.confirmed = make([]Message, 0, len(messages))
	for _, m := range messages {
		m.Pending = false
		s.confirmed = append(s.confirmed, m)
	}
	sortConfirmed(s.confirmed)

	for _, m := range s.confirmed {
		s.reconcileLocked(m)
	}
	s.mu.Unlock()
	s.notify()
}

// Messages returns the merged channel view: confirmed messages and still
// pending placeholders ordered by creation time, with pending entries
// after confirmed ones at equal times.
func (s *Store) Messages() []Message {
	s.mu.Lock()
	merged := make([]Message, 0, len(s.confirmed)+len(s.pending))
	merged = append(merged, s.confirmed...)
	merged = append(merged, s.pending...)
	s.mu.Unlock()

	sort.SliceStable(merged, func(i, j int) bool {
		a, b := merged[i], merged[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		if a.Pending != b.Pending {
			return !a.Pending
		}
		if !a.Pending {
			return a.ID < b.ID
		}
		return a.TempID < b.TempID
	})

	return merged
}

// PendingCount reports how many placeholders await confirmation.
func (s *Store) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Close stops all outstanding expiry timers.
func (s *Store) Close() {
	s.mu.Lock()
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
	s.mu.Unlock()
}

func (s *Store) notify() {
	if s.opts.OnChange != nil {
		s.opts.OnChange(s.Messages())
	}
}

func sortConfirmed(messages []Message) {
	sort.SliceStable(messages, func(i, j int) bool {
		if !messages[i].CreatedAt.Equal(messages[j].CreatedAt) {
			return messages[i].CreatedAt.Before(messages[j].CreatedAt)
		}
		return messages[i].ID < messages[j].ID
	})
}
