package models

import "time"

// MessageKind represents the type of chat message
type MessageKind string

const (
	MessageKindText MessageKind = "TEXT"
	MessageKindFile MessageKind = "FILE"
)

// Message represents a message in a community channel. Thread replies are
// messages whose ThreadRootID points at the root message.
type Message struct {
	ID           int64       `json:"id" db:"id"`
	CommunityID  int64       `json:"communityId" db:"community_id"`
	SenderID     int64       `json:"senderId" db:"sender_id"`
	Kind         MessageKind `json:"kind" db:"kind"`
	Content      string      `json:"content" db:"content"`
	FileID       *int64      `json:"fileId,omitempty" db:"file_id"`
	ThreadRootID *int64      `json:"threadRootId,omitempty" db:"thread_root_id"`
	ReplyCount   int         `json:"replyCount" db:"reply_count"`
	Pinned       bool        `json:"pinned" db:"pinned"`
	PinnedBy     *int64      `json:"pinnedBy,omitempty" db:"pinned_by"`
	PinnedAt     *time.Time  `json:"pinnedAt,omitempty" db:"pinned_at"`
	IsQuestion   bool        `json:"isQuestion" db:"is_question"`
	AnswerID     *int64      `json:"answerId,omitempty" db:"answer_id"`
	Edited       bool        `json:"edited" db:"edited"`
	CreatedAt    time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time   `json:"updatedAt" db:"updated_at"`

	// Reply-context snippet, denormalized at write time so the referenced
	// message survives deletion of the original.
	ReplyToID      *int64  `json:"replyToId,omitempty" db:"reply_to_id"`
	ReplyToAuthor  *string `json:"replyToAuthor,omitempty" db:"reply_to_author"`
	ReplyToExcerpt *string `json:"replyToExcerpt,omitempty" db:"reply_to_excerpt"`

	// Related entities
	Sender    *User              `json:"sender,omitempty"`
	File      *File              `json:"file,omitempty"`
	Reactions []*ReactionSummary `json:"reactions,omitempty"`
}

// IsThreadReply reports whether the message lives inside a thread.
func (m *Message) IsThreadReply() bool {
	return m.ThreadRootID != nil
}

// Reaction represents a single user's emoji reaction on a message
type Reaction struct {
	ID        int64     `json:"id" db:"id"`
	MessageID int64     `json:"messageId" db:"message_id"`
	UserID    int64     `json:"userId" db:"user_id"`
	Emoji     string    `json:"emoji" db:"emoji"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// ReactionSummary groups reactions on a message by emoji. Count is always
// derived from the UserIDs list, never stored separately.
type ReactionSummary struct {
	Emoji   string  `json:"emoji"`
	UserIDs []int64 `json:"userIds"`
	Count   int     `json:"count"`
}

// SummarizeReactions folds individual reaction rows into per-emoji summaries,
// preserving first-seen emoji order and reaction order within an emoji.
func SummarizeReactions(reactions []*Reaction) []*ReactionSummary {
	var order []string
	byEmoji := make(map[string]*ReactionSummary)
	for _, r := range reactions {
		s, ok := byEmoji[r.Emoji]
		if !ok {
			s = &ReactionSummary{Emoji: r.Emoji}
			byEmoji[r.Emoji] = s
			order = append(order, r.Emoji)
		}
		s.UserIDs = append(s.UserIDs, r.UserID)
		s.Count = len(s.UserIDs)
	}

	summaries := make([]*ReactionSummary, 0, len(order))
	for _, emoji := range order {
		summaries = append(summaries, byEmoji[emoji])
	}
	return summaries
}
