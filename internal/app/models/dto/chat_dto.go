package dto

import (
	"time"

	"github.com/emre/collabhub/internal/app/models"
)

// --- Request DTOs ---

// CreateMessageRequest represents data for posting a new channel message
type CreateMessageRequest struct {
	Kind       string `json:"kind" form:"kind" binding:"required,oneof=TEXT FILE"`
	Content    string `json:"content" form:"content" binding:"required_if=Kind TEXT,max=4000"`
	ReplyToID  *int64 `json:"replyToId,omitempty" form:"replyToId"`
	IsQuestion bool   `json:"isQuestion" form:"isQuestion"`
}

// CreateThreadReplyRequest represents data for replying inside a thread
type CreateThreadReplyRequest struct {
	Kind    string `json:"kind" form:"kind" binding:"required,oneof=TEXT FILE"`
	Content string `json:"content" form:"content" binding:"required_if=Kind TEXT,max=4000"`
}

// UpdateMessageRequest represents a message edit
type UpdateMessageRequest struct {
	Content string `json:"content" binding:"required,max=4000"`
}

// ListMessagesRequest represents filter parameters for retrieving channel messages
type ListMessagesRequest struct {
	Before   *time.Time `form:"before"`
	After    *time.Time `form:"after"`
	SenderID *int64     `form:"senderId"`
	Limit    int        `form:"limit,default=50" binding:"min=1,max=100"`
}

// ListQuestionsRequest represents filter parameters for the Q&A view
type ListQuestionsRequest struct {
	UnansweredOnly bool `form:"unansweredOnly"`
}

// ReactionRequest represents adding or removing an emoji reaction
type ReactionRequest struct {
	Emoji string `json:"emoji" binding:"required,max=32"`
}

// AcceptAnswerRequest marks a thread reply as the accepted answer
type AcceptAnswerRequest struct {
	AnswerID int64 `json:"answerId" binding:"required,min=1"`
}

// --- Response DTOs ---

// ReactionSummaryResponse represents reactions on a message grouped by emoji
type ReactionSummaryResponse struct {
	Emoji   string  `json:"emoji"`
	UserIDs []int64 `json:"userIds"`
	Count   int     `json:"count"`
}

// MessageResponse represents a chat message with sender and file details
type MessageResponse struct {
	ID           int64      `json:"id"`
	CommunityID  int64      `json:"communityId"`
	SenderID     int64      `json:"senderId"`
	Kind         string     `json:"kind"`
	Content      string     `json:"content"`
	ThreadRootID *int64     `json:"threadRootId,omitempty"`
	ReplyCount   int        `json:"replyCount"`
	Pinned       bool       `json:"pinned"`
	PinnedAt     *time.Time `json:"pinnedAt,omitempty"`
	IsQuestion   bool       `json:"isQuestion"`
	AnswerID     *int64     `json:"answerId,omitempty"`
	Edited       bool       `json:"edited"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`

	// Sender information
	SenderName      string `json:"senderName,omitempty"`
	SenderAvatarURL string `json:"senderAvatarUrl,omitempty"`

	// Reply-context snippet
	ReplyToID      *int64  `json:"replyToId,omitempty"`
	ReplyToAuthor  *string `json:"replyToAuthor,omitempty"`
	ReplyToExcerpt *string `json:"replyToExcerpt,omitempty"`

	// File information if available
	File *MessageFileResponse `json:"file,omitempty"`

	Reactions []ReactionSummaryResponse `json:"reactions"`
}

// MessageFileResponse represents file details attached to a message
type MessageFileResponse struct {
	ID       int64  `json:"id"`
	FileName string `json:"fileName"`
	FileURL  string `json:"fileUrl"`
	MimeType string `json:"mimeType"`
	FileSize int64  `json:"fileSize"`
}

// MessageListResponse represents an ordered list of messages
type MessageListResponse struct {
	Messages []MessageResponse `json:"messages"`
}

// ThreadResponse represents a thread root with its replies
type ThreadResponse struct {
	Root    MessageResponse   `json:"root"`
	Replies []MessageResponse `json:"replies"`
}

// ToMessageResponse transforms a models.Message to MessageResponse
func ToMessageResponse(message *models.Message) MessageResponse {
	response := MessageResponse{
		ID:             message.ID,
		CommunityID:    message.CommunityID,
		SenderID:       message.SenderID,
		Kind:           string(message.Kind),
		Content:        message.Content,
		ThreadRootID:   message.ThreadRootID,
		ReplyCount:     message.ReplyCount,
		Pinned:         message.Pinned,
		PinnedAt:       message.PinnedAt,
		IsQuestion:     message.IsQuestion,
		AnswerID:       message.AnswerID,
		Edited:         message.Edited,
		CreatedAt:      message.CreatedAt,
		UpdatedAt:      message.UpdatedAt,
		ReplyToID:      message.ReplyToID,
		ReplyToAuthor:  message.ReplyToAuthor,
		ReplyToExcerpt: message.ReplyToExcerpt,
		Reactions:      make([]ReactionSummaryResponse, 0, len(message.Reactions)),
	}

	if message.Sender != nil {
		response.SenderName = message.Sender.DisplayName
		if message.Sender.Avatar != nil {
			response.SenderAvatarURL = message.Sender.Avatar.FileURL
		}
	}

	if message.File != nil {
		response.File = &MessageFileResponse{
			ID:       message.File.ID,
			FileName: message.File.FileName,
			FileURL:  message.File.FileURL,
			MimeType: message.File.MimeType,
			FileSize: message.File.FileSize,
		}
	}

	for _, summary := range message.Reactions {
		response.Reactions = append(response.Reactions, ReactionSummaryResponse{
			Emoji:   summary.Emoji,
			UserIDs: summary.UserIDs,
			Count:   summary.Count,
		})
	}

	return response
}

// ToMessageListResponse transforms a slice of messages to MessageListResponse
func ToMessageListResponse(messages []*models.Message) MessageListResponse {
	response := MessageListResponse{Messages: make([]MessageResponse, 0, len(messages))}
	for _, message := range messages {
		response.Messages = append(response.Messages, ToMessageResponse(message))
	}
	return response
}
