package services

import (
	"context"
	"mime/multipart"

	"github.com/rs/zerolog"

	"github.com/emre/collabhub/internal/app/auth"
	"github.com/emre/collabhub/internal/app/models"
	"github.com/emre/collabhub/internal/app/models/dto"
	"github.com/emre/collabhub/internal/app/repositories"
	"github.com/emre/collabhub/internal/pkg/apperrors"
	"github.com/emre/collabhub/internal/pkg/filestorage"
	"github.com/emre/collabhub/internal/pkg/websocket"
)

// replyExcerptLen bounds the denormalized reply-to snippet
const replyExcerptLen = 120

// ChatService defines the interface for channel messages, threads, reactions,
// pinning and Q&A.
type ChatService interface {
	PostMessage(ctx context.Context, communityID, userID int64, req *dto.CreateMessageRequest, fileHeader *multipart.FileHeader) (*dto.MessageResponse, error)
	PostThreadReply(ctx context.Context, rootID, userID int64, req *dto.CreateThreadReplyRequest, fileHeader *multipart.FileHeader) (*dto.MessageResponse, error)
	ListMessages(ctx context.Context, communityID, userID int64, req *dto.ListMessagesRequest) (*dto.MessageListResponse, error)
	GetMessage(ctx context.Context, messageID, userID int64) (*dto.MessageResponse, error)
	GetThread(ctx context.Context, rootID, userID int64) (*dto.ThreadResponse, error)
	ListPinned(ctx context.Context, communityID, userID int64) (*dto.MessageListResponse, error)
	ListQuestions(ctx context.Context, communityID, userID int64, unansweredOnly bool) (*dto.MessageListResponse, error)
	EditMessage(ctx context.Context, messageID, userID int64, req *dto.UpdateMessageRequest) (*dto.MessageResponse, error)
	DeleteMessage(ctx context.Context, messageID, userID int64) error
	SetPinned(ctx context.Context, messageID, userID int64, pinned bool) error
	ToggleReaction(ctx context.Context, messageID, userID int64, emoji string) (added bool, err error)
	RemoveReaction(ctx context.Context, messageID, userID int64, emoji string) error
	MarkQuestion(ctx context.Context, messageID, userID int64) (*dto.MessageResponse, error)
	AcceptAnswer(ctx context.Context, questionID, answerID, userID int64) error

	// ChannelSnapshot implements websocket.SnapshotProvider
	ChannelSnapshot(ctx context.Context, communityID int64, limit int) (interface{}, error)
}

// messageStore is the message persistence surface the chat service uses.
type messageStore interface {
	Create(ctx context.Context, message *models.Message) (int64, error)
	CreateThreadReply(ctx context.Context, message *models.Message) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Message, error)
	ListChannel(ctx context.Context, communityID int64, filter repositories.ChannelFilter) ([]*models.Message, error)
	ListThread(ctx context.Context, rootID int64) ([]*models.Message, error)
	ListPinned(ctx context.Context, communityID int64) ([]*models.Message, error)
	ListQuestions(ctx context.Context, communityID int64, unansweredOnly bool) ([]*models.Message, error)
	UpdateContent(ctx context.Context, id int64, content string) error
	SetPinned(ctx context.Context, id int64, pinned bool, pinnedBy *int64) error
	MarkQuestion(ctx context.Context, id int64) error
	SetAnswer(ctx context.Context, questionID, answerID int64) error
	Delete(ctx context.Context, id int64) error
}

type reactionStore interface {
	Add(ctx context.Context, reaction *models.Reaction) error
	Remove(ctx context.Context, messageID, userID int64, emoji string) (bool, error)
	Exists(ctx context.Context, messageID, userID int64, emoji string) (bool, error)
	ListByMessage(ctx context.Context, messageID int64) ([]*models.Reaction, error)
	ListByMessages(ctx context.Context, messageIDs []int64) (map[int64][]*models.Reaction, error)
}

type membershipChecker interface {
	IsActiveMember(ctx context.Context, communityID, userID int64) (bool, error)
}

// chatServiceImpl implements ChatService
type chatServiceImpl struct {
	messageRepo    messageStore
	reactionRepo   reactionStore
	membershipRepo membershipChecker
	fileRepo       *repositories.FileRepository
	fileStorage    *filestorage.LocalStorage
	authzService   *auth.AuthorizationService
	hub            *websocket.Hub
	logger         zerolog.Logger
}

// NewChatService creates a new ChatService
func NewChatService(
	messageRepo *repositories.MessageRepository,
	reactionRepo *repositories.ReactionRepository,
	membershipRepo *repositories.MembershipRepository,
	fileRepo *repositories.FileRepository,
	fileStorage *filestorage.LocalStorage,
	authzService *auth.AuthorizationService,
	hub *websocket.Hub,
	logger zerolog.Logger,
) ChatService {
	return &chatServiceImpl{
		messageRepo:    messageRepo,
		reactionRepo:   reactionRepo,
		membershipRepo: membershipRepo,
		fileRepo:       fileRepo,
		fileStorage:    fileStorage,
		authzService:   authzService,
		hub:            hub,
		logger:         logger,
	}
}

func (s *chatServiceImpl) requireMember(ctx context.Context, communityID, userID int64) error {
	member, err := s.membershipRepo.IsActiveMember(ctx, communityID, userID)
	if err != nil {
		return err
	}
	if !member {
		return apperrors.ErrNotAMember
	}
	return nil
}

// excerpt returns a short prefix of content for the reply snippet
func excerpt(content string) string {
	runes := []rune(content)
	if len(runes) <= replyExcerptLen {
		return content
	}
	return string(runes[:replyExcerptLen])
}

// PostMessage posts a new top-level message to the community channel
func (s *chatServiceImpl) PostMessage(ctx context.Context, communityID, userID int64, req *dto.CreateMessageRequest, fileHeader *multipart.FileHeader) (*dto.MessageResponse, error) {
	if err := s.requireMember(ctx, communityID, userID); err != nil {
		return nil, err
	}

	message := &models.Message{
		CommunityID: communityID,
		SenderID:    userID,
		Kind:        models.MessageKind(req.Kind),
		Content:     req.Content,
		IsQuestion:  req.IsQuestion,
	}

	// Denormalize the reply context at write time so the snippet survives
	// deletion of the referenced message.
	if req.ReplyToID != nil {
		target, err := s.messageRepo.GetByID(ctx, *req.ReplyToID)
		if err != nil {
			return nil, err
		}
		if target.CommunityID != communityID {
			return nil, apperrors.NewBadRequestError("replied-to message belongs to another community")
		}
		message.ReplyToID = &target.ID
		if target.Sender != nil {
			author := target.Sender.DisplayName
			message.ReplyToAuthor = &author
		}
		snippet := excerpt(target.Content)
		message.ReplyToExcerpt = &snippet
	}

	if err := s.attachFile(ctx, message, fileHeader, userID); err != nil {
		return nil, err
	}

	if _, err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}

	return s.finishWrite(ctx, message.ID, websocket.EventMessageCreated)
}

// PostThreadReply posts a reply inside an existing message's thread
func (s *chatServiceImpl) PostThreadReply(ctx context.Context, rootID, userID int64, req *dto.CreateThreadReplyRequest, fileHeader *multipart.FileHeader) (*dto.MessageResponse, error) {
	root, err := s.messageRepo.GetByID(ctx, rootID)
	if err != nil {
		return nil, err
	}
	// Threads are one level deep, a reply cannot root its own thread
	if root.IsThreadReply() {
		return nil, apperrors.ErrThreadingNested
	}

	if err := s.requireMember(ctx, root.CommunityID, userID); err != nil {
		return nil, err
	}

	message := &models.Message{
		CommunityID:  root.CommunityID,
		SenderID:     userID,
		Kind:         models.MessageKind(req.Kind),
		Content:      req.Content,
		ThreadRootID: &rootID,
	}

	if err := s.attachFile(ctx, message, fileHeader, userID); err != nil {
		return nil, err
	}

	if _, err := s.messageRepo.CreateThreadReply(ctx, message); err != nil {
		return nil, err
	}

	// The root's reply count changed, let subscribers refresh it
	if updatedRoot, err := s.loadMessage(ctx, rootID); err == nil {
		s.hub.Broadcast(websocket.NewEvent(websocket.EventMessageUpdated, root.CommunityID, updatedRoot))
	}

	return s.finishWrite(ctx, message.ID, websocket.EventMessageCreated)
}

// attachFile saves an uploaded file and links it to the message
func (s *chatServiceImpl) attachFile(ctx context.Context, message *models.Message, fileHeader *multipart.FileHeader, userID int64) error {
	if message.Kind != models.MessageKindFile {
		return nil
	}
	if fileHeader == nil {
		return apperrors.NewBadRequestError("file messages require an uploaded file")
	}

	fileURL, err := s.fileStorage.SaveFileWithPath(fileHeader, "chat")
	if err != nil {
		s.logger.Error().Err(err).Int64("communityID", message.CommunityID).Msg("Failed to save chat file")
		return err
	}

	fileID, err := s.fileRepo.Create(ctx, &models.File{
		FileName:   fileHeader.Filename,
		FilePath:   s.fileStorage.RelativePath(fileURL),
		FileURL:    fileURL,
		FileSize:   fileHeader.Size,
		MimeType:   fileHeader.Header.Get("Content-Type"),
		Scope:      models.FileScopeChatMessage,
		ScopeID:    message.CommunityID,
		UploadedBy: userID,
	})
	if err != nil {
		return err
	}

	message.FileID = &fileID
	return nil
}

// loadMessage fetches a message with sender, file and reaction details
func (s *chatServiceImpl) loadMessage(ctx context.Context, id int64) (*dto.MessageResponse, error) {
	message, err := s.messageRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	reactions, err := s.reactionRepo.ListByMessage(ctx, id)
	if err != nil {
		return nil, err
	}
	message.Reactions = models.SummarizeReactions(reactions)

	response := dto.ToMessageResponse(message)
	return &response, nil
}

// GetMessage retrieves one message with sender, file and reaction details
func (s *chatServiceImpl) GetMessage(ctx context.Context, messageID, userID int64) (*dto.MessageResponse, error) {
	message, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if err := s.requireMember(ctx, message.CommunityID, userID); err != nil {
		return nil, err
	}
	return s.loadMessage(ctx, messageID)
}

// finishWrite loads the stored message and broadcasts it to subscribers
func (s *chatServiceImpl) finishWrite(ctx context.Context, messageID int64, kind websocket.EventKind) (*dto.MessageResponse, error) {
	response, err := s.loadMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	s.hub.Broadcast(websocket.NewEvent(kind, response.CommunityID, response))
	return response, nil
}

// attachReactions loads reaction summaries for a batch of messages
func (s *chatServiceImpl) attachReactions(ctx context.Context, messages []*models.Message) error {
	if len(messages) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(messages))
	for _, m := range messages {
		ids = append(ids, m.ID)
	}

	byMessage, err := s.reactionRepo.ListByMessages(ctx, ids)
	if err != nil {
		return err
	}
	for _, m := range messages {
		m.Reactions = models.SummarizeReactions(byMessage[m.ID])
	}
	return nil
}

// ListMessages retrieves the community channel, newest first
func (s *chatServiceImpl) ListMessages(ctx context.Context, communityID, userID int64, req *dto.ListMessagesRequest) (*dto.MessageListResponse, error) {
	if err := s.requireMember(ctx, communityID, userID); err != nil {
		return nil, err
	}

	messages, err := s.messageRepo.ListChannel(ctx, communityID, repositories.ChannelFilter{
		Before:   req.Before,
		After:    req.After,
		SenderID: req.SenderID,
		Limit:    req.Limit,
	})
	if err != nil {
		return nil, err
	}

	if err := s.attachReactions(ctx, messages); err != nil {
		return nil, err
	}

	response := dto.ToMessageListResponse(messages)
	return &response, nil
}

// GetThread retrieves a thread root together with all of its replies
func (s *chatServiceImpl) GetThread(ctx context.Context, rootID, userID int64) (*dto.ThreadResponse, error) {
	root, err := s.messageRepo.GetByID(ctx, rootID)
	if err != nil {
		return nil, err
	}
	if root.IsThreadReply() {
		return nil, apperrors.ErrMessageNotFound
	}

	if err := s.requireMember(ctx, root.CommunityID, userID); err != nil {
		return nil, err
	}

	replies, err := s.messageRepo.ListThread(ctx, rootID)
	if err != nil {
		return nil, err
	}

	all := append([]*models.Message{root}, replies...)
	if err := s.attachReactions(ctx, all); err != nil {
		return nil, err
	}

	response := &dto.ThreadResponse{
		Root:    dto.ToMessageResponse(root),
		Replies: make([]dto.MessageResponse, 0, len(replies)),
	}
	for _, reply := range replies {
		response.Replies = append(response.Replies, dto.ToMessageResponse(reply))
	}
	return response, nil
}

// ListPinned retrieves the community's pinned messages
func (s *chatServiceImpl) ListPinned(ctx context.Context, communityID, userID int64) (*dto.MessageListResponse, error) {
	if err := s.requireMember(ctx, communityID, userID); err != nil {
		return nil, err
	}

	messages, err := s.messageRepo.ListPinned(ctx, communityID)
	if err != nil {
		return nil, err
	}
	if err := s.attachReactions(ctx, messages); err != nil {
		return nil, err
	}

	response := dto.ToMessageListResponse(messages)
	return &response, nil
}

// ListQuestions retrieves the community's Q&A view
func (s *chatServiceImpl) ListQuestions(ctx context.Context, communityID, userID int64, unansweredOnly bool) (*dto.MessageListResponse, error) {
	if err := s.requireMember(ctx, communityID, userID); err != nil {
		return nil, err
	}

	messages, err := s.messageRepo.ListQuestions(ctx, communityID, unansweredOnly)
	if err != nil {
		return nil, err
	}
	if err := s.attachReactions(ctx, messages); err != nil {
		return nil, err
	}

	response := dto.ToMessageListResponse(messages)
	return &response, nil
}

// EditMessage updates a message's content, sender only
func (s *chatServiceImpl) EditMessage(ctx context.Context, messageID, userID int64, req *dto.UpdateMessageRequest) (*dto.MessageResponse, error) {
	message, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}

	if !s.authzService.CanEditMessage(message, userID) {
		return nil, apperrors.NewForbiddenError("only the sender can edit a message")
	}

	if err := s.messageRepo.UpdateContent(ctx, messageID, req.Content); err != nil {
		return nil, err
	}

	return s.finishWrite(ctx, messageID, websocket.EventMessageUpdated)
}

// DeleteMessage removes a message. Senders delete their own, moderators
// delete anyone's.
func (s *chatServiceImpl) DeleteMessage(ctx context.Context, messageID, userID int64) error {
	message, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return err
	}

	allowed, err := s.authzService.CanDeleteMessage(ctx, message, userID)
	if err != nil {
		return err
	}
	if !allowed {
		return apperrors.NewForbiddenError("you cannot delete this message")
	}

	if err := s.messageRepo.Delete(ctx, messageID); err != nil {
		return err
	}

	if message.FileID != nil {
		if file, err := s.fileRepo.GetByID(ctx, *message.FileID); err == nil {
			if err := s.fileStorage.DeleteFile(file.FilePath); err != nil {
				s.logger.Warn().Err(err).Str("path", file.FilePath).Msg("Failed to delete message file")
			}
			_ = s.fileRepo.Delete(ctx, file.ID)
		}
	}

	s.hub.Broadcast(websocket.NewEvent(websocket.EventMessageDeleted, message.CommunityID, map[string]int64{"id": messageID}))

	// A deleted thread reply changes the root's reply count
	if message.ThreadRootID != nil {
		if root, err := s.loadMessage(ctx, *message.ThreadRootID); err == nil {
			s.hub.Broadcast(websocket.NewEvent(websocket.EventMessageUpdated, message.CommunityID, root))
		}
	}

	return nil
}

// SetPinned pins or unpins a message, moderator only
func (s *chatServiceImpl) SetPinned(ctx context.Context, messageID, userID int64, pinned bool) error {
	message, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return err
	}

	allowed, err := s.authzService.CanPinMessage(ctx, message.CommunityID, userID)
	if err != nil {
		return err
	}
	if !allowed {
		return apperrors.NewForbiddenError("only moderators can pin messages")
	}

	var pinnedBy *int64
	if pinned {
		pinnedBy = &userID
	}
	if err := s.messageRepo.SetPinned(ctx, messageID, pinned, pinnedBy); err != nil {
		return err
	}

	kind := websocket.EventMessagePinned
	if !pinned {
		kind = websocket.EventMessageUnpinned
	}
	if _, err := s.finishWrite(ctx, messageID, kind); err != nil {
		return err
	}
	return nil
}

// ToggleReaction adds the user's emoji reaction if absent, removes it if
// present. Returns whether the reaction is now set.
func (s *chatServiceImpl) ToggleReaction(ctx context.Context, messageID, userID int64, emoji string) (bool, error) {
	message, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return false, err
	}
	if err := s.requireMember(ctx, message.CommunityID, userID); err != nil {
		return false, err
	}

	exists, err := s.reactionRepo.Exists(ctx, messageID, userID, emoji)
	if err != nil {
		return false, err
	}

	if exists {
		if _, err := s.reactionRepo.Remove(ctx, messageID, userID, emoji); err != nil {
			return false, err
		}
	} else {
		if err := s.reactionRepo.Add(ctx, &models.Reaction{
			MessageID: messageID,
			UserID:    userID,
			Emoji:     emoji,
		}); err != nil {
			return false, err
		}
	}

	if err := s.broadcastReactions(ctx, message); err != nil {
		return false, err
	}
	return !exists, nil
}

// RemoveReaction removes the user's emoji reaction from a message
func (s *chatServiceImpl) RemoveReaction(ctx context.Context, messageID, userID int64, emoji string) error {
	message, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return err
	}
	if err := s.requireMember(ctx, message.CommunityID, userID); err != nil {
		return err
	}

	existed, err := s.reactionRepo.Remove(ctx, messageID, userID, emoji)
	if err != nil {
		return err
	}
	if !existed {
		return nil
	}

	return s.broadcastReactions(ctx, message)
}

// broadcastReactions pushes the message's fresh reaction summary to subscribers
func (s *chatServiceImpl) broadcastReactions(ctx context.Context, message *models.Message) error {
	reactions, err := s.reactionRepo.ListByMessage(ctx, message.ID)
	if err != nil {
		return err
	}

	payload := struct {
		MessageID int64                     `json:"messageId"`
		Reactions []*models.ReactionSummary `json:"reactions"`
	}{
		MessageID: message.ID,
		Reactions: models.SummarizeReactions(reactions),
	}

	s.hub.Broadcast(websocket.NewEvent(websocket.EventReactionUpdated, message.CommunityID, payload))
	return nil
}

// MarkQuestion flags the sender's own root message as a question
func (s *chatServiceImpl) MarkQuestion(ctx context.Context, messageID, userID int64) (*dto.MessageResponse, error) {
	message, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if message.SenderID != userID {
		return nil, apperrors.NewForbiddenError("only the sender can mark a message as a question")
	}
	if message.IsThreadReply() {
		return nil, apperrors.NewBadRequestError("thread replies cannot be questions")
	}
	if message.IsQuestion {
		return s.loadMessage(ctx, messageID)
	}

	if err := s.messageRepo.MarkQuestion(ctx, messageID); err != nil {
		return nil, err
	}

	return s.finishWrite(ctx, messageID, websocket.EventMessageUpdated)
}

// AcceptAnswer marks a thread reply as the accepted answer to a question.
// Only the question's author or a moderator may accept, and the answer has
// to live in the question's own thread.
func (s *chatServiceImpl) AcceptAnswer(ctx context.Context, questionID, answerID, userID int64) error {
	question, err := s.messageRepo.GetByID(ctx, questionID)
	if err != nil {
		return err
	}
	if !question.IsQuestion {
		return apperrors.ErrNotAQuestion
	}

	answer, err := s.messageRepo.GetByID(ctx, answerID)
	if err != nil {
		return err
	}
	if answer.ThreadRootID == nil || *answer.ThreadRootID != questionID {
		return apperrors.ErrNotInThread
	}

	allowed, err := s.authzService.CanAcceptAnswer(ctx, question, userID)
	if err != nil {
		return err
	}
	if !allowed {
		return apperrors.NewForbiddenError("only the question author or a moderator can accept an answer")
	}

	if err := s.messageRepo.SetAnswer(ctx, questionID, answerID); err != nil {
		return err
	}

	if _, err := s.finishWrite(ctx, questionID, websocket.EventQuestionAnswered); err != nil {
		return err
	}
	return nil
}

// ChannelSnapshot returns the most recent channel messages for a fresh
// websocket subscriber. Implements websocket.SnapshotProvider.
func (s *chatServiceImpl) ChannelSnapshot(ctx context.Context, communityID int64, limit int) (interface{}, error) {
	messages, err := s.messageRepo.ListChannel(ctx, communityID, repositories.ChannelFilter{Limit: limit})
	if err != nil {
		return nil, err
	}
	if err := s.attachReactions(ctx, messages); err != nil {
		return nil, err
	}
	return dto.ToMessageListResponse(messages), nil
}
