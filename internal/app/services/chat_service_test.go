package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"

	"github.com/emre/collabhub/internal/app/models"
	"github.com/emre/collabhub/internal/app/repositories"
	"github.com/emre/collabhub/internal/pkg/apperrors"
)

type fakeMessageStore struct {
	byID map[int64]*models.Message
}

func (f *fakeMessageStore) GetByID(ctx context.Context, id int64) (*models.Message, error) {
	if m, ok := f.byID[id]; ok {
		return m, nil
	}
	return nil, apperrors.ErrMessageNotFound
}

func (f *fakeMessageStore) Create(ctx context.Context, message *models.Message) (int64, error) {
	panic("unexpected call to Create")
}

func (f *fakeMessageStore) CreateThreadReply(ctx context.Context, message *models.Message) (int64, error) {
	panic("unexpected call to CreateThreadReply")
}

func (f *fakeMessageStore) ListChannel(ctx context.Context, communityID int64, filter repositories.ChannelFilter) ([]*models.Message, error) {
	panic("unexpected call to ListChannel")
}

func (f *fakeMessageStore) ListThread(ctx context.Context, rootID int64) ([]*models.Message, error) {
	panic("unexpected call to ListThread")
}

func (f *fakeMessageStore) ListPinned(ctx context.Context, communityID int64) ([]*models.Message, error) {
	panic("unexpected call to ListPinned")
}

func (f *fakeMessageStore) ListQuestions(ctx context.Context, communityID int64, unansweredOnly bool) ([]*models.Message, error) {
	panic("unexpected call to ListQuestions")
}

func (f *fakeMessageStore) UpdateContent(ctx context.Context, id int64, content string) error {
	panic("unexpected call to UpdateContent")
}

func (f *fakeMessageStore) SetPinned(ctx context.Context, id int64, pinned bool, pinnedBy *int64) error {
	panic("unexpected call to SetPinned")
}

func (f *fakeMessageStore) MarkQuestion(ctx context.Context, id int64) error {
	panic("unexpected call to MarkQuestion")
}

func (f *fakeMessageStore) SetAnswer(ctx context.Context, questionID, answerID int64) error {
	panic("unexpected call to SetAnswer")
}

func (f *fakeMessageStore) Delete(ctx context.Context, id int64) error {
	panic("unexpected call to Delete")
}

type fakeReactionStore struct {
	existing map[string]bool
	adds     int
	removes  int
}

func reactionKey(messageID, userID int64, emoji string) string {
	return fmt.Sprintf("%d:%d:%s", messageID, userID, emoji)
}

func (f *fakeReactionStore) Add(ctx context.Context, reaction *models.Reaction) error {
	f.adds++
	return nil
}

func (f *fakeReactionStore) Remove(ctx context.Context, messageID, userID int64, emoji string) (bool, error) {
	f.removes++
	return f.existing[reactionKey(messageID, userID, emoji)], nil
}

func (f *fakeReactionStore) Exists(ctx context.Context, messageID, userID int64, emoji string) (bool, error) {
	return f.existing[reactionKey(messageID, userID, emoji)], nil
}

func (f *fakeReactionStore) ListByMessage(ctx context.Context, messageID int64) ([]*models.Reaction, error) {
	return nil, nil
}

func (f *fakeReactionStore) ListByMessages(ctx context.Context, messageIDs []int64) (map[int64][]*models.Reaction, error) {
	return map[int64][]*models.Reaction{}, nil
}

type fakeMembershipChecker struct {
	active map[int64]bool
}

func (f *fakeMembershipChecker) IsActiveMember(ctx context.Context, communityID, userID int64) (bool, error) {
	return f.active[userID], nil
}

func newReactionTestService(messages *fakeMessageStore, reactions *fakeReactionStore, members *fakeMembershipChecker) *chatServiceImpl {
	return &chatServiceImpl{
		messageRepo:    messages,
		reactionRepo:   reactions,
		membershipRepo: members,
		logger:         zerolog.Nop(),
	}
}

func TestRemoveReactionRequiresActiveMembership(t *testing.T) {
	messages := &fakeMessageStore{byID: map[int64]*models.Message{
		10: {ID: 10, CommunityID: 1, SenderID: 2, Content: "hello"},
	}}
	reactions := &fakeReactionStore{existing: map[string]bool{
		reactionKey(10, 5, "👍"): true,
	}}
	members := &fakeMembershipChecker{active: map[int64]bool{}}
	service := newReactionTestService(messages, reactions, members)

	err := service.RemoveReaction(context.Background(), 10, 5, "👍")
	if !errors.Is(err, apperrors.ErrNotAMember) {
		t.Fatalf("expected ErrNotAMember, got %v", err)
	}
	if reactions.removes != 0 {
		t.Errorf("expected no reaction removal for a non-member, got %d", reactions.removes)
	}
}

func TestToggleReactionRequiresActiveMembership(t *testing.T) {
	messages := &fakeMessageStore{byID: map[int64]*models.Message{
		10: {ID: 10, CommunityID: 1, SenderID: 2, Content: "hello"},
	}}
	reactions := &fakeReactionStore{existing: map[string]bool{}}
	members := &fakeMembershipChecker{active: map[int64]bool{}}
	service := newReactionTestService(messages, reactions, members)

	_, err := service.ToggleReaction(context.Background(), 10, 5, "👍")
	if !errors.Is(err, apperrors.ErrNotAMember) {
		t.Fatalf("expected ErrNotAMember, got %v", err)
	}
	if reactions.adds != 0 || reactions.removes != 0 {
		t.Errorf("expected no reaction writes for a non-member, got adds=%d removes=%d", reactions.adds, reactions.removes)
	}
}

func TestRemoveReactionAbsentIsNoOp(t *testing.T) {
	messages := &fakeMessageStore{byID: map[int64]*models.Message{
		10: {ID: 10, CommunityID: 1, SenderID: 2, Content: "hello"},
	}}
	reactions := &fakeReactionStore{existing: map[string]bool{}}
	members := &fakeMembershipChecker{active: map[int64]bool{5: true}}
	service := newReactionTestService(messages, reactions, members)

	// The nil hub proves no broadcast is attempted for an absent reaction.
	if err := service.RemoveReaction(context.Background(), 10, 5, "👍"); err != nil {
		t.Fatalf("RemoveReaction returned error: %v", err)
	}
	if reactions.removes != 1 {
		t.Errorf("expected one removal attempt, got %d", reactions.removes)
	}
}
