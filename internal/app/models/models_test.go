package models

import (
	"reflect"
	"testing"
)

func TestCommunityRoleAtLeast(t *testing.T) {
	tests := []struct {
		role CommunityRole
		min  CommunityRole
		want bool
	}{
		{CommunityRoleMember, CommunityRoleMember, true},
		{CommunityRoleMember, CommunityRoleModerator, false},
		{CommunityRoleMember, CommunityRoleOwner, false},
		{CommunityRoleModerator, CommunityRoleMember, true},
		{CommunityRoleModerator, CommunityRoleModerator, true},
		{CommunityRoleModerator, CommunityRoleOwner, false},
		{CommunityRoleOwner, CommunityRoleMember, true},
		{CommunityRoleOwner, CommunityRoleModerator, true},
		{CommunityRoleOwner, CommunityRoleOwner, true},
	}

	for _, tt := range tests {
		if got := tt.role.AtLeast(tt.min); got != tt.want {
			t.Errorf("%s.AtLeast(%s) = %v, want %v", tt.role, tt.min, got, tt.want)
		}
	}
}

func TestCommunityRoleValid(t *testing.T) {
	for _, role := range []CommunityRole{CommunityRoleMember, CommunityRoleModerator, CommunityRoleOwner} {
		if !role.Valid() {
			t.Errorf("expected %s to be valid", role)
		}
	}
	if CommunityRole("SUPERUSER").Valid() {
		t.Error("expected unknown role to be invalid")
	}
}

func TestSummarizeReactions(t *testing.T) {
	reactions := []*Reaction{
		{MessageID: 1, UserID: 10, Emoji: "👍"},
		{MessageID: 1, UserID: 11, Emoji: "🎉"},
		{MessageID: 1, UserID: 12, Emoji: "👍"},
		{MessageID: 1, UserID: 10, Emoji: "🎉"},
	}

	summaries := SummarizeReactions(reactions)
	if len(summaries) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(summaries))
	}

	// First-seen emoji order is preserved
	if summaries[0].Emoji != "👍" || summaries[1].Emoji != "🎉" {
		t.Errorf("unexpected emoji order: %s, %s", summaries[0].Emoji, summaries[1].Emoji)
	}

	if !reflect.DeepEqual(summaries[0].UserIDs, []int64{10, 12}) {
		t.Errorf("👍 user IDs = %v, want [10 12]", summaries[0].UserIDs)
	}
	if !reflect.DeepEqual(summaries[1].UserIDs, []int64{11, 10}) {
		t.Errorf("🎉 user IDs = %v, want [11 10]", summaries[1].UserIDs)
	}

	for _, s := range summaries {
		if s.Count != len(s.UserIDs) {
			t.Errorf("%s count = %d, want %d", s.Emoji, s.Count, len(s.UserIDs))
		}
	}
}

func TestSummarizeReactionsEmpty(t *testing.T) {
	if got := SummarizeReactions(nil); len(got) != 0 {
		t.Errorf("expected empty summary for no reactions, got %v", got)
	}
}

func TestIsThreadReply(t *testing.T) {
	root := &Message{ID: 1}
	if root.IsThreadReply() {
		t.Error("root message should not be a thread reply")
	}

	rootID := int64(1)
	reply := &Message{ID: 2, ThreadRootID: &rootID}
	if !reply.IsThreadReply() {
		t.Error("message with a thread root should be a thread reply")
	}
}
