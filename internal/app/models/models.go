package models

// GlobalRole defines the platform-wide user role
type GlobalRole string

const (
	GlobalRoleUser  GlobalRole = "USER"
	GlobalRoleAdmin GlobalRole = "ADMIN"
)

// CommunityRole defines the per-community membership role.
// Roles form a hierarchy: MEMBER < MODERATOR < OWNER.
type CommunityRole string

const (
	CommunityRoleMember    CommunityRole = "MEMBER"
	CommunityRoleModerator CommunityRole = "MODERATOR"
	CommunityRoleOwner     CommunityRole = "OWNER"
)

// roleRank orders community roles for hierarchy comparisons
var roleRank = map[CommunityRole]int{
	CommunityRoleMember:    1,
	CommunityRoleModerator: 2,
	CommunityRoleOwner:     3,
}

// AtLeast reports whether r ranks at or above other in the role hierarchy.
func (r CommunityRole) AtLeast(other CommunityRole) bool {
	return roleRank[r] >= roleRank[other]
}

// Valid reports whether r is a known community role.
func (r CommunityRole) Valid() bool {
	_, ok := roleRank[r]
	return ok
}
