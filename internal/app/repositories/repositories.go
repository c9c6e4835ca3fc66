package repositories

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories acts as a container for all repository instances
type Repositories struct {
	UserRepository       *UserRepository
	TokenRepository      *TokenRepository
	CommunityRepository  *CommunityRepository
	MembershipRepository *MembershipRepository
	MessageRepository    *MessageRepository
	ReactionRepository   *ReactionRepository
	ResourceRepository   *ResourceRepository
	EventRepository      *EventRepository
	FileRepository       *FileRepository
}

// NewRepositories creates instances of all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepository:       NewUserRepository(db),
		TokenRepository:      NewTokenRepository(db),
		CommunityRepository:  NewCommunityRepository(db),
		MembershipRepository: NewMembershipRepository(db),
		MessageRepository:    NewMessageRepository(db),
		ReactionRepository:   NewReactionRepository(db),
		ResourceRepository:   NewResourceRepository(db),
		EventRepository:      NewEventRepository(db),
		FileRepository:       NewFileRepository(db),
	}
}
