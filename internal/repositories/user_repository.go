package repositories

import (
	"context"

	"github.com/mingleapp/backend/internal/models"
)

// UserRepository defines the data access contract for users.
type UserRepository interface {
	Create(ctx context.Context, user models.User) error
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	List(ctx context.Context) ([]models.User, error)
	// Search matches a case-insensitive substring of the username,
	// excluding the record identified by excludeID.
	Search(ctx context.Context, query, excludeID string) ([]models.User, error)
	Update(ctx context.Context, user models.User) error
	SetOnline(ctx context.Context, id string, online bool) error
	Delete(ctx context.Context, id string) (models.User, error)
}

// FriendGraph defines access to the symmetric friendship relation.
type FriendGraph interface {
	// AddFriend inserts a single directed edge. Adding an edge that
	// already exists is a no-op, which keeps retries safe.
	AddFriend(ctx context.Context, userID, friendID string) error
	Friends(ctx context.Context, userID string) ([]string, error)
	// RemoveEdges deletes every edge touching the user, both directions.
	RemoveEdges(ctx context.Context, userID string) error
}
