package repositories

import (
	"context"

	"github.com/mingleapp/backend/internal/models"
)

// FriendRequestRepository defines data access for the friend-request workflow.
type FriendRequestRepository interface {
	Create(ctx context.Context, request models.FriendRequest) error
	FindByID(ctx context.Context, id string) (models.FriendRequest, error)
	// FindPending looks up the outstanding request for the ordered
	// (fromID, toID) pair. Direction matters: a pending request in the
	// opposite direction is a different record.
	FindPending(ctx context.Context, fromID, toID string) (models.FriendRequest, error)
	ListSent(ctx context.Context, fromID string) ([]models.FriendRequest, error)
	ListReceived(ctx context.Context, toID string) ([]models.FriendRequest, error)
	Delete(ctx context.Context, id string) error
	// DeleteForUser removes every request where the user is either
	// endpoint. Used by account deletion.
	DeleteForUser(ctx context.Context, userID string) error
}
