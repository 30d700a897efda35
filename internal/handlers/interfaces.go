package handlers

import (
	"context"
	"io"

	"github.com/mingleapp/backend/internal/content"
	"github.com/mingleapp/backend/internal/models"
	"github.com/mingleapp/backend/internal/relationships"
)

// UserStore captures the persistence operations required by the account
// handlers.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Search(ctx context.Context, query, excludeID string) ([]models.User, error)
	Update(ctx context.Context, user models.User) error
	SetOnline(ctx context.Context, id string, online bool) error
}

// SessionManager issues, verifies and rotates authentication tokens.
type SessionManager interface {
	Issue(ctx context.Context, userID string) (models.SessionTokens, error)
	Authenticate(ctx context.Context, accessToken string) (string, error)
	Refresh(ctx context.Context, refreshToken string) (models.SessionTokens, error)
	Revoke(ctx context.Context, refreshToken string)
}

// RelationshipEngine drives the friend-request workflow.
type RelationshipEngine interface {
	Send(ctx context.Context, fromID, toID, message string) (relationships.Request, error)
	Sent(ctx context.Context, userID string) ([]relationships.Request, error)
	Received(ctx context.Context, userID string) ([]relationships.Request, error)
	Accept(ctx context.Context, acceptorID, requestID string) (models.Profile, error)
	ProfileWithFriends(ctx context.Context, userID string) (models.Profile, error)
}

// ContentService manages posts, comments and stories.
type ContentService interface {
	CreatePost(ctx context.Context, authorID, text, imageURL, videoURL string) (content.Post, error)
	ListPosts(ctx context.Context) ([]content.Post, error)
	ListUserPosts(ctx context.Context, authorID string) ([]content.Post, error)
	ReactToPost(ctx context.Context, postID string, reaction content.Reaction) (content.Post, bool, error)
	DeletePost(ctx context.Context, actorID, postID string) (content.Post, error)
	CreateComment(ctx context.Context, authorID, postID, text string) (content.Comment, error)
	ListComments(ctx context.Context, postID string) ([]content.Comment, error)
	ReactToComment(ctx context.Context, commentID string, reaction content.Reaction) (content.Comment, bool, error)
	CreateStory(ctx context.Context, authorID, text, imageURL, videoURL string) (content.Story, error)
	VisibleStories(ctx context.Context, viewerID string) ([]content.Story, error)
}

// AccountCascader removes an account and everything that depends on it.
type AccountCascader interface {
	DeleteAccount(ctx context.Context, userID string) (models.Profile, error)
}

// MediaStore persists uploaded media objects and returns their public
// locations.
type MediaStore interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
}
