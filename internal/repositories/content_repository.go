package repositories

import (
	"context"

	"github.com/mingleapp/backend/internal/models"
)

// PostRepository defines data access for posts.
type PostRepository interface {
	Create(ctx context.Context, post models.Post) error
	FindByID(ctx context.Context, id string) (models.Post, error)
	List(ctx context.Context) ([]models.Post, error)
	ListByAuthor(ctx context.Context, authorID string) ([]models.Post, error)
	UpdateCounters(ctx context.Context, id string, likes, dislikes int) error
	Delete(ctx context.Context, id string) error
	// DeleteByAuthor removes every post owned by the author and returns
	// the deleted rows so callers can cascade comments and media.
	DeleteByAuthor(ctx context.Context, authorID string) ([]models.Post, error)
}

// CommentRepository defines data access for comments.
type CommentRepository interface {
	Create(ctx context.Context, comment models.Comment) error
	FindByID(ctx context.Context, id string) (models.Comment, error)
	ListByPost(ctx context.Context, postID string) ([]models.Comment, error)
	UpdateCounters(ctx context.Context, id string, likes, dislikes int) error
	DeleteByPost(ctx context.Context, postID string) (int64, error)
	DeleteByAuthor(ctx context.Context, authorID string) (int64, error)
}

// StoryRepository defines data access for stories.
type StoryRepository interface {
	Create(ctx context.Context, story models.Story) error
	// ListByAuthors returns stories whose author is a member of the
	// provided id set, newest first.
	ListByAuthors(ctx context.Context, authorIDs []string) ([]models.Story, error)
	DeleteByAuthor(ctx context.Context, authorID string) ([]models.Story, error)
}
