package content

import (
	"context"
	"errors"
	"fmt"

	"github.com/mingleapp/backend/internal/logging"
	"github.com/mingleapp/backend/internal/models"
	"github.com/mingleapp/backend/internal/repositories"
)

// AccountStore captures the user persistence needed by account deletion.
type AccountStore interface {
	Delete(ctx context.Context, id string) (models.User, error)
	RemoveEdges(ctx context.Context, userID string) error
}

// PostPurger removes a user's posts wholesale. ListByAuthor feeds the
// per-post comment sweep that has to run before the post rows go away.
type PostPurger interface {
	ListByAuthor(ctx context.Context, authorID string) ([]models.Post, error)
	DeleteByAuthor(ctx context.Context, authorID string) ([]models.Post, error)
}

// CommentPurger removes comments attached to swept posts or written by a
// removed user.
type CommentPurger interface {
	DeleteByPost(ctx context.Context, postID string) (int64, error)
	DeleteByAuthor(ctx context.Context, authorID string) (int64, error)
}

// StoryPurger removes a user's stories wholesale.
type StoryPurger interface {
	DeleteByAuthor(ctx context.Context, authorID string) ([]models.Story, error)
}

// RequestPurger removes friend requests touching a removed user.
type RequestPurger interface {
	DeleteForUser(ctx context.Context, userID string) error
}

// SessionPurger revokes a removed user's sessions.
type SessionPurger interface {
	DeleteForUser(ctx context.Context, userID string) error
}

// Cascader routes structural deletions and enforces that dependents are
// swept before success is reported. The schema declares plain references
// without ON DELETE actions, so the Cascader owns the deletion order:
// dependents go first and the user row last. Cascade steps are not
// transactional across tables; each sweep is keyed by the user id, so a
// partial cascade can be resumed by re-running it.
type Cascader struct {
	accounts AccountStore
	posts    PostPurger
	comments CommentPurger
	stories  StoryPurger
	requests RequestPurger
	sessions SessionPurger
	media    MediaDiscarder
	recorder Recorder
}

// NewCascader constructs the cascade coordinator. media and recorder may be nil.
func NewCascader(accounts AccountStore, posts PostPurger, comments CommentPurger, stories StoryPurger, requests RequestPurger, sessions SessionPurger, media MediaDiscarder, recorder Recorder) *Cascader {
	return &Cascader{
		accounts: accounts,
		posts:    posts,
		comments: comments,
		stories:  stories,
		requests: requests,
		sessions: sessions,
		media:    media,
		recorder: recorder,
	}
}

// DeleteAccount removes the user and everything that references them:
// their posts (each cascading to comments), their own comments on other
// posts, their stories, friend requests in both directions, friendship
// edges, and active sessions. Media objects for removed posts and stories
// are handed to the discarder.
func (c *Cascader) DeleteAccount(ctx context.Context, userID string) (models.Profile, error) {
	ctx, span := logging.StartSpan(ctx, "cascade.delete_account")
	defer span.End()

	logger := logging.FromContext(ctx)

	// Comments reference posts, so they are swept per post id before the
	// post rows themselves can be removed.
	listed, err := c.posts.ListByAuthor(ctx, userID)
	if err != nil {
		return models.Profile{}, fmt.Errorf("list posts for cascade: %w", err)
	}

	var mediaURLs []string
	for _, post := range listed {
		swept, err := c.comments.DeleteByPost(ctx, post.ID)
		if err != nil {
			return models.Profile{}, fmt.Errorf("cascade comments for post %s: %w", post.ID, err)
		}
		c.record("comment", int(swept))
		mediaURLs = appendMedia(mediaURLs, post.ImageURL, post.VideoURL)
	}

	authored, err := c.comments.DeleteByAuthor(ctx, userID)
	if err != nil {
		return models.Profile{}, fmt.Errorf("cascade authored comments: %w", err)
	}
	c.record("comment", int(authored))

	posts, err := c.posts.DeleteByAuthor(ctx, userID)
	if err != nil {
		return models.Profile{}, fmt.Errorf("cascade posts: %w", err)
	}
	c.record("post", len(posts))

	stories, err := c.stories.DeleteByAuthor(ctx, userID)
	if err != nil {
		return models.Profile{}, fmt.Errorf("cascade stories: %w", err)
	}
	for _, story := range stories {
		mediaURLs = appendMedia(mediaURLs, story.ImageURL, story.VideoURL)
	}
	c.record("story", len(stories))

	if err := c.requests.DeleteForUser(ctx, userID); err != nil {
		return models.Profile{}, fmt.Errorf("cascade friend requests: %w", err)
	}
	if err := c.accounts.RemoveEdges(ctx, userID); err != nil {
		return models.Profile{}, fmt.Errorf("cascade friendships: %w", err)
	}
	if err := c.sessions.DeleteForUser(ctx, userID); err != nil {
		return models.Profile{}, fmt.Errorf("revoke sessions: %w", err)
	}

	user, err := c.accounts.Delete(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.Profile{}, ErrNotFound
		}
		return models.Profile{}, fmt.Errorf("delete user: %w", err)
	}

	if c.media != nil && len(mediaURLs) > 0 {
		c.media.Discard(ctx, mediaURLs...)
	}

	logger.Info("account removed",
		"userId", userID,
		"posts", len(posts),
		"stories", len(stories),
	)

	return user.PublicProfile(), nil
}

func (c *Cascader) record(entity string, count int) {
	if c.recorder != nil && count > 0 {
		c.recorder.CascadeDeleted(entity, count)
	}
}

func appendMedia(urls []string, candidates ...string) []string {
	for _, url := range candidates {
		if url != "" {
			urls = append(urls, url)
		}
	}
	return urls
}
