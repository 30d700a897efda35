// Package content manages posts, comments and stories: creation,
// reactions, visibility, and the deletion cascades that keep dependent
// records from outliving their owners.
package content

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"github.com/mingleapp/backend/internal/models"
	"github.com/mingleapp/backend/internal/repositories"
)

// Reaction identifies the direction of a like/dislike vote.
type Reaction string

const (
	ReactionLike    Reaction = "like"
	ReactionDislike Reaction = "dislike"
)

// PostStore captures post persistence used by the service.
type PostStore interface {
	Create(ctx context.Context, post models.Post) error
	FindByID(ctx context.Context, id string) (models.Post, error)
	List(ctx context.Context) ([]models.Post, error)
	ListByAuthor(ctx context.Context, authorID string) ([]models.Post, error)
	UpdateCounters(ctx context.Context, id string, likes, dislikes int) error
	Delete(ctx context.Context, id string) error
}

// CommentStore captures comment persistence used by the service.
type CommentStore interface {
	Create(ctx context.Context, comment models.Comment) error
	FindByID(ctx context.Context, id string) (models.Comment, error)
	ListByPost(ctx context.Context, postID string) ([]models.Comment, error)
	UpdateCounters(ctx context.Context, id string, likes, dislikes int) error
	DeleteByPost(ctx context.Context, postID string) (int64, error)
}

// StoryStore captures story persistence used by the service.
type StoryStore interface {
	Create(ctx context.Context, story models.Story) error
	ListByAuthors(ctx context.Context, authorIDs []string) ([]models.Story, error)
}

// Graph resolves a user's friend set for story visibility.
type Graph interface {
	Friends(ctx context.Context, userID string) ([]string, error)
}

// UserResolver looks up user records so authors can be returned as profiles.
type UserResolver interface {
	FindByID(ctx context.Context, id string) (models.User, error)
}

// MediaDiscarder schedules removal of stored media objects. Implementations
// must not block the caller on object storage.
type MediaDiscarder interface {
	Discard(ctx context.Context, urls ...string)
}

// Recorder receives content events for metrics.
type Recorder interface {
	PostCreated()
	CommentCreated()
	StoryCreated()
	CascadeDeleted(entity string, count int)
}

// Post is a post with its author resolved to a public profile.
type Post struct {
	ID        string         `json:"id"`
	Author    models.Profile `json:"author"`
	Content   string         `json:"content,omitempty"`
	ImageURL  string         `json:"imageUrl,omitempty"`
	VideoURL  string         `json:"videoUrl,omitempty"`
	Likes     int            `json:"likes"`
	Dislikes  int            `json:"dislikes"`
	CreatedAt time.Time      `json:"createdAt"`
}

// Comment is a comment with its author resolved to a public profile.
type Comment struct {
	ID        string         `json:"id"`
	Author    models.Profile `json:"author"`
	PostID    string         `json:"postId"`
	Content   string         `json:"content"`
	Likes     int            `json:"likes"`
	Dislikes  int            `json:"dislikes"`
	CreatedAt time.Time      `json:"createdAt"`
}

// Story is a story with its author resolved to a public profile.
type Story struct {
	ID        string         `json:"id"`
	Author    models.Profile `json:"author"`
	Content   string         `json:"content,omitempty"`
	ImageURL  string         `json:"imageUrl,omitempty"`
	VideoURL  string         `json:"videoUrl,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// Service implements content operations and the authorization rules that
// guard them.
type Service struct {
	posts    PostStore
	comments CommentStore
	stories  StoryStore
	graph    Graph
	users    UserResolver
	media    MediaDiscarder
	recorder Recorder
	policy   *bluemonday.Policy
	timeout  time.Duration

	NowFunc func() time.Time
	IDFunc  func() string
}

// NewService constructs a content service. media and recorder may be nil;
// timeout bounds each persistence interaction when positive.
func NewService(posts PostStore, comments CommentStore, stories StoryStore, graph Graph, users UserResolver, media MediaDiscarder, recorder Recorder, timeout time.Duration) *Service {
	return &Service{
		posts:    posts,
		comments: comments,
		stories:  stories,
		graph:    graph,
		users:    users,
		media:    media,
		recorder: recorder,
		policy:   bluemonday.StrictPolicy(),
		timeout:  timeout,
	}
}

// CreatePost validates and persists a new post with zeroed counters.
func (s *Service) CreatePost(ctx context.Context, authorID, text, imageURL, videoURL string) (Post, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	text = s.policy.Sanitize(strings.TrimSpace(text))
	if text == "" && imageURL == "" && videoURL == "" {
		return Post{}, ErrEmptyContent
	}

	author, err := s.resolve(ctx, authorID)
	if err != nil {
		return Post{}, err
	}

	record := models.Post{
		ID:        s.newID(),
		AuthorID:  authorID,
		Content:   text,
		ImageURL:  imageURL,
		VideoURL:  videoURL,
		CreatedAt: s.now(),
	}

	if err := s.posts.Create(ctx, record); err != nil {
		return Post{}, fmt.Errorf("create post: %w", err)
	}

	if s.recorder != nil {
		s.recorder.PostCreated()
	}

	return postView(record, author), nil
}

// ListPosts returns every post with authors resolved, newest first.
func (s *Service) ListPosts(ctx context.Context) ([]Post, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	records, err := s.posts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return s.postViews(ctx, records)
}

// ListUserPosts returns the posts authored by a single user.
func (s *Service) ListUserPosts(ctx context.Context, authorID string) ([]Post, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	records, err := s.posts.ListByAuthor(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("list user posts: %w", err)
	}
	return s.postViews(ctx, records)
}

// ReactToPost applies a like or dislike. A like always lands. A dislike
// lands only when the post already has at least one like; otherwise nothing
// changes and the second return value is false so callers can report the
// unchanged like count.
func (s *Service) ReactToPost(ctx context.Context, postID string, reaction Reaction) (Post, bool, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	record, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return Post{}, false, ErrNotFound
		}
		return Post{}, false, fmt.Errorf("find post: %w", err)
	}

	likes, dislikes, applied := applyReaction(record.Likes, record.Dislikes, reaction)
	if applied {
		if err := s.posts.UpdateCounters(ctx, postID, likes, dislikes); err != nil {
			return Post{}, false, fmt.Errorf("update post counters: %w", err)
		}
		record.Likes, record.Dislikes = likes, dislikes
	}

	author, err := s.resolve(ctx, record.AuthorID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return Post{}, false, err
	}

	return postView(record, author), applied, nil
}

// CreateComment validates and persists a comment on an existing post.
func (s *Service) CreateComment(ctx context.Context, authorID, postID, text string) (Comment, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	text = s.policy.Sanitize(strings.TrimSpace(text))
	if text == "" {
		return Comment{}, ErrEmptyContent
	}

	if _, err := s.posts.FindByID(ctx, postID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return Comment{}, ErrNotFound
		}
		return Comment{}, fmt.Errorf("find post: %w", err)
	}

	author, err := s.resolve(ctx, authorID)
	if err != nil {
		return Comment{}, err
	}

	record := models.Comment{
		ID:        s.newID(),
		AuthorID:  authorID,
		PostID:    postID,
		Content:   text,
		CreatedAt: s.now(),
	}

	if err := s.comments.Create(ctx, record); err != nil {
		return Comment{}, fmt.Errorf("create comment: %w", err)
	}

	if s.recorder != nil {
		s.recorder.CommentCreated()
	}

	return commentView(record, author), nil
}

// ListComments returns the comments for a post, oldest first.
func (s *Service) ListComments(ctx context.Context, postID string) ([]Comment, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	records, err := s.comments.ListByPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	comments := make([]Comment, 0, len(records))
	for _, record := range records {
		author, err := s.resolve(ctx, record.AuthorID)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		comments = append(comments, commentView(record, author))
	}
	return comments, nil
}

// ReactToComment applies a like or dislike under the same rule as posts.
func (s *Service) ReactToComment(ctx context.Context, commentID string, reaction Reaction) (Comment, bool, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	record, err := s.comments.FindByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return Comment{}, false, ErrNotFound
		}
		return Comment{}, false, fmt.Errorf("find comment: %w", err)
	}

	likes, dislikes, applied := applyReaction(record.Likes, record.Dislikes, reaction)
	if applied {
		if err := s.comments.UpdateCounters(ctx, commentID, likes, dislikes); err != nil {
			return Comment{}, false, fmt.Errorf("update comment counters: %w", err)
		}
		record.Likes, record.Dislikes = likes, dislikes
	}

	author, err := s.resolve(ctx, record.AuthorID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return Comment{}, false, err
	}

	return commentView(record, author), applied, nil
}

// DeletePost removes a post after an ownership check, sweeping its comments
// and handing media to the discarder. The deleted post is returned.
func (s *Service) DeletePost(ctx context.Context, actorID, postID string) (Post, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	record, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return Post{}, ErrNotFound
		}
		return Post{}, fmt.Errorf("find post: %w", err)
	}

	if record.AuthorID != actorID {
		return Post{}, ErrNotOwner
	}

	author, err := s.resolve(ctx, actorID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return Post{}, err
	}

	// Comments reference the post row, so the sweep has to land first.
	swept, err := s.comments.DeleteByPost(ctx, postID)
	if err != nil {
		return Post{}, fmt.Errorf("cascade comments: %w", err)
	}
	if s.recorder != nil {
		s.recorder.CascadeDeleted("comment", int(swept))
	}

	if err := s.posts.Delete(ctx, postID); err != nil {
		return Post{}, fmt.Errorf("delete post: %w", err)
	}

	s.discardMedia(ctx, record.ImageURL, record.VideoURL)

	return postView(record, author), nil
}

// CreateStory validates and persists a new story.
func (s *Service) CreateStory(ctx context.Context, authorID, text, imageURL, videoURL string) (Story, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	text = s.policy.Sanitize(strings.TrimSpace(text))
	if text == "" && imageURL == "" && videoURL == "" {
		return Story{}, ErrEmptyContent
	}

	author, err := s.resolve(ctx, authorID)
	if err != nil {
		return Story{}, err
	}

	record := models.Story{
		ID:        s.newID(),
		AuthorID:  authorID,
		Content:   text,
		ImageURL:  imageURL,
		VideoURL:  videoURL,
		CreatedAt: s.now(),
	}

	if err := s.stories.Create(ctx, record); err != nil {
		return Story{}, fmt.Errorf("create story: %w", err)
	}

	if s.recorder != nil {
		s.recorder.StoryCreated()
	}

	return storyView(record, author), nil
}

// VisibleStories returns the stories the viewer may see: exactly those
// authored by a current friend. The friend set is resolved first and the
// stories filtered by membership, so a friendship change is reflected on
// the very next query.
func (s *Service) VisibleStories(ctx context.Context, viewerID string) ([]Story, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	friendIDs, err := s.graph.Friends(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("resolve friend set: %w", err)
	}
	if len(friendIDs) == 0 {
		return nil, nil
	}

	records, err := s.stories.ListByAuthors(ctx, friendIDs)
	if err != nil {
		return nil, fmt.Errorf("list stories: %w", err)
	}

	stories := make([]Story, 0, len(records))
	for _, record := range records {
		author, err := s.resolve(ctx, record.AuthorID)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		stories = append(stories, storyView(record, author))
	}
	return stories, nil
}

// applyReaction computes the new counter values. Dislikes only move while
// the like counter is positive; both counters only ever grow.
func applyReaction(likes, dislikes int, reaction Reaction) (int, int, bool) {
	switch reaction {
	case ReactionLike:
		return likes + 1, dislikes, true
	case ReactionDislike:
		if likes > 0 {
			return likes, dislikes + 1, true
		}
		return likes, dislikes, false
	default:
		return likes, dislikes, false
	}
}

func (s *Service) postViews(ctx context.Context, records []models.Post) ([]Post, error) {
	posts := make([]Post, 0, len(records))
	for _, record := range records {
		author, err := s.resolve(ctx, record.AuthorID)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		posts = append(posts, postView(record, author))
	}
	return posts, nil
}

func (s *Service) resolve(ctx context.Context, id string) (models.Profile, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.Profile{}, ErrNotFound
		}
		return models.Profile{}, fmt.Errorf("resolve user %s: %w", id, err)
	}
	return user.PublicProfile(), nil
}

func (s *Service) discardMedia(ctx context.Context, urls ...string) {
	if s.media == nil {
		return
	}
	var nonEmpty []string
	for _, url := range urls {
		if url != "" {
			nonEmpty = append(nonEmpty, url)
		}
	}
	if len(nonEmpty) > 0 {
		s.media.Discard(ctx, nonEmpty...)
	}
}

func postView(record models.Post, author models.Profile) Post {
	return Post{
		ID:        record.ID,
		Author:    author,
		Content:   record.Content,
		ImageURL:  record.ImageURL,
		VideoURL:  record.VideoURL,
		Likes:     record.Likes,
		Dislikes:  record.Dislikes,
		CreatedAt: record.CreatedAt,
	}
}

func commentView(record models.Comment, author models.Profile) Comment {
	return Comment{
		ID:        record.ID,
		Author:    author,
		PostID:    record.PostID,
		Content:   record.Content,
		Likes:     record.Likes,
		Dislikes:  record.Dislikes,
		CreatedAt: record.CreatedAt,
	}
}

func storyView(record models.Story, author models.Profile) Story {
	return Story{
		ID:        record.ID,
		Author:    author,
		Content:   record.Content,
		ImageURL:  record.ImageURL,
		VideoURL:  record.VideoURL,
		CreatedAt: record.CreatedAt,
	}
}

func (s *Service) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *Service) now() time.Time {
	if s.NowFunc != nil {
		return s.NowFunc()
	}
	return time.Now().UTC()
}

func (s *Service) newID() string {
	if s.IDFunc != nil {
		return s.IDFunc()
	}
	return uuid.NewString()
}
