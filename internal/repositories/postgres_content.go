package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mingleapp/backend/internal/db"
	"github.com/mingleapp/backend/internal/models"
)

const postColumns = `id, author_id, content, image_url, video_url, likes, dislikes, created_at`

// PostgresPostRepository provides PostgreSQL-backed persistence for posts.
type PostgresPostRepository struct {
	pool db.Pool
}

// NewPostgresPostRepository constructs a post repository backed by PostgreSQL.
func NewPostgresPostRepository(pool db.Pool) *PostgresPostRepository {
	return &PostgresPostRepository{pool: pool}
}

// Create stores a new post record.
func (r *PostgresPostRepository) Create(ctx context.Context, post models.Post) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO posts (id, author_id, content, image_url, video_url, likes, dislikes, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `, post.ID, post.AuthorID, post.Content, post.ImageURL, post.VideoURL, post.Likes, post.Dislikes, post.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrNotFound
		}
		return fmt.Errorf("insert post: %w", err)
	}

	return nil
}

// FindByID fetches a post by identifier.
func (r *PostgresPostRepository) FindByID(ctx context.Context, id string) (models.Post, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Post{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var post models.Post
	row := conn.QueryRow(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id)
	if err := scanPost(row, &post); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Post{}, ErrNotFound
		}
		return models.Post{}, fmt.Errorf("select post: %w", err)
	}

	return post, nil
}

// List returns every post, newest first.
func (r *PostgresPostRepository) List(ctx context.Context) ([]models.Post, error) {
	return r.findMany(ctx, `SELECT `+postColumns+` FROM posts ORDER BY created_at DESC`)
}

// ListByAuthor returns the author's posts, newest first.
func (r *PostgresPostRepository) ListByAuthor(ctx context.Context, authorID string) ([]models.Post, error) {
	return r.findMany(ctx, `
        SELECT `+postColumns+`
        FROM posts
        WHERE author_id = $1
        ORDER BY created_at DESC
    `, authorID)
}

func (r *PostgresPostRepository) findMany(ctx context.Context, query string, args ...any) ([]models.Post, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()

	var posts []models.Post
	for rows.Next() {
		var post models.Post
		if err := scanPost(rows, &post); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}

	return posts, nil
}

// UpdateCounters overwrites the reaction counters for a post. Concurrent
// reactions are last-write-wins; counts never go below zero because callers
// only ever increment a freshly read value.
func (r *PostgresPostRepository) UpdateCounters(ctx context.Context, id string, likes, dislikes int) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE posts SET likes = $2, dislikes = $3 WHERE id = $1
    `, id, likes, dislikes)
	if err != nil {
		return fmt.Errorf("update post counters: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes a post by identifier.
func (r *PostgresPostRepository) Delete(ctx context.Context, id string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// DeleteByAuthor removes every post owned by the author, returning the
// deleted rows so comment and media cleanup can follow.
func (r *PostgresPostRepository) DeleteByAuthor(ctx context.Context, authorID string) ([]models.Post, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        DELETE FROM posts WHERE author_id = $1
        RETURNING `+postColumns+`
    `, authorID)
	if err != nil {
		return nil, fmt.Errorf("delete posts by author: %w", err)
	}
	defer rows.Close()

	var posts []models.Post
	for rows.Next() {
		var post models.Post
		if err := scanPost(rows, &post); err != nil {
			return nil, fmt.Errorf("scan deleted post: %w", err)
		}
		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate deleted posts: %w", err)
	}

	return posts, nil
}

func scanPost(row pgx.Row, post *models.Post) error {
	return row.Scan(&post.ID, &post.AuthorID, &post.Content, &post.ImageURL, &post.VideoURL, &post.Likes, &post.Dislikes, &post.CreatedAt)
}

const commentColumns = `id, author_id, post_id, content, likes, dislikes, created_at`

// PostgresCommentRepository provides PostgreSQL-backed persistence for comments.
type PostgresCommentRepository struct {
	pool db.Pool
}

// NewPostgresCommentRepository constructs a comment repository backed by PostgreSQL.
func NewPostgresCommentRepository(pool db.Pool) *PostgresCommentRepository {
	return &PostgresCommentRepository{pool: pool}
}

// Create stores a new comment record.
func (r *PostgresCommentRepository) Create(ctx context.Context, comment models.Comment) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO comments (id, author_id, post_id, content, likes, dislikes, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `, comment.ID, comment.AuthorID, comment.PostID, comment.Content, comment.Likes, comment.Dislikes, comment.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrNotFound
		}
		return fmt.Errorf("insert comment: %w", err)
	}

	return nil
}

// FindByID fetches a comment by identifier.
func (r *PostgresCommentRepository) FindByID(ctx context.Context, id string) (models.Comment, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Comment{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var comment models.Comment
	row := conn.QueryRow(ctx, `SELECT `+commentColumns+` FROM comments WHERE id = $1`, id)
	if err := row.Scan(&comment.ID, &comment.AuthorID, &comment.PostID, &comment.Content, &comment.Likes, &comment.Dislikes, &comment.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Comment{}, ErrNotFound
		}
		return models.Comment{}, fmt.Errorf("select comment: %w", err)
	}

	return comment, nil
}

// ListByPost returns the comments for a post, oldest first.
func (r *PostgresCommentRepository) ListByPost(ctx context.Context, postID string) ([]models.Comment, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT `+commentColumns+`
        FROM comments
        WHERE post_id = $1
        ORDER BY created_at
    `, postID)
	if err != nil {
		return nil, fmt.Errorf("query comments: %w", err)
	}
	defer rows.Close()

	var comments []models.Comment
	for rows.Next() {
		var comment models.Comment
		if err := rows.Scan(&comment.ID, &comment.AuthorID, &comment.PostID, &comment.Content, &comment.Likes, &comment.Dislikes, &comment.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, comment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments: %w", err)
	}

	return comments, nil
}

// UpdateCounters overwrites the reaction counters for a comment.
func (r *PostgresCommentRepository) UpdateCounters(ctx context.Context, id string, likes, dislikes int) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE comments SET likes = $2, dislikes = $3 WHERE id = $1
    `, id, likes, dislikes)
	if err != nil {
		return fmt.Errorf("update comment counters: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// DeleteByPost removes every comment attached to the post.
func (r *PostgresCommentRepository) DeleteByPost(ctx context.Context, postID string) (int64, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `DELETE FROM comments WHERE post_id = $1`, postID)
	if err != nil {
		return 0, fmt.Errorf("delete comments by post: %w", err)
	}

	return tag.RowsAffected(), nil
}

// DeleteByAuthor removes every comment the author wrote.
func (r *PostgresCommentRepository) DeleteByAuthor(ctx context.Context, authorID string) (int64, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `DELETE FROM comments WHERE author_id = $1`, authorID)
	if err != nil {
		return 0, fmt.Errorf("delete comments by author: %w", err)
	}

	return tag.RowsAffected(), nil
}

const storyColumns = `id, author_id, content, image_url, video_url, created_at`

// PostgresStoryRepository provides PostgreSQL-backed persistence for stories.
type PostgresStoryRepository struct {
	pool db.Pool
}

// NewPostgresStoryRepository constructs a story repository backed by PostgreSQL.
func NewPostgresStoryRepository(pool db.Pool) *PostgresStoryRepository {
	return &PostgresStoryRepository{pool: pool}
}

// Create stores a new story record.
func (r *PostgresStoryRepository) Create(ctx context.Context, story models.Story) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO stories (id, author_id, content, image_url, video_url, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `, story.ID, story.AuthorID, story.Content, story.ImageURL, story.VideoURL, story.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrNotFound
		}
		return fmt.Errorf("insert story: %w", err)
	}

	return nil
}

// ListByAuthors returns stories authored by any member of the id set,
// newest first. An empty set yields an empty result.
func (r *PostgresStoryRepository) ListByAuthors(ctx context.Context, authorIDs []string) ([]models.Story, error) {
	if len(authorIDs) == 0 {
		return nil, nil
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT `+storyColumns+`
        FROM stories
        WHERE author_id = ANY($1)
        ORDER BY created_at DESC
    `, authorIDs)
	if err != nil {
		return nil, fmt.Errorf("query stories: %w", err)
	}
	defer rows.Close()

	return collectStories(rows)
}

// DeleteByAuthor removes every story owned by the author, returning the
// deleted rows for media cleanup.
func (r *PostgresStoryRepository) DeleteByAuthor(ctx context.Context, authorID string) ([]models.Story, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        DELETE FROM stories WHERE author_id = $1
        RETURNING `+storyColumns+`
    `, authorID)
	if err != nil {
		return nil, fmt.Errorf("delete stories by author: %w", err)
	}
	defer rows.Close()

	return collectStories(rows)
}

func collectStories(rows pgx.Rows) ([]models.Story, error) {
	var stories []models.Story
	for rows.Next() {
		var story models.Story
		if err := rows.Scan(&story.ID, &story.AuthorID, &story.Content, &story.ImageURL, &story.VideoURL, &story.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan story: %w", err)
		}
		stories = append(stories, story)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stories: %w", err)
	}

	return stories, nil
}

var _ PostRepository = (*PostgresPostRepository)(nil)
var _ CommentRepository = (*PostgresCommentRepository)(nil)
var _ StoryRepository = (*PostgresStoryRepository)(nil)
