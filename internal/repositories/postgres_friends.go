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

const friendRequestColumns = `id, from_id, to_id, message, created_at`

// PostgresFriendRequestRepository provides PostgreSQL-backed persistence
// for friend requests.
type PostgresFriendRequestRepository struct {
	pool db.Pool
}

// NewPostgresFriendRequestRepository constructs a friend request repository
// backed by PostgreSQL.
func NewPostgresFriendRequestRepository(pool db.Pool) *PostgresFriendRequestRepository {
	return &PostgresFriendRequestRepository{pool: pool}
}

// Create persists a new friend request. The unique (from_id, to_id) index
// rejects a second outstanding request for the same ordered pair.
func (r *PostgresFriendRequestRepository) Create(ctx context.Context, request models.FriendRequest) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO friend_requests (id, from_id, to_id, message, created_at)
        VALUES ($1, $2, $3, $4, $5)
    `, request.ID, request.FromID, request.ToID, request.Message, request.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return ErrConflict
			case "23503":
				return ErrNotFound
			}
		}
		return fmt.Errorf("insert friend request: %w", err)
	}

	return nil
}

// FindByID fetches a friend request by identifier.
func (r *PostgresFriendRequestRepository) FindByID(ctx context.Context, id string) (models.FriendRequest, error) {
	return r.findOne(ctx, `SELECT `+friendRequestColumns+` FROM friend_requests WHERE id = $1`, id)
}

// FindPending looks up the outstanding request for the ordered pair.
func (r *PostgresFriendRequestRepository) FindPending(ctx context.Context, fromID, toID string) (models.FriendRequest, error) {
	return r.findOne(ctx, `
        SELECT `+friendRequestColumns+`
        FROM friend_requests
        WHERE from_id = $1 AND to_id = $2
    `, fromID, toID)
}

func (r *PostgresFriendRequestRepository) findOne(ctx context.Context, query string, args ...any) (models.FriendRequest, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.FriendRequest{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var req models.FriendRequest
	row := conn.QueryRow(ctx, query, args...)
	if err := row.Scan(&req.ID, &req.FromID, &req.ToID, &req.Message, &req.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.FriendRequest{}, ErrNotFound
		}
		return models.FriendRequest{}, fmt.Errorf("select friend request: %w", err)
	}

	return req, nil
}

// ListSent returns requests sent by the user, newest first.
func (r *PostgresFriendRequestRepository) ListSent(ctx context.Context, fromID string) ([]models.FriendRequest, error) {
	return r.findMany(ctx, `
        SELECT `+friendRequestColumns+`
        FROM friend_requests
        WHERE from_id = $1
        ORDER BY created_at DESC
    `, fromID)
}

// ListReceived returns requests addressed to the user, newest first.
func (r *PostgresFriendRequestRepository) ListReceived(ctx context.Context, toID string) ([]models.FriendRequest, error) {
	return r.findMany(ctx, `
        SELECT `+friendRequestColumns+`
        FROM friend_requests
        WHERE to_id = $1
        ORDER BY created_at DESC
    `, toID)
}

func (r *PostgresFriendRequestRepository) findMany(ctx context.Context, query string, args ...any) ([]models.FriendRequest, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query friend requests: %w", err)
	}
	defer rows.Close()

	var requests []models.FriendRequest
	for rows.Next() {
		var req models.FriendRequest
		if err := rows.Scan(&req.ID, &req.FromID, &req.ToID, &req.Message, &req.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan friend request: %w", err)
		}
		requests = append(requests, req)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate friend requests: %w", err)
	}

	return requests, nil
}

// Delete removes a friend request by identifier.
func (r *PostgresFriendRequestRepository) Delete(ctx context.Context, id string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `DELETE FROM friend_requests WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete friend request: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// DeleteForUser removes every request where the user is either endpoint.
func (r *PostgresFriendRequestRepository) DeleteForUser(ctx context.Context, userID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        DELETE FROM friend_requests WHERE from_id = $1 OR to_id = $1
    `, userID)
	if err != nil {
		return fmt.Errorf("delete friend requests for user: %w", err)
	}

	return nil
}

var _ FriendRequestRepository = (*PostgresFriendRequestRepository)(nil)
