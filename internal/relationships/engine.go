// Package relationships implements the friend-request workflow: sending,
// listing, and accepting requests, and materializing the symmetric
// friendship graph on acceptance.
package relationships

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mingleapp/backend/internal/logging"
	"github.com/mingleapp/backend/internal/models"
	"github.com/mingleapp/backend/internal/repositories"
)

var (
	// ErrEmptyMessage indicates the sender did not provide an introductory message.
	ErrEmptyMessage = errors.New("introductory message is required")
	// ErrSelfRequest indicates a user attempted to befriend themselves.
	ErrSelfRequest = errors.New("cannot send a friend request to yourself")
	// ErrDuplicateRequest indicates an outstanding request already exists
	// for the same ordered sender/recipient pair.
	ErrDuplicateRequest = errors.New("friend request already pending")
	// ErrUserNotFound indicates a referenced user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrRequestNotFound indicates the referenced friend request does not exist.
	ErrRequestNotFound = errors.New("friend request not found")
)

// RequestStore captures the friend-request persistence used by the engine.
type RequestStore interface {
	Create(ctx context.Context, request models.FriendRequest) error
	FindByID(ctx context.Context, id string) (models.FriendRequest, error)
	FindPending(ctx context.Context, fromID, toID string) (models.FriendRequest, error)
	ListSent(ctx context.Context, fromID string) ([]models.FriendRequest, error)
	ListReceived(ctx context.Context, toID string) ([]models.FriendRequest, error)
	Delete(ctx context.Context, id string) error
}

// Graph captures the friendship-edge persistence used by the engine.
type Graph interface {
	AddFriend(ctx context.Context, userID, friendID string) error
	Friends(ctx context.Context, userID string) ([]string, error)
}

// UserResolver looks up user records so request endpoints and friend sets
// can be returned as public profiles.
type UserResolver interface {
	FindByID(ctx context.Context, id string) (models.User, error)
}

// Recorder receives engine events for metrics. Implementations must be
// cheap and non-blocking.
type Recorder interface {
	FriendRequestSent()
	FriendRequestAccepted()
}

// Request is a friend request with both endpoints resolved to profiles.
type Request struct {
	ID        string         `json:"id"`
	From      models.Profile `json:"from"`
	To        models.Profile `json:"to"`
	Message   string         `json:"message"`
	CreatedAt time.Time      `json:"createdAt"`
}

// Engine drives the friend-request state machine. The only transition is
// pending -> accepted; an unaccepted request stays pending indefinitely.
type Engine struct {
	requests RequestStore
	graph    Graph
	users    UserResolver
	recorder Recorder
	timeout  time.Duration

	NowFunc func() time.Time
	IDFunc  func() string
}

// NewEngine constructs a relationship engine. recorder may be nil; timeout
// bounds each persistence interaction when positive.
func NewEngine(requests RequestStore, graph Graph, users UserResolver, recorder Recorder, timeout time.Duration) *Engine {
	return &Engine{
		requests: requests,
		graph:    graph,
		users:    users,
		recorder: recorder,
		timeout:  timeout,
	}
}

// Send creates a pending friend request from fromID to toID. Direction is
// significant: a pending request in the opposite direction does not block
// a new one.
func (e *Engine) Send(ctx context.Context, fromID, toID, message string) (Request, error) {
	ctx, cancel := e.bound(ctx)
	defer cancel()

	if strings.TrimSpace(message) == "" {
		return Request{}, ErrEmptyMessage
	}
	if fromID == toID {
		return Request{}, ErrSelfRequest
	}

	from, err := e.resolve(ctx, fromID)
	if err != nil {
		return Request{}, err
	}
	to, err := e.resolve(ctx, toID)
	if err != nil {
		return Request{}, err
	}

	if _, err := e.requests.FindPending(ctx, fromID, toID); err == nil {
		return Request{}, ErrDuplicateRequest
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return Request{}, fmt.Errorf("check pending request: %w", err)
	}

	record := models.FriendRequest{
		ID:        e.newID(),
		FromID:    fromID,
		ToID:      toID,
		Message:   message,
		CreatedAt: e.now(),
	}

	if err := e.requests.Create(ctx, record); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			return Request{}, ErrDuplicateRequest
		}
		return Request{}, fmt.Errorf("create friend request: %w", err)
	}

	if e.recorder != nil {
		e.recorder.FriendRequestSent()
	}

	return Request{ID: record.ID, From: from, To: to, Message: record.Message, CreatedAt: record.CreatedAt}, nil
}

// Sent returns every request the user has sent. An empty slice is a valid,
// non-error result.
func (e *Engine) Sent(ctx context.Context, userID string) ([]Request, error) {
	ctx, cancel := e.bound(ctx)
	defer cancel()

	records, err := e.requests.ListSent(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list sent requests: %w", err)
	}
	return e.resolveAll(ctx, records)
}

// Received returns every request addressed to the user.
func (e *Engine) Received(ctx context.Context, userID string) ([]Request, error) {
	ctx, cancel := e.bound(ctx)
	defer cancel()

	records, err := e.requests.ListReceived(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list received requests: %w", err)
	}
	return e.resolveAll(ctx, records)
}

// Accept materializes the friendship edge for the request and removes the
// request record. Both edge directions are written before the request is
// deleted: a crash in between leaves the request intact, and because edge
// insertion is idempotent a retried accept converges on the same state.
func (e *Engine) Accept(ctx context.Context, acceptorID, requestID string) (models.Profile, error) {
	ctx, cancel := e.bound(ctx)
	defer cancel()

	ctx, span := logging.StartSpan(ctx, "relationships.accept")
	defer span.End()

	request, err := e.requests.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.Profile{}, ErrRequestNotFound
		}
		return models.Profile{}, fmt.Errorf("find friend request: %w", err)
	}

	if err := e.graph.AddFriend(ctx, request.FromID, request.ToID); err != nil {
		return models.Profile{}, fmt.Errorf("add friend edge: %w", err)
	}
	if err := e.graph.AddFriend(ctx, request.ToID, request.FromID); err != nil {
		return models.Profile{}, fmt.Errorf("add reverse friend edge: %w", err)
	}

	if err := e.requests.Delete(ctx, requestID); err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return models.Profile{}, fmt.Errorf("delete accepted request: %w", err)
	}

	if e.recorder != nil {
		e.recorder.FriendRequestAccepted()
	}

	return e.ProfileWithFriends(ctx, acceptorID)
}

// ProfileWithFriends returns the user's public profile with the friend set
// resolved to nested profiles.
func (e *Engine) ProfileWithFriends(ctx context.Context, userID string) (models.Profile, error) {
	profile, err := e.resolve(ctx, userID)
	if err != nil {
		return models.Profile{}, err
	}

	friendIDs, err := e.graph.Friends(ctx, userID)
	if err != nil {
		return models.Profile{}, fmt.Errorf("list friends: %w", err)
	}

	for _, id := range friendIDs {
		friend, err := e.resolve(ctx, id)
		if err != nil {
			if errors.Is(err, ErrUserNotFound) {
				continue
			}
			return models.Profile{}, err
		}
		profile.Friends = append(profile.Friends, friend)
	}

	return profile, nil
}

func (e *Engine) resolveAll(ctx context.Context, records []models.FriendRequest) ([]Request, error) {
	requests := make([]Request, 0, len(records))
	profiles := make(map[string]models.Profile)

	lookup := func(id string) (models.Profile, error) {
		if profile, ok := profiles[id]; ok {
			return profile, nil
		}
		profile, err := e.resolve(ctx, id)
		if err != nil {
			return models.Profile{}, err
		}
		profiles[id] = profile
		return profile, nil
	}

	for _, record := range records {
		from, err := lookup(record.FromID)
		if err != nil && !errors.Is(err, ErrUserNotFound) {
			return nil, err
		}
		to, err := lookup(record.ToID)
		if err != nil && !errors.Is(err, ErrUserNotFound) {
			return nil, err
		}
		requests = append(requests, Request{
			ID:        record.ID,
			From:      from,
			To:        to,
			Message:   record.Message,
			CreatedAt: record.CreatedAt,
		})
	}

	return requests, nil
}

func (e *Engine) resolve(ctx context.Context, id string) (models.Profile, error) {
	user, err := e.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.Profile{}, ErrUserNotFound
		}
		return models.Profile{}, fmt.Errorf("resolve user %s: %w", id, err)
	}
	return user.PublicProfile(), nil
}

func (e *Engine) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, e.timeout)
}

func (e *Engine) now() time.Time {
	if e.NowFunc != nil {
		return e.NowFunc()
	}
	return time.Now().UTC()
}

func (e *Engine) newID() string {
	if e.IDFunc != nil {
		return e.IDFunc()
	}
	return uuid.NewString()
}
