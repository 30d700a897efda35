package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/mingleapp/backend/internal/logging"
	"github.com/mingleapp/backend/internal/models"
	"github.com/mingleapp/backend/internal/relationships"
)

// FriendHandler implements the friend-request endpoints.
type FriendHandler struct {
	Relationships RelationshipEngine
	Sessions      SessionManager
}

// SendRequest handles POST /api/v1/friends/requests. A request carries a
// mandatory introductory message and only one may be pending per direction.
func (h FriendHandler) SendRequest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	userID, ok := authenticate(w, r, h.Sessions)
	if !ok {
		return
	}

	var req sendFriendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid friend request payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if strings.TrimSpace(req.To) == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "to is required"})
		return
	}

	request, err := h.Relationships.Send(ctx, userID, req.To, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, relationships.ErrEmptyMessage):
			respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "an introductory message is required"})
		case errors.Is(err, relationships.ErrSelfRequest):
			respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "cannot send a friend request to yourself"})
		case errors.Is(err, relationships.ErrUserNotFound):
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "user not found"})
		case errors.Is(err, relationships.ErrDuplicateRequest):
			respondJSON(ctx, w, http.StatusConflict, map[string]string{"error": "friend request already pending"})
		default:
			logger.Error("send friend request failed", "error", err, "from", userID, "to", req.To)
			respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to send friend request"})
		}
		return
	}

	respondJSON(ctx, w, http.StatusCreated, map[string]relationships.Request{"request": request})
}

// ListSent handles GET /api/v1/friends/requests/sent.
func (h FriendHandler) ListSent(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.Relationships.Sent)
}

// ListReceived handles GET /api/v1/friends/requests/received.
func (h FriendHandler) ListReceived(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.Relationships.Received)
}

func (h FriendHandler) list(w http.ResponseWriter, r *http.Request, load func(ctx context.Context, userID string) ([]relationships.Request, error)) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	userID, ok := authenticate(w, r, h.Sessions)
	if !ok {
		return
	}

	requests, err := load(ctx, userID)
	if err != nil {
		logging.FromContext(ctx).Error("list friend requests failed", "error", err, "userId", userID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to list friend requests"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, listPayload(requests))
}

// Accept handles POST /api/v1/friends/accept. Acceptance makes the
// friendship mutual and removes the pending request; the response carries
// the acceptor's profile with its friend set resolved.
func (h FriendHandler) Accept(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	userID, ok := authenticate(w, r, h.Sessions)
	if !ok {
		return
	}

	var req acceptFriendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid accept payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if strings.TrimSpace(req.RequestID) == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "requestId is required"})
		return
	}

	profile, err := h.Relationships.Accept(ctx, userID, req.RequestID)
	if err != nil {
		switch {
		case errors.Is(err, relationships.ErrRequestNotFound):
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "friend request not found"})
		case errors.Is(err, relationships.ErrUserNotFound):
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "user not found"})
		default:
			logger.Error("accept friend request failed", "error", err, "requestId", req.RequestID)
			respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to accept friend request"})
		}
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]models.Profile{"profile": profile})
}

type sendFriendRequest struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

type acceptFriendRequest struct {
	RequestID string `json:"requestId"`
}
