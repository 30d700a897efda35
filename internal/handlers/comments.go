package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/mingleapp/backend/internal/content"
	"github.com/mingleapp/backend/internal/logging"
)

// CommentHandler implements comment endpoints.
type CommentHandler struct {
	Content  ContentService
	Sessions SessionManager
}

// Handle dispatches /api/v1/comments by method: GET lists, POST creates.
func (h CommentHandler) Handle(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.List(w, r)
	case http.MethodPost:
		h.Create(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// List handles GET /api/v1/comments?post= requests.
func (h CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	postID := strings.TrimSpace(r.URL.Query().Get("post"))
	if postID == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "post is required"})
		return
	}

	comments, err := h.Content.ListComments(ctx, postID)
	if err != nil {
		logging.FromContext(ctx).Error("list comments failed", "error", err, "postId", postID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to list comments"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, listPayload(comments))
}

// Create handles POST /api/v1/comments requests.
func (h CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
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

	var req createCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid comment payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if strings.TrimSpace(req.PostID) == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "postId is required"})
		return
	}

	comment, err := h.Content.CreateComment(ctx, userID, req.PostID, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, content.ErrEmptyContent):
			respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "comment text is required"})
		case errors.Is(err, content.ErrNotFound):
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "post not found"})
		default:
			logger.Error("create comment failed", "error", err, "postId", req.PostID)
			respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to create comment"})
		}
		return
	}

	respondJSON(ctx, w, http.StatusCreated, map[string]content.Comment{"comment": comment})
}

// React handles PUT /api/v1/comments/react requests under the same like and
// dislike rules as posts.
func (h CommentHandler) React(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	var req reactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid reaction payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	reaction, ok := parseReaction(req.Reaction)
	if !ok || req.ID == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "id and a reaction of like or dislike are required"})
		return
	}

	comment, applied, err := h.Content.ReactToComment(ctx, req.ID, reaction)
	if err != nil {
		if errors.Is(err, content.ErrNotFound) {
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "comment not found"})
			return
		}
		logger.Error("comment reaction failed", "error", err, "commentId", req.ID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to record reaction"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, commentReactionResponse{Comment: comment, Applied: applied})
}

type createCommentRequest struct {
	PostID  string `json:"postId"`
	Content string `json:"content"`
}

type commentReactionResponse struct {
	Comment content.Comment `json:"comment"`
	Applied bool            `json:"applied"`
}
