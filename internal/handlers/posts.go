package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/mingleapp/backend/internal/content"
	"github.com/mingleapp/backend/internal/logging"
)

// PostHandler implements post endpoints.
type PostHandler struct {
	Content  ContentService
	Sessions SessionManager
}

// Handle dispatches /api/v1/posts by method: GET lists, POST creates,
// DELETE removes.
func (h PostHandler) Handle(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.List(w, r)
	case http.MethodPost:
		h.Create(w, r)
	case http.MethodDelete:
		h.Delete(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// List handles GET /api/v1/posts requests.
func (h PostHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	posts, err := h.Content.ListPosts(ctx)
	if err != nil {
		logging.FromContext(ctx).Error("list posts failed", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to list posts"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, listPayload(posts))
}

// ListByUser handles GET /api/v1/posts/by-user?user= requests.
func (h PostHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	userID := strings.TrimSpace(r.URL.Query().Get("user"))
	if userID == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "user is required"})
		return
	}

	posts, err := h.Content.ListUserPosts(ctx, userID)
	if err != nil {
		logging.FromContext(ctx).Error("list user posts failed", "error", err, "userId", userID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to list posts"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, listPayload(posts))
}

// Create handles POST /api/v1/posts requests.
func (h PostHandler) Create(w http.ResponseWriter, r *http.Request) {
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

	var req createPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid post payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	post, err := h.Content.CreatePost(ctx, userID, req.Content, req.ImageURL, req.VideoURL)
	if err != nil {
		if errors.Is(err, content.ErrEmptyContent) {
			respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "post needs text, an image or a video"})
			return
		}
		logger.Error("create post failed", "error", err, "userId", userID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to create post"})
		return
	}

	respondJSON(ctx, w, http.StatusCreated, map[string]content.Post{"post": post})
}

// Delete handles DELETE /api/v1/posts?id= requests. Only the author may
// delete a post; its comments go with it.
func (h PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	userID, ok := authenticate(w, r, h.Sessions)
	if !ok {
		return
	}

	postID := strings.TrimSpace(r.URL.Query().Get("id"))
	if postID == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "id is required"})
		return
	}

	post, err := h.Content.DeletePost(ctx, userID, postID)
	if err != nil {
		switch {
		case errors.Is(err, content.ErrNotFound):
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "post not found"})
		case errors.Is(err, content.ErrNotOwner):
			respondJSON(ctx, w, http.StatusForbidden, map[string]string{"error": "only the author can delete a post"})
		default:
			logger.Error("delete post failed", "error", err, "postId", postID)
			respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to delete post"})
		}
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]content.Post{"post": post})
}

// React handles PUT /api/v1/posts/react requests. A dislike on a post with
// no likes changes nothing; the response reports the counters either way.
func (h PostHandler) React(w http.ResponseWriter, r *http.Request) {
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

	post, applied, err := h.Content.ReactToPost(ctx, req.ID, reaction)
	if err != nil {
		if errors.Is(err, content.ErrNotFound) {
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "post not found"})
			return
		}
		logger.Error("post reaction failed", "error", err, "postId", req.ID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to record reaction"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, postReactionResponse{Post: post, Applied: applied})
}

type createPostRequest struct {
	Content  string `json:"content"`
	ImageURL string `json:"imageUrl"`
	VideoURL string `json:"videoUrl"`
}

type reactRequest struct {
	ID       string `json:"id"`
	Reaction string `json:"reaction"`
}

type postReactionResponse struct {
	Post    content.Post `json:"post"`
	Applied bool         `json:"applied"`
}

func parseReaction(raw string) (content.Reaction, bool) {
	switch content.Reaction(strings.ToLower(strings.TrimSpace(raw))) {
	case content.ReactionLike:
		return content.ReactionLike, true
	case content.ReactionDislike:
		return content.ReactionDislike, true
	default:
		return "", false
	}
}
