package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mingleapp/backend/internal/content"
	"github.com/mingleapp/backend/internal/logging"
)

// StoryHandler implements story endpoints.
type StoryHandler struct {
	Content  ContentService
	Sessions SessionManager
}

// Handle dispatches /api/v1/stories by method: GET lists, POST creates.
func (h StoryHandler) Handle(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.List(w, r)
	case http.MethodPost:
		h.Create(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// Create handles POST /api/v1/stories requests.
func (h StoryHandler) Create(w http.ResponseWriter, r *http.Request) {
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

	var req createStoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid story payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	story, err := h.Content.CreateStory(ctx, userID, req.Content, req.ImageURL, req.VideoURL)
	if err != nil {
		if errors.Is(err, content.ErrEmptyContent) {
			respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "story needs text, an image or a video"})
			return
		}
		logger.Error("create story failed", "error", err, "userId", userID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to create story"})
		return
	}

	respondJSON(ctx, w, http.StatusCreated, map[string]content.Story{"story": story})
}

// List handles GET /api/v1/stories requests. The viewer only sees stories
// authored by their current friends.
func (h StoryHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	userID, ok := authenticate(w, r, h.Sessions)
	if !ok {
		return
	}

	stories, err := h.Content.VisibleStories(ctx, userID)
	if err != nil {
		logging.FromContext(ctx).Error("list stories failed", "error", err, "userId", userID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to list stories"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, listPayload(stories))
}

type createStoryRequest struct {
	Content  string `json:"content"`
	ImageURL string `json:"imageUrl"`
	VideoURL string `json:"videoUrl"`
}
