package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/mingleapp/backend/internal/content"
	"github.com/mingleapp/backend/internal/logging"
	"github.com/mingleapp/backend/internal/models"
	"github.com/mingleapp/backend/internal/repositories"
)

// UserHandler implements profile, directory and account endpoints.
type UserHandler struct {
	Users         UserStore
	Sessions      SessionManager
	Relationships RelationshipEngine
	Cascader      AccountCascader
}

// List handles GET /api/v1/users requests. Every profile is returned with
// its friend set resolved.
func (h UserHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	users, err := h.Users.List(ctx)
	if err != nil {
		logger.Error("list users failed", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to list users"})
		return
	}

	profiles := make([]models.Profile, 0, len(users))
	for _, user := range users {
		profile, err := h.Relationships.ProfileWithFriends(ctx, user.ID)
		if err != nil {
			logger.Error("resolve user friends failed", "error", err, "userId", user.ID)
			respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to list users"})
			return
		}
		profiles = append(profiles, profile)
	}

	respondJSON(ctx, w, http.StatusOK, listPayload(profiles))
}

// Search handles GET /api/v1/users/search?query= requests. Matching is a
// case-insensitive substring on username and never returns the searcher.
func (h UserHandler) Search(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	userID, ok := authenticate(w, r, h.Sessions)
	if !ok {
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "query is required"})
		return
	}

	users, err := h.Users.Search(ctx, query, userID)
	if err != nil {
		logger.Error("user search failed", "error", err, "query", query)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to search users"})
		return
	}

	profiles := make([]models.Profile, 0, len(users))
	for _, user := range users {
		profiles = append(profiles, user.PublicProfile())
	}

	respondJSON(ctx, w, http.StatusOK, listPayload(profiles))
}

// UpdateProfile handles PUT /api/v1/users/profile requests.
func (h UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	userID, ok := authenticate(w, r, h.Sessions)
	if !ok {
		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid profile payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.AvatarURL = strings.TrimSpace(req.AvatarURL)
	if req.Username == "" && req.AvatarURL == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "username or avatar url is required"})
		return
	}

	user, err := h.Users.FindByID(ctx, userID)
	if err != nil {
		logger.Error("profile lookup failed", "error", err, "userId", userID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to load profile"})
		return
	}

	if req.Username != "" {
		user.Username = req.Username
	}
	if req.AvatarURL != "" {
		user.AvatarURL = req.AvatarURL
	}

	if err := h.Users.Update(ctx, user); err != nil {
		logger.Error("profile update failed", "error", err, "userId", userID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to update profile"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]models.Profile{"profile": user.PublicProfile()})
}

// DeleteAccount handles DELETE /api/v1/users/account requests. The account
// and everything that depends on it is removed before success is reported.
func (h UserHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
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

	profile, err := h.Cascader.DeleteAccount(ctx, userID)
	if err != nil {
		if errors.Is(err, content.ErrNotFound) || errors.Is(err, repositories.ErrNotFound) {
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "account not found"})
			return
		}
		logger.Error("account deletion failed", "error", err, "userId", userID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to delete account"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]models.Profile{"profile": profile})
}

type updateProfileRequest struct {
	Username  string `json:"username"`
	AvatarURL string `json:"avatarUrl"`
}
