package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/mingleapp/backend/internal/logging"
)

// listResponse is the envelope for collection reads. Items is always a
// JSON array, never null, so clients can branch on hasResults without
// probing for sentinel values.
type listResponse struct {
	Items      any  `json:"items"`
	HasResults bool `json:"hasResults"`
}

func listPayload[T any](items []T) listResponse {
	if items == nil {
		items = []T{}
	}
	return listResponse{Items: items, HasResults: len(items) > 0}
}

func respondJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.FromContext(ctx).Error("encode response body", "status", status, "error", err)
		return
	}

	logger := logging.FromContext(ctx)
	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("request failed", "status", status, "response", payload)
	case status >= http.StatusBadRequest:
		logger.Warn("request returned client error", "status", status, "response", payload)
	}
}

// authenticate resolves the bearer token on the request to a user id. On
// failure it writes a 401 response and reports false.
func authenticate(w http.ResponseWriter, r *http.Request, sessions SessionManager) (string, bool) {
	ctx := r.Context()

	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	token = strings.TrimSpace(token)
	if !ok || token == "" {
		respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "missing bearer token"})
		return "", false
	}

	userID, err := sessions.Authenticate(ctx, token)
	if err != nil {
		logging.FromContext(ctx).Warn("bearer token rejected", "error", err)
		respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "invalid or expired token"})
		return "", false
	}
	return userID, true
}
