package handlers

import (
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/mingleapp/backend/internal/logging"
)

// maxUploadBytes caps a single media upload at 32 MiB.
const maxUploadBytes = 32 << 20

// MediaHandler accepts media uploads and stores them in object storage.
type MediaHandler struct {
	Store    MediaStore
	Sessions SessionManager
	IDFunc   func() string
}

// Upload handles POST /api/v1/media multipart requests. The object is
// stored under the uploader's id and its public URL returned for use in
// avatar, post and story fields.
func (h MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Store == nil {
		logger.Error("media store unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "media storage unavailable"})
		return
	}

	userID, ok := authenticate(w, r, h.Sessions)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		logger.Warn("invalid media upload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "a file field is required"})
		return
	}
	defer file.Close()

	name := path.Base(strings.TrimSpace(header.Filename))
	if name == "" || name == "." || name == "/" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "file name is required"})
		return
	}

	key := fmt.Sprintf("%s/%s-%s", userID, h.newID(), name)
	location, err := h.Store.Save(ctx, key, file)
	if err != nil {
		logger.Error("media upload failed", "error", err, "key", key)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to store media"})
		return
	}

	respondJSON(ctx, w, http.StatusCreated, map[string]string{"url": location})
}

func (h MediaHandler) newID() string {
	if h.IDFunc != nil {
		return h.IDFunc()
	}
	return uuid.NewString()
}
