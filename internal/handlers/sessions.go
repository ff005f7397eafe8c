package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/sketchworks/sketchify/internal/models"
	"github.com/sketchworks/sketchify/internal/storage"
	"github.com/sketchworks/sketchify/internal/texture"
)

func (h *Handler) HandleSessions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		h.writeJSON(w, h.sessionStore.Snapshots())
	case "POST":
		h.handleCreateSession(w, r)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleSessionDetail routes /api/sessions/{id} and its subresources
// (/source, /generate, /image).
func (h *Handler) HandleSessionDetail(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/sessions/")
	sessionID, sub, _ := strings.Cut(path, "/")

	switch sub {
	case "":
		h.handleSession(w, r, sessionID)
	case "source":
		h.handleSource(w, r, sessionID)
	case "generate":
		h.HandleGenerate(w, r, sessionID)
	case "image":
		h.handleImage(w, r, sessionID)
	default:
		h.writeError(w, "Not found", http.StatusNotFound)
	}
}

func (h *Handler) handleSession(w http.ResponseWriter, r *http.Request, sessionID string) {
	if _, ok := h.getSessionOrError(w, sessionID); !ok {
		return
	}

	switch r.Method {
	case "GET":
		session, _ := h.sessionStore.Snapshot(sessionID)
		h.writeJSON(w, session)
	case "PUT":
		h.handleUpdateSession(w, r, sessionID)
	case "DELETE":
		h.sessionStore.Delete(sessionID)
		w.WriteHeader(http.StatusNoContent)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleUpdateSession adjusts the sketch settings ahead of the next attempt.
// The photo and any outcome are untouched; a busy session cannot be updated.
func (h *Handler) handleUpdateSession(w http.ResponseWriter, r *http.Request, sessionID string) {
	var request struct {
		Texture  *string  `json:"texture"`
		Captions []string `json:"captions"`
		Provider *string  `json:"provider"`
		Model    *string  `json:"model"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	var tex *texture.Texture
	if request.Texture != nil {
		t, err := texture.Lookup(*request.Texture)
		if err != nil {
			h.writeError(w, err.Error(), http.StatusBadRequest)
			return
		}
		tex = &t
	}

	err := h.sessionStore.Update(sessionID, func(session *models.SketchSession) error {
		if session.Busy {
			return storage.ErrSessionBusy
		}
		if tex != nil {
			session.Texture = tex.Name
		}
		if request.Captions != nil {
			session.Captions = request.Captions
		}
		if request.Provider != nil {
			session.Provider = *request.Provider
		}
		if request.Model != nil {
			session.Model = *request.Model
		}
		return nil
	})
	if err != nil {
		h.writeStorageError(w, err)
		return
	}

	session, _ := h.sessionStore.Snapshot(sessionID)
	h.writeJSON(w, session)
}

// handleCreateSession creates a session from an uploaded photo, either a
// multipart file or a JSON body carrying an image URL.
func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	img, err := h.readSourceImage(w, r)
	if err != nil {
		return
	}

	baseFilename := strings.TrimSuffix(img.Filename, filepath.Ext(img.Filename))
	if baseFilename == "" {
		baseFilename = "photo"
	}
	sessionID := fmt.Sprintf("%s_%d", baseFilename, time.Now().UnixNano())

	now := time.Now()
	session := &models.SketchSession{
		ID:        sessionID,
		Source:    img,
		CreatedAt: now,
		UpdatedAt: now,
	}
	h.sessionStore.Set(sessionID, session)

	h.writeJSON(w, map[string]any{
		"session_id": sessionID,
		"message":    "Successfully uploaded photo",
	})
}

// handleSource replaces the session's photo or serves its bytes. Replacing
// the photo clears any previous sketch and error.
func (h *Handler) handleSource(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, exists := h.sessionStore.Snapshot(sessionID)
	if !exists {
		h.writeError(w, "Session not found", http.StatusNotFound)
		return
	}

	switch r.Method {
	case "GET":
		if session.Source == nil {
			h.writeError(w, "Session has no source image", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", session.Source.MIMEType)
		if _, err := w.Write(session.Source.Data); err != nil {
			h.writeError(w, "Failed to write image", http.StatusInternalServerError)
		}
	case "POST":
		img, err := h.readSourceImage(w, r)
		if err != nil {
			return
		}
		if err := h.sessionStore.SetSource(sessionID, img); err != nil {
			h.writeStorageError(w, err)
			return
		}
		updated, _ := h.sessionStore.Snapshot(sessionID)
		h.writeJSON(w, updated)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleImage(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != "GET" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, exists := h.sessionStore.Snapshot(sessionID)
	if !exists {
		h.writeError(w, "Session not found", http.StatusNotFound)
		return
	}
	if session.Generated == nil {
		h.writeError(w, "Session has no generated image", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", session.Generated.MIMEType)
	if _, err := w.Write(session.Generated.Data); err != nil {
		h.writeError(w, "Failed to write image", http.StatusInternalServerError)
	}
}

// readSourceImage extracts photo bytes from a multipart or JSON-URL request.
// On failure it writes the HTTP error itself and returns a non-nil error so
// callers just bail out.
func (h *Handler) readSourceImage(w http.ResponseWriter, r *http.Request) (*models.Image, error) {
	contentType := r.Header.Get("Content-Type")
	if strings.Contains(contentType, "application/json") {
		return h.readSourceImageFromURL(w, r)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		file, header, err = r.FormFile("files")
		if err != nil {
			h.writeError(w, "Failed to read file: "+err.Error(), http.StatusBadRequest)
			return nil, err
		}
	}
	defer file.Close()

	fileData, err := io.ReadAll(io.LimitReader(file, h.cfg.MaxUploadSize))
	if err != nil {
		h.writeError(w, "Failed to read file contents: "+err.Error(), http.StatusInternalServerError)
		return nil, err
	}
	if int64(len(fileData)) >= h.cfg.MaxUploadSize {
		err := fmt.Errorf("file too large (max %d bytes)", h.cfg.MaxUploadSize)
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return nil, err
	}

	img, err := sourceImageFromBytes(fileData, header.Filename)
	if err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return nil, err
	}
	return img, nil
}

func (h *Handler) readSourceImageFromURL(w http.ResponseWriter, r *http.Request) (*models.Image, error) {
	var request struct {
		ImageURL string `json:"image_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return nil, err
	}
	if request.ImageURL == "" {
		err := fmt.Errorf("image_url is required")
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return nil, err
	}

	imageData, err := h.downloadImageFromURL(request.ImageURL)
	if err != nil {
		h.writeError(w, "Failed to process image URL: "+err.Error(), http.StatusBadRequest)
		return nil, err
	}

	parts := strings.Split(request.ImageURL, "/")
	filename := parts[len(parts)-1]
	if filename == "" {
		filename = "photo.jpg"
	}

	img, err := sourceImageFromBytes(imageData, filename)
	if err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return nil, err
	}
	return img, nil
}

func (h *Handler) writeStorageError(w http.ResponseWriter, err error) {
	switch {
	case err == storage.ErrNotFound:
		h.writeError(w, "Session not found", http.StatusNotFound)
	case err == storage.ErrSessionBusy:
		h.writeError(w, err.Error(), http.StatusConflict)
	case err == storage.ErrNoSource:
		h.writeError(w, err.Error(), http.StatusBadRequest)
	default:
		h.writeError(w, err.Error(), http.StatusInternalServerError)
	}
}
