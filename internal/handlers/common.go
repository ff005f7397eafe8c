package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"net/http"

	"github.com/sketchworks/sketchify/internal/config"
	"github.com/sketchworks/sketchify/internal/credential"
	"github.com/sketchworks/sketchify/internal/models"
	"github.com/sketchworks/sketchify/internal/sketch"
	"github.com/sketchworks/sketchify/internal/storage"
)

type Handler struct {
	sessionStore  *storage.SessionStore
	sketchService *sketch.Service
	credStore     *credential.Store
	cfg           *config.Config
}

func New(cfg *config.Config, credStore *credential.Store) *Handler {
	sessionStore := storage.New()
	return &Handler{
		sessionStore:  sessionStore,
		sketchService: sketch.NewService(cfg, sessionStore, credStore),
		credStore:     credStore,
		cfg:           cfg,
	}
}

// validImageMIMETypes are the source photo formats accepted for upload.
var validImageMIMETypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message)
	http.Error(w, message, code)
}

// Session helpers
func (h *Handler) getSessionOrError(w http.ResponseWriter, sessionID string) (*models.SketchSession, bool) {
	session, exists := h.sessionStore.Get(sessionID)
	if !exists {
		h.writeError(w, "Session not found", http.StatusNotFound)
		return nil, false
	}
	return session, true
}

// sourceImageFromBytes validates uploaded photo bytes and packages them with
// their sniffed MIME type and decoded dimensions.
func sourceImageFromBytes(data []byte, filename string) (*models.Image, error) {
	mimeType := http.DetectContentType(data)
	if !validImageMIMETypes[mimeType] {
		return nil, fmt.Errorf("unsupported image type %s (supported: jpeg, png, webp, gif)", mimeType)
	}

	img := &models.Image{
		Data:     data,
		MIMEType: mimeType,
		Filename: filename,
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		slog.Warn("Failed to decode image dimensions", "filename", filename, "error", err)
		return img, nil
	}
	img.Width = cfg.Width
	img.Height = cfg.Height
	return img, nil
}

func (h *Handler) downloadImageFromURL(imageURL string) ([]byte, error) {
	resp, err := http.Get(imageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: HTTP %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(io.LimitReader(resp.Body, h.cfg.MaxUploadSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}
