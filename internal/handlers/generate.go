package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sketchworks/sketchify/internal/sketch"
	"github.com/sketchworks/sketchify/internal/storage"
)

// HandleGenerate runs one generation attempt for the session. A classified
// generation failure is a normal outcome: the response is the session with
// its error message set, not an HTTP error.
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var request struct {
		Texture  string   `json:"texture"`
		Captions []string `json:"captions"`
		Provider string   `json:"provider"`
		Model    string   `json:"model"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
			return
		}
	}

	session, err := h.sketchService.Generate(r.Context(), sessionID, sketch.Params{
		Texture:  request.Texture,
		Captions: request.Captions,
		Provider: request.Provider,
		Model:    request.Model,
		APIKey:   r.Header.Get("X-Api-Key"),
	})
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			h.writeError(w, "Session not found", http.StatusNotFound)
		case errors.Is(err, storage.ErrSessionBusy):
			h.writeError(w, err.Error(), http.StatusConflict)
		case errors.Is(err, storage.ErrNoSource):
			h.writeError(w, err.Error(), http.StatusBadRequest)
		default:
			h.writeError(w, err.Error(), http.StatusBadRequest)
		}
		return
	}

	h.writeJSON(w, session)
}
