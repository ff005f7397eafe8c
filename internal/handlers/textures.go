package handlers

import (
	"net/http"

	"github.com/sketchworks/sketchify/internal/texture"
)

// HandleTextures lists the fixed paper texture variants.
func (h *Handler) HandleTextures(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.writeJSON(w, texture.All())
}
