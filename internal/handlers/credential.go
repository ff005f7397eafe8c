package handlers

import (
	"encoding/json"
	"net/http"
)

// HandleCredential manages the persisted API key. The key itself is never
// echoed back; GET only reports whether one is stored.
func (h *Handler) HandleCredential(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		stored, err := h.credStore.Load()
		if err != nil {
			h.writeError(w, "Failed to read credential: "+err.Error(), http.StatusInternalServerError)
			return
		}
		h.writeJSON(w, map[string]any{"configured": stored != ""})
	case "PUT":
		var request struct {
			APIKey string `json:"api_key"`
		}
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
			return
		}
		if request.APIKey == "" {
			h.writeError(w, "api_key is required", http.StatusBadRequest)
			return
		}
		if err := h.credStore.Save(request.APIKey); err != nil {
			h.writeError(w, "Failed to save credential: "+err.Error(), http.StatusInternalServerError)
			return
		}
		h.writeJSON(w, map[string]any{"configured": true})
	case "DELETE":
		if err := h.credStore.Clear(); err != nil {
			h.writeError(w, "Failed to clear credential: "+err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
