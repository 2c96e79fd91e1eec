package handlers

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gorilla/mux"
)

// HandleImage serves a stored profile photo
func (h *Handler) HandleImage(w http.ResponseWriter, r *http.Request) {
	filename := mux.Vars(r)["filename"]

	// Prevent directory traversal attacks
	if filename == "" || strings.Contains(filename, "..") || strings.ContainsAny(filename, `/\`) {
		http.Error(w, "Invalid file path", http.StatusBadRequest)
		return
	}

	// Photos change in place, so clients revalidate instead of trusting a cached copy
	w.Header().Set("Cache-Control", "no-cache")
	http.ServeFile(w, r, filepath.Join(h.photoDir, filename))
}
