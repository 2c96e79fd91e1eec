package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/lehigh-university-libraries/contacts/internal/models"
)

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page", 0)
	if err != nil || page < 0 {
		h.writeError(w, "page must be a non-negative integer", http.StatusBadRequest)
		return
	}
	size, err := queryInt(r, "size", defaultPageSize)
	if err != nil || size <= 0 {
		h.writeError(w, "size must be a positive integer", http.StatusBadRequest)
		return
	}

	h.writeJSON(w, http.StatusOK, h.contactStore.Page(page, size))
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	contact, ok := h.getContactOrError(w, mux.Vars(r)["id"])
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, contact)
}

// HandleSave creates a contact when the body has no id and updates it otherwise
func (h *Handler) HandleSave(w http.ResponseWriter, r *http.Request) {
	var input models.Contact
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	if input.Name == "" {
		h.writeError(w, "name is required", http.StatusBadRequest)
		return
	}

	if input.ID != "" && !validID(input.ID) {
		h.writeError(w, "invalid id: ids may not contain path separators or \"..\"", http.StatusBadRequest)
		return
	}

	status := http.StatusOK
	if input.ID == "" {
		input.ID = uuid.NewString()
		status = http.StatusCreated
	}

	// The photo reference is owned by the photo endpoint, never by the client
	input.PhotoURL = ""
	if existing, ok := h.contactStore.Get(input.ID); ok {
		input.PhotoURL = existing.PhotoURL
	}
	h.contactStore.Set(input)

	slog.Info("Contact saved", "id", input.ID, "created", status == http.StatusCreated)
	h.writeJSON(w, status, input)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	contact, ok := h.getContactOrError(w, id)
	if !ok {
		return
	}
	h.contactStore.Delete(id)

	if contact.PhotoURL != "" {
		path := filepath.Join(h.photoDir, filepath.Base(models.StripCacheBust(contact.PhotoURL)))
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			slog.Warn("Failed to remove photo", "id", id, "path", path, "err", err)
		}
	}

	slog.Info("Contact deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

// validID reports whether id is safe to use as a photo file name
func validID(id string) bool {
	return id != "." && !strings.ContainsAny(id, `/\`) && !strings.Contains(id, "..")
}

func queryInt(r *http.Request, key string, fallback int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
