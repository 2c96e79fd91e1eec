package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/lehigh-university-libraries/contacts/internal/models"
	"github.com/lehigh-university-libraries/contacts/internal/storage"
)

// defaultPageSize applies when a list request carries no size
const defaultPageSize = 10

// maxPhotoSize limits uploaded photos to 10MB
const maxPhotoSize = 10 * 1024 * 1024

type Handler struct {
	contactStore *storage.ContactStore
	photoDir     string
	publicURL    string
}

// Option configures a Handler
type Option func(*Handler)

// WithPhotoDir sets where uploaded photos are written
func WithPhotoDir(dir string) Option {
	return func(h *Handler) {
		h.photoDir = dir
	}
}

// WithPublicURL sets the externally visible base URL used in photo links.
// Without it the base is derived from each request's Host header.
func WithPublicURL(u string) Option {
	return func(h *Handler) {
		h.publicURL = strings.TrimRight(u, "/")
	}
}

// WithStore replaces the in-memory contact store
func WithStore(s *storage.ContactStore) Option {
	return func(h *Handler) {
		h.contactStore = s
	}
}

func New(opts ...Option) *Handler {
	h := &Handler{
		contactStore: storage.New(),
		photoDir:     "uploads",
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	if code >= http.StatusInternalServerError {
		slog.Error(message)
	} else {
		slog.Debug(message, "status", code)
	}
	h.writeJSON(w, code, map[string]string{"message": message})
}

// Contact helpers
func (h *Handler) getContactOrError(w http.ResponseWriter, id string) (models.Contact, bool) {
	contact, exists := h.contactStore.Get(id)
	if !exists {
		h.writeError(w, "Contact not found: "+id, http.StatusNotFound)
		return models.Contact{}, false
	}
	return contact, true
}

// File operation helpers
func (h *Handler) ensurePhotoDir() error {
	return os.MkdirAll(h.photoDir, 0755)
}

// baseURL is the public root the photo links are built on
func (h *Handler) baseURL(r *http.Request) string {
	if h.publicURL != "" {
		return h.publicURL
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if fwd := r.Header.Get("X-Forwarded-Proto"); fwd != "" {
		scheme = fwd
	}
	return scheme + "://" + r.Host
}
