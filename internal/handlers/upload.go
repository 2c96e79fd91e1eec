package handlers

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/lehigh-university-libraries/contacts/internal/models"
)

// HandlePhoto stores an uploaded profile photo for an existing contact and
// responds with the photo's URL as plain text
func (h *Handler) HandlePhoto(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoSize+1024*1024)

	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, "Failed to read file: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	id := r.FormValue("id")
	if id == "" {
		h.writeError(w, "id is required", http.StatusBadRequest)
		return
	}
	if !validID(id) {
		h.writeError(w, "invalid id: "+id, http.StatusBadRequest)
		return
	}
	if _, ok := h.getContactOrError(w, id); !ok {
		return
	}

	fileData, err := io.ReadAll(io.LimitReader(file, maxPhotoSize))
	if err != nil {
		h.writeError(w, "Failed to read file contents: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if len(fileData) >= maxPhotoSize {
		h.writeError(w, "File too large (max 10MB)", http.StatusBadRequest)
		return
	}

	contentType := http.DetectContentType(fileData)
	if !strings.HasPrefix(contentType, "image/") {
		h.writeError(w, "File is not an image: "+contentType, http.StatusBadRequest)
		return
	}

	if err := h.ensurePhotoDir(); err != nil {
		h.writeError(w, "Failed to create photo directory: "+err.Error(), http.StatusInternalServerError)
		return
	}

	filename, err := h.savePhoto(id, header.Filename, contentType, fileData)
	if err != nil {
		h.writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	photoURL := h.baseURL(r) + "/contacts/image/" + filename
	if _, ok := h.contactStore.Update(id, func(c *models.Contact) { c.PhotoURL = photoURL }); !ok {
		// Deleted while the upload was in progress
		_ = os.Remove(filepath.Join(h.photoDir, filename))
		h.writeError(w, "Contact not found: "+id, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/plain")
	if _, err := w.Write([]byte(photoURL)); err != nil {
		slog.Error("Unable to write photo response", "err", err)
	}
}

var photoExtensions = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".gif": true}

// photoExtension keeps the uploaded extension only when it is an image
// extension; otherwise it is derived from the sniffed content type
func photoExtension(original, contentType string) string {
	ext := strings.ToLower(filepath.Ext(original))
	if photoExtensions[ext] {
		return ext
	}
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	default:
		return ".png"
	}
}

// savePhoto writes the photo as <id><ext> inside the photo directory so a
// newer upload replaces the old file
func (h *Handler) savePhoto(id, original, contentType string, data []byte) (string, error) {
	filename := filepath.Base(id) + photoExtension(original, contentType)
	path := filepath.Join(h.photoDir, filename)

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to save photo: %w", err)
	}

	slog.Info("Photo saved", "id", id, "filename", filename, "bytes", len(data))
	return filename, nil
}
