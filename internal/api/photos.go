package api

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/olesko/rodovid/internal/storage"
)

const (
	// PhotoURLPrefix is where stored photos are served from.
	PhotoURLPrefix = "/uploads/photos/"
	maxPhotoBytes  = 5 << 20 // 5 MB
)

var allowedPhotoTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
}

// PhotoHandler stores and serves person photos.
type PhotoHandler struct {
	fs *storage.FS
}

// NewPhotoHandler creates a handler over the photo store.
func NewPhotoHandler(fs *storage.FS) *PhotoHandler {
	return &PhotoHandler{fs: fs}
}

// Save validates and stores an uploaded photo, returning the web path
// to record on the person document.
func (h *PhotoHandler) Save(file multipart.File, header *multipart.FileHeader) (string, error) {
	if header.Size > maxPhotoBytes {
		return "", fmt.Errorf("photo too large (max 5MB)")
	}
	ext, ok := allowedPhotoTypes[header.Header.Get("Content-Type")]
	if !ok {
		// Fall back to the file extension when the part has no usable type.
		ext = strings.ToLower(filepath.Ext(header.Filename))
		if !storage.IsImageName(header.Filename) {
			return "", fmt.Errorf("only JPG, PNG and GIF photos are supported")
		}
	}
	name := "person-" + uuid.NewString() + ext
	if _, err := h.fs.Save(name, file); err != nil {
		return "", err
	}
	return path.Join(PhotoURLPrefix, name), nil
}

// ServeFile handles GET /uploads/photos/{filename}.
func (h *PhotoHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	abs, err := h.fs.Path(filename)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid filename")
		return
	}
	if _, statErr := os.Stat(abs); os.IsNotExist(statErr) {
		respondError(w, http.StatusNotFound, "photo not found")
		return
	}
	http.ServeFile(w, r, abs)
}
