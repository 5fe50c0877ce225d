package media

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/retailpro/retailpro/internal/access"
)

// MaxUploadBytes caps item photo uploads at 5 MB.
const MaxUploadBytes = 5 << 20

// Uploader stores photo bytes and returns a public URL.
type Uploader interface {
	Upload(ctx context.Context, path, contentType string, data []byte) (string, error)
}

// Handler accepts item photo uploads from the inventory forms.
type Handler struct {
	logger  *slog.Logger
	storage Uploader
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, storage Uploader) *Handler {
	return &Handler{logger: logger, storage: storage}
}

// MountRoutes registers the upload endpoint; the owner guard is applied by
// the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/photo", h.handleUpload)
}

type uploadResponse struct {
	URL string `json:"url"`
}

type uploadError struct {
	Error string `json:"error"`
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	principal := access.PrincipalFromContext(r.Context())
	if principal == nil {
		writeJSON(w, http.StatusUnauthorized, uploadError{Error: "sign in required"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes)
	if err := r.ParseMultipartForm(MaxUploadBytes); err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, uploadError{Error: "photo must be 5MB or smaller"})
		return
	}
	file, header, err := r.FormFile("photo")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, uploadError{Error: "photo file is required"})
		return
	}
	defer func() {
		_ = file.Close()
	}()
	if header.Size > MaxUploadBytes {
		writeJSON(w, http.StatusRequestEntityTooLarge, uploadError{Error: "photo must be 5MB or smaller"})
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, MaxUploadBytes+1))
	if err != nil {
		h.logger.Error("read upload", slog.Any("error", err))
		writeJSON(w, http.StatusInternalServerError, uploadError{Error: "could not read the photo"})
		return
	}
	if len(data) > MaxUploadBytes {
		writeJSON(w, http.StatusRequestEntityTooLarge, uploadError{Error: "photo must be 5MB or smaller"})
		return
	}

	// Sniff the content instead of trusting the client supplied header.
	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		writeJSON(w, http.StatusUnsupportedMediaType, uploadError{Error: "only image files are accepted"})
		return
	}

	ext := filepath.Ext(header.Filename)
	if ext == "" {
		ext = extensionFor(contentType)
	}
	path := fmt.Sprintf("%d/%s%s", principal.UserID, uuid.NewString(), ext)

	publicURL, err := h.storage.Upload(r.Context(), path, contentType, data)
	if err != nil {
		h.logger.Error("upload photo", slog.Any("error", err))
		writeJSON(w, http.StatusBadGateway, uploadError{Error: "could not store the photo"})
		return
	}
	writeJSON(w, http.StatusOK, uploadResponse{URL: publicURL})
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
