package media_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/retailpro/retailpro/internal/access"
	"github.com/retailpro/retailpro/internal/auth"
	"github.com/retailpro/retailpro/internal/media"
	_ "github.com/retailpro/retailpro/testing"
)

type stubUploader struct {
	lastPath        string
	lastContentType string
	failWith        error
}

func (s *stubUploader) Upload(ctx context.Context, path, contentType string, data []byte) (string, error) {
	if s.failWith != nil {
		return "", s.failWith
	}
	s.lastPath = path
	s.lastContentType = contentType
	return "https://storage.test/object/public/inventory-photos/" + path, nil
}

// pngHeader is enough for http.DetectContentType to sniff image/png.
var pngHeader = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 13}

func multipartBody(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("photo", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

func uploadRequest(t *testing.T, body *bytes.Buffer, contentType string, signedIn bool) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/inventory/photo", body)
	req.Header.Set("Content-Type", contentType)
	if signedIn {
		principal := &access.Principal{UserID: 42, Profile: &auth.Profile{UserID: 42, Role: auth.RoleOwner}}
		req = req.WithContext(access.ContextWithPrincipal(req.Context(), principal))
	}
	return req
}

func newRouter(uploader media.Uploader) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := media.NewHandler(logger, uploader)
	r := chi.NewRouter()
	r.Route("/inventory", handler.MountRoutes)
	return r
}

func TestUploadAcceptsImage(t *testing.T) {
	uploader := &stubUploader{}
	router := newRouter(uploader)

	body, contentType := multipartBody(t, "mug.png", pngHeader)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, uploadRequest(t, body, contentType, true))

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	var payload struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.URL == "" {
		t.Fatalf("expected url in response")
	}
	if uploader.lastContentType != "image/png" {
		t.Fatalf("expected sniffed image/png, got %s", uploader.lastContentType)
	}
	if !strings.HasPrefix(uploader.lastPath, "42/") {
		t.Fatalf("expected owner-scoped path, got %s", uploader.lastPath)
	}
	if !strings.HasSuffix(uploader.lastPath, ".png") {
		t.Fatalf("expected .png extension, got %s", uploader.lastPath)
	}
}

func TestUploadRejectsNonImage(t *testing.T) {
	uploader := &stubUploader{}
	router := newRouter(uploader)

	body, contentType := multipartBody(t, "notes.txt", []byte("just some text content"))
	res := httptest.NewRecorder()
	router.ServeHTTP(res, uploadRequest(t, body, contentType, true))

	if res.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415, got %d", res.Code)
	}
	if uploader.lastPath != "" {
		t.Fatalf("expected no upload, got %s", uploader.lastPath)
	}
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	uploader := &stubUploader{}
	router := newRouter(uploader)

	big := make([]byte, media.MaxUploadBytes+1)
	copy(big, pngHeader)
	body, contentType := multipartBody(t, "huge.png", big)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, uploadRequest(t, body, contentType, true))

	if res.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", res.Code)
	}
	if uploader.lastPath != "" {
		t.Fatalf("expected no upload, got %s", uploader.lastPath)
	}
}

func TestUploadRequiresPrincipal(t *testing.T) {
	uploader := &stubUploader{}
	router := newRouter(uploader)

	body, contentType := multipartBody(t, "mug.png", pngHeader)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, uploadRequest(t, body, contentType, false))

	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.Code)
	}
}

func TestUploadMissingFile(t *testing.T) {
	uploader := &stubUploader{}
	router := newRouter(uploader)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	res := httptest.NewRecorder()
	router.ServeHTTP(res, uploadRequest(t, body, writer.FormDataContentType(), true))

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}
