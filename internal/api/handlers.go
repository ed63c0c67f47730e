package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/askeladd/deckforge/internal/apperr"
	"github.com/askeladd/deckforge/internal/pkgservice"
)

const (
	maxGenerateBytes = 10 << 20 // 10 MB JSON body
	maxUploadBytes   = 50 << 20 // 50 MB media upload
)

// Handler holds API route handlers.
type Handler struct {
	svc           *pkgservice.Service
	publicBaseURL string
}

// NewHandler creates a new Handler. publicBaseURL, when non-empty, is used
// as the base of download URLs; otherwise the base is derived from the
// incoming request.
func NewHandler(svc *pkgservice.Service, publicBaseURL string) *Handler {
	return &Handler{svc: svc, publicBaseURL: strings.TrimRight(publicBaseURL, "/")}
}

// Root handles GET /, a static greeting.
func (h *Handler) Root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Welcome to the Deckforge flashcard generator API",
	})
}

// Generate handles POST /generate_flashcards/: builds an .apkg from the
// supplied package description and returns its download URL.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxGenerateBytes)

	var req GeneratePackageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	filename, err := h.svc.Generate(r.Context(), req.ToPackage())
	if err != nil {
		slog.Error("package build failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError,
			errorBody(fmt.Sprintf("flashcard generation failed: %v", err)))
		return
	}

	writeJSON(w, http.StatusOK, GenerateResponse{
		Message:     "Flashcards generated successfully",
		DownloadURL: h.baseURL(r) + "/download/" + filename,
	})
}

// Download handles GET /download/{filename}: streams a generated file as
// an attachment.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	path, err := h.svc.ArtifactPath(filename)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrInvalidName):
			writeJSON(w, http.StatusBadRequest, errorBody("invalid filename"))
		case errors.Is(err, apperr.ErrNotFound):
			writeJSON(w, http.StatusNotFound, errorBody("file not found"))
		default:
			slog.Error("download failed", slog.String("filename", filename), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	http.ServeFile(w, r, path)
}

// UploadMedia handles POST /upload_media/ (multipart/form-data, field
// "file"): writes the bytes verbatim under the supplied filename,
// overwriting any existing file with that name.
func (h *Handler) UploadMedia(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file too large or invalid multipart"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("missing 'file' field in multipart form"))
		return
	}
	defer file.Close()

	if _, err := h.svc.SaveMedia(header.Filename, file); err != nil {
		slog.Error("media upload failed", slog.String("filename", header.Filename), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("failed to store file"))
		return
	}

	writeJSON(w, http.StatusOK, MediaUploadResponse{
		Filename: header.Filename,
		Status:   "File uploaded successfully",
	})
}

// baseURL picks the configured public base URL or derives one from the
// request.
func (h *Handler) baseURL(r *http.Request) string {
	if h.publicBaseURL != "" {
		return h.publicBaseURL
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}
