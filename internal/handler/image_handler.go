package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/Deekshi23/portfolio/internal/model"
	"github.com/Deekshi23/portfolio/internal/storage"
)

// multipartOverhead is the allowance for multipart framing on top of the image itself.
const multipartOverhead = 1 << 20

// ImageHandler はプロフィール画像のアップロード・配信を処理する
type ImageHandler struct {
	store    storage.ImageStore
	maxBytes int64
}

// NewImageHandler は ImageHandler を生成する
func NewImageHandler(store storage.ImageStore, maxBytes int64) *ImageHandler {
	return &ImageHandler{store: store, maxBytes: maxBytes}
}

// Upload は POST /api/profile/upload を処理する (multipart フィールド "file")
func (h *ImageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+multipartOverhead)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		writeError(w, http.StatusBadRequest, "File too large or malformed upload.")
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file uploaded.")
		return
	}
	defer file.Close()

	if header.Size > h.maxBytes {
		writeError(w, http.StatusBadRequest, "File too large.")
		return
	}

	ct := header.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "image/") {
		writeError(w, http.StatusBadRequest, "File is not an image.")
		return
	}

	img, err := h.store.Save(r.Context(), header.Filename, ct, file)
	if err != nil {
		slog.Error("image upload failed", "error", err, "filename", header.Filename)
		writeError(w, http.StatusInternalServerError, "Failed to upload image.")
		return
	}

	slog.Info("profile image stored", "file_id", img.ID, "size", img.Size)
	writeSuccess(w, http.StatusCreated, "Image uploaded successfully", img)
}

// Get は GET /api/profile/image/{id} を処理する
func (h *ImageHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	img, rc, err := h.store.Open(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Image not found.")
			return
		}
		slog.Error("image open failed", "error", err, "file_id", id)
		writeError(w, http.StatusInternalServerError, "Failed to retrieve image.")
		return
	}
	defer rc.Close()

	serveImage(w, img, rc)
}

// Latest は GET /api/profile/image/latest を処理する
func (h *ImageHandler) Latest(w http.ResponseWriter, r *http.Request) {
	latest, err := h.store.Latest(r.Context())
	if err != nil {
		h.latestError(w, err)
		return
	}

	img, rc, err := h.store.Open(r.Context(), latest.ID)
	if err != nil {
		h.latestError(w, err)
		return
	}
	defer rc.Close()

	serveImage(w, img, rc)
}

type latestImageResponse struct {
	FileID string `json:"file_id"`
}

// LatestID は GET /api/profile/latest-image を処理する
func (h *ImageHandler) LatestID(w http.ResponseWriter, r *http.Request) {
	img, err := h.store.Latest(r.Context())
	if err != nil {
		h.latestError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Latest image found", latestImageResponse{FileID: img.ID})
}

func (h *ImageHandler) latestError(w http.ResponseWriter, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "No images found.")
		return
	}
	slog.Error("latest image lookup failed", "error", err)
	writeError(w, http.StatusInternalServerError, "Failed to retrieve image.")
}

func serveImage(w http.ResponseWriter, img *model.ProfileImage, body io.Reader) {
	ct := img.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ct)
	if img.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(img.Size, 10))
	}
	w.Header().Set("Cache-Control", "public, max-age=300")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		slog.Warn("image stream interrupted", "error", err, "file_id", img.ID)
	}
}
