package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Deekshi23/portfolio/internal/repository"
)

// maxAdminDocuments caps a single collection read.
const maxAdminDocuments = 1000

// AdminHandler exposes raw collections of the backing store. It has no
// authentication of its own and is only mounted when explicitly enabled.
type AdminHandler struct {
	repo         repository.AdminRepository
	maxBodyBytes int64
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(repo repository.AdminRepository, maxBodyBytes int64) *AdminHandler {
	return &AdminHandler{repo: repo, maxBodyBytes: maxBodyBytes}
}

type collectionsResponse struct {
	Collections []string `json:"collections"`
}

type documentsResponse struct {
	Collection string            `json:"collection"`
	Documents  []json.RawMessage `json:"documents"`
}

type insertResponse struct {
	ID string `json:"id"`
}

// Collections handles GET /api/admin/collections.
func (h *AdminHandler) Collections(w http.ResponseWriter, r *http.Request) {
	names, err := h.repo.Collections(r.Context())
	if err != nil {
		slog.Error("admin list collections failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to list collections")
		return
	}
	writeSuccess(w, http.StatusOK, "Collections retrieved successfully", collectionsResponse{Collections: names})
}

// Documents handles GET /api/admin/collections/{name}.
func (h *AdminHandler) Documents(w http.ResponseWriter, r *http.Request) {
	name, ok := h.collectionName(w, r)
	if !ok {
		return
	}

	docs, err := h.repo.Documents(r.Context(), name, maxAdminDocuments)
	if err != nil {
		h.repoError(w, err, "Failed to read collection", "collection", name)
		return
	}
	writeSuccess(w, http.StatusOK, "Documents retrieved successfully", documentsResponse{
		Collection: name,
		Documents:  docs,
	})
}

// Insert handles POST /api/admin/collections/{name}.
func (h *AdminHandler) Insert(w http.ResponseWriter, r *http.Request) {
	name, ok := h.collectionName(w, r)
	if !ok {
		return
	}

	if h.maxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	}
	var doc map[string]any
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil || doc == nil {
		writeError(w, http.StatusBadRequest, "Request body must be a JSON object")
		return
	}

	id, err := h.repo.Insert(r.Context(), name, doc)
	if err != nil {
		h.repoError(w, err, "Failed to insert document", "collection", name)
		return
	}
	writeSuccess(w, http.StatusCreated, "Document inserted", insertResponse{ID: id})
}

// Delete handles DELETE /api/admin/collections/{name}/{id}.
func (h *AdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	name, ok := h.collectionName(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")

	deleted, err := h.repo.Delete(r.Context(), name, id)
	if err != nil {
		h.repoError(w, err, "Failed to delete document", "collection", name, "id", id)
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "Document not found")
		return
	}
	writeSuccess(w, http.StatusOK, "Document deleted", nil)
}

func (h *AdminHandler) collectionName(w http.ResponseWriter, r *http.Request) (string, bool) {
	name := r.PathValue("name")
	if !repository.ValidCollectionName(name) {
		writeError(w, http.StatusBadRequest, "Invalid collection name")
		return "", false
	}
	return name, true
}

func (h *AdminHandler) repoError(w http.ResponseWriter, err error, msg string, attrs ...any) {
	switch {
	case errors.Is(err, repository.ErrInvalidCollection):
		writeError(w, http.StatusBadRequest, "Invalid collection name")
	case errors.Is(err, repository.ErrInvalidDocument):
		writeError(w, http.StatusBadRequest, "Invalid document", err.Error())
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "Collection not found")
	default:
		slog.Error(msg, append([]any{"error", err}, attrs...)...)
		writeError(w, http.StatusInternalServerError, msg)
	}
}
