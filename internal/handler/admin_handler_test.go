package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Deekshi23/portfolio/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockAdminRepository struct {
	collectionsFunc func(ctx context.Context) ([]string, error)
	documentsFunc   func(ctx context.Context, collection string, limit int) ([]json.RawMessage, error)
	insertFunc      func(ctx context.Context, collection string, doc map[string]any) (string, error)
	deleteFunc      func(ctx context.Context, collection, id string) (bool, error)
}

func (m *mockAdminRepository) Collections(ctx context.Context) ([]string, error) {
	if m.collectionsFunc != nil {
		return m.collectionsFunc(ctx)
	}
	return []string{}, nil
}

func (m *mockAdminRepository) Documents(ctx context.Context, collection string, limit int) ([]json.RawMessage, error) {
	if m.documentsFunc != nil {
		return m.documentsFunc(ctx, collection, limit)
	}
	return []json.RawMessage{}, nil
}

func (m *mockAdminRepository) Insert(ctx context.Context, collection string, doc map[string]any) (string, error) {
	if m.insertFunc != nil {
		return m.insertFunc(ctx, collection, doc)
	}
	return "", nil
}

func (m *mockAdminRepository) Delete(ctx context.Context, collection, id string) (bool, error) {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, collection, id)
	}
	return false, nil
}

func newAdminMux(repo repository.AdminRepository) *http.ServeMux {
	h := NewAdminHandler(repo, 64<<10)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/admin/collections", h.Collections)
	mux.HandleFunc("GET /api/admin/collections/{name}", h.Documents)
	mux.HandleFunc("POST /api/admin/collections/{name}", h.Insert)
	mux.HandleFunc("DELETE /api/admin/collections/{name}/{id}", h.Delete)
	return mux
}

func TestAdminHandler_Collections(t *testing.T) {
	mux := newAdminMux(&mockAdminRepository{
		collectionsFunc: func(ctx context.Context) ([]string, error) {
			return []string{"contact_messages", "fs.files"}, nil
		},
	})

	resp := do(mux, httptest.NewRequest(http.MethodGet, "/api/admin/collections", nil))

	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"collections":["contact_messages","fs.files"]}`, string(decodeEnvelope(t, resp).Data))
}

func TestAdminHandler_Documents(t *testing.T) {
	var gotLimit int
	mux := newAdminMux(&mockAdminRepository{
		documentsFunc: func(ctx context.Context, collection string, limit int) ([]json.RawMessage, error) {
			gotLimit = limit
			switch collection {
			case "contact_messages":
				return []json.RawMessage{json.RawMessage(`{"_id":"a","name":"Ada"}`)}, nil
			case "missing":
				return nil, repository.ErrNotFound
			default:
				return nil, errors.New("boom")
			}
		},
	})

	resp := do(mux, httptest.NewRequest(http.MethodGet, "/api/admin/collections/contact_messages", nil))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, maxAdminDocuments, gotLimit)
	assert.JSONEq(t, `{"collection":"contact_messages","documents":[{"_id":"a","name":"Ada"}]}`, string(decodeEnvelope(t, resp).Data))

	resp = do(mux, httptest.NewRequest(http.MethodGet, "/api/admin/collections/missing", nil))
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = do(mux, httptest.NewRequest(http.MethodGet, "/api/admin/collections/broken", nil))
	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.NotContains(t, resp.Body.String(), "boom")
}

func TestAdminHandler_InvalidCollectionName(t *testing.T) {
	called := false
	mux := newAdminMux(&mockAdminRepository{
		documentsFunc: func(ctx context.Context, collection string, limit int) ([]json.RawMessage, error) {
			called = true
			return nil, nil
		},
	})

	for _, name := range []string{"fs.files", "a-b", "%24cmd"} {
		resp := do(mux, httptest.NewRequest(http.MethodGet, "/api/admin/collections/"+name, nil))
		assert.Equal(t, http.StatusBadRequest, resp.Code, "name %q", name)
	}
	assert.False(t, called)
}

func TestAdminHandler_Insert(t *testing.T) {
	var gotDoc map[string]any
	mux := newAdminMux(&mockAdminRepository{
		insertFunc: func(ctx context.Context, collection string, doc map[string]any) (string, error) {
			gotDoc = doc
			if _, bad := doc["bad"]; bad {
				return "", fmt.Errorf("%w: unknown column %q", repository.ErrInvalidDocument, "bad")
			}
			return "new-id", nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/admin/collections/notes", strings.NewReader(`{"title":"hello","n":2}`))
	resp := do(mux, req)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	assert.JSONEq(t, `{"id":"new-id"}`, string(decodeEnvelope(t, resp).Data))
	assert.Equal(t, "hello", gotDoc["title"])

	req = httptest.NewRequest(http.MethodPost, "/api/admin/collections/notes", strings.NewReader(`{"bad":1}`))
	resp = do(mux, req)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "Invalid document", decodeEnvelope(t, resp).Message)

	for _, body := range []string{`[1,2]`, `not json`, `null`} {
		req = httptest.NewRequest(http.MethodPost, "/api/admin/collections/notes", strings.NewReader(body))
		assert.Equal(t, http.StatusBadRequest, do(mux, req).Code, "body %q", body)
	}
}

func TestAdminHandler_Delete(t *testing.T) {
	mux := newAdminMux(&mockAdminRepository{
		deleteFunc: func(ctx context.Context, collection, id string) (bool, error) {
			switch id {
			case "present":
				return true, nil
			case "broken":
				return false, errors.New("boom")
			default:
				return false, nil
			}
		},
	})

	assert.Equal(t, http.StatusOK, do(mux, httptest.NewRequest(http.MethodDelete, "/api/admin/collections/notes/present", nil)).Code)
	assert.Equal(t, http.StatusNotFound, do(mux, httptest.NewRequest(http.MethodDelete, "/api/admin/collections/notes/absent", nil)).Code)
	assert.Equal(t, http.StatusInternalServerError, do(mux, httptest.NewRequest(http.MethodDelete, "/api/admin/collections/notes/broken", nil)).Code)
}
