package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T, mux *http.ServeMux) *ContentRepository {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client, err := NewClient(srv.Client(), "secret-token", srv.URL)
	require.NoError(t, err)
	return NewContentRepository(client, "stroke", "content", "main")
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func TestContentRepository_GetFileContents(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/stroke/content/contents/articles/001.json", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "main", r.URL.Query().Get("ref"))
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		writeJSON(w, map[string]any{
			"type":     "file",
			"name":     "001.json",
			"path":     "articles/001.json",
			"encoding": "base64",
			"content":  base64.StdEncoding.EncodeToString([]byte(`{"id":"001"}`)),
		})
	})
	repo := newTestRepository(t, mux)

	data, err := repo.GetFileContents(context.Background(), "articles/001.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"001"}`, string(data))
}

func TestContentRepository_NotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/stroke/content/contents/articles/404.json", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		writeJSON(w, map[string]string{"message": "Not Found"})
	})
	repo := newTestRepository(t, mux)

	_, err := repo.GetFileContents(context.Background(), "articles/404.json")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestContentRepository_ServerError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/stroke/content/contents/articles/001.json", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		writeJSON(w, map[string]string{"message": "Bad Gateway"})
	})
	repo := newTestRepository(t, mux)

	_, err := repo.GetFileContents(context.Background(), "articles/001.json")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "502")
}

func TestContentRepository_ListDirectory(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/stroke/content/contents/articles", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []map[string]any{
			{"type": "file", "name": "001.json", "path": "articles/001.json"},
			{"type": "dir", "name": "drafts", "path": "articles/drafts"},
			{"type": "file", "name": "002.json", "path": "articles/002.json"},
		})
	})
	repo := newTestRepository(t, mux)

	names, err := repo.ListDirectory(context.Background(), "articles")
	require.NoError(t, err)
	assert.Equal(t, []string{"001.json", "002.json"}, names)
}

func TestContentRepository_IsAvailable(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/stroke/content", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"full_name": "stroke/content", "default_branch": "main"})
	})
	repo := newTestRepository(t, mux)

	assert.True(t, repo.IsAvailable(context.Background()))
	assert.Equal(t, "stroke/content", repo.GetRepoFullName())
	assert.Equal(t, "main", repo.Ref())
}

func TestContentRepository_Unavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	client, err := NewClient(srv.Client(), "", srv.URL)
	require.NoError(t, err)
	srv.Close()

	repo := NewContentRepository(client, "stroke", "content", "")
	assert.False(t, repo.IsAvailable(context.Background()))
}
