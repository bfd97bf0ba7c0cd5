package notion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/christopherseaman/narko/internal/cache"
	"github.com/christopherseaman/narko/internal/config"
	"github.com/christopherseaman/narko/internal/logger"
)

type memoryCache struct {
	mu      sync.Mutex
	entries map[string]*cache.Entry
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string]*cache.Entry{}}
}

func (m *memoryCache) Get(hash string) (*cache.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries[hash], nil
}

func (m *memoryCache) Put(hash string, e *cache.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[hash] = e
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		APIKey:      "secret-token",
		MaxFileSize: config.DefaultMaxFileSize,
	}
}

func testUploader(t *testing.T, handler http.Handler, store uploadCache) *Uploader {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	u := NewUploader(testConfig(), store, logger.Discard())
	u.baseURL = server.URL
	return u
}

func TestUploadFile(t *testing.T) {
	var createReq map[string]any
	var sendContentType string

	mux := http.NewServeMux()
	mux.HandleFunc("POST /file_uploads", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		assert.Equal(t, config.NotionVersion, r.Header.Get("Notion-Version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&createReq))
		json.NewEncoder(w).Encode(map[string]any{"id": "fu-1"})
	})
	mux.HandleFunc("POST /file_uploads/fu-1/send", func(w http.ResponseWriter, r *http.Request) {
		sendContentType = r.Header.Get("Content-Type")
		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "photo.png", header.Filename)
		w.WriteHeader(http.StatusOK)
	})

	path := filepath.Join(t.TempDir(), "photo.png")
	require.NoError(t, os.WriteFile(path, []byte("png bytes"), 0o644))
	u := testUploader(t, mux, nil)

	result, err := u.UploadFile(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, "fu-1", result.FileID)
	assert.Equal(t, "photo.png", result.Name)
	assert.False(t, result.FromCache)
	assert.Equal(t, "photo.png", createReq["name"])
	assert.EqualValues(t, 9, createReq["size"])
	assert.True(t, strings.HasPrefix(sendContentType, "multipart/form-data"))
}

func TestUploadFileTxtWorkaround(t *testing.T) {
	var createdName string

	mux := http.NewServeMux()
	mux.HandleFunc("POST /file_uploads", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		createdName, _ = req["name"].(string)
		json.NewEncoder(w).Encode(map[string]any{"id": "fu-2"})
	})
	mux.HandleFunc("POST /file_uploads/fu-2/send", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		_, header, err := r.FormFile("file")
		require.NoError(t, err)
		assert.Equal(t, "script.py.txt", header.Filename)
		w.WriteHeader(http.StatusOK)
	})

	path := filepath.Join(t.TempDir(), "script.py")
	require.NoError(t, os.WriteFile(path, []byte("print('hi')"), 0o644))
	u := testUploader(t, mux, nil)

	result, err := u.UploadFile(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, "script.py.txt", createdName)
	assert.Equal(t, "script.py.txt", result.Name)
}

func TestUploadFileCacheHit(t *testing.T) {
	calls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("POST /file_uploads", func(w http.ResponseWriter, r *http.Request) {
		calls++
		json.NewEncoder(w).Encode(map[string]any{"id": "fu-3"})
	})
	mux.HandleFunc("POST /file_uploads/fu-3/send", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	path := filepath.Join(t.TempDir(), "diagram.png")
	require.NoError(t, os.WriteFile(path, []byte("image"), 0o644))
	store := newMemoryCache()
	u := testUploader(t, mux, store)

	first, err := u.UploadFile(context.Background(), path)
	require.NoError(t, err)
	assert.False(t, first.FromCache)

	second, err := u.UploadFile(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, first.FileID, second.FileID)
	assert.Equal(t, 1, calls, "second upload must come from cache")
}

func TestUploadFileRejectsInvalid(t *testing.T) {
	u := NewUploader(testConfig(), nil, logger.Discard())

	_, err := u.UploadFile(context.Background(), filepath.Join(t.TempDir(), "missing.png"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestUploadFileCreateFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /file_uploads", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"bad request"}`, http.StatusBadRequest)
	})

	path := filepath.Join(t.TempDir(), "photo.png")
	require.NoError(t, os.WriteFile(path, []byte("png"), 0o644))
	u := testUploader(t, mux, nil)

	_, err := u.UploadFile(context.Background(), path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}

func TestImportExternal(t *testing.T) {
	statusCalls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("POST /file_uploads", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "external_url", req["mode"])
		assert.Equal(t, "https://example.com/chart.png", req["external_url"])
		json.NewEncoder(w).Encode(map[string]any{"id": "fu-4"})
	})
	mux.HandleFunc("GET /file_uploads/fu-4", func(w http.ResponseWriter, r *http.Request) {
		statusCalls++
		status := "pending"
		if statusCalls >= 2 {
			status = "uploaded"
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id": "fu-4", "status": status, "content_length": 512,
		})
	})

	u := testUploader(t, mux, nil)

	result, err := u.ImportExternal(context.Background(), "https://example.com/chart.png", "")

	require.NoError(t, err)
	assert.Equal(t, "fu-4", result.FileID)
	assert.Equal(t, "chart.png", result.Name)
	assert.EqualValues(t, 512, result.Size)
	assert.GreaterOrEqual(t, statusCalls, 2)
}

func TestImportExternalRejectsBadURL(t *testing.T) {
	u := NewUploader(testConfig(), nil, logger.Discard())

	_, err := u.ImportExternal(context.Background(), "ftp://example.com/x.png", "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid external url")
}

func TestImportExternalTimesOut(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /file_uploads", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"id": "fu-5"})
	})
	mux.HandleFunc("GET /file_uploads/fu-5", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"id": "fu-5", "status": "pending"})
	})

	u := testUploader(t, mux, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := u.ImportExternal(ctx, "https://example.com/slow.png", "")

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
