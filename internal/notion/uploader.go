package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/christopherseaman/narko/internal/cache"
	"github.com/christopherseaman/narko/internal/config"
	"github.com/christopherseaman/narko/internal/logger"
	"github.com/christopherseaman/narko/internal/validate"
)

const (
	uploadTimeout     = 120 * time.Second
	importPollLimit   = 30
	importPollEvery   = time.Second
	importStatusDone  = "uploaded"
	importStatusError = "failed"
)

// UploadResult describes a completed upload.
type UploadResult struct {
	FileID    string
	Name      string
	Size      int64
	FromCache bool
}

// uploadCache is the slice of the cache the uploader needs. A nil cache
// disables reuse.
type uploadCache interface {
	Get(hash string) (*cache.Entry, error)
	Put(hash string, e *cache.Entry) error
}

// Uploader pushes local files through the file upload API. The client
// library does not cover these endpoints, so requests are built by hand.
type Uploader struct {
	cfg       *config.Config
	validator *validate.Validator
	cache     uploadCache
	http      *http.Client
	log       *logger.Logger
	baseURL   string
}

// NewUploader builds an Uploader. store may be nil to skip caching.
func NewUploader(cfg *config.Config, store uploadCache, log *logger.Logger) *Uploader {
	if log == nil {
		log = logger.Discard()
	}
	return &Uploader{
		cfg:       cfg,
		validator: validate.New(cfg),
		cache:     store,
		http:      &http.Client{Timeout: uploadTimeout},
		log:       log,
		baseURL:   apiBaseURL,
	}
}

// Upload sends a local file and returns the file upload ID. It satisfies
// the converter's uploader contract.
func (u *Uploader) Upload(ctx context.Context, filePath string) (string, error) {
	res, err := u.UploadFile(ctx, filePath)
	if err != nil {
		return "", err
	}
	return res.FileID, nil
}

// UploadFile validates, uploads and caches a local file. Text formats
// the API rejects are renamed with a ".txt" suffix first.
func (u *Uploader) UploadFile(ctx context.Context, filePath string) (*UploadResult, error) {
	name := filepath.Base(filePath)
	if config.NeedsTxtWorkaround(filePath) {
		u.log.Debug("applying txt workaround", "file", name)
		name += ".txt"
	}

	validation := u.validator.File(filePath)
	if !validation.Valid {
		return nil, fmt.Errorf("validation failed for %s: %s", filePath, strings.Join(validation.Errors, "; "))
	}
	for _, w := range validation.Warnings {
		u.log.Warn(w, "file", filePath)
	}

	if u.cache != nil && validation.Hash != "" {
		entry, err := u.cache.Get(validation.Hash)
		if err != nil {
			u.log.Warn("cache lookup failed", "error", err)
		} else if entry != nil {
			u.log.Debug("upload cache hit", "file", name)
			return &UploadResult{
				FileID:    entry.FileID,
				Name:      entry.Name,
				Size:      entry.Size,
				FromCache: true,
			}, nil
		}
	}

	fileID, uploadURL, err := u.createUpload(ctx, map[string]any{
		"name": name,
		"size": validation.Size,
	})
	if err != nil {
		return nil, err
	}
	if uploadURL == "" {
		uploadURL = fmt.Sprintf("%s/file_uploads/%s/send", u.baseURL, fileID)
	}

	if err := u.sendContent(ctx, uploadURL, filePath, name); err != nil {
		return nil, err
	}

	result := &UploadResult{FileID: fileID, Name: name, Size: validation.Size}
	if u.cache != nil && validation.Hash != "" {
		err := u.cache.Put(validation.Hash, &cache.Entry{
			FileID:     fileID,
			Name:       name,
			Size:       validation.Size,
			UploadedAt: time.Now(),
		})
		if err != nil {
			u.log.Warn("cache store failed", "error", err)
		}
	}
	return result, nil
}

// ImportExternal asks the API to fetch a file from an external URL, then
// polls until the import settles.
func (u *Uploader) ImportExternal(ctx context.Context, externalURL, filename string) (*UploadResult, error) {
	if v := u.validator.URL(externalURL); !v.Valid {
		return nil, fmt.Errorf("invalid external url %s: %s", externalURL, strings.Join(v.Errors, "; "))
	}
	if filename == "" {
		filename = filenameFromURL(externalURL)
	}

	fileID, _, err := u.createUpload(ctx, map[string]any{
		"mode":         "external_url",
		"filename":     filename,
		"external_url": externalURL,
	})
	if err != nil {
		return nil, err
	}

	return u.pollImport(ctx, fileID, filename)
}

type fileUploadResponse struct {
	ID            string `json:"id"`
	UploadURL     string `json:"upload_url"`
	Status        string `json:"status"`
	ContentLength int64  `json:"content_length"`
}

func (u *Uploader) createUpload(ctx context.Context, payload map[string]any) (id, uploadURL string, err error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", "", fmt.Errorf("marshal upload request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		u.baseURL+"/file_uploads", bytes.NewReader(body))
	if err != nil {
		return "", "", fmt.Errorf("create upload request: %w", err)
	}
	u.setAuthHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := u.http.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("create upload: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", fmt.Errorf("read upload response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("create upload failed with status %d: %s", resp.StatusCode, truncateBody(data))
	}

	var parsed fileUploadResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", "", fmt.Errorf("decode upload response: %w", err)
	}
	if parsed.ID == "" {
		return "", "", fmt.Errorf("upload response carries no id")
	}
	return parsed.ID, parsed.UploadURL, nil
}

func (u *Uploader) sendContent(ctx context.Context, uploadURL, filePath, name string) error {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("read %s: %w", filePath, err)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, name))
	header.Set("Content-Type", config.MIMEType(name))
	part, err := writer.CreatePart(header)
	if err != nil {
		return fmt.Errorf("build multipart body: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return fmt.Errorf("write multipart body: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("finish multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, &body)
	if err != nil {
		return fmt.Errorf("create send request: %w", err)
	}
	u.setAuthHeaders(req)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := u.http.Do(req)
	if err != nil {
		return fmt.Errorf("send file content: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent:
		return nil
	default:
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("send failed with status %d: %s", resp.StatusCode, truncateBody(data))
	}
}

func (u *Uploader) pollImport(ctx context.Context, fileID, filename string) (*UploadResult, error) {
	for attempt := 0; attempt < importPollLimit; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(importPollEvery):
		}

		status, err := u.getUploadStatus(ctx, fileID)
		if err != nil {
			u.log.Debug("import status check failed", "file_id", fileID, "error", err)
			continue
		}
		switch status.Status {
		case importStatusDone:
			return &UploadResult{
				FileID: fileID,
				Name:   filename,
				Size:   status.ContentLength,
			}, nil
		case importStatusError:
			return nil, fmt.Errorf("external import of %s failed", filename)
		}
	}
	return nil, fmt.Errorf("external import of %s timed out", filename)
}

func (u *Uploader) getUploadStatus(ctx context.Context, fileID string) (*fileUploadResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/file_uploads/%s", u.baseURL, fileID), nil)
	if err != nil {
		return nil, err
	}
	u.setAuthHeaders(req)

	resp, err := u.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status check returned %d", resp.StatusCode)
	}

	var parsed fileUploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	return &parsed, nil
}

func (u *Uploader) setAuthHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+u.cfg.APIKey)
	req.Header.Set("Notion-Version", config.NotionVersion)
}

// filenameFromURL derives a sensible filename from an external URL.
func filenameFromURL(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return "external_file.bin"
	}
	name := path.Base(parsed.Path)
	if name == "" || name == "/" || name == "." || !strings.Contains(name, ".") {
		return "external_file.bin"
	}
	return name
}

func truncateBody(data []byte) string {
	const limit = 200
	if len(data) > limit {
		return string(data[:limit])
	}
	return string(data)
}
