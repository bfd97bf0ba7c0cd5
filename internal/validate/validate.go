// Package validate checks files against upload limits before any network
// traffic happens.
package validate

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/christopherseaman/narko/internal/cache"
	"github.com/christopherseaman/narko/internal/config"
)

// Result reports whether a file can be uploaded, with any blocking
// errors and advisory warnings.
type Result struct {
	Valid    bool
	Errors   []string
	Warnings []string

	Size      int64
	Extension string
	Hash      string
	Modified  time.Time
}

// Validator checks files against the configured upload limits.
type Validator struct {
	cfg *config.Config
}

// New builds a Validator.
func New(cfg *config.Config) *Validator {
	return &Validator{cfg: cfg}
}

// File validates a single path for upload: it must exist, be non-empty,
// fit the size limit and be readable. An extension the API does not know
// only warns, since the txt workaround may still get it through.
func (v *Validator) File(path string) *Result {
	res := &Result{Valid: true}

	info, err := os.Stat(path)
	if err != nil {
		res.Valid = false
		res.Errors = append(res.Errors, fmt.Sprintf("file not found: %s", path))
		return res
	}
	if info.IsDir() {
		res.Valid = false
		res.Errors = append(res.Errors, fmt.Sprintf("not a regular file: %s", path))
		return res
	}

	res.Size = info.Size()
	res.Extension = strings.ToLower(filepath.Ext(path))
	res.Modified = info.ModTime()

	switch {
	case res.Size == 0:
		res.Valid = false
		res.Errors = append(res.Errors, "file is empty")
	case res.Size > v.cfg.MaxFileSize:
		res.Valid = false
		res.Errors = append(res.Errors,
			fmt.Sprintf("file too large: %d bytes (max %d)", res.Size, v.cfg.MaxFileSize))
	case res.Size > v.cfg.MaxFileSize*8/10:
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("file is large: %d bytes, approaching the %d byte limit", res.Size, v.cfg.MaxFileSize))
	}

	if !config.IsNotionSupported(path) && !config.NeedsTxtWorkaround(path) {
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("unsupported file type %q, upload may fail", res.Extension))
	}

	f, err := os.Open(path)
	if err != nil {
		res.Valid = false
		res.Errors = append(res.Errors, "file is not readable")
		return res
	}
	f.Close()

	if res.Valid {
		hash, err := cache.FileHash(path)
		if err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("could not hash file: %v", err))
		} else {
			res.Hash = hash
		}
	}

	return res
}

// URL validates an external address for the import endpoint.
func (v *Validator) URL(raw string) *Result {
	res := &Result{Valid: true}

	u, err := url.Parse(raw)
	if err != nil {
		res.Valid = false
		res.Errors = append(res.Errors, fmt.Sprintf("invalid url: %v", err))
		return res
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		res.Valid = false
		res.Errors = append(res.Errors, fmt.Sprintf("unsupported scheme %q", u.Scheme))
	}
	if u.Host == "" {
		res.Valid = false
		res.Errors = append(res.Errors, "url has no host")
	}
	return res
}
