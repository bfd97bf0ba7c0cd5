package convert

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Uploader sends a local file to the remote workspace and returns the
// identifier of the stored upload.
type Uploader interface {
	Upload(ctx context.Context, path string) (string, error)
}

// RefKind classifies a media target.
type RefKind int

const (
	// RefRemote is an http or https URL.
	RefRemote RefKind = iota
	// RefLocal is an existing file on disk.
	RefLocal
	// RefMissing is a local path that does not exist.
	RefMissing
)

// ResolveRef classifies a media target as remote, local or missing.
func ResolveRef(target string) RefKind {
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		return RefRemote
	}
	if info, err := os.Stat(target); err == nil && !info.IsDir() {
		return RefLocal
	}
	return RefMissing
}

var mediaKindByExt = map[string]string{
	".jpg": "image", ".jpeg": "image", ".png": "image", ".gif": "image",
	".bmp": "image", ".webp": "image", ".svg": "image",
	".mp4": "video", ".mov": "video", ".avi": "video", ".mkv": "video",
	".webm": "video", ".m4v": "video",
	".mp3": "audio", ".wav": "audio", ".m4a": "audio", ".aac": "audio",
	".ogg": "audio", ".flac": "audio",
	".pdf": "pdf",
}

// inferMediaKind resolves the generic "file" kind to a concrete media
// category based on the target's extension.
func inferMediaKind(kind, target string) string {
	if kind != "file" {
		return kind
	}
	ext := strings.ToLower(filepath.Ext(target))
	if mapped, ok := mediaKindByExt[ext]; ok {
		return mapped
	}
	return "file"
}

// embeddableDomains are hosts whose links render as embed blocks when a
// paragraph consists of nothing but the link.
var embeddableDomains = []string{
	"youtube.com", "youtu.be", "vimeo.com", "twitter.com", "x.com",
	"github.com", "gist.github.com", "codepen.io", "jsfiddle.net",
}

// IsEmbeddable reports whether a URL's host belongs to a domain Notion
// can render as a native embed.
func IsEmbeddable(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, domain := range embeddableDomains {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}
