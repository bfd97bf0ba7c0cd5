package config

import (
	"mime"
	"path/filepath"
	"strings"
)

// notionSupportedExtensions lists the extensions the Notion file upload
// API accepts directly.
// See: https://developers.notion.com/docs/working-with-files-and-media
var notionSupportedExtensions = map[string]struct{}{
	// Audio
	".aac": {}, ".adts": {}, ".mid": {}, ".midi": {}, ".mp3": {},
	".mpga": {}, ".m4a": {}, ".m4b": {}, ".mp4": {}, ".oga": {},
	".ogg": {}, ".wav": {}, ".wma": {},
	// Documents
	".pdf": {}, ".txt": {}, ".json": {}, ".doc": {}, ".dot": {},
	".docx": {}, ".dotx": {}, ".xls": {}, ".xlt": {}, ".xla": {},
	".xlsx": {}, ".xltx": {}, ".ppt": {}, ".pot": {}, ".pps": {},
	".ppa": {}, ".pptx": {}, ".potx": {},
	// Images
	".gif": {}, ".heic": {}, ".jpeg": {}, ".jpg": {}, ".png": {},
	".svg": {}, ".tif": {}, ".tiff": {}, ".webp": {}, ".ico": {},
	// Video
	".amv": {}, ".asf": {}, ".wmv": {}, ".avi": {}, ".f4v": {},
	".flv": {}, ".gifv": {}, ".m4v": {}, ".mkv": {}, ".webm": {},
	".mov": {}, ".qt": {}, ".mpeg": {},
}

// txtWorkaroundExtensions are text formats the upload API rejects. Such
// files are uploaded with a ".txt" suffix appended to the name.
var txtWorkaroundExtensions = map[string]struct{}{
	// Programming languages
	".py": {}, ".sh": {}, ".bash": {}, ".md": {}, ".js": {}, ".ts": {},
	".jsx": {}, ".tsx": {}, ".java": {}, ".cpp": {}, ".c": {}, ".h": {},
	".hpp": {}, ".cs": {}, ".rb": {}, ".go": {}, ".rs": {}, ".swift": {},
	".kt": {}, ".scala": {}, ".r": {}, ".m": {}, ".mm": {}, ".php": {},
	".pl": {}, ".lua": {}, ".dart": {}, ".elm": {}, ".clj": {}, ".ex": {},
	".exs": {},
	// Config and data formats
	".yaml": {}, ".yml": {}, ".toml": {}, ".ini": {}, ".cfg": {},
	".conf": {}, ".xml": {}, ".env": {}, ".properties": {},
	".gitignore": {}, ".editorconfig": {},
	// Web
	".html": {}, ".css": {}, ".scss": {}, ".sass": {}, ".less": {},
	// Database and query
	".sql": {}, ".graphql": {}, ".proto": {},
	// Build and deploy
	".dockerfile": {}, ".makefile": {}, ".gradle": {}, ".cmake": {},
	// Documentation
	".rst": {}, ".adoc": {}, ".tex": {},
}

// mimeTypes maps extensions to the MIME types the upload API expects.
var mimeTypes = map[string]string{
	// Audio
	".aac": "audio/aac", ".adts": "audio/aac",
	".mid": "audio/midi", ".midi": "audio/midi",
	".mp3": "audio/mpeg", ".mpga": "audio/mpeg",
	".m4a": "audio/mp4", ".m4b": "audio/mp4",
	".oga": "audio/ogg", ".ogg": "audio/ogg",
	".wav": "audio/wav", ".wma": "audio/x-ms-wma",
	// Documents
	".pdf":  "application/pdf",
	".txt":  "text/plain",
	".json": "application/json",
	".doc":  "application/msword",
	".dot":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".dotx": "application/vnd.openxmlformats-officedocument.wordprocessingml.template",
	".xls":  "application/vnd.ms-excel",
	".xlt":  "application/vnd.ms-excel",
	".xla":  "application/vnd.ms-excel",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".xltx": "application/vnd.openxmlformats-officedocument.spreadsheetml.template",
	".ppt":  "application/vnd.ms-powerpoint",
	".pot":  "application/vnd.ms-powerpoint",
	".pps":  "application/vnd.ms-powerpoint",
	".ppa":  "application/vnd.ms-powerpoint",
	".pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	".potx": "application/vnd.openxmlformats-officedocument.presentationml.template",
	// Images
	".gif": "image/gif", ".heic": "image/heic",
	".jpeg": "image/jpeg", ".jpg": "image/jpeg",
	".png": "image/png", ".svg": "image/svg+xml",
	".tif": "image/tiff", ".tiff": "image/tiff",
	".webp": "image/webp", ".ico": "image/vnd.microsoft.icon",
	// Video
	".amv": "video/x-amv", ".asf": "video/x-ms-asf",
	".wmv": "video/x-ms-wmv", ".avi": "video/x-msvideo",
	".f4v": "video/x-f4v", ".flv": "video/x-flv",
	".gifv": "video/mp4", ".m4v": "video/x-m4v",
	".mp4": "video/mp4", ".mkv": "video/x-matroska",
	".webm": "video/webm", ".mov": "video/quicktime",
	".qt": "video/quicktime", ".mpeg": "video/mpeg",
}

// IsNotionSupported reports whether the upload API accepts the file's
// extension as-is.
func IsNotionSupported(path string) bool {
	_, ok := notionSupportedExtensions[normalizeExt(path)]
	return ok
}

// NeedsTxtWorkaround reports whether the file should be uploaded under a
// name with ".txt" appended.
func NeedsTxtWorkaround(path string) bool {
	_, ok := txtWorkaroundExtensions[normalizeExt(path)]
	return ok
}

// MIMEType resolves the content type to declare for an upload, falling
// back to the platform MIME database and then octet-stream.
func MIMEType(path string) string {
	ext := normalizeExt(path)
	if mt, ok := mimeTypes[ext]; ok {
		return mt
	}
	if mt := mime.TypeByExtension(ext); mt != "" {
		return mt
	}
	return "application/octet-stream"
}

func normalizeExt(path string) string {
	return strings.ToLower(filepath.Ext(path))
}
