package browser

import (
	"path"
	"strings"

	"github.com/damacus/iron-browser/internal/store"
)

var previewableExtensions = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"png":  true,
	"gif":  true,
	"webp": true,
	"bmp":  true,
	"tif":  true,
	"tiff": true,
	"avif": true,
	"svg":  true,
}

// NormalizePrefix trims prefix and makes it separator-terminated. Blank
// input means the bucket root and yields "".
func NormalizePrefix(prefix string) string {
	normalized := strings.TrimSpace(prefix)
	if normalized == "" {
		return ""
	}
	if !strings.HasSuffix(normalized, store.Separator) {
		normalized += store.Separator
	}
	return normalized
}

// FolderName returns the last segment of a folder prefix
// ("docs/reports/" -> "reports").
func FolderName(prefix string) string {
	trimmed := strings.TrimSuffix(prefix, store.Separator)
	if idx := strings.LastIndex(trimmed, store.Separator); idx >= 0 {
		return trimmed[idx+1:]
	}
	return trimmed
}

// FileName returns the last segment of an object key
// ("docs/readme.txt" -> "readme.txt").
func FileName(key string) string {
	if idx := strings.LastIndex(key, store.Separator); idx >= 0 {
		return key[idx+1:]
	}
	return key
}

// ParentPrefix returns the prefix one level above prefix, or "" at the root.
func ParentPrefix(prefix string) string {
	trimmed := strings.TrimSuffix(prefix, store.Separator)
	idx := strings.LastIndex(trimmed, store.Separator)
	if idx < 0 {
		return ""
	}
	return trimmed[:idx+1]
}

// IsPreviewable reports whether key has an inline-previewable image extension.
func IsPreviewable(key string) bool {
	if isBlank(key) {
		return false
	}
	ext := strings.ToLower(path.Ext(key))
	if len(ext) < 2 {
		return false
	}
	return previewableExtensions[ext[1:]]
}

// SanitizeEntryName derives a path-safe archive entry name from key: the
// prefix is stripped, every ".." removed, and leading separators dropped so
// the name is always relative.
func SanitizeEntryName(key, prefixToTrim string) string {
	name := key
	if prefixToTrim != "" {
		name = strings.TrimPrefix(name, prefixToTrim)
	}
	name = strings.ReplaceAll(name, "..", "")
	return strings.TrimLeft(name, store.Separator)
}

func isDirectoryMarker(key string) bool {
	return strings.HasSuffix(key, store.Separator)
}
