package util

import (
	"net/http"
	"path/filepath"
	"strings"
)

// DetectMIME sniffs the content type of an uploaded file, preferring content
// detection and falling back to the filename extension for types the sniffer
// reports as octet-stream.
func DetectMIME(name string, data []byte) string {
	sniffed := http.DetectContentType(data)
	cleaned := strings.TrimSpace(strings.Split(sniffed, ";")[0])

	if cleaned != "" && cleaned != "application/octet-stream" {
		return cleaned
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".md", ".log":
		return "text/plain"
	case ".json":
		return "application/json"
	case ".pdf":
		return "application/pdf"
	case ".webp":
		return "image/webp"
	case ".bmp":
		return "image/bmp"
	case ".tiff", ".tif":
		return "image/tiff"
	default:
		return "application/octet-stream"
	}
}

func IsImageMIME(mimeType string) bool {
	cleaned := strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
	return strings.HasPrefix(cleaned, "image/")
}

// Extension returns the lowercase filename extension without the dot, the
// form stored on Entry.Extension.
func Extension(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	return strings.TrimPrefix(ext, ".")
}
