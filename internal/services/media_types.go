package services

import (
	"fmt"
	"strings"

	"github.com/bazarly/backend/internal/models"
)

// mimeByExt covers the accepted upload extensions.
var mimeByExt = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"mp4":  "video/mp4",
	"mov":  "video/quicktime",
	"avi":  "video/avi",
}

// classifyUpload infers extension, mimetype and media kind from a filename.
func classifyUpload(filename string) (ext, mime, kind string, err error) {
	i := strings.LastIndex(filename, ".")
	if i < 0 || i == len(filename)-1 {
		return "", "", "", fmt.Errorf("file %q has no extension", filename)
	}
	ext = strings.ToLower(filename[i+1:])

	mime, ok := mimeByExt[ext]
	if !ok {
		return "", "", "", fmt.Errorf("unsupported file type: .%s", ext)
	}

	switch {
	case strings.HasPrefix(mime, "image/"):
		kind = models.MediaKindImage
	case strings.HasPrefix(mime, "video/"):
		kind = models.MediaKindVideo
	default:
		return "", "", "", fmt.Errorf("unsupported mimetype: %s", mime)
	}
	return ext, mime, kind, nil
}
