// Package media abstracts binary attachment storage. Callers receive a stable
// URL for each stored object and pass the same URL back to delete it.
package media

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"
)

// Store uploads and deletes binary attachments.
type Store interface {
	// Upload stores the file under the given folder and returns its public URL.
	Upload(ctx context.Context, file multipart.File, header *multipart.FileHeader, folder string) (string, error)
	// Delete removes the object a previous Upload returned url for. Deleting
	// an unknown or already-removed URL is not an error.
	Delete(ctx context.Context, url string) error
}

// Message media accepts images and short-form video; avatars are image-only.
var (
	MessageTypes = []string{"image/jpeg", "image/png", "image/gif", "video/mp4", "video/webm"}
	AvatarTypes  = []string{"image/jpeg", "image/png", "image/webp"}
)

// DetectType sniffs the file's MIME type from its leading bytes and rewinds
// the reader. Falls back to the client-declared Content-Type when sniffing is
// inconclusive (DetectContentType cannot identify webm/mp4 reliably).
func DetectType(file multipart.File, header *multipart.FileHeader) (string, error) {
	buf := make([]byte, 512)
	n, err := file.Read(buf)
	if err != nil && err != io.EOF {
		return "", err
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	detected := http.DetectContentType(buf[:n])
	if detected == "application/octet-stream" {
		if declared := header.Header.Get("Content-Type"); declared != "" {
			return declared, nil
		}
	}
	return detected, nil
}

// Allowed reports whether mimeType is in the allow list.
func Allowed(mimeType string, allowed []string) bool {
	for _, t := range allowed {
		if t == mimeType {
			return true
		}
	}
	return false
}
