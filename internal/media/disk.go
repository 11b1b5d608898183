package media

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/Neeraj110/chatApp/pkg/metrics"
)

// DiskStore keeps objects on the local filesystem and serves them from a
// static URL prefix. Object names are random, so a URL never collides with a
// later upload.
type DiskStore struct {
	baseDir string
	baseURL string
}

// NewDiskStore creates the base directory if needed.
func NewDiskStore(baseDir, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskStore{
		baseDir: baseDir,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// Upload writes the file to <baseDir>/<folder>/<uuid><ext> and returns its
// public URL.
func (s *DiskStore) Upload(ctx context.Context, file multipart.File, header *multipart.FileHeader, folder string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dir := filepath.Join(s.baseDir, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create folder: %w", err)
	}

	name := uuid.New().String() + sanitizeExt(header.Filename)
	path := filepath.Join(dir, name)

	dst, err := os.Create(path)
	if err != nil {
		metrics.MediaUploadsTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("create object: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		os.Remove(path)
		metrics.MediaUploadsTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("write object: %w", err)
	}

	metrics.MediaUploadsTotal.WithLabelValues("ok").Inc()
	return fmt.Sprintf("%s/%s/%s", s.baseURL, folder, name), nil
}

// Delete removes the object behind url. URLs outside this store's prefix and
// objects that no longer exist are ignored.
func (s *DiskStore) Delete(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if url == "" || !strings.HasPrefix(url, s.baseURL+"/") {
		return nil
	}

	rel := strings.TrimPrefix(url, s.baseURL+"/")
	// Reject traversal out of the base directory.
	rel = filepath.Clean(rel)
	if rel == "." || strings.HasPrefix(rel, "..") {
		return nil
	}

	path := filepath.Join(s.baseDir, rel)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove object: %w", err)
	}
	return nil
}

// Dir returns the base directory, for mounting a static file server.
func (s *DiskStore) Dir() string {
	return s.baseDir
}

func sanitizeExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if len(ext) > 10 {
		return ""
	}
	for _, r := range ext {
		if r != '.' && (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}
