package testutil

import (
	"context"
	"fmt"
	"mime/multipart"
	"sync"
)

// MediaStore is an in-memory media.Store that hands out fake URLs.
type MediaStore struct {
	mu      sync.Mutex
	n       int
	Deleted []string
	// FailUpload makes Upload return an error, for exercising upstream
	// failure paths.
	FailUpload bool
}

// NewMediaStore returns an empty in-memory media store.
func NewMediaStore() *MediaStore {
	return &MediaStore{}
}

func (s *MediaStore) Upload(ctx context.Context, file multipart.File, header *multipart.FileHeader, folder string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailUpload {
		return "", fmt.Errorf("upload failed")
	}
	s.n++
	return fmt.Sprintf("http://media.test/%s/%d", folder, s.n), nil
}

func (s *MediaStore) Delete(ctx context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Deleted = append(s.Deleted, url)
	return nil
}
