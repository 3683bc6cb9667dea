package imagecache

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// MaxImageSize caps a single download.
const MaxImageSize = 20 << 20

var _ Store = (*FileStore)(nil)

// FileStore keeps downloaded images as files in one directory of an afero filesystem.
type FileStore struct {
	fs     afero.Fs
	dir    string
	client *http.Client
}

// NewFileStore creates a FileStore writing into dir. A nil client selects
// http.DefaultClient.
func NewFileStore(fs afero.Fs, dir string, client *http.Client) *FileStore {
	if client == nil {
		client = http.DefaultClient
	}
	return &FileStore{
		fs:     fs,
		dir:    dir,
		client: client,
	}
}

// SaveFileFromURL downloads url into a new uniquely named file.
func (s *FileStore) SaveFileFromURL(ctx context.Context, url string) (Metadata, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Metadata{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxImageSize+1))
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to read body: %w", err)
	}
	if len(data) > MaxImageSize {
		return Metadata{}, fmt.Errorf("image exceeds %d bytes", MaxImageSize)
	}

	mtype := mimetype.Detect(data)
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return Metadata{}, fmt.Errorf("failed to create image directory: %w", err)
	}
	path := filepath.Join(s.dir, uuid.NewString()+mtype.Extension())
	if err := afero.WriteFile(s.fs, path, data, 0o644); err != nil {
		return Metadata{}, fmt.Errorf("failed to write image file: %w", err)
	}

	return Metadata{
		SourceURL: url,
		FilePath:  path,
		MimeType:  mtype.String(),
	}, nil
}

func (s *FileStore) FileExists(path string) (bool, error) {
	return afero.Exists(s.fs, path)
}

// GetFileAsBase64URL reads the file behind meta as a data URL.
func (s *FileStore) GetFileAsBase64URL(meta Metadata) (string, error) {
	data, err := afero.ReadFile(s.fs, meta.FilePath)
	if err != nil {
		return "", fmt.Errorf("failed to read image file: %w", err)
	}
	return "data:" + meta.MimeType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// DeleteAll removes the image directory and everything in it.
func (s *FileStore) DeleteAll() error {
	if err := s.fs.RemoveAll(s.dir); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove image directory: %w", err)
	}
	return nil
}
