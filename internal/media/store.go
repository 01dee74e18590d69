package media

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// MaxImageSize bounds a single uploaded event image.
const MaxImageSize = 10 << 20

// ErrUnsupportedType is returned for uploads whose extension is not an image
// type we accept, or whose content does not match the extension.
var ErrUnsupportedType = errors.New("unsupported image type")

// ErrTooLarge is returned when an upload exceeds MaxImageSize.
var ErrTooLarge = errors.New("image too large")

// allowedTypes maps accepted extensions to the content type their bytes must carry.
var allowedTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// sniffLen is how much of an upload is read to detect its content type.
const sniffLen = 512

// Store saves event images under a base directory.
type Store struct {
	basePath string
}

// NewStore creates a Store rooted at basePath, creating the directory if needed.
func NewStore(basePath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(basePath, "events"), 0755); err != nil {
		return nil, fmt.Errorf("could not create media directory: %w", err)
	}
	return &Store{basePath: basePath}, nil
}

// Save writes the image to disk under a generated name and returns its path
// relative to the media directory.
func (s *Store) Save(originalName string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	want, ok := allowedTypes[ext]
	if !ok {
		return "", ErrUnsupportedType
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("could not read image: %w", err)
	}
	head = head[:n]
	if !mimetype.Detect(head).Is(want) {
		return "", ErrUnsupportedType
	}
	r = io.MultiReader(bytes.NewReader(head), r)

	rel := filepath.ToSlash(filepath.Join("events", uuid.New().String()+ext))
	fullPath := filepath.Join(s.basePath, filepath.FromSlash(rel))

	f, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("could not create image file: %w", err)
	}
	defer f.Close()

	written, err := io.Copy(f, io.LimitReader(r, MaxImageSize+1))
	if err != nil {
		os.Remove(fullPath) // Clean up partial file
		return "", fmt.Errorf("could not write image file: %w", err)
	}
	if written > MaxImageSize {
		os.Remove(fullPath)
		return "", ErrTooLarge
	}
	return rel, nil
}

// Remove deletes a previously saved image. Missing files are not an error.
func (s *Store) Remove(rel string) error {
	clean := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return fmt.Errorf("invalid media path %q", rel)
	}
	err := os.Remove(filepath.Join(s.basePath, clean))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
