// Package upload persists product images received as multipart file parts.
package upload

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"catalog_api/internal/common"
	"catalog_api/internal/platform/metrics"

	"github.com/gosimple/slug"
	_ "golang.org/x/image/webp"
)

const (
	DefaultMaxFileSize = 5 * 1024 * 1024
	MaxImageDimension  = 8192

	// PreferredField is the form field checked first for an image.
	PreferredField = "image"
)

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

var allowedContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// ImageFile describes an image on disk.
type ImageFile struct {
	Name    string
	ModTime time.Time
}

type ImageStore struct {
	dir     string
	maxSize int64
	now     func() time.Time
}

func NewImageStore(dir string, maxSize int64) (*ImageStore, error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("upload: create %s: %w", dir, err)
	}
	return &ImageStore{dir: dir, maxSize: maxSize, now: time.Now}, nil
}

func (s *ImageStore) Dir() string {
	return s.dir
}

// Filename derives the stored name: <unix millis>_<slugged base><ext>.
func (s *ImageStore) Filename(original string) string {
	base := filepath.Base(strings.ReplaceAll(original, "\\", "/"))
	ext := strings.ToLower(filepath.Ext(base))
	name := slug.Make(strings.TrimSuffix(base, filepath.Ext(base)))
	if name == "" {
		name = "image"
	}
	return strconv.FormatInt(s.now().UnixMilli(), 10) + "_" + name + ext
}

// FirstFile picks the uploaded file to use: the "image" field when present,
// otherwise the first file of the alphabetically first file field.
func FirstFile(form *multipart.Form) *multipart.FileHeader {
	if form == nil || len(form.File) == 0 {
		return nil
	}
	if files := form.File[PreferredField]; len(files) > 0 {
		return files[0]
	}
	fields := make([]string, 0, len(form.File))
	for field := range form.File {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		if files := form.File[field]; len(files) > 0 {
			return files[0]
		}
	}
	return nil
}

// Save validates fh and writes it to the image directory, returning the stored filename.
func (s *ImageStore) Save(fh *multipart.FileHeader) (string, error) {
	content, err := s.validate(fh)
	if err != nil {
		return "", err
	}

	filename := s.Filename(fh.Filename)
	path := filepath.Join(s.dir, filename)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("upload: write %s: %w", path, err)
	}
	metrics.ImagesStored.Inc()
	return filename, nil
}

func (s *ImageStore) validate(fh *multipart.FileHeader) ([]byte, error) {
	if fh.Size > s.maxSize {
		return nil, fmt.Errorf("image exceeds %d bytes: %w", s.maxSize, common.ErrBadRequest)
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedExtensions[ext] {
		return nil, fmt.Errorf("image extension %q not allowed: %w", ext, common.ErrBadRequest)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("upload: open part: %w", err)
	}
	defer f.Close()

	content, err := io.ReadAll(io.LimitReader(f, s.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("upload: read part: %w", err)
	}
	if int64(len(content)) > s.maxSize {
		return nil, fmt.Errorf("image exceeds %d bytes: %w", s.maxSize, common.ErrBadRequest)
	}
	if len(content) == 0 {
		return nil, fmt.Errorf("image is empty: %w", common.ErrBadRequest)
	}

	detected := http.DetectContentType(content)
	if !allowedContentTypes[detected] {
		return nil, fmt.Errorf("image content type %q not allowed: %w", detected, common.ErrBadRequest)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("image could not be decoded: %w", common.ErrBadRequest)
	}
	if cfg.Width > MaxImageDimension || cfg.Height > MaxImageDimension {
		return nil, fmt.Errorf("image dimensions %dx%d too large: %w", cfg.Width, cfg.Height, common.ErrBadRequest)
	}
	return content, nil
}

// Remove deletes a stored image. Missing files are not an error.
func (s *ImageStore) Remove(filename string) error {
	if filename == "" {
		return nil
	}
	if filename != filepath.Base(filename) {
		return fmt.Errorf("upload: refusing to remove %q", filename)
	}
	err := os.Remove(filepath.Join(s.dir, filename))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("upload: remove %s: %w", filename, err)
	}
	return nil
}

// List returns the regular files in the image directory.
func (s *ImageStore) List() ([]ImageFile, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("upload: list %s: %w", s.dir, err)
	}
	files := make([]ImageFile, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, ImageFile{Name: e.Name(), ModTime: info.ModTime()})
	}
	return files, nil
}
