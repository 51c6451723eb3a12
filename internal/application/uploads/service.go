package uploads

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"tabiconst-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	MaxFiles    = 5
	MaxFileSize = 10 << 20
	PublicPath  = "/uploads/"
)

// ImageStore persists an uploaded image and returns its public URL. Remove
// deletes a previously saved URL; removing a missing file is not an error.
type ImageStore interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
	Remove(ctx context.Context, url string) error
}

// DiskStore writes images under Dir as <unixms>-<id>-<name>.
type DiskStore struct {
	Dir string
	Now func() time.Time
	ID  func() string
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

func (d *DiskStore) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return "", fmt.Errorf("upload dir: %w", err)
	}
	now := time.Now
	if d.Now != nil {
		now = d.Now
	}
	newID := shortID
	if d.ID != nil {
		newID = d.ID
	}
	file := fmt.Sprintf("%d-%s-%s", now().UnixMilli(), newID(), cleanName(name))
	f, err := os.OpenFile(filepath.Join(d.Dir, file), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create upload: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("write upload: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close upload: %w", err)
	}
	return PublicPath + file, nil
}

func (d *DiskStore) Remove(ctx context.Context, url string) error {
	file := filepath.Base(strings.TrimPrefix(url, PublicPath))
	if file == "." || file == "/" || file == "" {
		return nil
	}
	if err := os.Remove(filepath.Join(d.Dir, file)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove upload: %w", err)
	}
	return nil
}

func shortID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

func cleanName(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	base = unsafeName.ReplaceAllString(base, "_")
	if base == "" || base == "." || base == "_" {
		return "image"
	}
	return base
}

// Service accepts listing image batches.
type Service struct {
	Store ImageStore
}

// Validate checks a batch before anything is stored: at most MaxFiles files,
// each at most MaxFileSize bytes with an image/* content type.
func Validate(files []*multipart.FileHeader) error {
	if len(files) > MaxFiles {
		return domain.Invalid("images", fmt.Sprintf("at most %d files may be uploaded", MaxFiles))
	}
	for _, fh := range files {
		if fh.Size > MaxFileSize {
			return domain.Invalid("images", fmt.Sprintf("%s exceeds the 10MB limit", fh.Filename))
		}
		if !strings.HasPrefix(strings.ToLower(fh.Header.Get("Content-Type")), "image/") {
			return domain.Invalid("images", "Only image files are allowed")
		}
	}
	return nil
}

// SaveImages validates and stores files in order and returns their URLs. If
// any file fails, the ones already stored are removed.
func (s *Service) SaveImages(ctx context.Context, files []*multipart.FileHeader) ([]string, error) {
	if err := Validate(files); err != nil {
		return nil, err
	}
	urls := make([]string, 0, len(files))
	for _, fh := range files {
		url, err := s.save(ctx, fh)
		if err != nil {
			s.Discard(ctx, urls)
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}

func (s *Service) save(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()
	return s.Store.Save(ctx, fh.Filename, f)
}

// Discard removes stored images whose operation did not complete. Failures
// are logged.
func (s *Service) Discard(ctx context.Context, urls []string) {
	for _, url := range urls {
		if err := s.Store.Remove(ctx, url); err != nil {
			log.Error().Err(err).Str("url", url).Msg("discard upload")
		}
	}
}
