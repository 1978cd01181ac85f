package local

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/ammargroup/storefront-backend/pkg/config"
	"github.com/ammargroup/storefront-backend/pkg/logger"
	"go.uber.org/multierr"
)

// ErrOutsideRoot is returned when a URL resolves outside the uploads root.
var ErrOutsideRoot = errors.New("path escapes uploads root")

// StoredFile describes one object written to the asset store.
type StoredFile struct {
	Name string // generated filename
	URL  string // public URL, e.g. /uploads/images-1693298112000-482910476.jpg
	Path string // absolute filesystem path
}

// Store is the filesystem asset store backing /uploads. Filenames are
// generated to be collision-resistant; callers treat URLs as opaque.
type Store struct {
	root       string
	publicPath string
	now        func() time.Time
}

// New creates the uploads directory if needed and returns a store over it.
func New(ctx context.Context, cfg config.UploadsConfig, logg *logger.Logger) (*Store, error) {
	if cfg.Dir == "" {
		return nil, errors.New("uploads directory is required")
	}

	root, err := filepath.Abs(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("resolving uploads dir: %w", err)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating uploads dir: %w", err)
	}

	publicPath := cfg.PublicPath
	if publicPath == "" {
		publicPath = "/uploads"
	}
	publicPath = "/" + strings.Trim(publicPath, "/")

	if logg != nil {
		logg.Info(logg.WithField(ctx, "dir", root), "asset store ready")
	}

	return &Store{root: root, publicPath: publicPath, now: time.Now}, nil
}

// Root returns the absolute uploads directory, for static file serving.
func (s *Store) Root() string {
	return s.root
}

// PublicPath returns the URL prefix the store serves under.
func (s *Store) PublicPath() string {
	return s.publicPath
}

// Save streams the reader to a freshly generated filename and returns the
// stored file. The name keeps the multer shape the deployed site produced:
// images-<unix-ms>-<random>.<ext>.
func (s *Store) Save(ctx context.Context, originalName string, r io.Reader) (StoredFile, error) {
	name, err := s.generateName(originalName)
	if err != nil {
		return StoredFile{}, err
	}

	fullPath := filepath.Join(s.root, name)
	f, err := os.OpenFile(fullPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return StoredFile{}, fmt.Errorf("creating upload file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(fullPath)
		return StoredFile{}, fmt.Errorf("writing upload file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(fullPath)
		return StoredFile{}, fmt.Errorf("closing upload file: %w", err)
	}

	return StoredFile{
		Name: name,
		URL:  s.publicPath + "/" + name,
		Path: fullPath,
	}, nil
}

// Discard removes staged files. Used as the compensating action when the
// surrounding database transaction aborts.
func (s *Store) Discard(files []StoredFile) error {
	var errs []error
	for _, file := range files {
		if err := os.Remove(file.Path); err != nil && !os.IsNotExist(err) {
			errs = append(errs, fmt.Errorf("discard %s: %w", file.Name, err))
		}
	}
	return multierr.Combine(errs...)
}

// Remove deletes the file backing a public URL. Missing files are not an
// error; a URL outside the uploads prefix is.
func (s *Store) Remove(url string) error {
	full, err := s.resolve(url)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w", url, err)
	}
	return nil
}

// Exists reports whether the file backing a public URL is on disk.
func (s *Store) Exists(url string) (bool, error) {
	full, err := s.resolve(url)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(full); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// List returns the URLs of every file currently in the store.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("reading uploads dir: %w", err)
	}
	urls := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		urls = append(urls, s.publicPath+"/"+entry.Name())
	}
	return urls, nil
}

// ModifiedBefore reports whether the file backing the URL is older than cutoff.
func (s *Store) ModifiedBefore(url string, cutoff time.Time) (bool, error) {
	full, err := s.resolve(url)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(full)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.ModTime().Before(cutoff), nil
}

func (s *Store) resolve(url string) (string, error) {
	trimmed, ok := strings.CutPrefix(url, s.publicPath+"/")
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrOutsideRoot, url)
	}
	cleaned := path.Clean("/" + trimmed)
	full := filepath.Join(s.root, filepath.FromSlash(cleaned))
	if !strings.HasPrefix(full, s.root+string(os.PathSeparator)) {
		return "", fmt.Errorf("%w: %q", ErrOutsideRoot, url)
	}
	return full, nil
}

func (s *Store) generateName(originalName string) (string, error) {
	suffix, err := rand.Int(rand.Reader, big.NewInt(1_000_000_000))
	if err != nil {
		return "", fmt.Errorf("generating filename suffix: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(originalName))
	return fmt.Sprintf("images-%d-%d%s", s.now().UnixMilli(), suffix.Int64(), ext), nil
}
