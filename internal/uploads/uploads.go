// Package uploads validates, names and stores user uploaded images in a
// single flat directory.
package uploads

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrUnsupportedFileType is returned for names whose extension is not allowed.
	ErrUnsupportedFileType = errors.New("unsupported file type")
	// ErrInvalidName is returned when a stored name is requested with path components.
	ErrInvalidName = errors.New("invalid file name")
)

const maxAttempts = 5

// Naming builds the stored name from a sanitized original name. attempt
// starts at zero and grows each time the previous name already existed.
type Naming func(safeName string, attempt int) string

// TimestampNaming prefixes names with the upload time and a random
// discriminator, so uploads within the same second stay distinct.
func TimestampNaming(now func() time.Time) Naming {
	return func(safeName string, _ int) string {
		return fmt.Sprintf("%s_%s_%s", now().UTC().Format("20060102150405"), shortID(), safeName)
	}
}

// OwnerNaming prefixes names with the owning user's ID. A random
// discriminator is added only when that name is already taken.
func OwnerNaming(ownerID string) Naming {
	return func(safeName string, attempt int) string {
		if attempt == 0 {
			return fmt.Sprintf("%s_%s", ownerID, safeName)
		}
		return fmt.Sprintf("%s_%s_%s", ownerID, shortID(), safeName)
	}
}

func shortID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
}

// Store writes files into dir.
type Store struct {
	dir     string
	allowed map[string]struct{}
}

// NewStore creates dir if needed and returns a Store accepting the given
// extensions (without dots, case-insensitive).
func NewStore(dir string, allowedExtensions []string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", dir, err)
	}
	allowed := make(map[string]struct{}, len(allowedExtensions))
	for _, ext := range allowedExtensions {
		allowed[strings.ToLower(strings.TrimPrefix(ext, "."))] = struct{}{}
	}
	return &Store{dir: dir, allowed: allowed}, nil
}

// Dir returns the upload directory.
func (s *Store) Dir() string {
	return s.dir
}

// Extension returns the lowercased extension of name when it is allowed.
func (s *Store) Extension(name string) (string, error) {
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return "", ErrUnsupportedFileType
	}
	ext := strings.ToLower(name[idx+1:])
	if _, ok := s.allowed[ext]; !ok {
		return "", ErrUnsupportedFileType
	}
	return ext, nil
}

// Accept checks the extension of originalName, then streams r into a new
// file named by naming. Nothing is written when the extension is rejected,
// and a partially written file is removed on failure.
func (s *Store) Accept(r io.Reader, originalName string, naming Naming) (string, error) {
	ext, err := s.Extension(originalName)
	if err != nil {
		return "", err
	}

	safe := SecureFilename(originalName)
	if !strings.HasSuffix(strings.ToLower(safe), "."+ext) {
		safe = strings.TrimSuffix("upload_"+safe, "_") + "." + ext
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		name := naming(safe, attempt)
		path := filepath.Join(s.dir, name)

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to create %s: %w", name, err)
		}

		if _, err := io.Copy(f, r); err != nil {
			f.Close()
			os.Remove(path)
			return "", fmt.Errorf("failed to write %s: %w", name, err)
		}
		if err := f.Close(); err != nil {
			os.Remove(path)
			return "", fmt.Errorf("failed to close %s: %w", name, err)
		}
		return name, nil
	}
	return "", fmt.Errorf("could not find a free name for %s after %d attempts", safe, maxAttempts)
}

// Path resolves a stored name to its location on disk. Only bare names are
// accepted; anything with a path component is ErrInvalidName.
func (s *Store) Path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", ErrInvalidName
	}
	return filepath.Join(s.dir, name), nil
}

// Open opens a stored file for reading together with its size. A name
// that was never stored fails with an error matching fs.ErrNotExist.
func (s *Store) Open(name string) (*os.File, int64, error) {
	path, err := s.Path(name)
	if err != nil {
		return nil, 0, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, err
	}
	if info.IsDir() {
		f.Close()
		return nil, 0, ErrInvalidName
	}
	return f, info.Size(), nil
}

// Remove deletes a stored file. Missing files are ignored.
func (s *Store) Remove(name string) error {
	path, err := s.Path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", name, err)
	}
	return nil
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// SecureFilename reduces name to a flat, ASCII-only file name: directory
// components are dropped, whitespace becomes '_' and any other character
// outside [A-Za-z0-9_.-] is removed. Leading and trailing dots and
// underscores are trimmed. The result may be empty.
func SecureFilename(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeChars.ReplaceAllString(name, "")
	return strings.Trim(name, "._")
}
