package blobstore

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var ErrFileNotFound = errors.New("file not found")

// Store persists uploaded files in a flat directory namespace. Stored names
// are unique: a taken name gets an incrementing numeric suffix before the
// extension (report.txt, report_1.txt, report_2.txt, ...).
type Store struct {
	root string
}

func New(root string) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("failed to create blob root: %w", err)
	}
	return &Store{root: abs}, nil
}

func (s *Store) Root() string { return s.root }

// Save writes the content under the sanitized desired name, resolving
// collisions with the numeric suffix. The name is reserved with O_EXCL so
// two concurrent saves of the same name can never race into one file.
func (s *Store) Save(desiredName string, content io.Reader) (string, string, error) {
	name := sanitizeName(desiredName)
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	for counter := 0; ; counter++ {
		candidate := name
		if counter > 0 {
			candidate = fmt.Sprintf("%s_%d%s", stem, counter, ext)
		}
		absPath := filepath.Join(s.root, candidate)

		f, err := os.OpenFile(absPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", "", fmt.Errorf("failed to create file: %w", err)
		}

		if _, err := io.Copy(f, content); err != nil {
			f.Close()
			_ = os.Remove(absPath)
			return "", "", fmt.Errorf("failed to write file: %w", err)
		}
		if err := f.Close(); err != nil {
			_ = os.Remove(absPath)
			return "", "", err
		}
		return candidate, absPath, nil
	}
}

func (s *Store) Retrieve(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrFileNotFound
	}
	return data, err
}

// Remove deletes the file at path. A missing file is not an error.
func (s *Store) Remove(path string) error {
	err := os.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// sanitizeName strips path segments and unsafe characters from an uploaded
// filename, keeping the extension intact.
func sanitizeName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)

	ext := strings.ToLower(filepath.Ext(name))
	stem := strings.TrimSuffix(name, filepath.Ext(name))

	clean := func(s string) string {
		return strings.Map(func(r rune) rune {
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
				return r
			}
			return '_'
		}, s)
	}

	stem = clean(stem)
	stem = strings.Trim(stem, "_")
	if len(stem) > 80 {
		stem = stem[:80]
	}
	if stem == "" {
		stem = "file"
	}
	if ext != "" {
		ext = "." + clean(ext[1:])
	}
	return stem + ext
}
