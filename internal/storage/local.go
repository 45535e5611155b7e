package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// LocalStore keeps images on the filesystem below Root.
type LocalStore struct {
	Root string
}

func NewLocalStore(root string) *LocalStore {
	return &LocalStore{Root: root}
}

func (s *LocalStore) Save(_ context.Context, filename string, r io.Reader) (string, error) {
	if err := os.MkdirAll(filepath.Join(s.Root, UploadDir), 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	for {
		ref, err := availableRef(filename, func(ref string) (bool, error) {
			_, err := os.Stat(s.path(ref))
			if errors.Is(err, fs.ErrNotExist) {
				return false, nil
			}
			return err == nil, err
		})
		if err != nil {
			return "", err
		}
		f, err := os.OpenFile(s.path(ref), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue // lost a race for the name
		}
		if err != nil {
			return "", err
		}
		if _, err := io.Copy(f, r); err != nil {
			f.Close()
			os.Remove(f.Name())
			return "", err
		}
		return ref, f.Close()
	}
}

func (s *LocalStore) Open(_ context.Context, ref string) (io.ReadCloser, error) {
	if !validRef(ref) {
		return nil, ErrNotExist
	}
	f, err := os.Open(s.path(ref))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotExist
	}
	return f, err
}

// Delete removes the image at ref. Unknown references report ErrNotExist.
func (s *LocalStore) Delete(_ context.Context, ref string) error {
	if !validRef(ref) {
		return ErrNotExist
	}
	err := os.Remove(s.path(ref))
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotExist
	}
	return err
}

func (s *LocalStore) path(ref string) string {
	return filepath.Join(s.Root, filepath.FromSlash(ref))
}
