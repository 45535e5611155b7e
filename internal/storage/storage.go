// Package storage persists uploaded post images and streams them back.
package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

// UploadDir is the reference prefix of post images.
const UploadDir = "posts"

// ErrNotExist is returned by Open for unknown references.
var ErrNotExist = errors.New("image does not exist")

// ImageStore saves images under a reference like posts/cat.gif.
type ImageStore interface {
	Save(ctx context.Context, filename string, r io.Reader) (string, error)
	Open(ctx context.Context, ref string) (io.ReadCloser, error)
	Delete(ctx context.Context, ref string) error
}

// cleanName strips directories and characters that do not belong in a
// file name, keeping the extension.
func cleanName(filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		case r == ' ':
			return '_'
		}
		return -1
	}, name)
	name = strings.TrimLeft(name, ".")
	if name == "" {
		name = "image"
	}
	return name
}

// availableRef returns posts/<name>, adding a short random suffix while
// exists reports the reference as taken.
func availableRef(filename string, exists func(ref string) (bool, error)) (string, error) {
	name := cleanName(filename)
	ref := path.Join(UploadDir, name)
	for {
		taken, err := exists(ref)
		if err != nil {
			return "", err
		}
		if !taken {
			return ref, nil
		}
		ext := path.Ext(name)
		base := strings.TrimSuffix(name, ext)
		ref = path.Join(UploadDir, base+"_"+uuid.NewString()[:7]+ext)
	}
}

// validRef reports whether ref points inside the upload directory.
func validRef(ref string) bool {
	clean := path.Clean("/" + ref)
	return strings.HasPrefix(clean, "/"+UploadDir+"/") && clean[1:] == ref
}

// Open returns a GridFS store on db when it is set and a filesystem store
// below root otherwise.
func Open(root string, db *mongo.Database) (ImageStore, error) {
	if db == nil {
		return NewLocalStore(root), nil
	}
	store, err := NewGridFSStore(db)
	if err != nil {
		return nil, err
	}
	return store, nil
}
