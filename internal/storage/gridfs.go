package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GridFSStore keeps images in a MongoDB GridFS bucket, keyed by reference.
type GridFSStore struct {
	bucket *gridfs.Bucket
}

// NewGridFSStore opens the "images" bucket of db.
func NewGridFSStore(db *mongo.Database) (*GridFSStore, error) {
	bucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName("images"))
	if err != nil {
		return nil, fmt.Errorf("open gridfs bucket: %w", err)
	}
	return &GridFSStore{bucket: bucket}, nil
}

func (s *GridFSStore) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	ref, err := availableRef(filename, func(ref string) (bool, error) {
		cursor, err := s.bucket.Find(bson.M{"filename": ref})
		if err != nil {
			return false, err
		}
		defer cursor.Close(ctx)
		return cursor.Next(ctx), cursor.Err()
	})
	if err != nil {
		return "", err
	}
	if _, err := s.bucket.UploadFromStream(ref, r); err != nil {
		return "", fmt.Errorf("upload %s: %w", ref, err)
	}
	return ref, nil
}

func (s *GridFSStore) Open(_ context.Context, ref string) (io.ReadCloser, error) {
	if !validRef(ref) {
		return nil, ErrNotExist
	}
	stream, err := s.bucket.OpenDownloadStreamByName(ref)
	if errors.Is(err, gridfs.ErrFileNotFound) {
		return nil, ErrNotExist
	}
	if err != nil {
		return nil, err
	}
	return stream, nil
}

func (s *GridFSStore) Delete(ctx context.Context, ref string) error {
	if !validRef(ref) {
		return ErrNotExist
	}
	cursor, err := s.bucket.Find(bson.M{"filename": ref})
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)
	var files []gridfs.File
	if err := cursor.All(ctx, &files); err != nil {
		return err
	}
	if len(files) == 0 {
		return ErrNotExist
	}
	for _, f := range files {
		if err := s.bucket.Delete(f.ID); err != nil {
			return fmt.Errorf("delete %s: %w", ref, err)
		}
	}
	return nil
}
