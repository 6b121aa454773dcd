package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// GCSStore reads objects from Google Cloud Storage.
type GCSStore struct {
	client *gcs.Client
}

// NewGCSStore builds a GCS client. creds.AccessKeyData, when set, holds a
// service account JSON key; otherwise application default credentials apply.
func NewGCSStore(ctx context.Context, creds Credentials) (*GCSStore, error) {
	var opts []option.ClientOption
	if creds.AccessKeyData != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(creds.AccessKeyData)))
	}

	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &GCSStore{client: client}, nil
}

// Close releases the underlying client.
func (s *GCSStore) Close() error {
	return s.client.Close()
}

func (s *GCSStore) object(path string) (*gcs.ObjectHandle, error) {
	loc, err := ParseGCSLocation(path)
	if err != nil {
		return nil, err
	}
	return s.client.Bucket(loc.Bucket).Object(loc.Key), nil
}

// Size reads the object attributes.
func (s *GCSStore) Size(ctx context.Context, path string) (int64, error) {
	obj, err := s.object(path)
	if err != nil {
		return 0, err
	}

	attrs, err := obj.Attrs(ctx)
	if err != nil {
		return 0, wrapGCSError("size", path, err)
	}
	return attrs.Size, nil
}

// Copy downloads the object into dst.
func (s *GCSStore) Copy(ctx context.Context, path, dst string) error {
	body, err := s.FetchRange(ctx, path, "")
	if err != nil {
		return err
	}
	defer body.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, body); err != nil {
		out.Close()
		return wrapGCSError("copy", path, err)
	}
	return out.Close()
}

// FetchRange opens a range reader over the object.
func (s *GCSStore) FetchRange(ctx context.Context, path, byteRange string) (io.ReadCloser, error) {
	obj, err := s.object(path)
	if err != nil {
		return nil, err
	}

	start, end, ranged, err := ParseByteRange(byteRange)
	if err != nil {
		return nil, &APIError{Op: "fetch", Path: path, Err: err}
	}

	var r *gcs.Reader
	if ranged {
		r, err = obj.NewRangeReader(ctx, start, end-start+1)
	} else {
		r, err = obj.NewReader(ctx)
	}
	if err != nil {
		return nil, wrapGCSError("fetch", path, err)
	}
	return r, nil
}

// wrapGCSError promotes not-found and googleapi errors to *APIError.
func wrapGCSError(op, path string, err error) error {
	var gErr *googleapi.Error
	if errors.Is(err, gcs.ErrObjectNotExist) || errors.Is(err, gcs.ErrBucketNotExist) || errors.As(err, &gErr) {
		return &APIError{Op: op, Path: path, Err: err}
	}
	return err
}
