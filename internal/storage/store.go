// Package storage provides the blob store collaborators the input data
// validator reads from: object size lookup, whole-object copy to a local
// path, and ranged byte fetches.
//
// Three implementations are available: S3 (AWS), GCS (GCP) and the local
// filesystem. Use [Open] to build one from a cloud provider name.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// BlobStore is the collaborator contract used by the validator.
type BlobStore interface {
	// Size returns the object size in bytes.
	Size(ctx context.Context, path string) (int64, error)

	// Copy downloads the whole object into the local file dst.
	Copy(ctx context.Context, path, dst string) error

	// FetchRange opens a byte range of the object. byteRange is either
	// "bytes=<start>-<end>" (inclusive) or "" for the whole object.
	FetchRange(ctx context.Context, path, byteRange string) (io.ReadCloser, error)
}

// APIError marks a failure reported by the store's own API (missing object,
// denied access, malformed request). Callers use it to tell recognized store
// failures apart from unexpected faults.
type APIError struct {
	Op   string // size, copy, fetch
	Path string
	Err  error
}

func (e *APIError) Error() string {
	return e.Err.Error()
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// IsAPIError reports whether err carries an *APIError.
func IsAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}

// ErrInvalidRange is returned for byte range strings that do not parse.
var ErrInvalidRange = errors.New("invalid byte range")

// ParseByteRange parses "bytes=<start>-<end>". ok is false for "", which
// means the whole object.
func ParseByteRange(byteRange string) (start, end int64, ok bool, err error) {
	if byteRange == "" {
		return 0, 0, false, nil
	}

	spec, found := strings.CutPrefix(byteRange, "bytes=")
	if !found {
		return 0, 0, false, fmt.Errorf("%w: %q", ErrInvalidRange, byteRange)
	}
	lo, hi, found := strings.Cut(spec, "-")
	if !found {
		return 0, 0, false, fmt.Errorf("%w: %q", ErrInvalidRange, byteRange)
	}

	start, err = strconv.ParseInt(lo, 10, 64)
	if err != nil {
		return 0, 0, false, fmt.Errorf("%w: %q", ErrInvalidRange, byteRange)
	}
	end, err = strconv.ParseInt(hi, 10, 64)
	if err != nil || end < start {
		return 0, 0, false, fmt.Errorf("%w: %q", ErrInvalidRange, byteRange)
	}
	return start, end, true, nil
}

// Close releases store resources when the implementation holds any.
func Close(store BlobStore) error {
	if c, ok := store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
