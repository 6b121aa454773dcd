package storage

import (
	"context"
	"fmt"
	"io"
	"os"
)

// LocalStore serves objects from the local filesystem. Paths may be plain
// or carry a file:// scheme.
type LocalStore struct{}

// NewLocalStore returns a filesystem-backed store.
func NewLocalStore() *LocalStore {
	return &LocalStore{}
}

// Size returns the file size.
func (s *LocalStore) Size(_ context.Context, path string) (int64, error) {
	info, err := os.Stat(LocalPath(path))
	if err != nil {
		return 0, &APIError{Op: "size", Path: path, Err: err}
	}
	return info.Size(), nil
}

// Copy duplicates the file into dst.
func (s *LocalStore) Copy(ctx context.Context, path, dst string) error {
	src, err := os.Open(LocalPath(path))
	if err != nil {
		return &APIError{Op: "copy", Path: path, Err: err}
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}

	if _, err := io.Copy(out, contextReader{ctx: ctx, r: src}); err != nil {
		out.Close()
		return fmt.Errorf("copy %s: %w", path, err)
	}
	return out.Close()
}

// FetchRange opens the file and limits reads to the requested range.
func (s *LocalStore) FetchRange(_ context.Context, path, byteRange string) (io.ReadCloser, error) {
	start, end, ranged, err := ParseByteRange(byteRange)
	if err != nil {
		return nil, &APIError{Op: "fetch", Path: path, Err: err}
	}

	f, err := os.Open(LocalPath(path))
	if err != nil {
		return nil, &APIError{Op: "fetch", Path: path, Err: err}
	}
	if !ranged {
		return f, nil
	}

	return &sectionReadCloser{
		Reader: io.NewSectionReader(f, start, end-start+1),
		closer: f,
	}, nil
}

type sectionReadCloser struct {
	io.Reader
	closer io.Closer
}

func (s *sectionReadCloser) Close() error {
	return s.closer.Close()
}

// contextReader stops a long copy once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
