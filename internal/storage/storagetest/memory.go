// Package storagetest provides an in-memory BlobStore for tests.
package storagetest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/JonMunkholm/prevalidate/internal/storage"
)

// Call records one operation made against the store.
type Call struct {
	Op        string // size, copy, fetch
	Path      string
	ByteRange string
}

// Store keeps objects in memory and records every call.
//
// Ranges, when it has an entry for a byte range string, overrides the bytes
// served for that range. Sizes overrides the reported size of an object.
type Store struct {
	mu      sync.Mutex
	objects map[string][]byte

	Sizes  map[string]int64
	Ranges map[string][]byte

	SizeErr  error
	CopyErr  error
	FetchErr error

	// WrapBody lets tests inject faults into fetched bodies.
	WrapBody func(io.Reader) io.Reader

	calls []Call
}

// New returns an empty store.
func New() *Store {
	return &Store{
		objects: make(map[string][]byte),
		Sizes:   make(map[string]int64),
		Ranges:  make(map[string][]byte),
	}
}

// Put stores data under path.
func (s *Store) Put(path string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[path] = data
}

// Calls returns the recorded calls in order.
func (s *Store) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// CallCount returns how many calls were made for op.
func (s *Store) CallCount(op string) int {
	n := 0
	for _, c := range s.Calls() {
		if c.Op == op {
			n++
		}
	}
	return n
}

func (s *Store) record(c Call) {
	s.mu.Lock()
	s.calls = append(s.calls, c)
	s.mu.Unlock()
}

func (s *Store) get(path string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[path]
	if !ok {
		return nil, &storage.APIError{Op: "get", Path: path, Err: fmt.Errorf("object %s does not exist", path)}
	}
	return data, nil
}

// Size implements storage.BlobStore.
func (s *Store) Size(_ context.Context, path string) (int64, error) {
	s.record(Call{Op: "size", Path: path})
	if s.SizeErr != nil {
		return 0, s.SizeErr
	}
	if size, ok := s.Sizes[path]; ok {
		return size, nil
	}
	data, err := s.get(path)
	if err != nil {
		return 0, err
	}
	return int64(len(data)), nil
}

// Copy implements storage.BlobStore.
func (s *Store) Copy(_ context.Context, path, dst string) error {
	s.record(Call{Op: "copy", Path: path})
	if s.CopyErr != nil {
		return s.CopyErr
	}
	data, err := s.get(path)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o600)
}

// FetchRange implements storage.BlobStore.
func (s *Store) FetchRange(_ context.Context, path, byteRange string) (io.ReadCloser, error) {
	s.record(Call{Op: "fetch", Path: path, ByteRange: byteRange})
	if s.FetchErr != nil {
		return nil, s.FetchErr
	}

	var body []byte
	if data, ok := s.Ranges[byteRange]; ok {
		body = data
	} else {
		data, err := s.get(path)
		if err != nil {
			return nil, err
		}
		start, end, ranged, err := storage.ParseByteRange(byteRange)
		if err != nil {
			return nil, &storage.APIError{Op: "fetch", Path: path, Err: err}
		}
		body = data
		if ranged {
			if start > int64(len(data)) {
				start = int64(len(data))
			}
			if end >= int64(len(data)) {
				end = int64(len(data)) - 1
			}
			body = data[start : end+1]
		}
	}

	var r io.Reader = bytes.NewReader(body)
	if s.WrapBody != nil {
		r = s.WrapBody(r)
	}
	return io.NopCloser(r), nil
}
