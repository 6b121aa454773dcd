package core

// lines.go implements the LineSource variants.
//
// A local source copies the whole object into a temp file and reads it back
// line by line. A chunked source splits the object into contiguous byte
// ranges, fetches them one at a time, and stitches lines that straddle a
// range boundary.
//
// Every line a source yields keeps its trailing '\n' so the row parser can
// reject other line endings.

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/JonMunkholm/prevalidate/internal/storage"
)

// DefaultStreamChunks is the number of byte ranges a streamed file is split into.
const DefaultStreamChunks = 4

// LineSource yields the lines of an input file in order.
type LineSource interface {
	// Next returns the next line, including its '\n' when present.
	// It returns io.EOF once the input is exhausted.
	Next(ctx context.Context) (string, error)

	// Close releases the source. It is safe to call more than once.
	Close() error

	// BytesRead reports how many bytes have been consumed so far.
	BytesRead() int64
}

// openLineSource returns the source matching the requested read mode.
func openLineSource(ctx context.Context, store storage.BlobStore, path string, stream bool, size int64, limits Limits) (LineSource, error) {
	if stream {
		return newChunkedSource(store, path, ChunkRanges(size, limits.StreamChunks)), nil
	}
	return openLocalSource(ctx, store, path, limits.TempDir)
}

// ============================================================================
// Local source
// ============================================================================

type localSource struct {
	file    *os.File
	reader  *bufio.Reader
	counter *CountingReader
	closed  bool
}

// openLocalSource downloads path into a temp file under dir and opens it.
// Any Copy error is a collaborator failure.
func openLocalSource(ctx context.Context, store storage.BlobStore, path, dir string) (*localSource, error) {
	tmp, err := os.CreateTemp(dir, tempFilePattern)
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	name := tmp.Name()
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return nil, fmt.Errorf("close temp file: %w", err)
	}

	if err := store.Copy(ctx, path, name); err != nil {
		os.Remove(name)
		return nil, collaborator(MsgDownloadFailed, err)
	}

	f, err := os.Open(name)
	if err != nil {
		os.Remove(name)
		return nil, fmt.Errorf("open downloaded file: %w", err)
	}

	counter := NewCountingReader(f)
	reader := bufio.NewReader(counter)
	if err := skipBOM(reader); err != nil {
		f.Close()
		os.Remove(name)
		return nil, fmt.Errorf("read downloaded file: %w", err)
	}

	return &localSource{file: f, reader: reader, counter: counter}, nil
}

func (s *localSource) Next(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	line, err := s.reader.ReadString('\n')
	if err == io.EOF {
		if line != "" {
			return line, nil
		}
		return "", io.EOF
	}
	if err != nil {
		return "", fmt.Errorf("read downloaded file: %w", err)
	}
	return line, nil
}

func (s *localSource) BytesRead() int64 {
	return s.counter.BytesRead
}

func (s *localSource) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	closeErr := s.file.Close()
	removeErr := os.Remove(s.file.Name())
	return errors.Join(closeErr, removeErr)
}

// ============================================================================
// Chunked source
// ============================================================================

// ChunkRanges splits an object of size bytes into n contiguous inclusive
// byte ranges. The last range absorbs the remainder. Objects smaller than n
// bytes are fetched whole, signalled by a single empty range.
func ChunkRanges(size int64, n int) []string {
	if n <= 0 {
		n = DefaultStreamChunks
	}
	if size < int64(n) {
		return []string{""}
	}

	chunk := size / int64(n)
	ranges := make([]string, 0, n)
	for i := 0; i < n; i++ {
		start := int64(i) * chunk
		end := start + chunk - 1
		if i == n-1 {
			end = size - 1
		}
		ranges = append(ranges, fmt.Sprintf("bytes=%d-%d", start, end))
	}
	return ranges
}

// lineStitcher joins line fragments split across range boundaries. It holds
// at most one pending fragment.
type lineStitcher struct {
	pending strings.Builder
}

// hold appends an unterminated fragment to the pending buffer.
func (ls *lineStitcher) hold(fragment string) {
	ls.pending.WriteString(fragment)
}

// complete returns line prefixed with any pending fragment and resets the buffer.
func (ls *lineStitcher) complete(line string) string {
	if ls.pending.Len() == 0 {
		return line
	}
	ls.pending.WriteString(line)
	out := ls.pending.String()
	ls.pending.Reset()
	return out
}

// discard drops the pending fragment and returns it.
func (ls *lineStitcher) discard() string {
	out := ls.pending.String()
	ls.pending.Reset()
	return out
}

type chunkedSource struct {
	store  storage.BlobStore
	path   string
	ranges []string

	next    int // index of the next range to open
	body    io.ReadCloser
	reader  *bufio.Reader
	stitch  lineStitcher
	read    int64
	current *CountingReader
}

func newChunkedSource(store storage.BlobStore, path string, ranges []string) *chunkedSource {
	return &chunkedSource{
		store:  store,
		path:   path,
		ranges: ranges,
	}
}

// openNext fetches the next range. The BOM check only applies to the first range.
func (s *chunkedSource) openNext(ctx context.Context) error {
	byteRange := s.ranges[s.next]
	body, err := s.store.FetchRange(ctx, s.path, byteRange)
	if err != nil {
		return err
	}

	s.body = body
	s.current = NewCountingReader(body)
	s.reader = bufio.NewReader(s.current)
	if s.next == 0 {
		if err := skipBOM(s.reader); err != nil {
			return fmt.Errorf("read %s %q: %w", s.path, byteRange, err)
		}
	}
	s.next++
	return nil
}

func (s *chunkedSource) closeBody() error {
	if s.body == nil {
		return nil
	}
	s.read += s.current.BytesRead
	err := s.body.Close()
	s.body, s.reader, s.current = nil, nil, nil
	return err
}

func (s *chunkedSource) Next(ctx context.Context) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		if s.reader == nil {
			if s.next >= len(s.ranges) {
				// A trailing fragment never terminated by '\n' is not a row.
				s.stitch.discard()
				return "", io.EOF
			}
			if err := s.openNext(ctx); err != nil {
				return "", err
			}
		}

		line, err := s.reader.ReadString('\n')
		if err == nil {
			return s.stitch.complete(line), nil
		}
		if err != io.EOF {
			return "", fmt.Errorf("read %s: %w", s.path, err)
		}

		s.stitch.hold(line)
		if err := s.closeBody(); err != nil {
			return "", fmt.Errorf("close %s: %w", s.path, err)
		}
	}
}

func (s *chunkedSource) BytesRead() int64 {
	if s.current != nil {
		return s.read + s.current.BytesRead
	}
	return s.read
}

func (s *chunkedSource) Close() error {
	return s.closeBody()
}
