package core

// streaming.go provides the reader wrappers used by every LineSource.
//
//   - skipBOM: drops a leading UTF-8 BOM (0xEF 0xBB 0xBF) written by Windows tools
//   - CountingReader: tracks bytes consumed so a run can log how much it read
//
// Neither wrapper buffers more than a bufio.Reader already does.

import (
	"bufio"
	"bytes"
	"io"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// skipBOM discards a UTF-8 BOM at the current position of br, if present.
// Short inputs are left untouched.
func skipBOM(br *bufio.Reader) error {
	head, err := br.Peek(len(utf8BOM))
	if err != nil {
		if err == io.EOF || err == bufio.ErrBufferFull {
			return nil
		}
		return err
	}
	if bytes.Equal(head, utf8BOM) {
		_, err = br.Discard(len(utf8BOM))
	}
	return err
}

// CountingReader wraps an io.Reader to track bytes read.
type CountingReader struct {
	reader    io.Reader
	BytesRead int64
}

// NewCountingReader creates a counting reader over r.
func NewCountingReader(r io.Reader) *CountingReader {
	return &CountingReader{reader: r}
}

// Read implements io.Reader.
func (r *CountingReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.BytesRead += int64(n)
	return n, err
}
