package core

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/JonMunkholm/prevalidate/internal/storage"
	"github.com/JonMunkholm/prevalidate/internal/storage/storagetest"
)

func TestChunkRanges(t *testing.T) {
	tests := []struct {
		name string
		size int64
		n    int
		want []string
	}{
		{
			name: "35 MiB in four",
			size: 35 * 1024 * 1024,
			n:    4,
			want: []string{
				"bytes=0-9175039",
				"bytes=9175040-18350079",
				"bytes=18350080-27525119",
				"bytes=27525120-36700159",
			},
		},
		{
			name: "remainder goes to the last range",
			size: 10,
			n:    3,
			want: []string{"bytes=0-2", "bytes=3-5", "bytes=6-9"},
		},
		{
			name: "smaller than the chunk count",
			size: 3,
			n:    4,
			want: []string{""},
		},
		{
			name: "empty object",
			size: 0,
			n:    4,
			want: []string{""},
		},
		{
			name: "default chunk count",
			size: 8,
			n:    0,
			want: []string{"bytes=0-1", "bytes=2-3", "bytes=4-5", "bytes=6-7"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ChunkRanges(tt.size, tt.n)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ChunkRanges(%d, %d) = %v, want %v", tt.size, tt.n, got, tt.want)
			}
		})
	}
}

func TestLineStitcher(t *testing.T) {
	var ls lineStitcher

	if got := ls.complete("a,b\n"); got != "a,b\n" {
		t.Errorf("complete without pending = %q", got)
	}

	ls.hold("ab")
	ls.hold("cd")
	if got := ls.complete("ef\n"); got != "abcdef\n" {
		t.Errorf("complete with pending = %q, want %q", got, "abcdef\n")
	}
	if got := ls.complete("x\n"); got != "x\n" {
		t.Errorf("pending not reset, got %q", got)
	}

	ls.hold("tail")
	if got := ls.discard(); got != "tail" {
		t.Errorf("discard = %q, want tail", got)
	}
	if got := ls.discard(); got != "" {
		t.Errorf("second discard = %q, want empty", got)
	}
}

// readAll drains src and returns its lines.
func readAll(t *testing.T, src LineSource) []string {
	t.Helper()
	var lines []string
	for {
		line, err := src.Next(context.Background())
		if errors.Is(err, io.EOF) {
			return lines
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		lines = append(lines, line)
	}
}

func TestChunkedSource_FetchesLazily(t *testing.T) {
	content := "id_,value\n1,2\n3,4\n5,6\n"
	store := storagetest.New()
	store.Put("obj", []byte(content))

	src := newChunkedSource(store, "obj", ChunkRanges(int64(len(content)), 4))
	defer src.Close()

	if n := store.CallCount("fetch"); n != 0 {
		t.Fatalf("fetch calls before Next = %d, want 0", n)
	}

	first, err := src.Next(context.Background())
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if first != "id_,value\n" {
		t.Errorf("first line = %q", first)
	}
	// The header spans the first two 5-byte ranges.
	if n := store.CallCount("fetch"); n != 2 {
		t.Errorf("fetch calls after first line = %d, want 2", n)
	}

	rest := readAll(t, src)
	want := []string{"1,2\n", "3,4\n", "5,6\n"}
	if !reflect.DeepEqual(rest, want) {
		t.Errorf("remaining lines = %q, want %q", rest, want)
	}
	if got := src.BytesRead(); got != int64(len(content)) {
		t.Errorf("BytesRead = %d, want %d", got, len(content))
	}
}

func TestChunkedSource_SkipsBOMOnlyOnFirstRange(t *testing.T) {
	bom := string([]byte{0xEF, 0xBB, 0xBF})
	store := storagetest.New()
	store.Put("obj", nil)
	store.Ranges["bytes=0-0"] = []byte(bom + "id_\n")
	store.Ranges["bytes=1-1"] = []byte(bom + "x\n")

	src := newChunkedSource(store, "obj", []string{"bytes=0-0", "bytes=1-1"})
	defer src.Close()

	got := readAll(t, src)
	want := []string{"id_\n", bom + "x\n"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("lines = %q, want %q", got, want)
	}
}

func TestChunkedSource_FetchError(t *testing.T) {
	store := storagetest.New()
	store.FetchErr = &storage.APIError{Op: "fetch", Path: "obj", Err: errors.New("denied")}

	src := newChunkedSource(store, "obj", []string{""})
	defer src.Close()

	_, err := src.Next(context.Background())
	if !storage.IsAPIError(err) {
		t.Fatalf("Next error = %v, want an APIError", err)
	}
}

func TestLocalSource(t *testing.T) {
	dir := t.TempDir()
	store := storagetest.New()
	store.Put("obj", []byte("\xEF\xBB\xBFid_,value\n1,2\n3,4"))

	src, err := openLocalSource(context.Background(), store, "obj", dir)
	if err != nil {
		t.Fatalf("openLocalSource: %v", err)
	}

	got := readAll(t, src)
	want := []string{"id_,value\n", "1,2\n", "3,4"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("lines = %q, want %q", got, want)
	}

	if err := src.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := src.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if matches, _ := filepath.Glob(filepath.Join(dir, "*")); len(matches) != 0 {
		t.Errorf("temp files left behind: %v", matches)
	}
}

func TestLocalSource_CopyFailure(t *testing.T) {
	dir := t.TempDir()
	store := storagetest.New()
	store.CopyErr = errors.New("failed to copy")

	_, err := openLocalSource(context.Background(), store, "obj", dir)
	if !IsFailureKind(err, CollaboratorIOFailure) {
		t.Fatalf("error = %v, want a collaborator failure", err)
	}
	var f *Failure
	if !errors.As(err, &f) || f.Message != MsgDownloadFailed {
		t.Errorf("failure = %+v, want download message", f)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("temp dir has %d files after copy failure, want 0", len(entries))
	}
}

func TestLocalSource_CancelledContext(t *testing.T) {
	store := storagetest.New()
	store.Put("obj", []byte(strings.Repeat("a\n", 10)))

	src, err := openLocalSource(context.Background(), store, "obj", t.TempDir())
	if err != nil {
		t.Fatalf("openLocalSource: %v", err)
	}
	defer src.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := src.Next(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Next error = %v, want context.Canceled", err)
	}
}
