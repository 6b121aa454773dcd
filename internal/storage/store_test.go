package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestParseByteRange(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		wantStart int64
		wantEnd   int64
		wantOK    bool
		wantErr   bool
	}{
		{name: "whole object", in: ""},
		{name: "first chunk", in: "bytes=0-9175039", wantEnd: 9175039, wantOK: true},
		{name: "middle chunk", in: "bytes=9175040-18350079", wantStart: 9175040, wantEnd: 18350079, wantOK: true},
		{name: "missing prefix", in: "0-10", wantErr: true},
		{name: "inverted", in: "bytes=10-5", wantErr: true},
		{name: "not a number", in: "bytes=a-5", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, ok, err := ParseByteRange(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseByteRange(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidRange) {
					t.Errorf("error %v should wrap ErrInvalidRange", err)
				}
				return
			}
			if start != tt.wantStart || end != tt.wantEnd || ok != tt.wantOK {
				t.Errorf("got (%d, %d, %v), want (%d, %d, %v)", start, end, ok, tt.wantStart, tt.wantEnd, tt.wantOK)
			}
		})
	}
}

func TestParseS3Location(t *testing.T) {
	tests := []struct {
		in      string
		want    Location
		wantErr bool
	}{
		{in: "https://test-bucket.s3.us-west-2.amazonaws.com/dir/file.csv", want: Location{Bucket: "test-bucket", Key: "dir/file.csv"}},
		{in: "https://s3.us-west-2.amazonaws.com/test-bucket/file.csv", want: Location{Bucket: "test-bucket", Key: "file.csv"}},
		{in: "s3://test-bucket/file.csv", want: Location{Bucket: "test-bucket", Key: "file.csv"}},
		{in: "https://example.com/file.csv", wantErr: true},
		{in: "s3://test-bucket/", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseS3Location(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseS3Location(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseS3Location(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestParseGCSLocation(t *testing.T) {
	tests := []struct {
		in      string
		want    Location
		wantErr bool
	}{
		{in: "gs://bucket/a/b.csv", want: Location{Bucket: "bucket", Key: "a/b.csv"}},
		{in: "https://storage.googleapis.com/bucket/b.csv", want: Location{Bucket: "bucket", Key: "b.csv"}},
		{in: "https://bucket.s3.amazonaws.com/b.csv", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseGCSLocation(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseGCSLocation(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseGCSLocation(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestParseProvider(t *testing.T) {
	tests := []struct {
		in      string
		want    Provider
		wantErr bool
	}{
		{in: "aws", want: ProviderAWS},
		{in: "GCS", want: ProviderGCP},
		{in: "file", want: ProviderLocal},
		{in: "azure", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseProvider(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseProvider(%q) = (%q, %v), want (%q, wantErr %v)", tt.in, got, err, tt.want, tt.wantErr)
		}
	}
}

func TestLocalStore(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "input.csv")
	content := "id_,value,event_timestamp\nabc,1,2\n"
	if err := os.WriteFile(src, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	store := NewLocalStore()

	size, err := store.Size(ctx, "file://"+src)
	if err != nil {
		t.Fatalf("Size() error = %v", err)
	}
	if size != int64(len(content)) {
		t.Errorf("Size() = %d, want %d", size, len(content))
	}

	dst := filepath.Join(dir, "copy.csv")
	if err := store.Copy(ctx, src, dst); err != nil {
		t.Fatalf("Copy() error = %v", err)
	}
	copied, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(copied) != content {
		t.Errorf("copied = %q, want %q", copied, content)
	}

	body, err := store.FetchRange(ctx, src, "bytes=4-8")
	if err != nil {
		t.Fatalf("FetchRange() error = %v", err)
	}
	defer body.Close()
	got, err := io.ReadAll(body)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "value" {
		t.Errorf("range = %q, want %q", got, "value")
	}
}

func TestLocalStore_MissingFileIsAPIError(t *testing.T) {
	store := NewLocalStore()
	_, err := store.FetchRange(context.Background(), filepath.Join(t.TempDir(), "missing.csv"), "")
	if !IsAPIError(err) {
		t.Errorf("FetchRange on missing file error = %v, want *APIError", err)
	}
}
