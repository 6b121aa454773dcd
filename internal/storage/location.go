package storage

import (
	"fmt"
	"net/url"
	"strings"
)

// Location is a parsed object address.
type Location struct {
	Bucket string
	Key    string
}

// ParseS3Location accepts s3://bucket/key, virtual-hosted
// https://bucket.s3.<region>.amazonaws.com/key and path-style
// https://s3.<region>.amazonaws.com/bucket/key addresses.
func ParseS3Location(path string) (Location, error) {
	u, err := url.Parse(path)
	if err != nil {
		return Location{}, fmt.Errorf("parse s3 path %q: %w", path, err)
	}

	switch u.Scheme {
	case "s3":
		return splitBucketKey(u.Host, u.Path, path)
	case "https", "http":
		host := u.Host
		if !strings.HasSuffix(host, ".amazonaws.com") {
			return Location{}, fmt.Errorf("not an s3 address: %q", path)
		}
		if strings.HasPrefix(host, "s3.") || strings.HasPrefix(host, "s3-") {
			bucket, key, _ := strings.Cut(strings.TrimPrefix(u.Path, "/"), "/")
			return splitBucketKey(bucket, key, path)
		}
		bucket, _, found := strings.Cut(host, ".s3")
		if !found {
			return Location{}, fmt.Errorf("not an s3 address: %q", path)
		}
		return splitBucketKey(bucket, u.Path, path)
	default:
		return Location{}, fmt.Errorf("unsupported s3 scheme in %q", path)
	}
}

// ParseGCSLocation accepts gs://bucket/object and
// https://storage.googleapis.com/bucket/object addresses.
func ParseGCSLocation(path string) (Location, error) {
	u, err := url.Parse(path)
	if err != nil {
		return Location{}, fmt.Errorf("parse gcs path %q: %w", path, err)
	}

	switch u.Scheme {
	case "gs":
		return splitBucketKey(u.Host, u.Path, path)
	case "https", "http":
		if u.Host != "storage.googleapis.com" && u.Host != "storage.cloud.google.com" {
			return Location{}, fmt.Errorf("not a gcs address: %q", path)
		}
		bucket, key, _ := strings.Cut(strings.TrimPrefix(u.Path, "/"), "/")
		return splitBucketKey(bucket, key, path)
	default:
		return Location{}, fmt.Errorf("unsupported gcs scheme in %q", path)
	}
}

// LocalPath strips an optional file:// scheme.
func LocalPath(path string) string {
	return strings.TrimPrefix(path, "file://")
}

func splitBucketKey(bucket, key, original string) (Location, error) {
	key = strings.TrimPrefix(key, "/")
	if bucket == "" || key == "" {
		return Location{}, fmt.Errorf("missing bucket or key in %q", original)
	}
	return Location{Bucket: bucket, Key: key}, nil
}
