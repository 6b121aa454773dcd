package storage

import (
	"context"
	"fmt"
	"strings"
)

// Provider names the cloud hosting the input file.
type Provider string

const (
	ProviderAWS   Provider = "AWS"
	ProviderGCP   Provider = "GCP"
	ProviderLocal Provider = "LOCAL"
)

// ParseProvider normalizes a provider name. "gcs" is accepted for GCP and
// "file" for LOCAL.
func ParseProvider(s string) (Provider, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "AWS", "S3":
		return ProviderAWS, nil
	case "GCP", "GCS":
		return ProviderGCP, nil
	case "LOCAL", "FILE":
		return ProviderLocal, nil
	default:
		return "", fmt.Errorf("unsupported cloud provider %q", s)
	}
}

// Credentials is the optional access key pair passed at construction.
type Credentials struct {
	AccessKeyID   string
	AccessKeyData string
}

// Open builds the store for provider.
func Open(ctx context.Context, provider Provider, region string, creds Credentials) (BlobStore, error) {
	switch provider {
	case ProviderAWS:
		return NewS3Store(ctx, region, creds)
	case ProviderGCP:
		return NewGCSStore(ctx, creds)
	case ProviderLocal:
		return NewLocalStore(), nil
	default:
		return nil, fmt.Errorf("unsupported cloud provider %q", provider)
	}
}
