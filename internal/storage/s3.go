package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// S3Store reads objects from Amazon S3.
type S3Store struct {
	client *s3.Client
}

// NewS3Store builds an S3 client for region. When creds carries an access
// key pair it is used as static credentials, otherwise the default AWS
// credential chain applies.
func NewS3Store(ctx context.Context, region string, creds Credentials) (*S3Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}
	if creds.AccessKeyID != "" && creds.AccessKeyData != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(creds.AccessKeyID, creds.AccessKeyData, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &S3Store{client: s3.NewFromConfig(cfg)}, nil
}

// Size issues a HEAD request for the object.
func (s *S3Store) Size(ctx context.Context, path string) (int64, error) {
	loc, err := ParseS3Location(path)
	if err != nil {
		return 0, err
	}

	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(loc.Bucket),
		Key:    aws.String(loc.Key),
	})
	if err != nil {
		return 0, wrapS3Error("size", path, err)
	}
	return aws.ToInt64(out.ContentLength), nil
}

// Copy downloads the object into dst.
func (s *S3Store) Copy(ctx context.Context, path, dst string) error {
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
		return wrapS3Error("copy", path, err)
	}
	return out.Close()
}

// FetchRange issues a GET with an optional Range header.
func (s *S3Store) FetchRange(ctx context.Context, path, byteRange string) (io.ReadCloser, error) {
	loc, err := ParseS3Location(path)
	if err != nil {
		return nil, err
	}

	input := &s3.GetObjectInput{
		Bucket: aws.String(loc.Bucket),
		Key:    aws.String(loc.Key),
	}
	if byteRange != "" {
		input.Range = aws.String(byteRange)
	}

	out, err := s.client.GetObject(ctx, input)
	if err != nil {
		return nil, wrapS3Error("fetch", path, err)
	}
	return out.Body, nil
}

// wrapS3Error promotes smithy API errors to *APIError.
func wrapS3Error(op, path string, err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return &APIError{Op: op, Path: path, Err: err}
	}
	return err
}
