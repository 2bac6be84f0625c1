// Package s3store implements the object-store port on S3 or any
// S3-compatible endpoint (MinIO in local development, via BaseEndpoint
// and path-style addressing).
package s3store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"lifepath-backend/application/ports"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"
)

// Options configures the S3 client for a non-AWS endpoint. Zero value
// means plain AWS S3 with the ambient credential chain.
type Options struct {
	Endpoint     string
	AccessKeyID  string
	SecretKey    string
	UsePathStyle bool
}

// ObjectStore implements ports.ObjectStore on an S3 client.
type ObjectStore struct {
	client  *s3.Client
	presign *s3.PresignClient
	logger  *zap.Logger
}

// NewObjectStore creates an ObjectStore from a base AWS config and
// endpoint options.
func NewObjectStore(awsCfg aws.Config, opts Options, logger *zap.Logger) *ObjectStore {
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		if opts.AccessKeyID != "" {
			o.Credentials = credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretKey, "")
		}
		o.UsePathStyle = opts.UsePathStyle
	})
	return &ObjectStore{
		client:  client,
		presign: s3.NewPresignClient(client),
		logger:  logger,
	}
}

// EnsureBucket creates the bucket if it does not exist.
func (s *ObjectStore) EnsureBucket(ctx context.Context, bucket string) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)})
	if err == nil {
		return nil
	}

	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(bucket)})
	if err != nil {
		var owned *types.BucketAlreadyOwnedByYou
		var exists *types.BucketAlreadyExists
		if errors.As(err, &owned) || errors.As(err, &exists) {
			return nil
		}
		return fmt.Errorf("failed to create bucket %q: %w", bucket, err)
	}
	s.logger.Info("Created bucket", zap.String("bucket", bucket))
	return nil
}

// GetObject reads the full object body. Returns a wrapped *types.NoSuchKey
// when the key is absent; callers that tolerate absence check for it.
func (s *ObjectStore) GetObject(ctx context.Context, bucket, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s/%s: %w", bucket, key, err)
	}
	return data, nil
}

// PutObject writes the object with the given content type.
func (s *ObjectStore) PutObject(ctx context.Context, bucket, key string, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to put object %s/%s: %w", bucket, key, err)
	}
	return nil
}

// RemoveObject deletes the object. Deleting an absent key is not an error.
func (s *ObjectStore) RemoveObject(ctx context.Context, bucket, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object %s/%s: %w", bucket, key, err)
	}
	return nil
}

// PresignGet returns a time-limited GET URL for the object.
func (s *ObjectStore) PresignGet(ctx context.Context, bucket, key string, ttl time.Duration) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("failed to presign %s/%s: %w", bucket, key, err)
	}
	return req.URL, nil
}

// IsNotFound reports whether err is an object-absence error from GetObject.
func IsNotFound(err error) bool {
	var nsk *types.NoSuchKey
	return errors.As(err, &nsk)
}

var _ ports.ObjectStore = (*ObjectStore)(nil)
