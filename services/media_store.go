package services

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/repairhub/repairhub-api/config"
	"github.com/repairhub/repairhub-api/utils"
)

// MediaStore persists the images and videos attached to order details
type MediaStore interface {
	// Save stores data under key and returns the reference to keep on the order detail
	Save(ctx context.Context, key, contentType string, data []byte) (string, error)

	// URL returns an address a client can fetch ref from
	URL(ctx context.Context, ref string) (string, error)

	// Delete removes ref from storage
	Delete(ctx context.Context, ref string) error
}

// NewMediaStore builds the store selected by cfg.StorageDriver
func NewMediaStore(ctx context.Context, cfg *config.Config) (MediaStore, error) {
	switch cfg.StorageDriver {
	case config.StorageDriverS3:
		return NewS3MediaStore(ctx, cfg)
	case config.StorageDriverLocal, "":
		return NewLocalMediaStore(cfg.UploadDir), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// S3MediaStore keeps media in an S3 bucket and hands out presigned URLs
type S3MediaStore struct {
	client *s3.Client
	bucket string
}

// NewS3MediaStore creates an S3 client from the AWS settings of cfg
func NewS3MediaStore(ctx context.Context, cfg *config.Config) (*S3MediaStore, error) {
	awsConfig, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AWSAccessKeyID,
			cfg.AWSSecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &S3MediaStore{
		client: s3.NewFromConfig(awsConfig),
		bucket: cfg.AWSS3Bucket,
	}, nil
}

// Save uploads data and returns the object key
func (s *S3MediaStore) Save(ctx context.Context, key, contentType string, data []byte) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}
	return key, nil
}

// URL generates a presigned GET URL valid for one hour
func (s *S3MediaStore) URL(ctx context.Context, ref string) (string, error) {
	if ref == "" {
		return "", nil
	}

	request, err := s3.NewPresignClient(s.client).PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(ref),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = time.Hour
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	config.Logger().Debug("generated presigned URL", zap.String("key", ref))
	return request.URL, nil
}

// Delete removes the object
func (s *S3MediaStore) Delete(ctx context.Context, ref string) error {
	if ref == "" {
		return nil
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(ref),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file from S3: %w", err)
	}
	return nil
}

const localRefPrefix = "/uploads/"

// LocalMediaStore keeps media on disk below an upload directory.
// References look like /uploads/orders/images/<uuid>.png.
type LocalMediaStore struct {
	dir string
}

// NewLocalMediaStore creates a store rooted at dir
func NewLocalMediaStore(dir string) *LocalMediaStore {
	if dir == "" {
		dir = utils.UploadDir
	}
	return &LocalMediaStore{dir: dir}
}

// Save writes data below the upload directory
func (s *LocalMediaStore) Save(_ context.Context, key, _ string, data []byte) (string, error) {
	if err := utils.SaveFile(s.dir, key, data); err != nil {
		return "", err
	}
	return localRefPrefix + key, nil
}

// URL returns the API path serving ref
func (s *LocalMediaStore) URL(_ context.Context, ref string) (string, error) {
	return utils.GetMediaURL(strings.TrimPrefix(ref, localRefPrefix)), nil
}

// Delete removes the file behind ref; a missing file is not an error
func (s *LocalMediaStore) Delete(_ context.Context, ref string) error {
	rel := strings.TrimPrefix(ref, localRefPrefix)
	if rel == "" || strings.Contains(rel, "..") {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, filepath.FromSlash(rel)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
