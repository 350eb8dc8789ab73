// Package s3blob stores uploaded file bytes in an S3-compatible bucket.
// Objects are content addressed: the id of a blob is the hex SHA-256 of its
// bytes, so identical uploads share one object.
package s3blob

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/Script-GH/Ai-tutor/internal/config"
	"github.com/Script-GH/Ai-tutor/internal/platform/logger"
	"github.com/Script-GH/Ai-tutor/internal/store"
)

// objectAPI is the subset of *s3.Client used by Store.
type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Store implements store.BlobStore on top of S3.
type Store struct {
	client objectAPI
	bucket string
	prefix string
}

var _ store.BlobStore = (*Store)(nil)

// New builds an S3 client from cfg. A custom endpoint (MinIO, localstack)
// switches the client to path-style addressing.
func New(ctx context.Context, cfg config.StorageConfig) (*Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return newStore(client, cfg.Bucket, cfg.KeyPrefix), nil
}

func newStore(client objectAPI, bucket, prefix string) *Store {
	return &Store{client: client, bucket: bucket, prefix: prefix}
}

// ContentID returns the blob id for data.
func ContentID(data []byte) store.BlobID {
	sum := sha256.Sum256(data)
	return store.BlobID(hex.EncodeToString(sum[:]))
}

func (s *Store) key(id store.BlobID) string {
	if s.prefix == "" {
		return string(id)
	}
	return path.Join(s.prefix, string(id))
}

// Put implements store.BlobStore.Put. Writing the same bytes twice yields the
// same id and overwrites the object with identical content.
func (s *Store) Put(ctx context.Context, data []byte, filename, contentType string) (store.BlobID, error) {
	id := ContentID(data)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.key(id)),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
		Metadata:      map[string]string{"filename": url.QueryEscape(filename)},
	})
	if err != nil {
		logger.FromContext(ctx).Error("failed to put blob",
			slog.String("blob_id", string(id)),
			slog.String("error", err.Error()))
		return "", fmt.Errorf("failed to store blob: %w", err)
	}
	return id, nil
}

// Get implements store.BlobStore.Get.
func (s *Store) Get(ctx context.Context, id store.BlobID) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id)),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, store.ErrBlobNotFound
		}
		return nil, fmt.Errorf("failed to fetch blob: %w", err)
	}
	defer func() { _ = out.Body.Close() }()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read blob: %w", err)
	}
	return data, nil
}

// Delete implements store.BlobStore.Delete. Deleting a missing object is not
// an error.
func (s *Store) Delete(ctx context.Context, id store.BlobID) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id)),
	})
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("failed to delete blob: %w", err)
	}
	return nil
}

func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}
