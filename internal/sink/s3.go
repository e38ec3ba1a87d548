package sink

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"altiprofile/internal/profile"
	"altiprofile/pkg/logger"
	"altiprofile/pkg/models"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// objectStore is the part of the minio client the sink uses.
type objectStore interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// S3Sink writes artifacts into an S3 compatible bucket.
type S3Sink struct {
	client objectStore
	bucket string
	prefix string
	region string
}

// NewS3Sink creates a sink from the s3 configuration. Credentials are read
// from the configured environment variables.
func NewS3Sink(cfg models.S3Config) (*S3Sink, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 sink requires an endpoint and a bucket")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(os.Getenv(cfg.AccessKeyEnv), os.Getenv(cfg.SecretKeyEnv), ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}

	return newS3Sink(client, cfg), nil
}

func newS3Sink(client objectStore, cfg models.S3Config) *S3Sink {
	return &S3Sink{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
		region: cfg.Region,
	}
}

func (s *S3Sink) Write(ctx context.Context, name string, content []byte) (string, error) {
	key := path.Join(s.prefix, name)
	location := fmt.Sprintf("s3://%s/%s", s.bucket, key)

	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return "", &profile.IOError{Op: "check bucket", Path: location, Err: err}
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
			return "", &profile.IOError{Op: "create bucket", Path: location, Err: err}
		}
		logger.Logger.WithField("bucket", s.bucket).Info("Created bucket")
	}

	contentType := "application/octet-stream"
	switch {
	case strings.HasSuffix(name, ".xlsx"):
		contentType = xlsxContentType
	case strings.HasSuffix(name, ".png"):
		contentType = "image/png"
	}

	_, err = s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(content), int64(len(content)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", &profile.IOError{Op: "put object", Path: location, Err: err}
	}

	logger.Logger.WithFields(map[string]interface{}{
		"location": location,
		"bytes":    len(content),
	}).Debug("Uploaded artifact")

	return location, nil
}
