package client

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	appConfig "github.com/skylarnam/KakaoChatParserV2/internal/config"
)

// Archiver stores raw uploaded chat exports
type Archiver interface {
	GenerateArchiveKey(batchID, fileName string) string
	Archive(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
}

// s3PutAPI is the subset of the S3 client used by S3Archiver
type s3PutAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Archiver keeps a copy of every uploaded CSV in an S3 (or MinIO) bucket
type S3Archiver struct {
	client   s3PutAPI
	bucket   string
	region   string
	endpoint string // MinIO 사용 시 로컬 엔드포인트
	prefix   string
	now      func() time.Time
}

// NewS3Archiver creates a new S3 archiver
func NewS3Archiver(ctx context.Context, cfg appConfig.S3Config) (*S3Archiver, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("S3 bucket is required")
	}
	if cfg.Region == "" {
		return nil, fmt.Errorf("S3 region is required")
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.Endpoint != "" {
		// MinIO requires explicit credentials
		if cfg.AccessKey == "" || cfg.SecretKey == "" {
			return nil, fmt.Errorf("access key and secret key are required for a custom S3 endpoint")
		}
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	} else if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	// Without static keys the default credential chain is used (IAM role, ~/.aws/credentials)
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true // Required for MinIO
		}
	})

	return newS3Archiver(s3Client, cfg), nil
}

func newS3Archiver(client s3PutAPI, cfg appConfig.S3Config) *S3Archiver {
	return &S3Archiver{
		client:   client,
		bucket:   cfg.Bucket,
		region:   cfg.Region,
		endpoint: cfg.Endpoint,
		prefix:   strings.Trim(cfg.Prefix, "/"),
		now:      time.Now,
	}
}

// GenerateArchiveKey builds the object key for an upload
// Format: {prefix}/{year}/{month}/{batchID}_{fileName}
func (a *S3Archiver) GenerateArchiveKey(batchID, fileName string) string {
	now := a.now().UTC()
	name := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	if name == "." || name == "/" {
		name = "upload.csv"
	}
	key := fmt.Sprintf("%s/%s/%s_%s", now.Format("2006"), now.Format("01"), batchID, name)
	if a.prefix == "" {
		return key
	}
	return a.prefix + "/" + key
}

// Archive uploads body under key and returns the object URL
func (a *S3Archiver) Archive(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file to S3: %w", err)
	}
	return a.ObjectURL(key), nil
}

// ObjectURL returns the URL of an archived object
func (a *S3Archiver) ObjectURL(key string) string {
	// MinIO 환경: http://localhost:9000/bucket/key
	if a.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(a.endpoint, "/"), a.bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", a.bucket, a.region, key)
}
