package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"github.com/edusloth/edusloth-backend/internal/config"
	"github.com/edusloth/edusloth-backend/internal/logger"
)

type BucketService interface {
	Upload(ctx context.Context, bucket, key string, body io.Reader, contentType string) error
	Download(ctx context.Context, bucket, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, bucket, key string) error
	PresignGet(ctx context.Context, bucket, key string) (string, error)
	DocumentBucket() string
	AudioBucket() string
	PublicURL(bucket, key string) string
}

type bucketService struct {
	log           *logger.Logger
	client        *s3.Client
	presignClient *s3.PresignClient
	cfg           config.S3Config
}

// NewBucketService builds an S3 client that also works against
// S3-compatible endpoints (MinIO etc.) when cfg.Endpoint is set.
func NewBucketService(cfg config.S3Config, log *logger.Logger) (BucketService, error) {
	serviceLog := log.With("service", "BucketService")

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var client *s3.Client
	if cfg.Endpoint != "" {
		client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	} else {
		client = s3.NewFromConfig(awsCfg)
	}

	serviceLog.Info("S3 storage initialized",
		"region", cfg.Region,
		"document_bucket", cfg.DocumentBucket,
		"audio_bucket", cfg.AudioBucket,
	)
	return &bucketService{
		log:           serviceLog,
		client:        client,
		presignClient: s3.NewPresignClient(client),
		cfg:           cfg,
	}, nil
}

func (bs *bucketService) Upload(ctx context.Context, bucket, key string, body io.Reader, contentType string) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()
	input := &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := bs.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("%s: %w", DescribeStorageError(err), err)
	}
	return nil
}

func (bs *bucketService) Download(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	out, err := bs.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", DescribeStorageError(err), err)
	}
	return out.Body, nil
}

func (bs *bucketService) Delete(ctx context.Context, bucket, key string) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if _, err := bs.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("%s: %w", DescribeStorageError(err), err)
	}
	return nil
}

func (bs *bucketService) PresignGet(ctx context.Context, bucket, key string) (string, error) {
	req, err := bs.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(bs.cfg.PresignExpiry))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}

func (bs *bucketService) DocumentBucket() string { return bs.cfg.DocumentBucket }
func (bs *bucketService) AudioBucket() string    { return bs.cfg.AudioBucket }

func (bs *bucketService) PublicURL(bucket, key string) string {
	if bs.cfg.Endpoint != "" {
		return strings.TrimSuffix(bs.cfg.Endpoint, "/") + "/" + bucket + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", bucket, bs.cfg.Region, key)
}

// DescribeStorageError maps raw S3 failures onto the handful of categories an
// operator can act on directly.
func DescribeStorageError(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchBucket":
			return "storage bucket does not exist"
		case "AccessDenied":
			return "storage access denied"
		case "InvalidAccessKeyId":
			return "storage credentials invalid"
		case "SignatureDoesNotMatch":
			return "storage request signature mismatch"
		case "NoSuchKey":
			return "storage object not found"
		}
	}
	return "storage unavailable"
}

// StorageRef formats and splits the "s3://bucket/key" references stored on
// Content records.
func StorageRef(bucket, key string) string {
	return "s3://" + bucket + "/" + key
}

func ParseStorageRef(ref string) (bucket, key string, ok bool) {
	rest, found := strings.CutPrefix(ref, "s3://")
	if !found {
		return "", "", false
	}
	bucket, key, found = strings.Cut(rest, "/")
	if !found || bucket == "" || key == "" {
		return "", "", false
	}
	return bucket, key, true
}
