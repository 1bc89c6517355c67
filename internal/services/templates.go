package services

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

const presignExpiry = 15 * time.Minute

// TemplateService hands out presigned URLs for playbook template files kept
// in S3-compatible object storage (MinIO in development).
type TemplateService struct {
	region    string
	endpoint  string
	bucket    string
	accessKey string
	secretKey string
}

// NewTemplateService builds the service from environment variables. Returns
// nil when the bucket is not configured; template endpoints then report the
// feature as unavailable.
func NewTemplateService() *TemplateService {
	bucket := os.Getenv("S3_BUCKET")
	if bucket == "" {
		return nil
	}

	return &TemplateService{
		region:    os.Getenv("S3_REGION"),
		endpoint:  os.Getenv("S3_ENDPOINT"),
		bucket:    bucket,
		accessKey: os.Getenv("S3_ACCESS_KEY"),
		secretKey: os.Getenv("S3_SECRET_KEY"),
	}
}

func (s *TemplateService) presignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(s.region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.accessKey,
			s.secretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if s.endpoint != "" {
			o.BaseEndpoint = aws.String(s.endpoint)
			o.UsePathStyle = true
		}
	})

	return s3.NewPresignClient(client), nil
}

// templateKey places each upload under its playbook with a fresh object name
func templateKey(playbookID string) string {
	return fmt.Sprintf("playbooks/%s/%s", playbookID, uuid.New())
}

// UploadURL returns a presigned PUT URL and the object key it will write
func (s *TemplateService) UploadURL(ctx context.Context, playbookID string) (string, string, error) {
	presignClient, err := s.presignClient(ctx)
	if err != nil {
		return "", "", err
	}

	key := templateKey(playbookID)
	req, err := presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return "", "", err
	}

	return req.URL, key, nil
}

// DownloadURL returns a presigned GET URL for a stored template file
func (s *TemplateService) DownloadURL(ctx context.Context, key string) (string, error) {
	presignClient, err := s.presignClient(ctx)
	if err != nil {
		return "", err
	}

	req, err := presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return "", err
	}

	return req.URL, nil
}
