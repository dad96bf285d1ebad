package services

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"sonorus-backend/internal/apperr"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// MaxAvatarSize is the upload precondition checked before any bytes reach
// object storage.
const MaxAvatarSize = 2 * 1024 * 1024

// AvatarService stores profile avatars in an S3 bucket
type AvatarService struct {
	s3Client  *s3.Client
	bucket    string
	region    string
	publicURL string
}

// NewAvatarService creates an avatar service backed by S3-compatible storage
func NewAvatarService(region, bucket, accessKey, secretKey, endpoint, publicURL string) (*AvatarService, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}
	if accessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		))
	}
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	return &AvatarService{
		s3Client:  s3Client,
		bucket:    bucket,
		region:    region,
		publicURL: strings.TrimSuffix(publicURL, "/"),
	}, nil
}

// Upload stores an avatar and returns its public URL. Uploads larger than
// MaxAvatarSize are rejected before the put.
func (s *AvatarService) Upload(ctx context.Context, filename string, size int64, body io.Reader) (string, error) {
	if size > MaxAvatarSize {
		return "", fmt.Errorf("%w: avatar must be less than 2MB", apperr.ErrSizeLimit)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	key := fmt.Sprintf("avatars/%s%s", uuid.New().String(), ext)

	_, err := s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return "", apperr.Store(fmt.Errorf("failed to upload avatar: %w", err))
	}

	if s.publicURL != "" {
		return fmt.Sprintf("%s/%s", s.publicURL, key), nil
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key), nil
}
