package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	aws_config "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/Dp0603/E-Advertisement-Deployed/internal/config"
)

// IS3Storage handles ad creative uploads. Clients upload directly to S3 via a
// pre-signed PUT; the API only hands out URLs and records the object key.
type IS3Storage interface {
	PresignCreativeUpload(ctx context.Context, advertiserID, filename, contentType string) (url, objectKey string, err error)
	GetObject(ctx context.Context, key string) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, key, contentType string, body []byte) error
}

type s3Storage struct {
	cfg           *config.Config
	client        *s3.Client
	presignClient *s3.PresignClient
}

// NewS3Storage creates an S3-backed creative store from static credentials.
func NewS3Storage(cfg *config.Config) (IS3Storage, error) {
	awsCfg, err := aws_config.LoadDefaultConfig(context.TODO(),
		aws_config.WithRegion(cfg.AwsRegion),
		aws_config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AwsAccessKeyID,
			cfg.AwsSecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg)
	return &s3Storage{
		cfg:           cfg,
		client:        client,
		presignClient: s3.NewPresignClient(client),
	}, nil
}

// sanitizeFilename keeps only the final path element and replaces characters
// S3 keys are better off without.
func sanitizeFilename(filename string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		}
		return '-'
	}, base)
}

// PresignCreativeUpload returns a pre-signed PUT URL valid for 15 minutes and
// the object key the creative will live under.
func (s *s3Storage) PresignCreativeUpload(ctx context.Context, advertiserID, filename, contentType string) (string, string, error) {
	objectKey := fmt.Sprintf("creatives/%s/%s_%s", advertiserID, uuid.NewString(), sanitizeFilename(filename))

	req, err := s.presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.AwsS3Bucket),
		Key:         aws.String(objectKey),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		return "", "", fmt.Errorf("failed to presign creative upload for key %s: %w", objectKey, err)
	}
	return req.URL, objectKey, nil
}

// GetObject fetches a stored creative, used by the image normalization worker.
func (s *s3Storage) GetObject(ctx context.Context, key string) (*s3.GetObjectOutput, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.AwsS3Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s: %w", key, err)
	}
	return out, nil
}

// PutObject writes a processed creative back under the same or a new key.
func (s *s3Storage) PutObject(ctx context.Context, key, contentType string, body []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.AwsS3Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
		Body:        bytes.NewReader(body),
	})
	if err != nil {
		return fmt.Errorf("failed to put object %s: %w", key, err)
	}
	return nil
}
