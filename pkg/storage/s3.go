package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// ImageStore uploads inline-encoded images to object storage and
// deletes them again by their public URL.
type ImageStore interface {
	Upload(ctx context.Context, dataURI string) (string, error)
	Delete(ctx context.Context, imageURL string) error
}

// S3ImageStore implements ImageStore against an S3-compatible bucket
type S3ImageStore struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

// NewS3ImageStore builds the S3 client from environment credentials.
// S3_ENDPOINT may point at any S3-compatible service (e.g. R2).
func NewS3ImageStore(ctx context.Context, bucket, publicURL string) (*S3ImageStore, error) {
	accessKeyID := os.Getenv("S3_ACCESS_KEY_ID")
	accessKeySecret := os.Getenv("S3_ACCESS_KEY_SECRET")
	endpoint := os.Getenv("S3_ENDPOINT")

	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(getEnvDefault("S3_REGION", "auto")),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKeyID, accessKeySecret, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load S3 config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	return &S3ImageStore{
		client:    client,
		bucket:    bucket,
		publicURL: strings.TrimSuffix(publicURL, "/"),
	}, nil
}

// Upload decodes an inline base64 data URI ("data:image/png;base64,...")
// and stores it under a fresh key, returning the durable public URL.
func (s *S3ImageStore) Upload(ctx context.Context, dataURI string) (string, error) {
	contentType, payload, err := parseDataURI(dataURI)
	if err != nil {
		return "", err
	}

	ext := "bin"
	if i := strings.Index(contentType, "/"); i >= 0 {
		ext = contentType[i+1:]
	}
	key := fmt.Sprintf("books/%s.%s", uuid.New().String(), ext)

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(payload),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	return s.publicURL + "/" + key, nil
}

// Delete removes the object behind a previously returned public URL.
// Unknown URLs are ignored.
func (s *S3ImageStore) Delete(ctx context.Context, imageURL string) error {
	key, err := keyFromURL(imageURL)
	if err != nil || key == "" {
		return nil
	}

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete image %s: %w", key, err)
	}
	return nil
}

// parseDataURI splits a data URI into content type and decoded payload
func parseDataURI(dataURI string) (string, []byte, error) {
	if !strings.HasPrefix(dataURI, "data:image/") {
		return "", nil, fmt.Errorf("invalid image format")
	}
	header, encoded, ok := strings.Cut(dataURI, ",")
	if !ok {
		return "", nil, fmt.Errorf("invalid image format")
	}
	contentType := strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")

	payload, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", nil, fmt.Errorf("invalid image encoding: %w", err)
	}
	return contentType, payload, nil
}

// keyFromURL recovers the object key from a public URL; books are
// stored as "books/<name>", the last two path segments.
func keyFromURL(imageURL string) (string, error) {
	u, err := url.Parse(imageURL)
	if err != nil {
		return "", err
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 {
		return "", nil
	}
	return strings.Join(parts[len(parts)-2:], "/"), nil
}

func getEnvDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
