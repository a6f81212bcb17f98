package storage

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var (
	s3Client *s3.Client
	bucket   string
	region   string
)

func InitStorage() error {
	bucket = os.Getenv("AWS_BUCKET_NAME")
	if bucket == "" {
		bucket = "humidorhub-media"
	}
	region = os.Getenv("AWS_REGION")
	if region == "" {
		region = "eu-central-1"
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(region),
	)
	if err != nil {
		return fmt.Errorf("unable to load SDK config: %v", err)
	}

	s3Client = s3.NewFromConfig(cfg)
	return nil
}

// Upload puts an object under the given key and returns its public URL.
// Used for cigar photos and archived CSV exports.
func Upload(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	if s3Client == nil {
		return "", fmt.Errorf("storage is not initialized")
	}

	_, err := s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("could not upload to S3: %v", err)
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", bucket, region, key), nil
}

// Delete removes an object by key.
func Delete(ctx context.Context, key string) error {
	if s3Client == nil {
		return fmt.Errorf("storage is not initialized")
	}

	_, err := s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})

	return err
}
