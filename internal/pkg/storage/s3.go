package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gofiber/fiber/v2/log"

	"github.com/mft-data/fitmenthub/internal/pkg/env"
)

// S3Store stores upload bytes in an S3-compatible bucket. Azure blob
// credentials are accepted through the same variables since deployments front
// them with an S3-compatible gateway.
type S3Store struct {
	client *s3.Client
	bucket string
}

// NewS3StoreFromEnv builds the client from storage environment variables.
func NewS3StoreFromEnv() (*S3Store, error) {
	accessKey := env.GetEnv("S3_ACCESS_KEY_ID", env.GetEnv("AZURE_STORAGE_ACCOUNT_NAME", ""))
	secretKey := env.GetEnv("S3_SECRET_ACCESS_KEY", env.GetEnv("AZURE_STORAGE_ACCOUNT_KEY", ""))
	endpoint := env.GetEnv("S3_ENDPOINT_URL", env.GetEnv("AZURE_STORAGE_ENDPOINT", ""))
	region := env.GetEnv("S3_REGION", "us-east-1")
	bucket := env.GetEnv("S3_BUCKET", env.GetEnv("AZURE_STORAGE_CONTAINER", "fitmenthub-uploads"))

	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKey,
			secretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load storage config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	log.Infof("[Storage] Initialized S3 object store for bucket %s", bucket)
	return &S3Store{client: client, bucket: bucket}, nil
}

func (s *S3Store) Save(ctx context.Context, key string, data []byte) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return "", fmt.Errorf("failed to store object %s: %w", key, err)
	}
	return key, nil
}

func (s *S3Store) Load(ctx context.Context, ref string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(ref),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch object %s: %w", ref, err)
	}
	defer out.Body.Close()
	return io.ReadAll(out.Body)
}

func (s *S3Store) Delete(ctx context.Context, ref string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(ref),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object %s: %w", ref, err)
	}
	return nil
}
