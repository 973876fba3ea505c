package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
)

// S3Store persists images in an S3 bucket, optionally encrypting payloads
// with a password-derived AES-GCM key before upload.
type S3Store struct {
	client   *s3.Client
	uploader *manager.Uploader
	bucket   string
	password string
}

func NewS3Store(ctx context.Context, bucket, password string) (*S3Store, error) {
	if bucket == "" {
		return nil, fmt.Errorf("s3 storage selected but no bucket configured")
	}
	cfg, err := awscfg.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	cli := s3.NewFromConfig(cfg)
	return &S3Store{
		client:   cli,
		uploader: manager.NewUploader(cli),
		bucket:   bucket,
		password: password,
	}, nil
}

func (s *S3Store) Backend() string { return "s3" }

func (s *S3Store) Put(ctx context.Context, key string, data []byte, contentType string) error {
	payload := data
	if s.password != "" {
		sealed, err := seal(data, s.password)
		if err != nil {
			return fmt.Errorf("encrypt image: %w", err)
		}
		payload = sealed
	}

	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(payload),
		ContentType: aws.String(contentType),
		Metadata:    map[string]string{"content-type": contentType},
	})
	if err != nil {
		return fmt.Errorf("upload to S3: %w", err)
	}

	log.Debug().Str("bucket", s.bucket).Str("key", key).Int("bytes", len(data)).
		Bool("encrypted", s.password != "").Msg("image uploaded to S3")
	return nil
}

func (s *S3Store) Get(ctx context.Context, key string) ([]byte, string, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, "", fmt.Errorf("download from S3: %w", err)
	}
	defer out.Body.Close()

	payload, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read S3 object: %w", err)
	}

	data := payload
	if s.password != "" {
		if data, err = open(payload, s.password); err != nil {
			return nil, "", fmt.Errorf("decrypt image: %w", err)
		}
	}

	contentType := ""
	if out.ContentType != nil {
		contentType = *out.ContentType
	} else if ct, ok := out.Metadata["content-type"]; ok {
		contentType = ct
	}
	return data, contentType, nil
}
