// Package archive stores monthly standings snapshots in S3-compatible object
// storage before a reset zeroes the balances.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/osse101/DuelBot_Go/internal/domain"
)

const (
	keyPrefix   = "standings"
	contentType = "application/json"
)

// Archiver persists a reset snapshot
type Archiver interface {
	Archive(ctx context.Context, result *domain.ResetResult) error
}

// Config holds the object store connection settings.
// Endpoint is empty for AWS S3 and set for MinIO, R2 and similar providers.
type Config struct {
	Endpoint       string
	Region         string
	Bucket         string
	AccessKey      string
	SecretKey      string
	ForcePathStyle bool
}

type uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// S3Archiver uploads snapshots as JSON objects
type S3Archiver struct {
	uploader uploader
	bucket   string
}

// NewS3Archiver builds an archiver from static credentials. Without keys the
// default AWS credential chain is used.
func NewS3Archiver(ctx context.Context, cfg Config) (*S3Archiver, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("archive: bucket name is required")
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("archive: load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(normaliseEndpoint(cfg.Endpoint))
		}
		o.UsePathStyle = cfg.ForcePathStyle
	})

	return &S3Archiver{
		uploader: manager.NewUploader(client),
		bucket:   cfg.Bucket,
	}, nil
}

// Archive writes the snapshot to standings/<community>/<period>.json
func (a *S3Archiver) Archive(ctx context.Context, result *domain.ResetResult) error {
	body, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("archive: encode snapshot: %w", err)
	}

	key := Key(result.CommunityID, result.Period)
	_, err = a.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("archive: upload %s: %w", key, err)
	}
	return nil
}

// Key returns the object key for a community's period snapshot
func Key(communityID, period string) string {
	return path.Join(keyPrefix, communityID, period+".json")
}

// Nop discards snapshots. Used when no bucket is configured.
type Nop struct{}

func (Nop) Archive(context.Context, *domain.ResetResult) error { return nil }

func normaliseEndpoint(endpoint string) string {
	if strings.Contains(endpoint, "://") {
		return endpoint
	}
	return "https://" + endpoint
}
