// Package reports keeps copies of downloaded prediction reports in
// S3-compatible object storage.
package reports

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// Archiver stores a report and returns the key it was stored under.
type Archiver interface {
	Archive(ctx context.Context, predictionID int64, filename string, pdf []byte) (string, error)
}

// Filename is the name a report is offered under.
func Filename(predictionID int64) string {
	return "diabetes_report_" + strconv.FormatInt(predictionID, 10) + ".pdf"
}

// Key returns a fresh object key for a report of predictionID.
func Key(predictionID int64, filename string) string {
	return fmt.Sprintf("reports/%d/%s-%s", predictionID, uuid.NewString(), filename)
}

// NopArchiver discards reports. It is used when no bucket is configured.
type NopArchiver struct{}

func (NopArchiver) Archive(context.Context, int64, string, []byte) (string, error) {
	return "", nil
}

type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

var loadDefaultAWSConfig = config.LoadDefaultConfig

type S3Archiver struct {
	client objectPutter
	bucket string
}

// NewS3Archiver builds an archiver for cfg.Bucket. Static credentials are
// used when an access key is given, otherwise the default AWS chain. A custom
// endpoint (MinIO and the like) switches to path-style addressing.
func NewS3Archiver(ctx context.Context, cfg S3Config) (*S3Archiver, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("report bucket is required")
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Archiver{client: client, bucket: cfg.Bucket}, nil
}

func (a *S3Archiver) Archive(ctx context.Context, predictionID int64, filename string, pdf []byte) (string, error) {
	key := Key(predictionID, filename)

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(pdf),
		ContentLength: aws.Int64(int64(len(pdf))),
		ContentType:   aws.String("application/pdf"),
	})
	if err != nil {
		return "", fmt.Errorf("put %s: %w", key, err)
	}
	return key, nil
}
