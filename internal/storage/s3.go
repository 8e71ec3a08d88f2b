package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Backend wraps an aws-sdk-go-v2 S3 client. The NAS tier runs MinIO, so
// path-style addressing is required.
type S3Backend struct {
	client *s3.Client
	bucket string
	label  string
}

func NewS3Backend(ctx context.Context, endpoint, accessKey, secretKey, bucket, region, label string) (*S3Backend, error) {
	if region == "" {
		region = "us-east-1"
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKey, secretKey, "",
		)),
		awsconfig.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("configure S3 client for %s: %w", label, err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	return &S3Backend{
		client: client,
		bucket: bucket,
		label:  label,
	}, nil
}

func (b *S3Backend) Name() string { return b.label }

func (b *S3Backend) Upload(ctx context.Context, key string, reader io.Reader, size int64) error {
	input := &s3.PutObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
		Body:   reader,
	}
	if size > 0 {
		input.ContentLength = aws.Int64(size)
	}

	if _, err := b.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("upload to %s: %w", b.label, err)
	}
	return nil
}

func (b *S3Backend) Download(ctx context.Context, key string) (io.ReadCloser, int64, error) {
	result, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("download from %s: %w", b.label, err)
	}
	return result.Body, aws.ToInt64(result.ContentLength), nil
}

func (b *S3Backend) Delete(ctx context.Context, key string) error {
	_, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete from %s: %w", b.label, err)
	}
	return nil
}

func (b *S3Backend) Exists(ctx context.Context, key string) (bool, error) {
	_, err := b.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("check existence in %s: %w", b.label, err)
	}
	return true, nil
}

func (b *S3Backend) Stat(ctx context.Context, key string) (*Object, error) {
	result, err := b.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("stat in %s: %w", b.label, err)
	}

	var modTime time.Time
	if result.LastModified != nil {
		modTime = *result.LastModified
	}

	return &Object{
		Key:     key,
		Size:    aws.ToInt64(result.ContentLength),
		ModTime: modTime,
	}, nil
}

// isNotFound matches the error shapes MinIO and AWS return for a missing
// object on HeadObject.
func isNotFound(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "NotFound") ||
		strings.Contains(msg, "404") ||
		strings.Contains(msg, "NoSuchKey")
}
