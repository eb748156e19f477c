// Package archive uploads the raw request bodies to S3-compatible storage.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}
)

// Options configures the S3 connection.
type Options struct {
	Region       string
	RootUser     string
	RootPassword string
	BaseEndpoint string
	Bucket       string
}

// Archiver stores raw payloads.
type Archiver interface {
	Archive(ctx context.Context, reqID, serial string, body []byte) error
}

type S3Archiver struct {
	client *s3.Client
	bucket string
	now    func() time.Time
}

// NewS3Archiver builds a client with static credentials and path-style
// addressing so MinIO endpoints work.
func NewS3Archiver(ctx context.Context, o Options) (*S3Archiver, error) {
	if o.Bucket == "" {
		return nil, fmt.Errorf("archive: bucket is required")
	}

	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(o.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			o.RootUser,
			o.RootPassword,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("archive: load aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(so *s3.Options) {
		if o.BaseEndpoint != "" {
			so.BaseEndpoint = aws.String(o.BaseEndpoint)
		}
		so.UsePathStyle = true
	})

	return &S3Archiver{client: client, bucket: o.Bucket, now: time.Now}, nil
}

// Key is the object key for one request body:
// cameras/YYYY/MM/DD/<serial>/<request id>.xml.
func Key(t time.Time, serial, reqID string) string {
	t = t.UTC()
	return fmt.Sprintf("cameras/%04d/%02d/%02d/%s/%s.xml",
		t.Year(), int(t.Month()), t.Day(), keySegment(serial), keySegment(reqID))
}

func keySegment(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "unknown"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, s)
}

// Archive uploads body under Key.
func (a *S3Archiver) Archive(ctx context.Context, reqID, serial string, body []byte) error {
	key := Key(a.now(), serial, reqID)
	_, err := putObject(a.client, ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String("application/xml"),
	})
	if err != nil {
		return fmt.Errorf("archive: put %s: %w", key, err)
	}
	return nil
}
