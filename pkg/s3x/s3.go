package s3x

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type Client struct {
	S3 *s3.Client
}

type Option func(*options)

type options struct {
	load     []func(*config.LoadOptions) error
	endpoint string
}

// WithEndpoint points the client at an S3-compatible endpoint (MinIO,
// LocalStack) using path-style addressing.
func WithEndpoint(url string) Option {
	return func(o *options) { o.endpoint = url }
}

func WithLoadOptions(lo ...func(*config.LoadOptions) error) Option {
	return func(o *options) { o.load = append(o.load, lo...) }
}

func New(ctx context.Context, region string, opts ...Option) (*Client, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	lo := []func(*config.LoadOptions) error{}
	if region != "" {
		lo = append(lo, config.WithRegion(region))
	}
	lo = append(lo, o.load...)

	cfg, err := config.LoadDefaultConfig(ctx, lo...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(so *s3.Options) {
		if o.endpoint != "" {
			so.BaseEndpoint = aws.String(o.endpoint)
			so.UsePathStyle = true
		}
	})
	return &Client{S3: client}, nil
}

func (c *Client) GetObjectToWriter(ctx context.Context, bucket, key string, w io.Writer) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	out, err := c.S3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 get %s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()

	if _, err := io.Copy(w, out.Body); err != nil {
		return fmt.Errorf("stream copy: %w", err)
	}
	return nil
}

// GetObjectToFile downloads into path, removing the partial file on error.
func (c *Client) GetObjectToFile(ctx context.Context, bucket, key, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := c.GetObjectToWriter(ctx, bucket, key, f); err != nil {
		f.Close()
		_ = os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

// PutObjectFromFile uploads path and returns the object's ETag.
func (c *Client) PutObjectFromFile(ctx context.Context, bucket, key string, path, contentType string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	input := &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   file,
	}
	if contentType == "" {
		contentType = ContentType(path)
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	out, err := c.S3.PutObject(ctx, input)
	if err != nil {
		return "", fmt.Errorf("s3 put %s/%s: %w", bucket, key, err)
	}
	return strings.Trim(aws.ToString(out.ETag), `"`), nil
}

// ContentType maps the container extensions this service writes.
func ContentType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp4":
		return "video/mp4"
	case ".mov":
		return "video/quicktime"
	case ".mkv":
		return "video/x-matroska"
	case ".webm":
		return "video/webm"
	case ".wav":
		return "audio/wav"
	case ".m4a":
		return "audio/mp4"
	case ".mp3":
		return "audio/mpeg"
	default:
		return ""
	}
}
