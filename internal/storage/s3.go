package storage

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/mycloudbox/mycloudbox/internal/model"
)

const (
	defaultUploadTimeout = 30 * time.Second
	defaultDeleteTimeout = 10 * time.Second
	presignTimeout       = 10 * time.Second
)

// S3Gateway implements Gateway for S3-compatible storage
// Works with AWS S3, MinIO, DigitalOcean Spaces, Cloudflare R2, etc.
type S3Gateway struct {
	client        *s3.Client
	presignClient *s3.PresignClient
	bucket        string
	publicURL     string // Base URL for stored file URLs
	uploadTimeout time.Duration
	deleteTimeout time.Duration
}

// S3Config holds configuration for the S3 gateway
type S3Config struct {
	Region        string
	Bucket        string
	AccessKey     string
	SecretKey     string
	Endpoint      string // Optional: for S3-compatible services
	PublicURL     string // Optional: CDN in front of the bucket
	PathStyle     bool
	UploadTimeout time.Duration
	DeleteTimeout time.Duration
}

// NewS3Gateway creates the S3 client and makes sure the bucket exists.
func NewS3Gateway(ctx context.Context, c S3Config) (*S3Gateway, error) {
	var opts []func(*config.LoadOptions) error
	opts = append(opts, config.WithRegion(c.Region))

	// Add static credentials if provided
	if c.AccessKey != "" && c.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.AccessKey, c.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	// Create S3 client with optional custom endpoint
	var client *s3.Client
	if c.Endpoint != "" {
		client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(c.Endpoint)
			o.UsePathStyle = c.PathStyle
		})
	} else {
		client = s3.NewFromConfig(awsCfg)
	}

	gw := NewS3GatewayWithClient(client, c)

	// Auto-create bucket if it doesn't exist
	if err := gw.ensureBucket(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure bucket exists: %w", err)
	}

	return gw, nil
}

// NewS3GatewayWithClient wraps an already configured client.
func NewS3GatewayWithClient(client *s3.Client, c S3Config) *S3Gateway {
	publicURL := c.PublicURL
	switch {
	case publicURL != "":
		publicURL = strings.TrimSuffix(publicURL, "/")
	case c.Endpoint != "":
		// Custom endpoint (MinIO, DO Spaces, etc.)
		publicURL = strings.TrimSuffix(c.Endpoint, "/") + "/" + c.Bucket
	default:
		// Standard AWS S3 URL
		publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", c.Bucket, c.Region)
	}

	uploadTimeout := c.UploadTimeout
	if uploadTimeout <= 0 {
		uploadTimeout = defaultUploadTimeout
	}
	deleteTimeout := c.DeleteTimeout
	if deleteTimeout <= 0 {
		deleteTimeout = defaultDeleteTimeout
	}

	return &S3Gateway{
		client:        client,
		presignClient: s3.NewPresignClient(client),
		bucket:        c.Bucket,
		publicURL:     publicURL,
		uploadTimeout: uploadTimeout,
		deleteTimeout: deleteTimeout,
	}
}

// ensureBucket checks if bucket exists, creates it if not
func (g *S3Gateway) ensureBucket(ctx context.Context) error {
	_, err := g.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(g.bucket),
	})
	if err == nil {
		return nil
	}

	_, err = g.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(g.bucket),
	})
	if err != nil {
		return fmt.Errorf("bucket %q does not exist and could not be created: %w", g.bucket, err)
	}

	slog.Info("created S3 bucket", "bucket", g.bucket)
	return nil
}

// Upload stores data under <kind>/<ref> with the detected content type.
func (g *S3Gateway) Upload(ctx context.Context, data []byte, filename string) (*Object, error) {
	ctx, cancel := context.WithTimeout(ctx, g.uploadTimeout)
	defer cancel()

	format, contentType := detectFormat(data, filename)
	ref := newRef()
	key := objectKey(ref, model.Classify(format))

	_, err := g.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(g.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to upload to S3: %w", ErrGateway, err)
	}

	return &Object{
		Ref:         ref,
		URL:         g.publicURL + "/" + key,
		Format:      format,
		ContentType: contentType,
		Size:        int64(len(data)),
	}, nil
}

// Delete removes the object from S3
func (g *S3Gateway) Delete(ctx context.Context, ref string, kind model.ResourceKind) error {
	ctx, cancel := context.WithTimeout(ctx, g.deleteTimeout)
	defer cancel()

	_, err := g.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(g.bucket),
		Key:    aws.String(objectKey(ref, kind)),
	})
	if err != nil {
		return fmt.Errorf("%w: failed to delete from S3: %w", ErrGateway, err)
	}

	return nil
}

// PresignedURL generates a presigned URL for temporary private access
func (g *S3Gateway) PresignedURL(ctx context.Context, ref string, kind model.ResourceKind, expiry time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, presignTimeout)
	defer cancel()

	presignedReq, err := g.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(g.bucket),
		Key:    aws.String(objectKey(ref, kind)),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = expiry
	})
	if err != nil {
		return "", fmt.Errorf("%w: failed to presign URL: %w", ErrGateway, err)
	}

	return presignedReq.URL, nil
}
