package backup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/signout/internal/filex"
)

// Destination stores backup objects under slash-separated keys.
type Destination interface {
	Put(ctx context.Context, key string, data []byte) error
	// String describes where objects end up, for logs and messages.
	String() string
}

// LocalDestination writes objects below Dir.
type LocalDestination struct {
	Dir string
}

func (d LocalDestination) Put(_ context.Context, key string, data []byte) error {
	return filex.WriteAtomic(filepath.Join(d.Dir, filepath.FromSlash(key)), data)
}

func (d LocalDestination) String() string {
	return d.Dir
}

// PutObjectAPI is the part of *s3.Client used for uploads.
type PutObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

var (
	loadDefaultAWSConfig  = config.LoadDefaultConfig
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) PutObjectAPI {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

var ErrNoBucket = errors.New("s3 backup: bucket is required")

// S3Options configures an S3Destination. Endpoint selects an S3-compatible
// server (MinIO); static credentials are used when AccessKey is set,
// otherwise the default AWS credential chain applies.
type S3Options struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// S3Destination uploads objects to a bucket.
type S3Destination struct {
	client PutObjectAPI
	bucket string
}

// NewS3Destination builds the S3 client. Path-style addressing is used so
// that custom endpoints work without per-bucket DNS.
func NewS3Destination(ctx context.Context, opts S3Options) (*S3Destination, error) {
	if opts.Bucket == "" {
		return nil, ErrNoBucket
	}

	var loadOpts []func(*config.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(opts.Region))
	}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, "")))
	}

	cfg, err := loadDefaultAWSConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = true
	})
	return &S3Destination{client: client, bucket: opts.Bucket}, nil
}

func (d *S3Destination) Put(ctx context.Context, key string, data []byte) error {
	_, err := d.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(d.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType(key)),
	})
	if err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", d.bucket, key, err)
	}
	return nil
}

func (d *S3Destination) String() string {
	return "s3://" + d.bucket
}

func contentType(key string) string {
	if path.Ext(key) == ".json" {
		return "application/json"
	}
	return "application/octet-stream"
}
