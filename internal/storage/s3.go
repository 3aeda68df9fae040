package storage

import (
	"context"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/cockroachdb/errors"

	"github.com/tiwari1302/commoncrawl/pkg/commoncrawl"
)

// S3Options는 S3 클라이언트 설정입니다.
type S3Options struct {
	Region      string
	Endpoint    string
	Anonymous   bool
	MaxAttempts int
}

// S3Store는 aws-sdk-go-v2 기반 ObjectStore입니다.
type S3Store struct {
	client *s3.Client
}

func NewS3Store(ctx context.Context, opts S3Options) (*S3Store, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	if opts.MaxAttempts > 0 {
		loadOpts = append(loadOpts, awsconfig.WithRetryMaxAttempts(opts.MaxAttempts))
	}
	if opts.Anonymous {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(aws.AnonymousCredentials{}))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "load aws config")
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Store{client: client}, nil
}

func (s *S3Store) ReadRange(ctx context.Context, uri string, offset, length int64) ([]byte, error) {
	bucket, key, err := commoncrawl.SplitS3URL(uri)
	if err != nil {
		return nil, err
	}
	if length <= 0 {
		return nil, errors.Wrapf(ErrRangeUnsatisfiable, "length %d", length)
	}

	resp, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Range:  aws.String(rangeHeader(offset, length)),
	})
	if err != nil {
		return nil, s.classify(err, uri)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "read range body %s", uri)
	}
	return data, nil
}

func (s *S3Store) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	bucket, key, err := commoncrawl.SplitS3URL(uri)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, s.classify(err, uri)
	}
	return resp.Body, nil
}

func (s *S3Store) Put(ctx context.Context, uri string, body io.ReadSeeker) error {
	bucket, key, err := commoncrawl.SplitS3URL(uri)
	if err != nil {
		return err
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   body,
	})
	if err != nil {
		return errors.Wrapf(err, "put %s", uri)
	}
	return nil
}

func (s *S3Store) classify(err error, uri string) error {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return NotFound(uri)
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound", "NoSuchBucket":
			return NotFound(uri)
		case "InvalidRange":
			return errors.Wrapf(ErrRangeUnsatisfiable, "%s", uri)
		}
	}
	return errors.Wrapf(err, "get %s", uri)
}
