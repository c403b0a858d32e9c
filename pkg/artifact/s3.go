package artifact

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// DefaultRegion is used when S3Config.Region is empty.
const DefaultRegion = "us-east-1"

// S3Config holds the bucket that release artifacts are published to.
type S3Config struct {
	Bucket    string `env:"SSR_S3_BUCKET"`
	Prefix    string `env:"SSR_S3_PREFIX"`
	AccessKey string `env:"SSR_S3_ACCESS_KEY"`
	SecretKey string `env:"SSR_S3_SECRET_KEY"`
	Region    string `env:"SSR_S3_REGION" envDefault:"us-east-1"`
	// Endpoint is set for S3-compatible services such as MinIO.
	Endpoint  string `env:"SSR_S3_ENDPOINT"`
	PathStyle bool   `env:"SSR_S3_PATH_STYLE"`
}

// ObjectGetter is the subset of the S3 client the source needs.
type ObjectGetter interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source reads artifacts from an S3 bucket under an optional key prefix.
type S3Source struct {
	client ObjectGetter
	bucket string
	prefix string
}

// NewS3 creates an S3 source with static credentials.
func NewS3(cfg S3Config) (*S3Source, error) {
	if cfg.Bucket == "" || cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, ErrInvalidS3Config
	}
	if cfg.Region == "" {
		cfg.Region = DefaultRegion
	}

	client := s3.New(s3.Options{}, func(o *s3.Options) {
		o.Region = cfg.Region
		o.Credentials = credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = cfg.PathStyle
		}
	})

	return NewS3WithClient(client, cfg.Bucket, cfg.Prefix), nil
}

// NewS3WithClient creates an S3 source around an existing client.
func NewS3WithClient(client ObjectGetter, bucket, prefix string) *S3Source {
	return &S3Source{client: client, bucket: bucket, prefix: prefix}
}

// ReadFile downloads the object "{prefix}/{name}".
func (s *S3Source) ReadFile(ctx context.Context, name string) ([]byte, error) {
	key := name
	if s.prefix != "" {
		key = path.Join(s.prefix, name)
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isS3NotFound(err) {
			return nil, fmt.Errorf("s3://%s/%s: %w", s.bucket, key, fs.ErrNotExist)
		}
		return nil, fmt.Errorf("s3://%s/%s: %w", s.bucket, key, err)
	}

	return readAll(out.Body)
}

func isS3NotFound(err error) bool {
	var noKey *types.NoSuchKey
	if errors.As(err, &noKey) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}
