package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"herotime/internal/config"
	"herotime/pkg/utils"
)

const (
	BucketUserUploads     = "user_uploads"
	BucketUserGenerations = "user_generations"
	BucketHeroProps       = "hero_props"
	BucketHeroTemplates   = "hero_templates"

	cacheControl = "max-age=3600"
)

var (
	ErrInvalidPath    = errors.New("invalid storage path")
	ErrObjectNotFound = errors.New("object not found")
	ErrAccessDenied   = errors.New("storage access denied")
)

// S3Client is the subset of the S3 API the adapter uses.
type S3Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// Object is a stored blob and its public URL.
type Object struct {
	Path string `json:"path"`
	URL  string `json:"url"`
}

// Entry is one element of a non-recursive listing.
type Entry struct {
	Name   string
	Folder bool
}

type Storage interface {
	Upload(ctx context.Context, bucket, path string, data []byte, contentType string) (*Object, error)
	Delete(ctx context.Context, bucket, path string) error
	List(ctx context.Context, bucket, prefix string) ([]Entry, error)
	PublicURL(bucket, path string) string
}

type Option func(*S3Storage)

// WithS3Client replaces the SDK client, mostly for tests.
func WithS3Client(client S3Client) Option {
	return func(s *S3Storage) {
		s.client = client
	}
}

// S3Storage talks to the S3 protocol endpoint of the object store.
// Public URLs follow the <base>/storage/v1/object/public/<bucket>/<path> layout.
type S3Storage struct {
	client        S3Client
	publicBaseURL string
}

func NewS3Storage(ctx context.Context, cfg config.StorageConfig, publicBaseURL string, opts ...Option) (*S3Storage, error) {
	s := &S3Storage{publicBaseURL: strings.TrimRight(publicBaseURL, "/")}
	for _, opt := range opts {
		opt(s)
	}
	if s.client != nil {
		return s, nil
	}

	awsOptions := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		awsOptions = append(awsOptions, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsOptions...)
	if err != nil {
		return nil, fmt.Errorf("load storage config: %w", err)
	}

	s.client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = true
	})
	return s, nil
}

func (s *S3Storage) Upload(ctx context.Context, bucket, path string, data []byte, contentType string) (*Object, error) {
	key, err := cleanKey(path)
	if err != nil {
		return nil, err
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
		CacheControl:  aws.String(cacheControl),
	})
	if err != nil {
		return nil, classifyError(err, "upload")
	}

	return &Object{Path: key, URL: s.PublicURL(bucket, key)}, nil
}

func (s *S3Storage) Delete(ctx context.Context, bucket, path string) error {
	key, err := cleanKey(path)
	if err != nil {
		return err
	}

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return classifyError(err, "delete")
	}
	return nil
}

// List returns files and sub-folders directly under prefix.
func (s *S3Storage) List(ctx context.Context, bucket, prefix string) ([]Entry, error) {
	prefix = strings.TrimPrefix(prefix, "/")
	if strings.Contains(prefix, "..") {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPath, prefix)
	}
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	var (
		entries []Entry
		token   *string
	)
	for {
		page, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(bucket),
			Prefix:            aws.String(prefix),
			Delimiter:         aws.String("/"),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, classifyError(err, "list")
		}

		for _, cp := range page.CommonPrefixes {
			name := strings.TrimSuffix(strings.TrimPrefix(aws.ToString(cp.Prefix), prefix), "/")
			if name != "" {
				entries = append(entries, Entry{Name: name, Folder: true})
			}
		}
		for _, obj := range page.Contents {
			name := strings.TrimPrefix(aws.ToString(obj.Key), prefix)
			if name != "" && !strings.Contains(name, "/") {
				entries = append(entries, Entry{Name: name})
			}
		}

		if !aws.ToBool(page.IsTruncated) || page.NextContinuationToken == nil {
			break
		}
		token = page.NextContinuationToken
	}
	return entries, nil
}

func (s *S3Storage) PublicURL(bucket, path string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.publicBaseURL, bucket, strings.TrimPrefix(path, "/"))
}

// PathFromPublicURL returns the object path after "/<bucket>/" in url.
func PathFromPublicURL(url, bucket string) (string, bool) {
	marker := "/" + bucket + "/"
	idx := strings.Index(url, marker)
	if idx < 0 {
		return "", false
	}
	path := url[idx+len(marker):]
	if q := strings.IndexAny(path, "?#"); q >= 0 {
		path = path[:q]
	}
	return path, path != ""
}

func cleanKey(path string) (string, error) {
	key := strings.TrimPrefix(path, "/")
	if key == "" || strings.Contains(key, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}
	return key, nil
}

func classifyError(err error, operation string) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", operation, err)
	}

	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return fmt.Errorf("%s: %w", operation, ErrObjectNotFound)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return fmt.Errorf("%s: %w", operation, ErrObjectNotFound)
		case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch":
			return fmt.Errorf("%s: %w", operation, ErrAccessDenied)
		case "MissingCredentials":
			return fmt.Errorf("%s: %w", operation, utils.ErrProviderNotConfigured)
		default:
			return fmt.Errorf("%s failed (code: %s): %w", operation, apiErr.ErrorCode(), err)
		}
	}
	return fmt.Errorf("%s failed: %w", operation, err)
}
