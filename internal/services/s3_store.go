package services

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"github.com/damacus/iron-browser/internal/config"
	"github.com/damacus/iron-browser/internal/store"
)

// DefaultAWSRegion is the fallback region for AWS S3 when none is configured.
const DefaultAWSRegion = "us-east-1"

// S3API is the subset of the AWS S3 client the store uses.
type S3API interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	ListBuckets(ctx context.Context, params *s3.ListBucketsInput, optFns ...func(*s3.Options)) (*s3.ListBucketsOutput, error)
}

// S3Store implements store.ObjectStore on top of the AWS SDK.
type S3Store struct {
	api S3API
}

var _ store.ObjectStore = (*S3Store)(nil)

// NewS3Store wraps an existing S3 API.
func NewS3Store(api S3API) *S3Store {
	return &S3Store{api: api}
}

// ListPage implements store.ObjectStore.
func (s *S3Store) ListPage(ctx context.Context, in store.ListPageInput) (*store.Page, error) {
	maxKeys := store.ClampMaxKeys(in.MaxKeys, store.MaxKeysLimit)

	input := &s3.ListObjectsV2Input{
		Bucket:  aws.String(in.Bucket),
		MaxKeys: aws.Int32(int32(maxKeys)),
	}
	if in.Prefix != "" {
		input.Prefix = aws.String(in.Prefix)
	}
	if in.Delimiter != "" {
		input.Delimiter = aws.String(in.Delimiter)
	}
	if in.ContinuationToken != "" {
		input.ContinuationToken = aws.String(in.ContinuationToken)
	}

	output, err := s.api.ListObjectsV2(ctx, input)
	if err != nil {
		return nil, wrapS3Error("ListPage", in.Bucket, "", err)
	}

	page := &store.Page{
		Folders:   make([]string, 0, len(output.CommonPrefixes)),
		Objects:   make([]store.ObjectSummary, 0, len(output.Contents)),
		Truncated: aws.ToBool(output.IsTruncated),
		NextToken: aws.ToString(output.NextContinuationToken),
	}
	for _, p := range output.CommonPrefixes {
		page.Folders = append(page.Folders, aws.ToString(p.Prefix))
	}
	for _, obj := range output.Contents {
		page.Objects = append(page.Objects, store.ObjectSummary{
			Key:          aws.ToString(obj.Key),
			Size:         aws.ToInt64(obj.Size),
			LastModified: aws.ToTime(obj.LastModified),
			ETag:         cleanETag(aws.ToString(obj.ETag)),
		})
	}
	return page, nil
}

// OpenObject implements store.ObjectStore.
func (s *S3Store) OpenObject(ctx context.Context, bucket, key string) (io.ReadCloser, store.ObjectMeta, error) {
	output, err := s.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, store.ObjectMeta{}, wrapS3Error("OpenObject", bucket, key, err)
	}

	meta := store.ObjectMeta{ContentLength: -1, ContentType: aws.ToString(output.ContentType)}
	if output.ContentLength != nil && *output.ContentLength >= 0 {
		meta.ContentLength = *output.ContentLength
	}
	return output.Body, meta, nil
}

// ListAllBuckets implements store.ObjectStore.
func (s *S3Store) ListAllBuckets(ctx context.Context) ([]string, error) {
	var (
		names []string
		token *string
	)
	for {
		output, err := s.api.ListBuckets(ctx, &s3.ListBucketsInput{ContinuationToken: token})
		if err != nil {
			return nil, wrapS3Error("ListAllBuckets", "", "", err)
		}
		for _, b := range output.Buckets {
			names = append(names, aws.ToString(b.Name))
		}
		next := aws.ToString(output.ContinuationToken)
		if next == "" || next == aws.ToString(token) {
			break
		}
		token = aws.String(next)
	}
	return names, nil
}

// wrapS3Error records the HTTP status and API error code of an SDK failure.
func wrapS3Error(op, bucket, key string, err error) error {
	wrapped := &store.Error{Op: op, Driver: config.DriverS3, Bucket: bucket, Key: key, Err: err}

	var statusErr interface{ HTTPStatusCode() int }
	if errors.As(err, &statusErr) {
		wrapped.StatusCode = statusErr.HTTPStatusCode()
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		wrapped.Code = apiErr.ErrorCode()
		if wrapped.StatusCode == 0 {
			wrapped.StatusCode = statusForCode(wrapped.Code)
		}
	}
	return wrapped
}

// statusForCode maps well-known S3 error codes to their HTTP status when the
// transport response is unavailable.
func statusForCode(code string) int {
	switch code {
	case "AccessDenied", "Forbidden", "AllAccessDisabled":
		return 403
	case "NoSuchBucket", "NoSuchKey", "NotFound":
		return 404
	case "InvalidAccessKeyId", "SignatureDoesNotMatch":
		return 401
	}
	return 0
}

// cleanETag removes surrounding quotes from an ETag value.
func cleanETag(etag string) string {
	return strings.Trim(etag, "\"")
}

// resolveRegion applies the us-east-1 fallback for AWS S3. S3-compatible
// endpoints get no default.
func resolveRegion(endpoint, sdkRegion string) string {
	if sdkRegion != "" {
		return sdkRegion
	}
	if endpoint == "" {
		return DefaultAWSRegion
	}
	return ""
}

// s3BaseEndpoint adds a scheme to bare host[:port] endpoints.
func s3BaseEndpoint(endpoint string, insecure bool) string {
	if endpoint == "" || strings.Contains(endpoint, "://") {
		return endpoint
	}
	if insecure || !shouldUseSSL(endpoint) {
		return "http://" + endpoint
	}
	return "https://" + endpoint
}

// NewS3Client builds an AWS SDK client for a configured source. Without
// explicit keys the SDK default credential chain applies.
func NewS3Client(ctx context.Context, cfg config.SourceConfig) (*s3.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, cfg.SessionToken),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, &store.Error{Op: "NewS3Client", Driver: config.DriverS3, Err: err}
	}
	awsCfg.Region = resolveRegion(cfg.Endpoint, awsCfg.Region)

	endpoint := s3BaseEndpoint(cfg.Endpoint, cfg.Insecure)
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle()
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	}), nil
}
