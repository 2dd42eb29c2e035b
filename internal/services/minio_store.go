package services

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/damacus/iron-browser/internal/config"
	"github.com/damacus/iron-browser/internal/store"
)

// MinioAPI is the subset of minio.Core the store uses.
type MinioAPI interface {
	ListObjectsV2(bucketName, objectPrefix, startAfter, continuationToken, delimiter string, maxkeys int) (minio.ListBucketV2Result, error)
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, minio.ObjectInfo, http.Header, error)
	ListBuckets(ctx context.Context) ([]minio.BucketInfo, error)
}

// MinioStore implements store.ObjectStore on top of the MinIO client.
type MinioStore struct {
	api MinioAPI
}

var _ store.ObjectStore = (*MinioStore)(nil)

// NewMinioStore wraps an existing MinIO API.
func NewMinioStore(api MinioAPI) *MinioStore {
	return &MinioStore{api: api}
}

// ListPage implements store.ObjectStore using ListObjectsV2 so the backend
// continuation token is passed through unchanged.
func (s *MinioStore) ListPage(_ context.Context, in store.ListPageInput) (*store.Page, error) {
	maxKeys := store.ClampMaxKeys(in.MaxKeys, store.MaxKeysLimit)

	result, err := s.api.ListObjectsV2(in.Bucket, in.Prefix, "", in.ContinuationToken, in.Delimiter, maxKeys)
	if err != nil {
		return nil, wrapMinioError("ListPage", in.Bucket, "", err)
	}

	page := &store.Page{
		Folders:   make([]string, 0, len(result.CommonPrefixes)),
		Objects:   make([]store.ObjectSummary, 0, len(result.Contents)),
		Truncated: result.IsTruncated,
		NextToken: result.NextContinuationToken,
	}
	for _, p := range result.CommonPrefixes {
		page.Folders = append(page.Folders, p.Prefix)
	}
	for _, obj := range result.Contents {
		page.Objects = append(page.Objects, store.ObjectSummary{
			Key:          obj.Key,
			Size:         obj.Size,
			LastModified: obj.LastModified,
			ETag:         cleanETag(obj.ETag),
		})
	}
	return page, nil
}

// OpenObject implements store.ObjectStore.
func (s *MinioStore) OpenObject(ctx context.Context, bucket, key string) (io.ReadCloser, store.ObjectMeta, error) {
	reader, info, _, err := s.api.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, store.ObjectMeta{}, wrapMinioError("OpenObject", bucket, key, err)
	}
	meta := store.ObjectMeta{ContentLength: info.Size, ContentType: info.ContentType}
	if meta.ContentLength < 0 {
		meta.ContentLength = -1
	}
	return reader, meta, nil
}

// ListAllBuckets implements store.ObjectStore.
func (s *MinioStore) ListAllBuckets(ctx context.Context) ([]string, error) {
	buckets, err := s.api.ListBuckets(ctx)
	if err != nil {
		return nil, wrapMinioError("ListAllBuckets", "", "", err)
	}
	names := make([]string, 0, len(buckets))
	for _, b := range buckets {
		names = append(names, b.Name)
	}
	return names, nil
}

// wrapMinioError records the HTTP status and error code of a MinIO failure.
func wrapMinioError(op, bucket, key string, err error) error {
	wrapped := &store.Error{Op: op, Driver: config.DriverMinio, Bucket: bucket, Key: key, Err: err}

	var resp minio.ErrorResponse
	if errors.As(err, &resp) {
		wrapped.StatusCode = resp.StatusCode
		wrapped.Code = resp.Code
	}
	return wrapped
}

// shouldUseSSL determines if SSL should be used based on the endpoint.
// Returns false for localhost, 127.0.0.1, and docker service names.
func shouldUseSSL(endpoint string) bool {
	if endpoint == "localhost:9000" || endpoint == "127.0.0.1:9000" {
		return false
	}
	// Docker service names (minio:9000, minio1:9000, ...) but not domain
	// names like minio.example.com
	if strings.HasPrefix(endpoint, "minio") && !strings.Contains(strings.Split(endpoint, ":")[0], ".") && strings.Contains(endpoint, ":9000") {
		return false
	}
	return true
}

// minioEndpoint splits an endpoint that may carry a scheme into the
// host[:port] MinIO expects and the TLS choice.
func minioEndpoint(endpoint string, insecure bool) (string, bool) {
	if u, err := url.Parse(endpoint); err == nil && u.Host != "" && (u.Scheme == "http" || u.Scheme == "https") {
		return u.Host, u.Scheme == "https" && !insecure
	}
	return endpoint, !insecure && shouldUseSSL(endpoint)
}

// NewMinioClient builds a MinIO core client for a configured source.
func NewMinioClient(cfg config.SourceConfig) (*minio.Core, error) {
	host, secure := minioEndpoint(cfg.Endpoint, cfg.Insecure)

	lookup := minio.BucketLookupAuto
	if cfg.UsePathStyle() {
		lookup = minio.BucketLookupPath
	}

	opts := &minio.Options{
		Secure:       secure,
		Region:       cfg.Region,
		BucketLookup: lookup,
	}
	if cfg.AccessKey != "" {
		opts.Creds = credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, cfg.SessionToken)
	} else {
		opts.Creds = credentials.NewIAM("")
	}
	return minio.NewCore(host, opts)
}
