// Package store defines the narrow object-store capability the browser
// consumes: paged listing, streaming reads and bucket enumeration.
//
// Concrete adapters live in the services package. Implementations must be
// safe for concurrent use by simultaneous requests.
package store

import (
	"context"
	"io"
	"time"
)

// Separator is the path separator used to fold flat keys into folders.
const Separator = "/"

// MaxKeysLimit is the largest page size S3-compatible backends accept.
const MaxKeysLimit = 1000

// ObjectStore is the capability surface of one configured backend.
type ObjectStore interface {
	// ListPage returns one page of a listing. An empty Delimiter requests a
	// full recursive listing with no common prefixes.
	ListPage(ctx context.Context, in ListPageInput) (*Page, error)

	// OpenObject starts a streaming read of a single object. Callers must
	// close the returned reader.
	OpenObject(ctx context.Context, bucket, key string) (io.ReadCloser, ObjectMeta, error)

	// ListAllBuckets returns every bucket visible to the credentials.
	ListAllBuckets(ctx context.Context) ([]string, error)
}

// ListPageInput configures a single ListPage call.
type ListPageInput struct {
	Bucket            string
	Prefix            string
	Delimiter         string
	MaxKeys           int
	ContinuationToken string
}

// Page is one page of a listing response.
type Page struct {
	// Folders holds the common prefixes grouped by the delimiter.
	Folders []string

	// Objects holds the object entries of this page, directory markers included.
	Objects []ObjectSummary

	// Truncated reports whether the backend has more results.
	Truncated bool

	// NextToken resumes the listing. Empty when the backend supplied none.
	NextToken string
}

// ObjectSummary is the per-object metadata returned by a listing.
type ObjectSummary struct {
	Key          string
	Size         int64
	LastModified time.Time
	ETag         string
}

// ObjectMeta describes an opened object stream.
type ObjectMeta struct {
	// ContentLength is -1 when the backend did not report a length.
	ContentLength int64
	ContentType   string
}

// Source is a resolved backend identity. It is read-only for the lifetime
// of a request.
type Source struct {
	Name          string
	DisplayName   string
	DefaultBucket string
	Store         ObjectStore
}

// ClampMaxKeys applies a fallback for non-positive values and caps the
// result at MaxKeysLimit.
func ClampMaxKeys(requested, fallback int) int {
	if requested <= 0 {
		requested = fallback
	}
	if requested <= 0 {
		requested = 1
	}
	if requested > MaxKeysLimit {
		return MaxKeysLimit
	}
	return requested
}
