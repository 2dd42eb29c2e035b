// Package browser turns flat, token-paginated object listings into a
// navigable folder view. It implements paged browsing, bounded multi-page
// search, per-request folder aggregation and archive export over a single
// store.Source.
//
// A Browser holds no per-request state; every call keeps its token stack,
// folder-stats cache and byte counters on the stack, so one Browser may
// serve concurrent requests.
package browser

import (
	"go.uber.org/zap"

	"github.com/damacus/iron-browser/internal/store"
)

// DefaultPageSize is the default number of entries fetched and shown per page.
const DefaultPageSize = 200

// DefaultSearchPageLimit bounds how many pages a single search may scan.
const DefaultSearchPageLimit = 10

// Options bounds backend interaction.
type Options struct {
	// PageSize bounds each page fetch and the final result trim. [1,1000].
	PageSize int

	// SearchPageLimit bounds the pages scanned per search query. >= 1.
	SearchPageLimit int
}

// Browser browses one backend source.
type Browser struct {
	source store.Source
	opts   Options
	logger *zap.Logger
}

// New creates a Browser for src. Out-of-range options fall back to defaults.
func New(src store.Source, opts Options, logger *zap.Logger) *Browser {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	opts.PageSize = store.ClampMaxKeys(opts.PageSize, DefaultPageSize)
	if opts.SearchPageLimit <= 0 {
		opts.SearchPageLimit = DefaultSearchPageLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Browser{
		source: src,
		opts:   opts,
		logger: logger.With(zap.String("source", src.Name)),
	}
}

// Source returns the backend identity this Browser operates on.
func (b *Browser) Source() store.Source {
	return b.source
}

// resolveBucket falls back to the source's default bucket.
func (b *Browser) resolveBucket(bucket string) string {
	if isBlank(bucket) {
		return b.source.DefaultBucket
	}
	return bucket
}
