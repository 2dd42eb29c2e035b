package browser

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/damacus/iron-browser/internal/store"
)

// FolderStats is the aggregated view of one folder sub-tree. A zero
// LastModified means no object was found.
type FolderStats struct {
	Size         int64
	LastModified time.Time
}

// Aggregate sums object sizes and finds the latest modification under
// folderPrefix by paging through the full recursive listing. A blank
// prefix yields zero stats without touching the backend.
func (b *Browser) Aggregate(ctx context.Context, bucket, folderPrefix string) (FolderStats, error) {
	if isBlank(folderPrefix) {
		return FolderStats{}, nil
	}

	bucket = b.resolveBucket(bucket)
	prefix := NormalizePrefix(folderPrefix)
	maxKeys := max(1, b.opts.PageSize)

	var (
		stats FolderStats
		token string
		pages int
	)
	for {
		page, err := b.source.Store.ListPage(ctx, store.ListPageInput{
			Bucket:            bucket,
			Prefix:            prefix,
			MaxKeys:           maxKeys,
			ContinuationToken: token,
		})
		if err != nil {
			return FolderStats{}, Translate(err, bucket, b.source)
		}
		pages++

		for _, obj := range page.Objects {
			if isDirectoryMarker(obj.Key) {
				continue
			}
			stats.Size += obj.Size
			if obj.LastModified.After(stats.LastModified) {
				stats.LastModified = obj.LastModified
			}
		}

		if !page.Truncated {
			break
		}
		if isBlank(page.NextToken) || page.NextToken == token {
			break
		}
		token = page.NextToken
	}

	b.logger.Debug("Aggregated folder",
		zap.String("bucket", bucket),
		zap.String("prefix", prefix),
		zap.Int("pages", pages),
		zap.Int64("size", stats.Size),
	)
	return stats, nil
}

// cachedAggregate computes stats for prefix at most once per cache.
func (b *Browser) cachedAggregate(ctx context.Context, bucket, prefix string, cache map[string]FolderStats) (FolderStats, error) {
	if stats, ok := cache[prefix]; ok {
		return stats, nil
	}
	stats, err := b.Aggregate(ctx, bucket, prefix)
	if err != nil {
		return FolderStats{}, err
	}
	cache[prefix] = stats
	return stats, nil
}
