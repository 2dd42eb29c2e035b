package browser

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/damacus/iron-browser/internal/store"
)

// ArchiveSink receives archive entries one at a time. The writer returned
// by CreateEntry is valid until the next CreateEntry or Close.
type ArchiveSink interface {
	// CreateEntry starts a new entry. size is -1 when unknown.
	CreateEntry(name string, size int64, modified time.Time) (io.Writer, error)

	// Close finalizes the archive.
	Close() error
}

// ExportKeys streams the given keys into sink, one entry per distinct
// non-blank key, named after the sanitized key. The result maps each key to
// the length reported by the backend, or -1.
func (b *Browser) ExportKeys(ctx context.Context, bucket string, keys []string, sink ArchiveSink) (map[string]int64, error) {
	bucket = b.resolveBucket(bucket)
	transferred := make(map[string]int64)

	for _, key := range DistinctKeys(keys) {
		if err := b.writeEntry(ctx, bucket, key, "", time.Time{}, sink, transferred); err != nil {
			return transferred, err
		}
	}

	b.logExport(bucket, "", transferred)
	return transferred, nil
}

// ExportPrefix streams every object below prefix into sink, naming entries
// relative to the prefix. Directory markers are skipped.
func (b *Browser) ExportPrefix(ctx context.Context, bucket, prefix string, sink ArchiveSink) (map[string]int64, error) {
	bucket = b.resolveBucket(bucket)
	prefix = NormalizePrefix(prefix)
	transferred := make(map[string]int64)

	var token string
	for {
		page, err := b.source.Store.ListPage(ctx, store.ListPageInput{
			Bucket:            bucket,
			Prefix:            prefix,
			MaxKeys:           store.MaxKeysLimit,
			ContinuationToken: token,
		})
		if err != nil {
			return transferred, Translate(err, bucket, b.source)
		}

		for _, obj := range page.Objects {
			if isDirectoryMarker(obj.Key) {
				continue
			}
			if err := b.writeEntry(ctx, bucket, obj.Key, prefix, obj.LastModified, sink, transferred); err != nil {
				return transferred, err
			}
		}

		if !page.Truncated || isBlank(page.NextToken) || page.NextToken == token {
			break
		}
		token = page.NextToken
	}

	b.logExport(bucket, prefix, transferred)
	return transferred, nil
}

// writeEntry copies one object into the sink. The object reader is closed
// on every path.
func (b *Browser) writeEntry(ctx context.Context, bucket, key, prefixToTrim string, modified time.Time, sink ArchiveSink, transferred map[string]int64) error {
	name := SanitizeEntryName(key, prefixToTrim)

	reader, meta, err := b.source.Store.OpenObject(ctx, bucket, key)
	if err != nil {
		return Translate(err, bucket, b.source)
	}
	defer func() { _ = reader.Close() }()

	size := int64(-1)
	if meta.ContentLength >= 0 {
		size = meta.ContentLength
	}
	if modified.IsZero() {
		modified = time.Now()
	}

	w, err := sink.CreateEntry(name, size, modified)
	if err != nil {
		return &TransferError{Key: key, Err: err}
	}
	n, err := io.Copy(w, reader)
	if err != nil {
		return &TransferError{Key: key, Err: err}
	}
	if size >= 0 && n != size {
		return &TransferError{Key: key, Err: fmt.Errorf("copied %d of %d bytes", n, size)}
	}

	transferred[key] = size
	return nil
}

func (b *Browser) logExport(bucket, prefix string, transferred map[string]int64) {
	var total int64
	for _, n := range transferred {
		if n > 0 {
			total += n
		}
	}
	b.logger.Info("Export complete",
		zap.String("bucket", bucket),
		zap.String("prefix", prefix),
		zap.Int("entries", len(transferred)),
		zap.Int64("bytes", total),
	)
}

// DistinctKeys drops blank keys and duplicates, keeping first occurrences
// in order.
func DistinctKeys(keys []string) []string {
	seen := make(map[string]bool, len(keys))
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		if isBlank(key) || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, key)
	}
	return out
}
