package browser

import (
	"context"
	"io"

	"github.com/damacus/iron-browser/internal/store"
)

// Open streams a single object. A blank bucket selects the source's default
// bucket. The caller must close the reader.
func (b *Browser) Open(ctx context.Context, bucket, key string) (io.ReadCloser, store.ObjectMeta, error) {
	bucket = b.resolveBucket(bucket)

	reader, meta, err := b.source.Store.OpenObject(ctx, bucket, key)
	if err != nil {
		return nil, store.ObjectMeta{}, Translate(err, bucket, b.source)
	}
	return reader, meta, nil
}
