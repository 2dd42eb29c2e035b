package browser

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/damacus/iron-browser/internal/models"
	"github.com/damacus/iron-browser/internal/store"
)

// ListRequest describes one browse call.
type ListRequest struct {
	// Bucket to browse. Blank selects the source's default bucket.
	Bucket string

	// Prefix is normalized before use. Blank means the bucket root.
	Prefix string

	// TokenStack is the encoded navigation history; blank for the first page.
	TokenStack string

	// Query, when non-blank, filters entry names case-insensitively and
	// lets the engine scan further pages.
	Query string

	// IncludeFolderDetails aggregates size and last modification per folder.
	IncludeFolderDetails bool
}

// List fetches one browse page. Without a query exactly one backend page is
// read. With a query, pages are scanned until the backend runs out, enough
// objects matched, or SearchPageLimit pages were read.
func (b *Browser) List(ctx context.Context, req ListRequest) (*models.Listing, error) {
	bucket := b.resolveBucket(req.Bucket)
	prefix := NormalizePrefix(req.Prefix)

	tokens, err := DecodeTokens(req.TokenStack)
	if err != nil {
		return nil, err
	}
	var cursor string
	if len(tokens) > 0 {
		cursor = tokens[len(tokens)-1]
	}

	matches := buildMatcher(req.Query)
	searching := !isBlank(req.Query)

	var (
		folders   []models.Folder
		objects   []models.Object
		truncated bool
		nextToken string
		pages     int
	)

	for {
		page, err := b.source.Store.ListPage(ctx, store.ListPageInput{
			Bucket:            bucket,
			Prefix:            prefix,
			Delimiter:         store.Separator,
			MaxKeys:           b.opts.PageSize,
			ContinuationToken: cursor,
		})
		if err != nil {
			return nil, Translate(err, bucket, b.source)
		}
		pages++

		for _, folderPrefix := range page.Folders {
			name := FolderName(folderPrefix)
			if matches(name) {
				folders = append(folders, models.Folder{Name: name, Prefix: folderPrefix})
			}
		}
		for _, obj := range page.Objects {
			if isDirectoryMarker(obj.Key) {
				continue
			}
			name := FileName(obj.Key)
			if !matches(name) {
				continue
			}
			objects = append(objects, models.Object{
				Key:          obj.Key,
				Name:         name,
				Size:         obj.Size,
				LastModified: obj.LastModified,
				ETag:         obj.ETag,
				Previewable:  IsPreviewable(obj.Key),
			})
		}

		truncated = page.Truncated
		nextToken = page.NextToken

		b.logger.Debug("Listed page",
			zap.String("bucket", bucket),
			zap.String("prefix", prefix),
			zap.Int("page", pages),
			zap.Int("folders", len(page.Folders)),
			zap.Int("objects", len(page.Objects)),
			zap.Bool("truncated", truncated),
		)

		if !searching {
			break
		}
		if !truncated || len(objects) >= b.opts.PageSize || pages >= b.opts.SearchPageLimit {
			break
		}
		if isBlank(nextToken) || nextToken == cursor {
			b.logger.Warn("Backend repeated continuation token, stopping search",
				zap.String("bucket", bucket),
				zap.String("prefix", prefix),
				zap.Int("page", pages),
			)
			break
		}
		cursor = nextToken
	}

	folders = limit(folders, b.opts.PageSize)
	objects = limit(objects, b.opts.PageSize)

	if req.IncludeFolderDetails {
		// per-request only; discarded when List returns
		cache := make(map[string]FolderStats, len(folders))
		for i := range folders {
			stats, err := b.cachedAggregate(ctx, bucket, folders[i].Prefix, cache)
			if err != nil {
				return nil, err
			}
			folders[i].Size = stats.Size
			folders[i].LastModified = stats.LastModified
		}
	}

	current := EncodeTokens(tokens)
	hasNext := truncated && !isBlank(nextToken) && nextToken != cursor
	var next string
	if hasNext {
		next = AppendToken(current, nextToken)
	}
	var previous string
	if len(tokens) > 0 {
		previous = DropLastToken(current)
	}

	if folders == nil {
		folders = []models.Folder{}
	}
	if objects == nil {
		objects = []models.Object{}
	}

	return &models.Listing{
		Bucket:   bucket,
		Prefix:   prefix,
		Folders:  folders,
		Objects:  objects,
		HasNext:  hasNext,
		Current:  current,
		Next:     next,
		Previous: previous,
	}, nil
}

// buildMatcher returns a case-insensitive substring predicate. A blank
// query matches everything.
func buildMatcher(query string) func(string) bool {
	if isBlank(query) {
		return func(string) bool { return true }
	}
	needle := strings.ToLower(query)
	return func(value string) bool {
		return strings.Contains(strings.ToLower(value), needle)
	}
}

func limit[T any](items []T, max int) []T {
	if len(items) <= max {
		return items
	}
	return items[:max]
}
