package browser

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/damacus/iron-browser/internal/store"
)

func TestAggregate_SumsAcrossPages(t *testing.T) {
	older := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	newer := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)

	s := newFakeStore()
	s.addPage("media/", "", "", &store.Page{
		Objects: []store.ObjectSummary{
			{Key: "media/", Size: 0, LastModified: newer.Add(time.Hour)},
			{Key: "media/a.mp4", Size: 100, LastModified: older},
		},
		Truncated: true,
		NextToken: "p2",
	})
	s.addPage("media/", "", "p2", &store.Page{
		Objects: []store.ObjectSummary{
			{Key: "media/nested/b.mp4", Size: 250, LastModified: newer},
		},
	})
	b := newTestBrowser(s, 1, 3)

	stats, err := b.Aggregate(context.Background(), "bucket", "media")
	require.NoError(t, err)

	assert.Equal(t, int64(350), stats.Size)
	assert.Equal(t, newer, stats.LastModified)
	assert.Equal(t, 2, s.callsFor("media/", ""))
	assert.Equal(t, 1, s.listCalls[0].MaxKeys)
}

func TestAggregate_BlankPrefix(t *testing.T) {
	s := newFakeStore()
	b := newTestBrowser(s, 50, 3)

	stats, err := b.Aggregate(context.Background(), "bucket", "  ")
	require.NoError(t, err)

	assert.Equal(t, FolderStats{}, stats)
	assert.Empty(t, s.listCalls)
}

func TestAggregate_EmptyFolder(t *testing.T) {
	s := newFakeStore()
	s.addPage("empty/", "", "", &store.Page{
		Objects: []store.ObjectSummary{{Key: "empty/", Size: 0}},
	})
	b := newTestBrowser(s, 50, 3)

	stats, err := b.Aggregate(context.Background(), "bucket", "empty/")
	require.NoError(t, err)

	assert.Equal(t, int64(0), stats.Size)
	assert.True(t, stats.LastModified.IsZero())
}

func TestAggregate_StopsOnRepeatedToken(t *testing.T) {
	s := newFakeStore()
	s.addPage("loop/", "", "", &store.Page{
		Objects:   []store.ObjectSummary{{Key: "loop/a", Size: 1}},
		Truncated: true,
		NextToken: "same",
	})
	s.addPage("loop/", "", "same", &store.Page{
		Objects:   []store.ObjectSummary{{Key: "loop/b", Size: 2}},
		Truncated: true,
		NextToken: "same",
	})
	b := newTestBrowser(s, 50, 3)

	stats, err := b.Aggregate(context.Background(), "bucket", "loop/")
	require.NoError(t, err)

	assert.Equal(t, int64(3), stats.Size)
	assert.Equal(t, 2, s.callsFor("loop/", ""))
}

func TestAggregate_StopsWhenTruncatedWithoutToken(t *testing.T) {
	s := newFakeStore()
	s.addPage("odd/", "", "", &store.Page{
		Objects:   []store.ObjectSummary{{Key: "odd/a", Size: 5}},
		Truncated: true,
	})
	b := newTestBrowser(s, 50, 3)

	stats, err := b.Aggregate(context.Background(), "bucket", "odd/")
	require.NoError(t, err)

	assert.Equal(t, int64(5), stats.Size)
	assert.Len(t, s.listCalls, 1)
}

func TestAggregate_UsesDefaultBucket(t *testing.T) {
	s := newFakeStore()
	b := newTestBrowser(s, 50, 3)

	_, err := b.Aggregate(context.Background(), "", "docs/")
	require.NoError(t, err)

	require.Len(t, s.listCalls, 1)
	assert.Equal(t, "default-bucket", s.listCalls[0].Bucket)
	assert.Equal(t, "", s.listCalls[0].Delimiter)
}

func TestCachedAggregate(t *testing.T) {
	s := newFakeStore()
	s.addPage("a/", "", "", &store.Page{Objects: []store.ObjectSummary{{Key: "a/x", Size: 9}}})
	b := newTestBrowser(s, 50, 3)
	cache := make(map[string]FolderStats)

	for range 3 {
		stats, err := b.cachedAggregate(context.Background(), "bucket", "a/", cache)
		require.NoError(t, err)
		assert.Equal(t, int64(9), stats.Size)
	}
	assert.Equal(t, 1, s.callsFor("a/", ""))
}
