package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/damacus/iron-browser/internal/browser"
	"github.com/damacus/iron-browser/internal/services"
	"github.com/damacus/iron-browser/internal/store"
)

var testModified = time.Date(2024, 3, 4, 5, 6, 7, 0, time.UTC)

type memObject struct {
	body        string
	contentType string
}

// memStore is an in-memory ObjectStore that groups keys by delimiter and
// paginates with positional tokens.
type memStore struct {
	buckets       map[string]map[string]memObject
	denied        map[string]bool
	bucketsErr    error
	unknownLength bool
}

func newMemStore() *memStore {
	return &memStore{
		buckets: make(map[string]map[string]memObject),
		denied:  make(map[string]bool),
	}
}

func (m *memStore) put(bucket, key, body, contentType string) {
	if m.buckets[bucket] == nil {
		m.buckets[bucket] = make(map[string]memObject)
	}
	m.buckets[bucket][key] = memObject{body: body, contentType: contentType}
}

func (m *memStore) check(op, bucket, key string) error {
	if m.denied[bucket] {
		return &store.Error{Op: op, Driver: "mem", Bucket: bucket, Key: key, StatusCode: http.StatusForbidden, Code: "AccessDenied", Err: errors.New("access denied")}
	}
	if _, ok := m.buckets[bucket]; !ok {
		return &store.Error{Op: op, Driver: "mem", Bucket: bucket, Key: key, StatusCode: http.StatusNotFound, Code: "NoSuchBucket", Err: errors.New("no such bucket")}
	}
	return nil
}

func (m *memStore) ListPage(_ context.Context, in store.ListPageInput) (*store.Page, error) {
	if err := m.check("ListPage", in.Bucket, ""); err != nil {
		return nil, err
	}

	type row struct {
		name   string
		folder bool
	}
	seen := make(map[string]bool)
	var rows []row
	for key := range m.buckets[in.Bucket] {
		if !strings.HasPrefix(key, in.Prefix) {
			continue
		}
		rest := key[len(in.Prefix):]
		if in.Delimiter != "" {
			if idx := strings.Index(rest, in.Delimiter); idx >= 0 {
				folder := in.Prefix + rest[:idx+len(in.Delimiter)]
				if !seen[folder] {
					seen[folder] = true
					rows = append(rows, row{name: folder, folder: true})
				}
				continue
			}
		}
		rows = append(rows, row{name: key})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].name < rows[j].name })

	start := 0
	if in.ContinuationToken != "" {
		start, _ = strconv.Atoi(in.ContinuationToken)
	}
	end := min(len(rows), start+max(in.MaxKeys, 1))

	page := &store.Page{}
	for _, r := range rows[start:end] {
		if r.folder {
			page.Folders = append(page.Folders, r.name)
			continue
		}
		obj := m.buckets[in.Bucket][r.name]
		page.Objects = append(page.Objects, store.ObjectSummary{
			Key:          r.name,
			Size:         int64(len(obj.body)),
			LastModified: testModified,
		})
	}
	if end < len(rows) {
		page.Truncated = true
		page.NextToken = strconv.Itoa(end)
	}
	return page, nil
}

func (m *memStore) OpenObject(_ context.Context, bucket, key string) (io.ReadCloser, store.ObjectMeta, error) {
	if err := m.check("OpenObject", bucket, key); err != nil {
		return nil, store.ObjectMeta{}, err
	}
	obj, ok := m.buckets[bucket][key]
	if !ok {
		return nil, store.ObjectMeta{}, &store.Error{Op: "OpenObject", Driver: "mem", Bucket: bucket, Key: key, StatusCode: http.StatusNotFound, Code: "NoSuchKey", Err: errors.New("no such key")}
	}
	length := int64(len(obj.body))
	if m.unknownLength {
		length = -1
	}
	return io.NopCloser(strings.NewReader(obj.body)), store.ObjectMeta{ContentLength: length, ContentType: obj.contentType}, nil
}

func (m *memStore) ListAllBuckets(context.Context) ([]string, error) {
	if m.bucketsErr != nil {
		return nil, m.bucketsErr
	}
	names := make([]string, 0, len(m.buckets))
	for name := range m.buckets {
		names = append(names, name)
	}
	return names, nil
}

// newTestRegistry wires a primary source backed by s and a secondary,
// empty source.
func newTestRegistry(t *testing.T, s *memStore, pageSize int) *services.Registry {
	t.Helper()

	secondary := newMemStore()
	secondary.put("other-bucket", "other.txt", "other", "")

	registry, err := services.NewRegistryFromSources([]store.Source{
		{Name: "primary", DisplayName: "Primary", DefaultBucket: "photos", Store: s},
		{Name: "secondary", DisplayName: "Secondary", DefaultBucket: "other-bucket", Store: secondary},
	}, "primary", browser.Options{PageSize: pageSize, SearchPageLimit: 5}, nil)
	require.NoError(t, err)
	return registry
}

// sampleStore holds a small photo library.
func sampleStore() *memStore {
	s := newMemStore()
	s.put("photos", "2024/cat.jpg", "meow", "image/jpeg")
	s.put("photos", "2024/dog.png", "woof", "")
	s.put("photos", "2024/may/beach.jpg", "sand", "image/jpeg")
	s.put("photos", "2024/notes.txt", "hello notes", "text/plain")
	s.put("photos", "readme.md", "# photos", "")
	s.put("reports", "q1.pdf", "pdf", "application/pdf")
	return s
}
