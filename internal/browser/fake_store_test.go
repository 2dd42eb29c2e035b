package browser

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/damacus/iron-browser/internal/store"
)

type pageKey struct {
	prefix    string
	delimiter string
	token     string
}

// fakeStore serves scripted pages keyed by (prefix, delimiter, token) and
// in-memory object bodies.
type fakeStore struct {
	mu sync.Mutex

	pages   map[pageKey]*store.Page
	listErr error

	objects       map[string]string
	openErr       map[string]error
	unknownLength bool
	declared      map[string]int64

	buckets    []string
	bucketsErr error

	listCalls []store.ListPageInput
	opened    []string
	closed    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		pages:   make(map[pageKey]*store.Page),
		objects: make(map[string]string),
		openErr:  make(map[string]error),
		declared: make(map[string]int64),
	}
}

func (f *fakeStore) addPage(prefix, delimiter, token string, page *store.Page) {
	f.pages[pageKey{prefix: prefix, delimiter: delimiter, token: token}] = page
}

func (f *fakeStore) ListPage(_ context.Context, in store.ListPageInput) (*store.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.listCalls = append(f.listCalls, in)
	if f.listErr != nil {
		return nil, f.listErr
	}
	page, ok := f.pages[pageKey{prefix: in.Prefix, delimiter: in.Delimiter, token: in.ContinuationToken}]
	if !ok {
		return &store.Page{}, nil
	}
	return page, nil
}

func (f *fakeStore) OpenObject(_ context.Context, bucket, key string) (io.ReadCloser, store.ObjectMeta, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.opened = append(f.opened, key)
	if err := f.openErr[key]; err != nil {
		return nil, store.ObjectMeta{}, err
	}
	body, ok := f.objects[key]
	if !ok {
		return nil, store.ObjectMeta{}, &store.Error{Op: "OpenObject", Driver: "fake", Bucket: bucket, Key: key, StatusCode: 404, Err: errors.New("NoSuchKey")}
	}
	length := int64(len(body))
	if f.unknownLength {
		length = -1
	}
	if n, ok := f.declared[key]; ok {
		length = n
	}
	return &trackedReader{Reader: bytes.NewReader([]byte(body)), store: f}, store.ObjectMeta{ContentLength: length}, nil
}

func (f *fakeStore) ListAllBuckets(context.Context) ([]string, error) {
	return f.buckets, f.bucketsErr
}

// callsFor counts ListPage calls for a prefix and delimiter.
func (f *fakeStore) callsFor(prefix, delimiter string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, call := range f.listCalls {
		if call.Prefix == prefix && call.Delimiter == delimiter {
			n++
		}
	}
	return n
}

type trackedReader struct {
	*bytes.Reader
	store *fakeStore
}

func (r *trackedReader) Close() error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.closed++
	return nil
}

type sinkEntry struct {
	name     string
	size     int64
	modified time.Time
	body     bytes.Buffer
}

// recordingSink keeps every entry in memory. failOn makes writes to the
// named entry fail.
type recordingSink struct {
	entries []*sinkEntry
	failOn  string
	closed  bool
}

func (s *recordingSink) CreateEntry(name string, size int64, modified time.Time) (io.Writer, error) {
	entry := &sinkEntry{name: name, size: size, modified: modified}
	s.entries = append(s.entries, entry)
	if name == s.failOn {
		return failingWriter{}, nil
	}
	return &entry.body, nil
}

func (s *recordingSink) Close() error {
	s.closed = true
	return nil
}

func (s *recordingSink) names() []string {
	names := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		names = append(names, e.name)
	}
	return names
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("broken pipe")
}

func testSource(s store.ObjectStore) store.Source {
	return store.Source{
		Name:          "primary",
		DisplayName:   "Primary",
		DefaultBucket: "default-bucket",
		Store:         s,
	}
}
