package main

import (
	"context"
	"io"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/damacus/iron-browser/internal/browser"
	"github.com/damacus/iron-browser/internal/config"
	"github.com/damacus/iron-browser/internal/services"
	"github.com/damacus/iron-browser/internal/store"
)

// MockObjectStore implements store.ObjectStore for testing
type MockObjectStore struct {
	mock.Mock
}

func (m *MockObjectStore) ListPage(ctx context.Context, in store.ListPageInput) (*store.Page, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Page), args.Error(1)
}

func (m *MockObjectStore) OpenObject(ctx context.Context, bucket, key string) (io.ReadCloser, store.ObjectMeta, error) {
	args := m.Called(ctx, bucket, key)
	reader, _ := args.Get(0).(io.ReadCloser)
	return reader, args.Get(1).(store.ObjectMeta), args.Error(2)
}

func (m *MockObjectStore) ListAllBuckets(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// mockFactory hands out the same store for every configured source.
func mockFactory(s store.ObjectStore) services.StoreFactory {
	return func(context.Context, config.SourceConfig) (store.ObjectStore, error) {
		return s, nil
	}
}

// newTestServer builds the full server over a single mocked source.
func newTestServer(t *testing.T, s *MockObjectStore, logger *zap.Logger) *echo.Echo {
	t.Helper()
	if logger == nil {
		logger = zap.NewNop()
	}

	registry, err := services.NewRegistryFromSources([]store.Source{
		{Name: "primary", DisplayName: "Primary", DefaultBucket: "photos", Store: s},
	}, "primary", browser.Options{PageSize: 200, SearchPageLimit: 10}, logger)
	require.NoError(t, err)

	return newServer(registry, logger)
}
