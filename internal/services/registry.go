package services

import (
	"context"
	"fmt"
	"net/http"
	"sort"

	"go.uber.org/zap"

	"github.com/damacus/iron-browser/internal/browser"
	"github.com/damacus/iron-browser/internal/config"
	"github.com/damacus/iron-browser/internal/models"
	"github.com/damacus/iron-browser/internal/store"
)

// StoreFactory builds the ObjectStore for one configured source.
type StoreFactory func(ctx context.Context, cfg config.SourceConfig) (store.ObjectStore, error)

// RealStoreFactory is the production StoreFactory; it picks the adapter by
// the source driver.
func RealStoreFactory(ctx context.Context, cfg config.SourceConfig) (store.ObjectStore, error) {
	switch cfg.Driver {
	case config.DriverMinio, "":
		core, err := NewMinioClient(cfg)
		if err != nil {
			return nil, err
		}
		return NewMinioStore(core), nil
	case config.DriverS3:
		client, err := NewS3Client(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return NewS3Store(client), nil
	}
	return nil, fmt.Errorf("unsupported driver %q", cfg.Driver)
}

// Registry holds one Browser per configured source.
type Registry struct {
	browsers    map[string]*browser.Browser
	names       []string
	defaultName string
	logger      *zap.Logger
}

// NewRegistry builds every configured source with factory.
func NewRegistry(ctx context.Context, cfg *config.Config, factory StoreFactory, logger *zap.Logger) (*Registry, error) {
	sources := make([]store.Source, 0, len(cfg.Storage.Sources))
	for _, name := range cfg.SourceNames() {
		srcCfg := cfg.Storage.Sources[name]
		objectStore, err := factory(ctx, srcCfg)
		if err != nil {
			return nil, fmt.Errorf("source %q: %w", name, err)
		}
		displayName := srcCfg.DisplayName
		if displayName == "" {
			displayName = config.DisplayName(name)
		}
		sources = append(sources, store.Source{
			Name:          name,
			DisplayName:   displayName,
			DefaultBucket: srcCfg.DefaultBucket,
			Store:         objectStore,
		})
	}

	opts := browser.Options{PageSize: cfg.Storage.PageSize, SearchPageLimit: cfg.Storage.SearchPageLimit}
	return NewRegistryFromSources(sources, cfg.Storage.DefaultSource, opts, logger)
}

// NewRegistryFromSources builds a registry over already constructed
// sources. An unknown defaultName selects the first source by name.
func NewRegistryFromSources(sources []store.Source, defaultName string, opts browser.Options, logger *zap.Logger) (*Registry, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("no storage sources configured")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &Registry{
		browsers: make(map[string]*browser.Browser, len(sources)),
		logger:   logger,
	}
	for _, src := range sources {
		if _, dup := r.browsers[src.Name]; dup {
			return nil, fmt.Errorf("duplicate source %q", src.Name)
		}
		r.browsers[src.Name] = browser.New(src, opts, logger)
		r.names = append(r.names, src.Name)
	}
	sort.Strings(r.names)

	r.defaultName = defaultName
	if _, ok := r.browsers[defaultName]; !ok {
		r.defaultName = r.names[0]
	}
	return r, nil
}

// Sources returns the public view of every source, sorted by name.
func (r *Registry) Sources() []models.SourceInfo {
	infos := make([]models.SourceInfo, 0, len(r.names))
	for _, name := range r.names {
		src := r.browsers[name].Source()
		infos = append(infos, models.SourceInfo{
			Name:          src.Name,
			DisplayName:   src.DisplayName,
			DefaultBucket: src.DefaultBucket,
		})
	}
	return infos
}

// Default returns the Browser of the default source.
func (r *Registry) Default() *browser.Browser {
	return r.browsers[r.defaultName]
}

// Resolve returns the Browser for name. Blank or unknown names select the
// default source.
func (r *Registry) Resolve(name string) *browser.Browser {
	if b, ok := r.browsers[name]; ok {
		return b
	}
	if name != "" {
		r.logger.Debug("Unknown source requested, using default",
			zap.String("requested", name),
			zap.String("default", r.defaultName),
		)
	}
	return r.Default()
}

// ListBuckets lists the buckets visible to a source. When the credentials
// may not enumerate buckets (401/403) the source's default bucket is
// returned instead.
func (r *Registry) ListBuckets(ctx context.Context, name string) ([]string, error) {
	src := r.Resolve(name).Source()

	buckets, err := src.Store.ListAllBuckets(ctx)
	if err != nil {
		switch store.StatusCode(err) {
		case http.StatusUnauthorized, http.StatusForbidden:
			r.logger.Info("Bucket enumeration denied, falling back to default bucket",
				zap.String("source", src.Name),
				zap.String("bucket", src.DefaultBucket),
			)
			if src.DefaultBucket == "" {
				return []string{}, nil
			}
			return []string{src.DefaultBucket}, nil
		}
		return nil, err
	}
	sort.Strings(buckets)
	return buckets, nil
}
