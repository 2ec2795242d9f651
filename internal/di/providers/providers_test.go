package providers_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/samber/do/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/pagetrail-server/internal/config"
	"github.com/listenupapp/pagetrail-server/internal/di/providers"
	"github.com/listenupapp/pagetrail-server/internal/logger"
	"github.com/listenupapp/pagetrail-server/internal/search"
	"github.com/listenupapp/pagetrail-server/internal/service"
	"github.com/listenupapp/pagetrail-server/internal/store"
)

const seedCatalog = `[
	{"title": "Dune", "author": "Frank Herbert", "genre": "sci-fi", "pagesNumber": 412},
	{"title": "The Hobbit", "author": "J.R.R. Tolkien", "genre": "Fantasy", "totalPage": 310}
]`

func testConfig(t *testing.T, driver string) *config.Config {
	t.Helper()
	return &config.Config{
		App:       config.AppConfig{Environment: "development"},
		Logger:    config.LoggerConfig{Level: "error"},
		Store:     config.StoreConfig{Driver: driver, DataPath: filepath.Join(t.TempDir(), "data")},
		RateLimit: config.RateLimitConfig{RequestsPerSecond: 20, Burst: 40},
	}
}

func newInjector(t *testing.T, cfg *config.Config) *do.RootScope {
	t.Helper()
	injector := do.New()
	do.ProvideValue(injector, cfg)
	do.ProvideValue(injector, logger.Discard())
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideSearchIndex)
	do.Provide(injector, providers.ProvideReaderLocks)
	do.Provide(injector, providers.ProvideCatalogService)
	do.Provide(injector, providers.ProvideReaderService)
	do.Provide(injector, providers.ProvideProgressService)
	do.Provide(injector, providers.ProvideCatalogWatcher)
	do.Provide(injector, providers.ProvideRateLimiter)
	t.Cleanup(func() { injector.Shutdown() })
	return injector
}

func TestOpenStore_Drivers(t *testing.T) {
	for _, driver := range []string{config.DriverSQLite, config.DriverBadger} {
		t.Run(driver, func(t *testing.T) {
			cfg := testConfig(t, driver)
			st, err := providers.OpenStore(cfg, logger.Discard())
			require.NoError(t, err)
			defer st.Close()

			require.NoError(t, st.Ping(context.Background()))
			_, err = os.Stat(cfg.Store.DataPath)
			assert.NoError(t, err)
		})
	}
}

func TestOpenStore_UnknownDriver(t *testing.T) {
	cfg := testConfig(t, "postgres")
	_, err := providers.OpenStore(cfg, logger.Discard())
	assert.ErrorContains(t, err, "unknown store driver")
}

func TestProvideCatalogWatcher_ImportsSeedFile(t *testing.T) {
	cfg := testConfig(t, config.DriverBadger)
	cfg.Catalog.SeedFile = filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(cfg.Catalog.SeedFile, []byte(seedCatalog), 0o600))

	injector := newInjector(t, cfg)

	handle, err := do.Invoke[*providers.CatalogWatcherHandle](injector)
	require.NoError(t, err)
	assert.Nil(t, handle.Watcher, "watch is off")

	storeHandle := do.MustInvoke[*providers.StoreHandle](injector)
	count, err := storeHandle.CountBooks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	catalogService := do.MustInvoke[*service.CatalogService](injector)
	result, err := catalogService.SearchBooks(context.Background(), search.Params{Query: "dune"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, result.Total)
}

func TestProvideCatalogWatcher_MissingSeedFile(t *testing.T) {
	cfg := testConfig(t, config.DriverSQLite)
	cfg.Catalog.SeedFile = filepath.Join(t.TempDir(), "absent.json")

	injector := newInjector(t, cfg)

	_, err := do.Invoke[*providers.CatalogWatcherHandle](injector)
	assert.Error(t, err)
}

func TestProvideCatalogWatcher_WaitsForMissingWatchedFile(t *testing.T) {
	cfg := testConfig(t, config.DriverSQLite)
	cfg.Catalog.SeedFile = filepath.Join(t.TempDir(), "later.json")
	cfg.Catalog.Watch = true

	injector := newInjector(t, cfg)

	handle, err := do.Invoke[*providers.CatalogWatcherHandle](injector)
	require.NoError(t, err)
	assert.NotNil(t, handle.Watcher)
	require.NoError(t, handle.Shutdown())
}

func TestServices_ShareReaderStore(t *testing.T) {
	injector := newInjector(t, testConfig(t, config.DriverSQLite))
	ctx := context.Background()

	readers := do.MustInvoke[*service.ReaderService](injector)
	reader, err := readers.CreateReader(ctx, service.CreateReaderRequest{DisplayName: "Ada"})
	require.NoError(t, err)

	storeHandle := do.MustInvoke[*providers.StoreHandle](injector)
	page, err := storeHandle.ListReaders(ctx, store.PaginationParams{Limit: 10})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, reader.ID, page.Items[0].ID)
}
