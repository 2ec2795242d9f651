// Package di provides dependency injection configuration for the PageTrail server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/listenupapp/pagetrail-server/internal/config"
	"github.com/listenupapp/pagetrail-server/internal/di/providers"
	"github.com/listenupapp/pagetrail-server/internal/logger"
	"github.com/listenupapp/pagetrail-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideSlogLogger)

	// Persistence and search
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideSearchIndex)

	// Business services
	do.Provide(injector, providers.ProvideReaderLocks)
	do.Provide(injector, providers.ProvideCatalogService)
	do.Provide(injector, providers.ProvideReaderService)
	do.Provide(injector, providers.ProvideProgressService)

	// Workers
	do.Provide(injector, providers.ProvideCatalogWatcher)

	// Server
	do.Provide(injector, providers.ProvideRateLimiter)
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*logger.Logger](injector)
	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.SearchIndexHandle](injector); err != nil {
		return err
	}

	// Business services
	_ = do.MustInvoke[*service.CatalogService](injector)
	_ = do.MustInvoke[*service.ReaderService](injector)
	_ = do.MustInvoke[*service.ProgressService](injector)

	// Seed import runs before the index check so fresh books are counted.
	if _, err := do.Invoke[*providers.CatalogWatcherHandle](injector); err != nil {
		return err
	}
	providers.TriggerSearchReindexIfNeeded(injector)

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
