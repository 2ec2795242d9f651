package providers

import (
	"github.com/samber/do/v2"

	"github.com/listenupapp/pagetrail-server/internal/config"
	"github.com/listenupapp/pagetrail-server/internal/logger"
	"github.com/listenupapp/pagetrail-server/internal/ratelimit"
	"github.com/listenupapp/pagetrail-server/internal/service"
)

// ProvideReaderLocks provides the per-reader lock table shared by every
// service that mutates a reader.
func ProvideReaderLocks(i do.Injector) (*service.ReaderLocks, error) {
	return service.NewReaderLocks(), nil
}

// ProvideCatalogService provides the book catalog service.
func ProvideCatalogService(i do.Injector) (*service.CatalogService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewCatalogService(storeHandle.Store, indexHandle.BookIndex, log.Logger), nil
}

// ProvideReaderService provides the reader service.
func ProvideReaderService(i do.Injector) (*service.ReaderService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	catalogService := do.MustInvoke[*service.CatalogService](i)
	locks := do.MustInvoke[*service.ReaderLocks](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewReaderService(storeHandle.Store, catalogService, locks, log.Logger), nil
}

// ProvideProgressService provides the progress tracking service.
func ProvideProgressService(i do.Injector) (*service.ProgressService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	locks := do.MustInvoke[*service.ReaderLocks](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewProgressService(storeHandle.Store, storeHandle.Store, locks, log.Logger), nil
}

// RateLimiterHandle wraps the keyed limiter so its sweeper stops on shutdown.
type RateLimiterHandle struct {
	*ratelimit.KeyedRateLimiter
}

// Shutdown implements do.Shutdownable.
func (h *RateLimiterHandle) Shutdown() error {
	h.Stop()
	return nil
}

// ProvideRateLimiter provides the per-client API rate limiter.
func ProvideRateLimiter(i do.Injector) (*RateLimiterHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	limiter := ratelimit.New(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	log.Info("Rate limiter enabled",
		"requests_per_second", cfg.RateLimit.RequestsPerSecond,
		"burst", cfg.RateLimit.Burst,
	)

	return &RateLimiterHandle{KeyedRateLimiter: limiter}, nil
}
