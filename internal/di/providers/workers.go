package providers

import (
	"context"
	"errors"
	"os"

	"github.com/samber/do/v2"

	"github.com/listenupapp/pagetrail-server/internal/catalog"
	"github.com/listenupapp/pagetrail-server/internal/config"
	"github.com/listenupapp/pagetrail-server/internal/logger"
	"github.com/listenupapp/pagetrail-server/internal/service"
)

// CatalogWatcherHandle owns the seed file watcher goroutine.
type CatalogWatcherHandle struct {
	*catalog.Watcher
	cancel context.CancelFunc
	done   chan struct{}
}

// Shutdown implements do.Shutdownable.
func (h *CatalogWatcherHandle) Shutdown() error {
	if h.cancel == nil {
		return nil
	}
	h.cancel()
	<-h.done
	return nil
}

// ProvideCatalogWatcher imports the configured seed catalog and, when enabled,
// keeps watching it for changes. Without a seed file it returns an idle handle.
func ProvideCatalogWatcher(i do.Injector) (*CatalogWatcherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	catalogService := do.MustInvoke[*service.CatalogService](i)

	path := cfg.Catalog.SeedFile
	if path == "" {
		return &CatalogWatcherHandle{}, nil
	}

	report, err := catalogService.ImportCatalogFile(context.Background(), path)
	switch {
	case errors.Is(err, os.ErrNotExist) && cfg.Catalog.Watch:
		log.Warn("Seed catalog not found yet, waiting for it", "path", path)
	case err != nil:
		return nil, err
	default:
		log.Info("Seed catalog imported",
			"path", path,
			"created", report.Created,
			"updated", report.Updated,
			"skipped", len(report.Skipped),
		)
	}

	if !cfg.Catalog.Watch {
		return &CatalogWatcherHandle{}, nil
	}

	w := catalog.NewWatcher(path, catalogService.ImportCatalogFile, log.Logger, catalog.DefaultSettleDelay)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)
		if err := w.Run(ctx); err != nil {
			log.Error("Catalog watcher stopped", "path", path, "error", err)
		}
	}()

	log.Info("Catalog watcher started", "path", path)

	return &CatalogWatcherHandle{Watcher: w, cancel: cancel, done: done}, nil
}
