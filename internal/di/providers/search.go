package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/listenupapp/pagetrail-server/internal/config"
	"github.com/listenupapp/pagetrail-server/internal/logger"
	"github.com/listenupapp/pagetrail-server/internal/search"
	"github.com/listenupapp/pagetrail-server/internal/service"
)

// SearchIndexHandle wraps the search index with shutdown capability.
type SearchIndexHandle struct {
	*search.BookIndex
	closed bool
}

// Shutdown implements do.Shutdownable. Safe to call more than once.
func (h *SearchIndexHandle) Shutdown() error {
	if h.closed {
		return nil
	}
	h.closed = true
	return h.Close()
}

// ProvideSearchIndex provides the Bleve book index.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	index, err := search.NewBookIndex(search.Options{
		DataPath: cfg.Store.DataPath,
		Logger:   log.Logger,
	})
	if err != nil {
		return nil, err
	}

	docCount, _ := index.DocumentCount()
	log.Info("Search index initialized", "documents", docCount)

	return &SearchIndexHandle{BookIndex: index}, nil
}

// TriggerSearchReindexIfNeeded rebuilds the index in the background when the
// store holds books the index is missing. Call after all services are wired.
func TriggerSearchReindexIfNeeded(i do.Injector) {
	catalogService := do.MustInvoke[*service.CatalogService](i)
	log := do.MustInvoke[*logger.Logger](i)

	go func() {
		count, err := catalogService.ReindexAll(context.Background())
		if err != nil {
			log.Error("Initial search reindex failed", "error", err)
			return
		}
		if count > 0 {
			log.Info("Initial search reindex completed", "documents", count)
		}
	}()
}
