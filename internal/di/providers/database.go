package providers

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/listenupapp/pagetrail-server/internal/config"
	"github.com/listenupapp/pagetrail-server/internal/logger"
	"github.com/listenupapp/pagetrail-server/internal/store"
	badgerstore "github.com/listenupapp/pagetrail-server/internal/store/badger"
	"github.com/listenupapp/pagetrail-server/internal/store/sqlite"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	store.Store
	closed bool
}

// Shutdown implements do.Shutdownable. Safe to call more than once.
func (h *StoreHandle) Shutdown() error {
	if h.closed {
		return nil
	}
	h.closed = true
	return h.Close()
}

// ProvideStore provides the configured persistence backend.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	st, err := OpenStore(cfg, log)
	if err != nil {
		return nil, err
	}
	return &StoreHandle{Store: st}, nil
}

// OpenStore opens the backend selected by cfg.Store.Driver under the data path.
func OpenStore(cfg *config.Config, log *logger.Logger) (store.Store, error) {
	if err := os.MkdirAll(cfg.Store.DataPath, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	switch cfg.Store.Driver {
	case config.DriverBadger:
		dir := filepath.Join(cfg.Store.DataPath, "badger")
		st, err := badgerstore.Open(dir, log.Logger)
		if err != nil {
			return nil, err
		}
		log.Info("Database initialized", "driver", cfg.Store.Driver, "path", dir)
		return st, nil
	case config.DriverSQLite, "":
		path := filepath.Join(cfg.Store.DataPath, "pagetrail.db")
		st, err := sqlite.Open(path, log.Logger)
		if err != nil {
			return nil, err
		}
		log.Info("Database initialized", "driver", config.DriverSQLite, "path", path)
		return st, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
