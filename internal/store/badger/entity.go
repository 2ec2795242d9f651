package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/listenupapp/pagetrail-server/internal/store"
)

// Entity stores JSON-encoded values of T under prefix+id, with optional
// unique secondary indexes kept under a separate "idx:" keyspace so prefix
// scans over entities never see index keys.
type Entity[T any] struct {
	db       *badger.DB
	prefix   string
	notFound error
	idOf     func(*T) string
	indexes  []index[T]
}

type index[T any] struct {
	name   string
	keyGen func(*T) string
}

func newEntity[T any](db *badger.DB, prefix string, notFound error, idOf func(*T) string) *Entity[T] {
	return &Entity[T]{db: db, prefix: prefix, notFound: notFound, idOf: idOf}
}

// withIndex adds a unique secondary index. keyGen returning "" skips indexing.
func (e *Entity[T]) withIndex(name string, keyGen func(*T) string) *Entity[T] {
	e.indexes = append(e.indexes, index[T]{name: name, keyGen: keyGen})
	return e
}

func (e *Entity[T]) key(id string) []byte {
	return []byte(e.prefix + id)
}

func (e *Entity[T]) indexKey(name, value string) []byte {
	return []byte("idx:" + e.prefix + name + ":" + value)
}

// Create stores a new entity. Returns store.ErrAlreadyExists on id or index conflict.
func (e *Entity[T]) Create(ctx context.Context, entity *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("marshal entity: %w", err)
	}
	id := e.idOf(entity)

	return e.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(e.key(id)); err == nil {
			return store.ErrAlreadyExists
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check existing key: %w", err)
		}

		if err := e.checkIndexes(txn, entity, nil); err != nil {
			return err
		}
		if err := txn.Set(e.key(id), data); err != nil {
			return fmt.Errorf("set key: %w", err)
		}
		return e.setIndexes(txn, id, entity)
	})
}

// Get loads an entity by id. Returns the entity's not-found error when absent.
func (e *Entity[T]) Get(ctx context.Context, id string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var entity *T
	err := e.db.View(func(txn *badger.Txn) error {
		var err error
		entity, err = e.get(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entity, nil
}

// GetMany loads every id present in one read transaction. Absent ids are skipped.
func (e *Entity[T]) GetMany(ctx context.Context, ids []string) (map[string]*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make(map[string]*T, len(ids))
	err := e.db.View(func(txn *badger.Txn) error {
		for _, id := range ids {
			if _, seen := out[id]; seen {
				continue
			}
			entity, err := e.get(txn, id)
			if errors.Is(err, e.notFound) {
				continue
			}
			if err != nil {
				return err
			}
			out[id] = entity
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetByIndex loads the entity whose index value matches.
func (e *Entity[T]) GetByIndex(ctx context.Context, name, value string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var entity *T
	err := e.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(e.indexKey(name, value))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return e.notFound
		}
		if err != nil {
			return err
		}
		id, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		entity, err = e.get(txn, string(id))
		return err
	})
	if err != nil {
		return nil, err
	}
	return entity, nil
}

// Update replaces an existing entity and re-points its indexes.
func (e *Entity[T]) Update(ctx context.Context, entity *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("marshal entity: %w", err)
	}
	id := e.idOf(entity)

	return e.db.Update(func(txn *badger.Txn) error {
		old, err := e.get(txn, id)
		if err != nil {
			return err
		}
		if err := e.checkIndexes(txn, entity, old); err != nil {
			return err
		}
		if err := e.deleteIndexes(txn, old); err != nil {
			return err
		}
		if err := txn.Set(e.key(id), data); err != nil {
			return fmt.Errorf("set key: %w", err)
		}
		return e.setIndexes(txn, id, entity)
	})
}

// Delete removes an entity and its index keys.
func (e *Entity[T]) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return e.db.Update(func(txn *badger.Txn) error {
		old, err := e.get(txn, id)
		if err != nil {
			return err
		}
		if err := e.deleteIndexes(txn, old); err != nil {
			return err
		}
		return txn.Delete(e.key(id))
	})
}

// Page returns up to limit+1 entities with ids greater than after, in key order.
func (e *Entity[T]) Page(ctx context.Context, after string, limit int) ([]*T, error) {
	var out []*T
	err := e.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(e.prefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(e.key(after)); it.ValidForPrefix(opts.Prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			if string(it.Item().Key()) == e.prefix+after && after != "" {
				continue
			}

			var entity T
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &entity)
			}); err != nil {
				return fmt.Errorf("unmarshal entity: %w", err)
			}
			out = append(out, &entity)
			if len(out) > limit {
				break
			}
		}
		return nil
	})
	return out, err
}

// Count returns the number of stored entities.
func (e *Entity[T]) Count(ctx context.Context) (int, error) {
	n := 0
	err := e.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(e.prefix)
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			n++
		}
		return nil
	})
	return n, err
}

func (e *Entity[T]) get(txn *badger.Txn, id string) (*T, error) {
	item, err := txn.Get(e.key(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, e.notFound
	}
	if err != nil {
		return nil, fmt.Errorf("get key: %w", err)
	}

	var entity T
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &entity)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal entity: %w", err)
	}
	return &entity, nil
}

// checkIndexes fails if a new index value is owned by another entity.
func (e *Entity[T]) checkIndexes(txn *badger.Txn, entity, old *T) error {
	for _, idx := range e.indexes {
		value := idx.keyGen(entity)
		if value == "" || (old != nil && idx.keyGen(old) == value) {
			continue
		}
		_, err := txn.Get(e.indexKey(idx.name, value))
		if err == nil {
			return fmt.Errorf("index %s conflict: %w", idx.name, store.ErrAlreadyExists)
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check index key: %w", err)
		}
	}
	return nil
}

func (e *Entity[T]) setIndexes(txn *badger.Txn, id string, entity *T) error {
	for _, idx := range e.indexes {
		if value := idx.keyGen(entity); value != "" {
			if err := txn.Set(e.indexKey(idx.name, value), []byte(id)); err != nil {
				return fmt.Errorf("set index key: %w", err)
			}
		}
	}
	return nil
}

func (e *Entity[T]) deleteIndexes(txn *badger.Txn, entity *T) error {
	for _, idx := range e.indexes {
		if value := idx.keyGen(entity); value != "" {
			if err := txn.Delete(e.indexKey(idx.name, value)); err != nil {
				return fmt.Errorf("delete index key: %w", err)
			}
		}
	}
	return nil
}
