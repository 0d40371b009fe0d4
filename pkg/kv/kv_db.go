package kv

import (
	"context"
	"errors"
	"fmt"

	"lintang/cityrouter/pkg/datastructure"

	"github.com/dgraph-io/badger/v4"
)

var (
	ErrConditionNotFound = errors.New("condition field not found")
)

// ConditionStore caches generated condition fields keyed by graph fingerprint and seed.
type ConditionStore struct {
	db *badger.DB
}

func NewConditionStore(db *badger.DB) *ConditionStore {
	return &ConditionStore{db}
}

// OpenInMemory opens a badger database that never touches disk.
func OpenInMemory() (*badger.DB, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open in-memory badger: %w", err)
	}
	return db, nil
}

func conditionKey(fingerprint uint64, seed int64) []byte {
	return []byte(fmt.Sprintf("cond:%016x:%d", fingerprint, seed))
}

func (k *ConditionStore) Put(ctx context.Context, fingerprint uint64, seed int64, field *datastructure.ConditionField) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	bb, err := encode(kvConditionField{
		Nodes: toKVSamples(field.NodeSamples()),
		Edges: toKVSamples(field.EdgeSamples()),
	})
	if err != nil {
		return fmt.Errorf("encode condition field: %w", err)
	}
	bbCompressed, err := compress(bb)
	if err != nil {
		return fmt.Errorf("compress condition field: %w", err)
	}

	return k.db.Update(func(txn *badger.Txn) error {
		return txn.Set(conditionKey(fingerprint, seed), bbCompressed)
	})
}

// Get returns ErrConditionNotFound when nothing was stored for the pair.
func (k *ConditionStore) Get(ctx context.Context, fingerprint uint64, seed int64) (*datastructure.ConditionField, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	var bbCompressed []byte
	err := k.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(conditionKey(fingerprint, seed))
		if err != nil {
			return err
		}
		bbCompressed, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrConditionNotFound
	}
	if err != nil {
		return nil, err
	}

	bb, err := decompress(bbCompressed)
	if err != nil {
		return nil, fmt.Errorf("decompress condition field: %w", err)
	}
	stored, err := decode(bb)
	if err != nil {
		return nil, fmt.Errorf("decode condition field: %w", err)
	}
	return datastructure.NewConditionField(fromKVSamples(stored.Nodes), fromKVSamples(stored.Edges))
}

// Delete drops every cached field of the given graph.
func (k *ConditionStore) Delete(fingerprint uint64) error {
	return k.db.DropPrefix([]byte(fmt.Sprintf("cond:%016x:", fingerprint)))
}

func (k *ConditionStore) Close() error {
	return k.db.Close()
}
