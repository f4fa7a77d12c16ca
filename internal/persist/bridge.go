// Package persist serialises the list collection to a key-value store.
package persist

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"pkt.systems/ahalaj/internal/kvstore"
	"pkt.systems/ahalaj/schema"
	"pkt.systems/pslog"
)

// CorruptSuffix is appended to the store key when an unreadable blob is
// preserved before the collection is reset.
const CorruptSuffix = ".corrupt"

// Bridge loads and saves the whole collection under one key.
type Bridge struct {
	store kvstore.Store
	key   string
	log   pslog.Logger
}

// NewBridge constructs a bridge over store using key.
func NewBridge(store kvstore.Store, key string, logger pslog.Logger) (*Bridge, error) {
	if store == nil {
		return nil, errors.New("store is required")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		key = schema.DefaultStoreKey
	}
	if logger != nil {
		logger = logger.With("key", key)
	}
	return &Bridge{store: store, key: key, log: logger}, nil
}

// Key returns the store key.
func (b *Bridge) Key() string {
	return b.key
}

// Load reads the collection. A missing key reports found=false. A value that
// cannot be decoded is copied to the corrupt key and reported as a
// *schema.StorageError with op read.
func (b *Bridge) Load(ctx context.Context) (schema.Collection, bool, error) {
	raw, ok, err := b.store.Get(ctx, b.key)
	if err != nil {
		if b.log != nil {
			b.log.Warn("state load failed", "err", err)
		}
		return nil, false, &schema.StorageError{Op: schema.StorageOpRead, Key: b.key, Err: err}
	}
	if !ok {
		if b.log != nil {
			b.log.Debug("state load miss")
		}
		return nil, false, nil
	}
	collection, err := Decode(raw)
	if err != nil {
		if b.log != nil {
			b.log.Warn("state load failed", "err", err, "bytes", len(raw))
		}
		b.backup(ctx, raw)
		return nil, false, &schema.StorageError{Op: schema.StorageOpRead, Key: b.key, Err: err}
	}
	if b.log != nil {
		b.log.Debug("state load ok", "tabs", len(collection))
	}
	return collection, true, nil
}

// Save writes the whole collection. Failures are reported as a
// *schema.StorageError with op write and are not retried.
func (b *Bridge) Save(ctx context.Context, collection schema.Collection) error {
	data, err := Encode(collection)
	if err != nil {
		return &schema.StorageError{Op: schema.StorageOpWrite, Key: b.key, Err: err}
	}
	if err := b.store.Put(ctx, b.key, data); err != nil {
		if b.log != nil {
			b.log.Warn("state save failed", "err", err)
		}
		return &schema.StorageError{Op: schema.StorageOpWrite, Key: b.key, Err: err}
	}
	if b.log != nil {
		b.log.Trace("state save ok", "tabs", len(collection), "bytes", len(data))
	}
	return nil
}

// OnCollectionChanged writes every persistable snapshot through to the store.
func (b *Bridge) OnCollectionChanged(ctx context.Context, event schema.ChangeEvent) error {
	if !event.Persist {
		return nil
	}
	return b.Save(ctx, event.Collection)
}

func (b *Bridge) backup(ctx context.Context, raw []byte) {
	key := b.key + CorruptSuffix
	if err := b.store.Put(ctx, key, raw); err != nil {
		if b.log != nil {
			b.log.Warn("state backup failed", "backup_key", key, "err", err)
		}
		return
	}
	if b.log != nil {
		b.log.Info("state backup written", "backup_key", key)
	}
}

// Encode serialises a collection in the stored wire format.
func Encode(collection schema.Collection) ([]byte, error) {
	out := make(schema.Collection, len(collection))
	for i, tab := range collection {
		out[i] = tab.Clone()
		if out[i].Items == nil {
			out[i].Items = []schema.Item{}
		}
	}
	return json.Marshal(out)
}

// Decode parses a stored blob. Unknown fields are ignored; missing results
// decode as empty and pick counts below one are reset to the default.
func Decode(raw []byte) (schema.Collection, error) {
	var collection schema.Collection
	if err := json.Unmarshal(raw, &collection); err != nil {
		return nil, err
	}
	if err := schema.ValidateCollection(collection); err != nil {
		return nil, err
	}
	for i := range collection {
		collection[i] = collection[i].Clone()
		if collection[i].Items == nil {
			collection[i].Items = []schema.Item{}
		}
		if collection[i].TargetPickCount < 1 {
			collection[i].TargetPickCount = schema.DefaultPickCount
		}
	}
	return collection, nil
}
