package cache

import (
	"encoding/json"
	"fmt"

	"github.com/vjranagit/apmfetch/pkg/types"
)

// Cache wraps a Store with the table codec: tables are JSON-encoded and
// zstd-compressed before they hit the store.
type Cache struct {
	store      Store
	compressor *Compressor
}

// New creates a cache over the given store. Level is the zstd compression
// level (1-4, see NewCompressor).
func New(store Store, level int) (*Cache, error) {
	compressor, err := NewCompressor(level)
	if err != nil {
		return nil, err
	}
	return &Cache{store: store, compressor: compressor}, nil
}

// GetTable retrieves and decodes the table cached under fingerprint fp.
func (c *Cache) GetTable(fp string) (types.Table, bool, error) {
	data, ok, err := c.store.Get(fp)
	if err != nil || !ok {
		return nil, false, err
	}

	raw, err := c.compressor.Decompress(data)
	if err != nil {
		return nil, false, err
	}

	var table types.Table
	if err := json.Unmarshal(raw, &table); err != nil {
		return nil, false, fmt.Errorf("failed to decode cache entry: %w", err)
	}
	return table, true, nil
}

// PutTable encodes and stores a table under fingerprint fp.
func (c *Cache) PutTable(fp string, table types.Table) error {
	raw, err := json.Marshal(table)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}
	return c.store.Put(fp, c.compressor.Compress(raw))
}

// Close releases the store and compressor resources.
func (c *Cache) Close() error {
	c.compressor.Close()
	return c.store.Close()
}
