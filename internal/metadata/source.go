package metadata

import (
	"context"
	"fmt"
	"os"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"collectibleAMM/internal/ammerr"
	"collectibleAMM/internal/engine"
	"collectibleAMM/internal/model"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// StaticSource serves metadata from a fixed table.
type StaticSource struct {
	mu      sync.RWMutex
	entries map[model.Pubkey]model.AssetMetadata
}

func NewStaticSource(entries ...model.AssetMetadata) *StaticSource {
	s := &StaticSource{entries: make(map[model.Pubkey]model.AssetMetadata, len(entries))}
	for _, e := range entries {
		s.entries[e.Mint] = e
	}
	return s
}

// LoadStaticSource reads a JSON array of metadata records.
func LoadStaticSource(path string) (*StaticSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read metadata file: %w", err)
	}
	var entries []model.AssetMetadata
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse metadata file: %w", err)
	}
	return NewStaticSource(entries...), nil
}

// Put adds or replaces the metadata of one asset.
func (s *StaticSource) Put(meta model.AssetMetadata) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[meta.Mint] = meta
}

func (s *StaticSource) Resolve(_ context.Context, asset model.Asset) (model.AssetMetadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	meta, ok := s.entries[asset.Mint]
	if !ok {
		return model.AssetMetadata{}, fmt.Errorf("no metadata for %s: %w", asset.Mint, ammerr.ErrInvalidAsset)
	}
	return meta, nil
}

// CachedSource memoizes another source in a bounded LRU.
type CachedSource struct {
	next   engine.MetadataSource
	cache  *lru.Cache[model.Pubkey, model.AssetMetadata]
	logger *zap.Logger
}

func NewCachedSource(next engine.MetadataSource, size int, logger *zap.Logger) (*CachedSource, error) {
	if next == nil {
		return nil, fmt.Errorf("metadata source is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	cache, err := lru.New[model.Pubkey, model.AssetMetadata](size)
	if err != nil {
		return nil, fmt.Errorf("create metadata cache: %w", err)
	}
	return &CachedSource{next: next, cache: cache, logger: logger}, nil
}

func (c *CachedSource) Resolve(ctx context.Context, asset model.Asset) (model.AssetMetadata, error) {
	if meta, ok := c.cache.Get(asset.Mint); ok {
		return meta, nil
	}
	meta, err := c.next.Resolve(ctx, asset)
	if err != nil {
		return model.AssetMetadata{}, err
	}
	if evicted := c.cache.Add(asset.Mint, meta); evicted {
		c.logger.Debug("metadata cache eviction", zap.Int("size", c.cache.Len()))
	}
	return meta, nil
}

// Invalidate drops a cached entry so the next resolve reloads it.
func (c *CachedSource) Invalidate(mint model.Pubkey) {
	c.cache.Remove(mint)
}
