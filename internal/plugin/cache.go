package plugin

import (
	"crypto/sha256"
	"encoding/hex"

	lru "github.com/hashicorp/golang-lru/v2"
	lua "github.com/yuin/gopher-lua"

	plua "github.com/dshills/hexpatch/internal/plugin/lua"
)

// DefaultChunkCacheSize is the number of compiled chunks kept by default.
const DefaultChunkCacheSize = 64

// ChunkCache keeps compiled Lua chunks keyed by chunk name and source hash,
// so reloading an unchanged plugin skips parsing. Compiled chunks are
// immutable and may be run in any number of states.
type ChunkCache struct {
	cache   *lru.Cache[string, *lua.FunctionProto]
	metrics *Metrics
}

// NewChunkCache creates a cache holding up to size chunks. Hits and misses
// are counted in metrics, which may be nil.
func NewChunkCache(size int, metrics *Metrics) (*ChunkCache, error) {
	if size <= 0 {
		size = DefaultChunkCacheSize
	}
	cache, err := lru.New[string, *lua.FunctionProto](size)
	if err != nil {
		return nil, err
	}
	return &ChunkCache{cache: cache, metrics: metrics}, nil
}

func chunkKey(name, source string) string {
	sum := sha256.Sum256([]byte(source))
	return name + "@" + hex.EncodeToString(sum[:])
}

// Compile returns the compiled chunk for source, compiling it on a miss.
// Sources that fail to compile are not cached.
func (c *ChunkCache) Compile(name, source string) (*lua.FunctionProto, error) {
	k := chunkKey(name, source)
	if proto, ok := c.cache.Get(k); ok {
		c.metrics.recordCache(true)
		return proto, nil
	}
	c.metrics.recordCache(false)

	proto, err := plua.Compile(name, source)
	if err != nil {
		return nil, err
	}
	c.cache.Add(k, proto)
	return proto, nil
}

// Len returns the number of cached chunks.
func (c *ChunkCache) Len() int {
	return c.cache.Len()
}

// Purge drops every cached chunk.
func (c *ChunkCache) Purge() {
	c.cache.Purge()
}
