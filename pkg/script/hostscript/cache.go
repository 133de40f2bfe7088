package hostscript

import (
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/hexswarm/sim/pkg/script"
)

// Cache compiles scripts at most once per distinct source body, keyed by an
// xxhash of the source text rather than the source itself so the cache
// entry stays a fixed-size uint64 regardless of script length. Every tick
// recompiles whichever bots are bound to a script the cache has not seen
// before; entries are never evicted, and bots whose binding is unchanged
// skip Runtime.Compile entirely.
//
// Safe for concurrent use: cmd/simd's runOneTick compiles bindings from
// inside a single ExecFunc today, but Cache does not assume that stays true.
type Cache struct {
	mu      sync.Mutex
	runtime script.Runtime
	entries map[uint64]script.Program
}

// NewCache wraps runtime with a compiled-program cache.
func NewCache(runtime script.Runtime) *Cache {
	return &Cache{runtime: runtime, entries: make(map[uint64]script.Program)}
}

// Compile returns a cached Program for source if one exists, compiling and
// storing it otherwise.
func (c *Cache) Compile(source string) (script.Program, error) {
	key := xxhash.Sum64String(source)
	c.mu.Lock()
	if p, ok := c.entries[key]; ok {
		c.mu.Unlock()
		return p, nil
	}
	c.mu.Unlock()

	p, err := c.runtime.Compile(source)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = p
	c.mu.Unlock()
	return p, nil
}
