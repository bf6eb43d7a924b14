package github

import (
	"sync"

	"github.com/jellydator/ttlcache/v3"

	"github.com/custodia-labs/gitsleuth-cli/internal/core/domain"
	"github.com/custodia-labs/gitsleuth-cli/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.ClientFactory = (*Factory)(nil)

// Factory builds one Client per credential and reuses it for the lifetime
// of the process. All clients share a single content cache so that a file
// found by several queries is downloaded once.
type Factory struct {
	mu      sync.Mutex
	cfg     Config
	clients map[string]*Client
	cache   *ttlcache.Cache[string, string]
}

// NewFactory creates a factory with the given client configuration.
func NewFactory(cfg Config) *Factory {
	cfg = cfg.withDefaults()

	var cache *ttlcache.Cache[string, string]
	if cfg.CacheSize > 0 {
		cache = ttlcache.New[string, string](
			ttlcache.WithTTL[string, string](cfg.CacheTTL),
			ttlcache.WithCapacity[string, string](cfg.CacheSize),
			ttlcache.WithDisableTouchOnHit[string, string](),
		)
	}

	return &Factory{
		cfg:     cfg,
		clients: make(map[string]*Client),
		cache:   cache,
	}
}

// ForCredential returns the client for cred, creating it on first use.
func (f *Factory) ForCredential(cred domain.Credential) (driven.CodeSearchClient, error) {
	return f.Client(cred)
}

// Client is ForCredential with the concrete return type.
func (f *Factory) Client(cred domain.Credential) (*Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if c, ok := f.clients[cred.Token]; ok {
		return c, nil
	}

	c, err := NewClient(cred, f.cfg, f.cache)
	if err != nil {
		return nil, err
	}
	f.clients[cred.Token] = c
	return c, nil
}

// CachedFiles returns the number of file contents currently cached.
func (f *Factory) CachedFiles() int {
	if f.cache == nil {
		return 0
	}
	return f.cache.Len()
}
