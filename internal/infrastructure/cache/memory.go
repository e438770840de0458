package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/jhoicas/holdings-api/internal/application/holdings"
)

var _ holdings.Cache = (*MemoryCache)(nil)

// MemoryCache implementación en memoria del puerto Cache, protegida con
// RWMutex. Se usa en desarrollo y en tests; Evict permite simular expiración
// arbitraria para verificar que la corrección no depende de la caché.
// Los valores se guardan serializados, igual que en Redis, para que un objeto
// cacheado nunca se pueda mutar in place.
type MemoryCache struct {
	mu    sync.RWMutex
	store map[string][]byte
}

// NewMemoryCache construye la caché vacía.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{store: make(map[string][]byte)}
}

// Get deserializa el valor en dest. Reporta (false, nil) en miss.
func (c *MemoryCache) Get(_ context.Context, key string, dest any) (bool, error) {
	c.mu.RLock()
	raw, ok := c.store[key]
	c.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("cache decode %s: %w", key, err)
	}
	return true, nil
}

// Set serializa y guarda el valor bajo la clave.
func (c *MemoryCache) Set(_ context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	c.mu.Lock()
	c.store[key] = raw
	c.mu.Unlock()
	return nil
}

// Del invalida las claves indicadas.
func (c *MemoryCache) Del(_ context.Context, keys ...string) error {
	c.mu.Lock()
	for _, k := range keys {
		delete(c.store, k)
	}
	c.mu.Unlock()
	return nil
}

// FlushAll vacía la caché completa.
func (c *MemoryCache) FlushAll(context.Context) error {
	c.mu.Lock()
	c.store = make(map[string][]byte)
	c.mu.Unlock()
	return nil
}

// Evict elimina una clave concreta sin pasar por el motor; simula una
// expiración temprana en tests.
func (c *MemoryCache) Evict(key string) {
	c.mu.Lock()
	delete(c.store, key)
	c.mu.Unlock()
}

// Len expone el número de entradas (solo para asserts en tests).
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}

// Has reporta si la clave está poblada (solo para asserts en tests).
func (c *MemoryCache) Has(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.store[key]
	return ok
}
