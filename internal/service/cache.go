package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tailor-pos/api/internal/database"
)

// ShelfReader loads a single shelf item.
type ShelfReader interface {
	GetShelfItem(ctx context.Context, arg database.GetShelfItemParams) (database.ShelfItem, error)
}

// FabricReader loads a single fabric.
type FabricReader interface {
	GetFabric(ctx context.Context, arg database.GetFabricParams) (database.Fabric, error)
}

type cached[T any] struct {
	brand   string
	value   T
	expires time.Time
}

// StockCache keeps recently read shelf items and fabrics so the item step
// can validate selections without a round trip per keystroke. Entries are
// dropped when stock is settled.
type StockCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	shelf   map[uuid.UUID]cached[database.ShelfItem]
	fabrics map[uuid.UUID]cached[database.Fabric]
}

func NewStockCache(ttl time.Duration) *StockCache {
	return &StockCache{
		ttl:     ttl,
		now:     time.Now,
		shelf:   make(map[uuid.UUID]cached[database.ShelfItem]),
		fabrics: make(map[uuid.UUID]cached[database.Fabric]),
	}
}

// ShelfItem returns the item from cache or loads it through store.
func (c *StockCache) ShelfItem(ctx context.Context, store ShelfReader, brand string, id uuid.UUID) (database.ShelfItem, error) {
	c.mu.Lock()
	e, ok := c.shelf[id]
	c.mu.Unlock()
	if ok && e.brand == brand && c.now().Before(e.expires) {
		return e.value, nil
	}

	item, err := store.GetShelfItem(ctx, database.GetShelfItemParams{ID: id, Brand: brand})
	if err != nil {
		return database.ShelfItem{}, err
	}
	c.mu.Lock()
	c.shelf[id] = cached[database.ShelfItem]{brand: brand, value: item, expires: c.now().Add(c.ttl)}
	c.mu.Unlock()
	return item, nil
}

// Fabric returns the fabric from cache or loads it through store.
func (c *StockCache) Fabric(ctx context.Context, store FabricReader, brand string, id uuid.UUID) (database.Fabric, error) {
	c.mu.Lock()
	e, ok := c.fabrics[id]
	c.mu.Unlock()
	if ok && e.brand == brand && c.now().Before(e.expires) {
		return e.value, nil
	}

	f, err := store.GetFabric(ctx, database.GetFabricParams{ID: id, Brand: brand})
	if err != nil {
		return database.Fabric{}, err
	}
	c.mu.Lock()
	c.fabrics[id] = cached[database.Fabric]{brand: brand, value: f, expires: c.now().Add(c.ttl)}
	c.mu.Unlock()
	return f, nil
}

// Invalidate drops the given shelf item and fabric ids.
func (c *StockCache) Invalidate(ids ...uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		delete(c.shelf, id)
		delete(c.fabrics, id)
	}
}
