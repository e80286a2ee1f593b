package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/tailor-pos/api/internal/database"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrInsufficientStock is returned for a line whose new stock would be
// negative. No update is issued for such a line.
var ErrInsufficientStock = errors.New("insufficient stock")

// ErrStockChanged is returned when the row changed between read and write.
var ErrStockChanged = errors.New("stock changed concurrently")

// StockStore defines the DB methods needed to settle stock.
type StockStore interface {
	GetShelfItem(ctx context.Context, arg database.GetShelfItemParams) (database.ShelfItem, error)
	SetShelfStock(ctx context.Context, arg database.SetShelfStockParams) (database.ShelfItem, error)
	GetFabric(ctx context.Context, arg database.GetFabricParams) (database.Fabric, error)
	SetFabricStock(ctx context.Context, arg database.SetFabricStockParams) (database.Fabric, error)
}

// ShelfDecrement takes Quantity units off one shelf item.
type ShelfDecrement struct {
	ShelfItemID uuid.UUID
	Quantity    int32
}

// FabricDecrement takes Length meters off one fabric.
type FabricDecrement struct {
	FabricID uuid.UUID
	Length   decimal.Decimal
}

// Settler applies stock decrements outside the completion procedures, one
// independent update per line. Lines run in parallel and every line is
// attempted; failures are collected into a *BatchError.
type Settler struct {
	store       StockStore
	cache       *StockCache
	concurrency int
	log         *zap.Logger
}

func NewSettler(store StockStore, cache *StockCache, concurrency int, log *zap.Logger) *Settler {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Settler{store: store, cache: cache, concurrency: concurrency, log: log}
}

type batch struct {
	mu        sync.Mutex
	succeeded []uuid.UUID
	failed    []LineError
}

func (b *batch) ok(id uuid.UUID) {
	b.mu.Lock()
	b.succeeded = append(b.succeeded, id)
	b.mu.Unlock()
}

func (b *batch) fail(id uuid.UUID, err error) {
	b.mu.Lock()
	b.failed = append(b.failed, LineError{ID: id, Err: err})
	b.mu.Unlock()
}

// finish invalidates the cache for the written lines and reports the batch.
func (s *Settler) finish(kind string, b *batch) ([]uuid.UUID, error) {
	if s.cache != nil && len(b.succeeded) > 0 {
		s.cache.Invalidate(b.succeeded...)
	}
	if len(b.failed) == 0 {
		return b.succeeded, nil
	}
	s.log.Warn("stock settlement partially failed",
		zap.String("kind", kind),
		zap.Int("succeeded", len(b.succeeded)),
		zap.Int("failed", len(b.failed)),
	)
	return b.succeeded, &BatchError{Succeeded: b.succeeded, Failed: b.failed}
}

// SettleShelf decrements shelf stock. Quantities for the same item are
// summed first so each item is written once.
func (s *Settler) SettleShelf(ctx context.Context, brand string, lines []ShelfDecrement) ([]uuid.UUID, error) {
	var order []uuid.UUID
	qty := make(map[uuid.UUID]int64)
	for i, l := range lines {
		if l.Quantity < 1 {
			return nil, invalid("quantity", "line %d: must be at least 1", i)
		}
		if _, ok := qty[l.ShelfItemID]; !ok {
			order = append(order, l.ShelfItemID)
		}
		qty[l.ShelfItemID] += int64(l.Quantity)
		if qty[l.ShelfItemID] > math.MaxInt32 {
			return nil, invalid("quantity", "line %d: total for %s is too large", i, l.ShelfItemID)
		}
	}

	b := &batch{}
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for _, id := range order {
		id, n := id, int32(qty[id])
		g.Go(func() error {
			if err := s.decrementShelf(ctx, brand, id, n); err != nil {
				b.fail(id, err)
				return nil
			}
			b.ok(id)
			return nil
		})
	}
	_ = g.Wait()
	return s.finish("shelf", b)
}

func (s *Settler) decrementShelf(ctx context.Context, brand string, id uuid.UUID, n int32) error {
	item, err := s.store.GetShelfItem(ctx, database.GetShelfItemParams{ID: id, Brand: brand})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return errors.New("shelf item not found")
		}
		return err
	}
	next := item.Stock - n
	if next < 0 {
		return fmt.Errorf("%w: %s %s has %d, need %d", ErrInsufficientStock, item.BrandName, item.ProductType, item.Stock, n)
	}
	_, err = s.store.SetShelfStock(ctx, database.SetShelfStockParams{
		ID:       id,
		Brand:    brand,
		Stock:    next,
		Expected: item.Stock,
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrStockChanged
	}
	return err
}

// SettleFabrics decrements fabric stock by the consumed length.
func (s *Settler) SettleFabrics(ctx context.Context, brand string, lines []FabricDecrement) ([]uuid.UUID, error) {
	var order []uuid.UUID
	length := make(map[uuid.UUID]decimal.Decimal)
	for i, l := range lines {
		if !l.Length.IsPositive() {
			return nil, invalid("length", "line %d: must be positive", i)
		}
		if _, ok := length[l.FabricID]; !ok {
			order = append(order, l.FabricID)
		}
		length[l.FabricID] = length[l.FabricID].Add(l.Length)
	}

	b := &batch{}
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for _, id := range order {
		id, n := id, length[id]
		g.Go(func() error {
			if err := s.decrementFabric(ctx, brand, id, n); err != nil {
				b.fail(id, err)
				return nil
			}
			b.ok(id)
			return nil
		})
	}
	_ = g.Wait()
	return s.finish("fabric", b)
}

func (s *Settler) decrementFabric(ctx context.Context, brand string, id uuid.UUID, n decimal.Decimal) error {
	f, err := s.store.GetFabric(ctx, database.GetFabricParams{ID: id, Brand: brand})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return errors.New("fabric not found")
		}
		return err
	}
	stock := numericToDecimal(f.StockLength)
	next := stock.Sub(n)
	if next.IsNegative() {
		return fmt.Errorf("%w: %s has %s m, need %s m", ErrInsufficientStock, f.Name, stock.String(), n.String())
	}
	_, err = s.store.SetFabricStock(ctx, database.SetFabricStockParams{
		ID:          id,
		Brand:       brand,
		StockLength: decimalToNumeric(next),
		Expected:    f.StockLength,
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrStockChanged
	}
	return err
}
