// Package invoice waits for the backend to assign invoice numbers to
// confirmed orders.
package invoice

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/tailor-pos/api/internal/database"
	"github.com/tailor-pos/api/internal/enum"
	"github.com/tailor-pos/api/internal/notify"
	"go.uber.org/zap"
)

// OrderReader loads an order scoped to its brand.
type OrderReader interface {
	GetOrder(ctx context.Context, arg database.GetOrderParams) (database.Order, error)
}

type watch struct {
	entry cron.EntryID
	brand string
	tries int
}

// Poller re-reads each watched order on a fixed interval until its invoice
// number appears, the order stops being confirmed, Stop is called or the
// attempts run out. Giving up is silent apart from a log line.
type Poller struct {
	mu       sync.Mutex
	cron     *cron.Cron
	store    OrderReader
	notifier notify.Notifier
	interval time.Duration
	attempts int
	timeout  time.Duration
	watches  map[uuid.UUID]*watch
	log      *zap.Logger
}

func New(store OrderReader, notifier notify.Notifier, interval time.Duration, attempts int, log *zap.Logger) *Poller {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Poller{
		cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		store:    store,
		notifier: notifier,
		interval: interval,
		attempts: attempts,
		timeout:  5 * time.Second,
		watches:  make(map[uuid.UUID]*watch),
		log:      log,
	}
}

// Run starts the scheduler in its own goroutine.
func (p *Poller) Run() {
	p.cron.Start()
	p.log.Info("invoice poller started", zap.Duration("interval", p.interval), zap.Int("attempts", p.attempts))
}

// Shutdown stops scheduling and waits for running checks, bounded by ctx.
func (p *Poller) Shutdown(ctx context.Context) error {
	done := p.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Start watches orderID. Watching an order twice is a no-op.
func (p *Poller) Start(orderID uuid.UUID, brand string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.watches[orderID]; ok {
		return
	}
	entry := p.cron.Schedule(cron.Every(p.interval), cron.FuncJob(func() {
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		defer cancel()
		p.check(ctx, orderID)
	}))
	p.watches[orderID] = &watch{entry: entry, brand: brand}
	p.log.Debug("watching for invoice", zap.String("order_id", orderID.String()))
}

// Stop cancels the watch of orderID and resets its attempt count.
func (p *Poller) Stop(orderID uuid.UUID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked(orderID)
}

func (p *Poller) stopLocked(orderID uuid.UUID) {
	w, ok := p.watches[orderID]
	if !ok {
		return
	}
	p.cron.Remove(w.entry)
	delete(p.watches, orderID)
}

// Active reports whether orderID is being watched.
func (p *Poller) Active(orderID uuid.UUID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.watches[orderID]
	return ok
}

// check performs one attempt for orderID.
func (p *Poller) check(ctx context.Context, orderID uuid.UUID) {
	p.mu.Lock()
	w, ok := p.watches[orderID]
	if !ok {
		p.mu.Unlock()
		return
	}
	w.tries++
	tries, brand := w.tries, w.brand
	p.mu.Unlock()

	log := p.log.With(zap.String("order_id", orderID.String()), zap.Int("attempt", tries))

	order, err := p.store.GetOrder(ctx, database.GetOrderParams{ID: orderID, Brand: brand})
	switch {
	case err != nil:
		log.Warn("invoice poll failed", zap.Error(err))
	case order.CheckoutStatus != enum.CheckoutStatusConfirmed:
		log.Debug("order no longer confirmed, stopping", zap.String("status", order.CheckoutStatus))
		p.Stop(orderID)
		return
	default:
		if ev, ok := notify.EventFromOrder(order); ok {
			p.Stop(orderID)
			log.Info("invoice assigned", zap.Int32("invoice_number", ev.InvoiceNumber))
			p.notifier.InvoiceReady(ctx, ev)
			return
		}
	}

	if tries >= p.attempts {
		log.Info("invoice still pending, giving up")
		p.Stop(orderID)
	}
}
