package invoice

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tailor-pos/api/internal/database"
	"github.com/tailor-pos/api/internal/enum"
	"github.com/tailor-pos/api/internal/notify"
	"go.uber.org/zap"
)

type scriptedStore struct {
	mu     sync.Mutex
	orders []database.Order
	errs   []error
	calls  int
}

func (s *scriptedStore) GetOrder(ctx context.Context, arg database.GetOrderParams) (database.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.calls
	s.calls++
	if i >= len(s.orders) {
		i = len(s.orders) - 1
	}
	var err error
	if i < len(s.errs) {
		err = s.errs[i]
	}
	o := s.orders[i]
	o.ID = arg.ID
	o.Brand = arg.Brand
	return o, err
}

type recorder struct {
	mu     sync.Mutex
	events []notify.InvoiceEvent
}

func (r *recorder) InvoiceReady(ctx context.Context, ev notify.InvoiceEvent) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

var (
	pending  = database.Order{CheckoutStatus: enum.CheckoutStatusConfirmed}
	invoiced = database.Order{CheckoutStatus: enum.CheckoutStatusConfirmed, InvoiceNumber: pgtype.Int4{Int32: 1042, Valid: true}}
)

func TestCheck_NotifiesWhenInvoiceAppears(t *testing.T) {
	store := &scriptedStore{orders: []database.Order{pending, invoiced}}
	rec := &recorder{}
	p := New(store, rec, time.Second, 5, zap.NewNop())
	id := uuid.New()
	ctx := context.Background()

	p.Start(id, "ERTH")
	p.Start(id, "ERTH")
	assert.Len(t, p.cron.Entries(), 1, "watching twice schedules once")

	p.check(ctx, id)
	assert.True(t, p.Active(id))
	assert.Equal(t, 0, rec.count())

	p.check(ctx, id)
	assert.False(t, p.Active(id))
	require.Equal(t, 1, rec.count())
	assert.Equal(t, int32(1042), rec.events[0].InvoiceNumber)
	assert.Equal(t, "ERTH", rec.events[0].Brand)
	assert.Empty(t, p.cron.Entries())

	// a stopped watch ignores stray ticks
	p.check(ctx, id)
	assert.Equal(t, 2, store.calls)
}

func TestCheck_StopsWhenOrderNotConfirmed(t *testing.T) {
	store := &scriptedStore{orders: []database.Order{{CheckoutStatus: enum.CheckoutStatusCancelled}}}
	rec := &recorder{}
	p := New(store, rec, time.Second, 5, zap.NewNop())
	id := uuid.New()

	p.Start(id, "ERTH")
	p.check(context.Background(), id)
	assert.False(t, p.Active(id))
	assert.Equal(t, 0, rec.count())
}

func TestCheck_GivesUpAfterAttempts(t *testing.T) {
	store := &scriptedStore{
		orders: []database.Order{pending, pending, pending},
		errs:   []error{errors.New("timeout")},
	}
	rec := &recorder{}
	p := New(store, rec, time.Second, 3, zap.NewNop())
	id := uuid.New()
	ctx := context.Background()

	p.Start(id, "ERTH")
	p.check(ctx, id)
	p.check(ctx, id)
	assert.True(t, p.Active(id), "errors count as attempts but do not stop early")
	p.check(ctx, id)
	assert.False(t, p.Active(id))
	assert.Equal(t, 0, rec.count())
}

func TestStop_ResetsAttempts(t *testing.T) {
	store := &scriptedStore{orders: []database.Order{pending}}
	p := New(store, nil, time.Second, 2, zap.NewNop())
	id := uuid.New()
	ctx := context.Background()

	p.Start(id, "ERTH")
	p.check(ctx, id)
	p.Stop(id)
	assert.False(t, p.Active(id))

	p.Start(id, "ERTH")
	p.check(ctx, id)
	assert.True(t, p.Active(id), "a restarted watch begins with fresh attempts")
}

func TestPoller_RunsOnSchedule(t *testing.T) {
	store := &scriptedStore{orders: []database.Order{invoiced}}
	rec := &recorder{}
	p := New(store, rec, time.Second, 3, zap.NewNop())
	p.Run()
	defer p.Shutdown(context.Background())

	id := uuid.New()
	p.Start(id, "ERTH")

	require.Eventually(t, func() bool { return rec.count() == 1 }, 5*time.Second, 50*time.Millisecond)
	assert.False(t, p.Active(id))
}
