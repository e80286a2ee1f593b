package service

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tailor-pos/api/internal/database"
	"github.com/tailor-pos/api/internal/enum"
	"github.com/tailor-pos/api/internal/lifecycle"
	"github.com/tailor-pos/api/internal/pricing"
)

// Step is the wizard step a checkout is on.
type Step int

const (
	StepCustomer Step = iota
	StepItems
	StepReview
	StepDone
)

func (s Step) String() string {
	switch s {
	case StepCustomer:
		return "customer"
	case StepItems:
		return "items"
	case StepReview:
		return "review"
	case StepDone:
		return "done"
	}
	return "unknown"
}

// GarmentLine is a tailored garment held by a checkout.
type GarmentLine struct {
	FabricSource         string
	FabricID             *uuid.UUID
	FabricLength         decimal.Decimal
	FabricAmount         decimal.Decimal
	Style                string
	Lines                int
	CollarType           string
	CollarButton         string
	JabzourType          string
	JabzourThickness     string
	FrontPocketType      string
	FrontPocketThickness string
	CuffType             string
	CuffThickness        string
	Wallet               bool
	PenHolder            bool
	HomeDelivery         bool
	Express              bool
	Quantity             int32
	PieceStage           lifecycle.PieceStage

	// Quote is the price captured when the line was last priced.
	Quote pricing.GarmentQuote
}

func (g GarmentLine) internal() bool {
	return g.FabricSource == enum.FabricSourceInternal
}

func (g GarmentLine) priced() pricing.Garment {
	return pricing.Garment{
		Style:           g.Style,
		Lines:           g.Lines,
		CollarType:      pricing.PriceKey(g.CollarType),
		CollarButton:    pricing.PriceKey(g.CollarButton),
		JabzourType:     pricing.PriceKey(g.JabzourType),
		FrontPocketType: pricing.PriceKey(g.FrontPocketType),
		CuffType:        pricing.PriceKey(g.CuffType),
		FabricAmount:    g.FabricAmount,
		HomeDelivery:    g.HomeDelivery,
		Express:         g.Express,
		Quantity:        int(g.Quantity),
	}
}

// ShelfLine is a stock item held by a checkout. Stock is the quantity that was
// available when the line was selected.
type ShelfLine struct {
	ShelfItemID uuid.UUID
	ProductType string
	BrandName   string
	Quantity    int32
	UnitPrice   decimal.Decimal
	Stock       int
}

func (l ShelfLine) priced() pricing.ShelfLine {
	return pricing.ShelfLine{Quantity: int(l.Quantity), UnitPrice: l.UnitPrice}
}

// Checkout is the wizard state of one order being taken.
type Checkout struct {
	Brand         string
	OrderType     string
	CreatedBy     *uuid.UUID
	Step          Step
	Customer      *database.Customer
	OrderID       *uuid.UUID
	Status        lifecycle.CheckoutStatus
	Garments      []GarmentLine
	Shelf         []ShelfLine
	Fulfilment    pricing.Fulfilment
	DeliveryDate  *time.Time
	StitchingBase *decimal.Decimal
	Discount      pricing.Discount
	PaymentType   string
	Paid          *decimal.Decimal
	Notes         string
	Order         *database.Order

	// Touched is set by the first accepted edit.
	Touched bool
}

func (c Checkout) clone() Checkout {
	out := c
	out.Garments = append([]GarmentLine(nil), c.Garments...)
	out.Shelf = append([]ShelfLine(nil), c.Shelf...)
	return out
}

func (c *Checkout) terminal() bool {
	return c.Status.IsTerminal()
}

func (c *Checkout) hasItems() bool {
	if c.OrderType == enum.OrderTypeWork {
		return len(c.Garments) > 0
	}
	return len(c.Shelf) > 0
}

func (c *Checkout) pricedGarments() []pricing.Garment {
	out := make([]pricing.Garment, len(c.Garments))
	for i, g := range c.Garments {
		out[i] = g.priced()
	}
	return out
}

func (c *Checkout) pricedShelf() []pricing.ShelfLine {
	out := make([]pricing.ShelfLine, len(c.Shelf))
	for i, l := range c.Shelf {
		out[i] = l.priced()
	}
	return out
}

// totals prices the draft live against table.
func (c *Checkout) totals(table pricing.PriceTable) pricing.Totals {
	return pricing.ComputeOrderTotals(pricing.OrderInput{
		Garments:      c.pricedGarments(),
		Shelf:         c.pricedShelf(),
		Fulfilment:    c.Fulfilment,
		StitchingBase: c.StitchingBase,
	}, table)
}

// settledTotals rebuilds the totals of a confirmed order from the frozen line
// prices and the charges stored on the order.
func (c *Checkout) settledTotals() pricing.Totals {
	quotes := make([]pricing.GarmentQuote, len(c.Garments))
	for i, g := range c.Garments {
		quotes[i] = pricing.SettledPrice(pricing.PriceSnapshot(g.Quote))
	}
	var delivery, express decimal.Decimal
	if c.Order != nil {
		delivery = numericToDecimal(c.Order.DeliveryCharge)
		express = numericToDecimal(c.Order.ExpressCharge)
	}
	return pricing.Aggregate(quotes, c.pricedShelf(), delivery, express)
}

// refresh re-applies the derived state after an edit: garment flags force
// the order flags, line quotes follow the table and the discount value
// follows the subtotal.
func (c *Checkout) refresh(table pricing.PriceTable) {
	c.Fulfilment = pricing.ResolveFulfilment(c.Fulfilment, c.pricedGarments())
	for i := range c.Garments {
		c.Garments[i].Quote = pricing.QuoteGarment(c.Garments[i].priced(), table, c.StitchingBase)
	}
	c.Discount.Recompute(c.totals(table).Total)
}

// View is a point-in-time copy of a checkout with its computed quote.
type View struct {
	ID uuid.UUID
	Checkout
	Quote pricing.Quote
}

// Session holds one checkout between requests.
type Session struct {
	mu       sync.Mutex
	id       uuid.UUID
	brand    string
	state    Checkout
	lastUsed atomic.Int64
}

func (s *Session) ID() uuid.UUID { return s.id }

// Sessions is the registry of open checkouts.
type Sessions struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*Session
	now   func() time.Time
}

func NewSessions() *Sessions {
	return &Sessions{items: make(map[uuid.UUID]*Session), now: time.Now}
}

// Create registers a new session holding c.
func (r *Sessions) Create(c Checkout) *Session {
	s := &Session{id: uuid.New(), brand: c.Brand, state: c}
	s.lastUsed.Store(r.now().UnixNano())
	r.mu.Lock()
	r.items[s.id] = s
	r.mu.Unlock()
	return s
}

// Get returns the session only when it belongs to brand, and marks it used.
func (r *Sessions) Get(brand string, id uuid.UUID) (*Session, error) {
	r.mu.RLock()
	s, ok := r.items[id]
	r.mu.RUnlock()
	if !ok || s.brand != brand {
		return nil, ErrSessionNotFound
	}
	s.lastUsed.Store(r.now().UnixNano())
	return s, nil
}

// Destroy drops the session. Unknown ids are ignored.
func (r *Sessions) Destroy(id uuid.UUID) {
	r.mu.Lock()
	delete(r.items, id)
	r.mu.Unlock()
}

// Expire drops sessions not used for longer than idle and returns how many
// went. A session held by a request in flight is left alone.
func (r *Sessions) Expire(idle time.Duration) int {
	cutoff := r.now().Add(-idle).UnixNano()
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, s := range r.items {
		if s.lastUsed.Load() >= cutoff || !s.mu.TryLock() {
			continue
		}
		delete(r.items, id)
		s.mu.Unlock()
		n++
	}
	return n
}

// Len reports the number of open sessions.
func (r *Sessions) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}
