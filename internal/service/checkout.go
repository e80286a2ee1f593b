package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/tailor-pos/api/internal/database"
	"github.com/tailor-pos/api/internal/enum"
	"github.com/tailor-pos/api/internal/lifecycle"
	"github.com/tailor-pos/api/internal/notify"
	"github.com/tailor-pos/api/internal/pricing"
	"go.uber.org/zap"
)

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// CheckoutStore defines the DB methods needed by the checkout wizard.
// Satisfied by *database.Queries (and its WithTx variant).
type CheckoutStore interface {
	ListPrices(ctx context.Context) ([]database.Price, error)
	GetCustomer(ctx context.Context, arg database.GetCustomerParams) (database.Customer, error)
	CreateCustomer(ctx context.Context, arg database.CreateCustomerParams) (database.Customer, error)
	GetOrder(ctx context.Context, arg database.GetOrderParams) (database.Order, error)
	CreateDraftOrder(ctx context.Context, arg database.CreateDraftOrderParams) (database.Order, error)
	UpdateDraftOrder(ctx context.Context, arg database.UpdateDraftOrderParams) (database.Order, error)
	CancelDraftOrder(ctx context.Context, arg database.CancelDraftOrderParams) (database.Order, error)
	DeleteDraftGarments(ctx context.Context, orderID uuid.UUID) error
	InsertGarment(ctx context.Context, arg database.InsertGarmentParams) (database.Garment, error)
	ListGarmentsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.Garment, error)
	ListOrderShelfLines(ctx context.Context, orderID uuid.UUID) ([]database.OrderShelfLine, error)
	GetShelfItem(ctx context.Context, arg database.GetShelfItemParams) (database.ShelfItem, error)
	GetFabric(ctx context.Context, arg database.GetFabricParams) (database.Fabric, error)
	CompleteWorkOrder(ctx context.Context, arg database.CompleteWorkOrderParams) (database.Order, error)
	CompleteSalesOrder(ctx context.Context, arg database.CompleteSalesOrderParams) (database.Order, error)
	CreateCompleteSalesOrder(ctx context.Context, arg database.CreateCompleteSalesOrderParams) (database.Order, error)
}

// NewCheckoutStore creates a CheckoutStore from a DBTX (pool or tx).
type NewCheckoutStore func(db database.DBTX) CheckoutStore

// InvoiceWatcher polls a confirmed order until its invoice number appears.
type InvoiceWatcher interface {
	Start(orderID uuid.UUID, brand string)
	Stop(orderID uuid.UUID)
}

// Orchestrator sequences the checkout wizard: customer, items, then review
// and payment. Each session is only mutated under its own lock and every
// mutation works on a copy that replaces the state only when it succeeds.
type Orchestrator struct {
	pool     TxBeginner
	store    CheckoutStore
	newStore NewCheckoutStore
	sessions *Sessions
	cache    *StockCache
	invoices InvoiceWatcher
	notifier notify.Notifier
	log      *zap.Logger
}

func NewOrchestrator(
	pool TxBeginner,
	store CheckoutStore,
	newStore NewCheckoutStore,
	sessions *Sessions,
	cache *StockCache,
	invoices InvoiceWatcher,
	notifier notify.Notifier,
	log *zap.Logger,
) *Orchestrator {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Orchestrator{
		pool:     pool,
		store:    store,
		newStore: newStore,
		sessions: sessions,
		cache:    cache,
		invoices: invoices,
		notifier: notifier,
		log:      log,
	}
}

// priceTable loads the current price list.
func (o *Orchestrator) priceTable(ctx context.Context) (pricing.PriceTable, error) {
	rows, err := o.store.ListPrices(ctx)
	if err != nil {
		return pricing.PriceTable{}, fmt.Errorf("load prices: %w", err)
	}
	entries := make([]pricing.PriceEntry, len(rows))
	for i, r := range rows {
		entries[i] = pricing.PriceEntry{
			Key:         r.Key,
			Value:       numericToDecimal(r.Value),
			Description: r.Description.String,
		}
	}
	return pricing.NewPriceTable(entries), nil
}

func (o *Orchestrator) view(s *Session, table pricing.PriceTable) *View {
	c := s.state.clone()
	var totals pricing.Totals
	if c.Status == lifecycle.StatusConfirmed {
		totals = c.settledTotals()
	} else {
		totals = c.totals(table)
	}
	return &View{
		ID:       s.id,
		Checkout: c,
		Quote:    pricing.BuildQuote(totals, c.Discount, c.Paid),
	}
}

// mutate runs fn against a copy of the session state. On success the copy
// replaces the state; on any error the state is left untouched.
func (o *Orchestrator) mutate(ctx context.Context, brand string, id uuid.UUID, fn func(c *Checkout, table pricing.PriceTable) error) (*View, error) {
	s, err := o.sessions.Get(brand, id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.terminal() {
		return nil, ErrOrderTerminal
	}
	table, err := o.priceTable(ctx)
	if err != nil {
		return nil, err
	}

	next := s.state.clone()
	if err := fn(&next, table); err != nil {
		return nil, err
	}
	if !next.terminal() {
		next.refresh(table)
	}
	next.Touched = true
	s.state = next
	return o.view(s, table), nil
}

// Begin opens a new checkout session for orderType.
func (o *Orchestrator) Begin(ctx context.Context, brand, orderType string, createdBy *uuid.UUID) (*View, error) {
	if orderType != enum.OrderTypeWork && orderType != enum.OrderTypeSales {
		return nil, invalid("order_type", "must be %s or %s", enum.OrderTypeWork, enum.OrderTypeSales)
	}
	table, err := o.priceTable(ctx)
	if err != nil {
		return nil, err
	}
	s := o.sessions.Create(Checkout{
		Brand:     brand,
		OrderType: orderType,
		CreatedBy: createdBy,
		Step:      StepCustomer,
		Status:    lifecycle.StatusDraft,
	})
	o.log.Debug("checkout started", zap.String("session", s.id.String()), zap.String("order_type", orderType))

	s.mu.Lock()
	defer s.mu.Unlock()
	return o.view(s, table), nil
}

// State returns the current state of a session.
func (o *Orchestrator) State(ctx context.Context, brand string, id uuid.UUID) (*View, error) {
	s, err := o.sessions.Get(brand, id)
	if err != nil {
		return nil, err
	}
	table, err := o.priceTable(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return o.view(s, table), nil
}

// Resume opens a session over a persisted order. Drafts continue on the
// items step; confirmed and cancelled orders open read-only with their
// frozen line prices.
func (o *Orchestrator) Resume(ctx context.Context, brand string, orderID uuid.UUID) (*View, error) {
	order, err := o.store.GetOrder(ctx, database.GetOrderParams{ID: orderID, Brand: brand})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFoundOrDenied
		}
		return nil, fmt.Errorf("load order: %w", err)
	}
	customer, err := o.store.GetCustomer(ctx, database.GetCustomerParams{ID: order.CustomerID, Brand: brand})
	if err != nil {
		return nil, fmt.Errorf("load customer: %w", err)
	}
	garments, err := o.store.ListGarmentsByOrder(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("load garments: %w", err)
	}
	shelf, err := o.store.ListOrderShelfLines(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("load shelf lines: %w", err)
	}
	table, err := o.priceTable(ctx)
	if err != nil {
		return nil, err
	}

	c := checkoutFromOrder(order, customer, garments, shelf)
	if !c.terminal() {
		c.refresh(table)
	}
	s := o.sessions.Create(c)

	if c.Status == lifecycle.StatusConfirmed && !order.InvoiceNumber.Valid {
		o.invoices.Start(order.ID, brand)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return o.view(s, table), nil
}

func checkoutFromOrder(order database.Order, customer database.Customer, garments []database.Garment, shelf []database.OrderShelfLine) Checkout {
	id := order.ID
	o := order
	c := Checkout{
		Brand:     order.Brand,
		OrderType: order.OrderType,
		Step:      StepItems,
		Customer:  &customer,
		OrderID:   &id,
		Status:    lifecycle.CheckoutStatus(order.CheckoutStatus),
		Fulfilment: pricing.Fulfilment{
			HomeDelivery: order.HomeDelivery,
			Express:      order.Express,
		},
		Discount: pricing.Discount{
			Type:       pricing.DiscountType(order.DiscountType.String),
			Percentage: numericToDecimal(order.DiscountPercentage),
			Value:      numericToDecimal(order.DiscountValue),
		},
		PaymentType: order.PaymentType.String,
		Notes:       order.Notes.String,
		Order:       &o,
	}
	if order.CreatedBy.Valid {
		by := uuid.UUID(order.CreatedBy.Bytes)
		c.CreatedBy = &by
	}
	if order.DeliveryDate.Valid {
		d := order.DeliveryDate.Time
		c.DeliveryDate = &d
	}
	if order.StitchingBase.Valid {
		base := numericToDecimal(order.StitchingBase)
		c.StitchingBase = &base
	}
	if order.Paid.Valid {
		paid := numericToDecimal(order.Paid)
		c.Paid = &paid
	}
	if c.terminal() {
		c.Step = StepDone
	}
	for _, g := range garments {
		c.Garments = append(c.Garments, garmentFromRow(g))
	}
	for _, l := range shelf {
		c.Shelf = append(c.Shelf, ShelfLine{
			ShelfItemID: l.ShelfItemID,
			ProductType: l.ProductType,
			BrandName:   l.BrandName,
			Quantity:    l.Quantity,
			UnitPrice:   numericToDecimal(l.UnitPrice),
		})
	}
	return c
}

func garmentFromRow(g database.Garment) GarmentLine {
	line := GarmentLine{
		FabricSource:         g.FabricSource,
		FabricLength:         numericToDecimal(g.FabricLength),
		FabricAmount:         numericToDecimal(g.FabricPrice),
		Style:                g.Style,
		Lines:                int(g.Lines),
		CollarType:           g.CollarType.String,
		CollarButton:         g.CollarButton.String,
		JabzourType:          g.JabzourType.String,
		JabzourThickness:     g.JabzourThickness.String,
		FrontPocketType:      g.FrontPocketType.String,
		FrontPocketThickness: g.FrontPocketThickness.String,
		CuffType:             g.CuffType.String,
		CuffThickness:        g.CuffThickness.String,
		Wallet:               g.Wallet,
		PenHolder:            g.PenHolder,
		HomeDelivery:         g.HomeDelivery,
		Express:              g.Express,
		Quantity:             g.Quantity,
		PieceStage:           lifecycle.PieceStage(g.PieceStage),
		Quote: pricing.GarmentQuote{
			Fabric:    numericToDecimal(g.FabricPrice),
			Stitching: numericToDecimal(g.StitchingPrice),
			Style:     numericToDecimal(g.StylePrice),
		},
	}
	if g.FabricID.Valid {
		id := uuid.UUID(g.FabricID.Bytes)
		line.FabricID = &id
	}
	return line
}

// CustomerInput is a new customer entered on the customer step.
type CustomerInput struct {
	Name        string
	Phone       string
	Email       string
	Nationality string
}

// SelectCustomer attaches an existing customer of the brand.
func (o *Orchestrator) SelectCustomer(ctx context.Context, brand string, id, customerID uuid.UUID) (*View, error) {
	return o.mutate(ctx, brand, id, func(c *Checkout, _ pricing.PriceTable) error {
		if c.OrderID != nil && c.Customer != nil && c.Customer.ID != customerID {
			return invalid("customer_id", "customer cannot change once the draft is saved")
		}
		customer, err := o.store.GetCustomer(ctx, database.GetCustomerParams{ID: customerID, Brand: brand})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrCustomerNotFound
			}
			return fmt.Errorf("load customer: %w", err)
		}
		c.Customer = &customer
		return nil
	})
}

// CreateCustomer saves a new customer and attaches it.
func (o *Orchestrator) CreateCustomer(ctx context.Context, brand string, id uuid.UUID, in CustomerInput) (*View, error) {
	return o.mutate(ctx, brand, id, func(c *Checkout, _ pricing.PriceTable) error {
		if c.OrderID != nil {
			return invalid("customer", "customer cannot change once the draft is saved")
		}
		name, phone := strings.TrimSpace(in.Name), strings.TrimSpace(in.Phone)
		if name == "" {
			return invalid("name", "is required")
		}
		if phone == "" {
			return invalid("phone", "is required")
		}
		customer, err := o.store.CreateCustomer(ctx, database.CreateCustomerParams{
			Brand:       brand,
			Name:        name,
			Phone:       phone,
			Email:       optionalText(in.Email),
			Nationality: optionalText(in.Nationality),
		})
		if err != nil {
			return fmt.Errorf("create customer: %w", err)
		}
		c.Customer = &customer
		return nil
	})
}

// AdvanceToItems leaves the customer step. A work order is saved as a draft
// right away.
func (o *Orchestrator) AdvanceToItems(ctx context.Context, brand string, id uuid.UUID) (*View, error) {
	return o.mutate(ctx, brand, id, func(c *Checkout, _ pricing.PriceTable) error {
		if c.Customer == nil || c.Customer.ID == uuid.Nil {
			return ErrCustomerRequired
		}
		if c.OrderType == enum.OrderTypeWork && c.OrderID == nil {
			order, err := o.store.CreateDraftOrder(ctx, database.CreateDraftOrderParams{
				Brand:      c.Brand,
				OrderType:  c.OrderType,
				CustomerID: c.Customer.ID,
				CreatedBy:  optionalUUID(c.CreatedBy),
			})
			if err != nil {
				return fmt.Errorf("create draft order: %w", err)
			}
			c.OrderID = &order.ID
			c.Order = &order
			o.log.Info("draft order created", zap.String("order_id", order.ID.String()))
		}
		c.Step = StepItems
		return nil
	})
}

// Back returns to an earlier step.
func (o *Orchestrator) Back(ctx context.Context, brand string, id uuid.UUID, step Step) (*View, error) {
	return o.mutate(ctx, brand, id, func(c *Checkout, _ pricing.PriceTable) error {
		if step >= c.Step || step == StepDone {
			return invalid("step", "cannot move from %s to %s", c.Step, step)
		}
		c.Step = step
		return nil
	})
}

// AdvanceToReview leaves the items step. Work orders save their lines and
// charges to the draft.
func (o *Orchestrator) AdvanceToReview(ctx context.Context, brand string, id uuid.UUID) (*View, error) {
	return o.mutate(ctx, brand, id, func(c *Checkout, table pricing.PriceTable) error {
		if err := requireCustomer(c); err != nil {
			return err
		}
		if !c.hasItems() {
			return ErrNoItems
		}
		if c.OrderType == enum.OrderTypeWork && c.OrderID != nil {
			c.refresh(table)
			if err := o.saveDraft(ctx, c, table); err != nil {
				return err
			}
		}
		c.Step = StepReview
		return nil
	})
}

// saveDraft writes the draft charges and garment lines in one transaction.
func (o *Orchestrator) saveDraft(ctx context.Context, c *Checkout, table pricing.PriceTable) error {
	tx, err := o.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := o.newStore(tx)
	totals := c.totals(table)
	quote := pricing.BuildQuote(totals, c.Discount, c.Paid)
	order, err := store.UpdateDraftOrder(ctx, draftParams(c, quote))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrOrderNotFoundOrDenied
		}
		return fmt.Errorf("update draft: %w", err)
	}
	if err := writeGarments(ctx, store, order.ID, c.Garments); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	c.Order = &order
	return nil
}

func requireCustomer(c *Checkout) error {
	if c.Customer == nil || c.Customer.ID == uuid.Nil {
		return ErrCustomerRequired
	}
	return nil
}

func draftParams(c *Checkout, q pricing.Quote) database.UpdateDraftOrderParams {
	p := database.UpdateDraftOrderParams{
		ID:              *c.OrderID,
		Brand:           c.Brand,
		HomeDelivery:    c.Fulfilment.HomeDelivery,
		Express:         c.Fulfilment.Express,
		StitchingBase:   optionalNumeric(c.StitchingBase),
		FabricCharge:    decimalToNumeric(q.Totals.Fabric),
		StitchingCharge: decimalToNumeric(q.Totals.Stitching),
		StyleCharge:     decimalToNumeric(q.Totals.Style),
		DeliveryCharge:  decimalToNumeric(q.Totals.Delivery),
		ExpressCharge:   decimalToNumeric(q.Totals.Express),
		ShelfCharge:     decimalToNumeric(q.Totals.Shelf),
		DiscountType:    optionalText(string(c.Discount.Type)),
		DiscountValue:   decimalToNumeric(q.Discount.Amount),
		PaymentType:     optionalText(c.PaymentType),
		Paid:            decimalToNumeric(q.Paid),
		OrderTotal:      decimalToNumeric(q.Discount.FinalTotal),
		Notes:           optionalText(c.Notes),
	}
	if c.Discount.Type.IsPercentage() {
		p.DiscountPercentage = decimalToNumeric(c.Discount.Percentage)
	}
	if c.DeliveryDate != nil {
		p.DeliveryDate.Time = *c.DeliveryDate
		p.DeliveryDate.Valid = true
	}
	return p
}

// writeGarments replaces the draft's garment rows with lines, each carrying
// its current price snapshot.
func writeGarments(ctx context.Context, store CheckoutStore, orderID uuid.UUID, lines []GarmentLine) error {
	if err := store.DeleteDraftGarments(ctx, orderID); err != nil {
		return fmt.Errorf("clear garments: %w", err)
	}
	for i, g := range lines {
		_, err := store.InsertGarment(ctx, database.InsertGarmentParams{
			OrderID:              orderID,
			Position:             int32(i),
			FabricSource:         g.FabricSource,
			FabricID:             optionalUUID(g.FabricID),
			FabricLength:         decimalToNumeric(g.FabricLength),
			Style:                g.Style,
			Lines:                int32(g.Lines),
			CollarType:           optionalText(g.CollarType),
			CollarButton:         optionalText(g.CollarButton),
			JabzourType:          optionalText(g.JabzourType),
			JabzourThickness:     optionalText(g.JabzourThickness),
			FrontPocketType:      optionalText(g.FrontPocketType),
			FrontPocketThickness: optionalText(g.FrontPocketThickness),
			CuffType:             optionalText(g.CuffType),
			CuffThickness:        optionalText(g.CuffThickness),
			Wallet:               g.Wallet,
			PenHolder:            g.PenHolder,
			HomeDelivery:         g.HomeDelivery,
			Express:              g.Express,
			Quantity:             g.Quantity,
			FabricPrice:          decimalToNumeric(g.Quote.Fabric),
			StitchingPrice:       decimalToNumeric(g.Quote.Stitching),
			StylePrice:           decimalToNumeric(g.Quote.Style),
		})
		if err != nil {
			return fmt.Errorf("garment[%d]: %w", i, err)
		}
	}
	return nil
}

// zeroIfNil returns the amount or zero.
func zeroIfNil(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
