package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tailor-pos/api/internal/database"
	"github.com/tailor-pos/api/internal/enum"
	"github.com/tailor-pos/api/internal/lifecycle"
	"github.com/tailor-pos/api/internal/notify"
	"github.com/tailor-pos/api/internal/pricing"
	"go.uber.org/zap"
)

// FulfilmentInput holds the order-level delivery details.
type FulfilmentInput struct {
	HomeDelivery bool
	Express      bool
	DeliveryDate *time.Time
	Notes        string
}

// SetFulfilment sets the order flags. A garment flagged for home delivery or
// express keeps the order flag on regardless of the input.
func (o *Orchestrator) SetFulfilment(ctx context.Context, brand string, id uuid.UUID, in FulfilmentInput) (*View, error) {
	return o.mutate(ctx, brand, id, func(c *Checkout, _ pricing.PriceTable) error {
		if err := requireCustomer(c); err != nil {
			return err
		}
		c.Fulfilment = pricing.Fulfilment{HomeDelivery: in.HomeDelivery, Express: in.Express}
		c.DeliveryDate = in.DeliveryDate
		c.Notes = in.Notes
		return nil
	})
}

// SetStitchingBase overrides the standard stitching rate for this order.
// An empty amount restores the price list rate.
func (o *Orchestrator) SetStitchingBase(ctx context.Context, brand string, id uuid.UUID, amount string) (*View, error) {
	return o.mutate(ctx, brand, id, func(c *Checkout, _ pricing.PriceTable) error {
		if c.OrderType != enum.OrderTypeWork {
			return ErrWrongOrderType
		}
		if amount == "" {
			c.StitchingBase = nil
			return nil
		}
		base, err := parseAmount("stitching_base", amount)
		if err != nil {
			return err
		}
		c.StitchingBase = &base
		return nil
	})
}

// SetDiscountType switches the discount mode, clearing percentage and value.
func (o *Orchestrator) SetDiscountType(ctx context.Context, brand string, id uuid.UUID, typ string) (*View, error) {
	return o.mutate(ctx, brand, id, func(c *Checkout, _ pricing.PriceTable) error {
		t := pricing.DiscountType(typ)
		if !t.IsValid() {
			return invalid("discount_type", "unknown discount type %q", typ)
		}
		c.Discount.SwitchType(t)
		return nil
	})
}

// SetDiscountPercentage sets the percentage of a percentage-mode discount.
func (o *Orchestrator) SetDiscountPercentage(ctx context.Context, brand string, id uuid.UUID, pct string) (*View, error) {
	return o.mutate(ctx, brand, id, func(c *Checkout, table pricing.PriceTable) error {
		if !c.Discount.Type.IsPercentage() {
			return invalid("discount_percentage", "discount type %q is not a percentage", c.Discount.Type)
		}
		p, err := parseAmount("discount_percentage", pct)
		if err != nil {
			return err
		}
		c.Discount.SetPercentage(p, c.totals(table).Total)
		return nil
	})
}

// SetDiscountValue sets the cash amount of a by_value discount.
func (o *Orchestrator) SetDiscountValue(ctx context.Context, brand string, id uuid.UUID, value string) (*View, error) {
	return o.mutate(ctx, brand, id, func(c *Checkout, _ pricing.PriceTable) error {
		if c.Discount.Type != pricing.DiscountByValue {
			return invalid("discount_value", "discount type %q does not take a cash value", c.Discount.Type)
		}
		v, err := parseAmount("discount_value", value)
		if err != nil {
			return err
		}
		c.Discount.SetValue(v)
		return nil
	})
}

// PaymentInput is what the customer pays now.
type PaymentInput struct {
	PaymentType string
	Paid        string
}

// SetPayment records the payment type and the amount paid. An empty amount
// clears it.
func (o *Orchestrator) SetPayment(ctx context.Context, brand string, id uuid.UUID, in PaymentInput) (*View, error) {
	return o.mutate(ctx, brand, id, func(c *Checkout, _ pricing.PriceTable) error {
		switch in.PaymentType {
		case "", enum.PaymentTypeCash, enum.PaymentTypeKnet, enum.PaymentTypeLinkPay, enum.PaymentTypeInstallment:
		default:
			return invalid("payment_type", "unknown payment type %q", in.PaymentType)
		}
		c.PaymentType = in.PaymentType
		if in.Paid == "" {
			c.Paid = nil
			return nil
		}
		paid, err := parseAmount("paid", in.Paid)
		if err != nil {
			return err
		}
		c.Paid = &paid
		return nil
	})
}

// Submit completes the order. The completion call decrements shelf and
// fabric stock, assigns the invoice number and confirms the order in one
// step. Only a reviewed checkout can be submitted and a zero payment needs
// confirmZero. An order that is no longer a draft is rejected before the
// completion call is made.
func (o *Orchestrator) Submit(ctx context.Context, brand string, id uuid.UUID, confirmZero bool) (*View, error) {
	var completed database.Order
	view, err := o.mutate(ctx, brand, id, func(c *Checkout, table pricing.PriceTable) error {
		if err := requireCustomer(c); err != nil {
			return err
		}
		if !c.hasItems() {
			return ErrNoItems
		}
		if c.Step != StepReview {
			return ErrReviewRequired
		}
		c.refresh(table)
		quote := pricing.BuildQuote(c.totals(table), c.Discount, c.Paid)
		if quote.Paid.IsZero() && !confirmZero {
			return ErrZeroPaymentUnconfirmed
		}
		if c.OrderID != nil {
			if err := o.requireDraftOrder(ctx, c); err != nil {
				return err
			}
		}

		order, err := o.complete(ctx, c, quote)
		if err != nil {
			return err
		}
		if err := lifecycle.Transition(c.Status, lifecycle.StatusConfirmed); err != nil {
			return err
		}
		c.Status = lifecycle.StatusConfirmed
		c.Step = StepDone
		c.OrderID = &order.ID
		c.Order = &order
		completed = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	o.log.Info("order completed",
		zap.String("order_id", completed.ID.String()),
		zap.String("order_type", completed.OrderType),
		zap.Bool("invoice_assigned", completed.InvoiceNumber.Valid),
	)
	if ev, ok := notify.EventFromOrder(completed); ok {
		go o.notifier.InvoiceReady(context.WithoutCancel(ctx), ev)
	} else {
		o.invoices.Start(completed.ID, brand)
	}
	return view, nil
}

// requireDraftOrder checks the persisted status so a session whose order was
// completed or cancelled elsewhere never reaches the completion call.
func (o *Orchestrator) requireDraftOrder(ctx context.Context, c *Checkout) error {
	current, err := o.store.GetOrder(ctx, database.GetOrderParams{ID: *c.OrderID, Brand: c.Brand})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrOrderNotFoundOrDenied
		}
		return fmt.Errorf("load order: %w", err)
	}
	if err := lifecycle.RequireDraft(lifecycle.CheckoutStatus(current.CheckoutStatus)); err != nil {
		return fmt.Errorf("%w: %w", ErrOrderNotFoundOrDenied, err)
	}
	return nil
}

// complete writes the garment snapshots and calls the completion procedure
// for the order type in one transaction.
func (o *Orchestrator) complete(ctx context.Context, c *Checkout, q pricing.Quote) (database.Order, error) {
	tx, err := o.pool.Begin(ctx)
	if err != nil {
		return database.Order{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := o.newStore(tx)
	details := checkoutDetails(c, q)
	shelf := shelfItemLines(c.Shelf)

	var order database.Order
	switch {
	case c.OrderType == enum.OrderTypeWork:
		if c.OrderID == nil {
			draft, err := store.CreateDraftOrder(ctx, database.CreateDraftOrderParams{
				Brand:      c.Brand,
				OrderType:  c.OrderType,
				CustomerID: c.Customer.ID,
				CreatedBy:  optionalUUID(c.CreatedBy),
			})
			if err != nil {
				return database.Order{}, fmt.Errorf("create draft order: %w", err)
			}
			c.OrderID = &draft.ID
		}
		if err := writeGarments(ctx, store, *c.OrderID, c.Garments); err != nil {
			return database.Order{}, err
		}
		order, err = store.CompleteWorkOrder(ctx, database.CompleteWorkOrderParams{
			OrderID:  *c.OrderID,
			Brand:    c.Brand,
			Checkout: details,
			Shelf:    shelf,
			Fabrics:  fabricItemLines(c.Garments),
		})
	case c.OrderID != nil:
		order, err = store.CompleteSalesOrder(ctx, database.CompleteSalesOrderParams{
			OrderID:  *c.OrderID,
			Brand:    c.Brand,
			Checkout: details,
			Shelf:    shelf,
		})
	default:
		order, err = store.CreateCompleteSalesOrder(ctx, database.CreateCompleteSalesOrderParams{
			CustomerID: c.Customer.ID,
			Brand:      c.Brand,
			Checkout:   details,
			Shelf:      shelf,
		})
	}
	if err != nil {
		return database.Order{}, mapBackendError(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return database.Order{}, fmt.Errorf("commit tx: %w", err)
	}
	return order, nil
}

func checkoutDetails(c *Checkout, q pricing.Quote) database.CheckoutDetails {
	d := database.CheckoutDetails{
		HomeDelivery:    c.Fulfilment.HomeDelivery,
		Express:         c.Fulfilment.Express,
		StitchingBase:   c.StitchingBase,
		FabricCharge:    q.Totals.Fabric,
		StitchingCharge: q.Totals.Stitching,
		StyleCharge:     q.Totals.Style,
		DeliveryCharge:  q.Totals.Delivery,
		ExpressCharge:   q.Totals.Express,
		ShelfCharge:     q.Totals.Shelf,
		DiscountType:    string(c.Discount.Type),
		DiscountValue:   q.Discount.Amount,
		PaymentType:     c.PaymentType,
		Paid:            zeroIfNil(c.Paid),
		OrderTotal:      q.Discount.FinalTotal,
		Notes:           c.Notes,
		CreatedBy:       c.CreatedBy,
	}
	if c.Discount.Type.IsPercentage() {
		pct := c.Discount.Percentage
		d.DiscountPercentage = &pct
	}
	if c.DeliveryDate != nil {
		d.DeliveryDate = c.DeliveryDate.Format("2006-01-02")
	}
	return d
}

func shelfItemLines(lines []ShelfLine) []database.ShelfItemLine {
	out := make([]database.ShelfItemLine, len(lines))
	for i, l := range lines {
		out[i] = database.ShelfItemLine{
			ShelfItemID: l.ShelfItemID,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
		}
	}
	return out
}

// fabricItemLines sums the consumed length per shop fabric.
func fabricItemLines(garments []GarmentLine) []database.FabricItemLine {
	var out []database.FabricItemLine
	index := make(map[uuid.UUID]int)
	for _, g := range garments {
		if !g.internal() || g.FabricID == nil || !g.FabricLength.IsPositive() {
			continue
		}
		if i, ok := index[*g.FabricID]; ok {
			out[i].Length = out[i].Length.Add(g.FabricLength)
			continue
		}
		index[*g.FabricID] = len(out)
		out = append(out, database.FabricItemLine{FabricID: *g.FabricID, Length: g.FabricLength})
	}
	return out
}

// Cancel moves a draft to cancelled. No stock is touched.
func (o *Orchestrator) Cancel(ctx context.Context, brand string, id uuid.UUID) (*View, error) {
	var orderID *uuid.UUID
	view, err := o.mutate(ctx, brand, id, func(c *Checkout, _ pricing.PriceTable) error {
		if err := lifecycle.Transition(c.Status, lifecycle.StatusCancelled); err != nil {
			return err
		}
		if c.OrderID != nil {
			order, err := o.store.CancelDraftOrder(ctx, database.CancelDraftOrderParams{ID: *c.OrderID, Brand: c.Brand})
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return ErrOrderNotFoundOrDenied
				}
				return fmt.Errorf("cancel order: %w", err)
			}
			c.Order = &order
			orderID = c.OrderID
		}
		c.Status = lifecycle.StatusCancelled
		c.Step = StepDone
		return nil
	})
	if err != nil {
		return nil, err
	}
	if orderID != nil {
		o.invoices.Stop(*orderID)
		o.log.Info("draft order cancelled", zap.String("order_id", orderID.String()))
	}
	return view, nil
}

// Discard closes the session. An edited order that is neither confirmed nor
// cancelled is only discarded with confirmed set.
func (o *Orchestrator) Discard(ctx context.Context, brand string, id uuid.UUID, confirmed bool) error {
	s, err := o.sessions.Get(brand, id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Touched && !s.state.terminal() && !confirmed {
		return ErrUnsavedOrder
	}
	if s.state.OrderID != nil {
		o.invoices.Stop(*s.state.OrderID)
	}
	o.sessions.Destroy(id)
	o.log.Debug("checkout discarded", zap.String("session", id.String()))
	return nil
}
