package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const orderColumns = `id, brand, order_type, checkout_status, production_stage, customer_id,
    order_date, delivery_date, home_delivery, express, stitching_base,
    fabric_charge, stitching_charge, style_charge, delivery_charge, express_charge, shelf_charge,
    discount_type, discount_percentage, discount_value, payment_type, paid, order_total,
    invoice_number, notes, created_by, created_at, updated_at`

func scanOrder(row interface{ Scan(...interface{}) error }) (Order, error) {
	var i Order
	err := row.Scan(
		&i.ID,
		&i.Brand,
		&i.OrderType,
		&i.CheckoutStatus,
		&i.ProductionStage,
		&i.CustomerID,
		&i.OrderDate,
		&i.DeliveryDate,
		&i.HomeDelivery,
		&i.Express,
		&i.StitchingBase,
		&i.FabricCharge,
		&i.StitchingCharge,
		&i.StyleCharge,
		&i.DeliveryCharge,
		&i.ExpressCharge,
		&i.ShelfCharge,
		&i.DiscountType,
		&i.DiscountPercentage,
		&i.DiscountValue,
		&i.PaymentType,
		&i.Paid,
		&i.OrderTotal,
		&i.InvoiceNumber,
		&i.Notes,
		&i.CreatedBy,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createDraftOrder = `-- name: CreateDraftOrder :one
INSERT INTO orders (brand, order_type, customer_id, created_by)
VALUES ($1, $2, $3, $4)
RETURNING ` + orderColumns

type CreateDraftOrderParams struct {
	Brand      string      `json:"brand"`
	OrderType  string      `json:"order_type"`
	CustomerID uuid.UUID   `json:"customer_id"`
	CreatedBy  pgtype.UUID `json:"created_by"`
}

// CreateDraftOrder inserts a draft with only the minimal fields; charges
// default to zero until the checkout is submitted.
func (q *Queries) CreateDraftOrder(ctx context.Context, arg CreateDraftOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, createDraftOrder,
		arg.Brand,
		arg.OrderType,
		arg.CustomerID,
		arg.CreatedBy,
	)
	return scanOrder(row)
}

const updateDraftOrder = `-- name: UpdateDraftOrder :one
UPDATE orders SET
    delivery_date = $3,
    home_delivery = $4,
    express = $5,
    stitching_base = $6,
    fabric_charge = $7,
    stitching_charge = $8,
    style_charge = $9,
    delivery_charge = $10,
    express_charge = $11,
    shelf_charge = $12,
    discount_type = $13,
    discount_percentage = $14,
    discount_value = $15,
    payment_type = $16,
    paid = $17,
    order_total = $18,
    notes = $19,
    updated_at = now()
WHERE id = $1 AND brand = $2 AND checkout_status = 'draft'
RETURNING ` + orderColumns

type UpdateDraftOrderParams struct {
	ID                 uuid.UUID      `json:"id"`
	Brand              string         `json:"brand"`
	DeliveryDate       pgtype.Date    `json:"delivery_date"`
	HomeDelivery       bool           `json:"home_delivery"`
	Express            bool           `json:"express"`
	StitchingBase      pgtype.Numeric `json:"stitching_base"`
	FabricCharge       pgtype.Numeric `json:"fabric_charge"`
	StitchingCharge    pgtype.Numeric `json:"stitching_charge"`
	StyleCharge        pgtype.Numeric `json:"style_charge"`
	DeliveryCharge     pgtype.Numeric `json:"delivery_charge"`
	ExpressCharge      pgtype.Numeric `json:"express_charge"`
	ShelfCharge        pgtype.Numeric `json:"shelf_charge"`
	DiscountType       pgtype.Text    `json:"discount_type"`
	DiscountPercentage pgtype.Numeric `json:"discount_percentage"`
	DiscountValue      pgtype.Numeric `json:"discount_value"`
	PaymentType        pgtype.Text    `json:"payment_type"`
	Paid               pgtype.Numeric `json:"paid"`
	OrderTotal         pgtype.Numeric `json:"order_total"`
	Notes              pgtype.Text    `json:"notes"`
}

// UpdateDraftOrder only touches drafts of the given brand; any other order
// yields pgx.ErrNoRows.
func (q *Queries) UpdateDraftOrder(ctx context.Context, arg UpdateDraftOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, updateDraftOrder,
		arg.ID,
		arg.Brand,
		arg.DeliveryDate,
		arg.HomeDelivery,
		arg.Express,
		arg.StitchingBase,
		arg.FabricCharge,
		arg.StitchingCharge,
		arg.StyleCharge,
		arg.DeliveryCharge,
		arg.ExpressCharge,
		arg.ShelfCharge,
		arg.DiscountType,
		arg.DiscountPercentage,
		arg.DiscountValue,
		arg.PaymentType,
		arg.Paid,
		arg.OrderTotal,
		arg.Notes,
	)
	return scanOrder(row)
}

const getOrder = `-- name: GetOrder :one
SELECT ` + orderColumns + ` FROM orders
WHERE id = $1 AND brand = $2`

type GetOrderParams struct {
	ID    uuid.UUID `json:"id"`
	Brand string    `json:"brand"`
}

func (q *Queries) GetOrder(ctx context.Context, arg GetOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, getOrder, arg.ID, arg.Brand)
	return scanOrder(row)
}

type ListOrdersParams struct {
	Brand           string
	CheckoutStatus  string
	OrderType       string
	ProductionStage string
	CustomerID      uuid.NullUUID
	Search          string
	StartDate       pgtype.Timestamptz
	EndDate         pgtype.Timestamptz
	Limit           int32
	Offset          int32
}

// ListOrders returns a page of orders, newest first, plus the total number of
// matches. Search matches the customer name or phone and the invoice number.
func (q *Queries) ListOrders(ctx context.Context, arg ListOrdersParams) ([]Order, int64, error) {
	f := NewFilter("o.brand", arg.Brand)
	if arg.CheckoutStatus != "" {
		f.Eq("o.checkout_status", arg.CheckoutStatus)
	}
	if arg.OrderType != "" {
		f.Eq("o.order_type", arg.OrderType)
	}
	if arg.ProductionStage != "" {
		f.Eq("o.production_stage", arg.ProductionStage)
	}
	if arg.CustomerID.Valid {
		f.Eq("o.customer_id", arg.CustomerID.UUID)
	}
	if arg.StartDate.Valid {
		f.Gte("o.order_date", arg.StartDate)
	}
	if arg.EndDate.Valid {
		f.Lt("o.order_date", arg.EndDate)
	}
	f.ILike(arg.Search, "c.name", "c.phone", "o.invoice_number::text")

	from := " FROM orders o JOIN customers c ON c.id = o.customer_id "
	var total int64
	if err := q.db.QueryRow(ctx, "SELECT COUNT(*)"+from+f.Where(), f.Args()...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query, args := f.Page("SELECT "+prefixed("o", orderColumns)+from+f.Where()+" ORDER BY o.order_date DESC, o.created_at DESC", arg.Limit, arg.Offset)
	rows, err := q.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items := []Order{}
	for rows.Next() {
		i, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

const cancelDraftOrder = `-- name: CancelDraftOrder :one
UPDATE orders SET checkout_status = 'cancelled', updated_at = now()
WHERE id = $1 AND brand = $2 AND checkout_status = 'draft'
RETURNING ` + orderColumns

type CancelDraftOrderParams struct {
	ID    uuid.UUID `json:"id"`
	Brand string    `json:"brand"`
}

// CancelDraftOrder never touches stock; nothing was decremented while the
// order was a draft.
func (q *Queries) CancelDraftOrder(ctx context.Context, arg CancelDraftOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, cancelDraftOrder, arg.ID, arg.Brand)
	return scanOrder(row)
}

const updateProductionStage = `-- name: UpdateProductionStage :one
UPDATE orders SET production_stage = $3, updated_at = now()
WHERE id = $1 AND brand = $2
  AND order_type = 'WORK'
  AND checkout_status = 'confirmed'
  AND production_stage = $4
RETURNING ` + orderColumns

type UpdateProductionStageParams struct {
	ID              uuid.UUID `json:"id"`
	Brand           string    `json:"brand"`
	ProductionStage string    `json:"production_stage"`
	CurrentStage    string    `json:"current_stage"`
}

// UpdateProductionStage moves a confirmed work order only if it is still at
// CurrentStage.
func (q *Queries) UpdateProductionStage(ctx context.Context, arg UpdateProductionStageParams) (Order, error) {
	row := q.db.QueryRow(ctx, updateProductionStage,
		arg.ID,
		arg.Brand,
		arg.ProductionStage,
		arg.CurrentStage,
	)
	return scanOrder(row)
}
