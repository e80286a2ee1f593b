package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CheckoutDetails is the financial snapshot handed to the completion
// procedures. It is sent as a single jsonb argument.
type CheckoutDetails struct {
	DeliveryDate       string           `json:"delivery_date,omitempty"`
	HomeDelivery       bool             `json:"home_delivery"`
	Express            bool             `json:"express"`
	StitchingBase      *decimal.Decimal `json:"stitching_base,omitempty"`
	FabricCharge       decimal.Decimal  `json:"fabric_charge"`
	StitchingCharge    decimal.Decimal  `json:"stitching_charge"`
	StyleCharge        decimal.Decimal  `json:"style_charge"`
	DeliveryCharge     decimal.Decimal  `json:"delivery_charge"`
	ExpressCharge      decimal.Decimal  `json:"express_charge"`
	ShelfCharge        decimal.Decimal  `json:"shelf_charge"`
	DiscountType       string           `json:"discount_type,omitempty"`
	DiscountPercentage *decimal.Decimal `json:"discount_percentage,omitempty"`
	DiscountValue      decimal.Decimal  `json:"discount_value"`
	PaymentType        string           `json:"payment_type,omitempty"`
	Paid               decimal.Decimal  `json:"paid"`
	OrderTotal         decimal.Decimal  `json:"order_total"`
	Notes              string           `json:"notes,omitempty"`
	CreatedBy          *uuid.UUID       `json:"created_by,omitempty"`
}

// ShelfItemLine is one shelf item consumed by an order.
type ShelfItemLine struct {
	ShelfItemID uuid.UUID       `json:"shelf_item_id"`
	Quantity    int32           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// FabricItemLine is the length of one internal fabric consumed by an order.
type FabricItemLine struct {
	FabricID uuid.UUID       `json:"fabric_id"`
	Length   decimal.Decimal `json:"length"`
}

func jsonArray[T any](v []T) ([]byte, error) {
	if v == nil {
		v = []T{}
	}
	return json.Marshal(v)
}

const completeWorkOrder = `-- name: CompleteWorkOrder :one
SELECT ` + orderColumns + `
FROM complete_work_order($1, $2, $3::jsonb, $4::jsonb, $5::jsonb)`

type CompleteWorkOrderParams struct {
	OrderID  uuid.UUID
	Brand    string
	Checkout CheckoutDetails
	Shelf    []ShelfItemLine
	Fabrics  []FabricItemLine
}

// CompleteWorkOrder confirms a draft work order: it applies the checkout
// details, decrements shelf and fabric stock and assigns the invoice number
// in one call.
func (q *Queries) CompleteWorkOrder(ctx context.Context, arg CompleteWorkOrderParams) (Order, error) {
	checkout, err := json.Marshal(arg.Checkout)
	if err != nil {
		return Order{}, fmt.Errorf("encode checkout: %w", err)
	}
	shelf, err := jsonArray(arg.Shelf)
	if err != nil {
		return Order{}, fmt.Errorf("encode shelf items: %w", err)
	}
	fabrics, err := jsonArray(arg.Fabrics)
	if err != nil {
		return Order{}, fmt.Errorf("encode fabric items: %w", err)
	}
	row := q.db.QueryRow(ctx, completeWorkOrder, arg.OrderID, arg.Brand, checkout, shelf, fabrics)
	return scanOrder(row)
}

const completeSalesOrder = `-- name: CompleteSalesOrder :one
SELECT ` + orderColumns + `
FROM complete_sales_order($1, $2, $3::jsonb, $4::jsonb)`

type CompleteSalesOrderParams struct {
	OrderID  uuid.UUID
	Brand    string
	Checkout CheckoutDetails
	Shelf    []ShelfItemLine
}

func (q *Queries) CompleteSalesOrder(ctx context.Context, arg CompleteSalesOrderParams) (Order, error) {
	checkout, err := json.Marshal(arg.Checkout)
	if err != nil {
		return Order{}, fmt.Errorf("encode checkout: %w", err)
	}
	shelf, err := jsonArray(arg.Shelf)
	if err != nil {
		return Order{}, fmt.Errorf("encode shelf items: %w", err)
	}
	row := q.db.QueryRow(ctx, completeSalesOrder, arg.OrderID, arg.Brand, checkout, shelf)
	return scanOrder(row)
}

const createCompleteSalesOrder = `-- name: CreateCompleteSalesOrder :one
SELECT ` + orderColumns + `
FROM create_complete_sales_order($1, $2, $3::jsonb, $4::jsonb)`

type CreateCompleteSalesOrderParams struct {
	CustomerID uuid.UUID
	Brand      string
	Checkout   CheckoutDetails
	Shelf      []ShelfItemLine
}

// CreateCompleteSalesOrder inserts and confirms a sales order in one call.
func (q *Queries) CreateCompleteSalesOrder(ctx context.Context, arg CreateCompleteSalesOrderParams) (Order, error) {
	checkout, err := json.Marshal(arg.Checkout)
	if err != nil {
		return Order{}, fmt.Errorf("encode checkout: %w", err)
	}
	shelf, err := jsonArray(arg.Shelf)
	if err != nil {
		return Order{}, fmt.Errorf("encode shelf items: %w", err)
	}
	row := q.db.QueryRow(ctx, createCompleteSalesOrder, arg.CustomerID, arg.Brand, checkout, shelf)
	return scanOrder(row)
}
