package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const shelfItemColumns = `id, brand, product_type, brand_name, stock, unit_price, updated_at`

func scanShelfItem(row interface{ Scan(...interface{}) error }) (ShelfItem, error) {
	var i ShelfItem
	err := row.Scan(
		&i.ID,
		&i.Brand,
		&i.ProductType,
		&i.BrandName,
		&i.Stock,
		&i.UnitPrice,
		&i.UpdatedAt,
	)
	return i, err
}

const getShelfItem = `-- name: GetShelfItem :one
SELECT ` + shelfItemColumns + ` FROM shelf_items
WHERE id = $1 AND brand = $2`

type GetShelfItemParams struct {
	ID    uuid.UUID `json:"id"`
	Brand string    `json:"brand"`
}

func (q *Queries) GetShelfItem(ctx context.Context, arg GetShelfItemParams) (ShelfItem, error) {
	row := q.db.QueryRow(ctx, getShelfItem, arg.ID, arg.Brand)
	return scanShelfItem(row)
}

type ListShelfItemsParams struct {
	Brand       string
	ProductType string
	Search      string
	InStock     bool
	Limit       int32
	Offset      int32
}

func (q *Queries) ListShelfItems(ctx context.Context, arg ListShelfItemsParams) ([]ShelfItem, int64, error) {
	f := NewFilter("brand", arg.Brand).ILike(arg.Search, "product_type", "brand_name")
	if arg.ProductType != "" {
		f.Eq("product_type", arg.ProductType)
	}
	if arg.InStock {
		f.Gte("stock", 1)
	}

	var total int64
	if err := q.db.QueryRow(ctx, "SELECT COUNT(*) FROM shelf_items "+f.Where(), f.Args()...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query, args := f.Page("SELECT "+shelfItemColumns+" FROM shelf_items "+f.Where()+" ORDER BY product_type, brand_name", arg.Limit, arg.Offset)
	rows, err := q.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items := []ShelfItem{}
	for rows.Next() {
		i, err := scanShelfItem(rows)
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

const upsertShelfItem = `-- name: UpsertShelfItem :one
INSERT INTO shelf_items (brand, product_type, brand_name, stock, unit_price)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (brand, product_type, brand_name) DO UPDATE SET
    stock = EXCLUDED.stock,
    unit_price = EXCLUDED.unit_price,
    updated_at = now()
RETURNING ` + shelfItemColumns

type UpsertShelfItemParams struct {
	Brand       string         `json:"brand"`
	ProductType string         `json:"product_type"`
	BrandName   string         `json:"brand_name"`
	Stock       int32          `json:"stock"`
	UnitPrice   pgtype.Numeric `json:"unit_price"`
}

func (q *Queries) UpsertShelfItem(ctx context.Context, arg UpsertShelfItemParams) (ShelfItem, error) {
	row := q.db.QueryRow(ctx, upsertShelfItem,
		arg.Brand,
		arg.ProductType,
		arg.BrandName,
		arg.Stock,
		arg.UnitPrice,
	)
	return scanShelfItem(row)
}

const setShelfStock = `-- name: SetShelfStock :one
UPDATE shelf_items SET stock = $3, updated_at = now()
WHERE id = $1 AND brand = $2 AND stock = $4 AND $3 >= 0
RETURNING ` + shelfItemColumns

type SetShelfStockParams struct {
	ID       uuid.UUID `json:"id"`
	Brand    string    `json:"brand"`
	Stock    int32     `json:"stock"`
	Expected int32     `json:"expected"`
}

// SetShelfStock writes the new stock only while the row still holds
// Expected; a concurrent change yields pgx.ErrNoRows.
func (q *Queries) SetShelfStock(ctx context.Context, arg SetShelfStockParams) (ShelfItem, error) {
	row := q.db.QueryRow(ctx, setShelfStock, arg.ID, arg.Brand, arg.Stock, arg.Expected)
	return scanShelfItem(row)
}

const listOrderShelfLines = `-- name: ListOrderShelfLines :many
SELECT id, order_id, shelf_item_id, product_type, brand_name, quantity, unit_price
FROM order_shelf_lines
WHERE order_id = $1
ORDER BY product_type, brand_name`

func (q *Queries) ListOrderShelfLines(ctx context.Context, orderID uuid.UUID) ([]OrderShelfLine, error) {
	rows, err := q.db.Query(ctx, listOrderShelfLines, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []OrderShelfLine{}
	for rows.Next() {
		var i OrderShelfLine
		if err := rows.Scan(
			&i.ID,
			&i.OrderID,
			&i.ShelfItemID,
			&i.ProductType,
			&i.BrandName,
			&i.Quantity,
			&i.UnitPrice,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const fabricColumns = `id, brand, name, color, stock_length, price_per_meter, updated_at`

func scanFabric(row interface{ Scan(...interface{}) error }) (Fabric, error) {
	var i Fabric
	err := row.Scan(
		&i.ID,
		&i.Brand,
		&i.Name,
		&i.Color,
		&i.StockLength,
		&i.PricePerMeter,
		&i.UpdatedAt,
	)
	return i, err
}

const getFabric = `-- name: GetFabric :one
SELECT ` + fabricColumns + ` FROM fabrics
WHERE id = $1 AND brand = $2`

type GetFabricParams struct {
	ID    uuid.UUID `json:"id"`
	Brand string    `json:"brand"`
}

func (q *Queries) GetFabric(ctx context.Context, arg GetFabricParams) (Fabric, error) {
	row := q.db.QueryRow(ctx, getFabric, arg.ID, arg.Brand)
	return scanFabric(row)
}

type ListFabricsParams struct {
	Brand  string
	Search string
	Limit  int32
	Offset int32
}

func (q *Queries) ListFabrics(ctx context.Context, arg ListFabricsParams) ([]Fabric, int64, error) {
	f := NewFilter("brand", arg.Brand).ILike(arg.Search, "name", "color")

	var total int64
	if err := q.db.QueryRow(ctx, "SELECT COUNT(*) FROM fabrics "+f.Where(), f.Args()...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query, args := f.Page("SELECT "+fabricColumns+" FROM fabrics "+f.Where()+" ORDER BY name", arg.Limit, arg.Offset)
	rows, err := q.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items := []Fabric{}
	for rows.Next() {
		i, err := scanFabric(rows)
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

const setFabricStock = `-- name: SetFabricStock :one
UPDATE fabrics SET stock_length = $3, updated_at = now()
WHERE id = $1 AND brand = $2 AND stock_length = $4 AND $3 >= 0
RETURNING ` + fabricColumns

type SetFabricStockParams struct {
	ID          uuid.UUID      `json:"id"`
	Brand       string         `json:"brand"`
	StockLength pgtype.Numeric `json:"stock_length"`
	Expected    pgtype.Numeric `json:"expected"`
}

func (q *Queries) SetFabricStock(ctx context.Context, arg SetFabricStockParams) (Fabric, error) {
	row := q.db.QueryRow(ctx, setFabricStock, arg.ID, arg.Brand, arg.StockLength, arg.Expected)
	return scanFabric(row)
}
