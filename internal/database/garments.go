package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const garmentColumns = `id, order_id, position, fabric_source, fabric_id, fabric_length, style, lines,
    collar_type, collar_button, jabzour_type, jabzour_thickness,
    front_pocket_type, front_pocket_thickness, cuff_type, cuff_thickness,
    wallet, pen_holder, home_delivery, express, quantity, piece_stage,
    fabric_price, stitching_price, style_price, created_at`

func scanGarment(row interface{ Scan(...interface{}) error }) (Garment, error) {
	var i Garment
	err := row.Scan(
		&i.ID,
		&i.OrderID,
		&i.Position,
		&i.FabricSource,
		&i.FabricID,
		&i.FabricLength,
		&i.Style,
		&i.Lines,
		&i.CollarType,
		&i.CollarButton,
		&i.JabzourType,
		&i.JabzourThickness,
		&i.FrontPocketType,
		&i.FrontPocketThickness,
		&i.CuffType,
		&i.CuffThickness,
		&i.Wallet,
		&i.PenHolder,
		&i.HomeDelivery,
		&i.Express,
		&i.Quantity,
		&i.PieceStage,
		&i.FabricPrice,
		&i.StitchingPrice,
		&i.StylePrice,
		&i.CreatedAt,
	)
	return i, err
}

const insertGarment = `-- name: InsertGarment :one
INSERT INTO garments (
    order_id, position, fabric_source, fabric_id, fabric_length, style, lines,
    collar_type, collar_button, jabzour_type, jabzour_thickness,
    front_pocket_type, front_pocket_thickness, cuff_type, cuff_thickness,
    wallet, pen_holder, home_delivery, express, quantity,
    fabric_price, stitching_price, style_price
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
    $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23
)
RETURNING ` + garmentColumns

type InsertGarmentParams struct {
	OrderID              uuid.UUID      `json:"order_id"`
	Position             int32          `json:"position"`
	FabricSource         string         `json:"fabric_source"`
	FabricID             pgtype.UUID    `json:"fabric_id"`
	FabricLength         pgtype.Numeric `json:"fabric_length"`
	Style                string         `json:"style"`
	Lines                int32          `json:"lines"`
	CollarType           pgtype.Text    `json:"collar_type"`
	CollarButton         pgtype.Text    `json:"collar_button"`
	JabzourType          pgtype.Text    `json:"jabzour_type"`
	JabzourThickness     pgtype.Text    `json:"jabzour_thickness"`
	FrontPocketType      pgtype.Text    `json:"front_pocket_type"`
	FrontPocketThickness pgtype.Text    `json:"front_pocket_thickness"`
	CuffType             pgtype.Text    `json:"cuff_type"`
	CuffThickness        pgtype.Text    `json:"cuff_thickness"`
	Wallet               bool           `json:"wallet"`
	PenHolder            bool           `json:"pen_holder"`
	HomeDelivery         bool           `json:"home_delivery"`
	Express              bool           `json:"express"`
	Quantity             int32          `json:"quantity"`
	FabricPrice          pgtype.Numeric `json:"fabric_price"`
	StitchingPrice       pgtype.Numeric `json:"stitching_price"`
	StylePrice           pgtype.Numeric `json:"style_price"`
}

func (q *Queries) InsertGarment(ctx context.Context, arg InsertGarmentParams) (Garment, error) {
	row := q.db.QueryRow(ctx, insertGarment,
		arg.OrderID,
		arg.Position,
		arg.FabricSource,
		arg.FabricID,
		arg.FabricLength,
		arg.Style,
		arg.Lines,
		arg.CollarType,
		arg.CollarButton,
		arg.JabzourType,
		arg.JabzourThickness,
		arg.FrontPocketType,
		arg.FrontPocketThickness,
		arg.CuffType,
		arg.CuffThickness,
		arg.Wallet,
		arg.PenHolder,
		arg.HomeDelivery,
		arg.Express,
		arg.Quantity,
		arg.FabricPrice,
		arg.StitchingPrice,
		arg.StylePrice,
	)
	return scanGarment(row)
}

const deleteDraftGarments = `-- name: DeleteDraftGarments :exec
DELETE FROM garments g
USING orders o
WHERE g.order_id = o.id AND o.id = $1 AND o.checkout_status = 'draft'`

// DeleteDraftGarments clears the lines of a draft before they are written
// again. Garments of confirmed orders are never deleted.
func (q *Queries) DeleteDraftGarments(ctx context.Context, orderID uuid.UUID) error {
	_, err := q.db.Exec(ctx, deleteDraftGarments, orderID)
	return err
}

const listGarmentsByOrder = `-- name: ListGarmentsByOrder :many
SELECT ` + garmentColumns + ` FROM garments
WHERE order_id = $1
ORDER BY position`

func (q *Queries) ListGarmentsByOrder(ctx context.Context, orderID uuid.UUID) ([]Garment, error) {
	rows, err := q.db.Query(ctx, listGarmentsByOrder, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Garment{}
	for rows.Next() {
		i, err := scanGarment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updatePieceStage = `-- name: UpdatePieceStage :one
UPDATE garments SET piece_stage = $3
WHERE id = $1 AND order_id = $2
RETURNING ` + garmentColumns

type UpdatePieceStageParams struct {
	ID         uuid.UUID `json:"id"`
	OrderID    uuid.UUID `json:"order_id"`
	PieceStage string    `json:"piece_stage"`
}

func (q *Queries) UpdatePieceStage(ctx context.Context, arg UpdatePieceStageParams) (Garment, error) {
	row := q.db.QueryRow(ctx, updatePieceStage, arg.ID, arg.OrderID, arg.PieceStage)
	return scanGarment(row)
}
