package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const listPrices = `-- name: ListPrices :many
SELECT key, value, description FROM prices
ORDER BY key`

func (q *Queries) ListPrices(ctx context.Context) ([]Price, error) {
	rows, err := q.db.Query(ctx, listPrices)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Price{}
	for rows.Next() {
		var i Price
		if err := rows.Scan(&i.Key, &i.Value, &i.Description); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const upsertPrice = `-- name: UpsertPrice :one
INSERT INTO prices (key, value, description)
VALUES ($1, $2, $3)
ON CONFLICT (key) DO UPDATE SET
    value = EXCLUDED.value,
    description = COALESCE(EXCLUDED.description, prices.description)
RETURNING key, value, description`

type UpsertPriceParams struct {
	Key         string         `json:"key"`
	Value       pgtype.Numeric `json:"value"`
	Description pgtype.Text    `json:"description"`
}

func (q *Queries) UpsertPrice(ctx context.Context, arg UpsertPriceParams) (Price, error) {
	row := q.db.QueryRow(ctx, upsertPrice, arg.Key, arg.Value, arg.Description)
	var i Price
	err := row.Scan(&i.Key, &i.Value, &i.Description)
	return i, err
}

const deletePrice = `-- name: DeletePrice :one
DELETE FROM prices WHERE key = $1
RETURNING key`

func (q *Queries) DeletePrice(ctx context.Context, key string) (string, error) {
	var k string
	err := q.db.QueryRow(ctx, deletePrice, key).Scan(&k)
	return k, err
}
