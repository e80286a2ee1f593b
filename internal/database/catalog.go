package database

import (
	"context"
)

const listEmployees = `-- name: ListEmployees :many
SELECT id, brand, name, role, phone FROM employees
WHERE brand = $1
ORDER BY name`

func (q *Queries) ListEmployees(ctx context.Context, brand string) ([]Employee, error) {
	rows, err := q.db.Query(ctx, listEmployees, brand)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Employee{}
	for rows.Next() {
		var i Employee
		if err := rows.Scan(&i.ID, &i.Brand, &i.Name, &i.Role, &i.Phone); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listCampaigns = `-- name: ListCampaigns :many
SELECT id, brand, name, active, starts_at, ends_at FROM campaigns
WHERE brand = $1 AND (NOT $2::boolean OR active)
ORDER BY starts_at DESC NULLS LAST, name`

func (q *Queries) ListCampaigns(ctx context.Context, brand string, activeOnly bool) ([]Campaign, error) {
	rows, err := q.db.Query(ctx, listCampaigns, brand, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Campaign{}
	for rows.Next() {
		var i Campaign
		if err := rows.Scan(&i.ID, &i.Brand, &i.Name, &i.Active, &i.StartsAt, &i.EndsAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listStyles = `-- name: ListStyles :many
SELECT id, brand, code, name, image_url FROM styles
WHERE brand = $1
ORDER BY code`

func (q *Queries) ListStyles(ctx context.Context, brand string) ([]Style, error) {
	rows, err := q.db.Query(ctx, listStyles, brand)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Style{}
	for rows.Next() {
		var i Style
		if err := rows.Scan(&i.ID, &i.Brand, &i.Code, &i.Name, &i.ImageURL); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
