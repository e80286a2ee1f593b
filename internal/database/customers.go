package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const customerColumns = `id, brand, name, phone, email, nationality, created_at, updated_at`

func scanCustomer(row interface{ Scan(...interface{}) error }) (Customer, error) {
	var i Customer
	err := row.Scan(
		&i.ID,
		&i.Brand,
		&i.Name,
		&i.Phone,
		&i.Email,
		&i.Nationality,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createCustomer = `-- name: CreateCustomer :one
INSERT INTO customers (brand, name, phone, email, nationality)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + customerColumns

type CreateCustomerParams struct {
	Brand       string      `json:"brand"`
	Name        string      `json:"name"`
	Phone       string      `json:"phone"`
	Email       pgtype.Text `json:"email"`
	Nationality pgtype.Text `json:"nationality"`
}

func (q *Queries) CreateCustomer(ctx context.Context, arg CreateCustomerParams) (Customer, error) {
	row := q.db.QueryRow(ctx, createCustomer,
		arg.Brand,
		arg.Name,
		arg.Phone,
		arg.Email,
		arg.Nationality,
	)
	return scanCustomer(row)
}

const getCustomer = `-- name: GetCustomer :one
SELECT ` + customerColumns + ` FROM customers
WHERE id = $1 AND brand = $2`

type GetCustomerParams struct {
	ID    uuid.UUID `json:"id"`
	Brand string    `json:"brand"`
}

func (q *Queries) GetCustomer(ctx context.Context, arg GetCustomerParams) (Customer, error) {
	row := q.db.QueryRow(ctx, getCustomer, arg.ID, arg.Brand)
	return scanCustomer(row)
}

type ListCustomersParams struct {
	Brand  string
	Search string
	Phone  string
	Limit  int32
	Offset int32
}

// ListCustomers returns a page of customers plus the total number of matches.
func (q *Queries) ListCustomers(ctx context.Context, arg ListCustomersParams) ([]Customer, int64, error) {
	f := NewFilter("brand", arg.Brand).ILike(arg.Search, "name", "phone", "email")
	if arg.Phone != "" {
		f.Eq("phone", arg.Phone)
	}

	var total int64
	if err := q.db.QueryRow(ctx, "SELECT COUNT(*) FROM customers "+f.Where(), f.Args()...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query, args := f.Page("SELECT "+customerColumns+" FROM customers "+f.Where()+" ORDER BY name, created_at", arg.Limit, arg.Offset)
	rows, err := q.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items := []Customer{}
	for rows.Next() {
		i, err := scanCustomer(rows)
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

const updateCustomer = `-- name: UpdateCustomer :one
UPDATE customers SET
    name = $3,
    phone = $4,
    email = $5,
    nationality = $6,
    updated_at = now()
WHERE id = $1 AND brand = $2
RETURNING ` + customerColumns

type UpdateCustomerParams struct {
	ID          uuid.UUID   `json:"id"`
	Brand       string      `json:"brand"`
	Name        string      `json:"name"`
	Phone       string      `json:"phone"`
	Email       pgtype.Text `json:"email"`
	Nationality pgtype.Text `json:"nationality"`
}

func (q *Queries) UpdateCustomer(ctx context.Context, arg UpdateCustomerParams) (Customer, error) {
	row := q.db.QueryRow(ctx, updateCustomer,
		arg.ID,
		arg.Brand,
		arg.Name,
		arg.Phone,
		arg.Email,
		arg.Nationality,
	)
	return scanCustomer(row)
}

const deleteCustomer = `-- name: DeleteCustomer :one
DELETE FROM customers
WHERE id = $1 AND brand = $2
RETURNING id`

type DeleteCustomerParams struct {
	ID    uuid.UUID `json:"id"`
	Brand string    `json:"brand"`
}

func (q *Queries) DeleteCustomer(ctx context.Context, arg DeleteCustomerParams) (uuid.UUID, error) {
	var id uuid.UUID
	err := q.db.QueryRow(ctx, deleteCustomer, arg.ID, arg.Brand).Scan(&id)
	return id, err
}
