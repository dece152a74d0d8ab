package db

import (
	"context"

	"github.com/google/uuid"
)

const createShop = `
INSERT INTO shops (id, name, description, address, latitude, longitude, categories)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, name, description, address, latitude, longitude, categories, created_at
`

type CreateShopParams struct {
	ID          uuid.UUID
	Name        string
	Description *string
	Address     string
	Latitude    float64
	Longitude   float64
	Categories  []string
}

func (q *Queries) CreateShop(ctx context.Context, arg CreateShopParams) (Shop, error) {
	row := q.db.QueryRow(ctx, createShop,
		arg.ID,
		arg.Name,
		arg.Description,
		arg.Address,
		arg.Latitude,
		arg.Longitude,
		arg.Categories,
	)

	return scanShop(row)
}

const getShopByID = `
SELECT id, name, description, address, latitude, longitude, categories, created_at
FROM shops
WHERE id = $1
`

func (q *Queries) GetShopByID(ctx context.Context, id uuid.UUID) (Shop, error) {
	return scanShop(q.db.QueryRow(ctx, getShopByID, id))
}

const listShops = `
SELECT id, name, description, address, latitude, longitude, categories, created_at
FROM shops
ORDER BY created_at DESC
`

func (q *Queries) ListShops(ctx context.Context) ([]Shop, error) {
	rows, err := q.db.Query(ctx, listShops)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shops := []Shop{}
	for rows.Next() {
		s, err := scanShop(rows)
		if err != nil {
			return nil, err
		}
		shops = append(shops, s)
	}

	return shops, rows.Err()
}

const deleteShop = `
DELETE FROM shops
WHERE id = $1
`

func (q *Queries) DeleteShop(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, deleteShop, id)
	return err
}

func scanShop(row rowScanner) (Shop, error) {
	var s Shop
	err := row.Scan(
		&s.ID,
		&s.Name,
		&s.Description,
		&s.Address,
		&s.Latitude,
		&s.Longitude,
		&s.Categories,
		&s.CreatedAt,
	)
	return s, err
}
