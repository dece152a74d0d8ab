package db

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const createComponent = `
INSERT INTO components (id, slug, name, description, condition, price, current_price, status, seller_id, image_url, auction_end_time)
VALUES ($1, $2, $3, $4, $5, $6, $6, 'available', $7, $8, $9)
RETURNING id, slug, name, description, condition, price, current_price, status, seller_id, image_url, auction_end_time, highest_bidder_id, buyer_id, created_at, updated_at
`

type CreateComponentParams struct {
	ID             uuid.UUID
	Slug           string
	Name           string
	Description    *string
	Condition      ComponentCondition
	Price          int64
	SellerID       string
	ImageURL       string
	AuctionEndTime *time.Time
}

func (q *Queries) CreateComponent(ctx context.Context, arg CreateComponentParams) (Component, error) {
	row := q.db.QueryRow(ctx, createComponent,
		arg.ID,
		arg.Slug,
		arg.Name,
		arg.Description,
		arg.Condition,
		arg.Price,
		arg.SellerID,
		arg.ImageURL,
		arg.AuctionEndTime,
	)

	return scanComponent(row)
}

const componentColumns = `id, slug, name, description, condition, price, current_price, status, seller_id, image_url, auction_end_time, highest_bidder_id, buyer_id, created_at, updated_at`

const getComponentByID = `
SELECT ` + componentColumns + `
FROM components
WHERE id = $1
`

func (q *Queries) GetComponentByID(ctx context.Context, id uuid.UUID) (Component, error) {
	return scanComponent(q.db.QueryRow(ctx, getComponentByID, id))
}

const getComponentByIDForUpdate = `
SELECT ` + componentColumns + `
FROM components
WHERE id = $1
FOR UPDATE
`

// GetComponentByIDForUpdate locks the component row for the remainder of
// the enclosing transaction. Only meaningful on a tx-bound Queries.
func (q *Queries) GetComponentByIDForUpdate(ctx context.Context, id uuid.UUID) (Component, error) {
	return scanComponent(q.db.QueryRow(ctx, getComponentByIDForUpdate, id))
}

const getComponentBySlug = `
SELECT ` + componentColumns + `
FROM components
WHERE slug = $1
`

func (q *Queries) GetComponentBySlug(ctx context.Context, slug string) (Component, error) {
	return scanComponent(q.db.QueryRow(ctx, getComponentBySlug, slug))
}

const listComponentsOnSale = `
SELECT ` + componentColumns + `
FROM components
WHERE status IN ('available', 'in-auction')
ORDER BY created_at DESC
`

func (q *Queries) ListComponentsOnSale(ctx context.Context) ([]Component, error) {
	rows, err := q.db.Query(ctx, listComponentsOnSale)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	components := []Component{}
	for rows.Next() {
		c, err := scanComponent(rows)
		if err != nil {
			return nil, err
		}
		components = append(components, c)
	}

	return components, rows.Err()
}

const updateComponentBidState = `
UPDATE components
SET current_price = $2, highest_bidder_id = $3, status = 'in-auction', updated_at = now()
WHERE id = $1
RETURNING ` + componentColumns + `
`

type UpdateComponentBidStateParams struct {
	ID              uuid.UUID
	CurrentPrice    int64
	HighestBidderID string
}

func (q *Queries) UpdateComponentBidState(ctx context.Context, arg UpdateComponentBidStateParams) (Component, error) {
	row := q.db.QueryRow(ctx, updateComponentBidState, arg.ID, arg.CurrentPrice, arg.HighestBidderID)
	return scanComponent(row)
}

const markComponentSold = `
UPDATE components
SET status = 'sold', buyer_id = $2, updated_at = now()
WHERE id = $1
RETURNING ` + componentColumns + `
`

type MarkComponentSoldParams struct {
	ID      uuid.UUID
	BuyerID string
}

func (q *Queries) MarkComponentSold(ctx context.Context, arg MarkComponentSoldParams) (Component, error) {
	row := q.db.QueryRow(ctx, markComponentSold, arg.ID, arg.BuyerID)
	return scanComponent(row)
}

const deleteComponent = `
DELETE FROM components
WHERE id = $1
`

func (q *Queries) DeleteComponent(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, deleteComponent, id)
	return err
}

const createBid = `
INSERT INTO bids (id, component_id, bidder_id, amount)
VALUES ($1, $2, $3, $4)
RETURNING id, component_id, bidder_id, amount, created_at
`

type CreateBidParams struct {
	ID          uuid.UUID
	ComponentID uuid.UUID
	BidderID    string
	Amount      int64
}

func (q *Queries) CreateBid(ctx context.Context, arg CreateBidParams) (Bid, error) {
	row := q.db.QueryRow(ctx, createBid, arg.ID, arg.ComponentID, arg.BidderID, arg.Amount)

	var b Bid
	err := row.Scan(&b.ID, &b.ComponentID, &b.BidderID, &b.Amount, &b.CreatedAt)
	return b, err
}

const listBidsByComponent = `
SELECT id, component_id, bidder_id, amount, created_at
FROM bids
WHERE component_id = $1
ORDER BY created_at
`

func (q *Queries) ListBidsByComponent(ctx context.Context, componentID uuid.UUID) ([]Bid, error) {
	rows, err := q.db.Query(ctx, listBidsByComponent, componentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bids := []Bid{}
	for rows.Next() {
		var b Bid
		if err = rows.Scan(&b.ID, &b.ComponentID, &b.BidderID, &b.Amount, &b.CreatedAt); err != nil {
			return nil, err
		}
		bids = append(bids, b)
	}

	return bids, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanComponent(row rowScanner) (Component, error) {
	var c Component
	err := row.Scan(
		&c.ID,
		&c.Slug,
		&c.Name,
		&c.Description,
		&c.Condition,
		&c.Price,
		&c.CurrentPrice,
		&c.Status,
		&c.SellerID,
		&c.ImageURL,
		&c.AuctionEndTime,
		&c.HighestBidderID,
		&c.BuyerID,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	return c, err
}
