package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

const listBidDetailsByComponent = `
SELECT b.id, b.component_id, b.bidder_id, b.amount, b.created_at, u.name
FROM bids b
JOIN users u ON u.id = b.bidder_id
WHERE b.component_id = $1
ORDER BY b.created_at
`

func (q *Queries) listBidDetailsByComponent(ctx context.Context, componentID uuid.UUID) ([]BidDetails, error) {
	rows, err := q.db.Query(ctx, listBidDetailsByComponent, componentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bids := []BidDetails{}
	for rows.Next() {
		var b BidDetails
		if err = rows.Scan(&b.ID, &b.ComponentID, &b.BidderID, &b.Amount, &b.CreatedAt, &b.BidderName); err != nil {
			return nil, err
		}
		bids = append(bids, b)
	}

	return bids, rows.Err()
}

// GetComponentDetailsByID resolves seller and bidder identifiers to display
// names. A read-time join for presentation, not a data-model concern.
func (store *SQLStore) GetComponentDetailsByID(ctx context.Context, id uuid.UUID) (ComponentDetails, error) {
	var details ComponentDetails

	component, err := store.GetComponentByID(ctx, id)
	if err != nil {
		return details, err
	}

	seller, err := store.GetUserByID(ctx, component.SellerID)
	if err != nil {
		return details, err
	}

	bids, err := store.listBidDetailsByComponent(ctx, component.ID)
	if err != nil {
		return details, err
	}

	details = ComponentDetails{
		Component:  component,
		SellerName: seller.Name,
		Bids:       bids,
	}

	if component.HighestBidderID != nil {
		bidder, err := store.GetUserByID(ctx, *component.HighestBidderID)
		if err != nil && !errors.Is(err, ErrRecordNotFound) {
			return details, err
		}
		if err == nil {
			details.HighestBidderName = &bidder.Name
		}
	}

	return details, nil
}
