package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type PlaceBidTxParams struct {
	ComponentID uuid.UUID
	BidderID    string
	Amount      int64
}

type PlaceBidTxResult struct {
	Bid              Bid       `json:"bid"`
	Component        Component `json:"updated_component"`
	PreviousBidderID *string   `json:"previous_bidder_id"`
	FirstBid         bool      `json:"first_bid"`
}

// PlaceBidTx appends a bid and advances the component's price, winner and
// status in a single transaction. The component row is locked first and
// every state-dependent precondition is re-validated under the lock, so two
// concurrent bids serialize and the loser fails with ErrBidTooLow instead
// of silently overwriting a higher price.
func (store *SQLStore) PlaceBidTx(ctx context.Context, arg PlaceBidTxParams) (PlaceBidTxResult, error) {
	var result PlaceBidTxResult

	err := store.ExecTx(ctx, func(qTx *Queries) error {
		component, err := qTx.GetComponentByIDForUpdate(ctx, arg.ComponentID)
		if err != nil {
			return err
		}

		if component.Status == ComponentStatusSold {
			return ErrComponentNotOnSale
		}

		if component.AuctionEndTime != nil && time.Now().After(*component.AuctionEndTime) {
			return ErrAuctionEnded
		}

		if arg.Amount <= component.CurrentPrice {
			return ErrBidTooLow
		}

		result.PreviousBidderID = component.HighestBidderID
		result.FirstBid = component.HighestBidderID == nil

		bidID, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate bid ID: %w", err)
		}

		bid, err := qTx.CreateBid(ctx, CreateBidParams{
			ID:          bidID,
			ComponentID: component.ID,
			BidderID:    arg.BidderID,
			Amount:      arg.Amount,
		})
		if err != nil {
			return fmt.Errorf("failed to create bid: %w", err)
		}
		result.Bid = bid

		updated, err := qTx.UpdateComponentBidState(ctx, UpdateComponentBidStateParams{
			ID:              component.ID,
			CurrentPrice:    arg.Amount,
			HighestBidderID: arg.BidderID,
		})
		if err != nil {
			return fmt.Errorf("failed to update component: %w", err)
		}
		result.Component = updated

		return nil
	})

	return result, err
}

type BuyNowTxParams struct {
	ComponentID uuid.UUID
	BuyerID     string
}

// BuyNowTx transitions an available component straight to sold. The status
// check runs again under the row lock so a purchase racing a first bid (or
// another purchase) cannot both succeed.
func (store *SQLStore) BuyNowTx(ctx context.Context, arg BuyNowTxParams) (Component, error) {
	var result Component

	err := store.ExecTx(ctx, func(qTx *Queries) error {
		component, err := qTx.GetComponentByIDForUpdate(ctx, arg.ComponentID)
		if err != nil {
			return err
		}

		if component.Status != ComponentStatusAvailable {
			return ErrComponentNotAvailable
		}

		result, err = qTx.MarkComponentSold(ctx, MarkComponentSoldParams{
			ID:      component.ID,
			BuyerID: arg.BuyerID,
		})
		if err != nil {
			return fmt.Errorf("failed to mark component sold: %w", err)
		}

		return nil
	})

	return result, err
}

type FinalizeAuctionTxParams struct {
	ComponentID uuid.UUID
}

type FinalizeAuctionTxResult struct {
	Component Component
	// Finalized is false when the component was no longer eligible
	// (deleted meanwhile, still collecting bids, or already sold).
	Finalized bool
	WinnerID  string
}

// FinalizeAuctionTx closes an ended auction: the highest bidder becomes the
// buyer and the component is marked sold. A no-op unless the component is
// in auction, has a highest bidder, and its end time has passed.
func (store *SQLStore) FinalizeAuctionTx(ctx context.Context, arg FinalizeAuctionTxParams) (FinalizeAuctionTxResult, error) {
	var result FinalizeAuctionTxResult

	err := store.ExecTx(ctx, func(qTx *Queries) error {
		component, err := qTx.GetComponentByIDForUpdate(ctx, arg.ComponentID)
		if err != nil {
			return err
		}
		result.Component = component

		if component.Status != ComponentStatusInAuction || component.HighestBidderID == nil {
			return nil
		}
		if component.AuctionEndTime == nil || time.Now().Before(*component.AuctionEndTime) {
			return nil
		}

		updated, err := qTx.MarkComponentSold(ctx, MarkComponentSoldParams{
			ID:      component.ID,
			BuyerID: *component.HighestBidderID,
		})
		if err != nil {
			return fmt.Errorf("failed to mark component sold: %w", err)
		}

		result.Component = updated
		result.Finalized = true
		result.WinnerID = *component.HighestBidderID

		return nil
	})

	return result, err
}
