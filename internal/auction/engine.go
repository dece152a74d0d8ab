package auction

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/greencycle/ewaste-BE/internal/db"
	"github.com/greencycle/ewaste-BE/internal/mailer"
	"github.com/greencycle/ewaste-BE/internal/util"
	"github.com/greencycle/ewaste-BE/internal/validator"
	"github.com/greencycle/ewaste-BE/internal/worker"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"
)

// Store is the slice of the database the engine needs.
type Store interface {
	GetComponentByID(ctx context.Context, id uuid.UUID) (db.Component, error)
	GetComponentDetailsByID(ctx context.Context, id uuid.UUID) (db.ComponentDetails, error)
	CreateComponent(ctx context.Context, arg db.CreateComponentParams) (db.Component, error)
	DeleteComponent(ctx context.Context, id uuid.UUID) error
	GetUserByID(ctx context.Context, id string) (db.User, error)
	PlaceBidTx(ctx context.Context, arg db.PlaceBidTxParams) (db.PlaceBidTxResult, error)
	BuyNowTx(ctx context.Context, arg db.BuyNowTxParams) (db.Component, error)
}

// Broadcaster fans live events out to the connections watching an item.
type Broadcaster interface {
	Broadcast(topic string, payload []byte)
}

// Engine owns listing lifecycle, bidding and direct purchase. All state
// transitions go through row-locked transactions in the store; everything
// after the commit (notifications, broadcasts, email) is fire-and-forget.
type Engine struct {
	store       Store
	distributor worker.TaskDistributor
	inspector   worker.TaskInspector
	broadcaster Broadcaster
	mailer      mailer.Sender // nil disables purchase receipts
}

func NewEngine(store Store, distributor worker.TaskDistributor, inspector worker.TaskInspector, broadcaster Broadcaster, mailSender mailer.Sender) *Engine {
	return &Engine{
		store:       store,
		distributor: distributor,
		inspector:   inspector,
		broadcaster: broadcaster,
		mailer:      mailSender,
	}
}

// PlaceBid validates and records a bid on a component. Preconditions are
// checked in a fixed order so callers always see the most specific failure;
// the state-dependent ones run again inside PlaceBidTx under the row lock.
func (e *Engine) PlaceBid(ctx context.Context, componentID uuid.UUID, bidderID string, amount int64) (db.ComponentDetails, error) {
	component, err := e.store.GetComponentByID(ctx, componentID)
	if err != nil {
		if errors.Is(err, db.ErrRecordNotFound) {
			return db.ComponentDetails{}, fmt.Errorf("component not found: %w", ErrNotFound)
		}
		return db.ComponentDetails{}, err
	}

	if component.Status != db.ComponentStatusAvailable && component.Status != db.ComponentStatusInAuction {
		return db.ComponentDetails{}, fmt.Errorf("component is not for sale: %w", ErrInvalidState)
	}

	if component.SellerID == bidderID {
		return db.ComponentDetails{}, fmt.Errorf("cannot bid on your own item: %w", ErrForbidden)
	}

	if component.AuctionEndTime != nil && time.Now().After(*component.AuctionEndTime) {
		return db.ComponentDetails{}, fmt.Errorf("auction has ended: %w", ErrInvalidState)
	}

	if amount <= 0 || amount <= component.CurrentPrice {
		return db.ComponentDetails{}, fmt.Errorf("bid must be higher than the current price of %s: %w",
			util.FormatUSD(component.CurrentPrice), ErrInvalidInput)
	}

	result, err := e.store.PlaceBidTx(ctx, db.PlaceBidTxParams{
		ComponentID: componentID,
		BidderID:    bidderID,
		Amount:      amount,
	})
	if err != nil {
		switch {
		case errors.Is(err, db.ErrRecordNotFound):
			return db.ComponentDetails{}, fmt.Errorf("component not found: %w", ErrNotFound)
		case errors.Is(err, db.ErrComponentNotOnSale):
			return db.ComponentDetails{}, fmt.Errorf("component is not for sale: %w", ErrInvalidState)
		case errors.Is(err, db.ErrAuctionEnded):
			return db.ComponentDetails{}, fmt.Errorf("auction has ended: %w", ErrInvalidState)
		case errors.Is(err, db.ErrBidTooLow):
			return db.ComponentDetails{}, fmt.Errorf("someone may have placed a higher bid: %w", ErrInvalidInput)
		default:
			return db.ComponentDetails{}, fmt.Errorf("failed to place bid: %w", err)
		}
	}

	e.afterBid(result)

	return e.store.GetComponentDetailsByID(ctx, componentID)
}

// afterBid runs the post-commit side effects of a successful bid. Failures
// are logged; the bid itself already stands.
func (e *Engine) afterBid(result db.PlaceBidTxResult) {
	ctx := context.Background()
	component := result.Component

	if prev := result.PreviousBidderID; prev != nil && *prev != result.Bid.BidderID {
		err := e.distributor.DistributeTaskSendNotification(ctx, &worker.PayloadSendNotification{
			RecipientID: *prev,
			SenderID:    &result.Bid.BidderID,
			Type:        string(db.NotificationTypeOutbid),
			Title:       "You have been outbid",
			Message: fmt.Sprintf("Someone placed a higher bid of %s on %s.",
				util.FormatUSD(result.Bid.Amount), component.Name),
			ReferenceID:   component.ID.String(),
			ReferenceKind: "component",
		}, asynq.Queue(worker.QueueCritical))
		if err != nil {
			log.Err(err).Str("recipient_id", *prev).Msg("failed to enqueue outbid notification")
		}
	}

	if event, err := json.Marshal(map[string]any{
		"type":          "new_bid",
		"component_id":  component.ID.String(),
		"bidder_id":     result.Bid.BidderID,
		"amount":        result.Bid.Amount,
		"current_price": component.CurrentPrice,
	}); err == nil {
		e.broadcaster.Broadcast(component.ID.String(), event)
	}

	if result.FirstBid && component.AuctionEndTime != nil {
		err := e.distributor.DistributeTaskFinalizeAuction(ctx, &worker.PayloadFinalizeAuction{
			ComponentID: component.ID,
		}, asynq.ProcessAt(*component.AuctionEndTime), asynq.Queue(worker.QueueDefault))
		if err != nil {
			log.Err(err).Str("component_id", component.ID.String()).Msg("failed to schedule auction finalize task")
		}
	}
}

// BuyNow sells an available component directly to the buyer.
func (e *Engine) BuyNow(ctx context.Context, componentID uuid.UUID, buyerID string) (db.Component, error) {
	component, err := e.store.GetComponentByID(ctx, componentID)
	if err != nil {
		if errors.Is(err, db.ErrRecordNotFound) {
			return db.Component{}, fmt.Errorf("component not found: %w", ErrNotFound)
		}
		return db.Component{}, err
	}

	if component.Status != db.ComponentStatusAvailable {
		return db.Component{}, fmt.Errorf("component is not available for purchase: %w", ErrInvalidState)
	}

	if component.SellerID == buyerID {
		return db.Component{}, fmt.Errorf("cannot purchase your own item: %w", ErrForbidden)
	}

	sold, err := e.store.BuyNowTx(ctx, db.BuyNowTxParams{
		ComponentID: componentID,
		BuyerID:     buyerID,
	})
	if err != nil {
		switch {
		case errors.Is(err, db.ErrRecordNotFound):
			return db.Component{}, fmt.Errorf("component not found: %w", ErrNotFound)
		case errors.Is(err, db.ErrComponentNotAvailable):
			return db.Component{}, fmt.Errorf("component is not available for purchase: %w", ErrInvalidState)
		default:
			return db.Component{}, fmt.Errorf("failed to purchase component: %w", err)
		}
	}

	e.afterPurchase(sold, buyerID)

	return sold, nil
}

// afterPurchase runs the post-commit side effects of a direct purchase,
// each independent of the others.
func (e *Engine) afterPurchase(component db.Component, buyerID string) {
	ctx := context.Background()
	referenceID := component.ID.String()

	err := e.distributor.DistributeTaskSendNotification(ctx, &worker.PayloadSendNotification{
		SenderID: &buyerID,
		Type:     string(db.NotificationTypeOrderPlaced),
		Title:    "New order placed",
		Message: fmt.Sprintf("%s was sold for %s.",
			component.Name, util.FormatUSD(component.CurrentPrice)),
		ReferenceID:   referenceID,
		ReferenceKind: "component",
		AllAdmins:     true,
	}, asynq.Queue(worker.QueueCritical))
	if err != nil {
		log.Err(err).Str("component_id", referenceID).Msg("failed to enqueue admin order notification")
	}

	err = e.distributor.DistributeTaskSendNotification(ctx, &worker.PayloadSendNotification{
		RecipientID: buyerID,
		Type:        string(db.NotificationTypeSystem),
		Title:       "Purchase confirmed",
		Message: fmt.Sprintf("You bought %s for %s. The seller will arrange shipping.",
			component.Name, util.FormatUSD(component.CurrentPrice)),
		ReferenceID:   referenceID,
		ReferenceKind: "component",
	}, asynq.Queue(worker.QueueCritical))
	if err != nil {
		log.Err(err).Str("recipient_id", buyerID).Msg("failed to enqueue purchase confirmation")
	}

	if e.mailer != nil {
		go func() {
			buyer, err := e.store.GetUserByID(context.Background(), buyerID)
			if err != nil {
				log.Err(err).Str("buyer_id", buyerID).Msg("failed to load buyer for receipt email")
				return
			}
			if err = e.mailer.SendPurchaseReceipt(buyer.Email, component); err != nil {
				log.Err(err).Str("buyer_id", buyerID).Msg("failed to send receipt email")
			}
		}()
	}
}

type CreateListingParams struct {
	Name           string
	Description    *string
	Condition      db.ComponentCondition
	Price          int64
	ImageURL       string
	AuctionEndTime *time.Time
}

// CreateListing creates a new available component owned by the seller.
func (e *Engine) CreateListing(ctx context.Context, sellerID string, arg CreateListingParams) (db.Component, error) {
	if err := validator.ValidateString(arg.Name, 3, 200); err != nil {
		return db.Component{}, fmt.Errorf("name %s: %w", err, ErrInvalidInput)
	}

	switch arg.Condition {
	case db.ComponentConditionNew, db.ComponentConditionUsed, db.ComponentConditionRefurbished, db.ComponentConditionForParts:
	default:
		return db.Component{}, fmt.Errorf("unknown condition %q: %w", arg.Condition, ErrInvalidInput)
	}

	if err := validator.ValidatePrice(arg.Price); err != nil {
		return db.Component{}, fmt.Errorf("price %s: %w", err, ErrInvalidInput)
	}

	if arg.AuctionEndTime != nil && arg.AuctionEndTime.Before(time.Now()) {
		return db.Component{}, fmt.Errorf("auction end time must be in the future: %w", ErrInvalidInput)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return db.Component{}, fmt.Errorf("failed to generate component ID: %w", err)
	}

	component, err := e.store.CreateComponent(ctx, db.CreateComponentParams{
		ID:             id,
		Slug:           util.GenerateRandomSlug(arg.Name),
		Name:           arg.Name,
		Description:    arg.Description,
		Condition:      arg.Condition,
		Price:          arg.Price,
		SellerID:       sellerID,
		ImageURL:       arg.ImageURL,
		AuctionEndTime: arg.AuctionEndTime,
	})
	if err != nil {
		return db.Component{}, fmt.Errorf("failed to create listing: %w", err)
	}

	return component, nil
}

// DeleteListing removes a component and its bids, returning the deleted
// row so the caller can clean up attached resources. Only the seller or an
// admin may delete; status is deliberately not checked, so a sold or
// mid-auction listing can still be removed.
func (e *Engine) DeleteListing(ctx context.Context, requesterID string, requesterRole db.UserRole, componentID uuid.UUID) (db.Component, error) {
	component, err := e.store.GetComponentByID(ctx, componentID)
	if err != nil {
		if errors.Is(err, db.ErrRecordNotFound) {
			return db.Component{}, fmt.Errorf("component not found: %w", ErrNotFound)
		}
		return db.Component{}, err
	}

	if component.SellerID != requesterID && requesterRole != db.UserRoleAdmin {
		return db.Component{}, fmt.Errorf("only the seller or an admin can delete a listing: %w", ErrForbidden)
	}

	if err = e.store.DeleteComponent(ctx, componentID); err != nil {
		return db.Component{}, fmt.Errorf("failed to delete listing: %w", err)
	}

	// A pending finalize task for this item is now pointless; removing it
	// is best-effort since processing a missing component is a no-op. The
	// lookup avoids noisy delete errors when the task already ran.
	if component.Status == db.ComponentStatusInAuction {
		taskID := worker.FinalizeAuctionTaskID(componentID)
		if info, err := e.inspector.GetTaskInfo(ctx, worker.QueueDefault, taskID); err == nil && info != nil {
			if err = e.inspector.DeleteTask(ctx, worker.QueueDefault, taskID); err != nil {
				log.Warn().Err(err).Str("task_id", taskID).Msg("failed to delete finalize task")
			}
		}
	}

	return component, nil
}
