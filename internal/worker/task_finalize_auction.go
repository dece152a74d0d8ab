package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/greencycle/ewaste-BE/internal/db"
	"github.com/greencycle/ewaste-BE/internal/notifier"
	"github.com/greencycle/ewaste-BE/internal/util"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"
)

type PayloadFinalizeAuction struct {
	ComponentID uuid.UUID `json:"component_id"`
}

// FinalizeAuctionTaskID returns the dedup task ID for a component's
// finalize task, so it can be deleted if the item sells outright first.
func FinalizeAuctionTaskID(componentID uuid.UUID) string {
	return fmt.Sprintf("auction:finalize:%s", componentID.String())
}

// DistributeTaskFinalizeAuction schedules the close of an auction. Callers
// pass asynq.ProcessAt with the auction end time.
func (distributor *RedisTaskDistributor) DistributeTaskFinalizeAuction(
	ctx context.Context,
	payload *PayloadFinalizeAuction,
	opts ...asynq.Option,
) error {
	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal task payload: %w", err)
	}

	taskID := FinalizeAuctionTaskID(payload.ComponentID)
	task := asynq.NewTask(TaskFinalizeAuction, jsonPayload, append(opts, asynq.TaskID(taskID))...)
	info, err := distributor.client.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}

	log.Info().
		Str("type", task.Type()).
		Str("task_id", taskID).
		Str("component_id", payload.ComponentID.String()).
		Str("queue", info.Queue).
		Time("process_at", info.NextProcessAt).
		Msg("auction finalize task scheduled")

	return nil
}

func (processor *RedisTaskProcessor) ProcessTaskFinalizeAuction(
	ctx context.Context,
	task *asynq.Task,
) error {
	var payload PayloadFinalizeAuction
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", asynq.SkipRetry)
	}

	log.Info().
		Str("component_id", payload.ComponentID.String()).
		Msg("processing auction finalize task")

	result, err := processor.store.FinalizeAuctionTx(ctx, db.FinalizeAuctionTxParams{
		ComponentID: payload.ComponentID,
	})
	if err != nil {
		if errors.Is(err, db.ErrRecordNotFound) {
			log.Info().
				Str("component_id", payload.ComponentID.String()).
				Msg("component not found, skipping task")
			return nil
		}
		return fmt.Errorf("failed to finalize auction: %w", err)
	}

	if !result.Finalized {
		log.Info().
			Str("component_id", payload.ComponentID.String()).
			Str("status", string(result.Component.Status)).
			Msg("component not eligible for finalization, skipping task")
		return nil
	}

	component := result.Component
	referenceID := component.ID.String()
	referenceKind := "component"

	// Winner and seller notifications are independent; a failure on one is
	// logged and must not fail the other or retry the whole task.
	err = processor.dispatcher.Dispatch(ctx, notifier.Notification{
		RecipientID:   result.WinnerID,
		Type:          db.NotificationTypeAuctionWon,
		Title:         "You won the auction!",
		Message:       fmt.Sprintf("Congratulations! You won the auction for %s at %s.", component.Name, util.FormatUSD(component.CurrentPrice)),
		ReferenceID:   &referenceID,
		ReferenceKind: &referenceKind,
	}, notifier.DeliverDurable)
	if err != nil {
		log.Err(err).
			Str("recipient_id", result.WinnerID).
			Str("component_id", referenceID).
			Msg("failed to send winner notification")
	}

	err = processor.dispatcher.Dispatch(ctx, notifier.Notification{
		RecipientID:   component.SellerID,
		Type:          db.NotificationTypeAuctionEnded,
		Title:         "Your auction has ended",
		Message:       fmt.Sprintf("The auction for %s ended with a final price of %s.", component.Name, util.FormatUSD(component.CurrentPrice)),
		ReferenceID:   &referenceID,
		ReferenceKind: &referenceKind,
	}, notifier.DeliverDurable)
	if err != nil {
		log.Err(err).
			Str("recipient_id", component.SellerID).
			Str("component_id", referenceID).
			Msg("failed to send seller notification")
	}

	if event, err := json.Marshal(map[string]any{
		"type":         "auction_ended",
		"component_id": referenceID,
		"winner_id":    result.WinnerID,
		"final_price":  component.CurrentPrice,
	}); err == nil {
		processor.broadcaster.Broadcast(referenceID, event)
	}

	log.Info().
		Str("component_id", referenceID).
		Str("winner_id", result.WinnerID).
		Int64("final_price", component.CurrentPrice).
		Msg("auction finalized")

	return nil
}
