package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/greencycle/ewaste-BE/internal/db"
	"github.com/greencycle/ewaste-BE/internal/notifier"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"
)

// PayloadSendNotification contains all data of the task that we want to
// store in Redis.
type PayloadSendNotification struct {
	RecipientID   string  `json:"recipient_id"`
	SenderID      *string `json:"sender_id,omitempty"`
	Type          string  `json:"type"`
	Title         string  `json:"title"`
	Message       string  `json:"message"`
	ReferenceID   string  `json:"reference_id,omitempty"`
	ReferenceKind string  `json:"reference_kind,omitempty"`
	// AllAdmins routes the notification to every admin instead of a
	// single recipient.
	AllAdmins bool `json:"all_admins,omitempty"`
}

func (distributor *RedisTaskDistributor) DistributeTaskSendNotification(
	ctx context.Context,
	payload *PayloadSendNotification,
	opts ...asynq.Option,
) error {
	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal task payload: %w", err)
	}

	task := asynq.NewTask(TaskSendNotification, jsonPayload, opts...)
	info, err := distributor.client.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}

	log.Info().Str("type", task.Type()).Bytes("payload", task.Payload()).
		Str("queue", info.Queue).Int("max_retry", info.MaxRetry).Msg("task enqueued")

	return nil
}

func (processor *RedisTaskProcessor) ProcessTaskSendNotification(
	ctx context.Context,
	task *asynq.Task,
) error {
	var payload PayloadSendNotification
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", asynq.SkipRetry)
	}

	n := notifier.Notification{
		RecipientID: payload.RecipientID,
		SenderID:    payload.SenderID,
		Type:        db.NotificationType(payload.Type),
		Title:       payload.Title,
		Message:     payload.Message,
	}
	if payload.ReferenceID != "" {
		n.ReferenceID = &payload.ReferenceID
	}
	if payload.ReferenceKind != "" {
		n.ReferenceKind = &payload.ReferenceKind
	}

	var err error
	if payload.AllAdmins {
		err = processor.dispatcher.NotifyAdmins(ctx, n)
	} else {
		err = processor.dispatcher.Dispatch(ctx, n, notifier.DeliverDurable)
	}
	if err != nil {
		return err
	}

	log.Info().Str("type", task.Type()).Str("recipient_id", payload.RecipientID).
		Str("notification_type", payload.Type).Msg("task processed")

	return nil
}
