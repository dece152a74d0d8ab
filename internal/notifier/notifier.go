// Package notifier is the single dispatch path for user notifications.
// Delivery policy is explicit per call: durable notifications are persisted
// before any push attempt, best-effort ones are pushed only and lost when
// the recipient is offline.
package notifier

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"github.com/greencycle/ewaste-BE/internal/db"
	"github.com/rs/zerolog/log"
)

// Policy selects how a notification is delivered.
type Policy int

const (
	// DeliverDurable persists the notification first; push is attempted
	// afterwards and is allowed to fail.
	DeliverDurable Policy = iota

	// DeliverBestEffort pushes to a live connection only. Nothing is
	// stored; an offline recipient never sees it.
	DeliverBestEffort
)

// Store is the slice of the database the dispatcher needs.
type Store interface {
	CreateNotification(ctx context.Context, arg db.CreateNotificationParams) (db.Notification, error)
	ListUserIDsByRole(ctx context.Context, role db.UserRole) ([]string, error)
}

// Pusher delivers a payload to a user's live connection, reporting whether
// one was found.
type Pusher interface {
	Push(userID string, payload []byte) bool
}

// Notification is the dispatch input, storage-agnostic.
type Notification struct {
	RecipientID   string              `json:"recipient_id"`
	SenderID      *string             `json:"sender_id,omitempty"`
	Type          db.NotificationType `json:"type"`
	Title         string              `json:"title"`
	Message       string              `json:"message"`
	ReferenceID   *string             `json:"reference_id,omitempty"`
	ReferenceKind *string             `json:"reference_kind,omitempty"`
}

type Dispatcher struct {
	store   Store
	pusher  Pusher
	discord *discordgo.Session
	// discordChannelID is the ops channel mirroring admin alerts; empty
	// disables the mirror.
	discordChannelID string
}

func NewDispatcher(store Store, pusher Pusher) *Dispatcher {
	return &Dispatcher{
		store:  store,
		pusher: pusher,
	}
}

// WithDiscord mirrors admin notifications to a Discord channel.
func (d *Dispatcher) WithDiscord(session *discordgo.Session, channelID string) *Dispatcher {
	d.discord = session
	d.discordChannelID = channelID
	return d
}

// Dispatch delivers one notification under the given policy. Errors are
// returned for the caller to log; they must never fail the operation that
// triggered the notification.
func (d *Dispatcher) Dispatch(ctx context.Context, n Notification, policy Policy) error {
	if policy == DeliverBestEffort {
		if !d.push(n) {
			log.Debug().
				Str("recipient_id", n.RecipientID).
				Str("type", string(n.Type)).
				Msg("recipient offline, best-effort notification dropped")
		}
		return nil
	}

	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("failed to generate notification ID: %w", err)
	}

	stored, err := d.store.CreateNotification(ctx, db.CreateNotificationParams{
		ID:            id,
		RecipientID:   n.RecipientID,
		SenderID:      n.SenderID,
		Type:          n.Type,
		Title:         n.Title,
		Message:       n.Message,
		ReferenceID:   n.ReferenceID,
		ReferenceKind: n.ReferenceKind,
	})
	if err != nil {
		return fmt.Errorf("failed to persist notification: %w", err)
	}

	// The record is durable at this point; a failed push just means the
	// recipient reads it from their list later.
	if payload, err := json.Marshal(stored); err == nil {
		d.pusher.Push(stored.RecipientID, payload)
	}

	return nil
}

// NotifyAdmins fans a durable notification out to every admin user and
// mirrors it to the Discord ops channel when configured. Per-recipient
// failures are logged and do not stop the fan-out.
func (d *Dispatcher) NotifyAdmins(ctx context.Context, n Notification) error {
	adminIDs, err := d.store.ListUserIDsByRole(ctx, db.UserRoleAdmin)
	if err != nil {
		return fmt.Errorf("failed to list admins: %w", err)
	}

	for _, adminID := range adminIDs {
		n.RecipientID = adminID
		if err := d.Dispatch(ctx, n, DeliverDurable); err != nil {
			log.Err(err).Str("recipient_id", adminID).Msg("failed to notify admin")
		}
	}

	if d.discord != nil && d.discordChannelID != "" {
		content := fmt.Sprintf("**%s**\n%s", n.Title, n.Message)
		if _, err := d.discord.ChannelMessageSend(d.discordChannelID, content); err != nil {
			log.Err(err).Msg("failed to mirror notification to discord")
		}
	}

	return nil
}

func (d *Dispatcher) push(n Notification) bool {
	payload, err := json.Marshal(n)
	if err != nil {
		return false
	}
	return d.pusher.Push(n.RecipientID, payload)
}
