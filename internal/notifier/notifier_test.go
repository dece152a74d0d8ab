package notifier

import (
	"context"
	"testing"

	"github.com/greencycle/ewaste-BE/internal/db"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	created []db.Notification
	admins  []string
}

func (s *fakeStore) CreateNotification(_ context.Context, arg db.CreateNotificationParams) (db.Notification, error) {
	n := db.Notification{
		ID:            arg.ID,
		RecipientID:   arg.RecipientID,
		SenderID:      arg.SenderID,
		Type:          arg.Type,
		Title:         arg.Title,
		Message:       arg.Message,
		ReferenceID:   arg.ReferenceID,
		ReferenceKind: arg.ReferenceKind,
	}
	s.created = append(s.created, n)
	return n, nil
}

func (s *fakeStore) ListUserIDsByRole(_ context.Context, role db.UserRole) ([]string, error) {
	if role != db.UserRoleAdmin {
		return nil, nil
	}
	return s.admins, nil
}

type fakePusher struct {
	online map[string]bool
	pushed map[string][][]byte
}

func newFakePusher(onlineUsers ...string) *fakePusher {
	p := &fakePusher{
		online: make(map[string]bool),
		pushed: make(map[string][][]byte),
	}
	for _, userID := range onlineUsers {
		p.online[userID] = true
	}
	return p
}

func (p *fakePusher) Push(userID string, payload []byte) bool {
	if !p.online[userID] {
		return false
	}
	p.pushed[userID] = append(p.pushed[userID], payload)
	return true
}

func TestDispatchDurablePersistsThenPushes(t *testing.T) {
	store := &fakeStore{}
	pusher := newFakePusher("alice")
	dispatcher := NewDispatcher(store, pusher)

	err := dispatcher.Dispatch(context.Background(), Notification{
		RecipientID: "alice",
		Type:        db.NotificationTypeOutbid,
		Title:       "You have been outbid",
		Message:     "Someone placed a higher bid.",
	}, DeliverDurable)
	require.NoError(t, err)

	require.Len(t, store.created, 1)
	require.Equal(t, "alice", store.created[0].RecipientID)
	require.Len(t, pusher.pushed["alice"], 1)
}

func TestDispatchDurableSurvivesOfflineRecipient(t *testing.T) {
	store := &fakeStore{}
	pusher := newFakePusher()
	dispatcher := NewDispatcher(store, pusher)

	err := dispatcher.Dispatch(context.Background(), Notification{
		RecipientID: "alice",
		Type:        db.NotificationTypeSystem,
		Title:       "Purchase confirmed",
	}, DeliverDurable)
	require.NoError(t, err)

	// Persisted even though nothing was pushed.
	require.Len(t, store.created, 1)
	require.Empty(t, pusher.pushed["alice"])
}

func TestDispatchBestEffortStoresNothing(t *testing.T) {
	store := &fakeStore{}
	pusher := newFakePusher("alice")
	dispatcher := NewDispatcher(store, pusher)

	err := dispatcher.Dispatch(context.Background(), Notification{
		RecipientID: "alice",
		Type:        db.NotificationTypeForumReply,
		Title:       "New reply",
	}, DeliverBestEffort)
	require.NoError(t, err)

	require.Empty(t, store.created)
	require.Len(t, pusher.pushed["alice"], 1)
}

func TestDispatchBestEffortLostWhenOffline(t *testing.T) {
	store := &fakeStore{}
	pusher := newFakePusher()
	dispatcher := NewDispatcher(store, pusher)

	err := dispatcher.Dispatch(context.Background(), Notification{
		RecipientID: "alice",
		Type:        db.NotificationTypeForumReply,
		Title:       "New reply",
	}, DeliverBestEffort)
	require.NoError(t, err)

	require.Empty(t, store.created)
	require.Empty(t, pusher.pushed)
}

func TestNotifyAdminsFansOutToAllAdmins(t *testing.T) {
	store := &fakeStore{admins: []string{"admin1", "admin2", "admin3"}}
	pusher := newFakePusher("admin2")
	dispatcher := NewDispatcher(store, pusher)

	err := dispatcher.NotifyAdmins(context.Background(), Notification{
		Type:    db.NotificationTypeOrderPlaced,
		Title:   "New order placed",
		Message: "An item was sold.",
	})
	require.NoError(t, err)

	require.Len(t, store.created, 3)
	recipients := make(map[string]bool)
	for _, n := range store.created {
		recipients[n.RecipientID] = true
	}
	require.Equal(t, map[string]bool{"admin1": true, "admin2": true, "admin3": true}, recipients)

	// Only the online admin got a live push.
	require.Len(t, pusher.pushed, 1)
	require.Len(t, pusher.pushed["admin2"], 1)
}
