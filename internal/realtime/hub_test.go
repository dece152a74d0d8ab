package realtime

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestClient(id string) *Client {
	return &Client{
		ID:     id,
		Send:   make(chan []byte, 4),
		topics: make(map[string]bool),
	}
}

func TestRegisterUserLastWins(t *testing.T) {
	hub := NewHub()
	first := newTestClient("c1")
	second := newTestClient("c2")

	hub.RegisterUser("alice", first)
	hub.RegisterUser("alice", second)

	require.True(t, hub.Push("alice", []byte("hello")))
	require.Len(t, second.Send, 1)
	require.Empty(t, first.Send)
}

func TestStaleDisconnectKeepsNewerRegistration(t *testing.T) {
	hub := NewHub()
	first := newTestClient("c1")
	second := newTestClient("c2")

	hub.RegisterUser("alice", first)
	hub.RegisterUser("alice", second)

	// The displaced connection finally goes away. Alice must stay online
	// through the newer one.
	hub.Unregister(first)
	require.True(t, hub.IsOnline("alice"))
	require.True(t, hub.Push("alice", []byte("still here")))

	hub.Unregister(second)
	require.False(t, hub.IsOnline("alice"))
}

func TestPushToOfflineUser(t *testing.T) {
	hub := NewHub()
	require.False(t, hub.Push("nobody", []byte("hello")))
}

func TestPushDropsSlowClient(t *testing.T) {
	hub := NewHub()
	client := newTestClient("c1")
	hub.RegisterUser("alice", client)

	for i := 0; i < cap(client.Send); i++ {
		require.True(t, hub.Push("alice", []byte("fill")))
	}

	// Buffer is full; the client is dropped instead of blocking.
	require.False(t, hub.Push("alice", []byte("overflow")))
	require.False(t, hub.IsOnline("alice"))
}

func TestBroadcastToDroppedClientNoPanic(t *testing.T) {
	hub := NewHub()
	client := newTestClient("c1")
	hub.RegisterUser("alice", client)

	for i := 0; i < cap(client.Send); i++ {
		require.True(t, hub.Push("alice", []byte("fill")))
	}
	require.False(t, hub.Push("alice", []byte("overflow")))

	// The dropped client asks to watch again before its read pump notices
	// the disconnect. Broadcasting must not panic on its closed channel.
	hub.Watch(client, "component-1")
	hub.Broadcast("component-1", []byte("new bid"))

	require.False(t, client.TrySend([]byte("late")))
	require.False(t, hub.IsOnline("alice"))
}

func TestReauthenticateReleasesPreviousUser(t *testing.T) {
	hub := NewHub()
	client := newTestClient("c1")

	hub.RegisterUser("alice", client)
	hub.RegisterUser("bob", client)

	// Alice no longer owns this connection, so her pushes must not be
	// delivered to Bob's session.
	require.False(t, hub.IsOnline("alice"))
	require.False(t, hub.Push("alice", []byte("for alice")))
	require.Empty(t, client.Send)

	require.True(t, hub.Push("bob", []byte("for bob")))
	require.Len(t, client.Send, 1)

	hub.Unregister(client)
	require.False(t, hub.Push("alice", []byte("after disconnect")))
	require.False(t, hub.Push("bob", []byte("after disconnect")))
}

func TestBroadcastReachesWatchersOnly(t *testing.T) {
	hub := NewHub()
	watcher := newTestClient("c1")
	bystander := newTestClient("c2")

	hub.RegisterUser("alice", watcher)
	hub.RegisterUser("bob", bystander)
	hub.Watch(watcher, "component-1")

	hub.Broadcast("component-1", []byte("new bid"))

	require.Len(t, watcher.Send, 1)
	require.Empty(t, bystander.Send)
}

func TestUnregisterLeavesTopics(t *testing.T) {
	hub := NewHub()
	client := newTestClient("c1")

	hub.RegisterUser("alice", client)
	hub.Watch(client, "component-1")
	hub.Unregister(client)

	// Broadcast after disconnect must not panic or deliver anywhere.
	hub.Broadcast("component-1", []byte("new bid"))
	require.False(t, hub.IsOnline("alice"))
}
