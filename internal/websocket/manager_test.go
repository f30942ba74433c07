package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"devconnector-server/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startManager(t *testing.T, maxConn int) (*Manager, context.CancelFunc) {
	t.Helper()
	m := NewManager(Options{
		MaxConnPerUser: maxConn,
		MaxMessageSize: 4096,
		WriteWait:      time.Second,
		PongWait:       time.Minute,
		PingPeriod:     50 * time.Second,
	}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	go m.Run(ctx)
	t.Cleanup(cancel)
	return m, cancel
}

func receive(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case b, ok := <-c.Send:
		require.True(t, ok, "send channel closed")
		var msg Message
		require.NoError(t, json.Unmarshal(b, &msg))
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message received")
	}
	return Message{}
}

func TestManager_BroadcastReachesEveryClient(t *testing.T) {
	m, _ := startManager(t, 5)

	alice := NewClient("c1", "alice", nil, m)
	bob := NewClient("c2", "bob", nil, m)
	m.Register <- alice
	m.Register <- bob

	m.LikesUpdated("post-1", []domain.Like{{ID: "l1", UserID: "bob"}})

	for _, c := range []*Client{alice, bob} {
		msg := receive(t, c)
		assert.Equal(t, TypeLikesUpdated, msg.Type)

		var payload LikesPayload
		require.NoError(t, msg.UnmarshalPayload(&payload))
		assert.Equal(t, "post-1", payload.PostID)
		require.Len(t, payload.Likes, 1)
		assert.Equal(t, "bob", payload.Likes[0].UserID)
	}
}

func TestManager_PostEvents(t *testing.T) {
	m, _ := startManager(t, 5)
	c := NewClient("c1", "alice", nil, m)
	m.Register <- c

	m.PostCreated(&domain.Post{ID: "p1", Text: "hello"})
	msg := receive(t, c)
	assert.Equal(t, TypePostCreated, msg.Type)
	var post domain.Post
	require.NoError(t, msg.UnmarshalPayload(&post))
	assert.Equal(t, "p1", post.ID)

	m.PostDeleted("p1")
	msg = receive(t, c)
	assert.Equal(t, TypePostDeleted, msg.Type)
	assert.JSONEq(t, `{"id":"p1"}`, string(msg.Payload))

	m.CommentsUpdated("p1", []domain.Comment{})
	msg = receive(t, c)
	assert.Equal(t, TypeCommentsUpdated, msg.Type)
	assert.JSONEq(t, `{"id":"p1","comments":[]}`, string(msg.Payload))
}

func TestManager_PingGetsPong(t *testing.T) {
	m, _ := startManager(t, 5)
	c := NewClient("c1", "alice", nil, m)
	m.Register <- c

	m.HandleMessage <- &ClientMessage{Client: c, Message: []byte(`{"type":"ping"}`)}

	msg := receive(t, c)
	assert.Equal(t, TypePong, msg.Type)
}

func TestManager_ConnectionCap(t *testing.T) {
	m, _ := startManager(t, 1)

	first := NewClient("c1", "alice", nil, m)
	second := NewClient("c2", "alice", nil, m)
	m.Register <- first
	m.Register <- second

	select {
	case _, ok := <-second.Send:
		assert.False(t, ok, "over-cap client should be closed")
	case <-time.After(time.Second):
		t.Fatal("over-cap client was not closed")
	}
	assert.Equal(t, 1, m.UserConnections("alice"))
}

func TestManager_Unregister(t *testing.T) {
	m, _ := startManager(t, 5)
	c := NewClient("c1", "alice", nil, m)
	m.Register <- c
	m.Unregister <- c

	require.Eventually(t, func() bool {
		return m.UserConnections("alice") == 0
	}, time.Second, 10*time.Millisecond)

	_, ok := <-c.Send
	assert.False(t, ok)
}

func TestManager_ShutdownClosesClients(t *testing.T) {
	m, cancel := startManager(t, 5)
	c := NewClient("c1", "alice", nil, m)
	m.Register <- c

	cancel()

	select {
	case <-m.Done():
	case <-time.After(time.Second):
		t.Fatal("manager did not stop")
	}
	_, ok := <-c.Send
	assert.False(t, ok)
}
