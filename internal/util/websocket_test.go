package util

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func receive(t *testing.T, c *Client) Frame {
	t.Helper()
	select {
	case raw := <-c.Send:
		var f Frame
		require.NoError(t, json.Unmarshal(raw, &f))
		return f
	case <-time.After(time.Second):
		t.Fatal("nothing received")
		return Frame{}
	}
}

func TestHubRooms(t *testing.T) {
	hub := NewHub(zap.NewNop())
	a := NewClient(1, "a", nil)
	b := NewClient(2, "b", nil)

	hub.Join(a, "event_1_2")
	hub.Join(b, "event_1_2")
	hub.Join(a, "system_1")
	assert.Equal(t, 2, hub.RoomSize("event_1_2"))
	assert.True(t, hub.InRoom(b, "event_1_2"))

	hub.EmitToRoom("event_1_2", "chat message", map[string]string{"text": "hi"})
	for _, c := range []*Client{a, b} {
		f := receive(t, c)
		assert.Equal(t, "chat message", f.Event)
		assert.Equal(t, map[string]any{"text": "hi"}, f.Data)
	}

	hub.EmitToRoom("system_1", "chat message", "only a")
	assert.Equal(t, "only a", receive(t, a).Data)
	assert.Empty(t, b.Send)

	hub.Leave(b, "event_1_2")
	assert.False(t, hub.InRoom(b, "event_1_2"))
	assert.Equal(t, 1, hub.RoomSize("event_1_2"))

	hub.Leave(a, "event_1_2")
	assert.Zero(t, hub.RoomSize("event_1_2"))
}

func TestHubDropsWhenBufferFull(t *testing.T) {
	hub := NewHub(zap.NewNop())
	c := NewClient(1, "a", nil)
	for i := 0; i < cap(c.Send)+10; i++ {
		hub.Emit(c, "error", i)
	}
	assert.Len(t, c.Send, cap(c.Send))
}

func TestHubRunLifecycle(t *testing.T) {
	hub := NewHub(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	a := NewClient(1, "a", nil)
	b := NewClient(2, "b", nil)
	require.True(t, hub.RegisterClient(a))
	require.True(t, hub.RegisterClient(b))
	hub.Join(a, "room")
	hub.Join(b, "room")

	hub.UnregisterClient(a)
	select {
	case <-a.Stop:
	case <-time.After(time.Second):
		t.Fatal("unregistered client was not stopped")
	}
	assert.Equal(t, 1, hub.RoomSize("room"))

	// emitting to a stopped client must not block
	hub.Emit(a, "error", "late")
	hub.Join(a, "room")
	assert.Equal(t, 1, hub.RoomSize("room"))

	cancel()
	<-hub.Done()
	select {
	case <-b.Stop:
	default:
		t.Fatal("client still running after shutdown")
	}
	assert.Zero(t, hub.RoomSize("room"))

	// a frame read after shutdown must not bring the client back
	hub.Join(b, "room")
	assert.Zero(t, hub.RoomSize("room"))
	assert.False(t, hub.InRoom(b, "room"))

	assert.False(t, hub.RegisterClient(NewClient(3, "c", nil)))
	hub.UnregisterClient(b)
}
