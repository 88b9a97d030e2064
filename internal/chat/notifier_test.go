package chat

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ZhaoZeLuWei/HelpMe/configs/constants"
)

type emitted struct {
	room, event string
	data        any
}

type recordingHub struct {
	frames []emitted
}

func (h *recordingHub) EmitToRoom(room, event string, data any) {
	h.frames = append(h.frames, emitted{room, event, data})
}

type failingStore struct {
	*MemoryStore
}

func (failingStore) SaveMessage(context.Context, *Message) error {
	return errors.New("store down")
}

func TestNotify(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	hub := &recordingHub{}
	n := NewNotifier(store, hub, zap.NewNop())

	require.NoError(t, n.Notify(ctx, 4, "Your order was created."))

	msgs, total, err := store.History(ctx, SystemRoomID(4), 1, 10)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	assert.Equal(t, constants.SystemBotID, msgs[0].SenderID)
	assert.Equal(t, constants.SystemBotName, msgs[0].UserName)
	assert.False(t, msgs[0].SendTime.IsZero())

	require.Len(t, hub.frames, 1)
	assert.Equal(t, SystemRoomID(4), hub.frames[0].room)
	assert.Equal(t, constants.WSEventChatMessage, hub.frames[0].event)
	msg, ok := hub.frames[0].data.(*Message)
	require.True(t, ok)
	assert.Equal(t, "Your order was created.", msg.Text)
}

func TestNotifyAll(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	n := NewNotifier(store, nil, nil)

	n.NotifyAll(ctx, map[uint]string{1: "one", 2: "two"})
	for id, want := range map[uint]string{1: "one", 2: "two"} {
		msgs, _, err := store.History(ctx, SystemRoomID(id), 1, 10)
		require.NoError(t, err)
		require.Len(t, msgs, 1)
		assert.Equal(t, want, msgs[0].Text)
	}
}

func TestNotifyStoreFailure(t *testing.T) {
	hub := &recordingHub{}
	n := NewNotifier(failingStore{NewMemoryStore()}, hub, zap.NewNop())

	err := n.Notify(context.Background(), 1, "lost")
	assert.ErrorContains(t, err, "store down")
	assert.Empty(t, hub.frames)

	// NotifyAll only logs
	n.NotifyAll(context.Background(), map[uint]string{1: "lost"})
	assert.Empty(t, hub.frames)
}
