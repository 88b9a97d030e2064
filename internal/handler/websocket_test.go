package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ZhaoZeLuWei/HelpMe/configs/constants"
	"github.com/ZhaoZeLuWei/HelpMe/internal/chat"
	"github.com/ZhaoZeLuWei/HelpMe/internal/handler"
	"github.com/ZhaoZeLuWei/HelpMe/internal/util"
)

type outFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func nextFrame(t *testing.T, client *util.Client) outFrame {
	t.Helper()
	select {
	case raw := <-client.Send:
		var f outFrame
		require.NoError(t, json.Unmarshal(raw, &f))
		return f
	case <-time.After(time.Second):
		t.Fatal("no frame delivered")
		return outFrame{}
	}
}

func noFrame(t *testing.T, client *util.Client) {
	t.Helper()
	select {
	case raw := <-client.Send:
		t.Fatalf("unexpected frame %s", raw)
	default:
	}
}

func frame(t *testing.T, event string, data any) util.IncomingFrame {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	return util.IncomingFrame{Event: event, Data: raw}
}

func errorText(t *testing.T, f outFrame) string {
	t.Helper()
	require.Equal(t, constants.WSEventError, f.Event)
	var payload struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(f.Data, &payload))
	return payload.Message
}

func TestWebsocketWelcome(t *testing.T) {
	env := newEnv(t)
	ws := handler.NewWebsocketHandler(env.hub, env.store, zap.NewNop())
	client := util.NewClient(7, "Alice", nil)

	ws.Welcome(client)

	greeting := nextFrame(t, client)
	assert.Equal(t, constants.WSEventConnectSuccess, greeting.Event)
	assert.Contains(t, string(greeting.Data), constants.MsgWelcome)
	assert.Contains(t, string(greeting.Data), constants.SystemBotName)

	me := nextFrame(t, client)
	assert.Equal(t, constants.WSEventMyself, me.Event)
	assert.JSONEq(t, `{"id":7,"name":"Alice"}`, string(me.Data))

	assert.True(t, env.hub.InRoom(client, chat.SystemRoomID(7)))
}

func TestWebsocketHandleFrame(t *testing.T) {
	env := newEnv(t)
	ws := handler.NewWebsocketHandler(env.hub, env.store, zap.NewNop())
	ctx := testContext(t)

	alice := env.createUser(t, "Alice")
	bob := env.createUser(t, "Bob")
	event := env.createEvent(t, alice.ID, constants.EventTypeRequest, "Assemble a desk")
	roomID := chat.EventRoomID(event.ID, bob.ID)
	_, err := env.store.UpsertRoom(ctx, chat.Room{ID: roomID, EventID: event.ID, CreatorID: alice.ID, PartnerID: bob.ID})
	require.NoError(t, err)

	aliceClient := util.NewClient(alice.ID, alice.UserName, nil)
	bobClient := util.NewClient(bob.ID, bob.UserName, nil)
	mallory := util.NewClient(999, "Mallory", nil)

	t.Run("sending before joining", func(t *testing.T) {
		ws.HandleFrame(ctx, bobClient, frame(t, constants.WSEventChatMessage, map[string]string{"room_id": roomID, "text": "hi"}))
		assert.Equal(t, constants.ErrMsgNotJoinedRoom, errorText(t, nextFrame(t, bobClient)))
	})

	t.Run("join with a bare room id", func(t *testing.T) {
		ws.HandleFrame(ctx, aliceClient, frame(t, constants.WSEventJoinRoom, roomID))
		f := nextFrame(t, aliceClient)
		assert.Equal(t, constants.WSEventJoined, f.Event)
		assert.JSONEq(t, `{"room_id":"`+roomID+`"}`, string(f.Data))
	})

	t.Run("join with an object", func(t *testing.T) {
		ws.HandleFrame(ctx, bobClient, frame(t, constants.WSEventJoinRoom, map[string]string{"room_id": roomID}))
		assert.Equal(t, constants.WSEventJoined, nextFrame(t, bobClient).Event)
		assert.Equal(t, 2, env.hub.RoomSize(roomID))
	})

	t.Run("outsider cannot join", func(t *testing.T) {
		ws.HandleFrame(ctx, mallory, frame(t, constants.WSEventJoinRoom, roomID))
		assert.Equal(t, constants.ErrMsgNotRoomMember, errorText(t, nextFrame(t, mallory)))
		assert.False(t, env.hub.InRoom(mallory, roomID))

		ws.HandleFrame(ctx, mallory, frame(t, constants.WSEventJoinRoom, chat.SystemRoomID(alice.ID)))
		assert.Equal(t, constants.ErrMsgNotRoomMember, errorText(t, nextFrame(t, mallory)))

		ws.HandleFrame(ctx, mallory, frame(t, constants.WSEventJoinRoom, "event_404_1"))
		assert.Equal(t, constants.ErrMsgRoomNotFound, errorText(t, nextFrame(t, mallory)))
	})

	t.Run("message reaches every member and is stored", func(t *testing.T) {
		ws.HandleFrame(ctx, bobClient, frame(t, constants.WSEventChatMessage, map[string]string{"room_id": roomID, "text": "  on my way  "}))

		for _, c := range []*util.Client{aliceClient, bobClient} {
			f := nextFrame(t, c)
			require.Equal(t, constants.WSEventChatMessage, f.Event)
			var msg chat.Message
			require.NoError(t, json.Unmarshal(f.Data, &msg))
			assert.Equal(t, "on my way", msg.Text)
			assert.Equal(t, bob.ID, msg.SenderID)
			assert.Equal(t, "Bob", msg.UserName)
		}

		msgs, total, err := env.store.History(ctx, roomID, 1, 10)
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		assert.Equal(t, "on my way", msgs[0].Text)

		room, err := env.store.GetRoom(ctx, roomID)
		require.NoError(t, err)
		assert.Equal(t, "on my way", room.LastMsg)
	})

	tests := []struct {
		name    string
		frame   util.IncomingFrame
		wantErr string
	}{
		{"blank text", frame(t, constants.WSEventChatMessage, map[string]string{"room_id": roomID, "text": "   "}), constants.ErrMsgEmptyMessage},
		{"missing room", frame(t, constants.WSEventChatMessage, map[string]string{"text": "hello"}), constants.ErrMsgRoomIDRequired},
		{"too long", frame(t, constants.WSEventChatMessage, map[string]string{"room_id": roomID, "text": strings.Repeat("字", constants.MaxChatMessageLength+1)}), constants.ErrMsgMessageTooLong},
		{"system room", frame(t, constants.WSEventChatMessage, map[string]string{"room_id": chat.SystemRoomID(alice.ID), "text": "spoof"}), constants.ErrMsgNotRoomMember},
		{"malformed payload", util.IncomingFrame{Event: constants.WSEventChatMessage, Data: json.RawMessage(`[1]`)}, constants.ErrMsgBadRequest},
		{"unknown event", frame(t, "dance", nil), constants.ErrMsgUnknownEvent},
		{"join without room", frame(t, constants.WSEventJoinRoom, ""), constants.ErrMsgRoomIDRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws.HandleFrame(ctx, aliceClient, tt.frame)
			assert.Equal(t, tt.wantErr, errorText(t, nextFrame(t, aliceClient)))
			noFrame(t, bobClient)
		})
	}

	t.Run("a message of exactly the limit is accepted", func(t *testing.T) {
		text := strings.Repeat("字", constants.MaxChatMessageLength)
		ws.HandleFrame(ctx, aliceClient, frame(t, constants.WSEventChatMessage, map[string]string{"room_id": roomID, "text": text}))
		assert.Equal(t, constants.WSEventChatMessage, nextFrame(t, aliceClient).Event)
		assert.Equal(t, constants.WSEventChatMessage, nextFrame(t, bobClient).Event)
	})

	t.Run("leave", func(t *testing.T) {
		ws.HandleFrame(ctx, bobClient, frame(t, constants.WSEventLeaveRoom, map[string]string{"room_id": roomID}))
		assert.Equal(t, constants.WSEventLeft, nextFrame(t, bobClient).Event)
		assert.False(t, env.hub.InRoom(bobClient, roomID))

		ws.HandleFrame(ctx, aliceClient, frame(t, constants.WSEventChatMessage, map[string]string{"room_id": roomID, "text": "still there?"}))
		assert.Equal(t, constants.WSEventChatMessage, nextFrame(t, aliceClient).Event)
		noFrame(t, bobClient)
	})
}

func TestWebsocketNotificationDelivery(t *testing.T) {
	env := newEnv(t)
	ws := handler.NewWebsocketHandler(env.hub, env.store, zap.NewNop())
	alice := env.createUser(t, "Alice")
	bob := env.createUser(t, "Bob")
	env.approveProvider(t, bob.ID)
	offer := env.createEvent(t, bob.ID, constants.EventTypeOffer, "Window cleaning")

	client := util.NewClient(alice.ID, alice.UserName, nil)
	ws.Welcome(client)
	nextFrame(t, client)
	nextFrame(t, client)

	rec := env.do(t, http.MethodPost, "/orders", env.token(t, alice), map[string]any{"event_id": offer.ID})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	f := nextFrame(t, client)
	require.Equal(t, constants.WSEventChatMessage, f.Event)
	var msg chat.Message
	require.NoError(t, json.Unmarshal(f.Data, &msg))
	assert.Equal(t, chat.SystemRoomID(alice.ID), msg.RoomID)
	assert.Equal(t, constants.SystemBotID, msg.SenderID)
	assert.Contains(t, msg.Text, "Window cleaning")
}

func TestWebsocketConnect(t *testing.T) {
	env := newEnv(t)
	alice := env.createUser(t, "Alice")

	ctx, cancel := context.WithCancel(context.Background())
	go env.hub.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-env.hub.Done()
	})

	server := httptest.NewServer(env.router)
	t.Cleanup(server.Close)
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(url+"?token="+env.token(t, alice), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var f outFrame
	require.NoError(t, conn.ReadJSON(&f))
	assert.Equal(t, constants.WSEventConnectSuccess, f.Event)
	require.NoError(t, conn.ReadJSON(&f))
	assert.Equal(t, constants.WSEventMyself, f.Event)
	assert.JSONEq(t, `{"id":`+jsonNumber(alice.ID)+`,"name":"Alice"}`, string(f.Data))

	require.NoError(t, conn.WriteJSON(map[string]any{"event": "dance"}))
	require.NoError(t, conn.ReadJSON(&f))
	assert.Equal(t, constants.WSEventError, f.Event)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	require.NoError(t, conn.ReadJSON(&f))
	assert.Equal(t, constants.WSEventError, f.Event)
}

func jsonNumber(id uint) string {
	b, _ := json.Marshal(id)
	return string(b)
}
