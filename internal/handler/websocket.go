package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ZhaoZeLuWei/HelpMe/configs/constants"
	"github.com/ZhaoZeLuWei/HelpMe/internal/chat"
	"github.com/ZhaoZeLuWei/HelpMe/internal/model/dto"
	"github.com/ZhaoZeLuWei/HelpMe/internal/util"
)

type WebsocketHandler struct {
	hub      *util.Hub
	store    chat.Store
	validate *validator.Validate
	log      *zap.Logger
}

func NewWebsocketHandler(hub *util.Hub, store chat.Store, log *zap.Logger) *WebsocketHandler {
	return &WebsocketHandler{hub: hub, store: store, validate: validator.New(), log: log}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8192
	frameTimeout   = 5 * time.Second
)

func (h *WebsocketHandler) Connect(c *gin.Context) {
	userID, ok := util.GetUserID(c)
	if !ok {
		util.RespondJSON(c, http.StatusUnauthorized, constants.ErrMsgUnauthorized)
		return
	}
	name := util.GetUserName(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Uint("user_id", userID), zap.Error(err))
		return
	}

	client := util.NewClient(userID, name, conn)
	if !h.hub.RegisterClient(client) {
		conn.Close()
		return
	}
	h.Welcome(client)

	go h.readPump(client)
	go h.writePump(client)
}

// Welcome joins the client to its system room and greets it.
func (h *WebsocketHandler) Welcome(client *util.Client) {
	h.hub.Join(client, chat.SystemRoomID(client.UserID))
	h.hub.Emit(client, constants.WSEventConnectSuccess, dto.SystemGreeting{
		Text:      constants.MsgWelcome,
		SenderID:  constants.SystemBotID,
		UserName:  constants.SystemBotName,
		Timestamp: time.Now(),
	})
	h.hub.Emit(client, constants.WSEventMyself, dto.SocketIdentity{ID: client.UserID, Name: client.Name})
}

func (h *WebsocketHandler) readPump(client *util.Client) {
	defer h.hub.UnregisterClient(client)

	client.Conn.SetReadLimit(maxMessageSize)
	client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	client.Conn.SetPongHandler(func(string) error {
		client.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		mt, message, err := client.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.Warn("websocket read error", zap.Uint("user_id", client.UserID), zap.Error(err))
			}
			return
		}
		if mt != websocket.TextMessage {
			continue
		}

		var frame util.IncomingFrame
		if err := json.Unmarshal(message, &frame); err != nil {
			h.emitError(client, constants.ErrMsgBadRequest)
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), frameTimeout)
		h.HandleFrame(ctx, client, frame)
		cancel()
	}
}

func (h *WebsocketHandler) writePump(client *util.Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.Conn.Close()
	}()

	for {
		select {
		case message := <-client.Send:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				h.log.Debug("websocket write failed", zap.Uint("user_id", client.UserID), zap.Error(err))
				return
			}
		case <-ticker.C:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-client.Stop:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

// HandleFrame dispatches one inbound frame of a connected client.
func (h *WebsocketHandler) HandleFrame(ctx context.Context, client *util.Client, frame util.IncomingFrame) {
	switch frame.Event {
	case constants.WSEventJoinRoom:
		h.joinRoom(ctx, client, frame.Data)
	case constants.WSEventLeaveRoom:
		roomID := roomIDFrom(frame.Data)
		if roomID == "" {
			h.emitError(client, constants.ErrMsgRoomIDRequired)
			return
		}
		h.hub.Leave(client, roomID)
		h.hub.Emit(client, constants.WSEventLeft, dto.RoomEventPayload{RoomID: roomID})
	case constants.WSEventChatMessage:
		h.chatMessage(ctx, client, frame.Data)
	default:
		h.emitError(client, constants.ErrMsgUnknownEvent)
	}
}

// roomIDFrom accepts either a bare string or {"room_id": ...}.
func roomIDFrom(data json.RawMessage) string {
	var roomID string
	if err := json.Unmarshal(data, &roomID); err == nil {
		return strings.TrimSpace(roomID)
	}
	var payload dto.RoomEventPayload
	if err := json.Unmarshal(data, &payload); err == nil {
		return strings.TrimSpace(payload.RoomID)
	}
	return ""
}

func (h *WebsocketHandler) joinRoom(ctx context.Context, client *util.Client, data json.RawMessage) {
	roomID := roomIDFrom(data)
	if roomID == "" {
		h.emitError(client, constants.ErrMsgRoomIDRequired)
		return
	}

	if err := chat.Authorize(ctx, h.store, client.UserID, roomID); err != nil {
		h.emitError(client, h.roomErrorMessage(roomID, err))
		return
	}

	h.hub.Join(client, roomID)
	h.hub.Emit(client, constants.WSEventJoined, dto.RoomEventPayload{RoomID: roomID})
}

func (h *WebsocketHandler) chatMessage(ctx context.Context, client *util.Client, data json.RawMessage) {
	var request dto.RequestSendMessage
	if err := json.Unmarshal(data, &request); err != nil {
		h.emitError(client, constants.ErrMsgBadRequest)
		return
	}
	request.RoomID = strings.TrimSpace(request.RoomID)
	request.Text = strings.TrimSpace(request.Text)
	if err := h.validate.Struct(request); err != nil {
		if request.RoomID == "" {
			h.emitError(client, constants.ErrMsgRoomIDRequired)
		} else {
			h.emitError(client, constants.ErrMsgEmptyMessage)
		}
		return
	}
	if utf8.RuneCountInString(request.Text) > constants.MaxChatMessageLength {
		h.emitError(client, constants.ErrMsgMessageTooLong)
		return
	}

	// system rooms are written by the notifier only
	if _, ok := chat.ParseSystemRoomID(request.RoomID); ok {
		h.emitError(client, constants.ErrMsgNotRoomMember)
		return
	}
	if !h.hub.InRoom(client, request.RoomID) {
		h.emitError(client, constants.ErrMsgNotJoinedRoom)
		return
	}

	msg := &chat.Message{
		RoomID:   request.RoomID,
		SenderID: client.UserID,
		UserName: client.Name,
		Text:     request.Text,
		SendTime: time.Now(),
	}
	if err := h.store.SaveMessage(ctx, msg); err != nil {
		h.log.Error("save chat message", zap.String("room_id", msg.RoomID), zap.Uint("user_id", client.UserID), zap.Error(err))
		h.emitError(client, constants.ErrMsgInternalServerError)
		return
	}

	h.hub.EmitToRoom(msg.RoomID, constants.WSEventChatMessage, msg)
}

func (h *WebsocketHandler) roomErrorMessage(roomID string, err error) string {
	switch {
	case errors.Is(err, chat.ErrRoomNotFound):
		return constants.ErrMsgRoomNotFound
	case errors.Is(err, chat.ErrNotMember):
		return constants.ErrMsgNotRoomMember
	default:
		h.log.Error("authorize room", zap.String("room_id", roomID), zap.Error(err))
		return constants.ErrMsgInternalServerError
	}
}

func (h *WebsocketHandler) emitError(client *util.Client, message string) {
	h.hub.Emit(client, constants.WSEventError, dto.SocketError{Message: message})
}
