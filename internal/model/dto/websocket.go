package dto

import (
	"time"

	"github.com/ZhaoZeLuWei/HelpMe/internal/chat"
)

// RequestSendMessage is the payload of a "chat message" frame.
type RequestSendMessage struct {
	RoomID string `json:"room_id" validate:"required"`
	Text   string `json:"text" validate:"required"`
}

type SystemGreeting struct {
	Text      string    `json:"text"`
	SenderID  uint      `json:"sender_id"`
	UserName  string    `json:"user_name"`
	Timestamp time.Time `json:"timestamp"`
}

type SocketIdentity struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type RoomEventPayload struct {
	RoomID string `json:"room_id"`
}

type SocketError struct {
	Message string `json:"message"`
}

type RequestCreateRoom struct {
	EventID uint `json:"event_id" binding:"required"`
}

type RoomResponse struct {
	chat.Room
	EventTitle string `json:"event_title"`
	PeerID     uint   `json:"peer_id"`
	PeerName   string `json:"peer_name"`
	PeerAvatar string `json:"peer_avatar"`
}

type HistoryResponse struct {
	Messages   []chat.Message  `json:"messages"`
	Pagination chat.Pagination `json:"pagination"`
}
