// Package chat persists chat rooms and messages and delivers system
// notifications into per-user rooms.
package chat

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/ZhaoZeLuWei/HelpMe/configs/constants"
)

var (
	ErrRoomNotFound = errors.New("chat room not found")
	ErrNotMember    = errors.New("not a member of the chat room")
)

type Room struct {
	ID        string    `bson:"_id" json:"id"`
	EventID   uint      `bson:"event_id" json:"event_id"`
	CreatorID uint      `bson:"creator_id" json:"creator_id"`
	PartnerID uint      `bson:"partner_id" json:"partner_id"`
	LastMsg   string    `bson:"last_msg" json:"last_msg"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

func (r *Room) HasMember(userID uint) bool {
	return r.CreatorID == userID || r.PartnerID == userID
}

type Message struct {
	ID       string    `bson:"_id" json:"id"`
	RoomID   string    `bson:"room_id" json:"room_id"`
	SenderID uint      `bson:"sender_id" json:"sender_id"`
	UserName string    `bson:"user_name" json:"user_name"`
	Text     string    `bson:"text" json:"text"`
	SendTime time.Time `bson:"send_time" json:"send_time"`
}

type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
}

func NewPagination(page, pageSize int, total int64) Pagination {
	p := Pagination{Page: page, PageSize: pageSize, Total: total}
	if pageSize > 0 {
		p.TotalPages = (total + int64(pageSize) - 1) / int64(pageSize)
	}
	return p
}

// Store is the persistence used by the chat gateway and the history API.
type Store interface {
	// SaveMessage stores msg and bumps the last message of its room.
	SaveMessage(ctx context.Context, msg *Message) error
	// History returns one page of a room, newest page first, in chronological order.
	History(ctx context.Context, roomID string, page, pageSize int) ([]Message, int64, error)
	// UpsertRoom creates the room unless it exists and returns the stored room.
	UpsertRoom(ctx context.Context, room Room) (*Room, error)
	GetRoom(ctx context.Context, roomID string) (*Room, error)
	// ListRooms returns rooms the user belongs to, most recently updated first.
	ListRooms(ctx context.Context, userID uint) ([]Room, error)
	// DeleteRoomsByUser drops the user's rooms and their messages.
	DeleteRoomsByUser(ctx context.Context, userID uint) error
}

func EventRoomID(eventID, partnerID uint) string {
	return fmt.Sprintf("%s%d_%d", constants.EventRoomPrefix, eventID, partnerID)
}

func SystemRoomID(userID uint) string {
	return fmt.Sprintf("%s%d", constants.SystemRoomPrefix, userID)
}

// ParseSystemRoomID returns the owner of a system_<id> room.
func ParseSystemRoomID(roomID string) (uint, bool) {
	if !strings.HasPrefix(roomID, constants.SystemRoomPrefix) {
		return 0, false
	}
	id, err := strconv.ParseUint(strings.TrimPrefix(roomID, constants.SystemRoomPrefix), 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

// NormalizePage clamps the requested page and page size.
func NormalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = constants.DefaultHistoryPageSize
	}
	if pageSize > constants.MaxHistoryPageSize {
		pageSize = constants.MaxHistoryPageSize
	}
	return page, pageSize
}

// Authorize checks that userID may read and write roomID.
func Authorize(ctx context.Context, store Store, userID uint, roomID string) error {
	if owner, ok := ParseSystemRoomID(roomID); ok {
		if owner != userID {
			return ErrNotMember
		}
		return nil
	}

	room, err := store.GetRoom(ctx, roomID)
	if err != nil {
		return err
	}
	if !room.HasMember(userID) {
		return ErrNotMember
	}
	return nil
}

func reverseMessages(msgs []Message) {
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
}
