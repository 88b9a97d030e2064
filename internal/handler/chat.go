package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ZhaoZeLuWei/HelpMe/configs/constants"
	"github.com/ZhaoZeLuWei/HelpMe/internal/chat"
	"github.com/ZhaoZeLuWei/HelpMe/internal/model/db"
	"github.com/ZhaoZeLuWei/HelpMe/internal/model/dto"
	"github.com/ZhaoZeLuWei/HelpMe/internal/util"
)

type ChatHandler struct {
	db    *gorm.DB
	store chat.Store
	log   *zap.Logger
}

func NewChatHandler(db *gorm.DB, store chat.Store, log *zap.Logger) *ChatHandler {
	return &ChatHandler{db: db, store: store, log: log}
}

// PostRoom opens (or returns) the private room between the caller and the
// creator of an event.
func (h *ChatHandler) PostRoom(c *gin.Context) {
	userID, _ := util.GetUserID(c)

	var request dto.RequestCreateRoom
	if err := c.ShouldBindJSON(&request); err != nil {
		util.RespondJSON(c, http.StatusBadRequest, err)
		return
	}

	var event db.Event
	if err := h.db.Select("id", "creator_id", "event_title").Take(&event, request.EventID).Error; err != nil {
		if util.IsNotFound(err) {
			util.RespondJSON(c, http.StatusNotFound, constants.ErrMsgEventNotFound)
			return
		}
		h.log.Error("load event for room", zap.Uint("event_id", request.EventID), zap.Error(err))
		util.RespondJSON(c, http.StatusInternalServerError, constants.ErrMsgInternalServerError)
		return
	}
	if event.CreatorID == userID {
		util.RespondJSON(c, http.StatusBadRequest, constants.ErrMsgOwnRoom)
		return
	}

	room, err := h.store.UpsertRoom(c.Request.Context(), chat.Room{
		ID:        chat.EventRoomID(event.ID, userID),
		EventID:   event.ID,
		CreatorID: event.CreatorID,
		PartnerID: userID,
		UpdatedAt: time.Now(),
	})
	if err != nil {
		h.log.Error("upsert room", zap.Uint("event_id", event.ID), zap.Error(err))
		util.RespondJSON(c, http.StatusInternalServerError, constants.ErrMsgInternalServerError)
		return
	}

	rooms, err := h.enrich([]chat.Room{*room}, userID)
	if err != nil {
		h.log.Error("enrich room", zap.String("room_id", room.ID), zap.Error(err))
		util.RespondJSON(c, http.StatusInternalServerError, constants.ErrMsgInternalServerError)
		return
	}
	util.RespondJSON(c, http.StatusOK, rooms[0])
}

func (h *ChatHandler) GetRooms(c *gin.Context) {
	userID, _ := util.GetUserID(c)

	rooms, err := h.store.ListRooms(c.Request.Context(), userID)
	if err != nil {
		h.log.Error("list rooms", zap.Uint("user_id", userID), zap.Error(err))
		util.RespondJSON(c, http.StatusInternalServerError, constants.ErrMsgInternalServerError)
		return
	}

	resp, err := h.enrich(rooms, userID)
	if err != nil {
		h.log.Error("enrich rooms", zap.Uint("user_id", userID), zap.Error(err))
		util.RespondJSON(c, http.StatusInternalServerError, constants.ErrMsgInternalServerError)
		return
	}
	util.RespondJSON(c, http.StatusOK, resp)
}

// enrich attaches the peer's profile and the event title to each room.
func (h *ChatHandler) enrich(rooms []chat.Room, userID uint) ([]dto.RoomResponse, error) {
	resp := make([]dto.RoomResponse, 0, len(rooms))
	if len(rooms) == 0 {
		return resp, nil
	}

	peerIDs := make([]uint, 0, len(rooms))
	eventIDs := make([]uint, 0, len(rooms))
	for _, room := range rooms {
		peer := room.CreatorID
		if peer == userID {
			peer = room.PartnerID
		}
		peerIDs = append(peerIDs, peer)
		eventIDs = append(eventIDs, room.EventID)
	}

	var users []db.User
	if err := h.db.Select("id", "user_name", "user_avatar").Where("id IN ?", peerIDs).Find(&users).Error; err != nil {
		return nil, err
	}
	var events []db.Event
	if err := h.db.Select("id", "event_title").Where("id IN ?", eventIDs).Find(&events).Error; err != nil {
		return nil, err
	}

	usersByID := make(map[uint]db.User, len(users))
	for _, u := range users {
		usersByID[u.ID] = u
	}
	titles := make(map[uint]string, len(events))
	for _, e := range events {
		titles[e.ID] = e.EventTitle
	}

	for i, room := range rooms {
		peer := usersByID[peerIDs[i]]
		resp = append(resp, dto.RoomResponse{
			Room:       room,
			EventTitle: titles[room.EventID],
			PeerID:     peerIDs[i],
			PeerName:   peer.UserName,
			PeerAvatar: peer.UserAvatar,
		})
	}
	return resp, nil
}

func (h *ChatHandler) GetHistory(c *gin.Context) {
	userID, _ := util.GetUserID(c)

	roomID := strings.TrimSpace(c.Query("roomId"))
	if roomID == "" {
		util.RespondJSON(c, http.StatusBadRequest, constants.ErrMsgRoomIDRequired)
		return
	}
	page, _ := strconv.Atoi(c.Query("page"))
	pageSize, _ := strconv.Atoi(c.Query("pageSize"))
	page, pageSize = chat.NormalizePage(page, pageSize)

	ctx := c.Request.Context()
	if err := chat.Authorize(ctx, h.store, userID, roomID); err != nil {
		switch {
		case errors.Is(err, chat.ErrRoomNotFound):
			util.RespondJSON(c, http.StatusNotFound, constants.ErrMsgRoomNotFound)
		case errors.Is(err, chat.ErrNotMember):
			util.RespondJSON(c, http.StatusForbidden, constants.ErrMsgNotRoomMember)
		default:
			h.log.Error("authorize room", zap.String("room_id", roomID), zap.Error(err))
			util.RespondJSON(c, http.StatusInternalServerError, constants.ErrMsgInternalServerError)
		}
		return
	}

	messages, total, err := h.store.History(ctx, roomID, page, pageSize)
	if err != nil {
		h.log.Error("load history", zap.String("room_id", roomID), zap.Error(err))
		util.RespondJSON(c, http.StatusInternalServerError, constants.ErrMsgInternalServerError)
		return
	}

	util.RespondJSON(c, http.StatusOK, dto.HistoryResponse{
		Messages:   messages,
		Pagination: chat.NewPagination(page, pageSize, total),
	})
}
