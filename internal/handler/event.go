package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ZhaoZeLuWei/HelpMe/configs/constants"
	"github.com/ZhaoZeLuWei/HelpMe/internal/model/db"
	"github.com/ZhaoZeLuWei/HelpMe/internal/model/dto"
	"github.com/ZhaoZeLuWei/HelpMe/internal/util"
)

type EventHandler struct {
	db      *gorm.DB
	storage *util.ImageStorage
	log     *zap.Logger
}

func NewEventHandler(db *gorm.DB, storage *util.ImageStorage, log *zap.Logger) *EventHandler {
	return &EventHandler{db: db, storage: storage, log: log}
}

func parseEventType(raw string) (constants.EventType, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return constants.EventTypeRequest, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || !constants.EventType(n).Valid() {
		return 0, false
	}
	return constants.EventType(n), true
}

func parsePrice(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, true
	}
	price, err := strconv.ParseFloat(raw, 64)
	if err != nil || price < 0 {
		return 0, false
	}
	return price, true
}

func (h *EventHandler) GetCards(c *gin.Context) {
	query := h.db.Table("events AS e").
		Select("e.id, e.creator_id, e.event_title AS title, e.photos, e.location AS address, e.event_details AS demand, e.price, e.event_type, e.create_time, u.user_name AS name, u.user_avatar AS avatar").
		Joins("JOIN users u ON u.id = e.creator_id")

	switch c.Query("type") {
	case "":
	case constants.CardTypeRequest:
		query = query.Where("e.event_type = ?", constants.EventTypeRequest)
	case constants.CardTypeHelp:
		query = query.Where("e.event_type = ?", constants.EventTypeOffer)
	default:
		util.RespondJSON(c, http.StatusBadRequest, constants.ErrMsgInvalidCardType)
		return
	}

	if search := strings.TrimSpace(c.Query("search")); search != "" {
		like := "%" + search + "%"
		query = query.Where("(e.event_title LIKE ? OR e.event_details LIKE ? OR e.event_category LIKE ? OR e.location LIKE ?)", like, like, like, like)
	}

	var rows []dto.CardRow
	if err := query.Order("e.create_time DESC").Order("e.id DESC").Scan(&rows).Error; err != nil {
		h.log.Error("list cards", zap.Error(err))
		util.RespondJSON(c, http.StatusInternalServerError, constants.ErrMsgInternalServerError)
		return
	}

	cards := make([]dto.CardResponse, 0, len(rows))
	for _, row := range rows {
		card := dto.CardResponse{
			ID:         row.ID,
			CreatorID:  row.CreatorID,
			Title:      row.Title,
			Address:    row.Address,
			Demand:     row.Demand,
			Price:      row.Price,
			Name:       row.Name,
			Avatar:     row.Avatar,
			EventType:  constants.EventType(row.EventType),
			CreateTime: row.CreateTime,
		}
		if first := row.Photos.First(); first != "" {
			card.CardImage = &first
		}
		cards = append(cards, card)
	}

	util.RespondJSON(c, http.StatusOK, cards)
}

func (h *EventHandler) PostEvent(c *gin.Context) {
	creatorID, _ := util.GetUserID(c)

	var request dto.RequestPostEvent
	if err := c.ShouldBind(&request); err != nil {
		util.RespondJSON(c, http.StatusBadRequest, err)
		return
	}

	eventType, ok := parseEventType(request.EventType)
	if !ok {
		util.RespondJSON(c, http.StatusBadRequest, constants.ErrMsgInvalidEventType)
		return
	}
	price, ok := parsePrice(request.Price)
	if !ok {
		util.RespondJSON(c, http.StatusBadRequest, constants.ErrMsgInvalidPrice)
		return
	}

	var paths []string
	if form, err := c.MultipartForm(); err == nil && len(form.File["images"]) > 0 {
		paths, err = h.storage.SaveImages(form.File["images"], constants.MaxUploadFiles)
		if err != nil {
			util.RespondError(c, err)
			return
		}
	}

	event := db.Event{
		CreatorID:     creatorID,
		EventTitle:    strings.TrimSpace(request.EventTitle),
		EventType:     eventType,
		EventCategory: strings.TrimSpace(request.EventCategory),
		Photos:        db.StringList(paths),
		Location:      strings.TrimSpace(request.Location),
		Price:         price,
		EventDetails:  request.EventDetails,
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&event).Error
	})
	if err != nil {
		h.storage.Cleanup(paths)
		h.log.Error("create event", zap.Uint("creator_id", creatorID), zap.Error(err))
		util.RespondJSON(c, http.StatusInternalServerError, constants.ErrMsgInternalServerError)
		return
	}

	if paths == nil {
		paths = []string{}
	}
	util.RespondJSON(c, http.StatusCreated, dto.PostEventResponse{
		Message: constants.MsgSuccessEventCreated,
		EventID: event.ID,
		Paths:   paths,
	})
}

func (h *EventHandler) GetEvent(c *gin.Context) {
	eventID, ok := util.ParamID(c, "id")
	if !ok {
		util.RespondJSON(c, http.StatusBadRequest, constants.ErrMsgInvalidID)
		return
	}

	var event db.Event
	if err := h.db.Take(&event, eventID).Error; err != nil {
		if util.IsNotFound(err) {
			util.RespondJSON(c, http.StatusNotFound, constants.ErrMsgEventNotFound)
			return
		}
		h.log.Error("get event", zap.Uint("event_id", eventID), zap.Error(err))
		util.RespondJSON(c, http.StatusInternalServerError, constants.ErrMsgInternalServerError)
		return
	}

	resp := dto.EventDetailResponse{Event: event, Creator: dto.CreatorSummary{ID: event.CreatorID}}
	var creator db.User
	if err := h.db.Select("id", "user_name", "user_avatar").Take(&creator, event.CreatorID).Error; err == nil {
		resp.Creator.UserName = creator.UserName
		resp.Creator.UserAvatar = creator.UserAvatar
	}

	util.RespondJSON(c, http.StatusOK, resp)
}

// loadOwnEvent fetches an event and checks the caller created it.
func loadOwnEvent(conn *gorm.DB, eventID, userID uint) (*db.Event, error) {
	var event db.Event
	if err := conn.Take(&event, eventID).Error; err != nil {
		if util.IsNotFound(err) {
			return nil, util.NotFound(constants.ErrMsgEventNotFound)
		}
		return nil, err
	}
	if event.CreatorID != userID {
		return nil, util.Forbidden(constants.ErrMsgNotEventCreator)
	}
	return &event, nil
}

func (h *EventHandler) PutEvent(c *gin.Context) {
	eventID, ok := util.ParamID(c, "id")
	if !ok {
		util.RespondJSON(c, http.StatusBadRequest, constants.ErrMsgInvalidID)
		return
	}
	userID, _ := util.GetUserID(c)

	var request dto.RequestPutEvent
	if err := c.ShouldBindJSON(&request); err != nil {
		util.RespondJSON(c, http.StatusBadRequest, err)
		return
	}
	if !constants.EventType(*request.EventType).Valid() {
		util.RespondJSON(c, http.StatusBadRequest, constants.ErrMsgInvalidEventType)
		return
	}
	price := 0.0
	if request.Price != nil {
		price = *request.Price
	}
	if price < 0 {
		util.RespondJSON(c, http.StatusBadRequest, constants.ErrMsgInvalidPrice)
		return
	}
	var photos db.StringList
	if request.Photos != nil {
		parsed, err := db.ParseStringList(*request.Photos)
		if err != nil {
			util.RespondJSON(c, http.StatusBadRequest, constants.ErrMsgInvalidPhotos)
			return
		}
		photos = parsed
	}

	var previous db.StringList
	var updated db.Event
	err := h.db.Transaction(func(tx *gorm.DB) error {
		event, err := loadOwnEvent(tx, eventID, userID)
		if err != nil {
			return err
		}
		previous = event.Photos

		for _, p := range droppedPaths(photos, previous) {
			if _, err := h.storage.Resolve(p); err != nil {
				return util.BadRequest(constants.ErrMsgInvalidPhotos)
			}
			inUse, err := pathReferenced(tx, p)
			if err != nil {
				return err
			}
			if inUse {
				return util.BadRequest(constants.ErrMsgPhotoInUse)
			}
		}

		err = tx.Model(event).Updates(map[string]any{
			"event_title":    strings.TrimSpace(request.EventTitle),
			"event_type":     *request.EventType,
			"event_category": strings.TrimSpace(request.EventCategory),
			"location":       strings.TrimSpace(request.Location),
			"price":          price,
			"event_details":  request.EventDetails,
			"photos":         photos,
		}).Error
		if err != nil {
			return err
		}
		return tx.Take(&updated, eventID).Error
	})
	if err != nil {
		if _, ok := util.AsHTTPError(err); !ok {
			h.log.Error("update event", zap.Uint("event_id", eventID), zap.Error(err))
		}
		util.RespondError(c, err)
		return
	}

	removeUnreferenced(h.db, h.storage, h.log, droppedPaths(previous, photos))
	util.RespondJSON(c, http.StatusOK, gin.H{
		"message": constants.MsgSuccessEventUpdated,
		"event":   updated,
	})
}

func (h *EventHandler) DeleteEvent(c *gin.Context) {
	eventID, ok := util.ParamID(c, "id")
	if !ok {
		util.RespondJSON(c, http.StatusBadRequest, constants.ErrMsgInvalidID)
		return
	}
	userID, _ := util.GetUserID(c)

	var photos db.StringList
	err := h.db.Transaction(func(tx *gorm.DB) error {
		event, err := loadOwnEvent(tx, eventID, userID)
		if err != nil {
			return err
		}
		photos = event.Photos

		var open int64
		err = tx.Model(&db.Order{}).
			Where("event_id = ? AND status IN ?", eventID, constants.OpenOrderStatuses).
			Count(&open).Error
		if err != nil {
			return err
		}
		if open > 0 {
			return util.Conflict(constants.ErrMsgEventHasOpenOrder)
		}

		orderIDs := tx.Model(&db.Order{}).Select("id").Where("event_id = ?", eventID)
		if err := tx.Where("order_id IN (?)", orderIDs).Delete(&db.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("event_id = ?", eventID).Delete(&db.Order{}).Error; err != nil {
			return err
		}
		return tx.Delete(&db.Event{}, eventID).Error
	})
	if err != nil {
		if _, ok := util.AsHTTPError(err); !ok {
			h.log.Error("delete event", zap.Uint("event_id", eventID), zap.Error(err))
		}
		util.RespondError(c, err)
		return
	}

	removeUnreferenced(h.db, h.storage, h.log, photos)
	util.RespondJSON(c, http.StatusOK, constants.MsgSuccessEventDeleted)
}

// droppedPaths lists entries of before that are missing from after. Swapping
// the arguments lists the added entries.
func droppedPaths(before, after []string) []string {
	keep := make(map[string]struct{}, len(after))
	for _, p := range after {
		keep[p] = struct{}{}
	}
	var dropped []string
	for _, p := range before {
		if _, ok := keep[p]; !ok {
			dropped = append(dropped, p)
		}
	}
	return dropped
}
