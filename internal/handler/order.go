package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ZhaoZeLuWei/HelpMe/configs/constants"
	"github.com/ZhaoZeLuWei/HelpMe/internal/chat"
	"github.com/ZhaoZeLuWei/HelpMe/internal/model/db"
	"github.com/ZhaoZeLuWei/HelpMe/internal/model/dto"
	"github.com/ZhaoZeLuWei/HelpMe/internal/util"
)

const orderSelect = "o.id, o.event_id, e.event_title, e.event_type, o.consumer_id, uc.user_name AS consumer_name, " +
	"o.provider_id, up.user_name AS provider_name, o.status, o.price, o.note, o.service_time, " +
	"o.create_time, o.update_time, o.finish_time"

type OrderHandler struct {
	db       *gorm.DB
	notifier *chat.Notifier
	log      *zap.Logger
}

func NewOrderHandler(db *gorm.DB, notifier *chat.Notifier, log *zap.Logger) *OrderHandler {
	return &OrderHandler{db: db, notifier: notifier, log: log}
}

func orderQuery(conn *gorm.DB) *gorm.DB {
	return conn.Table("orders AS o").
		Select(orderSelect).
		Joins("LEFT JOIN events e ON e.id = o.event_id").
		Joins("LEFT JOIN users uc ON uc.id = o.consumer_id").
		Joins("LEFT JOIN users up ON up.id = o.provider_id")
}

func isParticipant(order *db.Order, userID uint) bool {
	return order.ConsumerID == userID || (order.ProviderID != nil && *order.ProviderID == userID)
}

// loadOrder fetches an order together with the title of its event.
func loadOrder(conn *gorm.DB, orderID uint) (*db.Order, string, error) {
	var order db.Order
	if err := conn.Take(&order, orderID).Error; err != nil {
		if util.IsNotFound(err) {
			return nil, "", util.NotFound(constants.ErrMsgOrderNotFound)
		}
		return nil, "", err
	}

	var event db.Event
	if err := conn.Select("id", "event_title").Take(&event, order.EventID).Error; err != nil && !util.IsNotFound(err) {
		return nil, "", err
	}
	return &order, event.EventTitle, nil
}

// transition moves an order from one of the from statuses to to. A concurrent
// change of the status makes it fail with a conflict.
func transition(tx *gorm.DB, orderID uint, from []constants.OrderStatus, updates map[string]any) error {
	res := tx.Model(&db.Order{}).Where("id = ? AND status IN ?", orderID, from).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return util.Conflict(constants.ErrMsgOrderStateConflict)
	}
	return nil
}

func (h *OrderHandler) fail(c *gin.Context, op string, err error) {
	if _, ok := util.AsHTTPError(err); !ok {
		h.log.Error(op, zap.Error(err))
	}
	util.RespondError(c, err)
}

func (h *OrderHandler) respondOrder(c *gin.Context, status int, message string, orderID uint) {
	var order dto.OrderResponse
	if err := orderQuery(h.db).Where("o.id = ?", orderID).Take(&order).Error; err != nil {
		h.fail(c, "load order", err)
		return
	}
	util.RespondJSON(c, status, gin.H{"message": message, "order": order})
}

func (h *OrderHandler) PostOrder(c *gin.Context) {
	userID, _ := util.GetUserID(c)

	var request dto.RequestCreateOrder
	if err := c.ShouldBindJSON(&request); err != nil {
		util.RespondJSON(c, http.StatusBadRequest, err)
		return
	}

	var order db.Order
	var title string
	err := h.db.Transaction(func(tx *gorm.DB) error {
		var event db.Event
		if err := tx.Take(&event, request.EventID).Error; err != nil {
			if util.IsNotFound(err) {
				return util.NotFound(constants.ErrMsgEventNotFound)
			}
			return err
		}
		title = event.EventTitle

		order = db.Order{
			EventID:     event.ID,
			ConsumerID:  userID,
			Status:      constants.OrderPending,
			Price:       event.Price,
			Note:        strings.TrimSpace(request.Note),
			ServiceTime: request.ServiceTime,
		}
		switch event.EventType {
		case constants.EventTypeOffer:
			if event.CreatorID == userID {
				return util.Forbidden(constants.ErrMsgOwnEvent)
			}
			providerID := event.CreatorID
			order.ProviderID = &providerID
		default:
			if event.CreatorID != userID {
				return util.Forbidden(constants.ErrMsgOnlyCreatorOrders)
			}
		}

		var open int64
		err := tx.Model(&db.Order{}).
			Where("event_id = ? AND consumer_id = ? AND status IN ?", event.ID, userID, constants.OpenOrderStatuses).
			Count(&open).Error
		if err != nil {
			return err
		}
		if open > 0 {
			return util.Conflict(constants.ErrMsgDuplicateOpenOrder)
		}
		return tx.Create(&order).Error
	})
	if err != nil {
		h.fail(c, "create order", err)
		return
	}

	h.notifier.NotifyAll(c.Request.Context(), map[uint]string{
		userID: fmt.Sprintf(constants.NotifyOrderCreated, title),
	})
	h.respondOrder(c, http.StatusCreated, constants.MsgSuccessOrderCreated, order.ID)
}

func (h *OrderHandler) PutAcceptOrder(c *gin.Context) {
	orderID, ok := util.ParamID(c, "id")
	if !ok {
		util.RespondJSON(c, http.StatusBadRequest, constants.ErrMsgInvalidID)
		return
	}
	userID, _ := util.GetUserID(c)

	var order *db.Order
	var title string
	err := h.db.Transaction(func(tx *gorm.DB) error {
		var err error
		order, title, err = loadOrder(tx, orderID)
		if err != nil {
			return err
		}
		if order.Status != constants.OrderPending {
			return util.Conflict(constants.ErrMsgOrderStateConflict)
		}
		if order.ConsumerID == userID {
			return util.Forbidden(constants.ErrMsgCannotAcceptOwnOrder)
		}
		if order.ProviderID != nil && *order.ProviderID != userID {
			return util.Forbidden(constants.ErrMsgNotAssignedProvider)
		}

		approved, err := isApprovedProvider(tx, userID)
		if err != nil {
			return err
		}
		if !approved {
			return util.Forbidden(constants.ErrMsgProviderNotVerified)
		}

		return transition(tx, orderID, []constants.OrderStatus{constants.OrderPending}, map[string]any{
			"status":      constants.OrderAccepted,
			"provider_id": userID,
		})
	})
	if err != nil {
		h.fail(c, "accept order", err)
		return
	}

	h.notifier.NotifyAll(c.Request.Context(), map[uint]string{
		order.ConsumerID: fmt.Sprintf(constants.NotifyOrderAcceptedConsumer, title, util.GetUserName(c)),
		userID:           fmt.Sprintf(constants.NotifyOrderAcceptedProvider, title),
	})
	h.respondOrder(c, http.StatusOK, constants.MsgSuccessOrderAccepted, orderID)
}

func (h *OrderHandler) PutCompleteOrder(c *gin.Context) {
	orderID, ok := util.ParamID(c, "id")
	if !ok {
		util.RespondJSON(c, http.StatusBadRequest, constants.ErrMsgInvalidID)
		return
	}
	userID, _ := util.GetUserID(c)

	var order *db.Order
	var title string
	err := h.db.Transaction(func(tx *gorm.DB) error {
		var err error
		order, title, err = loadOrder(tx, orderID)
		if err != nil {
			return err
		}
		if order.ConsumerID != userID {
			return util.Forbidden(constants.ErrMsgNotOrderParticipant)
		}
		if order.Status != constants.OrderAccepted || order.ProviderID == nil {
			return util.Conflict(constants.ErrMsgOrderStateConflict)
		}

		err = transition(tx, orderID, []constants.OrderStatus{constants.OrderAccepted}, map[string]any{
			"status":      constants.OrderCompleted,
			"finish_time": time.Now(),
		})
		if err != nil {
			return err
		}
		return tx.Model(&db.Provider{}).
			Where("provider_id = ?", *order.ProviderID).
			UpdateColumn("order_count", gorm.Expr("order_count + ?", 1)).Error
	})
	if err != nil {
		h.fail(c, "complete order", err)
		return
	}

	h.notifier.NotifyAll(c.Request.Context(), map[uint]string{
		order.ConsumerID:  fmt.Sprintf(constants.NotifyOrderCompletedConsumer, title),
		*order.ProviderID: fmt.Sprintf(constants.NotifyOrderCompletedProvider, title),
	})
	h.respondOrder(c, http.StatusOK, constants.MsgSuccessOrderCompleted, orderID)
}

func (h *OrderHandler) PutCancelOrder(c *gin.Context) {
	orderID, ok := util.ParamID(c, "id")
	if !ok {
		util.RespondJSON(c, http.StatusBadRequest, constants.ErrMsgInvalidID)
		return
	}
	userID, _ := util.GetUserID(c)

	var order *db.Order
	var title string
	err := h.db.Transaction(func(tx *gorm.DB) error {
		var err error
		order, title, err = loadOrder(tx, orderID)
		if err != nil {
			return err
		}
		if !isParticipant(order, userID) {
			return util.Forbidden(constants.ErrMsgNotOrderParticipant)
		}
		if !order.Status.Open() {
			return util.Conflict(constants.ErrMsgOrderStateConflict)
		}
		return transition(tx, orderID, constants.OpenOrderStatuses, map[string]any{
			"status": constants.OrderCancelled,
		})
	})
	if err != nil {
		h.fail(c, "cancel order", err)
		return
	}

	h.notifier.NotifyAll(c.Request.Context(), map[uint]string{
		order.ConsumerID: fmt.Sprintf(constants.NotifyOrderCancelled, title),
	})
	h.respondOrder(c, http.StatusOK, constants.MsgSuccessOrderCancelled, orderID)
}

func (h *OrderHandler) PutOrder(c *gin.Context) {
	orderID, ok := util.ParamID(c, "id")
	if !ok {
		util.RespondJSON(c, http.StatusBadRequest, constants.ErrMsgInvalidID)
		return
	}
	userID, _ := util.GetUserID(c)

	var request dto.RequestUpdateOrder
	if err := c.ShouldBindJSON(&request); err != nil {
		util.RespondJSON(c, http.StatusBadRequest, err)
		return
	}

	updates := map[string]any{}
	if request.Price != nil {
		updates["price"] = *request.Price
	}
	if request.Note != nil {
		updates["note"] = strings.TrimSpace(*request.Note)
	}
	if request.ServiceTime != nil {
		updates["service_time"] = *request.ServiceTime
	}
	if len(updates) == 0 {
		util.RespondJSON(c, http.StatusBadRequest, constants.ErrMsgNoFieldsToUpdate)
		return
	}

	var order *db.Order
	var title string
	err := h.db.Transaction(func(tx *gorm.DB) error {
		var err error
		order, title, err = loadOrder(tx, orderID)
		if err != nil {
			return err
		}
		if order.ProviderID == nil || *order.ProviderID != userID {
			return util.Forbidden(constants.ErrMsgNotOrderParticipant)
		}
		if !order.Status.Open() {
			return util.Conflict(constants.ErrMsgOrderStateConflict)
		}
		return transition(tx, orderID, constants.OpenOrderStatuses, updates)
	})
	if err != nil {
		h.fail(c, "update order", err)
		return
	}

	h.notifier.NotifyAll(c.Request.Context(), map[uint]string{
		order.ConsumerID: fmt.Sprintf(constants.NotifyOrderUpdated, title),
	})
	h.respondOrder(c, http.StatusOK, constants.MsgSuccessOrderUpdated, orderID)
}

func (h *OrderHandler) GetOrders(c *gin.Context) {
	userID, _ := util.GetUserID(c)

	query := orderQuery(h.db)
	switch c.Query("role") {
	case "":
		query = query.Where("(o.consumer_id = ? OR o.provider_id = ?)", userID, userID)
	case "consumer":
		query = query.Where("o.consumer_id = ?", userID)
	case "provider":
		query = query.Where("o.provider_id = ?", userID)
	default:
		util.RespondJSON(c, http.StatusBadRequest, constants.ErrMsgInvalidOrderRole)
		return
	}

	if raw := c.Query("status"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || !constants.OrderStatus(n).Valid() {
			util.RespondJSON(c, http.StatusBadRequest, constants.ErrMsgInvalidOrderStatus)
			return
		}
		query = query.Where("o.status = ?", n)
	}

	orders := []dto.OrderResponse{}
	if err := query.Order("o.create_time DESC").Order("o.id DESC").Scan(&orders).Error; err != nil {
		h.fail(c, "list orders", err)
		return
	}
	util.RespondJSON(c, http.StatusOK, orders)
}

// GetOpenOrders lists pending request orders that no provider took yet.
func (h *OrderHandler) GetOpenOrders(c *gin.Context) {
	userID, _ := util.GetUserID(c)

	orders := []dto.OrderResponse{}
	err := orderQuery(h.db).
		Where("o.status = ? AND o.provider_id IS NULL AND o.consumer_id <> ?", constants.OrderPending, userID).
		Order("o.create_time DESC").Order("o.id DESC").
		Limit(constants.UserListLimit).
		Scan(&orders).Error
	if err != nil {
		h.fail(c, "list open orders", err)
		return
	}
	util.RespondJSON(c, http.StatusOK, orders)
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	orderID, ok := util.ParamID(c, "id")
	if !ok {
		util.RespondJSON(c, http.StatusBadRequest, constants.ErrMsgInvalidID)
		return
	}
	userID, _ := util.GetUserID(c)

	var order dto.OrderResponse
	if err := orderQuery(h.db).Where("o.id = ?", orderID).Take(&order).Error; err != nil {
		if util.IsNotFound(err) {
			util.RespondJSON(c, http.StatusNotFound, constants.ErrMsgOrderNotFound)
			return
		}
		h.fail(c, "get order", err)
		return
	}
	if order.ConsumerID != userID && (order.ProviderID == nil || *order.ProviderID != userID) {
		util.RespondJSON(c, http.StatusForbidden, constants.ErrMsgNotOrderParticipant)
		return
	}

	util.RespondJSON(c, http.StatusOK, order)
}
