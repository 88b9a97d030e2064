package handler

import (
	"database/sql"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ZhaoZeLuWei/HelpMe/configs/constants"
	"github.com/ZhaoZeLuWei/HelpMe/internal/model/db"
	"github.com/ZhaoZeLuWei/HelpMe/internal/model/dto"
	"github.com/ZhaoZeLuWei/HelpMe/internal/util"
)

const commentSelect = "c.id, c.order_id, c.author_id, c.target_user_id, c.score, c.text, c.time, " +
	"u.user_name AS author_name, u.user_avatar AS author_avatar"

type ReviewHandler struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewReviewHandler(db *gorm.DB, log *zap.Logger) *ReviewHandler {
	return &ReviewHandler{db: db, log: log}
}

func (h *ReviewHandler) PostReview(c *gin.Context) {
	userID, _ := util.GetUserID(c)

	var request dto.RequestCreateReview
	if err := c.ShouldBindJSON(&request); err != nil {
		util.RespondJSON(c, http.StatusBadRequest, err)
		return
	}

	var comment db.Comment
	err := h.db.Transaction(func(tx *gorm.DB) error {
		var order db.Order
		if err := tx.Take(&order, request.OrderID).Error; err != nil {
			if util.IsNotFound(err) {
				return util.NotFound(constants.ErrMsgOrderNotFound)
			}
			return err
		}
		if !isParticipant(&order, userID) {
			return util.Forbidden(constants.ErrMsgNotOrderParticipant)
		}
		if order.Status != constants.OrderCompleted || order.ProviderID == nil {
			return util.Conflict(constants.ErrMsgOrderNotCompleted)
		}

		var existing int64
		err := tx.Model(&db.Comment{}).
			Where("order_id = ? AND author_id = ?", order.ID, userID).
			Count(&existing).Error
		if err != nil {
			return err
		}
		if existing > 0 {
			return util.Conflict(constants.ErrMsgAlreadyReviewed)
		}

		target := order.ConsumerID
		if userID == order.ConsumerID {
			target = *order.ProviderID
		}
		comment = db.Comment{
			OrderID:      order.ID,
			AuthorID:     userID,
			TargetUserID: target,
			Score:        request.Score,
			Text:         strings.TrimSpace(request.Text),
		}
		if err := tx.Create(&comment).Error; err != nil {
			return err
		}

		if target == *order.ProviderID {
			return refreshRanking(tx, &db.Provider{}, "provider_id", "service_ranking", target)
		}
		return refreshRanking(tx, &db.Consumer{}, "consumer_id", "buyer_ranking", target)
	})
	if err != nil {
		if util.IsDuplicateKey(err) {
			util.RespondJSON(c, http.StatusConflict, constants.ErrMsgAlreadyReviewed)
			return
		}
		if _, ok := util.AsHTTPError(err); !ok {
			h.log.Error("create review", zap.Uint("order_id", request.OrderID), zap.Error(err))
		}
		util.RespondError(c, err)
		return
	}

	util.RespondJSON(c, http.StatusCreated, gin.H{
		"message": constants.MsgSuccessReviewCreated,
		"comment": comment,
	})
}

// refreshRanking recomputes the average score userID received while holding
// the order role named by keyColumn.
func refreshRanking(tx *gorm.DB, model any, keyColumn, rankColumn string, userID uint) error {
	var avg sql.NullFloat64
	err := tx.Table("comments AS c").
		Select("AVG(c.score)").
		Joins("JOIN orders o ON o.id = c.order_id").
		Where("c.target_user_id = ? AND o."+keyColumn+" = ?", userID, userID).
		Row().Scan(&avg)
	if err != nil {
		return err
	}
	if !avg.Valid {
		return nil
	}
	return tx.Model(model).Where(keyColumn+" = ?", userID).Update(rankColumn, avg.Float64).Error
}

func (h *ReviewHandler) GetOrderReviews(c *gin.Context) {
	orderID, ok := util.ParamID(c, "id")
	if !ok {
		util.RespondJSON(c, http.StatusBadRequest, constants.ErrMsgInvalidID)
		return
	}
	userID, _ := util.GetUserID(c)

	order, _, err := loadOrder(h.db, orderID)
	if err != nil {
		if _, ok := util.AsHTTPError(err); !ok {
			h.log.Error("load order", zap.Uint("order_id", orderID), zap.Error(err))
		}
		util.RespondError(c, err)
		return
	}
	if !isParticipant(order, userID) {
		util.RespondJSON(c, http.StatusForbidden, constants.ErrMsgNotOrderParticipant)
		return
	}

	comments := []dto.CommentResponse{}
	err = h.db.Table("comments AS c").
		Select(commentSelect).
		Joins("LEFT JOIN users u ON u.id = c.author_id").
		Where("c.order_id = ?", orderID).
		Order("c.time ASC").Order("c.id ASC").
		Scan(&comments).Error
	if err != nil {
		h.log.Error("list order reviews", zap.Uint("order_id", orderID), zap.Error(err))
		util.RespondJSON(c, http.StatusInternalServerError, constants.ErrMsgInternalServerError)
		return
	}

	util.RespondJSON(c, http.StatusOK, comments)
}
