package handler

import (
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

const userListLimit = constants.UserListLimit

type UserHandler struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewUserHandler(db *gorm.DB, log *zap.Logger) *UserHandler {
	return &UserHandler{db: db, log: log}
}

func (h *UserHandler) GetUserEvents(c *gin.Context) {
	userID, ok := util.ParamID(c, "id")
	if !ok {
		util.RespondJSON(c, http.StatusBadRequest, constants.ErrMsgInvalidID)
		return
	}

	events := []db.Event{}
	err := h.db.Where("creator_id = ?", userID).
		Order("create_time DESC").Order("id DESC").
		Limit(userListLimit).
		Find(&events).Error
	if err != nil {
		h.log.Error("list user events", zap.Uint("user_id", userID), zap.Error(err))
		util.RespondJSON(c, http.StatusInternalServerError, constants.ErrMsgInternalServerError)
		return
	}

	util.RespondJSON(c, http.StatusOK, events)
}

func (h *UserHandler) GetUserProfile(c *gin.Context) {
	userID, ok := util.ParamID(c, "id")
	if !ok {
		util.RespondJSON(c, http.StatusBadRequest, constants.ErrMsgInvalidID)
		return
	}

	profile, err := loadProfile(h.db, userID)
	if err != nil {
		h.log.Error("load profile", zap.Uint("user_id", userID), zap.Error(err))
		util.RespondJSON(c, http.StatusInternalServerError, constants.ErrMsgInternalServerError)
		return
	}
	if profile == nil {
		util.RespondJSON(c, http.StatusNotFound, constants.ErrMsgUserNotFound)
		return
	}

	// contact and identity numbers are only shown to their owner
	callerID, _ := util.GetUserID(c)
	if callerID != userID || util.GetUserRole(c) != constants.RoleUser {
		profile.PhoneNumber = ""
		profile.IDCardNumber = ""
	}

	util.RespondJSON(c, http.StatusOK, profile)
}

func (h *UserHandler) PutUserProfile(c *gin.Context) {
	userID, ok := util.ParamID(c, "id")
	if !ok {
		util.RespondJSON(c, http.StatusBadRequest, constants.ErrMsgInvalidID)
		return
	}
	callerID, _ := util.GetUserID(c)
	if callerID != userID {
		util.RespondJSON(c, http.StatusForbidden, constants.ErrMsgForbidden)
		return
	}

	var request dto.RequestUpdateProfile
	if err := c.ShouldBindJSON(&request); err != nil {
		util.RespondJSON(c, http.StatusBadRequest, err)
		return
	}

	idCard := strings.TrimSpace(request.IDCardNumber)
	taken, err := idCardTaken(h.db, idCard, userID)
	if err != nil {
		h.log.Error("id card lookup", zap.Error(err))
		util.RespondJSON(c, http.StatusInternalServerError, constants.ErrMsgInternalServerError)
		return
	}
	if taken {
		util.RespondJSON(c, http.StatusConflict, constants.ErrMsgIDCardUsed)
		return
	}

	updates := map[string]any{
		"user_name":      strings.TrimSpace(request.UserName),
		"real_name":      strings.TrimSpace(request.RealName),
		"id_card_number": idCard,
		"location":       strings.TrimSpace(request.Location),
		"birth_date":     request.BirthDate,
	}
	if request.Introduction != nil {
		if intro := strings.TrimSpace(*request.Introduction); intro != "" {
			updates["introduction"] = intro
		} else {
			updates["introduction"] = nil
		}
	}
	if request.UserAvatar != nil && strings.TrimSpace(*request.UserAvatar) != "" {
		updates["user_avatar"] = strings.TrimSpace(*request.UserAvatar)
	}

	result := h.db.Model(&db.User{}).Where("id = ?", userID).Updates(updates)
	if result.Error != nil {
		if util.IsDuplicateKey(result.Error) {
			util.RespondJSON(c, http.StatusConflict, constants.ErrMsgIDCardUsed)
			return
		}
		h.log.Error("update profile", zap.Uint("user_id", userID), zap.Error(result.Error))
		util.RespondJSON(c, http.StatusInternalServerError, constants.ErrMsgInternalServerError)
		return
	}

	profile, err := loadProfile(h.db, userID)
	if err != nil {
		h.log.Error("load profile", zap.Uint("user_id", userID), zap.Error(err))
		util.RespondJSON(c, http.StatusInternalServerError, constants.ErrMsgInternalServerError)
		return
	}
	if profile == nil {
		util.RespondJSON(c, http.StatusNotFound, constants.ErrMsgUserNotFound)
		return
	}

	util.RespondJSON(c, http.StatusOK, gin.H{
		"message": constants.MsgSuccessProfileUpdated,
		"profile": profile,
	})
}

func (h *UserHandler) GetUserComments(c *gin.Context) {
	userID, ok := util.ParamID(c, "id")
	if !ok {
		util.RespondJSON(c, http.StatusBadRequest, constants.ErrMsgInvalidID)
		return
	}

	comments := []dto.CommentResponse{}
	err := h.db.Table("comments AS c").
		Select(commentSelect).
		Joins("LEFT JOIN users u ON u.id = c.author_id").
		Where("c.target_user_id = ?", userID).
		Order("c.time DESC").Order("c.id DESC").
		Limit(userListLimit).
		Scan(&comments).Error
	if err != nil {
		h.log.Error("list comments", zap.Uint("user_id", userID), zap.Error(err))
		util.RespondJSON(c, http.StatusInternalServerError, constants.ErrMsgInternalServerError)
		return
	}

	util.RespondJSON(c, http.StatusOK, comments)
}
