package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/ZhaoZeLuWei/HelpMe/configs"
	"github.com/ZhaoZeLuWei/HelpMe/configs/constants"
	"github.com/ZhaoZeLuWei/HelpMe/internal/chat"
	"github.com/ZhaoZeLuWei/HelpMe/internal/model/db"
	"github.com/ZhaoZeLuWei/HelpMe/internal/model/dto"
	"github.com/ZhaoZeLuWei/HelpMe/internal/util"
)

type AdminHandler struct {
	db        *gorm.DB
	chatStore chat.Store
	storage   *util.ImageStorage
	jwt       *configs.TokenJWT
	log       *zap.Logger
}

func NewAdminHandler(db *gorm.DB, chatStore chat.Store, storage *util.ImageStorage, jwt *configs.TokenJWT, log *zap.Logger) *AdminHandler {
	return &AdminHandler{db: db, chatStore: chatStore, storage: storage, jwt: jwt, log: log}
}

func (h *AdminHandler) PostAdminLogin(c *gin.Context) {
	var req dto.AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondJSON(c, http.StatusBadRequest, err)
		return
	}

	var staff db.Staff
	if err := h.db.Where("user_name = ?", strings.TrimSpace(req.UserName)).Take(&staff).Error; err != nil {
		if !util.IsNotFound(err) {
			h.log.Error("staff lookup", zap.Error(err))
			util.RespondJSON(c, http.StatusInternalServerError, constants.ErrMsgInternalServerError)
			return
		}
		util.RespondJSON(c, http.StatusUnauthorized, constants.ErrMsgAdminLoginFail)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(staff.Password), []byte(req.Password)); err != nil {
		util.RespondJSON(c, http.StatusUnauthorized, constants.ErrMsgAdminLoginFail)
		return
	}

	token, err := util.GenerateJWTToken(h.jwt, staff.ID, staff.UserName, staff.Role, h.jwt.AdminExpireDuration)
	if err != nil {
		h.log.Error("issue staff token", zap.Error(err))
		util.RespondJSON(c, http.StatusInternalServerError, constants.ErrMsgInternalServerError)
		return
	}

	c.Header("Authorization", "Bearer "+token)
	util.RespondJSON(c, http.StatusOK, dto.AdminLoginResponse{
		Message: constants.MsgSuccessAdminLogin,
		Staff:   dto.StaffSummary{ID: staff.ID, UserName: staff.UserName, Role: staff.Role},
		Token:   token,
	})
}

func (h *AdminHandler) GetUsers(c *gin.Context) {
	users := []dto.AdminUserRow{}
	err := h.db.Table("users AS u").
		Select("u.id, u.user_name, u.real_name, u.phone_number, u.user_avatar, u.location, u.create_time, " +
			"c.buyer_ranking, p.service_ranking, p.order_count, " +
			"CASE WHEN p.provider_id IS NULL THEN 0 ELSE 1 END AS is_provider").
		Joins("LEFT JOIN consumers c ON c.consumer_id = u.id").
		Joins("LEFT JOIN providers p ON p.provider_id = u.id").
		Order("u.create_time DESC").Order("u.id DESC").
		Scan(&users).Error
	if err != nil {
		h.log.Error("list users", zap.Error(err))
		util.RespondJSON(c, http.StatusInternalServerError, constants.ErrMsgInternalServerError)
		return
	}

	util.RespondJSON(c, http.StatusOK, users)
}

func (h *AdminHandler) GetUser(c *gin.Context) {
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

	util.RespondJSON(c, http.StatusOK, profile)
}

func (h *AdminHandler) DeleteUser(c *gin.Context) {
	userID, ok := util.ParamID(c, "id")
	if !ok {
		util.RespondJSON(c, http.StatusBadRequest, constants.ErrMsgInvalidID)
		return
	}

	var files []string
	err := h.db.Transaction(func(tx *gorm.DB) error {
		var user db.User
		if err := tx.Take(&user, userID).Error; err != nil {
			if util.IsNotFound(err) {
				return util.NotFound(constants.ErrMsgUserNotFound)
			}
			return err
		}
		if user.UserAvatar != constants.DefaultUserAvatar {
			files = append(files, user.UserAvatar)
		}

		var events []db.Event
		if err := tx.Select("id", "photos").Where("creator_id = ?", userID).Find(&events).Error; err != nil {
			return err
		}
		eventIDs := make([]uint, 0, len(events))
		for _, e := range events {
			eventIDs = append(eventIDs, e.ID)
			files = append(files, e.Photos...)
		}
		var verifications []db.Verification
		if err := tx.Select("id", "id_card_photo", "profession_photo").Where("provider_id = ?", userID).Find(&verifications).Error; err != nil {
			return err
		}
		for _, v := range verifications {
			files = append(files, v.IDCardPhoto...)
			files = append(files, v.ProfessionPhoto...)
		}

		return deleteUserRows(tx, userID, eventIDs)
	})
	if err != nil {
		if _, ok := util.AsHTTPError(err); !ok {
			h.log.Error("delete user", zap.Uint("user_id", userID), zap.Error(err))
		}
		util.RespondError(c, err)
		return
	}

	removeUnreferenced(h.db, h.storage, h.log, files)
	if err := h.chatStore.DeleteRoomsByUser(context.WithoutCancel(c.Request.Context()), userID); err != nil {
		h.log.Warn("delete chat rooms of removed user", zap.Uint("user_id", userID), zap.Error(err))
	}

	util.RespondJSON(c, http.StatusOK, constants.MsgSuccessUserDeleted)
}

type cascadeStep struct {
	model any
	query string
	args  []any
}

// deleteUserRows removes everything owned by a user, children first.
func deleteUserRows(tx *gorm.DB, userID uint, eventIDs []uint) error {
	steps := []cascadeStep{
		{&db.Comment{}, "author_id = ?", []any{userID}},
		{&db.Comment{}, "target_user_id = ?", []any{userID}},
		{&db.Order{}, "consumer_id = ?", []any{userID}},
		{&db.Order{}, "provider_id = ?", []any{userID}},
	}
	if len(eventIDs) > 0 {
		// orders other users still hold on this user's events
		steps = append(steps,
			cascadeStep{&db.Comment{}, "order_id IN (?)", []any{tx.Model(&db.Order{}).Select("id").Where("event_id IN ?", eventIDs)}},
			cascadeStep{&db.Order{}, "event_id IN ?", []any{eventIDs}},
		)
	}
	steps = append(steps,
		cascadeStep{&db.Event{}, "creator_id = ?", []any{userID}},
		cascadeStep{&db.Verification{}, "provider_id = ?", []any{userID}},
		cascadeStep{&db.Provider{}, "provider_id = ?", []any{userID}},
		cascadeStep{&db.Consumer{}, "consumer_id = ?", []any{userID}},
		cascadeStep{&db.User{}, "id = ?", []any{userID}},
	)

	for _, step := range steps {
		if err := tx.Where(step.query, step.args...).Delete(step.model).Error; err != nil {
			return err
		}
	}
	return nil
}
