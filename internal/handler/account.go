package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ZhaoZeLuWei/HelpMe/configs"
	"github.com/ZhaoZeLuWei/HelpMe/configs/constants"
	"github.com/ZhaoZeLuWei/HelpMe/internal/model/db"
	"github.com/ZhaoZeLuWei/HelpMe/internal/model/dto"
	"github.com/ZhaoZeLuWei/HelpMe/internal/util"
)

type AccountHandler struct {
	db      *gorm.DB
	storage *util.ImageStorage
	jwt     *configs.TokenJWT
	app     *configs.AppConfig
	log     *zap.Logger
}

func NewAccountHandler(db *gorm.DB, storage *util.ImageStorage, jwt *configs.TokenJWT, app *configs.AppConfig, log *zap.Logger) *AccountHandler {
	return &AccountHandler{db: db, storage: storage, jwt: jwt, app: app, log: log}
}

func (h *AccountHandler) PostCheckPhone(c *gin.Context) {
	var request dto.RequestCheckPhone
	if err := c.ShouldBindJSON(&request); err != nil || strings.TrimSpace(request.Phone) == "" {
		util.RespondJSON(c, http.StatusBadRequest, constants.ErrMsgPhoneRequired)
		return
	}

	var count int64
	if err := h.db.Model(&db.User{}).Where("phone_number = ?", strings.TrimSpace(request.Phone)).Count(&count).Error; err != nil {
		h.log.Error("check phone", zap.Error(err))
		util.RespondJSON(c, http.StatusInternalServerError, constants.ErrMsgInternalServerError)
		return
	}

	util.RespondJSON(c, http.StatusOK, gin.H{"exists": count > 0})
}

func (h *AccountHandler) PostRegisterRequest(c *gin.Context) {
	var request dto.RequestPostRegister
	if err := c.ShouldBind(&request); err != nil {
		util.RespondJSON(c, http.StatusBadRequest, err)
		return
	}

	if request.Code != h.app.VerifyCode {
		util.RespondJSON(c, http.StatusUnauthorized, constants.ErrMsgInvalidVerifyCode)
		return
	}

	phone := strings.TrimSpace(request.Phone)
	idCard := strings.TrimSpace(request.IDCardNumber)

	var existing db.User
	if err := h.db.Select("id").Where("phone_number = ?", phone).Take(&existing).Error; err == nil {
		util.RespondJSON(c, http.StatusConflict, constants.ErrMsgPhoneRegistered)
		return
	} else if !util.IsNotFound(err) {
		h.log.Error("register phone lookup", zap.Error(err))
		util.RespondJSON(c, http.StatusInternalServerError, constants.ErrMsgInternalServerError)
		return
	}
	if err := h.db.Select("id").Where("id_card_number = ?", idCard).Take(&existing).Error; err == nil {
		util.RespondJSON(c, http.StatusConflict, constants.ErrMsgIDCardRegistered)
		return
	} else if !util.IsNotFound(err) {
		h.log.Error("register id card lookup", zap.Error(err))
		util.RespondJSON(c, http.StatusInternalServerError, constants.ErrMsgInternalServerError)
		return
	}

	avatar := constants.DefaultUserAvatar
	if file, err := c.FormFile("avatar"); err == nil {
		path, err := h.storage.SaveImage(file)
		if err != nil {
			util.RespondError(c, err)
			return
		}
		avatar = path
	}

	user := db.User{
		PhoneNumber:  phone,
		UserName:     strings.TrimSpace(request.UserName),
		RealName:     strings.TrimSpace(request.RealName),
		IDCardNumber: idCard,
		UserAvatar:   avatar,
		Location:     strings.TrimSpace(request.Location),
		BirthDate:    request.BirthDate,
	}
	if intro := strings.TrimSpace(request.Introduction); intro != "" {
		user.Introduction = &intro
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		return tx.Create(&db.Consumer{ConsumerID: user.ID, BuyerRanking: 0}).Error
	})
	if err != nil {
		if avatar != constants.DefaultUserAvatar {
			h.storage.Cleanup([]string{avatar})
		}
		if util.IsDuplicateKey(err) {
			util.RespondJSON(c, http.StatusConflict, constants.ErrMsgDuplicateRegister)
			return
		}
		h.log.Error("register user", zap.Error(err))
		util.RespondJSON(c, http.StatusInternalServerError, constants.ErrMsgInternalServerError)
		return
	}

	token, err := util.GenerateUserToken(h.jwt, user.ID, user.UserName)
	if err != nil {
		h.log.Error("issue token", zap.Error(err))
		util.RespondJSON(c, http.StatusInternalServerError, constants.ErrMsgInternalServerError)
		return
	}

	c.Header("Authorization", "Bearer "+token)
	util.RespondJSON(c, http.StatusCreated, dto.AuthResponse{
		Message: constants.MsgSuccessRegister,
		User:    userSummary(&user),
		Token:   token,
	})
}

func (h *AccountHandler) PostLoginRequest(c *gin.Context) {
	var request dto.RequestPostLogin
	if err := c.ShouldBindJSON(&request); err != nil {
		util.RespondJSON(c, http.StatusBadRequest, constants.ErrMsgLoginFields)
		return
	}

	phone := strings.TrimSpace(request.Phone)
	if phone == "" || request.Code == "" {
		util.RespondJSON(c, http.StatusBadRequest, constants.ErrMsgLoginFields)
		return
	}
	if request.Code != h.app.VerifyCode {
		util.RespondJSON(c, http.StatusUnauthorized, constants.ErrMsgInvalidVerifyCode)
		return
	}

	var user db.User
	if err := h.db.Where("phone_number = ?", phone).Take(&user).Error; err != nil {
		if util.IsNotFound(err) {
			util.RespondJSON(c, http.StatusNotFound, constants.ErrMsgPhoneNotRegistered)
			return
		}
		h.log.Error("login lookup", zap.Error(err))
		util.RespondJSON(c, http.StatusInternalServerError, constants.ErrMsgInternalServerError)
		return
	}

	token, err := util.GenerateUserToken(h.jwt, user.ID, user.UserName)
	if err != nil {
		h.log.Error("issue token", zap.Error(err))
		util.RespondJSON(c, http.StatusInternalServerError, constants.ErrMsgInternalServerError)
		return
	}

	c.Header("Authorization", "Bearer "+token)
	util.RespondJSON(c, http.StatusOK, dto.AuthResponse{
		Message: constants.MsgSuccessLogin,
		User:    userSummary(&user),
		Token:   token,
	})
}

func userSummary(u *db.User) dto.UserSummary {
	return dto.UserSummary{
		ID:          u.ID,
		UserName:    u.UserName,
		PhoneNumber: u.PhoneNumber,
		UserAvatar:  u.UserAvatar,
	}
}
