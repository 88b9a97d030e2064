package handler

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ZhaoZeLuWei/HelpMe/configs/constants"
	"github.com/ZhaoZeLuWei/HelpMe/internal/chat"
	"github.com/ZhaoZeLuWei/HelpMe/internal/model/db"
	"github.com/ZhaoZeLuWei/HelpMe/internal/model/dto"
	"github.com/ZhaoZeLuWei/HelpMe/internal/util"
)

type VerificationHandler struct {
	db       *gorm.DB
	storage  *util.ImageStorage
	notifier *chat.Notifier
	log      *zap.Logger
}

func NewVerificationHandler(db *gorm.DB, storage *util.ImageStorage, notifier *chat.Notifier, log *zap.Logger) *VerificationHandler {
	return &VerificationHandler{db: db, storage: storage, notifier: notifier, log: log}
}

func formFiles(c *gin.Context, field string) []*multipart.FileHeader {
	form, err := c.MultipartForm()
	if err != nil {
		return nil
	}
	return form.File[field]
}

func (h *VerificationHandler) PostVerification(c *gin.Context) {
	providerID, _ := util.GetUserID(c)

	var request dto.RequestSubmitVerification
	if err := c.ShouldBind(&request); err != nil {
		util.RespondJSON(c, http.StatusBadRequest, err)
		return
	}

	rawCategory := strings.TrimSpace(request.ServiceCategory)
	if rawCategory == "" {
		util.RespondJSON(c, http.StatusBadRequest, constants.ErrMsgServiceCategoryRequired)
		return
	}
	n, err := strconv.Atoi(rawCategory)
	category := constants.ServiceCategory(n)
	if err != nil || !category.Valid() {
		util.RespondJSON(c, http.StatusBadRequest, constants.ErrMsgInvalidServiceCategory)
		return
	}

	idCardPaths, err := h.storage.SaveImages(formFiles(c, "idCard"), constants.MaxIDCardFiles)
	if err != nil {
		util.RespondError(c, err)
		return
	}
	certPaths, err := h.storage.SaveImages(formFiles(c, "cert"), constants.MaxCertFiles)
	if err != nil {
		h.storage.Cleanup(idCardPaths)
		util.RespondError(c, err)
		return
	}
	uploaded := append(append([]string{}, idCardPaths...), certPaths...)

	var (
		replaced     []string
		verification db.Verification
		resubmitted  bool
	)
	err = h.db.Transaction(func(tx *gorm.DB) error {
		provider := db.Provider{ProviderID: providerID, ProviderRole: category}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "provider_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"provider_role"}),
		}).Create(&provider).Error
		if err != nil {
			return err
		}

		userUpdates := map[string]any{}
		if v := strings.TrimSpace(request.RealName); v != "" {
			userUpdates["real_name"] = v
		}
		if v := strings.TrimSpace(request.IDCardNumber); v != "" {
			taken, err := idCardTaken(tx, v, providerID)
			if err != nil {
				return err
			}
			if taken {
				return util.BadRequest(constants.ErrMsgIDCardUsed)
			}
			userUpdates["id_card_number"] = v
		}
		if v := strings.TrimSpace(request.Location); v != "" {
			userUpdates["location"] = v
		}
		if v := strings.TrimSpace(request.Introduction); v != "" {
			userUpdates["introduction"] = v
		}
		if len(userUpdates) > 0 {
			if err := tx.Model(&db.User{}).Where("id = ?", providerID).Updates(userUpdates).Error; err != nil {
				return err
			}
		}

		latest, err := latestVerification(tx, providerID)
		if err != nil && !util.IsNotFound(err) {
			return err
		}

		now := time.Now()
		if latest == nil {
			if len(idCardPaths) == 0 {
				return util.BadRequest(constants.ErrMsgIDCardPhotoRequired)
			}
			if len(certPaths) == 0 {
				return util.BadRequest(constants.ErrMsgCertPhotoRequired)
			}
			verification = db.Verification{
				ProviderID:         providerID,
				ServiceCategory:    category,
				VerificationStatus: constants.VerificationPending,
				IDCardPhoto:        idCardPaths,
				ProfessionPhoto:    certPaths,
				SubmissionTime:     now,
			}
			return tx.Create(&verification).Error
		}

		resubmitted = true
		updates := map[string]any{
			"service_category":    category,
			"verification_status": constants.VerificationPending,
			"submission_time":     now,
			"passing_time":        nil,
			"results":             nil,
		}
		if len(idCardPaths) > 0 {
			updates["id_card_photo"] = db.StringList(idCardPaths)
			replaced = append(replaced, latest.IDCardPhoto...)
		}
		if len(certPaths) > 0 {
			updates["profession_photo"] = db.StringList(certPaths)
			replaced = append(replaced, latest.ProfessionPhoto...)
		}
		if err := tx.Model(latest).Updates(updates).Error; err != nil {
			return err
		}
		return tx.Take(&verification, latest.ID).Error
	})
	if err != nil {
		h.storage.Cleanup(uploaded)
		if util.IsDuplicateKey(err) {
			util.RespondJSON(c, http.StatusBadRequest, constants.ErrMsgIDCardUsed)
			return
		}
		if _, ok := util.AsHTTPError(err); !ok {
			h.log.Error("submit verification", zap.Uint("provider_id", providerID), zap.Error(err))
		}
		util.RespondError(c, err)
		return
	}

	removeUnreferenced(h.db, h.storage, h.log, replaced)
	h.notifier.NotifyAll(c.Request.Context(), map[uint]string{
		providerID: constants.NotifyVerificationSubmitted,
	})

	status, message := http.StatusCreated, constants.MsgVerificationSubmitted
	if resubmitted {
		status, message = http.StatusOK, constants.MsgVerificationUpdated
	}
	util.RespondJSON(c, status, dto.SubmitVerificationResponse{
		Message:            message,
		VerificationID:     verification.ID,
		VerificationStatus: verification.VerificationStatus,
		IDCardPaths:        verification.IDCardPhoto,
		CertPaths:          verification.ProfessionPhoto,
	})
}

func (h *VerificationHandler) GetProviders(c *gin.Context) {
	rows := []dto.AdminProviderRow{}
	err := h.db.Raw(`
SELECT
	p.provider_id, p.provider_role, u.user_name, u.real_name,
	(SELECT v.verification_status FROM verifications v
		WHERE v.provider_id = p.provider_id
		ORDER BY v.submission_time DESC, v.id DESC LIMIT 1) AS verification_status,
	CASE WHEN EXISTS (SELECT 1 FROM verifications v
		WHERE v.provider_id = p.provider_id AND v.verification_status = ?) THEN 1 ELSE 0 END AS is_verified
FROM providers p
LEFT JOIN users u ON u.id = p.provider_id
ORDER BY p.provider_id`, constants.VerificationApproved).Scan(&rows).Error
	if err != nil {
		h.log.Error("list providers", zap.Error(err))
		util.RespondJSON(c, http.StatusInternalServerError, constants.ErrMsgInternalServerError)
		return
	}

	util.RespondJSON(c, http.StatusOK, rows)
}

func (h *VerificationHandler) GetVerificationDetail(c *gin.Context) {
	providerID, ok := util.ParamID(c, "providerId")
	if !ok {
		util.RespondJSON(c, http.StatusBadRequest, constants.ErrMsgInvalidID)
		return
	}

	verification, err := latestVerification(h.db, providerID)
	if err != nil {
		if util.IsNotFound(err) {
			util.RespondJSON(c, http.StatusNotFound, constants.ErrMsgVerificationNotFound)
			return
		}
		h.log.Error("get verification", zap.Uint("provider_id", providerID), zap.Error(err))
		util.RespondJSON(c, http.StatusInternalServerError, constants.ErrMsgInternalServerError)
		return
	}

	profile, err := loadProfile(h.db, providerID)
	if err != nil {
		h.log.Error("load profile", zap.Uint("provider_id", providerID), zap.Error(err))
		util.RespondJSON(c, http.StatusInternalServerError, constants.ErrMsgInternalServerError)
		return
	}

	util.RespondJSON(c, http.StatusOK, dto.VerificationDetailResponse{
		Verification: *verification,
		User:         profile,
	})
}

func (h *VerificationHandler) PostApprove(c *gin.Context) {
	h.review(c, constants.VerificationApproved)
}

func (h *VerificationHandler) PostReject(c *gin.Context) {
	h.review(c, constants.VerificationRejected)
}

func (h *VerificationHandler) review(c *gin.Context, decision constants.VerificationStatus) {
	var request dto.RequestReviewVerification
	if err := c.ShouldBindJSON(&request); err != nil {
		util.RespondJSON(c, http.StatusBadRequest, err)
		return
	}
	results := strings.TrimSpace(request.Results)

	err := h.db.Transaction(func(tx *gorm.DB) error {
		latest, err := latestVerification(tx, request.ProviderID)
		if err != nil {
			if util.IsNotFound(err) {
				return util.NotFound(constants.ErrMsgVerificationNotFound)
			}
			return err
		}
		if latest.VerificationStatus != constants.VerificationPending {
			return util.Conflict(constants.ErrMsgVerificationNotPending)
		}

		updates := map[string]any{
			"verification_status": decision,
			"results":             nil,
			"passing_time":        nil,
		}
		if results != "" {
			updates["results"] = results
		}
		if decision == constants.VerificationApproved {
			updates["passing_time"] = time.Now()
		}

		res := tx.Model(&db.Verification{}).
			Where("id = ? AND verification_status = ?", latest.ID, constants.VerificationPending).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return util.Conflict(constants.ErrMsgVerificationNotPending)
		}
		return nil
	})
	if err != nil {
		if _, ok := util.AsHTTPError(err); !ok {
			h.log.Error("review verification", zap.Uint("provider_id", request.ProviderID), zap.Error(err))
		}
		util.RespondError(c, err)
		return
	}

	template, message := constants.NotifyVerificationApproved, constants.MsgVerificationApproved
	if decision == constants.VerificationRejected {
		template, message = constants.NotifyVerificationRejected, constants.MsgVerificationRejected
	}
	h.notifier.NotifyAll(c.Request.Context(), map[uint]string{
		request.ProviderID: strings.TrimSpace(fmt.Sprintf(template, results)),
	})

	util.RespondJSON(c, http.StatusOK, gin.H{
		"message":             message,
		"provider_id":         request.ProviderID,
		"verification_status": decision,
	})
}
