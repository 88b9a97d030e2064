package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ZhaoZeLuWei/HelpMe/configs/constants"
	"github.com/ZhaoZeLuWei/HelpMe/internal/model/dto"
	"github.com/ZhaoZeLuWei/HelpMe/internal/util"
)

type UploadHandler struct {
	db      *gorm.DB
	storage *util.ImageStorage
	log     *zap.Logger
}

func NewUploadHandler(db *gorm.DB, storage *util.ImageStorage, log *zap.Logger) *UploadHandler {
	return &UploadHandler{db: db, storage: storage, log: log}
}

// UploadImages stores images for a later form submit; nothing is written to
// the database.
func (h *UploadHandler) UploadImages(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil || len(form.File["images"]) == 0 {
		util.RespondJSON(c, http.StatusBadRequest, constants.ErrMsgNoImages)
		return
	}

	paths, err := h.storage.SaveImages(form.File["images"], constants.MaxUploadFiles)
	if err != nil {
		if _, ok := util.AsHTTPError(err); !ok {
			h.log.Error("save images", zap.Error(err))
		}
		util.RespondError(c, err)
		return
	}

	util.RespondJSON(c, http.StatusOK, dto.UploadImagesResponse{
		Message: constants.MsgSuccessFileUpload,
		Paths:   paths,
	})
}

func (h *UploadHandler) DeleteImage(c *gin.Context) {
	var request dto.RequestDeleteUpload
	if err := c.ShouldBindJSON(&request); err != nil {
		util.RespondJSON(c, http.StatusBadRequest, err)
		return
	}

	path := strings.TrimSpace(request.Path)
	if _, err := h.storage.Resolve(path); err != nil {
		util.RespondError(c, err)
		return
	}

	inUse, err := pathReferenced(h.db, path)
	if err != nil {
		h.log.Error("check upload references", zap.String("path", path), zap.Error(err))
		util.RespondJSON(c, http.StatusInternalServerError, constants.ErrMsgInternalServerError)
		return
	}
	if inUse {
		util.RespondJSON(c, http.StatusConflict, constants.ErrMsgFileInUse)
		return
	}

	if err := h.storage.Remove(path); err != nil {
		if _, ok := util.AsHTTPError(err); !ok {
			h.log.Error("remove upload", zap.String("path", path), zap.Error(err))
		}
		util.RespondError(c, err)
		return
	}

	util.RespondJSON(c, http.StatusOK, constants.MsgSuccessFileDeleted)
}
