package handler

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/ZhaoZeLuWei/HelpMe/configs/constants"
	"github.com/ZhaoZeLuWei/HelpMe/internal/util"
)

type MediaHandler struct {
	storage *util.ImageStorage
}

func NewMediaHandler(storage *util.ImageStorage) *MediaHandler {
	return &MediaHandler{storage: storage}
}

// ServeImage serves /img/:filename from the upload directory.
func (h *MediaHandler) ServeImage(c *gin.Context) {
	fullPath, err := h.storage.Resolve(h.storage.PublicPrefix + "/" + c.Param("filename"))
	if err != nil {
		util.RespondJSON(c, http.StatusNotFound, constants.ErrMsgNotFound)
		return
	}

	info, err := os.Stat(fullPath)
	if err != nil || info.IsDir() {
		util.RespondJSON(c, http.StatusNotFound, constants.ErrMsgNotFound)
		return
	}

	c.Header("Cache-Control", "public, max-age=86400")
	c.File(fullPath)
}
